package apihandlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"mailsift/internal/models"
	"mailsift/internal/store"
)

// SyncStartHandler creates a sweep job and enqueues it. A job already in
// flight yields 409 with the live job attached so callers can poll it.
func (h *APIHandler) SyncStartHandler(c *gin.Context) {
	job, err := h.Sync.Start(c.Request.Context())
	if err != nil {
		if errors.Is(err, models.ErrSyncAlreadyRunning) {
			JSONErrorData(c, http.StatusConflict, CodeSyncAlreadyRunning, "A sync job is already running", job)
			return
		}
		log.Errorf("Failed to start sync: %v", err)
		Internal(c, "Failed to start sync")
		return
	}
	JSONData(c, http.StatusAccepted, job)
}

// SyncStatusHandler reports the live job, or the most recent one when
// nothing is in flight.
func (h *APIHandler) SyncStatusHandler(c *gin.Context) {
	job, err := h.Sync.Status(c.Request.Context())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFound(c, "No sync jobs recorded")
			return
		}
		log.Errorf("Failed to read sync status: %v", err)
		Internal(c, "Failed to read sync status")
		return
	}
	JSONData(c, http.StatusOK, job)
}

// SyncStopHandler asks the live job to stop after its current batch.
func (h *APIHandler) SyncStopHandler(c *gin.Context) {
	job, err := h.Sync.Stop(c.Request.Context())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			JSONError(c, http.StatusConflict, CodeSyncNotRunning, "No sync job is running")
			return
		}
		log.Errorf("Failed to stop sync: %v", err)
		Internal(c, "Failed to stop sync")
		return
	}
	JSONData(c, http.StatusOK, job)
}
