package apihandlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"mailsift/internal/mailimport"
	"mailsift/internal/services"
	"mailsift/internal/store"
	"mailsift/pkg/classifier"
)

type APIHandler struct {
	Classification *services.ClassificationService
	Sync           *services.SyncService
	FolderStore    store.FolderStore
	MailStore      store.MailStore
}

func NewAPIHandler(cs *services.ClassificationService, sync *services.SyncService, fs store.FolderStore, ms store.MailStore) *APIHandler {
	return &APIHandler{
		Classification: cs,
		Sync:           sync,
		FolderStore:    fs,
		MailStore:      ms,
	}
}

// ClassifyRequest is the body for ad-hoc classification.
type ClassifyRequest struct {
	Subject string `json:"subject"`
	Sender  string `json:"sender"`
	Snippet string `json:"snippet"`
}

// ClassifyHandler classifies mail data from the request body without
// touching the store.
func (h *APIHandler) ClassifyHandler(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.Classification.ClassifyAdhoc(c.Request.Context(), classifier.Mail{
		Subject: req.Subject,
		Sender:  req.Sender,
		Snippet: req.Snippet,
	})
	if err != nil {
		h.classifyError(c, err)
		return
	}
	JSONData(c, http.StatusOK, result)
}

// ClassifyMailHandler classifies one stored mail and applies the outcome.
func (h *APIHandler) ClassifyMailHandler(c *gin.Context) {
	mailID := c.Param("id")

	mail, err := h.Classification.ClassifyMail(c.Request.Context(), mailID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFound(c, "Mail not found: "+mailID)
			return
		}
		h.classifyError(c, err)
		return
	}
	JSONData(c, http.StatusOK, mail)
}

// ClassifyBatchRequest optionally bounds how many pending mails one call
// processes.
type ClassifyBatchRequest struct {
	Limit int `json:"limit"`
}

// ClassifyBatchHandler classifies up to 20 pending mails in one model call.
func (h *APIHandler) ClassifyBatchHandler(c *gin.Context) {
	var req ClassifyBatchRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, "Invalid request body: "+err.Error())
			return
		}
	}

	applied, err := h.Classification.ClassifyPending(c.Request.Context(), req.Limit)
	if err != nil {
		h.classifyError(c, err)
		return
	}
	JSONData(c, http.StatusOK, gin.H{"classified": applied})
}

// AddMailHandler upserts one mail so it becomes eligible for
// classification. Text fields are normalized the same way the file
// importer normalizes them.
func (h *APIHandler) AddMailHandler(c *gin.Context) {
	var rec mailimport.Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	mail := mailimport.RecordToMail(rec)
	if err := h.MailStore.UpsertMail(c.Request.Context(), mail); err != nil {
		log.Errorf("Failed to store mail '%s': %v", mail.ID, err)
		Internal(c, "Failed to store mail")
		return
	}
	JSONData(c, http.StatusCreated, mail)
}

func (h *APIHandler) ListFoldersHandler(c *gin.Context) {
	folders, err := h.FolderStore.ListFolders(c.Request.Context())
	if err != nil {
		log.Errorf("Failed to list folders: %v", err)
		Internal(c, "Failed to list folders")
		return
	}
	JSONData(c, http.StatusOK, folders)
}

func (h *APIHandler) ListMailsHandler(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	mails, err := h.MailStore.ListMails(c.Request.Context(), limit, offset)
	if err != nil {
		log.Errorf("Failed to list mails: %v", err)
		Internal(c, "Failed to list mails")
		return
	}
	JSONData(c, http.StatusOK, mails)
}

// classifyError maps classifier failures onto the API error envelope.
func (h *APIHandler) classifyError(c *gin.Context, err error) {
	log.Errorf("Classification request failed: %v", err)
	switch {
	case errors.Is(err, classifier.ErrNotConfigured):
		JSONError(c, http.StatusServiceUnavailable, CodeLLMNotConfigured, err.Error())
	case errors.Is(err, classifier.ErrClassifyFailed):
		JSONError(c, http.StatusBadGateway, CodeLLMError, err.Error())
	default:
		Internal(c, err.Error())
	}
}
