package cmd

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"mailsift/internal/apihandlers"
)

var (
	serveAddr string
	servePort string
)

// serveCmd runs the HTTP API server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run mailsift as an HTTP API server",
	Long: `Starts an HTTP server exposing classification and sync operations
via a RESTful API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		defer appInstance.Close()

		router := gin.Default()

		apiHandler := apihandlers.NewAPIHandler(
			appInstance.ClassificationService,
			appInstance.SyncService,
			appInstance.FolderStore,
			appInstance.MailStore,
		)

		v1 := router.Group("/api/v1")
		{
			v1.POST("/classify", apiHandler.ClassifyHandler)
			v1.POST("/classify/batch", apiHandler.ClassifyBatchHandler)
			v1.POST("/mails", apiHandler.AddMailHandler)
			v1.POST("/mails/:id/classify", apiHandler.ClassifyMailHandler)
			v1.GET("/mails", apiHandler.ListMailsHandler)
			v1.GET("/folders", apiHandler.ListFoldersHandler)

			syncGroup := v1.Group("/sync")
			{
				syncGroup.POST("/start", apiHandler.SyncStartHandler)
				syncGroup.GET("/status", apiHandler.SyncStatusHandler)
				syncGroup.POST("/stop", apiHandler.SyncStopHandler)
			}
		}

		router.GET("/health", func(c *gin.Context) {
			if err := appInstance.FolderStore.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Flags override the config file.
		addr := appInstance.Config.Server.Addr
		port := appInstance.Config.Server.Port
		if serveAddr != "" {
			addr = serveAddr
		}
		if servePort != "" {
			port = servePort
		}

		listenAddr := fmt.Sprintf("%s:%s", addr, port)
		log.Infof("Starting mailsift API server on http://%s", listenAddr)

		if err := router.Run(listenAddr); err != nil {
			return fmt.Errorf("failed to run API server: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Address to listen on (overrides config)")
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (overrides config)")
}
