package cmd

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mailsift/internal/models"
	"mailsift/internal/store"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Manage background classification sweeps",
}

var syncStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a classification sweep over unclassified mails",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return err
		}
		defer appInstance.Close()

		job, err := appInstance.SyncService.Start(ctx)
		if err != nil {
			if errors.Is(err, models.ErrSyncAlreadyRunning) {
				fmt.Printf("A sync job is already %s: %s\n", job.Status, job.ID)
				return nil
			}
			return fmt.Errorf("failed to start sync: %w", err)
		}

		fmt.Printf("Started sync job %s (%d unclassified mails)\n", color.GreenString(job.ID.String()), job.Total)
		return nil
	},
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current or most recent sync job",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return err
		}
		defer appInstance.Close()

		job, err := appInstance.SyncService.Status(ctx)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				fmt.Println("No sync jobs recorded.")
				return nil
			}
			return fmt.Errorf("failed to read sync status: %w", err)
		}

		fmt.Printf("Job:       %s\n", job.ID)
		fmt.Printf("Status:    %s\n", formatSyncStatus(job.Status))
		fmt.Printf("Progress:  %d/%d\n", job.Processed, job.Total)
		if job.Error != nil {
			fmt.Printf("Error:     %s\n", color.RedString(*job.Error))
		}
		return nil
	},
}

var syncStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Ask the running sweep to stop after its current batch",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return err
		}
		defer appInstance.Close()

		job, err := appInstance.SyncService.Stop(ctx)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				fmt.Println("No sync job is running.")
				return nil
			}
			return fmt.Errorf("failed to stop sync: %w", err)
		}

		fmt.Printf("Requested stop for sync job %s (status: %s)\n", job.ID, job.Status)
		return nil
	},
}

func formatSyncStatus(status string) string {
	switch status {
	case models.SyncStatusRunning:
		return color.GreenString(status)
	case models.SyncStatusFailed:
		return color.RedString(status)
	case models.SyncStatusStopping, models.SyncStatusStopped:
		return color.YellowString(status)
	default:
		return status
	}
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.AddCommand(syncStartCmd)
	syncCmd.AddCommand(syncStatusCmd)
	syncCmd.AddCommand(syncStopCmd)
}
