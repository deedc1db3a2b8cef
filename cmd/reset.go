package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mailsift/internal/models"
)

var resetYes bool

// resetCmd clears classification state without deleting mail rows.
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear all folder assignments and sync history",
	Long: `Removes every mail's folder assignment, confidence and reason, and
purges the sync job history. Mail and folder rows themselves are kept.
Refuses to run while a sweep is in progress.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return err
		}
		defer appInstance.Close()

		if !resetYes {
			return fmt.Errorf("refusing to reset without --yes")
		}

		cleared, err := appInstance.SyncService.Reset(ctx)
		if err != nil {
			if errors.Is(err, models.ErrSyncAlreadyRunning) {
				return fmt.Errorf("a sync job is running; stop it before resetting")
			}
			return fmt.Errorf("reset failed: %w", err)
		}

		fmt.Printf("Cleared classifications on %d mails.\n", cleared)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "Confirm the reset")
}
