package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"mailsift/internal/clix"
	"mailsift/internal/mailimport"
)

var mailsCmd = &cobra.Command{
	Use:   "mails",
	Short: "Inspect and classify stored mails",
}

var mailsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored mails with their folder assignments",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return err
		}
		defer appInstance.Close()

		params, err := clix.ParsePagination(cmd.Flags())
		if err != nil {
			return err
		}

		mails, err := appInstance.MailStore.ListMails(ctx, params.Limit, params.Offset)
		if err != nil {
			return fmt.Errorf("failed to list mails: %w", err)
		}
		if len(mails) == 0 {
			fmt.Println("No mails found.")
			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"ID", "Subject", "Sender", "Folder", "Confidence"})
		table.SetBorder(true)
		table.SetRowLine(true)

		for _, mail := range mails {
			folder := "-"
			if mail.FolderPath != nil {
				folder = *mail.FolderPath
			}
			confidence := "-"
			if mail.Confidence != nil {
				confidence = strconv.FormatFloat(*mail.Confidence, 'f', 2, 64)
			}
			table.Append([]string{mail.ID, mail.Subject, mail.Sender, folder, confidence})
		}
		table.Render()
		return nil
	},
}

var mailsClassifyCmd = &cobra.Command{
	Use:   "classify <mail-id>",
	Short: "Classify one stored mail and apply the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return err
		}
		defer appInstance.Close()

		mail, err := appInstance.ClassificationService.ClassifyMail(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to classify mail '%s': %w", args[0], err)
		}

		folder := "-"
		if mail.FolderPath != nil {
			folder = *mail.FolderPath
		}
		fmt.Printf("Mail '%s' classified into '%s'\n", mail.ID, folder)
		if mail.Reason != nil {
			fmt.Printf("Reason: %s\n", *mail.Reason)
		}
		return nil
	},
}

var mailsImportCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Import mails from a JSON export file or directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return err
		}
		defer appInstance.Close()

		importer := mailimport.NewImporter(appInstance.MailStore)
		stats, err := importer.ImportPath(ctx, args[0])
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		fmt.Printf("Imported %d mails from %d files (%d files skipped).\n",
			stats.Imported, stats.Files, stats.Skipped)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mailsCmd)
	mailsCmd.AddCommand(mailsListCmd)
	mailsCmd.AddCommand(mailsClassifyCmd)
	mailsCmd.AddCommand(mailsImportCmd)

	mailsListCmd.Flags().Int("limit", 20, "Maximum number of mails to list")
	mailsListCmd.Flags().Int("offset", 0, "Number of mails to skip")
}
