package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mailsift/pkg/classifier"
)

var (
	classifySubject string
	classifySender  string
	classifySnippet string
)

// classifyCmd classifies ad-hoc mail data from flags without storing it.
var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify mail data without storing it",
	Long: `Classifies the mail described by --subject, --sender and --snippet
against the current folder list and prints the decision. Nothing is
written to the store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return err
		}
		defer appInstance.Close()

		result, err := appInstance.ClassificationService.ClassifyAdhoc(ctx, classifier.Mail{
			Subject: classifySubject,
			Sender:  classifySender,
			Snippet: classifySnippet,
		})
		if err != nil {
			return fmt.Errorf("classification failed: %w", err)
		}

		folder := color.GreenString(result.FolderPath)
		if result.IsNewFolder {
			folder = color.YellowString("%s (new)", result.FolderPath)
		}
		fmt.Printf("Folder:     %s\n", folder)
		fmt.Printf("Confidence: %.2f\n", result.Confidence)
		fmt.Printf("Reason:     %s\n", result.Reason)
		if provider := appInstance.Classifier.LastProvider(); provider != "" {
			fmt.Printf("Provider:   %s\n", provider)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().StringVar(&classifySubject, "subject", "", "Mail subject")
	classifyCmd.Flags().StringVar(&classifySender, "sender", "", "Mail sender address")
	classifyCmd.Flags().StringVar(&classifySnippet, "snippet", "", "Mail body snippet")
}
