package classifier

import (
	"fmt"
	"strings"
)

// Snippet budgets differ between the single and batch prompts: a lone mail
// gets more context than twenty sharing one context window.
const (
	singleSnippetLimit = 500
	batchSnippetLimit  = 200
)

const (
	noSubjectPlaceholder = "(no subject)"
	noSenderPlaceholder  = "(unknown sender)"
	noFoldersInstruction = "(no folders exist yet - propose an appropriate new folder)"
)

const systemPrompt = `You are an email classification assistant. You sort emails into folders based on their subject, sender and content. Always respond with valid JSON and nothing else.`

const singleTemplate = `Classify the following email into one of the existing folders, or propose a new folder if none fits.

Existing folders:
%s

Email:
- Subject: %s
- Sender: %s
- Content: %s

Respond with a single JSON object of the form:
{"folder_path": "<folder path>", "is_new_folder": <true|false>, "confidence": <0.0-1.0>, "reason": "<one short sentence>"}`

const batchTemplate = `Classify each of the following emails into one of the existing folders, or propose a new folder if none fits.

Existing folders:
%s

Emails:
%s

Respond with a JSON array containing one object per email, of the form:
[{"mail_id": "<id>", "folder_path": "<folder path>", "is_new_folder": <true|false>, "confidence": <0.0-1.0>, "reason": "<one short sentence>"}]`

// renderFolders formats the folder list as bullet lines, input order
// preserved. An empty list becomes an instruction to propose a folder.
func renderFolders(folders []Folder) string {
	if len(folders) == 0 {
		return noFoldersInstruction
	}
	lines := make([]string, len(folders))
	for i, f := range folders {
		lines[i] = "- " + f.Path
	}
	return strings.Join(lines, "\n")
}

// renderSingle fills the single-mail template. The snippet is hard-cut, no
// truncation marker.
func renderSingle(folders []Folder, mail Mail) string {
	return fmt.Sprintf(singleTemplate,
		renderFolders(folders),
		orPlaceholder(mail.Subject, noSubjectPlaceholder),
		orPlaceholder(mail.Sender, noSenderPlaceholder),
		truncate(mail.Snippet, singleSnippetLimit),
	)
}

// renderBatch fills the batch template with one labeled block per mail,
// blocks separated by a blank line. Input beyond MaxBatchSize is silently
// dropped.
func renderBatch(folders []Folder, mails []Mail) string {
	if len(mails) > MaxBatchSize {
		mails = mails[:MaxBatchSize]
	}
	blocks := make([]string, len(mails))
	for i, mail := range mails {
		blocks[i] = fmt.Sprintf("### Email #%s\n- Subject: %s\n- Sender: %s\n- Content: %s\n",
			mail.ID,
			orPlaceholder(mail.Subject, noSubjectPlaceholder),
			orPlaceholder(mail.Sender, noSenderPlaceholder),
			truncate(mail.Snippet, batchSnippetLimit),
		)
	}
	return fmt.Sprintf(batchTemplate, renderFolders(folders), strings.Join(blocks, "\n"))
}

func orPlaceholder(s, placeholder string) string {
	if s == "" {
		return placeholder
	}
	return s
}

// truncate hard-cuts s to at most n characters, never splitting a rune.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
