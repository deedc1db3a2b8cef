package classifier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderFolders(t *testing.T) {
	t.Run("empty list becomes propose instruction", func(t *testing.T) {
		assert.Equal(t, noFoldersInstruction, renderFolders(nil))
	})

	t.Run("bullets preserve input order", func(t *testing.T) {
		folders := []Folder{{Path: "Work"}, {Path: "Receipts"}, {Path: "Work/Projects"}}

		rendered := renderFolders(folders)

		assert.Equal(t, "- Work\n- Receipts\n- Work/Projects", rendered)
	})
}

func TestRenderSingle(t *testing.T) {
	t.Run("fields appear in prompt", func(t *testing.T) {
		mail := Mail{Subject: "Your invoice", Sender: "billing@example.com", Snippet: "Amount due: $42"}

		prompt := renderSingle([]Folder{{Path: "Receipts"}}, mail)

		assert.Contains(t, prompt, "- Receipts")
		assert.Contains(t, prompt, "Your invoice")
		assert.Contains(t, prompt, "billing@example.com")
		assert.Contains(t, prompt, "Amount due: $42")
	})

	t.Run("missing fields use placeholders", func(t *testing.T) {
		prompt := renderSingle(nil, Mail{})

		assert.Contains(t, prompt, noSubjectPlaceholder)
		assert.Contains(t, prompt, noSenderPlaceholder)
		assert.Contains(t, prompt, noFoldersInstruction)
	})

	t.Run("snippet hard-cut at 500 characters", func(t *testing.T) {
		mail := Mail{Snippet: strings.Repeat("a", 600)}

		prompt := renderSingle(nil, mail)

		assert.Contains(t, prompt, strings.Repeat("a", 500))
		assert.NotContains(t, prompt, strings.Repeat("a", 501))
	})

	t.Run("truncation is rune safe", func(t *testing.T) {
		mail := Mail{Snippet: strings.Repeat("메", 600)}

		prompt := renderSingle(nil, mail)

		assert.Contains(t, prompt, strings.Repeat("메", 500))
		assert.NotContains(t, prompt, strings.Repeat("메", 501))
	})
}

func TestRenderBatch(t *testing.T) {
	t.Run("one labeled block per mail", func(t *testing.T) {
		mails := []Mail{
			{ID: "m1", Subject: "First", Sender: "a@example.com", Snippet: "one"},
			{ID: "m2", Subject: "Second", Sender: "b@example.com", Snippet: "two"},
		}

		prompt := renderBatch([]Folder{{Path: "Inbox"}}, mails)

		assert.Contains(t, prompt, "### Email #m1")
		assert.Contains(t, prompt, "### Email #m2")
		assert.Contains(t, prompt, "- Subject: First")
		assert.Contains(t, prompt, "- Sender: b@example.com")
	})

	t.Run("input beyond the batch cap is silently dropped", func(t *testing.T) {
		mails := make([]Mail, 25)
		for i := range mails {
			mails[i] = Mail{ID: string(rune('a' + i))}
		}

		prompt := renderBatch(nil, mails)

		assert.Equal(t, MaxBatchSize, strings.Count(prompt, "### Email #"))
		assert.NotContains(t, prompt, "### Email #"+string(rune('a'+MaxBatchSize)))
	})

	t.Run("batch snippet cut at 200 characters", func(t *testing.T) {
		mails := []Mail{{ID: "m1", Snippet: strings.Repeat("b", 300)}}

		prompt := renderBatch(nil, mails)

		assert.Contains(t, prompt, strings.Repeat("b", 200))
		assert.NotContains(t, prompt, strings.Repeat("b", 201))
	})
}
