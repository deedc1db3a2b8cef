package mailimport

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"mailsift/internal/models"
	"mailsift/internal/store"
	"mailsift/internal/util"
)

// Record is one mail as it appears in an export file.
type Record struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	Sender  string `json:"sender"`
	Snippet string `json:"snippet"`
}

// Stats summarizes one import run.
type Stats struct {
	Files    int
	Imported int
	Skipped  int
}

// Importer loads mail export files into the store. Export files are JSON
// arrays of mail records; a directory is walked recursively for .json
// files.
type Importer struct {
	mailStore store.MailStore
}

func NewImporter(ms store.MailStore) *Importer {
	return &Importer{mailStore: ms}
}

// ImportPath imports a single export file or every .json file under a
// directory. Unreadable or malformed files are skipped with a log line;
// only filesystem-level failures abort the run.
func (i *Importer) ImportPath(ctx context.Context, path string) (Stats, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Stats{}, err
	}

	files := []string{path}
	if info.IsDir() {
		files, err = discoverExportFiles(path)
		if err != nil {
			return Stats{}, err
		}
	}

	var stats Stats
	for _, file := range files {
		imported, err := i.importFile(ctx, file)
		if err != nil {
			log.Warnf("Skipping '%s': %v", file, err)
			stats.Skipped++
			continue
		}
		stats.Files++
		stats.Imported += imported
	}
	return stats, nil
}

func (i *Importer) importFile(ctx context.Context, path string) (int, error) {
	if binary, err := util.IsLikelyBinary(path); err != nil {
		return 0, err
	} else if binary {
		return 0, fmt.Errorf("file looks binary")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	content, err := util.CleanFileContent(raw, path)
	if err != nil {
		return 0, err
	}

	var records []Record
	if err := json.Unmarshal([]byte(content), &records); err != nil {
		return 0, fmt.Errorf("invalid export file: %w", err)
	}

	imported := 0
	for _, rec := range records {
		mail := RecordToMail(rec)
		if err := i.mailStore.UpsertMail(ctx, mail); err != nil {
			log.Errorf("Failed to import mail '%s' from '%s': %v", mail.ID, path, err)
			continue
		}
		imported++
	}
	log.Infof("Imported %d mails from '%s'", imported, path)
	return imported, nil
}

// RecordToMail converts an export record into a storable mail, assigning
// an id when the export carries none.
func RecordToMail(rec Record) *models.Mail {
	id := strings.TrimSpace(rec.ID)
	if id == "" {
		id = uuid.New().String()
	}
	return &models.Mail{
		ID:      id,
		Subject: util.CleanText(rec.Subject),
		Sender:  util.CleanText(rec.Sender),
		Snippet: util.CleanText(rec.Snippet),
	}
}

func discoverExportFiles(rootDir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(rootDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(d.Name()), ".json") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
