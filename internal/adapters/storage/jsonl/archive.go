package jsonl

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/reflexion-agent/internal/domain"
)

// Archive is a domain.JournalArchive writing one completed session under
// dated directories:
//
//	<dir>/reflections/YYYY_MM/YYYY_MM_DD_<uuid>.jsonl
//	<dir>/summaries/YYYY_MM/YYYY_MM_DD_<uuid>.json
//	<dir>/insights/YYYY_MM/YYYY_MM_DD_<uuid>.jsonl
type Archive struct {
	dir string
	now func() time.Time
}

// NewArchive creates a journal archive rooted at dir.
func NewArchive(dir string) *Archive {
	return &Archive{dir: dir, now: time.Now}
}

// SaveJournal persists the reflections, the summary entry and the insights.
func (a *Archive) SaveJournal(subject domain.SubjectID, reflections []*domain.Reflection, summary *domain.Reflection, insights []domain.Insight) error {
	now := a.now()
	month := now.Format("2006_01")
	stem := fmt.Sprintf("%s_%s", now.Format("2006_01_02"), uuid.NewString())

	if err := writeLines(filepath.Join(a.dir, "reflections", month, stem+".jsonl"), reflections); err != nil {
		return fmt.Errorf("archiving reflections: %w", err)
	}
	if len(insights) > 0 {
		if err := writeLines(filepath.Join(a.dir, "insights", month, stem+".jsonl"), insights); err != nil {
			return fmt.Errorf("archiving insights: %w", err)
		}
	}
	if summary != nil {
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding summary: %w", err)
		}
		path := filepath.Join(a.dir, "summaries", month, stem+".json")
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("creating summaries dir: %w", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("archiving summary: %w", err)
		}
	}
	return nil
}

// writeLines writes one JSON object per line.
func writeLines[T any](path string, items []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating dir: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			return fmt.Errorf("encoding line: %w", err)
		}
	}
	return nil
}
