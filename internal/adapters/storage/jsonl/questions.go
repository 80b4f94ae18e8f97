package jsonl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/PabloGalante/reflexion-agent/internal/domain"
)

// QuestionFile is a domain.QuestionStore backed by one JSONL file, one
// question entry per line. The format matches the original questions.jsonl
// data files.
type QuestionFile struct {
	path string
}

// NewQuestionFile creates a question store at path. The file does not need
// to exist yet.
func NewQuestionFile(path string) *QuestionFile {
	return &QuestionFile{path: path}
}

// LoadQuestions reads the bank. A missing file yields an empty bank;
// malformed lines are skipped so one bad entry never blocks the rest.
func (f *QuestionFile) LoadQuestions() ([]domain.QuestionEntry, error) {
	file, err := os.Open(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening questions file: %w", err)
	}
	defer file.Close()

	var entries []domain.QuestionEntry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry domain.QuestionEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		if entry.Question == "" {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return entries, fmt.Errorf("reading questions file: %w", err)
	}
	return entries, nil
}

// SaveQuestions rewrites the whole bank.
func (f *QuestionFile) SaveQuestions(entries []domain.QuestionEntry) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("creating questions dir: %w", err)
	}
	file, err := os.Create(f.path)
	if err != nil {
		return fmt.Errorf("creating questions file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for _, entry := range entries {
		line, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("encoding question entry: %w", err)
		}
		if _, err := w.Write(append(line, '\n')); err != nil {
			return fmt.Errorf("writing questions file: %w", err)
		}
	}
	return w.Flush()
}
