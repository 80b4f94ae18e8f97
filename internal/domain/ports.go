package domain

import "context"

// AnalysisClient defines how the core interacts with the LLM analysis
// service. Both methods return nil on any failure (network, timeout, parse,
// provider error) and never panic: a nil result means "no analysis, node
// unchanged, safe to retry".
type AnalysisClient interface {
	AnalyzeEntry(ctx context.Context, question, answer string, lang Language) *EntryAnalysis
	AnalyzeReport(ctx context.Context, report string, lang Language) *ReportAnalysis
}

// ReflectionStore defines persistence for one subject's reflection nodes.
// The tree manager operates on its in-memory map and hydrates from / flushes
// to a store as a whole; implementations may be a map, a file, or a
// row-per-node table keyed by parent id.
type ReflectionStore interface {
	LoadAll(subject SubjectID) ([]*Reflection, error)
	SaveAll(subject SubjectID, reflections []*Reflection) error
}

// QuestionStore persists the question bank as a whole.
type QuestionStore interface {
	LoadQuestions() ([]QuestionEntry, error)
	SaveQuestions(entries []QuestionEntry) error
}

// JournalArchive persists the outcome of one completed journaling session:
// the full reflection set, the synthetic summary entry and the insight list.
type JournalArchive interface {
	SaveJournal(subject SubjectID, reflections []*Reflection, summary *Reflection, insights []Insight) error
}
