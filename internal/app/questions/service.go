package questions

import (
	"math/rand"
	"time"

	"github.com/PabloGalante/reflexion-agent/internal/domain"
	"github.com/PabloGalante/reflexion-agent/internal/observability"
)

// Service is the question bank: a weighted pool of seed questions that new
// journaling sessions draw their root question from. Entries are keyed by
// question text; the store, when present, is rewritten after every mutation.
type Service struct {
	store   domain.QuestionStore
	entries map[string]domain.QuestionEntry
	order   []string

	rng *rand.Rand
	now func() time.Time
}

// Option customizes a Service, mainly for tests.
type Option func(*Service)

// WithRand injects the random source used for weighted draws.
func WithRand(rng *rand.Rand) Option {
	return func(s *Service) { s.rng = rng }
}

// WithClock injects the clock used to stamp new entries.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a question bank, hydrated from store when one is given.
// A store load failure is not fatal: the bank starts empty and is logged,
// matching how a missing questions file behaves.
func NewService(store domain.QuestionStore, opts ...Option) *Service {
	s := &Service{
		store:   store,
		entries: make(map[string]domain.QuestionEntry),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if store != nil {
		loaded, err := store.LoadQuestions()
		if err != nil {
			observability.Logger().Warn("loading questions failed", "error", err)
		}
		for _, entry := range loaded {
			s.add(entry)
		}
	}
	return s
}

// add inserts without persisting; duplicates by question text are rejected.
func (s *Service) add(entry domain.QuestionEntry) bool {
	if entry.Question == "" {
		return false
	}
	if _, exists := s.entries[entry.Question]; exists {
		return false
	}
	s.entries[entry.Question] = entry
	s.order = append(s.order, entry.Question)
	return true
}

// All returns every entry in insertion order.
func (s *Service) All() []domain.QuestionEntry {
	out := make([]domain.QuestionEntry, 0, len(s.order))
	for _, q := range s.order {
		out = append(out, s.entries[q])
	}
	return out
}

// RandomEntry draws one entry with probability proportional to its weight.
// Weights need not sum to 1; entries with zero weight are never drawn unless
// every entry has zero weight, in which case the draw is uniform. Returns
// false when the bank is empty.
func (s *Service) RandomEntry() (domain.QuestionEntry, bool) {
	if len(s.order) == 0 {
		return domain.QuestionEntry{}, false
	}

	var total float64
	for _, q := range s.order {
		total += s.entries[q].Weight
	}
	if total <= 0 {
		return s.entries[s.order[s.rng.Intn(len(s.order))]], true
	}

	target := s.rng.Float64() * total
	for _, q := range s.order {
		target -= s.entries[q].Weight
		if target < 0 {
			return s.entries[q], true
		}
	}
	// Float accumulation can leave target at the far edge.
	return s.entries[s.order[len(s.order)-1]], true
}

// Add inserts a new entry and persists the bank. Returns false on a
// duplicate question.
func (s *Service) Add(entry domain.QuestionEntry) bool {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	if entry.Language == "" {
		entry.Language = domain.LangEN
	}
	if !s.add(entry) {
		return false
	}
	s.persist()
	return true
}

// Delete removes an entry by question text and persists the bank. Returns
// false when the question is not in the bank.
func (s *Service) Delete(question string) bool {
	if _, exists := s.entries[question]; !exists {
		return false
	}
	delete(s.entries, question)
	for i, q := range s.order {
		if q == question {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.persist()
	return true
}

func (s *Service) persist() {
	if s.store == nil {
		return
	}
	if err := s.store.SaveQuestions(s.All()); err != nil {
		observability.Logger().Error("saving questions failed", "error", err)
	}
}
