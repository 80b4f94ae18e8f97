package memory

import (
	"sync"

	"github.com/PabloGalante/reflexion-agent/internal/domain"
)

// ReflectionStore is a simple in-memory implementation of
// domain.ReflectionStore. It is NOT persistent and is only suitable for
// development / local mode. Nodes are stored as deep copies so callers never
// alias the store's state.
type ReflectionStore struct {
	mu        sync.RWMutex
	bySubject map[domain.SubjectID][]*domain.Reflection
}

// NewReflectionStore creates a new in-memory ReflectionStore.
func NewReflectionStore() *ReflectionStore {
	return &ReflectionStore{
		bySubject: make(map[domain.SubjectID][]*domain.Reflection),
	}
}

func (s *ReflectionStore) LoadAll(subject domain.SubjectID) ([]*domain.Reflection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.bySubject[subject]
	out := make([]*domain.Reflection, 0, len(stored))
	for _, node := range stored {
		out = append(out, node.Clone())
	}
	return out, nil
}

func (s *ReflectionStore) SaveAll(subject domain.SubjectID, reflections []*domain.Reflection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]*domain.Reflection, 0, len(reflections))
	for _, node := range reflections {
		stored = append(stored, node.Clone())
	}
	s.bySubject[subject] = stored
	return nil
}
