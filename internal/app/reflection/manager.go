package reflection

import (
	"context"
	"math/rand"
	"time"

	"github.com/PabloGalante/reflexion-agent/internal/domain"
	"github.com/PabloGalante/reflexion-agent/internal/observability"
)

// Manager owns one subject's reflection tree: a map of nodes plus the id of
// the original entry. All operations are sequential; the manager is not safe
// for concurrent use. Expected conditions (missing node, unanswered node,
// failed analysis) are signalled through return values, never errors.
type Manager struct {
	subject domain.SubjectID
	lang    domain.Language
	llm     domain.AnalysisClient

	rootID domain.ReflectionID
	nodes  map[domain.ReflectionID]*domain.Reflection
	order  []domain.ReflectionID // insertion order, drives iteration and reports

	rng *rand.Rand
	now func() time.Time
}

// Option customizes a Manager, mainly for tests.
type Option func(*Manager)

// WithRand injects the random source used for unanswered-node picks.
func WithRand(rng *rand.Rand) Option {
	return func(m *Manager) { m.rng = rng }
}

// WithClock injects the clock used for node timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates an empty tree manager for one subject. lang is the
// fallback language used when no node carries one yet.
func NewManager(subject domain.SubjectID, lang domain.Language, llm domain.AnalysisClient, opts ...Option) *Manager {
	m := &Manager{
		subject: subject,
		lang:    lang,
		llm:     llm,
		nodes:   make(map[domain.ReflectionID]*domain.Reflection),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Subject returns the owner of this tree.
func (m *Manager) Subject() domain.SubjectID {
	return m.subject
}

// Upsert inserts a node or overwrites an existing one by id. The first node
// ever inserted becomes the root. Upsert establishes map membership only;
// parent/child linkage is maintained by the callers that create children
// (Analyze) and by Delete.
func (m *Manager) Upsert(node *domain.Reflection) domain.ReflectionID {
	if m.rootID == "" {
		m.rootID = node.ID
	}
	if _, exists := m.nodes[node.ID]; !exists {
		m.order = append(m.order, node.ID)
	}
	m.nodes[node.ID] = node
	return node.ID
}

// SeedRoot creates an unanswered reflection from a question-bank entry and
// inserts it. The entry's language wins over the manager default when set.
func (m *Manager) SeedRoot(entry domain.QuestionEntry) *domain.Reflection {
	lang := entry.Language
	if lang == "" {
		lang = m.lang
	}
	node := domain.NewReflection(entry.Question, lang)
	node.CreatedAt = m.now()
	m.Upsert(node)
	return node
}

// Get returns the node for id, or nil if absent.
func (m *Manager) Get(id domain.ReflectionID) *domain.Reflection {
	return m.nodes[id]
}

// RootID returns the id of the original entry, or "" for an empty tree.
func (m *Manager) RootID() domain.ReflectionID {
	return m.rootID
}

// Parent resolves a node's parent, or nil for the root, an absent node, or a
// dangling reference.
func (m *Manager) Parent(id domain.ReflectionID) *domain.Reflection {
	node := m.Get(id)
	if node == nil || node.ParentID == "" {
		return nil
	}
	return m.Get(node.ParentID)
}

// Children resolves a node's children in insertion order. Ids that no longer
// resolve are skipped.
func (m *Manager) Children(id domain.ReflectionID) []*domain.Reflection {
	node := m.Get(id)
	if node == nil {
		return nil
	}
	children := make([]*domain.Reflection, 0, len(node.ChildrenIDs))
	for _, childID := range node.ChildrenIDs {
		if child := m.Get(childID); child != nil {
			children = append(children, child)
		}
	}
	return children
}

// All returns every node in insertion order.
func (m *Manager) All() []*domain.Reflection {
	out := make([]*domain.Reflection, 0, len(m.order))
	for _, id := range m.order {
		if node := m.Get(id); node != nil {
			out = append(out, node)
		}
	}
	return out
}

// RandomUnanswered picks uniformly among unanswered nodes, or returns nil if
// the tree is fully answered. Randomness keeps the answering order from
// becoming predictable and surfaces buried follow-ups.
func (m *Manager) RandomUnanswered() *domain.Reflection {
	var candidates []*domain.Reflection
	for _, node := range m.All() {
		if !node.Answered() {
			candidates = append(candidates, node)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	return candidates[m.rng.Intn(len(candidates))]
}

// Answer sets or edits a node's answer. Returns false if the node is absent.
func (m *Manager) Answer(id domain.ReflectionID, answer string) bool {
	node := m.Get(id)
	if node == nil {
		return false
	}
	node.Answer = answer
	return true
}

// Language returns the language of the first node that carries one, falling
// back to the manager default.
func (m *Manager) Language() domain.Language {
	for _, node := range m.All() {
		if node.Language != "" {
			return node.Language
		}
	}
	return m.lang
}

// Delete removes a node. Children are reparented to the deleted node's
// parent; with no parent to inherit, orphaned subtrees are recursively
// removed instead of being left rootless. Returns false if id is absent.
//
// Deleting the root resets the whole session (root id cleared, map
// discarded). That policy lives in the single branch at the end so the
// alternative — keep survivors as new root candidates — can be swapped in
// without touching the reparenting logic.
func (m *Manager) Delete(id domain.ReflectionID) bool {
	node := m.Get(id)
	if node == nil {
		return false
	}

	parent := m.Parent(id)
	for _, child := range m.Children(id) {
		if parent != nil {
			child.ParentID = parent.ID
			parent.ChildrenIDs = append(parent.ChildrenIDs, child.ID)
		} else {
			m.Delete(child.ID)
		}
	}
	if parent != nil {
		parent.ChildrenIDs = removeID(parent.ChildrenIDs, id)
	}

	delete(m.nodes, id)
	m.order = removeID(m.order, id)

	if id == m.rootID {
		m.rootID = ""
		m.nodes = make(map[domain.ReflectionID]*domain.Reflection)
		m.order = nil
	}
	return true
}

// DeleteUnanswered prunes every unanswered node, reparenting answered
// descendants upward. Used before computing statistics or a final report.
func (m *Manager) DeleteUnanswered() {
	for _, id := range append([]domain.ReflectionID(nil), m.order...) {
		node := m.Get(id)
		if node != nil && !node.Answered() {
			m.Delete(id)
		}
	}
}

// Analyze runs the Analysis Client over one answered node and expands its
// beliefs into children. Returns false when the node is absent, unanswered,
// or the client fails; in every failure case the node is left untouched so
// the call can be retried. Re-analyzing an already-analyzed node is a no-op
// returning true, which keeps retries from duplicating children.
func (m *Manager) Analyze(ctx context.Context, id domain.ReflectionID) bool {
	log := observability.LoggerFromContext(ctx).With("subject", m.subject, "reflection_id", id)

	node := m.Get(id)
	if node == nil || !node.Answered() {
		log.Warn("reflection not found or answer not set")
		return false
	}
	if node.Analyzed() {
		return true
	}

	analysis := m.llm.AnalyzeEntry(ctx, node.Question, node.Answer, node.Language)
	if analysis == nil {
		log.Warn("analysis not generated")
		return false
	}

	node.Themes = analysis.Themes
	node.Sentiment = analysis.Sentiment

	// Children mirror the order beliefs were returned.
	for _, belief := range analysis.Beliefs {
		child := domain.NewReflection(belief.ChallengeQuestion, node.Language)
		child.CreatedAt = m.now()
		child.Context = belief.Statement
		child.Type = belief.Type
		child.ParentID = node.ID
		m.Upsert(child)
		node.ChildrenIDs = append(node.ChildrenIDs, child.ID)
	}

	log.Info("reflection analyzed", "themes", len(analysis.Themes), "beliefs", len(analysis.Beliefs))
	return true
}

// AnalyzeAll analyzes every node currently in the map. It iterates a
// snapshot of ids: children created mid-pass are not themselves analyzed
// (they start unanswered anyway), and the map is never mutated while being
// ranged over.
func (m *Manager) AnalyzeAll(ctx context.Context) {
	for _, id := range append([]domain.ReflectionID(nil), m.order...) {
		m.Analyze(ctx, id)
	}
}

// Statistics returns how many nodes have been analyzed and how many exist.
func (m *Manager) Statistics() (analyzed, total int) {
	for _, node := range m.nodes {
		if node.Analyzed() {
			analyzed++
		}
	}
	return analyzed, len(m.nodes)
}

// Hydrate replaces the manager's state with nodes loaded from a store. The
// node without a parent becomes the root.
func (m *Manager) Hydrate(nodes []*domain.Reflection) {
	m.rootID = ""
	m.nodes = make(map[domain.ReflectionID]*domain.Reflection, len(nodes))
	m.order = nil
	for _, node := range nodes {
		if _, exists := m.nodes[node.ID]; !exists {
			m.order = append(m.order, node.ID)
		}
		m.nodes[node.ID] = node
	}
	for _, node := range nodes {
		if node.ParentID == "" {
			m.rootID = node.ID
			break
		}
	}
}

// LoadFrom hydrates the tree from a reflection store.
func (m *Manager) LoadFrom(store domain.ReflectionStore) error {
	nodes, err := store.LoadAll(m.subject)
	if err != nil {
		return err
	}
	m.Hydrate(nodes)
	return nil
}

// SaveTo flushes the whole tree to a reflection store.
func (m *Manager) SaveTo(store domain.ReflectionStore) error {
	return store.SaveAll(m.subject, m.All())
}

func removeID(ids []domain.ReflectionID, id domain.ReflectionID) []domain.ReflectionID {
	out := ids[:0]
	for _, candidate := range ids {
		if candidate != id {
			out = append(out, candidate)
		}
	}
	return out
}
