package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PabloGalante/reflexion-agent/internal/domain"
)

// Store is the durable domain.ReflectionStore: one document per node with a
// parent_id field, under a per-subject subcollection.
type Store struct {
	client *firestore.Client
}

// NewStore creates a Firestore store for the given GCP project.
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) subjectDoc(subject domain.SubjectID) *firestore.DocumentRef {
	return s.client.Collection("subjects").Doc(string(subject))
}

func (s *Store) reflectionsCol(subject domain.SubjectID) *firestore.CollectionRef {
	return s.subjectDoc(subject).Collection("reflections")
}

func (s *Store) reflectionDoc(subject domain.SubjectID, id domain.ReflectionID) *firestore.DocumentRef {
	return s.reflectionsCol(subject).Doc(string(id))
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type reflectionDoc struct {
	CreatedAt   time.Time `firestore:"created_at"`
	Language    string    `firestore:"language"`
	Question    string    `firestore:"question"`
	Answer      string    `firestore:"answer"`
	Themes      []string  `firestore:"themes"`
	Sentiment   string    `firestore:"sentiment"`
	Type        string    `firestore:"type"`
	Context     string    `firestore:"context"`
	ParentID    string    `firestore:"parent_id"`
	ChildrenIDs []string  `firestore:"children_ids"`
}

func toDoc(node *domain.Reflection) reflectionDoc {
	children := make([]string, 0, len(node.ChildrenIDs))
	for _, id := range node.ChildrenIDs {
		children = append(children, string(id))
	}
	return reflectionDoc{
		CreatedAt:   node.CreatedAt,
		Language:    string(node.Language),
		Question:    node.Question,
		Answer:      node.Answer,
		Themes:      node.Themes,
		Sentiment:   string(node.Sentiment),
		Type:        string(node.Type),
		Context:     node.Context,
		ParentID:    string(node.ParentID),
		ChildrenIDs: children,
	}
}

func fromDoc(id string, doc reflectionDoc) *domain.Reflection {
	children := make([]domain.ReflectionID, 0, len(doc.ChildrenIDs))
	for _, childID := range doc.ChildrenIDs {
		children = append(children, domain.ReflectionID(childID))
	}
	return &domain.Reflection{
		ID:          domain.ReflectionID(id),
		CreatedAt:   doc.CreatedAt,
		Language:    domain.Language(doc.Language),
		Question:    doc.Question,
		Answer:      doc.Answer,
		Themes:      doc.Themes,
		Sentiment:   domain.Sentiment(doc.Sentiment),
		Type:        domain.ReflectionType(doc.Type),
		Context:     doc.Context,
		ParentID:    domain.ReflectionID(doc.ParentID),
		ChildrenIDs: children,
	}
}

// ─────────────────────────────────────────
// ReflectionStore implementation
// ─────────────────────────────────────────

// LoadAll returns every node of one subject in creation order.
func (s *Store) LoadAll(subject domain.SubjectID) ([]*domain.Reflection, error) {
	ctx := context.Background()

	iter := s.reflectionsCol(subject).OrderBy("created_at", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var out []*domain.Reflection
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			if status.Code(err) == codes.NotFound {
				return nil, nil
			}
			return nil, fmt.Errorf("firestore LoadAll: %w", err)
		}

		var doc reflectionDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode reflectionDoc: %w", err)
		}
		out = append(out, fromDoc(snap.Ref.ID, doc))
	}
	return out, nil
}

// SaveAll replaces the subject's stored tree: documents for the given nodes
// are written, stale documents are removed.
func (s *Store) SaveAll(subject domain.SubjectID, reflections []*domain.Reflection) error {
	ctx := context.Background()

	keep := make(map[string]bool, len(reflections))
	for _, node := range reflections {
		keep[string(node.ID)] = true
		if _, err := s.reflectionDoc(subject, node.ID).Set(ctx, toDoc(node)); err != nil {
			return fmt.Errorf("firestore SaveAll set: %w", err)
		}
	}

	iter := s.reflectionsCol(subject).Select().Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return fmt.Errorf("firestore SaveAll list: %w", err)
		}
		if keep[snap.Ref.ID] {
			continue
		}
		if _, err := snap.Ref.Delete(ctx); err != nil {
			return fmt.Errorf("firestore SaveAll delete stale: %w", err)
		}
	}
	return nil
}
