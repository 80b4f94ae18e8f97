package memory_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/reflexion-agent/internal/adapters/storage/memory"
	"github.com/PabloGalante/reflexion-agent/internal/domain"
)

func TestReflectionStoreRoundTrip(t *testing.T) {
	store := memory.NewReflectionStore()

	root := domain.NewReflection("root?", domain.LangEN)
	root.Answer = "yes"
	child := domain.NewReflection("child?", domain.LangEN)
	child.ParentID = root.ID
	root.ChildrenIDs = []domain.ReflectionID{child.ID}

	require.NoError(t, store.SaveAll("subject-a", []*domain.Reflection{root, child}))

	loaded, err := store.LoadAll("subject-a")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	require.Equal(t, root.ID, loaded[0].ID)
	require.Equal(t, []domain.ReflectionID{child.ID}, loaded[0].ChildrenIDs)

	// The store hands out copies: mutating a loaded node must not leak back.
	loaded[0].Answer = "mutated"
	again, err := store.LoadAll("subject-a")
	require.NoError(t, err)
	require.Equal(t, "yes", again[0].Answer)
}

func TestReflectionStoreSubjectsAreIsolated(t *testing.T) {
	store := memory.NewReflectionStore()

	require.NoError(t, store.SaveAll("subject-a", []*domain.Reflection{domain.NewReflection("a?", domain.LangEN)}))

	loaded, err := store.LoadAll("subject-b")
	require.NoError(t, err)
	require.Empty(t, loaded)
}
