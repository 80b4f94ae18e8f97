package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/reflexion-agent/internal/adapters/llm"
	firestorestore "github.com/PabloGalante/reflexion-agent/internal/adapters/storage/firestore"
	memstore "github.com/PabloGalante/reflexion-agent/internal/adapters/storage/memory"
	sqlitestore "github.com/PabloGalante/reflexion-agent/internal/adapters/storage/sqlite"
	"github.com/PabloGalante/reflexion-agent/internal/config"
	"github.com/PabloGalante/reflexion-agent/internal/domain"
)

var rootCmd = &cobra.Command{
	Use:   "reflexion",
	Short: "Reflexion journal: answer questions, explore the beliefs behind the answers",
}

func main() {
	rootCmd.AddCommand(sessionCmd, questionsCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildAnalysisClient chooses between mock and Vertex by config (useful for dev).
func buildAnalysisClient(ctx context.Context, cfg *config.Config) domain.AnalysisClient {
	if cfg.UseMockLLM {
		log.Println("[LLM] Using MOCK analysis client")
		return llm.NewMock()
	}

	log.Println("[LLM] Using Vertex analysis client")
	client, err := llm.NewGenAIClient(ctx, cfg.GCPProjectID, cfg.GCPLocation, cfg.ModelName, cfg.AnalysisTimeout)
	if err != nil {
		log.Fatalf("error initializing Vertex analysis client: %v", err)
	}
	return client
}

// buildReflectionStore picks the storage backend. The returned closer may be nil.
func buildReflectionStore(ctx context.Context, cfg *config.Config) (domain.ReflectionStore, func() error) {
	switch cfg.StorageBackend {
	case "firestore":
		if cfg.GCPProjectID == "" {
			log.Fatal("REFLEXION_GCP_PROJECT is required for the Firestore storage backend")
		}
		log.Printf("[STORE] Using Firestore storage (project=%s)", cfg.GCPProjectID)
		store, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			log.Fatalf("error initializing Firestore store: %v", err)
		}
		return store, store.Close

	case "sqlite":
		log.Printf("[STORE] Using SQLite storage (path=%s)", cfg.SQLitePath)
		store, err := sqlitestore.OpenStore(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("error initializing SQLite store: %v", err)
		}
		return store, store.Close

	default:
		log.Println("[STORE] Using in-memory storage")
		return memstore.NewReflectionStore(), nil
	}
}
