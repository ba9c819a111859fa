package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"docchat/internal/config"
	"docchat/internal/domain"
	"docchat/internal/model"
	"docchat/internal/rag"
	"docchat/internal/tui"
	"docchat/internal/vectorstore/memory"
	"docchat/internal/vectorstore/qdrant"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "chat"})

	var cfgPath, user string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/docchat/config.yaml if not provided)")
	flag.StringVar(&user, "user", "", "User identity; chat runs against this user's collection")
	flag.Parse()
	if user == "" {
		fmt.Println("Usage: chat -user=<name> [-config=config.yaml]")
		os.Exit(1)
	}

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		logger.Fatal("failed to load config", "err", err)
	}

	required := model.RequiredSecrets(cfg)
	if cfg.VectorStore.Type == "qdrant" {
		required = append(required, config.KeyQdrantURL)
	}
	secrets, err := config.LoadSecrets(logger, required...)
	if err != nil {
		logger.Fatal("failed to load secrets", "err", err)
	}

	ctx := context.Background()

	loader := model.NewLoader(cfg, secrets, logger)
	embedder, err := loader.LoadEmbedder(ctx)
	if err != nil {
		logger.Fatal("failed to load embedding model", "err", err)
	}
	llm, callOpts, err := loader.LoadLLM(ctx)
	if err != nil {
		logger.Fatal("failed to load llm", "err", err)
	}
	store, err := buildVectorStore(cfg, secrets)
	if err != nil {
		logger.Fatal("failed to build vector store", "err", err)
	}

	service, err := rag.NewConversational(ctx, user, llm, callOpts, embedder, store, logger)
	if err != nil {
		logger.Fatal("failed to initialize conversation", "err", err)
	}

	m := tui.New(service, user)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		logger.Fatal("tui terminated", "err", err)
	}
}

func buildVectorStore(cfg *config.AppConfig, secrets *config.Secrets) (domain.VectorStore, error) {
	switch cfg.VectorStore.Type {
	case "memory":
		return memory.NewStore(), nil
	case "qdrant":
		return qdrant.NewStore(qdrant.Config{
			URL:    secrets.Get(config.KeyQdrantURL),
			APIKey: secrets.Get(config.KeyQdrantAPIKey),
		}), nil
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.VectorStore.Type)
	}
}
