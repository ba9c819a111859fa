package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"docchat/internal/chunker"
	"docchat/internal/config"
	"docchat/internal/domain"
	"docchat/internal/ingest"
	"docchat/internal/model"
	"docchat/internal/objectstore/s3"
	"docchat/internal/reader"
	"docchat/internal/vectorstore/memory"
	"docchat/internal/vectorstore/qdrant"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "ingest"})

	var cfgPath, user string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/docchat/config.yaml if not provided)")
	flag.StringVar(&user, "user", "", "User identity; each user gets their own collection")
	flag.Parse()
	paths := flag.Args()
	if user == "" || len(paths) == 0 {
		fmt.Println("Usage: ingest -user=<name> [-config=config.yaml] file1.pdf [file2.docx ...]")
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

	required := requiredSecrets(cfg)
	secrets, err := config.LoadSecrets(logger, required...)
	if err != nil {
		logger.Fatal("failed to load secrets", "err", err)
	}

	ctx := context.Background()

	embedder, err := model.NewLoader(cfg, secrets, logger).LoadEmbedder(ctx)
	if err != nil {
		logger.Fatal("failed to load embedding model", "err", err)
	}
	store, err := buildVectorStore(cfg, secrets)
	if err != nil {
		logger.Fatal("failed to build vector store", "err", err)
	}
	objects, err := s3.NewStore(ctx, secrets, cfg.S3.BucketName, logger)
	if err != nil {
		logger.Fatal("failed to build object store", "err", err)
	}

	pipeline, err := ingest.NewPipeline(
		reader.New(logger),
		chunker.NewRecursiveCharacter(chunker.DefaultChunkSize, chunker.DefaultOverlap),
		embedder,
		store,
		objects,
		cfg.S3.PreindexPrefix,
		logger,
	)
	if err != nil {
		logger.Fatal("failed to assemble pipeline", "err", err)
	}

	result, err := pipeline.Ingest(ctx, paths, user)
	if err != nil {
		logger.Fatal("ingestion failed", "err", err)
	}
	fmt.Printf("Ingested %d documents (%d chunks, %d skipped) for %s\n",
		result.Documents, result.Chunks, result.Skipped, user)
}

func requiredSecrets(cfg *config.AppConfig) []string {
	required := model.RequiredSecrets(cfg)
	required = append(required, s3.SecretKeys...)
	if cfg.VectorStore.Type == "qdrant" {
		required = append(required, config.KeyQdrantURL)
	}
	return required
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
