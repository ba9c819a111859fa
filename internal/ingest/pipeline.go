package ingest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"docchat/internal/domain"
	"docchat/internal/reader"
)

// Pipeline orchestrates one upload batch for one user: read each file,
// archive the original, chunk, embed, and write everything into the
// user's collection.
type Pipeline struct {
	reader   *reader.Reader
	chunker  domain.Chunker
	embedder domain.Embedder
	store    domain.VectorStore
	objects  domain.ObjectStore
	prefix   string
	logger   *log.Logger
}

// Result summarizes one ingestion batch.
type Result struct {
	Documents int
	Chunks    int
	Skipped   int
}

func NewPipeline(
	rd *reader.Reader,
	chunker domain.Chunker,
	embedder domain.Embedder,
	store domain.VectorStore,
	objects domain.ObjectStore,
	prefix string,
	logger *log.Logger,
) (*Pipeline, error) {
	if rd == nil {
		return nil, errors.New("ingest: document reader is required")
	}
	if chunker == nil {
		return nil, errors.New("ingest: chunker is required")
	}
	if embedder == nil {
		return nil, errors.New("ingest: embedder is required")
	}
	if store == nil {
		return nil, errors.New("ingest: vector store is required")
	}
	if objects == nil {
		return nil, errors.New("ingest: object store is required")
	}
	return &Pipeline{
		reader:   rd,
		chunker:  chunker,
		embedder: embedder,
		store:    store,
		objects:  objects,
		prefix:   prefix,
		logger:   logger,
	}, nil
}

// Ingest processes files in order. Unsupported extensions are skipped
// and logged; read and upload failures abort the batch so archival and
// indexing stay consistent. Partial vector writes are not rolled back.
func (p *Pipeline) Ingest(ctx context.Context, paths []string, user string) (*Result, error) {
	if user == "" {
		return nil, errors.New("ingest: user identity is required")
	}
	result := &Result{}
	var documents []domain.Document
	for _, path := range paths {
		if !reader.Supported(path) {
			p.logger.Warn("skipping unsupported file type", "path", path)
			result.Skipped++
			continue
		}
		doc, err := p.reader.Read(path)
		if err != nil {
			return nil, err
		}
		key := fmt.Sprintf("%s/%s/%s", p.prefix, user, filepath.Base(path))
		if err := p.objects.Upload(ctx, path, key); err != nil {
			return nil, &domain.UploadError{Path: path, Key: key, Err: err}
		}
		documents = append(documents, doc)
	}
	result.Documents = len(documents)

	chunks, err := p.chunker.Split(documents)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		p.logger.Info("nothing to ingest", "user", user, "skipped", result.Skipped)
		return result, nil
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}
	vectors, err := p.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, &domain.VectorWriteError{Collection: user, Err: err}
	}
	if len(vectors) != len(chunks) {
		return nil, &domain.VectorWriteError{
			Collection: user,
			Err:        fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks)),
		}
	}
	if err := p.store.EnsureCollection(ctx, user, len(vectors[0])); err != nil {
		return nil, &domain.VectorWriteError{Collection: user, Err: err}
	}
	records := make([]domain.Record, len(chunks))
	for i := range chunks {
		records[i] = domain.Record{
			ID:        uuid.NewString(),
			Text:      chunks[i].Text,
			Embedding: vectors[i],
			Metadata:  chunks[i].Metadata,
		}
	}
	if err := p.store.Upsert(ctx, user, records); err != nil {
		return nil, &domain.VectorWriteError{Collection: user, Err: err}
	}
	result.Chunks = len(chunks)
	p.logger.Info("ingestion complete",
		"user", user,
		"documents", result.Documents,
		"chunks", result.Chunks,
		"skipped", result.Skipped,
	)
	return result, nil
}
