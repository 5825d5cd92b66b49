// Package index walks downloaded manuals, extracts per-page text, and
// upserts embedded passages into the vector collection.
package index

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/autodocs/manuals-cli/internal/semantic"
)

// Embedder turns a batch of texts into vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Upserter stores embedded passages.
type Upserter interface {
	Upsert(ctx context.Context, records []semantic.PassageRecord) error
}

// Indexer builds the passage index from PDF files.
type Indexer struct {
	embedder  Embedder
	store     Upserter
	batchSize int
}

// New creates an Indexer. batchSize bounds how many pages are embedded and
// upserted per API call.
func New(embedder Embedder, store Upserter, batchSize int) *Indexer {
	if batchSize <= 0 {
		batchSize = 64
	}
	return &Indexer{embedder: embedder, store: store, batchSize: batchSize}
}

// PageKey is the stable identity of one page of one manual.
func PageKey(relPath string, page int) string {
	return fmt.Sprintf("%s::page:%d", relPath, page)
}

// PointID derives the deterministic vector-store ID for a page key, so
// re-indexing overwrites instead of duplicating.
func PointID(key string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

type pageText struct {
	rel  string
	file string
	page int
	text string
}

// Run indexes every .pdf under the source directories. Returns the number of
// pages indexed. Unreadable files and empty pages are logged and skipped.
func (ix *Indexer) Run(ctx context.Context, sourceDirs []string) (int, error) {
	files := collectPDFs(sourceDirs)
	if len(files) == 0 {
		zap.L().Info("no pdf files to index")
		return 0, nil
	}

	indexed := 0
	var batch []pageText
	for _, path := range files {
		pages, err := extractPages(path)
		if err != nil {
			zap.L().Warn("skipping unreadable pdf",
				zap.String("path", path),
				zap.Error(err),
			)
			continue
		}

		rel := relPath(path)
		file := filepath.Base(path)
		for _, p := range pages {
			p.rel = rel
			p.file = file
			batch = append(batch, p)
			if len(batch) >= ix.batchSize {
				if err := ix.flush(ctx, batch); err != nil {
					return indexed, err
				}
				indexed += len(batch)
				zap.L().Info("indexed batch", zap.Int("pages", indexed))
				batch = batch[:0]
			}
		}
	}

	if len(batch) > 0 {
		if err := ix.flush(ctx, batch); err != nil {
			return indexed, err
		}
		indexed += len(batch)
	}

	zap.L().Info("indexing complete", zap.Int("pages", indexed))
	return indexed, nil
}

func (ix *Indexer) flush(ctx context.Context, batch []pageText) error {
	texts := make([]string, len(batch))
	for i, p := range batch {
		texts[i] = p.text
	}

	vectors, err := ix.embedder.Embed(ctx, texts)
	if err != nil {
		return eris.Wrap(err, "index: embed batch")
	}

	records := make([]semantic.PassageRecord, len(batch))
	for i, p := range batch {
		records[i] = semantic.PassageRecord{
			ID:        PointID(PageKey(p.rel, p.page)),
			Embedding: vectors[i],
			Content:   p.text,
			Source:    p.rel,
			File:      p.file,
			Page:      p.page,
		}
	}

	return ix.store.Upsert(ctx, records)
}

// collectPDFs walks the source directories recursively for .pdf files.
func collectPDFs(dirs []string) []string {
	var files []string
	for _, dir := range dirs {
		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil // unreadable subtree, keep going
			}
			if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".pdf") {
				files = append(files, path)
			}
			return nil
		})
	}
	return files
}

// extractPages pulls plaintext per page, skipping pages with no usable text.
func extractPages(path string) ([]pageText, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "index: open pdf %s", path)
	}
	defer f.Close() //nolint:errcheck

	var pages []pageText
	total := r.NumPage()
	for n := 1; n <= total; n++ {
		page := r.Page(n)
		if page.V.IsNull() {
			zap.L().Warn("skipping null page", zap.String("path", path), zap.Int("page", n))
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			zap.L().Warn("failed to extract page text",
				zap.String("path", path),
				zap.Int("page", n),
				zap.Error(err),
			)
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		pages = append(pages, pageText{page: n, text: text})
	}
	return pages, nil
}

func relPath(path string) string {
	rel, err := filepath.Rel(".", path)
	if err != nil {
		return path
	}
	return rel
}
