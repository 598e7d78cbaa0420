// Package ingest materializes the batch of raw harness artifacts handed to
// the pipeline: JSON documents read from local results directories or pulled
// off a remote artifact server beforehand.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/bitcoin-commons/bench-cli/internal/model"
)

// Batch is a materialized set of documents plus the problems encountered
// while reading them. A malformed artifact is a warning, not a failure: the
// rest of the batch proceeds.
type Batch struct {
	Documents []model.Document
	Warnings  []string
}

// LoadDir reads every .json file directly under dir as one document tagged
// with the given source. Files are visited in name order so the batch, and
// therefore the final report, is deterministic. A missing or unreadable
// directory is a caller error; a malformed file is not.
func LoadDir(dir string, source model.Source) (Batch, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Batch{}, eris.Wrapf(err, "ingest: read dir %s", dir)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var batch Batch
	for _, name := range names {
		doc, err := LoadFile(filepath.Join(dir, name), source)
		if err != nil {
			batch.Warnings = append(batch.Warnings, fmt.Sprintf(
				"skipped malformed artifact %s (%s): %s", name, source, eris.Cause(err)))
			zap.L().Warn("ingest: skipping malformed artifact",
				zap.String("file", name),
				zap.String("source", string(source)),
				zap.Error(err),
			)
			continue
		}
		batch.Documents = append(batch.Documents, doc)
	}

	zap.L().Debug("ingest: directory loaded",
		zap.String("dir", dir),
		zap.String("source", string(source)),
		zap.Int("documents", len(batch.Documents)),
		zap.Int("skipped", len(batch.Warnings)),
	)
	return batch, nil
}

// LoadFile reads a single artifact. The suite label is the filename without
// its extension; it becomes the fallback benchmark name when the document
// carries no label of its own.
func LoadFile(path string, source model.Source) (model.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Document{}, eris.Wrapf(err, "ingest: open %s", path)
	}
	defer f.Close()

	root, err := model.DecodeValue(f)
	if err != nil {
		return model.Document{}, eris.Wrapf(err, "ingest: parse %s", path)
	}

	return model.Document{
		Root:   root,
		Source: source,
		Suite:  SuiteLabel(path),
	}, nil
}

// SuiteLabel derives the suite label from an artifact path:
// "results/core/block_validation.json" -> "block_validation".
func SuiteLabel(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Merge concatenates batches in order, combining their warnings. The merged
// document slice is non-nil even when empty, so an empty results directory
// still yields a valid (empty) pipeline batch.
func Merge(batches ...Batch) Batch {
	out := Batch{Documents: []model.Document{}}
	for _, b := range batches {
		out.Documents = append(out.Documents, b.Documents...)
		out.Warnings = append(out.Warnings, b.Warnings...)
	}
	return out
}
