// Package ingestion loads the batch of job artifact bundles produced upstream.
package ingestion

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/job-applier/internal/schemas"
	"github.com/jonathan/job-applier/internal/types"
)

var (
	// ErrInvalidBatch is returned when the batch document is not an object of entries
	ErrInvalidBatch = errors.New("invalid batch")
	// ErrInvalidEntry marks a single entry that failed validation
	ErrInvalidEntry = errors.New("invalid batch entry")
	// ErrReadFailed is returned when the batch file cannot be read
	ErrReadFailed = errors.New("failed to read batch")
)

// LoadBatch reads and validates the batch file at path.
func LoadBatch(path string) (types.Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}
	return DecodeBatch(data)
}

// DecodeBatch decodes data, keeping the order of keys in the document. A
// repeated key keeps its first position and its last value. Only a document
// that is not a JSON object of objects is rejected; an entry that fails
// validation is kept with its Invalid error set.
func DecodeBatch(data []byte) (types.Batch, error) {
	if err := schemas.ValidateBatch(string(data)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBatch, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil { // opening brace
		return nil, fmt.Errorf("%w: %w", ErrInvalidBatch, err)
	}

	var batch types.Batch
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidBatch, err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected token %v", ErrInvalidBatch, tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: entry %q: %w", ErrInvalidBatch, key, err)
		}

		entry := types.BatchEntry{Key: key}
		entry.Artifact, entry.Invalid = decodeEntry(raw)

		if i, seen := index[key]; seen {
			batch[i] = entry
			continue
		}
		index[key] = len(batch)
		batch = append(batch, entry)
	}

	return batch, nil
}

// decodeEntry decodes one bundle as far as it can. The returned artifact is
// filled even when the entry is invalid, so it can still be reported.
func decodeEntry(raw json.RawMessage) (types.JobArtifact, error) {
	var artifact types.JobArtifact
	if err := schemas.ValidateBatchEntry(string(raw)); err != nil {
		_ = json.Unmarshal(raw, &artifact)
		return artifact, fmt.Errorf("%w: %w", ErrInvalidEntry, err)
	}
	if err := json.Unmarshal(raw, &artifact); err != nil {
		return artifact, fmt.Errorf("%w: %w", ErrInvalidEntry, err)
	}
	if err := artifact.Validate(); err != nil {
		return artifact, fmt.Errorf("%w: %w", ErrInvalidEntry, err)
	}
	return artifact, nil
}

// ApplicantFor derives the profile used for one application: the bundle's
// profile with document paths from the bundle, relative paths resolved
// against artifactsDir. The bundle itself is left untouched.
func ApplicantFor(a types.JobArtifact, artifactsDir string) types.ApplicantProfile {
	docs := types.DocumentPaths{
		CV:          resolvePath(a.DocumentPaths.CV, artifactsDir),
		CoverLetter: resolvePath(a.DocumentPaths.CoverLetter, artifactsDir),
	}
	return a.UserProfile.WithDocuments(docs)
}

func resolvePath(p, base string) string {
	if p == "" || base == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
