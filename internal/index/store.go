package index

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/gofrs/flock"

	"openio-assistant/internal/service"
)

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_blob_store.go -package=mocks openio-assistant/internal/index BlobStore

// BlobStore is the durable content-addressed store contract. Handles are
// opaque content hashes; both operations may fail with a transport error.
type BlobStore interface {
	// Upload persists raw bytes and returns the handle they can be fetched by.
	Upload(ctx context.Context, data []byte) (string, error)
	// Download fetches the bytes previously persisted under the handle.
	Download(ctx context.Context, rootHash string) ([]byte, error)
}

// Store persists and loads index snapshots. The local snapshot is a JSON
// array of chunk records plus a companion meta file; the remote copy is the
// same chunk array pushed to the durable store.
type Store struct {
	indexPath string
	metaPath  string
	blob      BlobStore
}

// NewStore creates a snapshot store writing to the given local paths and
// using blob for durable persistence.
func NewStore(indexPath, metaPath string, blob BlobStore) *Store {
	return &Store{
		indexPath: indexPath,
		metaPath:  metaPath,
		blob:      blob,
	}
}

// SaveLocal writes the index snapshot and its meta file. The write is guarded
// by a file lock so two processes sharing a data directory cannot interleave
// partial snapshots.
func (s *Store) SaveLocal(idx Index, meta Meta) error {
	lock := flock.New(s.indexPath + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock snapshot: %w", err)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	data, err := json.Marshal(idx)
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}
	if err := os.WriteFile(s.indexPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	metaData, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal meta: %w", err)
	}
	if err := os.WriteFile(s.metaPath, metaData, 0644); err != nil {
		return fmt.Errorf("failed to write meta: %w", err)
	}

	return nil
}

// SaveMeta rewrites only the companion meta file, keeping the snapshot as is.
// Used when the provenance changes without the chunks changing (e.g. after an
// upload to the durable store).
func (s *Store) SaveMeta(meta Meta) error {
	metaData, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal meta: %w", err)
	}
	if err := os.WriteFile(s.metaPath, metaData, 0644); err != nil {
		return fmt.Errorf("failed to write meta: %w", err)
	}
	return nil
}

// LoadLocal reads a previously persisted snapshot. A missing snapshot is
// reported as ErrNotFound; the caller treats that as "try the next source",
// not a failure. A missing or unreadable meta file degrades to a meta derived
// from the snapshot itself.
func (s *Store) LoadLocal() (Index, Meta, error) {
	lock := flock.New(s.indexPath + ".lock")
	if err := lock.RLock(); err != nil {
		return nil, Meta{}, fmt.Errorf("failed to lock snapshot: %w", err)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	data, err := os.ReadFile(s.indexPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, Meta{}, fmt.Errorf("%w: no local snapshot at %s", service.ErrNotFound, s.indexPath)
		}
		return nil, Meta{}, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, Meta{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if err := validate(idx); err != nil {
		return nil, Meta{}, fmt.Errorf("corrupt snapshot: %w", err)
	}

	meta := Meta{Chunks: len(idx), Source: SourceLocalOnly}
	if metaData, err := os.ReadFile(s.metaPath); err == nil {
		var m Meta
		if err := json.Unmarshal(metaData, &m); err == nil {
			meta = m
			meta.Chunks = len(idx)
		}
	}

	return idx, meta, nil
}

// PeekLocal reports whether a local snapshot exists and returns its meta
// without loading the chunks. Used by status reporting, which must not
// trigger a build.
func (s *Store) PeekLocal() (Meta, bool) {
	if _, err := os.Stat(s.indexPath); err != nil {
		return Meta{}, false
	}

	meta := Meta{Source: SourceLocalOnly}
	if metaData, err := os.ReadFile(s.metaPath); err == nil {
		var m Meta
		if err := json.Unmarshal(metaData, &m); err == nil {
			meta = m
		}
	}
	return meta, true
}

// PersistRemote uploads the serialized index to the durable store and returns
// the handle it was stored under. Retrying is safe; a retry may produce a new
// handle and no dedup is attempted.
func (s *Store) PersistRemote(ctx context.Context, idx Index) (string, error) {
	data, err := json.Marshal(idx)
	if err != nil {
		return "", fmt.Errorf("failed to marshal index: %w", err)
	}

	rootHash, err := s.blob.Upload(ctx, data)
	if err != nil {
		return "", service.WrapError(err, "failed to persist index")
	}
	return rootHash, nil
}

// LoadRemote fetches a previously persisted index from the durable store.
func (s *Store) LoadRemote(ctx context.Context, rootHash string) (Index, error) {
	data, err := s.blob.Download(ctx, rootHash)
	if err != nil {
		return nil, service.WrapError(err, "failed to fetch index")
	}

	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("failed to decode remote index: %w", err)
	}
	if err := validate(idx); err != nil {
		return nil, fmt.Errorf("corrupt remote index: %w", err)
	}

	return idx, nil
}

// validate enforces the one structural invariant of an index: every chunk
// carries an embedding of the same dimensionality. A mix of dimensions means
// the snapshot was produced by different embedding models and cannot be
// ranked coherently.
func validate(idx Index) error {
	if len(idx) == 0 {
		return nil
	}
	dim := len(idx[0].Embedding)
	for i, chunk := range idx {
		if len(chunk.Embedding) != dim {
			return fmt.Errorf("chunk %d has embedding size %d, expected %d", i, len(chunk.Embedding), dim)
		}
	}
	return nil
}
