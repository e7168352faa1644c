package index

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"openio-assistant/internal/contextutil"
	"openio-assistant/internal/service"
	"openio-assistant/internal/storage"
)

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks openio-assistant/internal/index Embedder

// Embedder converts text chunks into fixed-length vectors.
// This interface is defined from the manager's perspective (consumer-first).
type Embedder interface {
	// EmbedTexts returns one vector per input, in input order.
	EmbedTexts(ctx context.Context, texts []string) ([][]float64, error)
	// Degraded reports whether the embedder has no service credential and
	// produces placeholder zero vectors.
	Degraded() bool
}

// ManagerConfig holds the build inputs for the lifecycle manager.
type ManagerConfig struct {
	// SourcePath is the document to chunk and embed when building fresh.
	SourcePath string
	// RootHash, when set, is the durable-store handle of a previously
	// persisted index.
	RootHash string
	// ChunkSize and ChunkOverlap parameterize the chunker.
	ChunkSize    int
	ChunkOverlap int
}

// Manager owns the process-wide index cache and its lifecycle:
// empty at start, populated by the first successful build or load, then read
// by every query until restart or explicit rebuild.
//
// Builds are coordinated through a singleflight group so that concurrent
// callers arriving while a build is in flight attach to it instead of
// starting their own; every waiter observes the same index or the same error.
// A failed build leaves the manager empty so a later call can retry.
type Manager struct {
	store    *Store
	embedder Embedder
	builds   storage.BuildStore
	cfg      ManagerConfig

	group singleflight.Group

	mu      sync.RWMutex
	current Index
	meta    Meta
}

// NewManager creates a lifecycle manager. builds receives an audit record for
// every successful build or load.
func NewManager(store *Store, embedder Embedder, builds storage.BuildStore, cfg ManagerConfig) *Manager {
	return &Manager{
		store:    store,
		embedder: embedder,
		builds:   builds,
		cfg:      cfg,
	}
}

// Current returns the cached index if one is ready. The returned index is
// immutable, so reads need no further synchronization.
func (m *Manager) Current() (Index, Meta, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil, Meta{}, false
	}
	return m.current, m.meta, true
}

// Status reports whether an index is available without triggering a build.
// When nothing is cached in memory it peeks at the local snapshot meta.
func (m *Manager) Status() (Meta, bool) {
	if _, meta, ok := m.Current(); ok {
		return meta, true
	}
	return m.store.PeekLocal()
}

// Ensure returns the cached index, building or loading one first if needed.
//
// Build precedence, first applicable wins: the local snapshot, then the
// configured durable-store handle (a transport failure falls through), then a
// fresh chunk+embed build from the source document when an embedding
// credential is present. When none applies, Ensure fails with ErrNoIndex.
func (m *Manager) Ensure(ctx context.Context) (Index, Meta, error) {
	if idx, meta, ok := m.Current(); ok {
		return idx, meta, nil
	}
	return m.runBuild(ctx, m.buildPrecedence)
}

// Rebuild replaces the current index. With a root hash it loads the
// persisted index from the durable store; otherwise it builds fresh from the
// source document. Concurrent rebuild requests collapse into one build and
// share its outcome.
func (m *Manager) Rebuild(ctx context.Context, rootHash string) (Index, Meta, error) {
	fn := func(ctx context.Context) (Index, Meta, error) {
		if rootHash != "" {
			return m.loadRemote(ctx, rootHash)
		}
		return m.buildFresh(ctx)
	}
	return m.runBuild(ctx, fn)
}

// PersistCurrent uploads the serialized current index to the durable store
// and retags its provenance. Fails with ErrNoIndex when nothing is cached.
func (m *Manager) PersistCurrent(ctx context.Context) (string, error) {
	idx, meta, ok := m.Current()
	if !ok {
		return "", fmt.Errorf("%w: nothing to persist", service.ErrNoIndex)
	}

	rootHash, err := m.store.PersistRemote(ctx, idx)
	if err != nil {
		return "", err
	}

	meta.RootHash = rootHash
	meta.Source = SourceUploaded

	m.mu.Lock()
	m.meta = meta
	m.mu.Unlock()

	// Best-effort meta rewrite; the in-memory provenance is already updated.
	if err := m.store.SaveMeta(meta); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to update snapshot meta after upload", "error", err)
	}

	return rootHash, nil
}

// buildResult is the shared outcome every waiter of a build observes.
type buildResult struct {
	idx  Index
	meta Meta
}

// runBuild funnels all build paths through one singleflight key, so at most
// one build executes at a time regardless of how callers arrived. The build
// runs detached from the initiating caller's context: a waiter that gives up
// abandons its wait without aborting the shared build for the others.
func (m *Manager) runBuild(ctx context.Context, fn func(context.Context) (Index, Meta, error)) (Index, Meta, error) {
	ch := m.group.DoChan("build", func() (interface{}, error) {
		buildCtx := context.WithoutCancel(ctx)
		started := time.Now()

		idx, meta, err := fn(buildCtx)
		if err != nil {
			return nil, err
		}

		m.adopt(buildCtx, idx, meta, time.Since(started))
		return buildResult{idx: idx, meta: meta}, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, Meta{}, res.Err
		}
		result := res.Val.(buildResult)
		return result.idx, result.meta, nil
	case <-ctx.Done():
		return nil, Meta{}, ctx.Err()
	}
}

// adopt installs a built or loaded index as the process-wide cache and
// records it in the build history.
func (m *Manager) adopt(ctx context.Context, idx Index, meta Meta, took time.Duration) {
	m.mu.Lock()
	m.current = idx
	m.meta = meta
	m.mu.Unlock()

	logger := contextutil.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "index ready", "chunks", meta.Chunks, "source", meta.Source, "root_hash", meta.RootHash, "took", took)

	rec := &storage.BuildRecord{
		ID:         uuid.New().String(),
		RootHash:   meta.RootHash,
		Source:     meta.Source,
		Chunks:     meta.Chunks,
		DurationMs: took.Milliseconds(),
	}
	if err := m.builds.Record(ctx, rec); err != nil {
		logger.WarnContext(ctx, "failed to record index build", "error", err)
	}
}

// buildPrecedence walks the build-or-load chain for a lazy first access.
func (m *Manager) buildPrecedence(ctx context.Context) (Index, Meta, error) {
	logger := contextutil.LoggerFromContext(ctx)

	// 1. Local snapshot.
	idx, meta, err := m.store.LoadLocal()
	if err == nil {
		return idx, meta, nil
	}
	if !errors.Is(err, service.ErrNotFound) {
		logger.WarnContext(ctx, "ignoring unreadable local snapshot", "error", err)
	}

	// 2. Durable-store handle. Transport failures fall through rather than
	// failing the whole build.
	if m.cfg.RootHash != "" {
		idx, meta, err = m.loadRemote(ctx, m.cfg.RootHash)
		if err == nil {
			return idx, meta, nil
		}
		if errors.Is(err, service.ErrTransport) || errors.Is(err, service.ErrNotFound) {
			logger.WarnContext(ctx, "durable store unavailable, falling through", "root_hash", m.cfg.RootHash, "error", err)
		} else {
			return nil, Meta{}, err
		}
	}

	// 3. Fresh build, only when a credential is present: a lazily built
	// zero-vector index would silently serve meaningless rankings.
	if m.cfg.SourcePath != "" && !m.embedder.Degraded() {
		if _, statErr := os.Stat(m.cfg.SourcePath); statErr == nil {
			return m.buildFresh(ctx)
		}
	}

	return nil, Meta{}, fmt.Errorf("%w: no local snapshot, no reachable storage handle, and no source document with an embedding credential", service.ErrNoIndex)
}

// loadRemote fetches a persisted index by handle and writes a best-effort
// local snapshot so later restarts skip the durable store.
func (m *Manager) loadRemote(ctx context.Context, rootHash string) (Index, Meta, error) {
	idx, err := m.store.LoadRemote(ctx, rootHash)
	if err != nil {
		return nil, Meta{}, err
	}

	meta := Meta{RootHash: rootHash, Chunks: len(idx), Source: SourceStorage}

	if err := m.store.SaveLocal(idx, meta); err != nil {
		// Best-effort cache write; keep the in-memory index even if it fails.
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to write local snapshot", "error", err)
	}

	return idx, meta, nil
}

// buildFresh runs the chunk+embed pipeline over the source document.
func (m *Manager) buildFresh(ctx context.Context) (Index, Meta, error) {
	logger := contextutil.LoggerFromContext(ctx)

	content, err := os.ReadFile(m.cfg.SourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, Meta{}, fmt.Errorf("%w: source document %s", service.ErrNotFound, m.cfg.SourcePath)
		}
		return nil, Meta{}, fmt.Errorf("failed to read source document: %w", err)
	}

	texts, err := Split(string(content), m.cfg.ChunkSize, m.cfg.ChunkOverlap)
	if err != nil {
		return nil, Meta{}, err
	}

	if m.embedder.Degraded() {
		logger.WarnContext(ctx, "building index with degraded embedder, similarity scores will be meaningless", "chunks", len(texts))
	}

	embeddings, err := m.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, Meta{}, err
	}
	if len(embeddings) != len(texts) {
		return nil, Meta{}, fmt.Errorf("%w: embedding count mismatch: expected %d, got %d", service.ErrServiceFailure, len(texts), len(embeddings))
	}

	idx := make(Index, len(texts))
	for i, text := range texts {
		idx[i] = Chunk{Content: text, Embedding: embeddings[i], Index: i}
	}

	meta := Meta{Chunks: len(idx), Source: SourceLocalOnly}

	if err := m.store.SaveLocal(idx, meta); err != nil {
		// Best-effort cache write; keep the in-memory index even if it fails.
		logger.WarnContext(ctx, "failed to write local snapshot", "error", err)
	}

	return idx, meta, nil
}
