package handlers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/mock/gomock"

	"openio-assistant/internal/index"
	index_mocks "openio-assistant/internal/index/mocks"
	storage_mocks "openio-assistant/internal/storage/mocks"
)

// managerFixture wires a real lifecycle manager against mocked externals and
// a temp-dir snapshot store, so handler tests exercise the manager's actual
// behavior instead of a second fake of it.
type managerFixture struct {
	manager  *index.Manager
	store    *index.Store
	embedder *index_mocks.MockEmbedder
	blob     *index_mocks.MockBlobStore
	builds   *storage_mocks.MockBuildStore
	source   string
}

func newManagerFixture(t *testing.T) *managerFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	dir := t.TempDir()

	blob := index_mocks.NewMockBlobStore(ctrl)
	embedder := index_mocks.NewMockEmbedder(ctrl)
	builds := storage_mocks.NewMockBuildStore(ctrl)
	store := index.NewStore(filepath.Join(dir, "index-cache.json"), filepath.Join(dir, "index-meta.json"), blob)
	source := filepath.Join(dir, "source.xml")

	manager := index.NewManager(store, embedder, builds, index.ManagerConfig{
		SourcePath:   source,
		ChunkSize:    10,
		ChunkOverlap: 2,
	})

	return &managerFixture{
		manager:  manager,
		store:    store,
		embedder: embedder,
		blob:     blob,
		builds:   builds,
		source:   source,
	}
}

func (f *managerFixture) writeSource(t *testing.T, content string) {
	t.Helper()
	if err := os.WriteFile(f.source, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write source document: %v", err)
	}
}

func (f *managerFixture) expectFreshBuild() {
	f.embedder.EXPECT().Degraded().Return(false).AnyTimes()
	f.embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, texts []string) ([][]float64, error) {
			out := make([][]float64, len(texts))
			for i := range texts {
				out[i] = []float64{float64(i + 1), 1}
			}
			return out, nil
		})
	f.builds.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil)
}
