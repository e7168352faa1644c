package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"openio-assistant/internal/index"
)

func TestStatusHandler_Empty(t *testing.T) {
	f := newManagerFixture(t)
	handler := NewStatusHandler(f.manager)

	req := httptest.NewRequest(http.MethodGet, "/api/index/status", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Indexed {
		t.Error("indexed = true on an empty manager")
	}
	if resp.Chunks != 0 {
		t.Errorf("chunks = %d, want 0", resp.Chunks)
	}
}

func TestStatusHandler_SnapshotOnDisk(t *testing.T) {
	f := newManagerFixture(t)
	handler := NewStatusHandler(f.manager)

	idx := index.Index{{Content: "chunk", Embedding: []float64{1, 0}, Index: 0}}
	meta := index.Meta{RootHash: "0xsnap", Chunks: 1, Source: index.SourceUploaded}
	if err := f.store.SaveLocal(idx, meta); err != nil {
		t.Fatalf("SaveLocal() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/index/status", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Indexed {
		t.Error("indexed = false with a snapshot on disk")
	}
	if resp.RootHash != "0xsnap" || resp.Source != "0g-uploaded" || resp.Chunks != 1 {
		t.Errorf("response = %+v", resp)
	}

	// Reading status must not pull the snapshot into memory.
	if _, _, ok := f.manager.Current(); ok {
		t.Error("status request populated the in-memory cache")
	}
}

func TestStatusHandler_MethodNotAllowed(t *testing.T) {
	f := newManagerFixture(t)
	handler := NewStatusHandler(f.manager)

	req := httptest.NewRequest(http.MethodPost, "/api/index/status", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}
