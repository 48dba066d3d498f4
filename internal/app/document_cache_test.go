package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleYAML = `- metadata:
    name: Sample
- id: Q1
  type: tf
  prompt: 2+2=4
  answer: true
`

func TestDocumentCacheParsesOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quiz.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cache := NewDocumentCache(time.Minute)
	doc, err := cache.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Metadata.Name != "Sample" || len(doc.Questions) != 1 {
		t.Fatalf("unexpected document %+v", doc)
	}

	// Second load hits the cache even after the file disappears.
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove fixture: %v", err)
	}
	if _, err := cache.Load(context.Background(), path); err != nil {
		t.Fatalf("expected cache hit, got %v", err)
	}

	cache.Invalidate(path)
	if _, err := cache.Load(context.Background(), path); err == nil {
		t.Fatalf("expected reload to fail after invalidation")
	}
}

func TestDocumentCacheSurfacesDiagnostics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("- metadata:\n    name: ''\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	cache := NewDocumentCache(time.Minute)
	if _, err := cache.Load(context.Background(), path); err == nil {
		t.Fatalf("expected validation error for empty name")
	}
}
