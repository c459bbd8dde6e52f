package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSanitizeKey(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "history/dev-1/aic_images_v1.json", want: "history/dev-1/aic_images_v1.json"},
		{in: "/exports//a.png", want: "exports/a.png"},
		{in: `exports\b.webm`, want: "exports/b.webm"},
		{in: "./x/../y.png", want: "y.png"},
		{in: "../etc/passwd", wantErr: true},
		{in: "..", wantErr: true},
		{in: "  ", wantErr: true},
	}
	for _, tc := range tests {
		got, err := sanitizeKey(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("sanitizeKey(%q) = %q, want error", tc.in, got)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("sanitizeKey(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()

	if _, err := store.Get(ctx, "missing.json"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
	}
	key, err := store.Put(ctx, "/history/dev/a.json", []byte(`[]`), "application/json")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if key != "history/dev/a.json" {
		t.Fatalf("key = %q", key)
	}
	if _, err := os.Stat(filepath.Join(dir, "history", "dev", "a.json")); err != nil {
		t.Fatalf("file not written: %v", err)
	}
	if _, err := store.Put(ctx, key, []byte(`[1]`), ""); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	data, err := store.Get(ctx, key)
	if err != nil || string(data) != "[1]" {
		t.Fatalf("Get = %q, %v", data, err)
	}
	entries, _ := os.ReadDir(filepath.Join(dir, "history", "dev"))
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %d entries", len(entries))
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
}

func TestFileStoreCancelledContext(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Put(ctx, "a", nil, ""); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestNewObjectStoreRequiresEndpoint(t *testing.T) {
	if _, err := NewObjectStore(ObjectConfig{}); err == nil {
		t.Fatal("expected error without endpoint")
	}
	store, err := NewObjectStore(ObjectConfig{Endpoint: "https://minio.local:9000", Bucket: "exports"})
	if err != nil {
		t.Fatalf("NewObjectStore: %v", err)
	}
	if store.bucket != "exports" || store.client.EndpointURL().Scheme != "https" {
		t.Fatalf("unexpected store: bucket=%q scheme=%q", store.bucket, store.client.EndpointURL().Scheme)
	}
}
