package blobstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	fsStore, err := NewFSStore(filepath.Join(t.TempDir(), "fs"))
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}
	sqlStore, err := OpenSQLite(filepath.Join(t.TempDir(), "db", "blobs.db"))
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	t.Cleanup(func() { _ = sqlStore.Close() })

	return map[string]Store{"fs": fsStore, "sqlite": sqlStore}
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Put(ctx, "out", "run/json/a-Figure-0.json", []byte(`{"Page":1}`)); err != nil {
				t.Fatalf("Put failed: %v", err)
			}
			got, err := s.Get(ctx, "out", "run/json/a-Figure-0.json")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if string(got) != `{"Page":1}` {
				t.Errorf("Get = %q", got)
			}

			if err := s.Put(ctx, "out", "run/json/a-Figure-0.json", []byte("v2")); err != nil {
				t.Fatalf("overwrite failed: %v", err)
			}
			got, _ = s.Get(ctx, "out", "run/json/a-Figure-0.json")
			if string(got) != "v2" {
				t.Errorf("after overwrite Get = %q, want v2", got)
			}
		})
	}
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Get(ctx, "in", "missing.pdf"); !errors.Is(err, ErrNotFound) {
				t.Errorf("err = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStore_List(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			for _, k := range []string{"p/json/b.json", "p/json/a.json", "p/img/a.png", "q/json/c.json"} {
				if err := s.Put(ctx, "out", k, []byte(k)); err != nil {
					t.Fatalf("Put(%s) failed: %v", k, err)
				}
			}
			if err := s.Put(ctx, "other", "p/json/z.json", nil); err != nil {
				t.Fatalf("Put failed: %v", err)
			}

			keys, err := s.List(ctx, "out", "p/json/")
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			want := []string{"p/json/a.json", "p/json/b.json"}
			if len(keys) != len(want) {
				t.Fatalf("List = %v, want %v", keys, want)
			}
			for i := range want {
				if keys[i] != want[i] {
					t.Errorf("keys[%d] = %q, want %q", i, keys[i], want[i])
				}
			}

			all, err := s.List(ctx, "out", "")
			if err != nil || len(all) != 4 {
				t.Errorf("List all = %v, %v; want 4 keys", all, err)
			}

			empty, err := s.List(ctx, "nobucket", "")
			if err != nil || len(empty) != 0 {
				t.Errorf("List of missing bucket = %v, %v", empty, err)
			}
		})
	}
}

func TestStore_InvalidKeys(t *testing.T) {
	ctx := context.Background()
	bad := []struct{ bucket, key string }{
		{"", "a"},
		{"a/b", "k"},
		{"..", "k"},
		{"b", ""},
		{"b", "/abs"},
		{"b", "../escape"},
		{"b", "a//b"},
	}
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			for _, tt := range bad {
				if err := s.Put(ctx, tt.bucket, tt.key, []byte("x")); !errors.Is(err, ErrInvalidKey) {
					t.Errorf("Put(%q, %q) err = %v, want ErrInvalidKey", tt.bucket, tt.key, err)
				}
			}
		})
	}
}

func TestUploadDownload(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := Open(BackendFS, filepath.Join(dir, "store"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer Close(s)

	src := filepath.Join(dir, "in.pdf")
	if err := os.WriteFile(src, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Upload(ctx, s, "papers", "2016/in.pdf", src); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	dst := filepath.Join(dir, "copy.pdf")
	if err := Download(ctx, s, "papers", "2016/in.pdf", dst); err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	data, _ := os.ReadFile(dst)
	if string(data) != "%PDF-1.4" {
		t.Errorf("downloaded %q", data)
	}

	if err := Download(ctx, s, "papers", "nope.pdf", dst); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestOpen(t *testing.T) {
	s, err := Open(BackendSQLite, filepath.Join(t.TempDir(), "b.db"))
	if err != nil {
		t.Fatalf("Open(sqlite) failed: %v", err)
	}
	if _, ok := s.(*SQLiteStore); !ok {
		t.Errorf("Open(sqlite) = %T", s)
	}
	if err := Close(s); err != nil {
		t.Errorf("Close failed: %v", err)
	}

	if _, err := Open("s3", "x"); err == nil {
		t.Error("expected an error for an unknown backend")
	}
}
