// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"njyot/internal/config"
)

// exerciseMedium runs the round trip every medium must support: empty
// load, save, load, overwrite.
func exerciseMedium(t *testing.T, m Medium) {
	t.Helper()
	ctx := context.Background()

	if _, err := m.Load(ctx); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("Load on empty medium: got %v, want ErrNoSnapshot", err)
	}

	first := []byte(`{"version":1}`)
	if err := m.Save(ctx, first); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := m.Load(ctx)
	if err != nil {
		t.Fatalf("Load after Save: %v", err)
	}
	if string(got) != string(first) {
		t.Errorf("Load = %q, want %q", got, first)
	}

	second := []byte(`{"version":1,"tables":{}}`)
	if err := m.Save(ctx, second); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	got, err = m.Load(ctx)
	if err != nil {
		t.Fatalf("Load after overwrite: %v", err)
	}
	if string(got) != string(second) {
		t.Errorf("Load after overwrite = %q, want %q", got, second)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	exerciseMedium(t, m)

	if m.Saves() != 2 {
		t.Errorf("Saves() = %d, want 2", m.Saves())
	}

	// Callers must not be able to mutate the stored snapshot.
	data, _ := m.Load(context.Background())
	data[0] = 'X'
	again, _ := m.Load(context.Background())
	if again[0] == 'X' {
		t.Error("Load should return a copy")
	}
}

func TestDiscard(t *testing.T) {
	var m Discard
	ctx := context.Background()

	if err := m.Save(ctx, []byte("data")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := m.Load(ctx); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("Load: got %v, want ErrNoSnapshot", err)
	}
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "njyot.json")
	m := NewFile(path)
	exerciseMedium(t, m)

	// No temp files may be left behind next to the snapshot.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "njyot.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory contents = %v, want only njyot.json", names)
	}
}

func TestFile_LoadUnreadable(t *testing.T) {
	// A directory where the file should be is a read error, not "absent".
	dir := t.TempDir()
	m := NewFile(dir)

	_, err := m.Load(context.Background())
	if err == nil {
		t.Fatal("expected error reading a directory")
	}
	if errors.Is(err, ErrNoSnapshot) {
		t.Error("unreadable snapshot must not be reported as missing")
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("ephemeral wins over backend", func(t *testing.T) {
		m, err := Open(ctx, &config.Config{StoreBackend: config.BackendFile, Ephemeral: true})
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if _, ok := m.(Discard); !ok {
			t.Errorf("got %T, want Discard", m)
		}
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "shop.json")
		m, err := Open(ctx, &config.Config{StoreBackend: config.BackendFile, DataFile: path})
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		f, ok := m.(*File)
		if !ok {
			t.Fatalf("got %T, want *File", m)
		}
		if f.Path() != path {
			t.Errorf("Path() = %q, want %q", f.Path(), path)
		}
	})

	t.Run("memory", func(t *testing.T) {
		m, err := Open(ctx, &config.Config{StoreBackend: config.BackendMemory})
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if _, ok := m.(*Memory); !ok {
			t.Errorf("got %T, want *Memory", m)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "shop.db")
		m, err := Open(ctx, &config.Config{StoreBackend: config.BackendSQLite, SQLitePath: path})
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		defer m.Close()
		if _, ok := m.(*SQL); !ok {
			t.Errorf("got %T, want *SQL", m)
		}
	})

	t.Run("s3 without credentials", func(t *testing.T) {
		if _, err := Open(ctx, &config.Config{StoreBackend: config.BackendS3}); err == nil {
			t.Error("expected error when S3 credentials are missing")
		}
	})

	t.Run("unknown backend", func(t *testing.T) {
		if _, err := Open(ctx, &config.Config{StoreBackend: "floppy"}); err == nil {
			t.Error("expected error for unknown backend")
		}
	})
}
