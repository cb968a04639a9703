package kv_test

import (
	"errors"
	"testing"

	"github.com/p-n-ai/pai-parametric/internal/kv"
	"github.com/p-n-ai/pai-parametric/internal/platform/database/databasetest"
)

func TestNewPostgresStore_NilPool(t *testing.T) {
	if _, err := kv.NewPostgresStore(nil); err == nil {
		t.Fatal("expected error for nil pool")
	}
}

func TestNewRedisStore_NilCache(t *testing.T) {
	if _, err := kv.NewRedisStore(nil); err == nil {
		t.Fatal("expected error for nil cache")
	}
}

func TestPostgresStore_Integration(t *testing.T) {
	db := databasetest.New(t)

	store, err := kv.NewPostgresStore(db.Pool)
	if err != nil {
		t.Fatalf("NewPostgresStore() error = %v", err)
	}

	if _, err := store.Get(kv.KeyProgress); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("Get() on empty table error = %v, want ErrNotFound", err)
	}

	for _, v := range []string{`{"totalStudyTime":1}`, `{"totalStudyTime":2}`} {
		if err := store.Set(kv.KeyProgress, []byte(v)); err != nil {
			t.Fatalf("Set(%s) error = %v", v, err)
		}
	}

	got, err := store.Get(kv.KeyProgress)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != `{"totalStudyTime":2}` {
		t.Errorf("Get() = %s, want the last write", got)
	}

	if err := store.Delete(kv.KeyProgress); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(kv.KeyProgress); !errors.Is(err, kv.ErrNotFound) {
		t.Errorf("Get() after Delete error = %v, want ErrNotFound", err)
	}
}
