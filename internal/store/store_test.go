package store

import (
	"bytes"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := New(db)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

func TestPayloadRoundtrip(t *testing.T) {
	store := setupTestStore(t)

	payload := []byte(`{"data":[{"latitude":25.03,"longitude":121.56,"humidity":78.0}]}`)
	key := "weather/2025/01/12/weather_0830.json"

	if err := store.PutPayload(key, "2025-01-12T08:30:00+08:00", payload); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok, err := store.GetPayload(key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatal("expected cache hit")
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("payload mismatch: got %s", got)
	}

	n, err := store.PayloadCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("PayloadCount = %d, want 1", n)
	}
}

func TestPayloadMiss(t *testing.T) {
	store := setupTestStore(t)

	_, ok, err := store.GetPayload("weather/2025/01/12/weather_0840.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Error("expected cache miss")
	}
}

func TestPayloadDuplicateKey(t *testing.T) {
	store := setupTestStore(t)
	key := "weather/2025/01/12/weather_0830.json"

	if err := store.PutPayload(key, "2025-01-12T08:30:00+08:00", []byte(`{"data":[]}`)); err != nil {
		t.Fatal(err)
	}
	// Second write with the same key is ignored, first payload wins.
	if err := store.PutPayload(key, "2025-01-12T08:30:00+08:00", []byte(`{"data":[1]}`)); err != nil {
		t.Fatal(err)
	}

	got, ok, err := store.GetPayload(key)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if string(got) != `{"data":[]}` {
		t.Errorf("got %s, want original payload", got)
	}
}

func TestRunLog(t *testing.T) {
	store := setupTestStore(t)

	last, err := store.LastRun()
	if err != nil {
		t.Fatal(err)
	}
	if last != nil {
		t.Fatal("expected no runs initially")
	}

	started := time.Now().Add(-time.Minute)
	if err := store.RecordRun(started, "2025-01-10T00:00:00+08:00", "2025-01-12T23:50:00+08:00", 432, "public/humidity_timelapse_data.json"); err != nil {
		t.Fatalf("record: %v", err)
	}

	last, err = store.LastRun()
	if err != nil {
		t.Fatal(err)
	}
	if last == nil {
		t.Fatal("expected a run")
	}
	if last.FrameCount != 432 {
		t.Errorf("FrameCount = %d, want 432", last.FrameCount)
	}
	if last.StartTime.String != "2025-01-10T00:00:00+08:00" {
		t.Errorf("StartTime = %q", last.StartTime.String)
	}
}

func TestMigrateIdempotent(t *testing.T) {
	store := setupTestStore(t)
	if err := store.Migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	v, err := store.MigrationVersion()
	if err != nil {
		t.Fatal(err)
	}
	if v != len(migrations) {
		t.Errorf("MigrationVersion = %d, want %d", v, len(migrations))
	}
}
