package store

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"time"
)

// PutPayload stores a frame payload gzip-compressed, keyed by object key.
// Storing the same key again is a no-op.
func (s *Store) PutPayload(key, frameTime string, payload []byte) error {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(payload); err != nil {
		return fmt.Errorf("compress payload: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("close gzip: %w", err)
	}

	hash := sha256.Sum256(payload)

	_, err := s.db.Exec(`
		INSERT INTO frame_payloads (key, frame_time, payload_compressed, payload_hash, fetched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO NOTHING
	`, key, frameTime, buf.Bytes(), hex.EncodeToString(hash[:]), time.Now().UTC())
	return err
}

// GetPayload returns the decompressed payload for key, or ok=false on a
// cache miss.
func (s *Store) GetPayload(key string) ([]byte, bool, error) {
	var compressed []byte
	err := s.db.QueryRow(`SELECT payload_compressed FROM frame_payloads WHERE key = ?`, key).Scan(&compressed)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	gz, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, false, fmt.Errorf("open gzip for %s: %w", key, err)
	}
	defer gz.Close()

	payload, err := io.ReadAll(gz)
	if err != nil {
		return nil, false, fmt.Errorf("decompress %s: %w", key, err)
	}
	return payload, true, nil
}

// PayloadCount reports how many frame payloads are cached.
func (s *Store) PayloadCount() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM frame_payloads`).Scan(&n)
	return n, err
}
