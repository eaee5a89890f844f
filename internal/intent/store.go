// Package intent captures click context for deferred deep linking. Records
// are written on mobile redirects and expire on their own; nothing in this
// service reads them back — matching against a later app open belongs to
// the mobile SDK side.
package intent

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TTL bounds how long a captured intent survives, consumed or not.
const TTL = time.Hour

// Record is the snapshot stored per mobile redirect.
type Record struct {
	ID             string    `json:"id"`
	Fingerprint    string    `json:"fingerprint"`
	IP             string    `json:"ip"`
	UserAgent      string    `json:"user_agent"`
	LinkID         uint      `json:"link_id"`
	DestinationURL string    `json:"destination_url"`
	Campaign       string    `json:"campaign"`
	Channel        string    `json:"channel"`
	CreatedAt      time.Time `json:"created_at"`
}

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb, ttl: TTL}
}

// Fingerprint derives the correlation key from IP, OS and platform. It is
// deliberately coarse: users behind a shared IP running the same OS collide,
// and that trade-off is accepted. Keep the inputs as they are.
func Fingerprint(ip, os, platform string) string {
	sum := sha256.Sum256([]byte(ip + "|" + os + "|" + platform))
	return hex.EncodeToString(sum[:])
}

// Capture stores one intent record under its fingerprint with the fixed
// TTL. The record's ID and CreatedAt are filled in here.
func (s *Store) Capture(ctx context.Context, rec Record) error {
	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now().UTC()

	raw, err := json.Marshal(&rec)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, Key(rec.Fingerprint, rec.ID), raw, s.ttl).Err()
}

// Key builds the storage key for a captured intent.
func Key(fingerprint, id string) string {
	return "intent:" + fingerprint + ":" + id
}

// ByFingerprint lists the still-live records captured under a fingerprint.
// Only tests and operational tooling use this; the redirect path never reads.
func (s *Store) ByFingerprint(ctx context.Context, fingerprint string) ([]Record, error) {
	keys, err := s.rdb.Keys(ctx, Key(fingerprint, "*")).Result()
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(keys))
	for _, k := range keys {
		raw, err := s.rdb.Get(ctx, k).Result()
		if err == redis.Nil {
			continue
		} else if err != nil {
			return nil, err
		}
		var rec Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
