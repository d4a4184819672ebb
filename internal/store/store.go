// Package store is the durable overflow tier: a bbolt-backed table of cache
// records plus the persisted tag associations, keyed by digest. It survives
// process restarts and is rebuilt into the in-memory indexes at startup.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	bolt "go.etcd.io/bbolt"

	"github.com/farmtech/go-silo-cache/config"
	"github.com/farmtech/go-silo-cache/internal/key"
)

var (
	bucketEntries = []byte("entries")
	bucketTags    = []byte("tags")
)

const openTimeout = time.Second

type Store struct {
	db *bolt.DB
}

func Open(cfg *config.StoreCfg) (*Store, error) {
	db, err := bolt.Open(cfg.Path, 0o600, &bolt.Options{Timeout: openTimeout, NoSync: cfg.NoSync})
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", cfg.Path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketEntries, bucketTags} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create store buckets: %w", err)
	}

	log.Info().Str("path", cfg.Path).Bool("no_sync", cfg.NoSync).Msg("cache store opened")
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Put writes the record and replaces its tag associations in one transaction,
// so the persisted tag index never references a stale tag set. The prior tag
// set is read from the stored record itself: the caller's memory view may be
// cold (a record not yet promoted after a restart) and cannot be trusted.
func (s *Store) Put(rec *Record) error {
	digest := rec.Hash.Bytes()
	return s.db.Update(func(tx *bolt.Tx) error {
		entries := tx.Bucket(bucketEntries)
		tags := tx.Bucket(bucketTags)

		if data := entries.Get(digest); data != nil {
			if prev, decodeErr := FromBytes(rec.Hash, data); decodeErr == nil {
				for _, tag := range prev.Tags {
					if err := tags.Delete(tagRow(tag, digest)); err != nil {
						return err
					}
				}
			} else if err := deleteTagRowsByDigest(tags, digest); err != nil {
				return err
			}
		}

		for _, tag := range rec.Tags {
			if err := tags.Put(tagRow(tag, digest), nil); err != nil {
				return err
			}
		}
		return entries.Put(digest, rec.ToBytes())
	})
}

// Get returns the record for the digest. A record that no longer decodes is
// reported via ErrCorruptRecord so the caller can evict it.
func (s *Store) Get(k key.Key) (*Record, bool, error) {
	var rec *Record
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketEntries).Get(k.Bytes())
		if data == nil {
			return nil
		}
		var decodeErr error
		rec, decodeErr = FromBytes(k, data)
		return decodeErr
	})
	if err != nil {
		return nil, false, err
	}
	return rec, rec != nil, nil
}

// Touch persists the access bookkeeping of a hit.
func (s *Store) Touch(k key.Key, accessedAt, accessCount int64) error {
	digest := k.Bytes()
	return s.db.Update(func(tx *bolt.Tx) error {
		entries := tx.Bucket(bucketEntries)
		data := entries.Get(digest)
		if data == nil {
			return nil
		}
		rec, err := FromBytes(k, data)
		if err != nil {
			return err
		}
		rec.AccessedAt = accessedAt
		rec.AccessCount = accessCount
		return entries.Put(digest, rec.ToBytes())
	})
}

// Delete removes the record and its tag rows in one transaction. When the
// record itself is corrupt its tags are unknown, so the tag bucket is swept
// for rows carrying the digest instead.
func (s *Store) Delete(k key.Key) (existed bool, err error) {
	digest := k.Bytes()
	err = s.db.Update(func(tx *bolt.Tx) error {
		entries := tx.Bucket(bucketEntries)
		data := entries.Get(digest)
		if data == nil {
			return nil
		}
		existed = true

		tags := tx.Bucket(bucketTags)
		if rec, decodeErr := FromBytes(k, data); decodeErr == nil {
			for _, tag := range rec.Tags {
				if err := tags.Delete(tagRow(tag, digest)); err != nil {
					return err
				}
			}
		} else if err := deleteTagRowsByDigest(tags, digest); err != nil {
			return err
		}

		return entries.Delete(digest)
	})
	return existed, err
}

// ForEach walks every record. Corrupt records are passed to fn with a nil
// record and ErrCorruptRecord so the caller can prune them. Returning false
// from fn stops the walk.
func (s *Store) ForEach(fn func(k key.Key, rec *Record, decodeErr error) bool) error {
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketEntries).ForEach(func(digest, data []byte) error {
			k, ok := key.FromBytes(digest)
			if !ok {
				log.Warn().Hex("digest", digest).Msg("skipping malformed store key")
				return nil
			}
			rec, err := FromBytes(k, data)
			if !fn(k, rec, err) {
				return errStopIteration
			}
			return nil
		})
	})
	if errors.Is(err, errStopIteration) {
		return nil
	}
	return err
}

// TaggedKeys returns the digests associated with the tag, read from the
// persisted tag rows.
func (s *Store) TaggedKeys(tag string) ([]key.Key, error) {
	var keys []key.Key
	prefix := append([]byte(tag), 0x00)
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketTags).Cursor()
		for row, _ := c.Seek(prefix); row != nil && bytes.HasPrefix(row, prefix); row, _ = c.Next() {
			if k, ok := key.FromBytes(row[len(prefix):]); ok {
				keys = append(keys, k)
			}
		}
		return nil
	})
	return keys, err
}

func (s *Store) Count() (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketEntries).Stats().KeyN
		return nil
	})
	return n, err
}

var errStopIteration = errors.New("stop iteration")

// tagRow builds the composite tag-bucket key: tag name, NUL, digest.
func tagRow(tag string, digest []byte) []byte {
	row := make([]byte, 0, len(tag)+1+len(digest))
	row = append(row, tag...)
	row = append(row, 0x00)
	return append(row, digest...)
}

func deleteTagRowsByDigest(tags *bolt.Bucket, digest []byte) error {
	c := tags.Cursor()
	for row, _ := c.First(); row != nil; row, _ = c.Next() {
		if len(row) > key.Size && bytes.Equal(row[len(row)-key.Size:], digest) {
			if err := c.Delete(); err != nil {
				return err
			}
		}
	}
	return nil
}
