// Package store persists per-video embedding sequences between runs
// so unchanged videos are not re-embedded.
package store

import (
	"encoding/binary"
	"fmt"
	"math"

	"go.etcd.io/bbolt"

	"frameset/internal/domain"
	"frameset/internal/port"
)

var (
	bucketVectors = []byte("vectors")
	bucketMeta    = []byte("meta")
	keySchema     = []byte("schema")
)

// BoltCache is a bbolt-backed EmbeddingCache. Entries are keyed by
// (path, mtime, stride) and scoped to one model and dimension: opening
// the cache with a different model or dimension clears it, since
// vectors from different models must never mix in one run.
type BoltCache struct {
	db        *bbolt.DB
	dimension int
}

func NewBoltCache(path, model string, dimension int) (*BoltCache, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache db: %w", err)
	}

	schema := []byte(fmt.Sprintf("%s|%d", model, dimension))
	err = db.Update(func(tx *bbolt.Tx) error {
		meta, err := tx.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(bucketVectors); err != nil {
			return err
		}

		stored := meta.Get(keySchema)
		if stored != nil && string(stored) != string(schema) {
			// Model changed since the cache was written; start over.
			if err := tx.DeleteBucket(bucketVectors); err != nil {
				return err
			}
			if _, err := tx.CreateBucket(bucketVectors); err != nil {
				return err
			}
		}
		return meta.Put(keySchema, schema)
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	return &BoltCache{db: db, dimension: dimension}, nil
}

func (c *BoltCache) Get(key port.CacheKey) ([][]float32, bool, error) {
	var vectors [][]float32
	var found bool

	err := c.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketVectors).Get([]byte(key.String()))
		if data == nil {
			return nil
		}
		v, err := decodeVectors(data)
		if err != nil {
			return err
		}
		for _, vec := range v {
			if len(vec) != c.dimension {
				return &domain.ShapeError{Want: c.dimension, Got: len(vec)}
			}
		}
		vectors = v
		found = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return vectors, found, nil
}

func (c *BoltCache) Put(key port.CacheKey, vectors [][]float32) error {
	data := encodeVectors(vectors)
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketVectors).Put([]byte(key.String()), data)
	})
}

func (c *BoltCache) Close() error {
	return c.db.Close()
}

// encodeVectors packs a sequence as: count, dim, then count*dim
// float32 values, all little-endian.
func encodeVectors(vectors [][]float32) []byte {
	dim := 0
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}

	buf := make([]byte, 8+4*len(vectors)*dim)
	binary.LittleEndian.PutUint32(buf[0:], uint32(len(vectors)))
	binary.LittleEndian.PutUint32(buf[4:], uint32(dim))

	off := 8
	for _, vec := range vectors {
		for _, v := range vec {
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
			off += 4
		}
	}
	return buf
}

func decodeVectors(data []byte) ([][]float32, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("cache entry too short: %d bytes", len(data))
	}
	count := int(binary.LittleEndian.Uint32(data[0:]))
	dim := int(binary.LittleEndian.Uint32(data[4:]))
	if len(data) != 8+4*count*dim {
		return nil, fmt.Errorf("cache entry size mismatch: %d bytes for %d x %d", len(data), count, dim)
	}

	vectors := make([][]float32, count)
	off := 8
	for i := range vectors {
		vec := make([]float32, dim)
		for j := range vec {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
			off += 4
		}
		vectors[i] = vec
	}
	return vectors, nil
}
