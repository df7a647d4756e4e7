package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/boltdb/bolt"
	"github.com/jbrukh/bayesian"
	"github.com/pkg/errors"
)

// ErrNoModel is returned by a ModelStore that holds no model yet.
var ErrNoModel = errors.New("no persisted model")

// ModelStore persists trained models across process restarts.
type ModelStore interface {
	Save(ctx context.Context, m *Model) error
	Load(ctx context.Context) (*Model, error)
}

var (
	modelBucket     = []byte("model")
	keyFingerprint  = []byte("fingerprint")
	keyVectorizer   = []byte("vectorizer")
	keyTrainedAt    = []byte("trained_at")
	keySampleCount  = []byte("samples")
	headKeyPrefix   = "head:"
	boltOpenTimeout = time.Second
)

// BoltModelStore keeps the latest model in a single bolt bucket. A head that
// was not trained has no key.
type BoltModelStore struct {
	db *bolt.DB
}

var _ ModelStore = (*BoltModelStore)(nil)

// OpenBoltModelStore opens or creates the model file at path.
func OpenBoltModelStore(path string) (*BoltModelStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, errors.Wrap(err, "creating model directory")
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: boltOpenTimeout})
	if err != nil {
		return nil, errors.Wrapf(err, "opening model store %s", path)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(modelBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "creating model bucket")
	}

	return &BoltModelStore{db: db}, nil
}

// Close releases the bolt file lock.
func (s *BoltModelStore) Close() error {
	return s.db.Close()
}

// Save replaces the stored model in one bolt transaction.
func (s *BoltModelStore) Save(_ context.Context, m *Model) error {
	vec, err := json.Marshal(m.Vectorizer)
	if err != nil {
		return errors.Wrap(err, "encoding vectorizer")
	}

	heads := make(map[Head][]byte, len(m.heads))
	for h, cl := range m.heads {
		var buf bytes.Buffer
		if err := encodeHead(cl, &buf); err != nil {
			return errors.Wrapf(err, "encoding %s head", h)
		}
		heads[h] = buf.Bytes()
	}

	trainedAt, err := m.TrainedAt.MarshalText()
	if err != nil {
		return errors.Wrap(err, "encoding training time")
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(modelBucket); err != nil && err != bolt.ErrBucketNotFound {
			return errors.Wrap(err, "clearing model bucket")
		}
		b, err := tx.CreateBucket(modelBucket)
		if err != nil {
			return errors.Wrap(err, "creating model bucket")
		}

		puts := map[string][]byte{
			string(keyFingerprint): []byte(m.Fingerprint),
			string(keyVectorizer):  vec,
			string(keyTrainedAt):   trainedAt,
			string(keySampleCount): []byte(strconv.Itoa(m.Samples)),
		}
		for h, data := range heads {
			puts[headKeyPrefix+string(h)] = data
		}
		for k, v := range puts {
			if err := b.Put([]byte(k), v); err != nil {
				return errors.Wrapf(err, "writing %s", k)
			}
		}
		return nil
	})
}

// Load reads the stored model, returning ErrNoModel when none was saved.
func (s *BoltModelStore) Load(_ context.Context) (*Model, error) {
	var m *Model
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(modelBucket)
		if b == nil || b.Get(keyFingerprint) == nil {
			return ErrNoModel
		}

		loaded := &Model{
			Fingerprint: string(b.Get(keyFingerprint)),
			heads:       make(map[Head]*bayesian.Classifier, len(Heads)),
		}

		// Values are only valid inside the transaction; decoders copy them.
		vec := NewVectorizer()
		if err := json.Unmarshal(b.Get(keyVectorizer), vec); err != nil {
			return errors.Wrap(err, "decoding vectorizer")
		}
		loaded.Vectorizer = vec

		if raw := b.Get(keyTrainedAt); raw != nil {
			if err := loaded.TrainedAt.UnmarshalText(raw); err != nil {
				return errors.Wrap(err, "decoding training time")
			}
		}
		loaded.Samples, _ = strconv.Atoi(string(b.Get(keySampleCount)))

		for _, h := range Heads {
			raw := b.Get([]byte(headKeyPrefix + string(h)))
			if raw == nil {
				continue
			}
			cl, err := bayesian.NewClassifierFromReader(bytes.NewReader(raw))
			if err != nil {
				return errors.Wrapf(err, "decoding %s head", h)
			}
			loaded.heads[h] = cl
		}

		m = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// encodeHead gob-encodes a head. Older releases of the classifier expose
// WriteTo without a byte count.
func encodeHead(cl *bayesian.Classifier, w io.Writer) error {
	switch enc := any(cl).(type) {
	case interface{ WriteTo(io.Writer) (int64, error) }:
		_, err := enc.WriteTo(w)
		return err
	case interface{ WriteTo(io.Writer) error }:
		return enc.WriteTo(w)
	default:
		return errors.New("classifier does not support serialization")
	}
}

// MemoryModelStore keeps the last saved model in memory.
type MemoryModelStore struct {
	model *Model
	saves int
	mu    sync.Mutex
}

var _ ModelStore = (*MemoryModelStore)(nil)

// NewMemoryModelStore creates an empty in-memory store.
func NewMemoryModelStore() *MemoryModelStore {
	return &MemoryModelStore{}
}

// Save stores m.
func (s *MemoryModelStore) Save(_ context.Context, m *Model) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = m
	s.saves++
	return nil
}

// Load returns the last saved model.
func (s *MemoryModelStore) Load(_ context.Context) (*Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model == nil {
		return nil, ErrNoModel
	}
	return s.model, nil
}

// Saves reports how many times Save was called.
func (s *MemoryModelStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
