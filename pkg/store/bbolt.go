package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

type bboltStore struct {
	db *bolt.DB
}

func newBboltStore(path string) (*bboltStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creando directorio %s: %w", dir, err)
		}
	}
	// el timeout evita quedarse bloqueado si otro proceso tiene el fichero
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("abriendo bbolt en %s: %w", path, err)
	}
	return &bboltStore{db: db}, nil
}

func (s *bboltStore) Put(namespace string, key, value []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(namespace))
		if err != nil {
			return fmt.Errorf("creando bucket %s: %w", namespace, err)
		}
		return b.Put(key, value)
	})
}

func (s *bboltStore) Get(namespace string, key []byte) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(namespace))
		if b == nil {
			return bucketNotFound(namespace)
		}
		v := b.Get(key)
		if v == nil {
			return notFound(key)
		}
		// el slice de bbolt sólo es válido dentro de la transacción
		out = append([]byte(nil), v...)
		return nil
	})
	return out, err
}

func (s *bboltStore) Delete(namespace string, key []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(namespace))
		if b == nil {
			return nil
		}
		return b.Delete(key)
	})
}

func (s *bboltStore) ListKeys(namespace string) ([][]byte, error) {
	var keys [][]byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(namespace))
		if b == nil {
			return bucketNotFound(namespace)
		}
		return b.ForEach(func(k, _ []byte) error {
			keys = append(keys, append([]byte(nil), k...))
			return nil
		})
	})
	return keys, err
}

func (s *bboltStore) NextID(namespace string) (int64, error) {
	var id uint64
	err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(namespace))
		if err != nil {
			return err
		}
		id, err = b.NextSequence()
		return err
	})
	return int64(id), err
}

func (s *bboltStore) Close() error {
	return s.db.Close()
}
