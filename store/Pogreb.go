/*
File Name:  Pogreb.go

Durable key/value store backed by pogreb, for deployments that want the
authorization verification cache to survive a restart.
*/

package store

import (
	"io"
	"log"
	"sync"

	"github.com/akrylysov/pogreb"
)

// PogrebStore is a key/value store using Pogreb.
type PogrebStore struct {
	mutex    *sync.Mutex
	filename string
	db       *pogreb.DB
}

// NewPogrebStore creates a properly initialized Pogreb store. The
// database file is created if it does not already exist.
func NewPogrebStore(filename string) (store *PogrebStore, err error) {
	pogreb.SetLogger(log.New(io.Discard, "", 0))

	db, err := pogreb.Open(filename, nil)
	if err != nil {
		return nil, err
	}

	return &PogrebStore{
		mutex:    &sync.Mutex{},
		filename: filename,
		db:       db,
	}, nil
}

// Close flushes and closes the underlying database file.
func (store *PogrebStore) Close() error {
	return store.db.Close()
}

// Set stores the key/value pair.
func (store *PogrebStore) Set(key []byte, data []byte) error {
	return store.db.Put(key, data)
}

// Get returns the value for the key if present.
func (store *PogrebStore) Get(key []byte) (data []byte, found bool) {
	value, err := store.db.Get(key)
	if err != nil || value == nil {
		return nil, false
	}
	return value, true
}

// Delete removes a key/value pair.
func (store *PogrebStore) Delete(key []byte) error {
	return store.db.Delete(key)
}

// Iterate calls fn once per stored key/value pair.
func (store *PogrebStore) Iterate(fn func(key []byte, data []byte) bool) error {
	it := store.db.Items()
	for {
		key, value, err := it.Next()
		if err == pogreb.ErrIterationDone {
			return nil
		}
		if err != nil {
			return err
		}
		if !fn(key, value) {
			return nil
		}
	}
}
