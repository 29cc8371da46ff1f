// Copyright (c) 2026 Chorostat. All rights reserved.
// Author: platform@chorostat.app

/*
Package objectstore defines the blob storage boundary for map thumbnails.

Thumbnails arrive from the map editor as base64-encoded PNG snapshots and are
served back through expiring URLs. The concrete backend (S3-compatible bucket)
is deployment infrastructure; services depend on the [Store] interface only.
*/
package objectstore

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
)

// ThumbnailFolder is the key prefix under which map snapshots are stored.
const ThumbnailFolder = "thumbnails"

// Store saves and serves binary objects by key.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Put stores data under folder/key, replacing any existing object.
	Put(ctx context.Context, folder, key string, data []byte) error

	// URL returns a time-limited link for fetching the object, or an empty
	// string if the object is unknown.
	URL(ctx context.Context, folder, key string) (string, error)
}

// DecodeImage decodes the base64 payload submitted by the map editor.
func DecodeImage(encoded string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("objectstore: invalid base64 image payload: %w", err)
	}
	return data, nil
}

// # In-Memory Store

// MemoryStore is a volatile [Store] used in development and tests. Objects
// live only as long as the process; URLs point at nothing routable.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
	baseURL string
}

// NewMemoryStore constructs a [MemoryStore] whose URLs are rooted at baseURL.
func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		objects: make(map[string][]byte),
		baseURL: baseURL,
	}
}

// Put implements [Store].
func (store *MemoryStore) Put(ctx context.Context, folder, key string, data []byte) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	buf := make([]byte, len(data))
	copy(buf, data)
	store.objects[folder+"/"+key] = buf
	return nil
}

// URL implements [Store].
func (store *MemoryStore) URL(ctx context.Context, folder, key string) (string, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	fullKey := folder + "/" + key
	if _, ok := store.objects[fullKey]; !ok {
		return "", nil
	}
	return store.baseURL + "/" + fullKey, nil
}

// Len returns the number of stored objects. Test helper.
func (store *MemoryStore) Len() int {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return len(store.objects)
}
