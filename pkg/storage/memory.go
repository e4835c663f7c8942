// Copyright 2025 The fawa Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// MemoryStorage keeps share keys in process; used when no Dragonfly
// address is configured.
type MemoryStorage struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

type memoryEntry struct {
	meta    FileMetadata
	expires time.Time
}

func NewMemoryStorage(ttl time.Duration) *MemoryStorage {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStorage{ttl: ttl, now: time.Now, entries: make(map[string]memoryEntry)}
}

func (m *MemoryStorage) SaveFileMeta(_ context.Context, key string, metadata *FileMetadata) error {
	if metadata == nil {
		return errors.New("metadata cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, k)
		}
	}
	m.entries[key] = memoryEntry{meta: *metadata, expires: now.Add(m.ttl)}
	return nil
}

func (m *MemoryStorage) GetFileMeta(_ context.Context, key string) (*FileMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || !m.now().Before(e.expires) {
		delete(m.entries, key)
		return nil, fmt.Errorf("%w: %s", ErrMetaNotFound, key)
	}
	meta := e.meta
	return &meta, nil
}
