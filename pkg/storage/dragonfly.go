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
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long a share key stays valid.
const DefaultTTL = 25 * time.Minute

const keyPrefix = "lanshare:share:"

// DragonflyStorage implements the Storage interface using Dragonfly/Redis.
type DragonflyStorage struct {
	client redis.Cmdable
	ttl    time.Duration
}

type DragonflyOptions struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewDragonflyStorage connects to addr and checks the connection.
// It returns a Storage interface, hiding the implementation details.
func NewDragonflyStorage(ctx context.Context, opts DragonflyOptions) (Storage, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to reach dragonfly at %s: %w", opts.Addr, err)
	}
	return newDragonflyStorage(client, opts.TTL), nil
}

func newDragonflyStorage(client redis.Cmdable, ttl time.Duration) *DragonflyStorage {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &DragonflyStorage{client: client, ttl: ttl}
}

// SaveFileMeta implements the Storage interface.
func (d *DragonflyStorage) SaveFileMeta(ctx context.Context, key string, metadata *FileMetadata) error {
	if metadata == nil {
		return errors.New("metadata cannot be nil")
	}
	jsonMetadata, err := json.Marshal(metadata)
	if err != nil {
		return err
	}
	return d.client.Set(ctx, keyPrefix+key, jsonMetadata, d.ttl).Err()
}

// GetFileMeta implements the Storage interface.
func (d *DragonflyStorage) GetFileMeta(ctx context.Context, key string) (*FileMetadata, error) {
	val, err := d.client.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrMetaNotFound, key)
	}
	if err != nil {
		return nil, err
	}

	var metadata FileMetadata
	if err := json.Unmarshal([]byte(val), &metadata); err != nil {
		return nil, err
	}
	return &metadata, nil
}
