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
	"io"
)

// FileMetadata describes a shared upload behind a share key.
type FileMetadata struct {
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
	StoragePath string `json:"storagePath"`
}

// ErrMetaNotFound is returned for unknown or expired share keys.
var ErrMetaNotFound = errors.New("file metadata not found")

// Storage persists share-key metadata. The filesystem stays the source of
// truth for file contents and listings.
type Storage interface {
	// SaveFileMeta saves the file metadata with a given key and TTL.
	SaveFileMeta(ctx context.Context, key string, metadata *FileMetadata) error

	// GetFileMeta retrieves file metadata by its key.
	GetFileMeta(ctx context.Context, key string) (*FileMetadata, error)
}

// Mirror copies uploaded files to a secondary store.
type Mirror interface {
	Put(ctx context.Context, name string, r io.Reader, size int64) error
}
