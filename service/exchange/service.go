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

package exchange

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/fawa-io/lanshare/pkg/fwlog"
	"github.com/fawa-io/lanshare/pkg/storage"
	"github.com/fawa-io/lanshare/pkg/util"
)

var (
	ErrNoFileSelected   = errors.New("no file selected")
	ErrNotFound         = errors.New("file not found")
	ErrPermissionDenied = errors.New("permission denied")
)

const (
	partPrefix = ".upload-"
	partSuffix = ".part"
	keyLength  = 6
)

// Service serves a single flat directory. Files are identified by name
// only and an upload replaces any file with the same name.
type Service struct {
	dir    string
	meta   storage.Storage
	mirror storage.Mirror

	listeners listeners
}

// NewService serves dir. meta stores share keys (in memory when nil);
// mirror is optional.
func NewService(dir string, meta storage.Storage, mirror storage.Mirror) *Service {
	if meta == nil {
		meta = storage.NewMemoryStorage(storage.DefaultTTL)
	}
	return &Service{dir: dir, meta: meta, mirror: mirror}
}

// Dir returns the served directory.
func (s *Service) Dir() string { return s.dir }

// ListFiles returns the names of the regular files in the directory, sorted.
// Symlinks are listed when they resolve to a regular file. Uploads still in
// flight are not listed.
func (s *Service) ListFiles() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if isPart(e.Name()) || !s.isRegular(e) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (s *Service) isRegular(e fs.DirEntry) bool {
	if e.Type()&fs.ModeSymlink == 0 {
		return e.Type().IsRegular()
	}
	fi, err := os.Stat(filepath.Join(s.dir, e.Name()))
	return err == nil && fi.Mode().IsRegular()
}

// Refresh re-reads the listing. Errors are logged and yield an empty list.
func (s *Service) Refresh() []string {
	names, err := s.ListFiles()
	if err != nil {
		fwlog.Errorf("Error listing files: %v", err)
		return []string{}
	}
	return names
}

func isPart(name string) bool {
	return strings.HasPrefix(name, partPrefix) && strings.HasSuffix(name, partSuffix)
}

// SanitizeName strips every directory component, for both slash styles.
// It returns "" when nothing usable is left.
func SanitizeName(raw string) string {
	name := path.Base(strings.ReplaceAll(raw, `\`, "/"))
	switch name {
	case ".", "..", "/":
		return ""
	}
	return name
}

type UploadResult struct {
	Name   string   `json:"name,omitempty"`
	Status string   `json:"status"`
	Files  []string `json:"files"`
	Key    string   `json:"key,omitempty"`
}

// Upload stores r under the base name of name. The result always carries a
// status message and the refreshed listing, also when err is non-nil.
func (s *Service) Upload(ctx context.Context, name string, r io.Reader) (UploadResult, error) {
	clean := SanitizeName(name)
	if clean == "" || r == nil {
		return UploadResult{Status: "No file selected", Files: s.Refresh()}, ErrNoFileSelected
	}

	dest := filepath.Join(s.dir, clean)
	size, err := s.write(dest, r)
	if err != nil {
		res := UploadResult{Name: clean, Files: s.Refresh()}
		if errors.Is(err, fs.ErrPermission) {
			res.Status = "Error: No permission to write file. Check directory permissions."
			err = fmt.Errorf("%w: %w", ErrPermissionDenied, err)
		} else {
			res.Status = fmt.Sprintf("Error uploading file: %v", err)
		}
		fwlog.Errorf("Upload of %s failed: %v", clean, err)
		return res, err
	}
	fwlog.Infof("File %s uploaded successfully (%d bytes).", clean, size)

	res := UploadResult{
		Name:   clean,
		Status: "Successfully uploaded " + clean,
	}

	key := util.RandomString(keyLength)
	meta := &storage.FileMetadata{Filename: clean, Size: size, StoragePath: dest}
	if err := s.meta.SaveFileMeta(ctx, key, meta); err != nil {
		fwlog.Warnf("Failed to save share key for %s: %v", clean, err)
	} else {
		res.Key = key
	}

	if s.mirror != nil {
		s.mirrorFile(ctx, clean, dest, size)
	}

	res.Files = s.Refresh()
	s.publish(res.Files)
	return res, nil
}

// write copies r into a temporary file next to dest and renames it into
// place, so readers never observe a partial file.
func (s *Service) write(dest string, r io.Reader) (size int64, err error) {
	tmp := filepath.Join(s.dir, partPrefix+uuid.NewString()+partSuffix)
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	size, err = io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, err
	}
	if err = os.Rename(tmp, dest); err != nil {
		return 0, err
	}
	return size, nil
}

func (s *Service) mirrorFile(ctx context.Context, name, p string, size int64) {
	f, err := os.Open(p)
	if err != nil {
		fwlog.Warnf("Failed to open %s for mirroring: %v", name, err)
		return
	}
	defer f.Close()

	if err := s.mirror.Put(ctx, name, f, size); err != nil {
		fwlog.Warnf("Failed to mirror %s: %v", name, err)
		return
	}
	fwlog.Debugf("Mirrored %s", name)
}

// Open validates name and opens the file for reading. name must be a bare
// file name; anything else is reported as not found.
func (s *Service) Open(name string) (*os.File, fs.FileInfo, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil, ErrNoFileSelected
	}
	if SanitizeName(name) != name || isPart(name) {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	p := filepath.Join(s.dir, name)
	fi, err := os.Stat(p)
	if err != nil {
		return nil, nil, classify(name, err)
	}
	if !fi.Mode().IsRegular() {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	f, err := os.Open(p)
	if err != nil {
		return nil, nil, classify(name, err)
	}
	return f, fi, nil
}

// Download checks that name exists and is readable and returns its path.
func (s *Service) Download(name string) (string, error) {
	f, _, err := s.Open(name)
	if err != nil {
		return "", err
	}
	_ = f.Close()
	return filepath.Join(s.dir, name), nil
}

// Resolve maps a share key to the file name it was issued for.
func (s *Service) Resolve(ctx context.Context, key string) (string, error) {
	meta, err := s.meta.GetFileMeta(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrMetaNotFound) {
			return "", fmt.Errorf("%w: share key %s", ErrNotFound, key)
		}
		return "", err
	}
	return meta.Filename, nil
}

func classify(name string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %s", ErrPermissionDenied, name)
	}
	return err
}

// Warning turns a Download or Open error into the message shown to users.
func Warning(name string, err error) string {
	switch {
	case errors.Is(err, ErrNoFileSelected):
		return "No file selected"
	case errors.Is(err, ErrNotFound):
		return fmt.Sprintf("File %s not found", name)
	case errors.Is(err, ErrPermissionDenied):
		return fmt.Sprintf("No permission to read file %s", name)
	}
	return fmt.Sprintf("Error downloading file: %v", err)
}
