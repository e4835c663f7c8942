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
	"encoding/json"
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/fawa-io/lanshare/pkg/fwlog"
)

// maxMemory bounds the form fields kept in memory while parsing uploads.
const maxMemory = 32 << 20

// Info describes how the server is reached.
type Info struct {
	URL    string `json:"url"`
	QRCode string `json:"qrcode"`
}

type handler struct {
	svc  *Service
	info Info
}

// NewHandler returns the page and JSON routes for svc.
func NewHandler(svc *Service, info Info) http.Handler {
	h := &handler{svc: svc, info: info}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.index)
	mux.HandleFunc("POST /upload", h.uploadForm)
	mux.HandleFunc("GET /download", h.downloadForm)
	mux.HandleFunc("GET /qrcode.png", h.qrcode)
	mux.HandleFunc("GET /api/files", h.files)
	mux.HandleFunc("POST /api/upload", h.uploadAPI)
	mux.HandleFunc("GET /api/download/{name}", h.downloadAPI)
	mux.HandleFunc("GET /s/{key}", h.share)
	mux.HandleFunc("GET /api/info", h.serverInfo)
	mux.HandleFunc("GET /ws/files", h.watchFiles)
	return logRequests(mux)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fwlog.Debugf("%s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
	})
}

func (h *handler) index(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, pageData{})
}

func (h *handler) uploadForm(w http.ResponseWriter, r *http.Request) {
	res, err := h.upload(r)
	status := http.StatusOK
	if err != nil {
		status = uploadStatus(err)
	}
	h.render(w, status, pageData{Status: res.Status, Key: res.Key})
}

func (h *handler) downloadForm(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if err := h.serveFile(w, r, name); err != nil {
		h.render(w, downloadStatus(err), pageData{Warning: Warning(name, err)})
	}
}

func (h *handler) qrcode(w http.ResponseWriter, r *http.Request) {
	if h.info.QRCode == "" {
		http.NotFound(w, r)
		return
	}
	f, err := os.Open(filepath.Join(h.svc.Dir(), h.info.QRCode))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	http.ServeContent(w, r, fi.Name(), fi.ModTime(), f)
}

func (h *handler) files(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"files": h.svc.Refresh()})
}

func (h *handler) uploadAPI(w http.ResponseWriter, r *http.Request) {
	res, err := h.upload(r)
	status := http.StatusOK
	if err != nil {
		status = uploadStatus(err)
	}
	writeJSON(w, status, res)
}

func (h *handler) downloadAPI(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := h.serveFile(w, r, name); err != nil {
		writeJSON(w, downloadStatus(err), map[string]string{"warning": Warning(name, err)})
	}
}

func (h *handler) share(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	name, err := h.svc.Resolve(r.Context(), key)
	if err != nil {
		fwlog.Debugf("Share key %s: %v", key, err)
		writeJSON(w, http.StatusNotFound, map[string]string{"warning": "Share link not found or expired"})
		return
	}
	if err := h.serveFile(w, r, name); err != nil {
		writeJSON(w, downloadStatus(err), map[string]string{"warning": Warning(name, err)})
	}
}

func (h *handler) serverInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.info)
}

// upload reads the first "file" part of a multipart request and stores it.
func (h *handler) upload(r *http.Request) (UploadResult, error) {
	if err := r.ParseMultipartForm(maxMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		fwlog.Warnf("Failed to parse upload form: %v", err)
	}
	var fh *multipart.FileHeader
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
		if fhs := r.MultipartForm.File["file"]; len(fhs) > 0 {
			fh = fhs[0]
		}
	}
	if fh == nil {
		return h.svc.Upload(r.Context(), "", nil)
	}

	f, err := fh.Open()
	if err != nil {
		res := UploadResult{Name: SanitizeName(fh.Filename), Files: h.svc.Refresh()}
		res.Status = "Error uploading file: " + err.Error()
		return res, err
	}
	defer f.Close()
	return h.svc.Upload(r.Context(), fh.Filename, f)
}

// serveFile streams name. On error nothing has been written to w.
func (h *handler) serveFile(w http.ResponseWriter, r *http.Request, name string) error {
	f, fi, err := h.svc.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": fi.Name()}))
	fwlog.Infof("Serving %s (%d bytes) to %s", fi.Name(), fi.Size(), r.RemoteAddr)
	http.ServeContent(w, r, fi.Name(), fi.ModTime(), f)
	return nil
}

func uploadStatus(err error) int {
	switch {
	case errors.Is(err, ErrNoFileSelected):
		return http.StatusBadRequest
	case errors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

func downloadStatus(err error) int {
	switch {
	case errors.Is(err, ErrNoFileSelected):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fwlog.Errorf("Failed to write response: %v", err)
	}
}
