package exchange

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	dir := t.TempDir()
	svc := NewService(dir, nil, nil)
	srv := httptest.NewServer(NewHandler(svc, Info{URL: "http://192.168.1.20:7860/", QRCode: "qrcode.png"}))
	t.Cleanup(srv.Close)
	return srv, dir
}

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = io.WriteString(fw, content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestAPIUploadAndShareLink(t *testing.T) {
	srv, dir := newTestServer(t)

	body, ct := multipartBody(t, "notes.txt", "lan payload")
	resp, err := http.Post(srv.URL+"/api/upload", ct, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res UploadResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, "Successfully uploaded notes.txt", res.Status)
	assert.Equal(t, []string{"notes.txt"}, res.Files)
	require.NotEmpty(t, res.Key)

	got, err := os.ReadFile(filepath.Join(dir, "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "lan payload", string(got))

	share, err := http.Get(srv.URL + "/s/" + res.Key)
	require.NoError(t, err)
	defer share.Body.Close()
	assert.Equal(t, http.StatusOK, share.StatusCode)
	assert.Contains(t, share.Header.Get("Content-Disposition"), `filename=notes.txt`)
	b, err := io.ReadAll(share.Body)
	require.NoError(t, err)
	assert.Equal(t, "lan payload", string(b))
}

func TestAPIUpload_NoFile(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/upload", "text/plain", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var res UploadResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, "No file selected", res.Status)
}

func TestAPIDownload(t *testing.T) {
	srv, dir := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.bin"), []byte{1, 2, 3}, 0o644))

	resp, err := http.Get(srv.URL + "/api/download/a.bin")
	require.NoError(t, err)
	b, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []byte{1, 2, 3}, b)

	resp, err = http.Get(srv.URL + "/api/download/missing.txt")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var warn map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&warn))
	assert.Equal(t, "File missing.txt not found", warn["warning"])
}

func TestAPIFilesAndInfo(t *testing.T) {
	srv, dir := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), nil, 0o644))

	resp, err := http.Get(srv.URL + "/api/files")
	require.NoError(t, err)
	var files map[string][]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&files))
	resp.Body.Close()
	assert.Equal(t, []string{"a.txt", "b.txt"}, files["files"])

	resp, err = http.Get(srv.URL + "/api/info")
	require.NoError(t, err)
	defer resp.Body.Close()
	var info Info
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, Info{URL: "http://192.168.1.20:7860/", QRCode: "qrcode.png"}, info)
}

func TestShareLink_Unknown(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/s/abc123")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPage(t *testing.T) {
	srv, dir := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "listed.txt"), nil, 0o644))

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	b, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(b), "http://192.168.1.20:7860/")
	assert.Contains(t, string(b), `<option value="listed.txt">listed.txt</option>`)

	resp, err = http.Get(srv.URL + "/download?name=missing.txt")
	require.NoError(t, err)
	b, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(b), "File missing.txt not found")
}

func TestPageUpload(t *testing.T) {
	srv, _ := newTestServer(t)

	body, ct := multipartBody(t, "form.txt", "from the page")
	resp, err := http.Post(srv.URL+"/upload", ct, body)
	require.NoError(t, err)
	b, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(b), "Successfully uploaded form.txt")
}

func TestQRCodeRoute(t *testing.T) {
	srv, dir := newTestServer(t)

	resp, err := http.Get(srv.URL + "/qrcode.png")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	png := []byte("\x89PNG\r\n\x1a\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "qrcode.png"), png, 0o644))
	resp, err = http.Get(srv.URL + "/qrcode.png")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
}
