package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dentcheck/internal/access"
	"dentcheck/internal/checkup"
	"dentcheck/internal/config"
	"dentcheck/internal/database"
	"dentcheck/internal/repository"
	"dentcheck/internal/storage"
	"dentcheck/pkg/cache"
)

type testServer struct {
	handler http.Handler
	patient string
	dentist string
	other   string
	ids     map[string]string
}

func newTestServer(t *testing.T, maxDimension int) *testServer {
	t.Helper()
	dir := t.TempDir()

	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(dir, "api.db")})
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	storageCfg := config.StorageConfig{
		UploadDir:     filepath.Join(dir, "uploads"),
		PublicPrefix:  "/uploads/",
		MaxUploadSize: "64KB",
		MaxDimension:  maxDimension,
	}
	blobs, err := storage.NewLocalStore(storageCfg.UploadDir, storageCfg.PublicPrefix)
	require.NoError(t, err)

	svc := checkup.NewService(repository.NewUnitOfWork(db), blobs)
	api := NewAPI(svc, blobs, cache.New(cache.Options{Enabled: true, TTL: time.Minute}), storageCfg)
	policy := access.NewPolicy("test-secret", time.Hour)

	ts := &testServer{handler: api.Routes(policy), ids: map[string]string{}}
	users := repository.NewUserRepository(db)
	for _, u := range []struct {
		name string
		role access.Role
		dst  *string
	}{
		{"patient", access.RolePatient, &ts.patient},
		{"dentist", access.RoleDentist, &ts.dentist},
		{"other", access.RoleDentist, &ts.other},
	} {
		row := database.User{Name: u.name, Email: u.name + "@clinic.test", PhoneNumber: "555", Role: string(u.role)}
		require.NoError(t, users.Create(context.Background(), &row))
		token, _, err := policy.Issue(row.ID, u.role)
		require.NoError(t, err)
		*u.dst = token
		ts.ids[u.name] = row.ID
	}
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) doJSON(t *testing.T, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	return ts.do(t, method, path, token, body, "application/json")
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func multipartImage(t *testing.T, field, fileName string, data []byte, note string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if data != nil {
		fw, err := mw.CreateFormFile(field, fileName)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.WriteField("note", note))
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func (ts *testServer) createCheckup(t *testing.T) string {
	t.Helper()
	rec := ts.doJSON(t, http.MethodPost, "/api/checkups", ts.patient, map[string]string{
		"dentistId":       ts.ids["dentist"],
		"appointmentDate": "2025-06-01T10:00:00Z",
		"reason":          "cleaning",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode(t, rec)["checkup"].(map[string]interface{})["id"].(string)
}

func TestRequiresToken(t *testing.T) {
	ts := newTestServer(t, 0)

	rec := ts.doJSON(t, http.MethodGet, "/api/checkups", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.doJSON(t, http.MethodGet, "/api/checkups", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCheckupEndpointsFlow(t *testing.T) {
	ts := newTestServer(t, 0)
	id := ts.createCheckup(t)

	rec := ts.doJSON(t, http.MethodGet, "/api/checkups/"+id, ts.patient, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode(t, rec)["checkup"].(map[string]interface{})
	assert.Equal(t, "pending", got["status"])
	assert.Equal(t, "cleaning", got["reason"])
	assert.Equal(t, "dentist", got["dentist"].(map[string]interface{})["name"])
	assert.Equal(t, []interface{}{}, got["images"])

	rec = ts.doJSON(t, http.MethodPut, "/api/checkups/"+id, ts.dentist, map[string]string{
		"status": "completed", "additionalNote": "all clear",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "completed", decode(t, rec)["checkup"].(map[string]interface{})["status"])

	rec = ts.doJSON(t, http.MethodGet, "/api/checkups", ts.patient, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode(t, rec)["checkups"].([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, "dentist", list[0].(map[string]interface{})["dentist"].(map[string]interface{})["name"])

	rec = ts.doJSON(t, http.MethodGet, "/api/dentist/checkups?status=completed", ts.dentist, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["checkups"], 1)

	rec = ts.doJSON(t, http.MethodGet, "/api/dentist/stats", ts.dentist, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode(t, rec)["stats"].(map[string]interface{})
	assert.Equal(t, float64(1), stats["totalCheckups"])
	assert.Equal(t, float64(1), stats["completedCheckups"])
}

func TestErrorMapping(t *testing.T) {
	ts := newTestServer(t, 0)
	id := ts.createCheckup(t)

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		body   interface{}
		status int
		code   string
	}{
		{"bad status", http.MethodPut, "/api/checkups/" + id, ts.dentist, map[string]string{"status": "done"}, 400, "validation/invalid_input"},
		{"patient update", http.MethodPut, "/api/checkups/" + id, ts.patient, map[string]string{"status": "completed"}, 403, "auth/forbidden"},
		{"foreign dentist read", http.MethodGet, "/api/checkups/" + id, ts.other, nil, 403, "auth/forbidden"},
		{"missing checkup", http.MethodGet, "/api/checkups/nope", ts.dentist, nil, 404, "resource/not_found"},
		{"bad date", http.MethodPost, "/api/checkups", ts.patient, map[string]string{"dentistId": ts.ids["dentist"], "appointmentDate": "tomorrow"}, 400, "validation/invalid_input"},
		{"unknown dentist", http.MethodPost, "/api/checkups", ts.patient, map[string]string{"dentistId": "nobody", "appointmentDate": "2025-06-01T10:00"}, 400, "validation/invalid_input"},
		{"patient stats", http.MethodGet, "/api/dentist/stats", ts.patient, nil, 403, "auth/forbidden"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := ts.doJSON(t, tc.method, tc.path, tc.token, tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			assert.Equal(t, tc.code, decode(t, rec)["code"])
		})
	}
}

func TestImageAttachServeDetach(t *testing.T) {
	ts := newTestServer(t, 0)
	id := ts.createCheckup(t)
	data := pngBytes(t, 4, 4)

	body, ct := multipartImage(t, "image", "xray.png", data, "lower incisors")
	rec := ts.do(t, http.MethodPost, "/api/checkups/"+id+"/images", ts.dentist, body, ct)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	img := decode(t, rec)["image"].(map[string]interface{})
	url := img["url"].(string)
	imageID := img["id"].(string)
	assert.Equal(t, "lower incisors", img["note"])
	assert.True(t, strings.HasPrefix(url, "/uploads/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	rec = ts.do(t, http.MethodGet, url, "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, data, rec.Body.Bytes())
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, url, nil)
	req.Header.Set("If-None-Match", etag)
	cached := httptest.NewRecorder()
	ts.handler.ServeHTTP(cached, req)
	assert.Equal(t, http.StatusNotModified, cached.Code)

	rec = ts.doJSON(t, http.MethodGet, "/api/checkups/"+id, ts.patient, nil)
	images := decode(t, rec)["checkup"].(map[string]interface{})["images"].([]interface{})
	require.Len(t, images, 1)
	assert.Equal(t, imageID, images[0].(map[string]interface{})["id"])

	rec = ts.doJSON(t, http.MethodDelete, fmt.Sprintf("/api/checkups/%s/images/%s", id, imageID), ts.dentist, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodGet, url, "", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "detached blob must not be served from cache")

	rec = ts.doJSON(t, http.MethodDelete, fmt.Sprintf("/api/checkups/%s/images/%s", id, imageID), ts.dentist, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAttachImageRejections(t *testing.T) {
	ts := newTestServer(t, 0)
	id := ts.createCheckup(t)
	path := "/api/checkups/" + id + "/images"

	body, ct := multipartImage(t, "image", "notes.txt", []byte("plain text, not an image"), "note")
	rec := ts.do(t, http.MethodPost, path, ts.dentist, body, ct)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	body, ct = multipartImage(t, "file", "xray.png", pngBytes(t, 2, 2), "note")
	rec = ts.do(t, http.MethodPost, path, ts.dentist, body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, ct = multipartImage(t, "image", "xray.png", pngBytes(t, 2, 2), "")
	rec = ts.do(t, http.MethodPost, path, ts.dentist, body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation/invalid_input", decode(t, rec)["code"])

	body, ct = multipartImage(t, "image", "xray.png", pngBytes(t, 2, 2), "note")
	rec = ts.do(t, http.MethodPost, path, ts.other, body, ct)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	body, ct = multipartImage(t, "image", "huge.png", bytes.Repeat([]byte{0x89}, 128*1024), "note")
	rec = ts.do(t, http.MethodPost, path, ts.dentist, body, ct)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestAttachImageDownscales(t *testing.T) {
	ts := newTestServer(t, 8)
	id := ts.createCheckup(t)

	body, ct := multipartImage(t, "image", "pano.png", pngBytes(t, 32, 16), "panoramic")
	rec := ts.do(t, http.MethodPost, "/api/checkups/"+id+"/images", ts.dentist, body, ct)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	url := decode(t, rec)["image"].(map[string]interface{})["url"].(string)

	rec = ts.do(t, http.MethodGet, url, "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	cfg, _, err := image.DecodeConfig(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Width)
	assert.Equal(t, 4, cfg.Height)
}

func TestServeBlobMissing(t *testing.T) {
	ts := newTestServer(t, 0)

	rec := ts.do(t, http.MethodGet, "/uploads/1-missing.png", "", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, 0)

	rec := ts.do(t, http.MethodGet, "/health", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	assert.Equal(t, "ok", out["status"])
	assert.Contains(t, out, "stats")
}
