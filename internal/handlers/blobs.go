package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strings"

	"dentcheck/internal/storage"
	"dentcheck/pkg/utils"
)

func blobCacheKey(reference string) string {
	return "blob:" + reference
}

// ServeBlob: GET /uploads/{name}
// Reads go through the memory cache; concurrent misses share one store read.
func (a *API) ServeBlob(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Blob name is missing.")
		return
	}

	reference := a.publicPrefix + name
	key := blobCacheKey(reference)

	// a cancelled first caller must not fail the requests sharing its flight
	ctx := context.WithoutCancel(r.Context())

	data, err, _ := a.requestGroup.Do(key, func() (interface{}, error) {
		if cached, ok := a.cache.Get(key); ok {
			return cached, nil
		}

		rc, err := a.blobs.Open(ctx, reference)
		if err != nil {
			return nil, err
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, err
		}
		a.cache.Set(key, data)
		return data, nil
	})
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			utils.WriteError(w, http.StatusNotFound, utils.ErrResourceNotFound, "Image not found.")
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, utils.ErrStorageFailure, "Failed to read image.")
		return
	}

	blob := data.([]byte)
	mimeType, _, _ := utils.DetectImage(blob)
	serveWithETag(w, r, blob, mimeType)
}

// serveWithETag handles HTTP caching headers (ETag, Cache-Control).
// Returns 304 Not Modified if client's cache is valid.
func serveWithETag(w http.ResponseWriter, r *http.Request, data []byte, mimeType string) {
	hash := sha256.Sum256(data)
	etag := `"` + hex.EncodeToString(hash[:]) + `"`

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.Header().Set("ETag", etag)

	if match := r.Header.Get("If-None-Match"); match != "" && strings.Contains(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Write(data)
}
