// Package handlers exposes the checkup service over HTTP.
package handlers

import (
	"net/http"

	"golang.org/x/sync/singleflight"

	"dentcheck/internal/access"
	"dentcheck/internal/checkup"
	"dentcheck/internal/config"
	"dentcheck/internal/storage"
	"dentcheck/pkg/cache"
	"dentcheck/pkg/utils"
)

const DefaultMaxUploadSize = 10 << 20

type API struct {
	checkups *checkup.Service
	blobs    storage.BlobStore
	cache    *cache.MemoryCache

	// collapses concurrent reads of the same blob
	requestGroup singleflight.Group

	publicPrefix string
	maxUpload    int64
	maxDimension int
}

func NewAPI(svc *checkup.Service, blobs storage.BlobStore, c *cache.MemoryCache, cfg config.StorageConfig) *API {
	prefix := cfg.PublicPrefix
	if prefix == "" {
		prefix = "/uploads/"
	}

	a := &API{
		checkups:     svc,
		blobs:        blobs,
		cache:        c,
		publicPrefix: prefix,
		maxUpload:    utils.SizeToBytes(cfg.MaxUploadSize, DefaultMaxUploadSize),
		maxDimension: cfg.MaxDimension,
	}
	svc.OnDiscard(func(reference string) {
		a.cache.Delete(blobCacheKey(reference))
	})
	return a
}

// Routes registers every endpoint. /api routes require a bearer token.
func (a *API) Routes(policy *access.Policy) *http.ServeMux {
	mux := http.NewServeMux()
	auth := func(h http.HandlerFunc) http.Handler { return policy.Middleware(h) }

	mux.Handle("POST /api/checkups", auth(a.RequestCheckup))
	mux.Handle("GET /api/checkups", auth(a.ListCheckups))
	mux.Handle("GET /api/checkups/{id}", auth(a.GetCheckup))
	mux.Handle("PUT /api/checkups/{id}", auth(a.UpdateCheckup))

	mux.Handle("POST /api/checkups/{id}/images", auth(a.AttachImage))
	mux.Handle("DELETE /api/checkups/{id}/images/{imageId}", auth(a.DetachImage))

	mux.Handle("GET /api/dentist/checkups", auth(a.DentistCheckups))
	mux.Handle("GET /api/dentist/stats", auth(a.DentistStats))

	mux.HandleFunc("GET "+a.publicPrefix+"{name}", a.ServeBlob)
	mux.HandleFunc("GET /health", a.Health)

	return mux
}
