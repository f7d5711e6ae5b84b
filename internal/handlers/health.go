package handlers

import (
	"net/http"

	"dentcheck/internal/appinfo"
	"dentcheck/pkg/utils"
)

// Health: GET /health
func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	items, used := a.cache.Usage()

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"stats":  appinfo.Snapshot(),
		"cache": map[string]interface{}{
			"enabled": a.cache.Enabled(),
			"items":   items,
			"size":    utils.FormatBytes(used),
		},
	})
}
