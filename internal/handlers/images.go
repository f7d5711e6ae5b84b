package handlers

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"dentcheck/pkg/logger"
	"dentcheck/pkg/utils"
)

// AttachImage: POST /api/checkups/{id}/images (multipart: image, note)
func (a *API) AttachImage(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}

	if r.ContentLength > a.maxUpload {
		utils.WriteError(w, http.StatusRequestEntityTooLarge, utils.ErrRequestBodyTooLarge, "File exceeds size limit.")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.maxUpload)
	if err := r.ParseMultipartForm(a.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.WriteError(w, http.StatusRequestEntityTooLarge, utils.ErrRequestBodyTooLarge, "File exceeds size limit.")
			return
		}
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Expected a multipart form.")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Missing 'image' file field.")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Failed to read uploaded file.")
		return
	}

	mimeType, ext, ok := utils.DetectImage(data)
	if !ok {
		utils.WriteError(w, http.StatusUnsupportedMediaType, utils.ErrRequestUnSupportedMedia, "Only JPEG, PNG, GIF and WebP images are accepted.")
		return
	}

	data, resized, err := utils.FitImage(data, a.maxDimension)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrImageProcessingFailed, err.Error())
		return
	}
	if resized {
		_, ext, _ = utils.DetectImage(data)
		logger.LogDebug("Upload %s (%s) downscaled to %d px", header.Filename, mimeType, a.maxDimension)
	}

	base := strings.TrimSuffix(filepath.Base(header.Filename), filepath.Ext(header.Filename))
	record, err := a.checkups.AttachImage(r.Context(), caller, r.PathValue("id"), data, base+ext, r.FormValue("note"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"status": "success",
		"image":  record,
	})
}

// DetachImage: DELETE /api/checkups/{id}/images/{imageId}
func (a *API) DetachImage(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}

	imageID := r.PathValue("imageId")
	if err := a.checkups.DetachImage(r.Context(), caller, r.PathValue("id"), imageID); err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"action":  "detached",
		"imageId": imageID,
	})
}
