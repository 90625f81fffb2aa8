package menu

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ijake-16/homebar-menu/mq"
	"github.com/ijake-16/homebar-menu/rdx"
	"github.com/ijake-16/homebar-menu/store"
	"github.com/ijake-16/homebar-menu/utils"

	"github.com/disintegration/imaging"
	"github.com/julienschmidt/httprouter"
)

const (
	menuPicDir    = "static/menupic"
	maxUploadSize = 10 << 20
)

// publicBaseURL is read per call, not at package init: the env file is only
// loaded once main runs.
func publicBaseURL() string {
	base := strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/")
	if base == "" {
		base = "http://localhost:8080"
	}
	return base
}

// UploadDrinkImage accepts a multipart "image" field, stores the picture and
// a 300px thumbnail under static/menupic, and points the drink's image_url at
// the full-size copy.
func (h *Handler) UploadDrinkImage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	id := ps.ByName("id")

	if _, err := h.store.GetByID(ctx, id); err != nil {
		if errors.Is(err, store.ErrInvalidID) || errors.Is(err, store.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Drink not found")
			return
		}
		respondStoreError(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Image file is required")
		return
	}
	defer file.Close()

	img, err := imaging.Decode(file)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Unsupported image format")
		return
	}

	fileName := utils.GetUUID() + ".jpg"
	thumbDir := filepath.Join(menuPicDir, "thumb")
	if err := utils.EnsureDir(menuPicDir); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to store image")
		return
	}
	if err := utils.EnsureDir(thumbDir); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to store image")
		return
	}

	if err := imaging.Save(img, filepath.Join(menuPicDir, fileName)); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to store image")
		return
	}
	thumb := imaging.Resize(img, 300, 0, imaging.Lanczos)
	if err := imaging.Save(thumb, filepath.Join(thumbDir, fileName)); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to store thumbnail")
		return
	}

	imageURL := publicBaseURL() + "/static/menupic/" + fileName
	if err := h.store.SetImageURL(ctx, id, imageURL); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Drink not found")
			return
		}
		respondStoreError(w, err)
		return
	}

	rdx.RdxDel(cacheKeyAll, cacheKeyDrink(id))
	go mq.Emit(ctx, "drink-image-uploaded", mq.Index{EntityType: "drink", Method: "POST", EntityId: id})

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message":   "Image uploaded",
		"image_url": imageURL,
	})
}
