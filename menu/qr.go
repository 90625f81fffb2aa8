package menu

import (
	"errors"
	"net/http"

	"github.com/ijake-16/homebar-menu/store"
	"github.com/ijake-16/homebar-menu/utils"

	"github.com/julienschmidt/httprouter"
	qrcode "github.com/skip2/go-qrcode"
)

// DrinkQR returns a PNG QR code pointing at the drink's menu entry, for
// table cards.
func (h *Handler) DrinkQR(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	if _, err := h.store.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrInvalidID) || errors.Is(err, store.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Drink not found")
			return
		}
		respondStoreError(w, err)
		return
	}

	png, err := qrcode.Encode(publicBaseURL()+"/menu/"+id, qrcode.Medium, 256)
	if err != nil {
		http.Error(w, "Failed to generate QR code", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
