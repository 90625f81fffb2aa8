package menu

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ijake-16/homebar-menu/models"
	"github.com/ijake-16/homebar-menu/mq"
	"github.com/ijake-16/homebar-menu/rdx"
	"github.com/ijake-16/homebar-menu/store"
	"github.com/ijake-16/homebar-menu/utils"

	"github.com/julienschmidt/httprouter"
)

// Store is the persistence surface the handlers need. Satisfied by
// *store.DrinkStore; tests inject a fake.
type Store interface {
	ListAll(ctx context.Context) ([]models.Drink, error)
	GetByID(ctx context.Context, id string) (*models.Drink, error)
	Insert(ctx context.Context, drink models.Drink) (string, error)
	Replace(ctx context.Context, id string, drink models.Drink) error
	Delete(ctx context.Context, id string) (int64, error)
	SetImageURL(ctx context.Context, id, url string) error
}

type Handler struct {
	store Store
}

func NewHandler(s Store) *Handler {
	return &Handler{store: s}
}

const cacheKeyAll = "menu:all"

func cacheKeyDrink(id string) string {
	return "menu:" + id
}

// respondStoreError maps adapter failures that are not not-found outcomes.
func respondStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrUnavailable) {
		utils.RespondWithError(w, http.StatusServiceUnavailable, "Menu store unavailable")
		return
	}
	utils.RespondWithError(w, http.StatusInternalServerError, "Menu operation failed")
}

// GetDrinks returns the full menu, capped at the store's list limit.
func (h *Handler) GetDrinks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if cached, err := rdx.RdxGet(cacheKeyAll); err == nil && cached != "" {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(cached))
		return
	}

	drinks, err := h.store.ListAll(ctx)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if len(drinks) == 0 {
		drinks = []models.Drink{}
	}

	if data, err := json.Marshal(drinks); err == nil {
		rdx.RdxSet(cacheKeyAll, string(data))
	}

	utils.RespondWithJSON(w, http.StatusOK, drinks)
}

// GetDrink fetches one drink by id. Malformed and absent ids both read as
// not found.
func (h *Handler) GetDrink(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	if cached, err := rdx.RdxGet(cacheKeyDrink(id)); err == nil && cached != "" {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(cached))
		return
	}

	drink, err := h.store.GetByID(r.Context(), id)
	if errors.Is(err, store.ErrInvalidID) || errors.Is(err, store.ErrNotFound) {
		utils.RespondWithError(w, http.StatusNotFound, "Drink not found")
		return
	}
	if err != nil {
		respondStoreError(w, err)
		return
	}

	if data, err := json.Marshal(drink); err == nil {
		rdx.RdxSet(cacheKeyDrink(id), string(data))
	}

	utils.RespondWithJSON(w, http.StatusOK, drink)
}

// decodeDrink reads a request body into a default-initialized drink and
// validates it against the canonical schema.
func decodeDrink(w http.ResponseWriter, r *http.Request) (models.Drink, bool) {
	drink := models.NewDrink()
	if err := json.NewDecoder(r.Body).Decode(&drink); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return drink, false
	}
	drink.ID = "" // ids are never client-supplied

	if err := drink.Validate(); err != nil {
		utils.RespondWithJSON(w, http.StatusUnprocessableEntity, utils.M{
			"error":   "Validation failed",
			"details": models.ValidationMessages(err),
		})
		return drink, false
	}
	return drink, true
}

// CreateDrink validates the payload and inserts it, returning the
// store-assigned id.
func (h *Handler) CreateDrink(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()

	drink, ok := decodeDrink(w, r)
	if !ok {
		return
	}

	id, err := h.store.Insert(ctx, drink)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	rdx.RdxDel(cacheKeyAll)
	go mq.Emit(ctx, "drink-created", mq.Index{EntityType: "drink", Method: "POST", EntityId: id})

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"message": "Created",
		"id":      id,
	})
}

// UpdateDrink replaces the whole document for an existing id.
func (h *Handler) UpdateDrink(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	id := ps.ByName("id")

	drink, ok := decodeDrink(w, r)
	if !ok {
		return
	}

	err := h.store.Replace(ctx, id, drink)
	if errors.Is(err, store.ErrInvalidID) || errors.Is(err, store.ErrNotFound) {
		utils.RespondWithError(w, http.StatusNotFound, "Drink not found")
		return
	}
	if err != nil {
		respondStoreError(w, err)
		return
	}

	rdx.RdxDel(cacheKeyAll, cacheKeyDrink(id))
	go mq.Emit(ctx, "drink-updated", mq.Index{EntityType: "drink", Method: "PUT", EntityId: id})

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Updated"})
}

// DeleteDrink removes a drink. A second delete of the same id reads as not
// found.
func (h *Handler) DeleteDrink(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	id := ps.ByName("id")

	count, err := h.store.Delete(ctx, id)
	if errors.Is(err, store.ErrInvalidID) {
		utils.RespondWithError(w, http.StatusNotFound, "Drink not found")
		return
	}
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if count == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Drink not found")
		return
	}

	rdx.RdxDel(cacheKeyAll, cacheKeyDrink(id))
	go mq.Emit(ctx, "drink-deleted", mq.Index{EntityType: "drink", Method: "DELETE", EntityId: id})

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Deleted"})
}
