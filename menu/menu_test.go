package menu_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/ijake-16/homebar-menu/menu"
	"github.com/ijake-16/homebar-menu/models"
	"github.com/ijake-16/homebar-menu/ratelim"
	"github.com/ijake-16/homebar-menu/routes"
	"github.com/ijake-16/homebar-menu/store"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeStore keeps drinks in memory while honoring the adapter's contract:
// hex ObjectID identifiers, the list cap, and the error taxonomy.
type fakeStore struct {
	drinks map[string]models.Drink
	order  []string
	down   bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{drinks: make(map[string]models.Drink)}
}

func (f *fakeStore) ListAll(_ context.Context) ([]models.Drink, error) {
	if f.down {
		return nil, store.ErrUnavailable
	}
	out := []models.Drink{}
	for _, id := range f.order {
		if len(out) == store.ListCap {
			break
		}
		d := f.drinks[id]
		d.ID = id
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*models.Drink, error) {
	if f.down {
		return nil, store.ErrUnavailable
	}
	if _, err := store.ParseID(id); err != nil {
		return nil, err
	}
	d, ok := f.drinks[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	d.ID = id
	return &d, nil
}

func (f *fakeStore) Insert(_ context.Context, drink models.Drink) (string, error) {
	if f.down {
		return "", store.ErrUnavailable
	}
	id := primitive.NewObjectID().Hex()
	drink.ID = ""
	f.drinks[id] = drink
	f.order = append(f.order, id)
	return id, nil
}

func (f *fakeStore) Replace(_ context.Context, id string, drink models.Drink) error {
	if f.down {
		return store.ErrUnavailable
	}
	if _, err := store.ParseID(id); err != nil {
		return err
	}
	if _, ok := f.drinks[id]; !ok {
		return store.ErrNotFound
	}
	drink.ID = ""
	f.drinks[id] = drink
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id string) (int64, error) {
	if f.down {
		return 0, store.ErrUnavailable
	}
	if _, err := store.ParseID(id); err != nil {
		return 0, err
	}
	if _, ok := f.drinks[id]; !ok {
		return 0, nil
	}
	delete(f.drinks, id)
	for i, existing := range f.order {
		if existing == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return 1, nil
}

func (f *fakeStore) SetImageURL(_ context.Context, id, url string) error {
	if f.down {
		return store.ErrUnavailable
	}
	if _, err := store.ParseID(id); err != nil {
		return err
	}
	d, ok := f.drinks[id]
	if !ok {
		return store.ErrNotFound
	}
	d.ImageURL = url
	f.drinks[id] = d
	return nil
}

func newTestRouter(f *fakeStore) *httprouter.Router {
	router := httprouter.New()
	routes.AddMenuRoutes(router, menu.NewHandler(f), ratelim.NewRateLimiter())
	return router
}

func doJSON(t *testing.T, router *httprouter.Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const validPayload = `{
	"name": "Martini",
	"abv": 30,
	"description": "Dry and crisp",
	"base": "Gin",
	"glass": "Coupe",
	"ingredients": [{"item": "Gin", "amount": "60ml"}, {"item": "Dry Vermouth", "amount": "10ml"}],
	"ice": "None",
	"shake_or_stir": "Stir",
	"instructions": ["Stir with ice", "Strain into a chilled coupe"],
	"tags": ["classic"]
}`

var hexID = regexp.MustCompile(`^[0-9a-f]{24}$`)

func createDrink(t *testing.T, router *httprouter.Router, payload string) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/menu", payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Message string `json:"message"`
		ID      string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Created", resp.Message)
	require.Regexp(t, hexID, resp.ID)
	return resp.ID
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	router := newTestRouter(newFakeStore())
	id := createDrink(t, router, validPayload)

	rec := doJSON(t, router, http.MethodGet, "/menu/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Drink
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	want := models.NewDrink()
	require.NoError(t, json.Unmarshal([]byte(validPayload), &want))
	require.NoError(t, want.Validate())
	want.ID = got.ID

	assert.Equal(t, want, got)
	assert.Equal(t, id, got.ID)
}

func TestExampleScenario(t *testing.T) {
	router := newTestRouter(newFakeStore())
	payload := `{"description":"x","base":"Gin","glass":"Coupe","ingredients":[{"item":"Gin","amount":"60ml"}],"ice":"None","shake_or_stir":"Stir"}`
	id := createDrink(t, router, payload)

	rec := doJSON(t, router, http.MethodGet, "/menu/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "x", got["description"])
	assert.Equal(t, "Gin", got["base"])
	assert.Equal(t, "Coupe", got["glass"])
	assert.Equal(t, true, got["available"])
	assert.Equal(t, []any{}, got["instructions"])
	assert.Equal(t, []any{}, got["tags"])
	assert.Equal(t, "", got["image_url"])
}

func TestCreateValidationCompleteness(t *testing.T) {
	required := []string{"description", "base", "glass", "ingredients", "ice", "shake_or_stir"}

	for _, field := range required {
		fake := newFakeStore()
		router := newTestRouter(fake)

		var payload map[string]any
		require.NoError(t, json.Unmarshal([]byte(validPayload), &payload))
		delete(payload, field)
		body, _ := json.Marshal(payload)

		rec := doJSON(t, router, http.MethodPost, "/menu", string(body))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "missing %s", field)
		assert.Contains(t, rec.Body.String(), field+" is required")
		assert.Empty(t, fake.drinks, "nothing may be persisted when %s is missing", field)
	}
}

func TestCreateRejectsIncompleteIngredient(t *testing.T) {
	fake := newFakeStore()
	router := newTestRouter(fake)

	payload := `{"description":"x","base":"Gin","glass":"Coupe","ingredients":[{"item":"Gin"}],"ice":"None","shake_or_stir":"Stir"}`
	rec := doJSON(t, router, http.MethodPost, "/menu", payload)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "amount is required")
	assert.Empty(t, fake.drinks)
}

func TestCreateRejectsBadJSON(t *testing.T) {
	router := newTestRouter(newFakeStore())
	rec := doJSON(t, router, http.MethodPost, "/menu", `{"description":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetMalformedIDIsNotFound(t *testing.T) {
	router := newTestRouter(newFakeStore())

	for _, bad := range []string{"nope", "123", "zzzzzzzzzzzzzzzzzzzzzzzz"} {
		rec := doJSON(t, router, http.MethodGet, "/menu/"+bad, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, "id %q", bad)
	}
}

func TestGetAbsentIDIsNotFound(t *testing.T) {
	router := newTestRouter(newFakeStore())
	rec := doJSON(t, router, http.MethodGet, "/menu/"+primitive.NewObjectID().Hex(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateReplacesDocument(t *testing.T) {
	router := newTestRouter(newFakeStore())
	id := createDrink(t, router, validPayload)

	updated := `{"name":"Vesper","abv":32,"description":"Stronger","base":"Gin","glass":"Coupe","ingredients":[{"item":"Gin","amount":"45ml"},{"item":"Vodka","amount":"15ml"}],"ice":"None","shake_or_stir":"Shake"}`
	rec := doJSON(t, router, http.MethodPut, "/menu/"+id, updated)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Updated")

	rec = doJSON(t, router, http.MethodGet, "/menu/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Drink
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Vesper", got.Name)
	assert.Equal(t, "Shake", got.ShakeOrStir)
	assert.Len(t, got.Ingredients, 2)
}

func TestUpdateMissingIDIsNotFound(t *testing.T) {
	router := newTestRouter(newFakeStore())

	rec := doJSON(t, router, http.MethodPut, "/menu/"+primitive.NewObjectID().Hex(), validPayload)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodPut, "/menu/garbage", validPayload)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateValidatesPayload(t *testing.T) {
	router := newTestRouter(newFakeStore())
	id := createDrink(t, router, validPayload)

	rec := doJSON(t, router, http.MethodPut, "/menu/"+id, `{"description":"only"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestDeleteSignalsIdempotently(t *testing.T) {
	router := newTestRouter(newFakeStore())
	id := createDrink(t, router, validPayload)

	rec := doJSON(t, router, http.MethodDelete, "/menu/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Deleted")

	rec = doJSON(t, router, http.MethodDelete, "/menu/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListReturnsEmptyArray(t *testing.T) {
	router := newTestRouter(newFakeStore())

	rec := doJSON(t, router, http.MethodGet, "/menu", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestListCap(t *testing.T) {
	fake := newFakeStore()
	router := newTestRouter(fake)

	base := models.NewDrink()
	require.NoError(t, json.Unmarshal([]byte(validPayload), &base))
	for i := 0; i < 150; i++ {
		d := base
		d.Name = fmt.Sprintf("Drink %d", i)
		_, err := fake.Insert(context.Background(), d)
		require.NoError(t, err)
	}

	rec := doJSON(t, router, http.MethodGet, "/menu", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var drinks []models.Drink
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &drinks))
	assert.Len(t, drinks, store.ListCap)
}

func TestListStoreUnavailable(t *testing.T) {
	fake := newFakeStore()
	fake.down = true
	router := newTestRouter(fake)

	rec := doJSON(t, router, http.MethodGet, "/menu", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "unavailable")
}

func TestPrintMenuPDF(t *testing.T) {
	router := newTestRouter(newFakeStore())
	createDrink(t, router, validPayload)

	rec := doJSON(t, router, http.MethodGet, "/print/menu", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

// multipartImage builds an upload body carrying a small encoded PNG under
// the given form field.
func multipartImage(t *testing.T, field string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile(field, "drink.png")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

// chdirTemp changes into a fresh temp dir for the test and restores the
// original working directory on cleanup (t.Chdir requires Go 1.24+).
func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func smallPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	return buf.Bytes()
}

func doUpload(router *httprouter.Router, id string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/menu/"+id+"/image", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestUploadDrinkImage(t *testing.T) {
	chdirTemp(t)
	t.Setenv("PUBLIC_BASE_URL", "https://bar.example")

	fake := newFakeStore()
	router := newTestRouter(fake)
	id := createDrink(t, router, validPayload)

	body, contentType := multipartImage(t, "image", smallPNG(t))
	rec := doUpload(router, id, body, contentType)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		ImageURL string `json:"image_url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, strings.HasPrefix(resp.ImageURL, "https://bar.example/static/menupic/"),
		"image_url %q must honor PUBLIC_BASE_URL", resp.ImageURL)

	assert.Equal(t, resp.ImageURL, fake.drinks[id].ImageURL)

	// full-size copy and thumbnail land on disk
	fileName := path.Base(resp.ImageURL)
	for _, p := range []string{
		filepath.Join("static", "menupic", fileName),
		filepath.Join("static", "menupic", "thumb", fileName),
	} {
		_, err := os.Stat(p)
		assert.NoError(t, err, "expected %s to exist", p)
	}
}

func TestUploadDrinkImageMissingDrink(t *testing.T) {
	chdirTemp(t)
	router := newTestRouter(newFakeStore())

	body, contentType := multipartImage(t, "image", smallPNG(t))
	rec := doUpload(router, primitive.NewObjectID().Hex(), body, contentType)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	body, contentType = multipartImage(t, "image", smallPNG(t))
	rec = doUpload(router, "garbage", body, contentType)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadDrinkImageBadRequests(t *testing.T) {
	chdirTemp(t)
	fake := newFakeStore()
	router := newTestRouter(fake)
	id := createDrink(t, router, validPayload)

	// wrong form field
	body, contentType := multipartImage(t, "file", smallPNG(t))
	rec := doUpload(router, id, body, contentType)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// not an image
	body, contentType = multipartImage(t, "image", []byte("not an image"))
	rec = doUpload(router, id, body, contentType)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, "", fake.drinks[id].ImageURL, "failed uploads must not touch image_url")
}

func TestDrinkQRCode(t *testing.T) {
	router := newTestRouter(newFakeStore())
	id := createDrink(t, router, validPayload)

	rec := doJSON(t, router, http.MethodGet, "/menu/"+id+"/qr", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	rec = doJSON(t, router, http.MethodGet, "/menu/"+primitive.NewObjectID().Hex()+"/qr", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
