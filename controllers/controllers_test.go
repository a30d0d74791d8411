package controllers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"eshop/accounts"
	"eshop/cart"
	"eshop/catalog"
	"eshop/controllers"
	"eshop/models"
	"eshop/pages"
	"eshop/routes"
	"eshop/store/memory"
	"eshop/utils"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type harness struct {
	t      *testing.T
	router *mux.Router
	store  *memory.Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	st := memory.New()
	logger := zap.NewNop()
	accountService := accounts.NewService(st, nil, time.Hour, logger)
	catalogService := catalog.NewService(st, st)
	engine := cart.NewEngine(st, st)
	site, err := pages.New(engine, catalogService, accountService, logger, pages.Options{TokenTTL: time.Hour})
	require.NoError(t, err)

	router := routes.NewRouter(logger, time.Second)
	routes.RegisterRoutes(router,
		controllers.NewUserController(accountService, logger),
		controllers.NewProductController(catalogService, logger),
		controllers.NewCategoryController(catalogService, logger),
		controllers.NewCartController(engine, logger),
		site,
	)
	return &harness{t: t, router: router, store: st}
}

func (h *harness) token(userID, role string) string {
	h.t.Helper()
	tok, err := utils.GenerateJWT(userID, userID+"@shop.test", role, time.Hour)
	require.NoError(h.t, err)
	return tok
}

func (h *harness) do(method, path, body, token string) *httptest.ResponseRecorder {
	h.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func (h *harness) category(name string) *models.Category {
	h.t.Helper()
	c := &models.Category{Name: name}
	require.NoError(h.t, h.store.InsertCategory(context.Background(), c))
	return c
}

func (h *harness) product(name string, price string, stock int, categoryID int64) *models.Product {
	h.t.Helper()
	p := &models.Product{
		Name:          name,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		CategoryID:    categoryID,
		ImageURL:      models.PlaceholderImage,
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(h.t, h.store.InsertProduct(context.Background(), p))
	return p
}

type cartResult struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Message string `json:"message"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestCartAPIRequiresUser(t *testing.T) {
	h := newHarness(t)
	p := h.product("Mug", "10.00", 5, h.category("Kitchen").ID)

	rec := h.do(http.MethodPost, "/api/cart/add", `{"productId":`+strconv.FormatInt(p.ID, 10)+`}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	res := decode[cartResult](t, rec)
	assert.False(t, res.Success)
	assert.Equal(t, "You must be logged in to use the cart", res.Message)

	rec = h.do(http.MethodGet, "/api/cart/count", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":0}`, rec.Body.String())
}

func TestCartAPIScenario(t *testing.T) {
	h := newHarness(t)
	p := h.product("Mug", "10.00", 5, h.category("Kitchen").ID)
	alice := h.token("alice", models.RoleUser)
	pid := strconv.FormatInt(p.ID, 10)

	rec := h.do(http.MethodPost, "/api/cart/add", `{"productId":`+pid+`,"quantity":3}`, alice)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, cartResult{Success: true, Count: 3}, decode[cartResult](t, rec))

	rec = h.do(http.MethodPost, "/api/cart/add", `{"productId":`+pid+`,"quantity":3}`, alice)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Only 5 of this item in stock", decode[cartResult](t, rec).Message)

	lines, err := h.store.ListLines(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	lineID := strconv.FormatInt(lines[0].ID, 10)

	rec = h.do(http.MethodPost, "/api/cart/update", `{"cartItemId":`+lineID+`,"quantity":5}`, alice)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, cartResult{Success: true, Count: 5, Message: "Cart updated"}, decode[cartResult](t, rec))

	rec = h.do(http.MethodPost, "/api/cart/update", `{"cartItemId":`+lineID+`,"quantity":6}`, alice)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = h.do(http.MethodGet, "/api/cart/count", "", alice)
	assert.JSONEq(t, `{"count":5}`, rec.Body.String())

	rec = h.do(http.MethodGet, "/api/cart", "", alice)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[cart.View](t, rec)
	require.Len(t, view.Items, 1)
	assert.True(t, view.Total.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, 5, view.Count)

	rec = h.do(http.MethodPost, "/api/cart/remove/"+lineID, "", alice)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, cartResult{Success: true, Count: 0}, decode[cartResult](t, rec))

	rec = h.do(http.MethodPost, "/api/cart/remove/"+lineID, "", alice)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCartAPIErrors(t *testing.T) {
	h := newHarness(t)
	p := h.product("Mug", "10.00", 5, h.category("Kitchen").ID)
	alice := h.token("alice", models.RoleUser)
	bob := h.token("bob", models.RoleUser)
	pid := strconv.FormatInt(p.ID, 10)

	rec := h.do(http.MethodPost, "/api/cart/add", `{"productId":9999}`, alice)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found", decode[cartResult](t, rec).Message)

	rec = h.do(http.MethodPost, "/api/cart/add", `{"productId":`+pid+`,"quantity":0}`, alice)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Quantity must be at least 1", decode[cartResult](t, rec).Message)

	rec = h.do(http.MethodPost, "/api/cart/add", `{"productId":`, alice)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(http.MethodPost, "/api/cart/add", `{"productId":`+pid+`}`, alice)
	require.Equal(t, http.StatusOK, rec.Code)
	lines, err := h.store.ListLines(context.Background(), "alice")
	require.NoError(t, err)
	lineID := strconv.FormatInt(lines[0].ID, 10)

	rec = h.do(http.MethodPost, "/api/cart/add", `{"productId":`+pid+`,"quantity":9223372036854775807}`, alice)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Only 5 of this item in stock", decode[cartResult](t, rec).Message)
	rec = h.do(http.MethodGet, "/api/cart/count", "", alice)
	assert.JSONEq(t, `{"count":1}`, rec.Body.String())

	rec = h.do(http.MethodPost, "/api/cart/update", `{"cartItemId":`+lineID+`,"quantity":2}`, bob)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Cart item not found", decode[cartResult](t, rec).Message)

	rec = h.do(http.MethodPost, "/api/cart/remove/abc", "", alice)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductEndpoints(t *testing.T) {
	h := newHarness(t)
	books := h.category("Books")
	h.product("Go Programming", "30.00", 3, books.ID)
	admin := h.token("root", models.RoleAdmin)
	user := h.token("alice", models.RoleUser)

	body := `{"name":"Chess set","description":"Wooden board","price":"45.50","stockQuantity":4,"categoryId":` +
		strconv.FormatInt(books.ID, 10) + `}`

	rec := h.do(http.MethodPost, "/products", body, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = h.do(http.MethodPost, "/products", body, user)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(http.MethodPost, "/products", body, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.Product](t, rec)
	assert.Equal(t, models.PlaceholderImage, created.ImageURL)

	rec = h.do(http.MethodPost, "/products", `{"name":"","price":0,"categoryId":1}`, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "name is required")

	rec = h.do(http.MethodGet, "/products?search=board", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	found := decode[[]models.Product](t, rec)
	require.Len(t, found, 1)
	assert.Equal(t, created.ID, found[0].ID)

	id := strconv.FormatInt(created.ID, 10)
	rec = h.do(http.MethodGet, "/products/"+id, "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(http.MethodPut, "/products/"+id, strings.Replace(body, "45.50", "40", 1), admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[models.Product](t, rec).Price.Equal(decimal.NewFromInt(40)))

	rec = h.do(http.MethodDelete, "/products/"+id, "", admin)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = h.do(http.MethodGet, "/products/"+id, "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCategoryEndpoints(t *testing.T) {
	h := newHarness(t)
	admin := h.token("root", models.RoleAdmin)

	rec := h.do(http.MethodPost, "/categories", `{"name":"Toys"}`, admin)
	require.Equal(t, http.StatusCreated, rec.Code)
	toys := decode[models.Category](t, rec)

	rec = h.do(http.MethodPost, "/categories", `{"name":"Toys"}`, admin)
	assert.Equal(t, http.StatusConflict, rec.Code)

	h.product("Yo-yo", "2.00", 10, toys.ID)
	rec = h.do(http.MethodDelete, "/categories/"+strconv.FormatInt(toys.ID, 10), "", admin)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = h.do(http.MethodGet, "/categories", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Category](t, rec), 1)
}

func TestUserEndpoints(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodPost, "/register", `{"email":"ada@shop.test","password":"pw","firstName":"Ada"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), `"password"`)

	rec = h.do(http.MethodPost, "/register", `{"email":"ada@shop.test","password":"pw"}`, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = h.do(http.MethodPost, "/login", `{"email":"ada@shop.test","password":"nope"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(http.MethodPost, "/login", `{"email":"ada@shop.test","password":"pw"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode[map[string]string](t, rec)["token"]
	require.NotEmpty(t, token)

	rec = h.do(http.MethodGet, "/profile", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(http.MethodPut, "/profile", `{"firstName":"Ada","lastName":"Lovelace","phone":"12"}`, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "phone must be an international number")

	rec = h.do(http.MethodPut, "/profile", `{"firstName":"Ada","lastName":"Lovelace","phone":"+44 20 7946 0958"}`, token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(http.MethodGet, "/profile", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decode[models.User](t, rec)
	assert.Equal(t, "Lovelace", profile.LastName)
	assert.Equal(t, "+442079460958", profile.Phone)
	assert.Equal(t, "ada@shop.test", profile.Email)
}
