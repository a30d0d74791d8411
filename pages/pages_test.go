package pages_test

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"eshop/accounts"
	"eshop/cart"
	"eshop/catalog"
	"eshop/middleware"
	"eshop/models"
	"eshop/pages"
	"eshop/store/memory"
	"eshop/utils"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type site struct {
	t        *testing.T
	router   *mux.Router
	store    *memory.Store
	accounts *accounts.Service
}

func newSite(t *testing.T) *site {
	t.Helper()
	st := memory.New()
	logger := zap.NewNop()
	accountService := accounts.NewService(st, nil, time.Hour, logger)
	h, err := pages.New(cart.NewEngine(st, st), catalog.NewService(st, st), accountService, logger, pages.Options{TokenTTL: time.Hour})
	require.NoError(t, err)

	router := mux.NewRouter()
	router.Use(middleware.OptionalAuth)
	router.HandleFunc("/", h.Home).Methods("GET")
	router.HandleFunc("/catalog", h.CatalogPage).Methods("GET")
	router.HandleFunc("/cart", h.CartPage).Methods("GET")
	router.HandleFunc("/cart/summary", h.CartSummary).Methods("GET")
	router.HandleFunc("/cart/add", h.AddToCart).Methods("POST")
	router.HandleFunc("/cart/change", h.ChangeQuantity).Methods("POST")
	router.HandleFunc("/cart/update", h.UpdateCartItem).Methods("POST")
	router.HandleFunc("/cart/remove", h.RemoveCartItem).Methods("POST")
	router.HandleFunc("/account/login", h.LoginPage).Methods("GET")
	router.HandleFunc("/account/login", h.Login).Methods("POST")
	router.HandleFunc("/account/register", h.Register).Methods("POST")
	router.HandleFunc("/account/logout", h.Logout).Methods("POST")
	router.HandleFunc("/account/profile", h.ProfilePage).Methods("GET")
	router.HandleFunc("/account/profile", h.UpdateProfile).Methods("POST")
	router.HandleFunc("/admin/products", h.AdminProducts).Methods("GET")
	router.HandleFunc("/admin/products/create", h.CreateProduct).Methods("POST")
	router.HandleFunc("/admin/products/{id:[0-9]+}/edit", h.EditProductPage).Methods("GET")
	router.HandleFunc("/admin/categories/{id:[0-9]+}/delete", h.DeleteCategory).Methods("POST")
	return &site{t: t, router: router, store: st, accounts: accountService}
}

func (s *site) session(userID, role string) *http.Cookie {
	s.t.Helper()
	tok, err := utils.GenerateJWT(userID, userID+"@shop.test", role, time.Hour)
	require.NoError(s.t, err)
	return &http.Cookie{Name: middleware.TokenCookie, Value: tok}
}

func (s *site) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	s.t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *site) post(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	s.t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *site) product(name string, stock int) *models.Product {
	s.t.Helper()
	c := &models.Category{Name: "Category " + name}
	require.NoError(s.t, s.store.InsertCategory(context.Background(), c))
	p := &models.Product{
		Name:          name,
		Price:         decimal.RequireFromString("12.50"),
		StockQuantity: stock,
		CategoryID:    c.ID,
		ImageURL:      models.PlaceholderImage,
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(s.t, s.store.InsertProduct(context.Background(), p))
	return p
}

func flashOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "flash" && c.Value != "" {
			raw, err := base64.RawURLEncoding.DecodeString(c.Value)
			require.NoError(t, err)
			_, message, _ := strings.Cut(string(raw), "\n")
			return message
		}
	}
	return ""
}

func id(v int64) string { return strconv.FormatInt(v, 10) }

func TestHomeShowsProductsAndBadge(t *testing.T) {
	s := newSite(t)
	p := s.product("Teapot", 4)
	alice := s.session("alice", models.RoleUser)

	rec := s.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Teapot")
	assert.Contains(t, rec.Body.String(), "Log in")

	_, err := cart.NewEngine(s.store, s.store).AddItem(context.Background(), "alice", p.ID, 2)
	require.NoError(t, err)

	rec = s.get("/", alice)
	body := rec.Body.String()
	assert.Contains(t, body, `data-count="2"`)
	assert.Contains(t, body, `<span class="in-cart">2</span>`)
}

func TestAnonymousAddRedirectsToLogin(t *testing.T) {
	s := newSite(t)
	p := s.product("Teapot", 4)

	rec := s.post("/cart/add", url.Values{"productId": {id(p.ID)}, "return": {"/catalog"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/account/login?return=%2Fcatalog", rec.Header().Get("Location"))
}

func TestAddChangeAndCartPage(t *testing.T) {
	s := newSite(t)
	p := s.product("Teapot", 2)
	alice := s.session("alice", models.RoleUser)
	ctx := context.Background()

	rec := s.post("/cart/add", url.Values{"productId": {id(p.ID)}, "return": {"/catalog"}}, alice)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/catalog", rec.Header().Get("Location"))
	assert.Equal(t, "Added to cart", flashOf(t, rec))

	rec = s.post("/cart/change", url.Values{"productId": {id(p.ID)}, "change": {"1"}}, alice)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = s.post("/cart/change", url.Values{"productId": {id(p.ID)}, "change": {"1"}}, alice)
	assert.Equal(t, "Only 2 of this item in stock", flashOf(t, rec))

	count, err := s.store.SumQuantities(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	rec = s.get("/cart", alice)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Teapot")
	assert.Contains(t, rec.Body.String(), "$25.00")

	s.post("/cart/change", url.Values{"productId": {id(p.ID)}, "change": {"-2"}}, alice)
	count, err = s.store.SumQuantities(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, count)

	rec = s.get("/cart", alice)
	assert.Contains(t, rec.Body.String(), "Your cart is empty")
}

func TestCartPageUpdateAndRemove(t *testing.T) {
	s := newSite(t)
	p := s.product("Teapot", 5)
	alice := s.session("alice", models.RoleUser)
	line, err := cart.NewEngine(s.store, s.store).AddItem(context.Background(), "alice", p.ID, 1)
	require.NoError(t, err)

	rec := s.post("/cart/update", url.Values{"cartItemId": {id(line.ID)}, "quantity": {"9"}}, alice)
	assert.Equal(t, "/cart", rec.Header().Get("Location"))
	assert.Equal(t, "Only 5 of this item in stock", flashOf(t, rec))

	rec = s.post("/cart/update", url.Values{"cartItemId": {id(line.ID)}, "quantity": {"4"}}, alice)
	assert.Equal(t, "Cart updated", flashOf(t, rec))

	bob := s.session("bob", models.RoleUser)
	rec = s.post("/cart/remove", url.Values{"cartItemId": {id(line.ID)}}, bob)
	assert.Equal(t, "Item removed", flashOf(t, rec))
	count, err := s.store.SumQuantities(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	s.post("/cart/remove", url.Values{"cartItemId": {id(line.ID)}}, alice)
	count, err = s.store.SumQuantities(context.Background(), "alice")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCartShowsDeletedProduct(t *testing.T) {
	s := newSite(t)
	p := s.product("Teapot", 5)
	alice := s.session("alice", models.RoleUser)
	_, err := cart.NewEngine(s.store, s.store).AddItem(context.Background(), "alice", p.ID, 1)
	require.NoError(t, err)
	require.NoError(t, s.store.DeleteProduct(context.Background(), p.ID))

	rec := s.get("/cart", alice)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), cart.UnknownProductName)
	assert.Contains(t, rec.Body.String(), "no longer available")
}

func TestCartSummaryFragment(t *testing.T) {
	s := newSite(t)
	p := s.product("Teapot", 500)
	_, err := cart.NewEngine(s.store, s.store).AddItem(context.Background(), "alice", p.ID, 120)
	require.NoError(t, err)

	rec := s.get("/cart/summary")
	assert.Equal(t, `<a href="/cart" id="cart-summary">Cart </a>`, strings.TrimSpace(rec.Body.String()))

	rec = s.get("/cart/summary", s.session("alice", models.RoleUser))
	assert.Contains(t, rec.Body.String(), ">99+</span>")
}

func TestLoginAndRegister(t *testing.T) {
	s := newSite(t)
	_, err := s.accounts.Register(context.Background(), accounts.RegisterInput{Email: "ada@shop.test", Password: "pw", FirstName: "Ada"})
	require.NoError(t, err)

	rec := s.post("/account/login", url.Values{"email": {"ada@shop.test"}, "password": {"bad"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password")

	rec = s.post("/account/login", url.Values{"email": {"ada@shop.test"}, "password": {"pw"}, "return": {"https://evil.test"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.TokenCookie {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)

	rec = s.post("/account/register", url.Values{
		"email": {"grace@shop.test"}, "password": {"pw"}, "confirmPassword": {"other"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Passwords do not match")

	rec = s.post("/account/register", url.Values{
		"email": {"ada@shop.test"}, "password": {"pw"}, "confirmPassword": {"pw"},
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.post("/account/register", url.Values{
		"email": {"grace@shop.test"}, "password": {"pw"}, "confirmPassword": {"pw"}, "firstName": {"Grace"},
	})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "Welcome, Grace", flashOf(t, rec))

	rec = s.post("/account/logout", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestProfilePage(t *testing.T) {
	s := newSite(t)
	user, err := s.accounts.Register(context.Background(), accounts.RegisterInput{Email: "ada@shop.test", Password: "pw", FirstName: "Ada", LastName: "Lovelace"})
	require.NoError(t, err)
	session := s.session(user.ID, models.RoleUser)

	rec := s.get("/account/profile")
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = s.get("/account/profile", session)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<span class="avatar" aria-hidden="true">AL</span>`)
	assert.Contains(t, rec.Body.String(), "ada@shop.test")

	rec = s.post("/account/profile", url.Values{"firstName": {"Grace"}, "lastName": {"Hopper"}, "phone": {"call me"}}, session)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "phone must be an international number")
	assert.Contains(t, rec.Body.String(), `value="call me"`)

	rec = s.post("/account/profile", url.Values{"firstName": {"Grace"}, "lastName": {"Hopper"}, "phone": {"+1 415 555 0123"}}, session)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "Profile updated", flashOf(t, rec))

	rec = s.get("/account/profile", session)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="&#43;14155550123"`)
	assert.Contains(t, rec.Body.String(), ">GH</span>")
}

func TestAdminPages(t *testing.T) {
	s := newSite(t)
	p := s.product("Teapot", 5)

	rec := s.get("/admin/products")
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = s.get("/admin/products", s.session("alice", models.RoleUser))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin := s.session("root", models.RoleAdmin)
	rec = s.get("/admin/products", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Teapot")

	rec = s.get("/admin/products/"+id(p.ID)+"/edit", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="12.50"`)

	rec = s.post("/admin/products/create", url.Values{
		"name": {"Kettle"}, "price": {"abc"}, "stockQuantity": {"3"}, "categoryId": {id(p.CategoryID)},
	}, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "price must be a number")

	rec = s.post("/admin/products/create", url.Values{
		"name": {"Kettle"}, "price": {"19.99"}, "stockQuantity": {"3"}, "categoryId": {id(p.CategoryID)},
	}, admin)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "Created Kettle", flashOf(t, rec))

	rec = s.post("/admin/categories/"+id(p.CategoryID)+"/delete", nil, admin)
	assert.Equal(t, "Move or delete its products first", flashOf(t, rec))
}
