// Package pages renders the storefront HTML. Every cart action goes through
// the same cart.Service the JSON API uses; failures become a flash message
// and a redirect, never a raw error page.
package pages

import (
	"bytes"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"eshop/accounts"
	"eshop/cart"
	"eshop/catalog"
	"eshop/middleware"
	"eshop/models"
	"eshop/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

const flashCookie = "flash"

// views rendered inside the shared layout
var views = []string{
	"home.html",
	"catalog.html",
	"cart.html",
	"login.html",
	"register.html",
	"profile.html",
	"admin_products.html",
	"admin_form.html",
	"error.html",
}

// Options tune the session cookie
type Options struct {
	CookieSecure bool
	TokenTTL     time.Duration
}

// Handler serves every HTML page
type Handler struct {
	Cart     cart.Service
	Catalog  *catalog.Service
	Accounts *accounts.Service
	Logger   *zap.Logger

	opts      Options
	templates map[string]*template.Template
}

// New parses the embedded templates
func New(cartService cart.Service, catalogService *catalog.Service, accountService *accounts.Service, logger *zap.Logger, opts Options) (*Handler, error) {
	templates := make(map[string]*template.Template, len(views)+1)
	for _, view := range views {
		t, err := template.New(view).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/partials.html", "templates/"+view)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", view, err)
		}
		templates[view] = t
	}
	summary, err := template.New("cart_summary.html").Funcs(funcs).ParseFS(templateFS,
		"templates/partials.html", "templates/cart_summary.html")
	if err != nil {
		return nil, fmt.Errorf("parse cart_summary.html: %w", err)
	}
	templates["cart_summary.html"] = summary

	return &Handler{
		Cart:      cartService,
		Catalog:   catalogService,
		Accounts:  accountService,
		Logger:    logger,
		opts:      opts,
		templates: templates,
	}, nil
}

var funcs = template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"query": url.QueryEscape,
	"card":  newProductCard,
}

// productCard feeds the product_card partial
type productCard struct {
	Product models.Product
	InCart  int
	Return  string
}

func newProductCard(product models.Product, quantities map[int64]int, returnTo string) productCard {
	return productCard{Product: product, InCart: quantities[product.ID], Return: returnTo}
}

// page is what every layout-wrapped template receives
type page struct {
	Title string
	User  *utils.Claims
	Badge cart.Badge
	Flash *flash
	Path  string
	Data  interface{}
}

func (p page) IsAdmin() bool {
	return p.User != nil && p.User.Role == models.RoleAdmin
}

type flash struct {
	Kind    string
	Message string
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, view, title string, data interface{}) {
	p := page{
		Title: title,
		Flash: h.takeFlash(w, r),
		Path:  r.URL.RequestURI(),
		Data:  data,
	}
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		p.User = claims
		badge, err := cart.CountBadge(r.Context(), h.Cart, claims.UserID)
		if err != nil {
			h.Logger.Warn("cart badge unavailable", zap.String("user_id", claims.UserID), zap.Error(err))
		}
		p.Badge = badge
	}
	h.execute(w, status, view, "layout", p)
}

func (h *Handler) execute(w http.ResponseWriter, status int, view, name string, data interface{}) {
	var buf bytes.Buffer
	if err := h.templates[view].ExecuteTemplate(&buf, name, data); err != nil {
		h.Logger.Error("render template", zap.String("view", view), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request, message string) {
	h.render(w, r, http.StatusNotFound, "error.html", "Not found", message)
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.Logger.Error(op+" failed",
		zap.String("request_id", middleware.RequestID(r.Context())),
		zap.Error(err),
	)
	h.render(w, r, http.StatusInternalServerError, "error.html", "Something went wrong",
		"The page could not be loaded, please try again.")
}

func (h *Handler) setFlash(w http.ResponseWriter, kind, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString([]byte(kind + "\n" + message)),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		Secure:   h.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) takeFlash(w http.ResponseWriter, r *http.Request) *flash {
	cookie, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1})
	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	kind, message, ok := strings.Cut(string(raw), "\n")
	if !ok || message == "" {
		return nil
	}
	return &flash{Kind: kind, Message: message}
}

// redirectWithFlash is the post/redirect/get exit of every form handler
func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, to, kind, message string) {
	if message != "" {
		h.setFlash(w, kind, message)
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// requireUser redirects anonymous visitors to the login page
func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request, returnTo string) (string, bool) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		h.redirectWithFlash(w, r, loginURL(returnTo), "info", "Please log in to continue")
		return "", false
	}
	return userID, true
}

func (h *Handler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if _, ok := h.requireUser(w, r, r.URL.RequestURI()); !ok {
		return false
	}
	if !middleware.IsAdmin(r.Context()) {
		h.render(w, r, http.StatusForbidden, "error.html", "Forbidden", "Administrators only.")
		return false
	}
	return true
}

func loginURL(returnTo string) string {
	return "/account/login?return=" + url.QueryEscape(safeReturn(returnTo, "/"))
}

// safeReturn only accepts local paths so forms cannot redirect off-site
func safeReturn(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") ||
		strings.HasPrefix(target, "//") || strings.Contains(target, "\\") {
		return fallback
	}
	return target
}
