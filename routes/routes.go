package routes

import (
	"net/http"
	"time"

	"eshop/controllers"
	"eshop/middleware"
	"eshop/pages"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// NewRouter returns a router with the middleware every route shares
func NewRouter(logger *zap.Logger, requestTimeout time.Duration) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.Recoverer(logger))
	router.Use(middleware.Timeout(requestTimeout))
	router.Use(middleware.OptionalAuth)
	return router
}

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, userController *controllers.UserController, productController *controllers.ProductController, categoryController *controllers.CategoryController, cartController *controllers.CartController, site *pages.Handler) {
	// Public routes
	router.HandleFunc("/register", userController.Register).Methods("POST")
	router.HandleFunc("/login", userController.Login).Methods("POST")

	// Protected routes
	router.Handle("/profile", authOnly(userController.GetProfile)).Methods("GET")
	router.Handle("/profile", authOnly(userController.UpdateProfile)).Methods("PUT")

	// Product routes
	router.HandleFunc("/products", productController.GetProducts).Methods("GET")
	router.HandleFunc("/products/{id}", productController.GetProductByID).Methods("GET")
	router.HandleFunc("/categories", categoryController.GetCategories).Methods("GET")

	// Admin routes
	router.Handle("/products", adminOnly(productController.CreateProduct)).Methods("POST")
	router.Handle("/products/{id}", adminOnly(productController.UpdateProduct)).Methods("PUT")
	router.Handle("/products/{id}", adminOnly(productController.DeleteProduct)).Methods("DELETE")
	router.Handle("/categories", adminOnly(categoryController.CreateCategory)).Methods("POST")
	router.Handle("/categories/{id}", adminOnly(categoryController.DeleteCategory)).Methods("DELETE")

	// Cart API; anonymous callers get 401 from the cart itself
	api := router.PathPrefix("/api/cart").Subrouter()
	api.HandleFunc("", cartController.GetCart).Methods("GET")
	api.HandleFunc("/add", cartController.AddToCart).Methods("POST")
	api.HandleFunc("/update", cartController.UpdateCartItem).Methods("POST")
	api.HandleFunc("/remove/{cartItemId}", cartController.RemoveFromCart).Methods("POST")
	api.HandleFunc("/count", cartController.GetCartItemCount).Methods("GET")

	registerPages(router, site)
}

func registerPages(router *mux.Router, site *pages.Handler) {
	router.HandleFunc("/", site.Home).Methods("GET")
	router.HandleFunc("/catalog", site.CatalogPage).Methods("GET")

	router.HandleFunc("/cart", site.CartPage).Methods("GET")
	router.HandleFunc("/cart/summary", site.CartSummary).Methods("GET")
	router.HandleFunc("/cart/add", site.AddToCart).Methods("POST")
	router.HandleFunc("/cart/change", site.ChangeQuantity).Methods("POST")
	router.HandleFunc("/cart/update", site.UpdateCartItem).Methods("POST")
	router.HandleFunc("/cart/remove", site.RemoveCartItem).Methods("POST")

	router.HandleFunc("/account/login", site.LoginPage).Methods("GET")
	router.HandleFunc("/account/login", site.Login).Methods("POST")
	router.HandleFunc("/account/register", site.RegisterPage).Methods("GET")
	router.HandleFunc("/account/register", site.Register).Methods("POST")
	router.HandleFunc("/account/logout", site.Logout).Methods("POST")
	router.HandleFunc("/account/profile", site.ProfilePage).Methods("GET")
	router.HandleFunc("/account/profile", site.UpdateProfile).Methods("POST")

	router.HandleFunc("/admin/products", site.AdminProducts).Methods("GET")
	router.HandleFunc("/admin/products/create", site.CreateProductPage).Methods("GET")
	router.HandleFunc("/admin/products/create", site.CreateProduct).Methods("POST")
	router.HandleFunc("/admin/products/{id:[0-9]+}/edit", site.EditProductPage).Methods("GET")
	router.HandleFunc("/admin/products/{id:[0-9]+}/edit", site.EditProduct).Methods("POST")
	router.HandleFunc("/admin/products/{id:[0-9]+}/delete", site.DeleteProduct).Methods("POST")
	router.HandleFunc("/admin/categories", site.CreateCategory).Methods("POST")
	router.HandleFunc("/admin/categories/{id:[0-9]+}/delete", site.DeleteCategory).Methods("POST")
}

func authOnly(h http.HandlerFunc) http.Handler {
	return middleware.AuthMiddleware(h)
}

func adminOnly(h http.HandlerFunc) http.Handler {
	return middleware.AuthMiddleware(middleware.AdminMiddleware(h))
}
