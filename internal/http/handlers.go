package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fairyhunter13/product-console/internal/apiclient"
	"github.com/fairyhunter13/product-console/internal/auth"
	"github.com/fairyhunter13/product-console/internal/config"
	"github.com/fairyhunter13/product-console/internal/model"
	"github.com/fairyhunter13/product-console/internal/obs"
)

// ProductAPI is the subset of the API client the console uses.
type ProductAPI interface {
	Login(ctx context.Context, cred model.Credentials) (string, error)
	ListProducts(ctx context.Context, token string) ([]model.Product, error)
	FindProduct(ctx context.Context, token string, id model.ID) (model.Product, bool, error)
	CreateProduct(ctx context.Context, token string, p model.Product) error
	UpdateProduct(ctx context.Context, token string, p model.Product) error
	DeleteProduct(ctx context.Context, token string, id model.ID) error
}

const msgShuttingDown = "The server is shutting down. Please try again shortly."

type counters struct {
	requests         atomic.Uint64
	logins           atomic.Uint64
	loginFailures    atomic.Uint64
	mutations        atomic.Uint64
	mutationFailures atomic.Uint64
	sessionsExpired  atomic.Uint64
}

type App struct {
	Cfg     config.Config
	API     ProductAPI
	closing atomic.Bool
	started time.Time
	stats   counters
}

func NewApp(cfg config.Config, api ProductAPI) *App {
	return &App{Cfg: cfg, API: api, started: time.Now()}
}

// StartShutdown makes health checks fail and rejects new mutations.
func (a *App) StartShutdown() {
	a.closing.Store(true)
}

func (a *App) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.stats.requests.Add(1)
		next.ServeHTTP(w, r)
	})
}

func (a *App) tokens(w http.ResponseWriter, r *http.Request) *auth.CookieStore {
	return auth.NewCookieStore(w, r, auth.CookieOptions{Secure: a.Cfg.CookieSecure, MaxAge: a.Cfg.CookieMaxAge})
}

// requireToken redirects to the login screen when no token is stored.
func (a *App) requireToken(next func(w http.ResponseWriter, r *http.Request, token string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok, _ := a.tokens(w, r).Token(r.Context())
		if tok == "" {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next(w, r, tok)
	}
}

// expireSession drops a token the API no longer accepts and sends the user to log in again.
func (a *App) expireSession(w http.ResponseWriter, r *http.Request) {
	a.stats.sessionsExpired.Add(1)
	_ = a.tokens(w, r).RemoveToken(r.Context())
	obs.Logger.Info("session_expired", "request_id", obs.RequestIDFromContext(r.Context()))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *App) loginPageHandler(w http.ResponseWriter, r *http.Request) {
	if auth.IsAuthenticated(r.Context(), a.tokens(w, r)) {
		http.Redirect(w, r, "/products", http.StatusSeeOther)
		return
	}
	render(w, http.StatusOK, "login", loginPage{})
}

func (a *App) loginHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		render(w, http.StatusBadRequest, "login", loginPage{Error: "Invalid form submission"})
		return
	}
	cred := model.Credentials{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
	if cred.Username == "" || cred.Password == "" {
		render(w, http.StatusBadRequest, "login", loginPage{Username: cred.Username, Error: "Username and password are required"})
		return
	}
	tok, err := a.API.Login(r.Context(), cred)
	if err != nil {
		a.stats.loginFailures.Add(1)
		obs.Logger.Info("login_failed",
			"username", cred.Username,
			"status", apiclient.StatusCode(err),
			"request_id", obs.RequestIDFromContext(r.Context()),
		)
		render(w, statusFor(err), "login", loginPage{Username: cred.Username, Error: err.Error()})
		return
	}
	if err := a.tokens(w, r).SetToken(r.Context(), tok); err != nil {
		render(w, http.StatusInternalServerError, "login", loginPage{Username: cred.Username, Error: "Login failed"})
		return
	}
	a.stats.logins.Add(1)
	obs.Logger.Info("login_succeeded", "username", cred.Username, "request_id", obs.RequestIDFromContext(r.Context()))
	http.Redirect(w, r, "/products", http.StatusSeeOther)
}

func (a *App) logoutHandler(w http.ResponseWriter, r *http.Request) {
	_ = a.tokens(w, r).RemoveToken(r.Context())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// renderProducts fetches the list and renders it, showing msg inline when set.
func (a *App) renderProducts(w http.ResponseWriter, r *http.Request, token string, status int, msg string) {
	products, err := a.API.ListProducts(r.Context(), token)
	if apiclient.IsUnauthorized(err) {
		a.expireSession(w, r)
		return
	}
	if err != nil {
		obs.Logger.Warn("list_products_failed", "error", err, "request_id", obs.RequestIDFromContext(r.Context()))
		if msg == "" {
			msg = err.Error()
		}
		if status == http.StatusOK {
			status = statusFor(err)
		}
	}
	render(w, status, "products", productsPage{Products: products, Error: msg})
}

func (a *App) listProductsHandler(w http.ResponseWriter, r *http.Request, token string) {
	a.renderProducts(w, r, token, http.StatusOK, "")
}

func (a *App) newProductHandler(w http.ResponseWriter, r *http.Request, _ string) {
	render(w, http.StatusOK, "form", formPage{})
}

func (a *App) editProductHandler(w http.ResponseWriter, r *http.Request, token string) {
	id := model.ID(r.PathValue("id"))
	p, found, err := a.API.FindProduct(r.Context(), token, id)
	if apiclient.IsUnauthorized(err) {
		a.expireSession(w, r)
		return
	}
	if err != nil {
		a.renderProducts(w, r, token, statusFor(err), err.Error())
		return
	}
	if !found {
		a.renderProducts(w, r, token, http.StatusNotFound, "Product not found")
		return
	}
	render(w, http.StatusOK, "form", formPage{Form: model.FormFromProduct(p)})
}

func readForm(r *http.Request) (model.ProductForm, error) {
	if err := r.ParseForm(); err != nil {
		return model.ProductForm{}, err
	}
	return model.ProductForm{
		ID:          r.PathValue("id"),
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
		Price:       r.PostFormValue("price"),
		Stock:       r.PostFormValue("stock"),
	}, nil
}

// saveProductHandler serves both create (POST /products) and update (POST /products/{id}).
func (a *App) saveProductHandler(w http.ResponseWriter, r *http.Request, token string) {
	form, err := readForm(r)
	if err != nil {
		render(w, http.StatusBadRequest, "form", formPage{Error: "Invalid form submission"})
		return
	}
	if a.closing.Load() {
		render(w, http.StatusServiceUnavailable, "form", formPage{Form: form, Error: msgShuttingDown})
		return
	}
	p, err := form.Parse()
	if err == nil {
		if form.IsEdit() {
			err = a.API.UpdateProduct(r.Context(), token, p)
		} else {
			err = a.API.CreateProduct(r.Context(), token, p)
		}
	}
	if apiclient.IsUnauthorized(err) {
		a.expireSession(w, r)
		return
	}
	if err != nil {
		if !errors.Is(err, model.ErrValidation) {
			a.stats.mutationFailures.Add(1)
		}
		obs.Logger.Info("product_save_failed", "product_id", form.ID, "error", err, "request_id", obs.RequestIDFromContext(r.Context()))
		render(w, statusFor(err), "form", formPage{Form: form, Error: err.Error()})
		return
	}
	a.stats.mutations.Add(1)
	obs.Logger.Info("product_saved", "product_id", form.ID, "edit", form.IsEdit(), "request_id", obs.RequestIDFromContext(r.Context()))
	http.Redirect(w, r, "/products", http.StatusSeeOther)
}

func (a *App) deleteProductHandler(w http.ResponseWriter, r *http.Request, token string) {
	if a.closing.Load() {
		a.renderProducts(w, r, token, http.StatusServiceUnavailable, msgShuttingDown)
		return
	}
	id := model.ID(r.PathValue("id"))
	err := a.API.DeleteProduct(r.Context(), token, id)
	if apiclient.IsUnauthorized(err) {
		a.expireSession(w, r)
		return
	}
	if err != nil {
		a.stats.mutationFailures.Add(1)
		obs.Logger.Info("product_delete_failed", "product_id", id, "error", err, "request_id", obs.RequestIDFromContext(r.Context()))
		a.renderProducts(w, r, token, statusFor(err), err.Error())
		return
	}
	a.stats.mutations.Add(1)
	obs.Logger.Info("product_deleted", "product_id", id, "request_id", obs.RequestIDFromContext(r.Context()))
	http.Redirect(w, r, "/products", http.StatusSeeOther)
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	if a.closing.Load() {
		WriteJSONError(w, http.StatusServiceUnavailable, "shutting_down", "")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (a *App) metricsHandler(w http.ResponseWriter, r *http.Request) {
	m := map[string]any{
		"requests":          a.stats.requests.Load(),
		"logins":            a.stats.logins.Load(),
		"login_failures":    a.stats.loginFailures.Load(),
		"mutations":         a.stats.mutations.Load(),
		"mutation_failures": a.stats.mutationFailures.Load(),
		"sessions_expired":  a.stats.sessionsExpired.Load(),
		"uptime_sec":        time.Since(a.started).Seconds(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(m)
}
