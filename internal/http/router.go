package httpapi

import (
	"expvar"
	"net/http"
)

// NewRouter registers HTTP routes and returns the handler with middleware.
func NewRouter(app *App) (http.Handler, error) {
	proxy, err := NewAPIProxy(app.Cfg.APIBaseURL)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", app.loginPageHandler)
	mux.HandleFunc("POST /login", app.loginHandler)
	mux.HandleFunc("POST /logout", app.logoutHandler)
	mux.HandleFunc("GET /products", app.requireToken(app.listProductsHandler))
	mux.HandleFunc("GET /products/new", app.requireToken(app.newProductHandler))
	mux.HandleFunc("POST /products", app.requireToken(app.saveProductHandler))
	mux.HandleFunc("GET /products/{id}/edit", app.requireToken(app.editProductHandler))
	mux.HandleFunc("POST /products/{id}", app.requireToken(app.saveProductHandler))
	mux.HandleFunc("POST /products/{id}/delete", app.requireToken(app.deleteProductHandler))
	mux.Handle("/api/", proxy)
	mux.HandleFunc("GET /healthz", app.healthHandler)
	mux.HandleFunc("GET /debug/metrics", app.metricsHandler)
	mux.Handle("GET /debug/vars", expvar.Handler())
	return WithRequestID(WithLogging(app.countRequests(mux))), nil
}
