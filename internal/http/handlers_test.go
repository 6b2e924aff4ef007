package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/product-console/internal/apiclient"
	"github.com/fairyhunter13/product-console/internal/auth"
	"github.com/fairyhunter13/product-console/internal/config"
	"github.com/fairyhunter13/product-console/internal/model"
	"github.com/fairyhunter13/product-console/internal/obs"
)

// fakeAPI records calls and returns canned results.
type fakeAPI struct {
	mu        sync.Mutex
	products  []model.Product
	loginErr  error
	listErr   error
	mutateErr error
	calls     []string
	lastToken string
	saved     model.Product
}

func (f *fakeAPI) record(call, token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	f.lastToken = token
}

func (f *fakeAPI) Login(_ context.Context, cred model.Credentials) (string, error) {
	f.record("login", "")
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return "tok-" + cred.Username, nil
}

func (f *fakeAPI) ListProducts(_ context.Context, token string) ([]model.Product, error) {
	f.record("list", token)
	return f.products, f.listErr
}

func (f *fakeAPI) FindProduct(ctx context.Context, token string, id model.ID) (model.Product, bool, error) {
	ps, err := f.ListProducts(ctx, token)
	if err != nil {
		return model.Product{}, false, err
	}
	for _, p := range ps {
		if p.ID == id {
			return p, true, nil
		}
	}
	return model.Product{}, false, nil
}

func (f *fakeAPI) CreateProduct(_ context.Context, token string, p model.Product) error {
	f.record("create", token)
	f.saved = p
	return f.mutateErr
}

func (f *fakeAPI) UpdateProduct(_ context.Context, token string, p model.Product) error {
	f.record("update", token)
	f.saved = p
	return f.mutateErr
}

func (f *fakeAPI) DeleteProduct(_ context.Context, token string, id model.ID) error {
	f.record("delete", token)
	f.saved = model.Product{ID: id}
	return f.mutateErr
}

func setupApp(t *testing.T, api ProductAPI) (*App, http.Handler) {
	t.Helper()
	obs.InitLogger()
	cfg := config.Load()
	cfg.APIBaseURL = "http://127.0.0.1:1"
	cfg.CookieMaxAge = 60
	app := NewApp(cfg, api)
	h, err := NewRouter(app)
	require.NoError(t, err)
	return app, h
}

func serve(h http.Handler, method, target, token string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.TokenKey, Value: token})
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func tokenCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.TokenKey {
			return c
		}
	}
	return nil
}

func TestLoginPageServed(t *testing.T) {
	_, h := setupApp(t, &fakeAPI{})
	rr := serve(h, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `name="username"`)
	assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))
}

func TestLoginPageRedirectsWhenAuthenticated(t *testing.T) {
	_, h := setupApp(t, &fakeAPI{})
	rr := serve(h, http.MethodGet, "/", "tok", nil)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/products", rr.Header().Get("Location"))
}

func TestLoginStoresTokenAndNavigates(t *testing.T) {
	_, h := setupApp(t, &fakeAPI{})
	rr := serve(h, http.MethodPost, "/login", "", url.Values{"username": {"admin"}, "password": {"pw"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/products", rr.Header().Get("Location"))
	ck := tokenCookie(rr)
	require.NotNil(t, ck)
	assert.Equal(t, "tok-admin", ck.Value)
	assert.True(t, ck.HttpOnly)
}

func TestLoginFailureShowsInlineError(t *testing.T) {
	api := &fakeAPI{loginErr: &apiclient.APIError{Op: "login", Status: http.StatusUnauthorized, Message: "Invalid credentials"}}
	_, h := setupApp(t, api)
	rr := serve(h, http.MethodPost, "/login", "", url.Values{"username": {"admin"}, "password": {"bad"}})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid credentials")
	assert.Contains(t, rr.Body.String(), `value="admin"`)
	assert.Nil(t, tokenCookie(rr))
}

func TestLoginRequiresFields(t *testing.T) {
	api := &fakeAPI{}
	_, h := setupApp(t, api)
	rr := serve(h, http.MethodPost, "/login", "", url.Values{"username": {"admin"}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, api.calls)
}

func TestProductsRequireToken(t *testing.T) {
	_, h := setupApp(t, &fakeAPI{})
	for _, path := range []string{"/products", "/products/new", "/products/1/edit"} {
		rr := serve(h, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusSeeOther, rr.Code, path)
		assert.Equal(t, "/", rr.Header().Get("Location"), path)
	}
}

func TestProductsListRendered(t *testing.T) {
	api := &fakeAPI{products: []model.Product{{ID: "1", Name: "Mug <b>", Price: 9.5, Stock: 3}}}
	_, h := setupApp(t, api)
	rr := serve(h, http.MethodGet, "/products", "tok", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Mug &lt;b&gt;")
	assert.Contains(t, body, "$9.50")
	assert.Contains(t, body, "/products/1/edit")
	assert.Equal(t, "tok", api.lastToken)
}

func TestProductsEmptyState(t *testing.T) {
	_, h := setupApp(t, &fakeAPI{})
	rr := serve(h, http.MethodGet, "/products", "tok", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "No products found. Add your first product!")
}

func TestProductsFetchErrorInline(t *testing.T) {
	api := &fakeAPI{listErr: &apiclient.APIError{Status: http.StatusInternalServerError, Message: "Failed to fetch products"}}
	_, h := setupApp(t, api)
	rr := serve(h, http.MethodGet, "/products", "tok", nil)
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, rr.Body.String(), "Failed to fetch products")
}

func TestUnauthorizedListExpiresSession(t *testing.T) {
	api := &fakeAPI{listErr: &apiclient.APIError{Status: http.StatusUnauthorized, Message: "Failed to fetch products"}}
	app, h := setupApp(t, api)
	rr := serve(h, http.MethodGet, "/products", "stale", nil)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
	ck := tokenCookie(rr)
	require.NotNil(t, ck)
	assert.Equal(t, -1, ck.MaxAge)
	assert.Equal(t, uint64(1), app.stats.sessionsExpired.Load())
}

func TestCreateProductRedirectsToList(t *testing.T) {
	api := &fakeAPI{}
	_, h := setupApp(t, api)
	rr := serve(h, http.MethodPost, "/products", "tok", url.Values{
		"name": {"Pen"}, "description": {"blue"}, "price": {"1.25"}, "stock": {"4"},
	})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/products", rr.Header().Get("Location"))
	assert.Equal(t, []string{"create"}, api.calls)
	assert.Equal(t, model.Product{Name: "Pen", Description: "blue", Price: 1.25, Stock: 4}, api.saved)
}

func TestCreateProductValidationError(t *testing.T) {
	api := &fakeAPI{}
	_, h := setupApp(t, api)
	rr := serve(h, http.MethodPost, "/products", "tok", url.Values{"name": {"Pen"}, "price": {"abc"}, "stock": {"1"}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "price must be a number")
	assert.Contains(t, rr.Body.String(), "Add New Product")
	assert.Empty(t, api.calls)
}

func TestCreateProductRejectsNonFinitePrice(t *testing.T) {
	for _, price := range []string{"NaN", "Inf", "-Inf"} {
		api := &fakeAPI{}
		_, h := setupApp(t, api)
		rr := serve(h, http.MethodPost, "/products", "tok", url.Values{"name": {"Pen"}, "price": {price}, "stock": {"1"}})
		assert.Equal(t, http.StatusBadRequest, rr.Code, price)
		assert.Contains(t, rr.Body.String(), "price must be a finite number", price)
		assert.Empty(t, api.calls, price)
	}
}

func TestProductsListShowsLooseValues(t *testing.T) {
	var ps []model.Product
	require.NoError(t, json.Unmarshal([]byte(`[{"id":1,"name":"a","price":"12.50","stock":3.0},{"id":2,"name":"b","price":"ask","stock":"few"}]`), &ps))
	_, h := setupApp(t, &fakeAPI{products: ps})
	rr := serve(h, http.MethodGet, "/products", "tok", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "<td>$12.50</td>")
	assert.Contains(t, body, "<td>3</td>")
	assert.Contains(t, body, "<td>$ask</td>")
	assert.Contains(t, body, "<td>few</td>")
}

func TestCreateProductAPIError(t *testing.T) {
	api := &fakeAPI{mutateErr: &apiclient.APIError{Status: http.StatusInternalServerError, Message: "Failed to create product"}}
	app, h := setupApp(t, api)
	rr := serve(h, http.MethodPost, "/products", "tok", url.Values{"name": {"Pen"}, "price": {"1"}, "stock": {"1"}})
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, rr.Body.String(), "Failed to create product")
	assert.Equal(t, uint64(1), app.stats.mutationFailures.Load())
}

func TestEditFormPrefilled(t *testing.T) {
	api := &fakeAPI{products: []model.Product{{ID: "7", Name: "Lamp", Price: 20, Stock: 2}}}
	_, h := setupApp(t, api)
	rr := serve(h, http.MethodGet, "/products/7/edit", "tok", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Edit Product")
	assert.Contains(t, body, `value="Lamp"`)
	assert.Contains(t, body, `action="/products/7"`)
	assert.Contains(t, body, "Update")

	rr = serve(h, http.MethodGet, "/products/99/edit", "tok", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUpdateProduct(t *testing.T) {
	api := &fakeAPI{}
	_, h := setupApp(t, api)
	rr := serve(h, http.MethodPost, "/products/7", "tok", url.Values{"name": {"Lamp"}, "price": {"21"}, "stock": {"0"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, []string{"update"}, api.calls)
	assert.Equal(t, model.ID("7"), api.saved.ID)
}

func TestDeleteProduct(t *testing.T) {
	api := &fakeAPI{}
	app, h := setupApp(t, api)
	rr := serve(h, http.MethodPost, "/products/3/delete", "tok", nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, model.ID("3"), api.saved.ID)
	assert.Equal(t, uint64(1), app.stats.mutations.Load())
}

func TestDeleteProductErrorInline(t *testing.T) {
	api := &fakeAPI{mutateErr: &apiclient.APIError{Status: http.StatusNotFound, Message: "Failed to delete product"}}
	_, h := setupApp(t, api)
	rr := serve(h, http.MethodPost, "/products/3/delete", "tok", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Failed to delete product")
}

func TestLogoutClearsToken(t *testing.T) {
	_, h := setupApp(t, &fakeAPI{})
	rr := serve(h, http.MethodPost, "/logout", "tok", nil)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
	ck := tokenCookie(rr)
	require.NotNil(t, ck)
	assert.Equal(t, -1, ck.MaxAge)
}

func TestHealthzOK(t *testing.T) {
	_, h := setupApp(t, &fakeAPI{})
	rr := serve(h, http.MethodGet, "/healthz", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestShutdownBehavior(t *testing.T) {
	api := &fakeAPI{products: []model.Product{{ID: "1", Name: "Mug", Price: 1, Stock: 1}}}
	app, h := setupApp(t, api)
	app.StartShutdown()
	if rr := serve(h, http.MethodGet, "/healthz", "", nil); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}

	rr := serve(h, http.MethodPost, "/products", "tok", url.Values{"name": {"x"}, "price": {"1"}, "stock": {"1"}})
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), "shutting down")
	assert.Contains(t, rr.Body.String(), `value="x"`)

	rr = serve(h, http.MethodPost, "/products/1/delete", "tok", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), "shutting down")

	api.mu.Lock()
	defer api.mu.Unlock()
	assert.NotContains(t, api.calls, "create")
	assert.NotContains(t, api.calls, "delete")
}

func TestMetricsHandler(t *testing.T) {
	_, h := setupApp(t, &fakeAPI{})
	serve(h, http.MethodPost, "/login", "", url.Values{"username": {"a"}, "password": {"b"}})
	rr := serve(h, http.MethodGet, "/debug/metrics", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var m map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &m))
	assert.Equal(t, float64(1), m["logins"])
	assert.Equal(t, float64(2), m["requests"])
	_, ok := m["uptime_sec"]
	assert.True(t, ok)
}
