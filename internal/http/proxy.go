package httpapi

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/fairyhunter13/product-console/internal/auth"
	"github.com/fairyhunter13/product-console/internal/obs"
)

// NewAPIProxy forwards /api/* to the product API with the prefix stripped.
// Requests without an Authorization header get the cookie token attached.
func NewAPIProxy(baseURL string) (http.Handler, error) {
	target, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("api base url %q must be absolute", baseURL)
	}
	rp := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.Out.URL.Path = strings.TrimPrefix(pr.In.URL.Path, "/api")
			pr.Out.URL.RawPath = ""
			pr.SetURL(target)
			pr.SetXForwarded()
			if pr.Out.Header.Get("Authorization") == "" {
				if ck, err := pr.In.Cookie(auth.TokenKey); err == nil && ck.Value != "" {
					pr.Out.Header.Set("Authorization", "Bearer "+ck.Value)
				}
			}
			pr.Out.Header.Del("Cookie")
			if id := obs.RequestIDFromContext(pr.In.Context()); id != "" {
				pr.Out.Header.Set("X-Request-Id", id)
			}
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			obs.Logger.Warn("api_proxy_error", "path", r.URL.Path, "error", err, "request_id", obs.RequestIDFromContext(r.Context()))
			WriteJSONError(w, http.StatusBadGateway, "bad_gateway", "product api unreachable")
		},
	}
	return rp, nil
}
