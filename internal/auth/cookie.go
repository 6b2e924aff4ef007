package auth

import (
	"context"
	"net/http"
)

// CookieOptions control the attributes of the token cookie.
type CookieOptions struct {
	Secure bool
	MaxAge int
}

// CookieStore is a per-request TokenStore backed by the authToken cookie.
type CookieStore struct {
	w    http.ResponseWriter
	r    *http.Request
	opts CookieOptions
	// token reflects writes made during this request.
	token   string
	written bool
}

func NewCookieStore(w http.ResponseWriter, r *http.Request, opts CookieOptions) *CookieStore {
	return &CookieStore{w: w, r: r, opts: opts}
}

func (c *CookieStore) Token(context.Context) (string, error) {
	if c.written {
		return c.token, nil
	}
	ck, err := c.r.Cookie(TokenKey)
	if err != nil {
		return "", nil
	}
	return ck.Value, nil
}

func (c *CookieStore) SetToken(_ context.Context, token string) error {
	http.SetCookie(c.w, &http.Cookie{
		Name:     TokenKey,
		Value:    token,
		Path:     "/",
		MaxAge:   c.opts.MaxAge,
		HttpOnly: true,
		Secure:   c.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	c.token, c.written = token, true
	return nil
}

func (c *CookieStore) RemoveToken(context.Context) error {
	http.SetCookie(c.w, &http.Cookie{
		Name:     TokenKey,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	c.token, c.written = "", true
	return nil
}
