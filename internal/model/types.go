// Package model defines domain types shared by the console, the CLI and the mock API.
package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrValidation marks input rejected before any request is sent.
var ErrValidation = errors.New("validation error")

// ID is a product identifier. Backends send numeric or string ids; both decode into ID.
type ID string

// UnmarshalJSON accepts a JSON string or number.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("product id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Product is a record managed through the product API.
type Product struct {
	ID          ID      `json:"id,omitempty"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int64   `json:"stock"`

	// rawPrice and rawStock keep values the backend did not send as plain
	// JSON numbers, so they can be shown as received.
	rawPrice string
	rawStock string
}

// UnmarshalJSON decodes price and stock leniently. A string or a
// non-integral stock never fails the decode; the received text is kept.
func (p *Product) UnmarshalJSON(b []byte) error {
	type plain Product
	aux := struct {
		*plain
		Price json.RawMessage `json:"price"`
		Stock json.RawMessage `json:"stock"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	p.Price, p.rawPrice = lenientNumber(aux.Price)
	p.Stock, p.rawStock = lenientInt(aux.Stock)
	return nil
}

// lenientNumber returns the numeric value of raw and, unless raw is a plain
// JSON number, its text.
func lenientNumber(raw json.RawMessage) (float64, string) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, string(raw)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || !finite(v) {
			return 0, s
		}
		return v, s
	}
	v, err := strconv.ParseFloat(string(raw), 64)
	if err != nil || !finite(v) {
		return 0, string(raw)
	}
	return v, ""
}

func lenientInt(raw json.RawMessage) (int64, string) {
	raw = bytes.TrimSpace(raw)
	if n, err := strconv.ParseInt(string(raw), 10, 64); err == nil {
		return n, ""
	}
	v, text := lenientNumber(raw)
	if v != math.Trunc(v) || v > math.MaxInt64 || v < math.MinInt64 {
		if text == "" {
			text = string(raw)
		}
		return 0, text
	}
	return int64(v), text
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// NumericFields reports whether price and stock arrived as JSON numbers
// with an integral stock.
func (p Product) NumericFields() bool { return p.rawPrice == "" && p.rawStock == "" }

// PriceText renders the price for display: two decimals for numbers,
// the received text otherwise.
func (p Product) PriceText() string {
	if p.rawPrice != "" {
		return "$" + p.rawPrice
	}
	return FormatPrice(p.Price)
}

// StockText renders the stock for display.
func (p Product) StockText() string {
	if p.rawStock != "" {
		return p.rawStock
	}
	return strconv.FormatInt(p.Stock, 10)
}

// Credentials is the login request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the login response body.
type LoginResponse struct {
	Token string `json:"token"`
}

// ProductForm holds the raw text of the add/edit form.
type ProductForm struct {
	ID          string
	Name        string
	Description string
	Price       string
	Stock       string
}

// FormFromProduct pre-fills a form for editing.
func FormFromProduct(p Product) ProductForm {
	f := ProductForm{
		ID:          string(p.ID),
		Name:        p.Name,
		Description: p.Description,
		Price:       strconv.FormatFloat(p.Price, 'f', -1, 64),
		Stock:       p.StockText(),
	}
	if p.rawPrice != "" {
		f.Price = p.rawPrice
	}
	return f
}

// IsEdit reports whether the form targets an existing product.
func (f ProductForm) IsEdit() bool { return f.ID != "" }

// Parse converts the form into a Product.
func (f ProductForm) Parse() (Product, error) {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return Product{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(f.Price), 64)
	if err != nil {
		return Product{}, fmt.Errorf("%w: price must be a number", ErrValidation)
	}
	if !finite(price) {
		return Product{}, fmt.Errorf("%w: price must be a finite number", ErrValidation)
	}
	if price < 0 {
		return Product{}, fmt.Errorf("%w: price must be >= 0", ErrValidation)
	}
	stock, err := strconv.ParseInt(strings.TrimSpace(f.Stock), 10, 64)
	if err != nil {
		return Product{}, fmt.Errorf("%w: stock must be a whole number", ErrValidation)
	}
	if stock < 0 {
		return Product{}, fmt.Errorf("%w: stock must be >= 0", ErrValidation)
	}
	return Product{
		ID:          ID(strings.TrimSpace(f.ID)),
		Name:        name,
		Description: f.Description,
		Price:       price,
		Stock:       stock,
	}, nil
}

// FormatPrice renders a price the way the product table shows it.
func FormatPrice(p float64) string {
	return "$" + strconv.FormatFloat(p, 'f', 2, 64)
}
