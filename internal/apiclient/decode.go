package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/fairyhunter13/product-console/internal/model"
)

// DecodeProducts accepts the response shapes seen from product backends:
// a bare array, an object with a "products" array, or an object keyed by id
// whose values are products (taken in document order). Anything else is empty.
func DecodeProducts(body []byte) ([]model.Product, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return []model.Product{}, nil
	}
	switch body[0] {
	case '[':
		var ps []model.Product
		if err := json.Unmarshal(body, &ps); err != nil {
			return nil, fmt.Errorf("decode products: %w", err)
		}
		return ps, nil
	case '{':
		return decodeProductObject(body)
	default:
		return []model.Product{}, nil
	}
}

func decodeProductObject(body []byte) ([]model.Product, error) {
	var wrapped struct {
		Products json.RawMessage `json:"products"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	if raw := bytes.TrimSpace(wrapped.Products); len(raw) > 0 && raw[0] == '[' {
		var ps []model.Product
		if err := json.Unmarshal(raw, &ps); err != nil {
			return nil, fmt.Errorf("decode products: %w", err)
		}
		return ps, nil
	}

	values, err := orderedValues(body)
	if err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	if len(values) == 0 || !isObject(values[0]) {
		return []model.Product{}, nil
	}
	ps := make([]model.Product, 0, len(values))
	for _, v := range values {
		var p model.Product
		if !isObject(v) {
			continue
		}
		if err := json.Unmarshal(v, &p); err != nil {
			return nil, fmt.Errorf("decode products: %w", err)
		}
		ps = append(ps, p)
	}
	return ps, nil
}

// orderedValues returns the member values of a JSON object in property
// order: array-index keys ascending, then the other keys as they appear.
// A repeated key keeps its first position and its last value.
func orderedValues(body []byte) ([]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	type member struct {
		key   string
		index uint64
		isIdx bool
		val   json.RawMessage
	}
	var members []member
	pos := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		if i, ok := pos[key]; ok {
			members[i].val = v
			continue
		}
		idx, isIdx := arrayIndex(key)
		pos[key] = len(members)
		members = append(members, member{key: key, index: idx, isIdx: isIdx, val: v})
	}
	sort.SliceStable(members, func(i, j int) bool {
		a, b := members[i], members[j]
		if a.isIdx != b.isIdx {
			return a.isIdx
		}
		return a.isIdx && a.index < b.index
	})
	out := make([]json.RawMessage, len(members))
	for i, m := range members {
		out[i] = m.val
	}
	return out, nil
}

// arrayIndex reports whether key is a canonical array index ("0".."4294967294").
func arrayIndex(key string) (uint64, bool) {
	n, err := strconv.ParseUint(key, 10, 32)
	if err != nil || n == math.MaxUint32 || strconv.FormatUint(n, 10) != key {
		return 0, false
	}
	return n, true
}

func isObject(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)
	return len(v) > 0 && v[0] == '{'
}
