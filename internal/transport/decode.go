package transport

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxNameLength matches the width of the name columns.
const MaxNameLength = 80

// Body is a JSON object decoded one level deep, so presence, null and the
// JSON type of every field can be checked.
type Body map[string]json.RawMessage

var ErrInvalidID = errors.New("ID should be an integer")

// FieldError lists every offending field of a request body.
type FieldError struct {
	Missing []string
	Invalid []string
}

func (e *FieldError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid: "+strings.Join(e.Invalid, ", "))
	}
	return "invalid product data (" + strings.Join(parts, "; ") + ")"
}

// present reports whether key was sent with a non-null value.
func (b Body) present(key string) (json.RawMessage, bool) {
	raw, ok := b[key]
	if !ok {
		return nil, false
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, false
	}
	return raw, true
}

func (b Body) sent(key string) bool {
	_, ok := b[key]
	return ok
}

func validName(s string) bool {
	return utf8.RuneCountInString(s) <= MaxNameLength
}

func asString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func asNumber(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || !(raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9')) {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	return f, true
}

// asInteger accepts only integral JSON numbers written without a fraction
// or exponent.
func asInteger(raw json.RawMessage) (int64, bool) {
	if _, ok := asNumber(raw); !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// DecodeLogin fails when either credential is absent or not a string.
func DecodeLogin(b Body) (LoginRequest, bool) {
	var req LoginRequest
	var ok bool

	raw, _ := b.present("username")
	if req.Username, ok = asString(raw); !ok {
		return req, false
	}
	raw, _ = b.present("password")
	if req.Password, ok = asString(raw); !ok {
		return req, false
	}
	return req, true
}

func DecodeCreateProduct(b Body) (CreateProductRequest, error) {
	var (
		req CreateProductRequest
		fe  FieldError
	)

	if raw, ok := b.present("name"); !ok {
		fe.Missing = append(fe.Missing, "name")
	} else if req.Name, ok = asString(raw); !ok || !validName(req.Name) {
		fe.Invalid = append(fe.Invalid, "name")
	}

	if raw, ok := b.present("price"); !ok {
		fe.Missing = append(fe.Missing, "price")
	} else if req.Price, ok = asNumber(raw); !ok {
		fe.Invalid = append(fe.Invalid, "price")
	}

	if b.sent("description") {
		req.DescriptionSet = true
		if raw, ok := b.present("description"); ok {
			s, ok := asString(raw)
			if !ok {
				fe.Invalid = append(fe.Invalid, "description")
			} else {
				req.Description = &s
			}
		}
	}

	if len(fe.Missing) > 0 || len(fe.Invalid) > 0 {
		return req, &fe
	}
	return req, nil
}

// DecodePatchProduct rejects null for name and price; description may be
// set to null.
func DecodePatchProduct(b Body) (PatchProductRequest, error) {
	var (
		req PatchProductRequest
		fe  FieldError
	)

	if b.sent("name") {
		raw, _ := b.present("name")
		if s, ok := asString(raw); ok && validName(s) {
			req.Name = &s
		} else {
			fe.Invalid = append(fe.Invalid, "name")
		}
	}

	if b.sent("price") {
		raw, _ := b.present("price")
		if f, ok := asNumber(raw); ok {
			req.Price = &f
		} else {
			fe.Invalid = append(fe.Invalid, "price")
		}
	}

	if b.sent("description") {
		req.DescriptionSet = true
		if raw, ok := b.present("description"); ok {
			s, ok := asString(raw)
			if !ok {
				fe.Invalid = append(fe.Invalid, "description")
			} else {
				req.Description = &s
			}
		}
	}

	if len(fe.Invalid) > 0 {
		return req, &fe
	}
	return req, nil
}

// DecodeLookup returns ErrInvalidID when id is present but not an integer.
// A non-string name is matched by its JSON text, which finds nothing.
func DecodeLookup(b Body) (LookupRequest, error) {
	var req LookupRequest

	if raw, ok := b.present("id"); ok {
		id, ok := asInteger(raw)
		if !ok {
			return req, ErrInvalidID
		}
		req.HasID, req.ID = true, id
		return req, nil
	}

	if raw, ok := b.present("name"); ok {
		name, ok := asString(raw)
		if !ok {
			name = string(raw)
		}
		req.HasName, req.Name = true, name
	}
	return req, nil
}
