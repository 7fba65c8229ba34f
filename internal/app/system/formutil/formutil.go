// Package formutil decodes form submissions into request structs.
//
// Entity forms arrive either as JSON (from the SPA) or as classic
// url-encoded / multipart posts. Both land in the same struct so the
// handler validates and echoes one value:
//
//	type propertyForm struct {
//		Title string       `form:"title" json:"title" validate:"notblank"`
//		Price formutil.Num `form:"price" json:"price" validate:"omitempty,numeric"`
//	}
//
//	var f propertyForm
//	if err := formutil.Decode(r, &f); err != nil { ... 400 ... }
package formutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"reflect"
	"strconv"
	"strings"
)

// MaxBody caps a form body.
const MaxBody = 1 << 20

// ErrBadBody is returned for bodies that cannot be decoded.
var ErrBadBody = errors.New("invalid request body")

// Num is a numeric form value kept as text so a bad entry can be echoed
// back unchanged. JSON numbers, strings and null all decode into it.
type Num string

func (n *Num) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch {
	case s == "null":
		*n = ""
	case strings.HasPrefix(s, `"`):
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*n = Num(strings.TrimSpace(str))
	default:
		var num json.Number
		if err := json.Unmarshal(b, &num); err != nil {
			return err
		}
		*n = Num(num.String())
	}
	return nil
}

// Float parses n. An empty value is nil.
func (n Num) Float() (*float64, error) {
	s := strings.TrimSpace(string(n))
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Int parses n, falling back to def when empty or invalid.
func (n Num) Int(def int) int {
	i, err := strconv.Atoi(strings.TrimSpace(string(n)))
	if err != nil {
		return def
	}
	return i
}

// IsJSON reports whether the request body is JSON.
func IsJSON(r *http.Request) bool {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mt == "application/json"
}

// Decode fills dst (a pointer to struct) from the request body. JSON
// bodies use json tags; form bodies fill string, Num and bool fields by
// their form tag.
func Decode(r *http.Request, dst any) error {
	if r.Body == nil {
		return ErrBadBody
	}
	if IsJSON(r) {
		dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, MaxBody))
		if err := dec.Decode(dst); err != nil {
			return fmt.Errorf("%w: %v", ErrBadBody, err)
		}
		return nil
	}

	r.Body = http.MaxBytesReader(nil, r.Body, MaxBody)
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("%w: %v", ErrBadBody, err)
	}

	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("formutil: dst must be a pointer to struct, got %T", dst)
	}
	rv = rv.Elem()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		name := strings.SplitN(sf.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" || !sf.IsExported() {
			continue
		}
		if _, ok := r.PostForm[name]; !ok {
			continue
		}
		val := strings.TrimSpace(r.PostForm.Get(name))
		fv := rv.Field(i)
		switch fv.Kind() {
		case reflect.String:
			fv.SetString(val)
		case reflect.Bool:
			fv.SetBool(Checked(val))
		}
	}
	return nil
}

// Checked interprets a checkbox value.
func Checked(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}
