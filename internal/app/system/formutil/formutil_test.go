package formutil

import (
	"errors"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type propertyForm struct {
	Title    string `form:"title" json:"title"`
	Price    Num    `form:"price" json:"price"`
	Featured bool   `form:"featured" json:"featured"`
	Ignored  string `json:"ignored"`
}

func TestDecode_Form(t *testing.T) {
	body := url.Values{"title": {"  Lake House "}, "price": {"4500000"}, "featured": {"on"}, "ignored": {"x"}}
	req := httptest.NewRequest("POST", "/forms/properties", strings.NewReader(body.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var f propertyForm
	require.NoError(t, Decode(req, &f))
	assert.Equal(t, "Lake House", f.Title)
	assert.Equal(t, Num("4500000"), f.Price)
	assert.True(t, f.Featured)
	assert.Empty(t, f.Ignored, "fields without a form tag are not filled")
}

func TestDecode_JSONAcceptsNumbersAndStrings(t *testing.T) {
	for _, raw := range []string{`{"title":"A","price":4500000}`, `{"title":"A","price":"4500000"}`} {
		req := httptest.NewRequest("POST", "/forms/properties", strings.NewReader(raw))
		req.Header.Set("Content-Type", "application/json; charset=utf-8")

		var f propertyForm
		require.NoError(t, Decode(req, &f), raw)
		p, err := f.Price.Float()
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, 4500000.0, *p)
	}
}

func TestDecode_BadJSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/x", strings.NewReader(`{"title":`))
	req.Header.Set("Content-Type", "application/json")
	var f propertyForm
	err := Decode(req, &f)
	assert.True(t, errors.Is(err, ErrBadBody))
}

func TestNum(t *testing.T) {
	p, err := Num("").Float()
	assert.NoError(t, err)
	assert.Nil(t, p)

	_, err = Num("abc").Float()
	assert.Error(t, err)

	assert.Equal(t, 48, Num("48").Int(24))
	assert.Equal(t, 24, Num("").Int(24))
	assert.Equal(t, 24, Num("x").Int(24))
}
