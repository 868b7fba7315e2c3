package render

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ParsesEmbeddedPages(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	for _, page := range []string{"shop_list", "product_detail", "cart", "tag_profile", "tag_unassigned", "admin_orders", "vendor_profile"} {
		assert.True(t, r.Has(page), "missing page %s", page)
	}
	assert.False(t, r.Has("layout"))
}

func TestHTML_RendersWithLayoutAndFuncs(t *testing.T) {
	fsys := fstest.MapFS{
		"t/layout.html": {Data: []byte(`<title>{{block "title" .}}x{{end}}</title>{{block "content" .}}{{end}}`)},
		"t/page.html":   {Data: []byte(`{{define "title"}}Sayfa{{end}}{{define "content"}}{{money .}}{{end}}`)},
	}
	r, err := NewFromFS(fsys, "t")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r.HTML(rec, http.StatusOK, "page", int64(150050))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "<title>Sayfa</title>"), body)
	assert.Contains(t, body, "1.500,50 ₺")
}

func TestHTML_UnknownPage(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r.HTML(rec, http.StatusOK, "nope", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHTML_ExecutionErrorDoesNotLeakPartialBody(t *testing.T) {
	fsys := fstest.MapFS{
		"t/layout.html": {Data: []byte(`before {{block "content" .}}{{end}}`)},
		"t/bad.html":    {Data: []byte(`{{define "content"}}{{.Missing.Field}}{{end}}`)},
	}
	r, err := NewFromFS(fsys, "t")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r.HTML(rec, http.StatusOK, "bad", struct{}{})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "before")
}
