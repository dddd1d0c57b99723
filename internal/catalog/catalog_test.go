package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ginjaninja78/sales-analytics/internal/types"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newCatalogServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/products", handler)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func intPtr(i int) *int         { return &i }
func strPtr(s string) *string   { return &s }
func fltPtr(f float64) *float64 { return &f }

func TestHTTPSource_FetchProducts(t *testing.T) {
	var gotLimit string
	srv := newCatalogServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"products": [
				{"id": 1, "title": "Mascara", "category": "beauty", "brand": "Essence", "price": 9.99, "rating": 4.94},
				{"id": "2", "title": "Quoted id"},
				{"id": 3.5, "title": "Fractional id"},
				{"id": 4, "title": "Lamp", "category": "home", "rating": 4}
			],
			"total": 4
		}`))
	})

	result := NewHTTPSource(srv.URL+"/products", time.Second).FetchProducts(context.Background(), 100)

	require.True(t, result.Available())
	assert.Equal(t, "100", gotLimit)
	assert.Empty(t, result.Reason())

	products := result.Products()
	require.Len(t, products, 4)
	require.NotNil(t, products[0].ID)
	assert.Equal(t, 1, *products[0].ID)
	assert.Equal(t, "Essence", *products[0].Brand)
	assert.Equal(t, 9.99, *products[0].Price)
	assert.Nil(t, products[1].ID)
	assert.Nil(t, products[2].ID)
	assert.Nil(t, products[3].Brand)
	assert.Equal(t, 4.0, *products[3].Rating)
}

func TestHTTPSource_Unavailable(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		reason  string
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			reason: "unexpected status 500",
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"products": [`))
			},
			reason: "malformed body",
		},
		{
			name: "array body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`[1, 2, 3]`))
			},
			reason: "malformed body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newCatalogServer(t, tt.handler)

			result := NewHTTPSource(srv.URL+"/products", time.Second).FetchProducts(context.Background(), 10)

			assert.False(t, result.Available())
			assert.Contains(t, result.Reason(), tt.reason)
			assert.Empty(t, result.Products())
		})
	}
}

func TestHTTPSource_Timeout(t *testing.T) {
	srv := newCatalogServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	result := NewHTTPSource(srv.URL+"/products", 50*time.Millisecond).FetchProducts(context.Background(), 10)

	assert.False(t, result.Available())
	assert.Contains(t, result.Reason(), "request failed")
}

func TestHTTPSource_EmptyBody(t *testing.T) {
	srv := newCatalogServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"total": 0}`))
	})

	result := NewHTTPSource(srv.URL+"/products", time.Second).FetchProducts(context.Background(), 10)

	assert.True(t, result.Available())
	assert.Empty(t, result.Products())
}

func TestHTTPSource_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	result := NewHTTPSource(url, time.Second).FetchProducts(context.Background(), 10)
	assert.False(t, result.Available())
}

func TestNewHTTPSource_Defaults(t *testing.T) {
	s := NewHTTPSource("", 0)
	assert.Equal(t, DefaultBaseURL, s.baseURL)
	assert.Equal(t, DefaultTimeout, s.client.Timeout)
}

func TestNoneSource(t *testing.T) {
	result := NoneSource{}.FetchProducts(context.Background(), 10)
	assert.False(t, result.Available())
	assert.NotEmpty(t, result.Reason())
}

func TestOk_NilProducts(t *testing.T) {
	result := Ok(nil)
	assert.True(t, result.Available())
	assert.NotNil(t, result.Products())
}

func TestBuildMapping(t *testing.T) {
	products := []types.Product{
		{ID: intPtr(100), Category: strPtr("Toys"), Brand: strPtr("Acme"), Rating: fltPtr(4.5)},
		{ID: nil, Category: strPtr("Ignored")},
		{ID: intPtr(7), Category: strPtr("First")},
		{ID: intPtr(7), Category: strPtr("Second")},
	}

	mapping := BuildMapping(products)

	require.Len(t, mapping, 2)
	assert.Equal(t, "Toys", *mapping[100].Category)
	assert.Equal(t, "Acme", *mapping[100].Brand)
	assert.Equal(t, 4.5, *mapping[100].Rating)
	assert.Equal(t, "Second", *mapping[7].Category)
}

func writeCatalogWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestXLSXSource_FetchProducts(t *testing.T) {
	path := writeCatalogWorkbook(t, [][]any{
		{"Rating", "ID", "Title", "Category", "Brand", "Price"},
		{"4.5", 100, "Robot", "Toys", "Acme", "19.99"},
		{},
		{"", "abc", "No id", "", "", ""},
		{"3", 7, "Kite", "Outdoor", "", "5"},
	})

	result := NewXLSXSource(path).FetchProducts(context.Background(), 0)

	require.True(t, result.Available())
	products := result.Products()
	require.Len(t, products, 3)

	assert.Equal(t, 100, *products[0].ID)
	assert.Equal(t, "Robot", *products[0].Title)
	assert.Equal(t, 4.5, *products[0].Rating)
	assert.Equal(t, 19.99, *products[0].Price)

	assert.Nil(t, products[1].ID)
	assert.Nil(t, products[1].Category)

	assert.Equal(t, 7, *products[2].ID)
	assert.Nil(t, products[2].Brand)

	mapping := BuildMapping(products)
	assert.Len(t, mapping, 2)
}

func TestXLSXSource_Limit(t *testing.T) {
	path := writeCatalogWorkbook(t, [][]any{
		{"id", "title"},
		{1, "One"},
		{2, "Two"},
		{3, "Three"},
	})

	result := NewXLSXSource(path).FetchProducts(context.Background(), 2)
	require.True(t, result.Available())
	assert.Len(t, result.Products(), 2)
}

func TestXLSXSource_Unavailable(t *testing.T) {
	missing := NewXLSXSource(filepath.Join(t.TempDir(), "nope.xlsx")).FetchProducts(context.Background(), 10)
	assert.False(t, missing.Available())

	noID := writeCatalogWorkbook(t, [][]any{{"title", "brand"}, {"Robot", "Acme"}})
	result := NewXLSXSource(noID).FetchProducts(context.Background(), 10)
	assert.False(t, result.Available())
	assert.Contains(t, result.Reason(), "no id column")

	unset := NewXLSXSource("").FetchProducts(context.Background(), 10)
	assert.False(t, unset.Available())
}
