package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ginjaninja78/sales-analytics/internal/logger"
	"github.com/ginjaninja78/sales-analytics/internal/types"
	"github.com/hashicorp/go-cleanhttp"
)

const (
	// DefaultBaseURL is the public products endpoint.
	DefaultBaseURL = "https://dummyjson.com/products"

	// DefaultTimeout bounds the single catalog request.
	DefaultTimeout = 15 * time.Second

	// DefaultLimit is how many products are requested.
	DefaultLimit = 100

	// maxBodyBytes caps how much of the response is read.
	maxBodyBytes = 16 << 20
)

// HTTPSource fetches products from a JSON endpoint shaped like
// {"products": [{"id": 1, "title": "...", ...}, ...]}.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSource creates a source for baseURL. The whole request, body
// included, must finish within timeout.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client := cleanhttp.DefaultClient()
	client.Timeout = timeout

	return &HTTPSource{baseURL: baseURL, client: client}
}

type productsResponse struct {
	Products []rawProduct `json:"products"`
}

type rawProduct struct {
	ID       json.RawMessage `json:"id"`
	Title    *string         `json:"title"`
	Category *string         `json:"category"`
	Brand    *string         `json:"brand"`
	Price    any             `json:"price"`
	Rating   any             `json:"rating"`
}

// FetchProducts issues one GET request with a limit query parameter.
// Transport errors, non-2xx statuses and malformed bodies all yield
// Unavailable.
func (s *HTTPSource) FetchProducts(ctx context.Context, limit int) Result {
	log := logger.FromContext(ctx)

	endpoint, err := url.Parse(s.baseURL)
	if err != nil {
		return Unavailable(fmt.Sprintf("invalid catalog url: %v", err))
	}
	query := endpoint.Query()
	query.Set("limit", strconv.Itoa(limit))
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return Unavailable(fmt.Sprintf("failed to build request: %v", err))
	}
	req.Header.Set("Accept", "application/json")

	log.Debug().Str("url", endpoint.String()).Msg("Fetching product catalog")

	resp, err := s.client.Do(req)
	if err != nil {
		return Unavailable(fmt.Sprintf("request failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Unavailable(fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Unavailable(fmt.Sprintf("failed to read body: %v", err))
	}

	products, err := decodeProducts(body)
	if err != nil {
		return Unavailable(fmt.Sprintf("malformed body: %v", err))
	}

	log.Debug().Int("products", len(products)).Msg("Fetched product catalog")
	return Ok(products)
}

// decodeProducts converts a response body into products. A null body or a
// missing "products" key is an empty list, not an error.
func decodeProducts(body []byte) ([]types.Product, error) {
	var payload *productsResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	if payload == nil {
		return []types.Product{}, nil
	}

	products := make([]types.Product, 0, len(payload.Products))
	for _, raw := range payload.Products {
		products = append(products, types.Product{
			ID:       integerID(raw.ID),
			Title:    raw.Title,
			Category: raw.Category,
			Brand:    raw.Brand,
			Price:    asFloat(raw.Price),
			Rating:   asFloat(raw.Rating),
		})
	}
	return products, nil
}

// integerID returns the id only when it is a bare JSON integer.
// Quoted ids and fractional numbers are rejected.
func integerID(raw json.RawMessage) *int {
	if len(raw) == 0 {
		return nil
	}
	id, err := strconv.Atoi(string(raw))
	if err != nil {
		return nil
	}
	return &id
}

func asFloat(v any) *float64 {
	f, ok := v.(float64)
	if !ok {
		return nil
	}
	return &f
}
