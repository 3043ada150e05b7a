// Package openfoodfacts is a minimal client for the Open Food Facts
// read API, which serves crowd-sourced nutrition data per barcode.
package openfoodfacts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/macrolog/backend/internal/models"
	"github.com/macrolog/backend/internal/numutil"
)

// ErrProductNotFound means the barcode is unknown to Open Food Facts.
var ErrProductNotFound = errors.New("product not found")

// Client calls the Open Food Facts API. Requests carry a descriptive
// User-Agent per the API's fair-use policy.
type Client struct {
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client
}

// NewClient creates a new Open Food Facts client
func NewClient(baseURL, userAgent string) *Client {
	return &Client{
		BaseURL:    baseURL,
		UserAgent:  userAgent,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// productResponse is the subset of the v2 product payload we read.
// Nutriment values arrive as numbers or strings depending on the
// contributor, so they stay loosely typed until coerced.
type productResponse struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Product struct {
		Name        string `json:"product_name"`
		Brands      string `json:"brands"`
		ServingSize string `json:"serving_size"`
		Nutriments  struct {
			Proteins   any `json:"proteins_100g"`
			EnergyKcal any `json:"energy-kcal_100g"`
			Carbs      any `json:"carbohydrates_100g"`
			Fat        any `json:"fat_100g"`
		} `json:"nutriments"`
	} `json:"product"`
}

// FetchProduct retrieves macros for a barcode, per 100g.
func (c *Client) FetchProduct(ctx context.Context, barcode string) (*models.FoodProduct, error) {
	url := fmt.Sprintf("%s/api/v2/product/%s.json", c.BaseURL, barcode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openfoodfacts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrProductNotFound
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("openfoodfacts error (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed productResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if parsed.Status != 1 {
		return nil, ErrProductNotFound
	}

	n := parsed.Product.Nutriments
	return &models.FoodProduct{
		Barcode:     barcode,
		Name:        parsed.Product.Name,
		Brand:       parsed.Product.Brands,
		Protein:     numutil.SafeNumber(n.Proteins, 0),
		Calories:    numutil.SafeNumber(n.EnergyKcal, 0),
		Carbs:       numutil.SafeNumber(n.Carbs, 0),
		Fat:         numutil.SafeNumber(n.Fat, 0),
		ServingSize: parsed.Product.ServingSize,
		FetchedAt:   time.Now().UTC(),
	}, nil
}
