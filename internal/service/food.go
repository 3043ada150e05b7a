package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/macrolog/backend/internal/foodcache"
	"github.com/macrolog/backend/internal/logger"
	"github.com/macrolog/backend/internal/models"
	"github.com/macrolog/backend/internal/provider/openfoodfacts"
)

// Barcode lookup failures the handlers translate into typed API errors.
var (
	ErrInvalidBarcode = errors.New("invalid barcode")
	ErrFoodNotFound   = errors.New("food product not found")
)

// ProductFetcher is the provider surface the food service needs.
type ProductFetcher interface {
	FetchProduct(ctx context.Context, barcode string) (*models.FoodProduct, error)
}

type foodService struct {
	cache    *foodcache.Store
	provider ProductFetcher
}

// NewFoodService creates a new food lookup service. cache may be nil,
// in which case every lookup goes to the provider.
func NewFoodService(cache *foodcache.Store, provider ProductFetcher) FoodService {
	return &foodService{
		cache:    cache,
		provider: provider,
	}
}

func (s *foodService) LookupBarcode(ctx context.Context, barcode string) (*models.FoodProduct, error) {
	if !validBarcode(barcode) {
		return nil, ErrInvalidBarcode
	}

	// A fresh cached row short-circuits the network entirely; a stale
	// one is kept around as a fallback if the provider is down.
	var stale *models.FoodProduct
	if s.cache != nil {
		cached, fresh, err := s.cache.Get(ctx, barcode)
		switch {
		case err == nil && fresh:
			return cached, nil
		case err == nil:
			stale = cached
		case !errors.Is(err, foodcache.ErrMiss):
			logger.Ctx(ctx).Warn("food cache read failed",
				logger.String("barcode", barcode), logger.Err(err))
		}
	}

	product, err := s.provider.FetchProduct(ctx, barcode)
	if err != nil {
		if errors.Is(err, openfoodfacts.ErrProductNotFound) {
			return nil, fmt.Errorf("barcode %s: %w", barcode, ErrFoodNotFound)
		}
		if stale != nil {
			logger.Ctx(ctx).Warn("serving stale cache entry",
				logger.String("barcode", barcode), logger.Err(err))
			return stale, nil
		}
		return nil, fmt.Errorf("failed to fetch product: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Put(ctx, product); err != nil {
			logger.Ctx(ctx).Warn("food cache write failed",
				logger.String("barcode", barcode), logger.Err(err))
		}
	}
	return product, nil
}

// validBarcode accepts EAN-8 through GTIN-14: digits only, 8 to 14 of
// them.
func validBarcode(code string) bool {
	if len(code) < 8 || len(code) > 14 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
