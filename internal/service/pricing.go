package service

import (
	"fmt"

	"github.com/banksampah/waste-ledger/internal/domain"
	"github.com/banksampah/waste-ledger/internal/models"
)

// ResolvePrice computes the effective per-kilogram price for a catalog item
// under the requested pricing mode. Pure function, no side effects.
//
// SYSTEM uses the catalog base price. LOCAL uses the unit override and falls
// back to the base price when the unit has none. CUSTOM uses the manually
// entered price, which must sit inside the catalog's allowed band.
func ResolvePrice(item *models.CatalogItem, mode domain.PricingMode, manualPrice *int64) (int64, error) {
	switch mode {
	case domain.PricingSystem:
		return item.BasePrice, nil

	case domain.PricingLocal:
		if item.LocalPrice != nil {
			return *item.LocalPrice, nil
		}
		return item.BasePrice, nil

	case domain.PricingCustom:
		if manualPrice == nil || *manualPrice <= 0 {
			return 0, models.ErrInvalidPrice
		}
		if *manualPrice < item.LowerBound || *manualPrice > item.UpperBound {
			return 0, &models.PriceOutOfBoundsError{
				ItemName:   item.Name,
				Attempted:  *manualPrice,
				LowerBound: item.LowerBound,
				UpperBound: item.UpperBound,
			}
		}
		return *manualPrice, nil
	}

	return 0, fmt.Errorf("unknown pricing mode %q", mode)
}
