package service

import (
	"testing"

	"github.com/banksampah/waste-ledger/internal/domain"
	"github.com/banksampah/waste-ledger/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogItem(base, lower, upper int64, local *int64) *models.CatalogItem {
	return &models.CatalogItem{
		ID:         uuid.New(),
		Name:       "Botol PET",
		BasePrice:  base,
		LowerBound: lower,
		UpperBound: upper,
		LocalPrice: local,
	}
}

func int64Ptr(v int64) *int64 { return &v }

func TestResolvePrice_System(t *testing.T) {
	item := catalogItem(2500, 2000, 3000, nil)

	price, err := ResolvePrice(item, domain.PricingSystem, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), price)

	// Resolving twice yields the same price.
	again, err := ResolvePrice(item, domain.PricingSystem, nil)
	require.NoError(t, err)
	assert.Equal(t, price, again)
}

func TestResolvePrice_LocalOverride(t *testing.T) {
	item := catalogItem(2500, 2000, 3000, int64Ptr(2800))

	price, err := ResolvePrice(item, domain.PricingLocal, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2800), price)
}

func TestResolvePrice_LocalFallsBackToBase(t *testing.T) {
	item := catalogItem(2500, 2000, 3000, nil)

	price, err := ResolvePrice(item, domain.PricingLocal, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), price)
}

func TestResolvePrice_CustomWithinBand(t *testing.T) {
	item := catalogItem(2500, 2000, 3000, nil)

	price, err := ResolvePrice(item, domain.PricingCustom, int64Ptr(2500))
	require.NoError(t, err)
	assert.Equal(t, int64(2500), price)
}

func TestResolvePrice_CustomBoundaries(t *testing.T) {
	item := catalogItem(2500, 2000, 3000, nil)

	// Exactly on the bounds is accepted.
	price, err := ResolvePrice(item, domain.PricingCustom, int64Ptr(2000))
	require.NoError(t, err)
	assert.Equal(t, int64(2000), price)

	price, err = ResolvePrice(item, domain.PricingCustom, int64Ptr(3000))
	require.NoError(t, err)
	assert.Equal(t, int64(3000), price)

	// One unit outside is rejected.
	_, err = ResolvePrice(item, domain.PricingCustom, int64Ptr(1999))
	var oob *models.PriceOutOfBoundsError
	require.ErrorAs(t, err, &oob)

	_, err = ResolvePrice(item, domain.PricingCustom, int64Ptr(3001))
	require.ErrorAs(t, err, &oob)
	assert.Equal(t, int64(3001), oob.Attempted)
	assert.Equal(t, int64(2000), oob.LowerBound)
	assert.Equal(t, int64(3000), oob.UpperBound)
}

func TestResolvePrice_CustomOutOfBoundsMessage(t *testing.T) {
	item := catalogItem(2500, 2000, 3000, nil)

	_, err := ResolvePrice(item, domain.PricingCustom, int64Ptr(3500))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2000")
	assert.Contains(t, err.Error(), "3000")
	assert.Contains(t, err.Error(), "3500")
}

func TestResolvePrice_CustomMissingPrice(t *testing.T) {
	item := catalogItem(2500, 2000, 3000, nil)

	_, err := ResolvePrice(item, domain.PricingCustom, nil)
	assert.ErrorIs(t, err, models.ErrInvalidPrice)

	_, err = ResolvePrice(item, domain.PricingCustom, int64Ptr(0))
	assert.ErrorIs(t, err, models.ErrInvalidPrice)
}

func TestResolvePrice_UnknownMode(t *testing.T) {
	item := catalogItem(2500, 2000, 3000, nil)

	_, err := ResolvePrice(item, domain.PricingMode("HAGGLE"), nil)
	assert.Error(t, err)
}
