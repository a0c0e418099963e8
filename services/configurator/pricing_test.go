package configurator_test

import (
	"testing"

	"mountify/models"
	"mountify/services/configurator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregatePriceSumsBaseAndAddons(t *testing.T) {
	agg := configurator.NewAggregate()
	agg.InitializeMultiItem(3)
	agg.UpdateItem(1, configurator.ItemPatch{
		BasePrice: floatPtr(159),
		Addons: &configurator.AddonsPatch{Replace: []models.Addon{
			{Key: "soundbar-install", Name: "Soundbar Installation", Price: 39},
		}},
	})

	breakdown := agg.Breakdown()
	assert.Equal(t, 159.0, breakdown.Subtotal)
	assert.Equal(t, 39.0, breakdown.AddonTotal)
	assert.Equal(t, 198.0, breakdown.Total, "unpriced items 0 and 2 contribute zero")
	assert.Equal(t, 198.0, agg.ComputeTotal())
}

func TestAggregatePriceIsDeterministic(t *testing.T) {
	agg := configurator.NewAggregate()
	agg.InitializeMultiItem(2)
	agg.UpdateItem(0, configurator.ItemPatch{BasePrice: floatPtr(129)})

	first := agg.ComputeTotal()
	second := agg.ComputeTotal()
	assert.Equal(t, first, second)
}

func TestAggregatePriceNeverNegative(t *testing.T) {
	items := []models.InstallationItem{
		{BasePrice: floatPtr(-50)},
		{Addons: []models.Addon{{Key: "x", Price: -10}}},
	}
	breakdown := configurator.AggregatePrice(items)
	assert.GreaterOrEqual(t, breakdown.Total, 0.0)
	assert.Zero(t, breakdown.Total)
}

func TestSentinelAddonIsFree(t *testing.T) {
	items := []models.InstallationItem{
		{
			BasePrice: floatPtr(100),
			Addons:    []models.Addon{{Key: models.NoAddonsKey, Name: "No Add-ons", Price: 39}},
		},
	}
	breakdown := configurator.AggregatePrice(items)
	assert.Equal(t, 100.0, breakdown.Total, "the sentinel never contributes to the price")
}

func TestLegacyScalarFallback(t *testing.T) {
	agg := configurator.NewAggregate()
	require.Empty(t, agg.Config.Items)
	agg.Config.LegacyTotal = 149
	agg.Config.LegacyAddonTotal = 29

	breakdown := agg.Breakdown()
	assert.Equal(t, 149.0, breakdown.Subtotal)
	assert.Equal(t, 29.0, breakdown.AddonTotal)
	assert.Equal(t, 178.0, agg.ComputeTotal())
}
