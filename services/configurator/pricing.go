package configurator

import "mountify/models"

// PriceBreakdown is the output of the price aggregator.
type PriceBreakdown struct {
	Subtotal   float64 `json:"subtotal"`
	AddonTotal float64 `json:"addonTotal"`
	Total      float64 `json:"total"`
}

// AggregatePrice sums base prices and addon prices across items. It is pure:
// the result is a function of the item list alone and calling it twice without
// a mutation yields the same value. An unpriced item contributes zero, so a
// partially configured booking still prices cleanly. Negative inputs are
// ignored; the total can never go below zero.
func AggregatePrice(items []models.InstallationItem) PriceBreakdown {
	var b PriceBreakdown
	for _, item := range items {
		if item.BasePrice != nil && *item.BasePrice > 0 {
			b.Subtotal += *item.BasePrice
		}
		for _, addon := range item.Addons {
			if addon.Key == models.NoAddonsKey {
				continue
			}
			if addon.Price > 0 {
				b.AddonTotal += addon.Price
			}
		}
	}
	b.Total = b.Subtotal + b.AddonTotal
	return b
}

// Breakdown prices the aggregate's current state, falling back to the legacy
// scalar totals for sessions that predate multi-item support.
func (a *Aggregate) Breakdown() PriceBreakdown {
	if len(a.Config.Items) > 0 {
		return AggregatePrice(a.Config.Items)
	}
	var b PriceBreakdown
	if a.Config.LegacyTotal > 0 {
		b.Subtotal = a.Config.LegacyTotal
	}
	if a.Config.LegacyAddonTotal > 0 {
		b.AddonTotal = a.Config.LegacyAddonTotal
	}
	b.Total = b.Subtotal + b.AddonTotal
	return b
}

// ComputeTotal is the canonical definition of the session's price. It is
// re-derived from current state on every call and never cached.
func (a *Aggregate) ComputeTotal() float64 {
	return a.Breakdown().Total
}
