package models

import "time"

// AppliedReferral captures the discount actually applied to a submitted
// booking. DiscountAmount is final; checkout applies it without recomputing.
type AppliedReferral struct {
	Code           string  `bson:"code" json:"code"`
	DiscountAmount float64 `bson:"discount_amount" json:"discountAmount"`
}

// Booking is the finalized snapshot handed to checkout at submission. The
// ComputedTotal is the authoritative pre-discount figure; checkout must not
// re-derive prices from the items.
type Booking struct {
	ID               string             `bson:"id" json:"id"`
	Items            []InstallationItem `bson:"items" json:"items"`
	ComputedTotal    float64            `bson:"computed_total" json:"computedTotal"`
	Referral         *AppliedReferral   `bson:"referral,omitempty" json:"referral,omitempty"`
	Contact          Contact            `bson:"contact" json:"contact"`
	TargetProviderID string             `bson:"target_provider_id,omitempty" json:"targetProviderId,omitempty"`
	Notes            string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Status           string             `bson:"status" json:"status"`
	CreatedAt        time.Time          `bson:"created_at" json:"createdAt"`
}
