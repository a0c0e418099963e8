package models

import "time"

// Referral code issuer types.
const (
	IssuerCustomer     = "customer"
	IssuerPartnerStaff = "partnerStaff"
)

// ReferralCode is a server-owned promotional code record. TotalUsageCount and
// TotalSubsidyAccrued are cumulative counters maintained by atomic storage
// updates; application code never read-modify-writes them.
type ReferralCode struct {
	ID                  string    `bson:"id" json:"id"`
	Code                string    `bson:"code" json:"code"`
	IssuerType          string    `bson:"issuer_type" json:"issuerType"`
	DiscountPercent     float64   `bson:"discount_percent" json:"discountPercent"`
	TotalUsageCount     int64     `bson:"total_usage_count" json:"totalUsageCount"`
	TotalSubsidyAccrued float64   `bson:"total_subsidy_accrued" json:"totalSubsidyAccrued"`
	IsActive            bool      `bson:"is_active" json:"isActive"`
	CreatedAt           time.Time `bson:"created_at" json:"createdAt"`
}

// ReferralUsage is the append-only audit row recorded once per redeemed code
// per booking. The monetary amounts are immutable after creation; only
// PayoutStatus may transition afterwards.
type ReferralUsage struct {
	ID                     string    `bson:"id" json:"id"`
	CodeID                 string    `bson:"code_id" json:"codeId"`
	BookingRef             string    `bson:"booking_ref" json:"bookingRef"`
	DiscountAmount         float64   `bson:"discount_amount" json:"discountAmount"`
	SubsidyAmount          float64   `bson:"subsidy_amount" json:"subsidyAmount"`
	SubsidizedByThirdParty bool      `bson:"subsidized_by_third_party" json:"subsidizedByThirdParty"`
	PayoutStatus           string    `bson:"payout_status" json:"payoutStatus"`
	RecordedAt             time.Time `bson:"recorded_at" json:"recordedAt"`
}

// UsagePayload is the queued form of a pending usage recording, carried by the
// background worker so a transient storage failure at submit time is retried
// rather than dropped.
type UsagePayload struct {
	CodeID         string  `json:"codeId"`
	BookingRef     string  `json:"bookingRef"`
	DiscountAmount float64 `json:"discountAmount"`
	SubsidyAmount  float64 `json:"subsidyAmount"`
}
