package referral

import (
	"context"
	"fmt"
	"math"

	referralRepo "mountify/database/repository/referral"
	"mountify/models"

	"go.uber.org/zap"
)

// DiscountResult is the priced outcome of validating a referral code against
// a booking amount.
type DiscountResult struct {
	Valid                  bool    `json:"valid"`
	CodeID                 string  `json:"codeId,omitempty"`
	Code                   string  `json:"code,omitempty"`
	DiscountPercent        float64 `json:"discountPercent,omitempty"`
	DiscountAmount         float64 `json:"discountAmount,omitempty"`
	SubsidyAmount          float64 `json:"subsidyAmount,omitempty"`
	SubsidizedByThirdParty bool    `json:"subsidizedByThirdParty,omitempty"`
	Message                string  `json:"message,omitempty"`
}

// Ledger validates promotional codes and keeps the money-moving usage
// accounting straight.
type Ledger interface {
	ValidateAndPrice(ctx context.Context, code string, bookingAmount float64) (*DiscountResult, error)
	RecordUsage(ctx context.Context, codeID, bookingRef string, discountAmount, subsidyAmount float64) (bool, error)
}

// DefaultLedger is the production Ledger backed by the referral repository.
// All counter arithmetic happens inside the storage engine, so many customers
// redeeming the same code concurrently cannot lose updates; this struct holds
// no locks of its own.
type DefaultLedger struct {
	Repo   referralRepo.Repository
	Logger *zap.Logger
}

// round2 rounds a monetary amount to cents.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ValidateAndPrice looks the code up and computes the discount and subsidy for
// the given booking amount. An absent or inactive code fails with an
// invalid-code error carrying a customer-presentable message; a storage
// failure comes back as a transient error so callers can retry instead of
// telling the customer their code is bad.
//
// For partner-staff codes the partner absorbs the full discount, so the
// subsidy equals the discount. Customer codes carry no subsidy; those accrue
// rewards to the referring customer through a separate path.
func (l *DefaultLedger) ValidateAndPrice(ctx context.Context, code string, bookingAmount float64) (*DiscountResult, error) {
	record, err := l.Repo.GetByCode(ctx, code)
	if err != nil {
		return nil, NewTransientError("failed to look up referral code", err)
	}
	if record == nil || !record.IsActive {
		// Absent and inactive are deliberately indistinguishable here.
		return nil, NewInvalidCodeError("This referral code is not valid.")
	}

	if bookingAmount < 0 {
		bookingAmount = 0
	}
	discount := round2(bookingAmount * record.DiscountPercent / 100)
	subsidy := 0.0
	if record.IssuerType == models.IssuerPartnerStaff {
		subsidy = discount
	}

	return &DiscountResult{
		Valid:                  true,
		CodeID:                 record.ID,
		Code:                   record.Code,
		DiscountPercent:        record.DiscountPercent,
		DiscountAmount:         discount,
		SubsidyAmount:          subsidy,
		SubsidizedByThirdParty: subsidy > 0,
		Message:                fmt.Sprintf("Code applied: %.0f%% off.", record.DiscountPercent),
	}, nil
}

// RecordUsage durably records one usage event for bookingRef and bumps the
// code's cumulative counters. Recording is idempotent per bookingRef: the
// repository inserts the audit row and increments the counters only when no
// row exists yet for that booking, all through atomic storage operations, so
// a retried request cannot double-count. The returned bool is true when this
// call actually recorded the usage.
func (l *DefaultLedger) RecordUsage(ctx context.Context, codeID, bookingRef string, discountAmount, subsidyAmount float64) (bool, error) {
	if codeID == "" || bookingRef == "" {
		return false, NewInvalidCodeError("missing code or booking reference")
	}
	usage := models.ReferralUsage{
		CodeID:                 codeID,
		BookingRef:             bookingRef,
		DiscountAmount:         round2(discountAmount),
		SubsidyAmount:          round2(subsidyAmount),
		SubsidizedByThirdParty: subsidyAmount > 0,
	}
	created, err := l.Repo.RecordUsage(ctx, usage)
	if err != nil {
		return false, NewTransientError("failed to record referral usage", err)
	}
	if !created {
		l.Logger.Info("referral usage already recorded, skipping",
			zap.String("bookingRef", bookingRef), zap.String("codeID", codeID))
	}
	return created, nil
}
