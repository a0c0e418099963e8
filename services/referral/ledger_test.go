package referral_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"mountify/models"
	"mountify/services/referral"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeReferralRepo mimics the storage contract of the Mongo repository: usage
// insertion is gated on the booking reference (the unique booking_ref index)
// and the counter bump lands in the same guarded section or not at all, the
// in-memory stand-in for the engine-side insert + $inc transaction.
type fakeReferralRepo struct {
	mu     sync.Mutex
	codes  map[string]*models.ReferralCode // keyed by code string
	usages map[string]models.ReferralUsage // keyed by booking ref
	down   bool
}

func newFakeReferralRepo() *fakeReferralRepo {
	return &fakeReferralRepo{
		codes:  make(map[string]*models.ReferralCode),
		usages: make(map[string]models.ReferralUsage),
	}
}

func (f *fakeReferralRepo) addCode(code models.ReferralCode) {
	f.codes[code.Code] = &code
}

func (f *fakeReferralRepo) CreateCode(ctx context.Context, code models.ReferralCode) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return "", errors.New("storage down")
	}
	f.codes[code.Code] = &code
	return code.ID, nil
}

func (f *fakeReferralRepo) GetByCode(ctx context.Context, code string) (*models.ReferralCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, errors.New("storage down")
	}
	record, ok := f.codes[code]
	if !ok {
		return nil, nil
	}
	copied := *record
	return &copied, nil
}

func (f *fakeReferralRepo) GetByID(ctx context.Context, id string) (*models.ReferralCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, record := range f.codes {
		if record.ID == id {
			copied := *record
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeReferralRepo) RecordUsage(ctx context.Context, usage models.ReferralUsage) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return false, errors.New("storage down")
	}
	if _, exists := f.usages[usage.BookingRef]; exists {
		return false, nil
	}
	f.usages[usage.BookingRef] = usage
	for _, record := range f.codes {
		if record.ID == usage.CodeID {
			record.TotalUsageCount++
			record.TotalSubsidyAccrued += usage.SubsidyAmount
		}
	}
	return true, nil
}

func (f *fakeReferralRepo) UsagesByCode(ctx context.Context, codeID string) ([]models.ReferralUsage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ReferralUsage
	for _, usage := range f.usages {
		if usage.CodeID == codeID {
			out = append(out, usage)
		}
	}
	return out, nil
}

func newTestLedger(repo *fakeReferralRepo) *referral.DefaultLedger {
	return &referral.DefaultLedger{Repo: repo, Logger: zap.NewNop()}
}

func TestValidateAndPricePartnerStaffSubsidy(t *testing.T) {
	repo := newFakeReferralRepo()
	repo.addCode(models.ReferralCode{
		ID: "code-1", Code: "BBSYD001", IssuerType: models.IssuerPartnerStaff,
		DiscountPercent: 10, IsActive: true,
	})
	ledger := newTestLedger(repo)

	result, err := ledger.ValidateAndPrice(context.Background(), "BBSYD001", 200)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, 20.00, result.DiscountAmount)
	assert.Equal(t, 20.00, result.SubsidyAmount, "the partner absorbs the full discount")
	assert.True(t, result.SubsidizedByThirdParty)
}

func TestValidateAndPriceCustomerCodeHasNoSubsidy(t *testing.T) {
	repo := newFakeReferralRepo()
	repo.addCode(models.ReferralCode{
		ID: "code-2", Code: "FRIEND99", IssuerType: models.IssuerCustomer,
		DiscountPercent: 15, IsActive: true,
	})
	ledger := newTestLedger(repo)

	result, err := ledger.ValidateAndPrice(context.Background(), "FRIEND99", 100)
	require.NoError(t, err)
	assert.Equal(t, 15.00, result.DiscountAmount)
	assert.Zero(t, result.SubsidyAmount)
	assert.False(t, result.SubsidizedByThirdParty)
}

func TestValidateAndPriceRoundsToCents(t *testing.T) {
	repo := newFakeReferralRepo()
	repo.addCode(models.ReferralCode{
		ID: "code-3", Code: "BBSYD002", IssuerType: models.IssuerPartnerStaff,
		DiscountPercent: 10, IsActive: true,
	})
	ledger := newTestLedger(repo)

	result, err := ledger.ValidateAndPrice(context.Background(), "BBSYD002", 199.99)
	require.NoError(t, err)
	assert.Equal(t, 20.00, result.DiscountAmount)
}

func TestValidateAndPriceUnknownAndInactiveAreInvalid(t *testing.T) {
	repo := newFakeReferralRepo()
	repo.addCode(models.ReferralCode{
		ID: "code-4", Code: "BBSYD003", IssuerType: models.IssuerPartnerStaff,
		DiscountPercent: 10, IsActive: false,
	})
	ledger := newTestLedger(repo)

	_, err := ledger.ValidateAndPrice(context.Background(), "NOPE", 100)
	assert.True(t, referral.IsInvalidCode(err))

	_, err = ledger.ValidateAndPrice(context.Background(), "BBSYD003", 100)
	assert.True(t, referral.IsInvalidCode(err), "inactive codes fail the same way as unknown ones")
}

func TestValidateAndPriceStorageFailureIsTransient(t *testing.T) {
	repo := newFakeReferralRepo()
	repo.down = true
	ledger := newTestLedger(repo)

	_, err := ledger.ValidateAndPrice(context.Background(), "BBSYD001", 100)
	assert.True(t, referral.IsTransient(err))
	assert.False(t, referral.IsInvalidCode(err), "a storage blip must never read as a bad code")
}

func TestRecordUsageIsIdempotentPerBooking(t *testing.T) {
	repo := newFakeReferralRepo()
	repo.addCode(models.ReferralCode{
		ID: "code-5", Code: "BBSYD004", IssuerType: models.IssuerPartnerStaff,
		DiscountPercent: 10, IsActive: true,
	})
	ledger := newTestLedger(repo)
	ctx := context.Background()

	recorded, err := ledger.RecordUsage(ctx, "code-5", "booking-1", 20, 20)
	require.NoError(t, err)
	assert.True(t, recorded)

	recorded, err = ledger.RecordUsage(ctx, "code-5", "booking-1", 20, 20)
	require.NoError(t, err)
	assert.False(t, recorded, "the retry must not create a second row")

	usages, err := repo.UsagesByCode(ctx, "code-5")
	require.NoError(t, err)
	assert.Len(t, usages, 1)

	code, err := repo.GetByID(ctx, "code-5")
	require.NoError(t, err)
	assert.Equal(t, int64(1), code.TotalUsageCount, "counted once, not twice")
	assert.Equal(t, 20.00, code.TotalSubsidyAccrued)
}

func TestRecordUsageConcurrentRedemptionsLoseNoUpdates(t *testing.T) {
	repo := newFakeReferralRepo()
	repo.addCode(models.ReferralCode{
		ID: "code-6", Code: "BBSYD005", IssuerType: models.IssuerPartnerStaff,
		DiscountPercent: 10, IsActive: true,
	})
	ledger := newTestLedger(repo)
	ctx := context.Background()

	const n = 64
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_, err := ledger.RecordUsage(ctx, "code-6", fmt.Sprintf("booking-%d", i), 10, 10)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	code, err := repo.GetByID(ctx, "code-6")
	require.NoError(t, err)
	assert.Equal(t, int64(n), code.TotalUsageCount)
	assert.Equal(t, float64(n)*10, code.TotalSubsidyAccrued)

	usages, err := repo.UsagesByCode(ctx, "code-6")
	require.NoError(t, err)
	assert.Len(t, usages, n)
}

func TestRecordUsageFailedAttemptLeavesNoPartialState(t *testing.T) {
	repo := newFakeReferralRepo()
	repo.addCode(models.ReferralCode{
		ID: "code-7", Code: "BBSYD006", IssuerType: models.IssuerPartnerStaff,
		DiscountPercent: 10, IsActive: true,
	})
	ledger := newTestLedger(repo)
	ctx := context.Background()

	repo.down = true
	_, err := ledger.RecordUsage(ctx, "code-7", "booking-9", 20, 20)
	require.True(t, referral.IsTransient(err))

	usages, err := repo.UsagesByCode(ctx, "code-7")
	require.NoError(t, err)
	assert.Empty(t, usages, "a failed attempt must not leave an audit row behind")

	repo.down = false
	recorded, err := ledger.RecordUsage(ctx, "code-7", "booking-9", 20, 20)
	require.NoError(t, err)
	assert.True(t, recorded, "the retry finds no prior row and records in full")

	code, err := repo.GetByID(ctx, "code-7")
	require.NoError(t, err)
	assert.Equal(t, int64(1), code.TotalUsageCount)
	assert.Equal(t, 20.00, code.TotalSubsidyAccrued)

	usages, err = repo.UsagesByCode(ctx, "code-7")
	require.NoError(t, err)
	assert.Len(t, usages, 1, "counters and audit rows agree")
}

func TestRecordUsageRejectsMissingReferences(t *testing.T) {
	ledger := newTestLedger(newFakeReferralRepo())

	_, err := ledger.RecordUsage(context.Background(), "", "booking-1", 10, 0)
	assert.Error(t, err)

	_, err = ledger.RecordUsage(context.Background(), "code-1", "", 10, 0)
	assert.Error(t, err)
}
