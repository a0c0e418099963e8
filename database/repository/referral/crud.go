package referralRepo

import (
	"context"
	"errors"
	"strings"
	"time"

	"mountify/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CreateCode inserts a new referral code record and returns its ID.
func (r *mongoReferralRepo) CreateCode(ctx context.Context, code models.ReferralCode) (string, error) {
	if code.ID == "" {
		code.ID = uuid.New().String()
	}
	code.Code = strings.ToUpper(strings.TrimSpace(code.Code))
	code.CreatedAt = time.Now()

	_, err := r.codes.InsertOne(ctx, code)
	if err != nil {
		return "", err
	}
	return code.ID, nil
}

// GetByCode returns the code record for a code string, or nil when unknown.
func (r *mongoReferralRepo) GetByCode(ctx context.Context, code string) (*models.ReferralCode, error) {
	var record models.ReferralCode
	err := r.codes.FindOne(ctx, bson.M{"code": strings.ToUpper(strings.TrimSpace(code))}).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetByID returns a code record by its ID, or nil when unknown.
func (r *mongoReferralRepo) GetByID(ctx context.Context, id string) (*models.ReferralCode, error) {
	var record models.ReferralCode
	err := r.codes.FindOne(ctx, bson.M{"id": id}).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// errUsageExists aborts the recording transaction when the booking already
// has a usage row; it never escapes RecordUsage.
var errUsageExists = errors.New("usage already recorded for booking")

// RecordUsage records one usage row for usage.BookingRef and bumps the code's
// cumulative counters. The unique index on booking_ref makes the insert the
// idempotency gate: a second call for the same booking hits a duplicate key
// and reports (false, nil). The insert and the $inc run in one transaction,
// so a failure between them leaves neither behind and a retry starts clean;
// the $inc itself is executed by the storage engine, so concurrent
// redemptions of the same code cannot lose updates.
func (r *mongoReferralRepo) RecordUsage(ctx context.Context, usage models.ReferralUsage) (bool, error) {
	if usage.ID == "" {
		usage.ID = uuid.New().String()
	}
	if usage.PayoutStatus == "" {
		usage.PayoutStatus = "pending"
	}
	usage.RecordedAt = time.Now()

	session, err := r.client.StartSession()
	if err != nil {
		return false, err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.usages.InsertOne(sc, usage); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, errUsageExists
			}
			return nil, err
		}
		_, err := r.codes.UpdateOne(sc,
			bson.M{"id": usage.CodeID},
			bson.M{"$inc": bson.M{
				"total_usage_count":     1,
				"total_subsidy_accrued": usage.SubsidyAmount,
			}},
		)
		return nil, err
	})
	if errors.Is(err, errUsageExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UsagesByCode fetches the audit rows recorded against a code.
func (r *mongoReferralRepo) UsagesByCode(ctx context.Context, codeID string) ([]models.ReferralUsage, error) {
	cursor, err := r.usages.Find(ctx, bson.M{"code_id": codeID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var usages []models.ReferralUsage
	if err := cursor.All(ctx, &usages); err != nil {
		return nil, err
	}
	return usages, nil
}
