package referralRepo

import (
	"context"
	"log"
	"time"

	"mountify/database"
	"mountify/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository owns the referral_codes and referral_usages collections.
//
// GetByCode returns (nil, nil) when the code is unknown so that "no such
// code" is never confused with a storage failure. RecordUsage is idempotent
// per booking reference, enforced by a unique index on booking_ref, and
// commits the audit row and the counter bump as one unit.
type Repository interface {
	CreateCode(ctx context.Context, code models.ReferralCode) (string, error)
	GetByCode(ctx context.Context, code string) (*models.ReferralCode, error)
	GetByID(ctx context.Context, id string) (*models.ReferralCode, error)
	RecordUsage(ctx context.Context, usage models.ReferralUsage) (bool, error)
	UsagesByCode(ctx context.Context, codeID string) ([]models.ReferralUsage, error)
}

type mongoReferralRepo struct {
	client *mongo.Client
	codes  *mongo.Collection
	usages *mongo.Collection
}

// NewMongoReferralRepo returns a new Repository instance using MongoDB.
// It ensures the unique booking_ref index on referral_usages that RecordUsage
// depends on; without it, concurrent upserts for the same booking can both
// insert.
func NewMongoReferralRepo() Repository {
	db := database.MongoClient.Database("mountify")
	usages := db.Collection("referral_usages")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := usages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "booking_ref", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.Fatalf("failed to create unique booking_ref index: %v", err)
	}

	return &mongoReferralRepo{
		client: database.MongoClient,
		codes:  db.Collection("referral_codes"),
		usages: usages,
	}
}
