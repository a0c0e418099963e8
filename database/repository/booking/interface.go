package bookingRepo

import (
	"context"
	"mountify/database"
	"mountify/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type Repository interface {
	Create(ctx context.Context, booking models.Booking) (string, error)
	GetByID(ctx context.Context, id string) (*models.Booking, error)
}

type mongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo returns a new Repository instance using MongoDB.
func NewMongoBookingRepo() Repository {
	db := database.MongoClient.Database("mountify")
	return &mongoBookingRepo{
		coll: db.Collection("bookings"),
	}
}
