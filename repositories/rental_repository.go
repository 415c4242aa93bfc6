package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ale-zgn/projet-semestriel/config"
	"github.com/ale-zgn/projet-semestriel/models"
)

// RentalRepository wraps the rentals collection. The overlap query lives
// here so create and update paths share one definition of "conflict".
type RentalRepository struct {
	collection *mongo.Collection
}

func NewRentalRepository(db *mongo.Client) *RentalRepository {
	return &RentalRepository{
		collection: config.GetCollection(db, "rentals"),
	}
}

// FindOverlapping returns an approved rental for the car whose date range
// overlaps [start, end] under inclusive-boundary comparison, or nil when the
// period is free. excludeID removes the request's own prior record from the
// comparison set on updates. Callers validate the range and the car first.
func (r *RentalRepository) FindOverlapping(ctx context.Context, carID primitive.ObjectID, start, end time.Time, excludeID *primitive.ObjectID) (*models.RentalRequest, error) {
	filter := bson.M{
		"carId":     carID,
		"status":    models.RentalStatusApproved,
		"startDate": bson.M{"$lte": end},
		"endDate":   bson.M{"$gte": start},
	}
	if excludeID != nil {
		filter["_id"] = bson.M{"$ne": *excludeID}
	}

	var rental models.RentalRequest
	err := r.collection.FindOne(ctx, filter).Decode(&rental)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rental, nil
}

// HasOverlap reports whether an approved rental conflicts with the range.
func (r *RentalRepository) HasOverlap(ctx context.Context, carID primitive.ObjectID, start, end time.Time, excludeID *primitive.ObjectID) (bool, error) {
	rental, err := r.FindOverlapping(ctx, carID, start, end, excludeID)
	if err != nil {
		return false, err
	}
	return rental != nil, nil
}

// ApprovedCarIDsOverlapping returns the set of car ids with an approved
// rental overlapping the window. Feeds the derived "rented" listing status.
func (r *RentalRepository) ApprovedCarIDsOverlapping(ctx context.Context, start, end time.Time) (map[primitive.ObjectID]struct{}, error) {
	filter := bson.M{
		"status":    models.RentalStatusApproved,
		"startDate": bson.M{"$lte": end},
		"endDate":   bson.M{"$gte": start},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rentals []models.RentalRequest
	if err := cursor.All(ctx, &rentals); err != nil {
		return nil, err
	}

	rented := make(map[primitive.ObjectID]struct{}, len(rentals))
	for _, rental := range rentals {
		rented[rental.CarID] = struct{}{}
	}
	return rented, nil
}

// CountByUser returns how many rental requests a user owns.
func (r *RentalRepository) CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"userId": userID})
}

// DeleteByCar removes every rental request referencing the car. Used by the
// vehicle deletion cascade.
func (r *RentalRepository) DeleteByCar(ctx context.Context, carID primitive.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"carId": carID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
