package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/ale-zgn/projet-semestriel/config"
	"github.com/ale-zgn/projet-semestriel/models"
)

func rentalsNamespace() string {
	return config.DatabaseName() + ".rentals"
}

func TestFindOverlapping(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	carID := primitive.NewObjectID()
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)

	mt.Run("queries approved rentals with inclusive bounds", func(mt *mtest.T) {
		repo := NewRentalRepository(mt.Client)
		existing := bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "carId", Value: carID},
			{Key: "status", Value: models.RentalStatusApproved},
			{Key: "startDate", Value: start},
			{Key: "endDate", Value: end},
		}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, rentalsNamespace(), mtest.FirstBatch, existing))

		rental, err := repo.FindOverlapping(context.Background(), carID, start, end, nil)
		require.NoError(mt, err)
		require.NotNil(mt, rental)
		assert.Equal(mt, carID, rental.CarID)
		assert.Equal(mt, models.RentalStatusApproved, rental.Status)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "find", evt.CommandName)
		filter := evt.Command.Lookup("filter").Document()
		assert.Equal(mt, models.RentalStatusApproved, filter.Lookup("status").StringValue())
		assert.Equal(mt, carID, filter.Lookup("carId").ObjectID())
		// Closed-interval comparison on both bounds.
		_, err = filter.Lookup("startDate").Document().LookupErr("$lte")
		assert.NoError(mt, err)
		_, err = filter.Lookup("endDate").Document().LookupErr("$gte")
		assert.NoError(mt, err)
	})

	mt.Run("free period returns nil", func(mt *mtest.T) {
		repo := NewRentalRepository(mt.Client)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, rentalsNamespace(), mtest.FirstBatch))

		rental, err := repo.FindOverlapping(context.Background(), carID, start, end, nil)
		require.NoError(mt, err)
		assert.Nil(mt, rental)
	})

	mt.Run("update excludes the request's own id", func(mt *mtest.T) {
		repo := NewRentalRepository(mt.Client)
		ownID := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, rentalsNamespace(), mtest.FirstBatch))

		_, err := repo.FindOverlapping(context.Background(), carID, start, end, &ownID)
		require.NoError(mt, err)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		filter := evt.Command.Lookup("filter").Document()
		assert.Equal(mt, ownID, filter.Lookup("_id").Document().Lookup("$ne").ObjectID())
	})
}

func TestDeleteByCar(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("removes every rental referencing the car", func(mt *mtest.T) {
		repo := NewRentalRepository(mt.Client)
		carID := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 3}))

		deleted, err := repo.DeleteByCar(context.Background(), carID)
		require.NoError(mt, err)
		assert.EqualValues(mt, 3, deleted)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "delete", evt.CommandName)

		statements, err := evt.Command.Lookup("deletes").Array().Values()
		require.NoError(mt, err)
		require.Len(mt, statements, 1)
		stmt := statements[0].Document()
		assert.Equal(mt, carID, stmt.Lookup("q").Document().Lookup("carId").ObjectID())
		// limit 0 deletes every match, not just the first.
		assert.EqualValues(mt, 0, stmt.Lookup("limit").AsInt64())
	})
}
