package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ale-zgn/projet-semestriel/config"
	"github.com/ale-zgn/projet-semestriel/models"
	"github.com/ale-zgn/projet-semestriel/repositories"
	"github.com/ale-zgn/projet-semestriel/services"
	"github.com/ale-zgn/projet-semestriel/utils"
	"github.com/ale-zgn/projet-semestriel/websocket"
)

// RentalController orchestrates rental request operations: permission
// checks, date validation, conflict checking and notification side effects.
type RentalController struct {
	db       *mongo.Client
	rentals  *repositories.RentalRepository
	notifier *services.Notifier
}

func NewRentalController(db *mongo.Client, rentals *repositories.RentalRepository, notifier *services.Notifier) *RentalController {
	return &RentalController{db: db, rentals: rentals, notifier: notifier}
}

// GetRentals lists rental requests, newest first. Admins see everything
// (optionally filtered by status); other users only their own requests.
// ?expand=car embeds the referenced car document.
func (rc *RentalController) GetRentals(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	actor, err := utils.CurrentUser(c, rc.db)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Success: false,
			Message: "Unauthorized",
		})
	}

	filter := bson.M{}
	if status := c.QueryParam("status"); status != "" {
		filter["status"] = status
	}
	if !actor.IsAdmin() {
		filter["userId"] = actor.ID
	}

	collection := config.GetCollection(rc.db, "rentals")
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := collection.Find(ctx, filter, findOptions)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Error retrieving rental requests",
		})
	}
	defer cursor.Close(ctx)

	var rentals []models.RentalRequest
	if err := cursor.All(ctx, &rentals); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Error decoding rental requests",
		})
	}

	if c.QueryParam("expand") == "car" {
		expanded, err := rc.expandCars(ctx, rentals)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.Response{
				Success: false,
				Message: "Error loading car details",
			})
		}
		return c.JSON(http.StatusOK, models.Response{
			Success: true,
			Message: "Rental requests retrieved successfully",
			Data: map[string]interface{}{
				"rentals": expanded,
				"count":   len(expanded),
			},
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Rental requests retrieved successfully",
		Data: map[string]interface{}{
			"rentals": rentals,
			"count":   len(rentals),
		},
	})
}

// CreateRental validates the date range, checks the car exists, rejects
// periods overlapping an approved rental and persists the request owned by
// the acting account. Admins are notified.
func (rc *RentalController) CreateRental(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	actor, err := utils.CurrentUser(c, rc.db)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Success: false,
			Message: "Unauthorized",
		})
	}

	var req models.CreateRentalRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Validation failed",
			Errors:  utils.ValidationErrors(err),
		})
	}

	if err := services.ValidateDateRange(req.StartDate, req.EndDate); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "End date must be after start date",
		})
	}

	carID, err := primitive.ObjectIDFromHex(req.CarID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid car ID",
		})
	}

	var car models.Car
	err = config.GetCollection(rc.db, "cars").FindOne(ctx, bson.M{"_id": carID}).Decode(&car)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Success: false,
				Message: "Car not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Error finding car",
		})
	}

	if err := rc.ensureAvailable(ctx, carID, req.StartDate, req.EndDate, nil); err != nil {
		return rc.availabilityError(c, err)
	}

	// Only admins may create in a non-pending state.
	status := models.RentalStatusPending
	if req.Status != "" && actor.IsAdmin() {
		status = req.Status
	}

	now := time.Now()
	rental := models.RentalRequest{
		ID:            primitive.NewObjectID(),
		UserID:        actor.ID,
		CarID:         carID,
		CustomerName:  actor.Username,
		CustomerEmail: actor.Email,
		CustomerPhone: actor.Phone,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		Status:        status,
		Notes:         utils.SanitizeInput(req.Notes),
		TotalCost:     req.TotalCost,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := config.GetCollection(rc.db, "rentals").InsertOne(ctx, rental); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Failed to create rental request",
		})
	}

	rc.notifier.NotifyAdmins(ctx,
		fmt.Sprintf("New rental request from %s", actor.Username),
		models.LocationRentalRequest, rental.ID)
	rc.notifier.Broadcast(websocket.EventRentalsUpdated, map[string]interface{}{
		"action": "create",
		"rental": rental,
	})

	return c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "Rental request created successfully",
		Data:    map[string]interface{}{"rental": rental},
	})
}

// UpdateRental applies a patch under the transition rules: admins may change
// anything, a requester may only cancel their own pending/approved request.
// Date moves re-run the conflict check excluding the request itself.
func (rc *RentalController) UpdateRental(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	actor, err := utils.CurrentUser(c, rc.db)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Success: false,
			Message: "Unauthorized",
		})
	}

	rentalID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid rental ID",
		})
	}

	var patch models.UpdateRentalRequest
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Validation failed",
			Errors:  utils.ValidationErrors(err),
		})
	}

	collection := config.GetCollection(rc.db, "rentals")
	var existing models.RentalRequest
	err = collection.FindOne(ctx, bson.M{"_id": rentalID}).Decode(&existing)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Success: false,
				Message: "Rental request not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Error retrieving rental request",
		})
	}

	if err := services.AuthorizeTransition(actor.Role, actor.ID, &existing, &patch); err != nil {
		return rc.transitionError(c, err)
	}

	// Moving the dates or approving the request both compete for the car's
	// window, so either one re-runs the overlap query.
	if services.RequiresConflictCheck(&existing, &patch) {
		start, end := services.EffectiveRange(&existing, &patch)
		if err := rc.ensureAvailable(ctx, existing.CarID, start, end, &rentalID); err != nil {
			return rc.availabilityError(c, err)
		}
	}

	set := bson.M{"updatedAt": time.Now()}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.StartDate != nil {
		set["startDate"] = *patch.StartDate
	}
	if patch.EndDate != nil {
		set["endDate"] = *patch.EndDate
	}
	if patch.Notes != nil {
		set["notes"] = utils.SanitizeInput(*patch.Notes)
	}
	if patch.TotalCost != nil {
		set["totalCost"] = *patch.TotalCost
	}

	var updated models.RentalRequest
	err = collection.FindOneAndUpdate(ctx,
		bson.M{"_id": rentalID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Success: false,
				Message: "Rental request not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Failed to update rental request",
		})
	}

	rc.notifyStatusChange(ctx, actor, &existing, &updated)
	rc.notifier.Broadcast(websocket.EventRentalsUpdated, map[string]interface{}{
		"action": "update",
		"rental": updated,
	})

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Rental request updated successfully",
		Data:    map[string]interface{}{"rental": updated},
	})
}

// DeleteRental removes a rental request. Admin only (route boundary).
func (rc *RentalController) DeleteRental(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	rentalID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid rental ID",
		})
	}

	collection := config.GetCollection(rc.db, "rentals")
	var rental models.RentalRequest
	err = collection.FindOneAndDelete(ctx, bson.M{"_id": rentalID}).Decode(&rental)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Success: false,
				Message: "Rental request not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Failed to delete rental request",
		})
	}

	rc.notifier.Broadcast(websocket.EventRentalsUpdated, map[string]interface{}{
		"action":   "delete",
		"rentalId": rentalID.Hex(),
	})

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Rental request deleted successfully",
		Data:    map[string]interface{}{"rental": rental},
	})
}

// notifyStatusChange fires the status-transition notification triggers:
// admin decisions go to the owning requester (never self-notify), requester
// cancellations go to the admins.
func (rc *RentalController) notifyStatusChange(ctx context.Context, actor *models.User, before, after *models.RentalRequest) {
	if before.Status == after.Status {
		return
	}

	if actor.IsAdmin() && actor.ID != after.UserID {
		rc.notifier.NotifyUser(ctx, after.UserID,
			fmt.Sprintf("Your rental request has been %s", after.Status),
			models.LocationRentalRequest, after.ID)
		return
	}

	if after.Status == models.RentalStatusCancelled && actor.ID == after.UserID {
		rc.notifier.NotifyAdmins(ctx,
			fmt.Sprintf("Rental request from %s has been cancelled", after.CustomerName),
			models.LocationRentalRequest, after.ID)
	}
}

// ensureAvailable re-runs the overlap query for the car and window and
// converts a hit into ErrConflict.
func (rc *RentalController) ensureAvailable(ctx context.Context, carID primitive.ObjectID, start, end time.Time, excludeID *primitive.ObjectID) error {
	overlap, err := rc.rentals.HasOverlap(ctx, carID, start, end, excludeID)
	if err != nil {
		return err
	}
	if overlap {
		return services.ErrConflict
	}
	return nil
}

func (rc *RentalController) availabilityError(c echo.Context, err error) error {
	if errors.Is(err, services.ErrConflict) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Car is already rented for this period",
		})
	}
	return c.JSON(http.StatusInternalServerError, models.Response{
		Success: false,
		Message: "Error checking car availability",
	})
}

func (rc *RentalController) transitionError(c echo.Context, err error) error {
	switch {
	case services.IsForbidden(err):
		var fe *services.ForbiddenError
		errors.As(err, &fe)
		return c.JSON(http.StatusForbidden, models.Response{
			Success: false,
			Message: fe.Reason,
		})
	case errors.Is(err, services.ErrInvalidDateRange):
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "End date must be after start date",
		})
	case errors.Is(err, services.ErrInvalidStatus):
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid rental status",
		})
	default:
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Failed to update rental request",
		})
	}
}

// expandCars joins the referenced car documents into the listing. The join
// is explicit: callers opt in with ?expand=car and get the RentalWithCar
// shape, never a reference that is sometimes an object.
func (rc *RentalController) expandCars(ctx context.Context, rentals []models.RentalRequest) ([]models.RentalWithCar, error) {
	carIDs := make([]primitive.ObjectID, 0, len(rentals))
	seen := make(map[primitive.ObjectID]struct{}, len(rentals))
	for _, rental := range rentals {
		if _, ok := seen[rental.CarID]; !ok {
			seen[rental.CarID] = struct{}{}
			carIDs = append(carIDs, rental.CarID)
		}
	}

	carsByID := make(map[primitive.ObjectID]models.Car, len(carIDs))
	if len(carIDs) > 0 {
		cursor, err := config.GetCollection(rc.db, "cars").Find(ctx, bson.M{"_id": bson.M{"$in": carIDs}})
		if err != nil {
			return nil, err
		}
		defer cursor.Close(ctx)

		var cars []models.Car
		if err := cursor.All(ctx, &cars); err != nil {
			return nil, err
		}
		for _, car := range cars {
			carsByID[car.ID] = car
		}
	}

	expanded := make([]models.RentalWithCar, len(rentals))
	for i, rental := range rentals {
		expanded[i] = models.RentalWithCar{RentalRequest: rental}
		if car, ok := carsByID[rental.CarID]; ok {
			carCopy := car
			expanded[i].Car = &carCopy
		}
	}
	return expanded, nil
}
