package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ale-zgn/projet-semestriel/models"
)

func strPtr(s string) *string { return &s }

func pendingRental(owner primitive.ObjectID) *models.RentalRequest {
	return &models.RentalRequest{
		ID:        primitive.NewObjectID(),
		UserID:    owner,
		CarID:     primitive.NewObjectID(),
		StartDate: day("2024-06-01"),
		EndDate:   day("2024-06-05"),
		Status:    models.RentalStatusPending,
	}
}

func TestAuthorizeTransitionOwnerCancel(t *testing.T) {
	owner := primitive.NewObjectID()

	t.Run("owner cancels pending request", func(t *testing.T) {
		patch := &models.UpdateRentalRequest{Status: strPtr(models.RentalStatusCancelled)}
		err := AuthorizeTransition(models.RoleUser, owner, pendingRental(owner), patch)
		assert.NoError(t, err)
	})

	t.Run("owner cancels approved request", func(t *testing.T) {
		rental := pendingRental(owner)
		rental.Status = models.RentalStatusApproved
		patch := &models.UpdateRentalRequest{Status: strPtr(models.RentalStatusCancelled)}
		err := AuthorizeTransition(models.RoleUser, owner, rental, patch)
		assert.NoError(t, err)
	})
}

func TestAuthorizeTransitionOwnerRestrictions(t *testing.T) {
	owner := primitive.NewObjectID()

	t.Run("non-owner is rejected", func(t *testing.T) {
		stranger := primitive.NewObjectID()
		patch := &models.UpdateRentalRequest{Status: strPtr(models.RentalStatusCancelled)}
		err := AuthorizeTransition(models.RoleUser, stranger, pendingRental(owner), patch)
		require.Error(t, err)
		assert.True(t, IsForbidden(err))
	})

	t.Run("owner cannot approve own request", func(t *testing.T) {
		patch := &models.UpdateRentalRequest{Status: strPtr(models.RentalStatusApproved)}
		err := AuthorizeTransition(models.RoleUser, owner, pendingRental(owner), patch)
		require.Error(t, err)
		assert.True(t, IsForbidden(err))
	})

	t.Run("owner cannot change other fields", func(t *testing.T) {
		newEnd := day("2024-06-09")
		patch := &models.UpdateRentalRequest{
			Status:  strPtr(models.RentalStatusCancelled),
			EndDate: &newEnd,
		}
		err := AuthorizeTransition(models.RoleUser, owner, pendingRental(owner), patch)
		require.Error(t, err)
		assert.True(t, IsForbidden(err))
	})

	t.Run("owner cannot change notes alone", func(t *testing.T) {
		patch := &models.UpdateRentalRequest{Notes: strPtr("please keep it clean")}
		err := AuthorizeTransition(models.RoleUser, owner, pendingRental(owner), patch)
		require.Error(t, err)
		assert.True(t, IsForbidden(err))
	})

	for _, terminal := range []string{
		models.RentalStatusRejected,
		models.RentalStatusCompleted,
		models.RentalStatusCancelled,
	} {
		t.Run("owner cannot cancel from "+terminal, func(t *testing.T) {
			rental := pendingRental(owner)
			rental.Status = terminal
			patch := &models.UpdateRentalRequest{Status: strPtr(models.RentalStatusCancelled)}
			err := AuthorizeTransition(models.RoleUser, owner, rental, patch)
			require.Error(t, err)
			assert.True(t, IsForbidden(err))
		})
	}
}

func TestAuthorizeTransitionAdmin(t *testing.T) {
	admin := primitive.NewObjectID()
	owner := primitive.NewObjectID()

	t.Run("admin approves someone else's request", func(t *testing.T) {
		patch := &models.UpdateRentalRequest{Status: strPtr(models.RentalStatusApproved)}
		err := AuthorizeTransition(models.RoleAdmin, admin, pendingRental(owner), patch)
		assert.NoError(t, err)
	})

	t.Run("admin reopens a rejected request", func(t *testing.T) {
		rental := pendingRental(owner)
		rental.Status = models.RentalStatusRejected
		patch := &models.UpdateRentalRequest{Status: strPtr(models.RentalStatusPending)}
		err := AuthorizeTransition(models.RoleAdmin, admin, rental, patch)
		assert.NoError(t, err)
	})

	t.Run("admin edits dates and notes together", func(t *testing.T) {
		newEnd := day("2024-06-09")
		patch := &models.UpdateRentalRequest{
			EndDate: &newEnd,
			Notes:   strPtr("extended by phone"),
		}
		err := AuthorizeTransition(models.RoleAdmin, admin, pendingRental(owner), patch)
		assert.NoError(t, err)
	})

	t.Run("admin date move must keep end after start", func(t *testing.T) {
		badStart := day("2024-06-08")
		patch := &models.UpdateRentalRequest{StartDate: &badStart}
		err := AuthorizeTransition(models.RoleAdmin, admin, pendingRental(owner), patch)
		assert.ErrorIs(t, err, ErrInvalidDateRange)
	})

	t.Run("unknown status is rejected for everyone", func(t *testing.T) {
		patch := &models.UpdateRentalRequest{Status: strPtr("archived")}
		err := AuthorizeTransition(models.RoleAdmin, admin, pendingRental(owner), patch)
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})
}

func TestRequiresConflictCheck(t *testing.T) {
	owner := primitive.NewObjectID()
	newStart := day("2024-06-02")

	tests := []struct {
		name     string
		status   string
		patch    models.UpdateRentalRequest
		expected bool
	}{
		{
			// An approval without a date edit still claims the car's window:
			// a second pending request overlapping an approved one must not
			// slip through on a status-only patch.
			name:     "status-only approval of a pending request",
			status:   models.RentalStatusPending,
			patch:    models.UpdateRentalRequest{Status: strPtr(models.RentalStatusApproved)},
			expected: true,
		},
		{
			name:     "approval of a rejected request",
			status:   models.RentalStatusRejected,
			patch:    models.UpdateRentalRequest{Status: strPtr(models.RentalStatusApproved)},
			expected: true,
		},
		{
			name:     "date move",
			status:   models.RentalStatusPending,
			patch:    models.UpdateRentalRequest{StartDate: &newStart},
			expected: true,
		},
		{
			name:   "approval with a date move",
			status: models.RentalStatusPending,
			patch: models.UpdateRentalRequest{
				Status:    strPtr(models.RentalStatusApproved),
				StartDate: &newStart,
			},
			expected: true,
		},
		{
			name:     "re-stating approved on an approved request",
			status:   models.RentalStatusApproved,
			patch:    models.UpdateRentalRequest{Status: strPtr(models.RentalStatusApproved)},
			expected: false,
		},
		{
			name:     "cancellation",
			status:   models.RentalStatusApproved,
			patch:    models.UpdateRentalRequest{Status: strPtr(models.RentalStatusCancelled)},
			expected: false,
		},
		{
			name:     "rejection",
			status:   models.RentalStatusPending,
			patch:    models.UpdateRentalRequest{Status: strPtr(models.RentalStatusRejected)},
			expected: false,
		},
		{
			name:     "notes only",
			status:   models.RentalStatusPending,
			patch:    models.UpdateRentalRequest{Notes: strPtr("weekend trip")},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rental := pendingRental(owner)
			rental.Status = tt.status
			assert.Equal(t, tt.expected, RequiresConflictCheck(rental, &tt.patch))
		})
	}
}

func TestForbiddenError(t *testing.T) {
	err := Forbidden("not the owner of this rental request")
	assert.True(t, IsForbidden(err))
	assert.Contains(t, err.Error(), "not the owner")
	assert.False(t, IsForbidden(ErrInvalidStatus))
}
