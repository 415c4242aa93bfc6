package services

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ale-zgn/projet-semestriel/models"
)

// AuthorizeTransition decides whether the actor may apply the patch to the
// rental. Admins may perform any transition among valid statuses and are the
// only actors allowed to move dates. A non-admin requester may do exactly one
// thing: cancel their own pending or approved request.
func AuthorizeTransition(role string, actorID primitive.ObjectID, rental *models.RentalRequest, patch *models.UpdateRentalRequest) error {
	if patch.Status != nil && !models.ValidRentalStatus(*patch.Status) {
		return ErrInvalidStatus
	}

	if role != models.RoleAdmin {
		if rental.UserID != actorID {
			return Forbidden("not the owner of this rental request")
		}
		if fields := patch.ChangedFields(); len(fields) != 1 || fields[0] != "status" {
			return Forbidden("only the status field may be changed")
		}
		if *patch.Status != models.RentalStatusCancelled {
			return Forbidden("only cancellation is allowed")
		}
		if rental.Status != models.RentalStatusPending && rental.Status != models.RentalStatusApproved {
			return Forbidden("cannot cancel a rental request in status %q", rental.Status)
		}
		return nil
	}

	if patch.TouchesDates() {
		start, end := EffectiveRange(rental, patch)
		if err := ValidateDateRange(start, end); err != nil {
			return err
		}
	}
	return nil
}

// RequiresConflictCheck reports whether applying the patch must re-run the
// overlap query: either end of the range moves, or the patch promotes the
// request into the approved state the no-overlap invariant guards. A
// status-only approval still competes for the car's dates.
func RequiresConflictCheck(rental *models.RentalRequest, patch *models.UpdateRentalRequest) bool {
	if patch.TouchesDates() {
		return true
	}
	return patch.Status != nil &&
		*patch.Status == models.RentalStatusApproved &&
		rental.Status != models.RentalStatusApproved
}
