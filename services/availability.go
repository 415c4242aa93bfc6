package services

import (
	"time"

	"github.com/ale-zgn/projet-semestriel/models"
)

// Overlaps reports whether the two date ranges share at least one day.
// Boundaries are inclusive: a rental ending the day another begins is a
// conflict, ranges on adjacent days are not.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}

// ValidateDateRange checks the end > start invariant shared by rental
// creation and date edits.
func ValidateDateRange(start, end time.Time) error {
	if !end.After(start) {
		return ErrInvalidDateRange
	}
	return nil
}

// EffectiveRange merges a partial date patch over an existing rental and
// returns the range the update would leave in place.
func EffectiveRange(existing *models.RentalRequest, patch *models.UpdateRentalRequest) (time.Time, time.Time) {
	start := existing.StartDate
	end := existing.EndDate
	if patch.StartDate != nil {
		start = *patch.StartDate
	}
	if patch.EndDate != nil {
		end = *patch.EndDate
	}
	return start, end
}
