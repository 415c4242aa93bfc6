package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidRentalStatus(t *testing.T) {
	for _, status := range []string{"pending", "approved", "completed", "rejected", "cancelled"} {
		assert.True(t, ValidRentalStatus(status), status)
	}
	assert.False(t, ValidRentalStatus(""))
	assert.False(t, ValidRentalStatus("archived"))
	assert.False(t, ValidRentalStatus("Pending"))
}

func TestUpdateRentalRequestChangedFields(t *testing.T) {
	status := RentalStatusCancelled
	notes := "changed my mind"
	start := time.Now()

	empty := UpdateRentalRequest{}
	assert.Empty(t, empty.ChangedFields())
	assert.False(t, empty.TouchesDates())

	statusOnly := UpdateRentalRequest{Status: &status}
	assert.Equal(t, []string{"status"}, statusOnly.ChangedFields())
	assert.False(t, statusOnly.TouchesDates())

	mixed := UpdateRentalRequest{Status: &status, StartDate: &start, Notes: &notes}
	assert.ElementsMatch(t, []string{"status", "startDate", "notes"}, mixed.ChangedFields())
	assert.True(t, mixed.TouchesDates())
}
