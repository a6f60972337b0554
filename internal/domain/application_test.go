package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplicationStatusTransitions(t *testing.T) {
	tests := []struct {
		from ApplicationStatus
		to   ApplicationStatus
		ok   bool
	}{
		{ApplicationStatusWaiting, ApplicationStatusAllowed, true},
		{ApplicationStatusWaiting, ApplicationStatusTemporaryAllowed, true},
		{ApplicationStatusWaiting, ApplicationStatusRevoked, true},
		{ApplicationStatusWaiting, ApplicationStatusCancelled, false},
		{ApplicationStatusTemporaryAllowed, ApplicationStatusAllowed, true},
		{ApplicationStatusTemporaryAllowed, ApplicationStatusTemporaryAllowed, false},
		{ApplicationStatusAllowed, ApplicationStatusAllowedCancellationRequested, true},
		{ApplicationStatusAllowed, ApplicationStatusRejected, false},
		{ApplicationStatusAllowedCancellationRequested, ApplicationStatusAllowed, true},
		{ApplicationStatusAllowedCancellationRequested, ApplicationStatusCancelled, true},
		{ApplicationStatusRejected, ApplicationStatusAllowed, false},
		{ApplicationStatusCancelled, ApplicationStatusAllowed, false},
		{ApplicationStatusRevoked, ApplicationStatusWaiting, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.ok, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestApplicationTransitionTo(t *testing.T) {
	application := &Application{Status: ApplicationStatusWaiting}

	require.NoError(t, application.TransitionTo(ApplicationStatusAllowed))
	assert.Equal(t, ApplicationStatusAllowed, application.Status)

	err := application.TransitionTo(ApplicationStatusRevoked)
	require.ErrorIs(t, err, ErrInvalidStatusTransition)
	assert.Equal(t, ApplicationStatusAllowed, application.Status)
}

func TestApplicationStatusPredicates(t *testing.T) {
	assert.True(t, ApplicationStatusWaiting.IsWaiting())
	assert.True(t, ApplicationStatusTemporaryAllowed.IsWaiting())
	assert.False(t, ApplicationStatusAllowed.IsWaiting())

	for _, status := range []ApplicationStatus{ApplicationStatusRevoked, ApplicationStatusRejected, ApplicationStatusCancelled} {
		assert.True(t, status.IsFinal(), status)
	}
	assert.False(t, ApplicationStatusAllowed.IsFinal())

	assert.True(t, ApplicationStatusAllowedCancellationRequested.IsValid())
	assert.False(t, ApplicationStatus("UNKNOWN").IsValid())
}

func TestVacationTypeRules(t *testing.T) {
	var missing *VacationType
	assert.False(t, missing.IsOvertime())
	assert.False(t, missing.RequiresReason())

	assert.True(t, (&VacationType{Category: VacationCategoryOvertime}).IsOvertime())
	assert.True(t, (&VacationType{Category: VacationCategorySpecialLeave}).RequiresReason())
	assert.True(t, (&VacationType{Category: VacationCategoryUnpaidLeave}).RequiresReason())
	assert.False(t, (&VacationType{Category: VacationCategoryHoliday}).RequiresReason())
}
