package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventRemaining(t *testing.T) {
	e := &Event{TotalTickets: 10, BookedTickets: 3}
	assert.Equal(t, 7, e.Remaining())
	assert.False(t, e.IsSoldOut())

	e.BookedTickets = 10
	assert.Equal(t, 0, e.Remaining())
	assert.True(t, e.IsSoldOut())

	// Capacity shrunk below bookings.
	e.TotalTickets = 5
	assert.Equal(t, -5, e.Remaining())
	assert.True(t, e.IsSoldOut())
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleOrganizer.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("superuser").Valid())
	assert.False(t, Role("").Valid())
}

func TestOrganizerRequestTransitions(t *testing.T) {
	tests := []struct {
		from, to OrganizerRequestStatus
		want     bool
	}{
		{RequestNone, RequestPending, true},
		{RequestRejected, RequestPending, true},
		{RequestPending, RequestApproved, true},
		{RequestPending, RequestRejected, true},

		{RequestPending, RequestPending, false},
		{RequestApproved, RequestPending, false},
		{RequestNone, RequestApproved, false},
		{RequestNone, RequestRejected, false},
		{RequestRejected, RequestApproved, false},
		{RequestApproved, RequestApproved, false},
		{RequestPending, RequestNone, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestIdentity(t *testing.T) {
	admin := Identity{ID: "a1", Role: RoleAdmin}
	assert.True(t, admin.IsAdmin())
	assert.Equal(t, "a1(admin)", admin.String())

	user := Identity{ID: "u1", Role: RoleUser}
	assert.False(t, user.IsAdmin())
}
