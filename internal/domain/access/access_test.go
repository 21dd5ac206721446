package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(value string) *string {
	return &value
}

func TestCanViewContact(t *testing.T) {
	manager := strPtr("manager-1")

	cases := []struct {
		name    string
		actor   Actor
		manager *string
		want    bool
	}{
		{"admin sees everything", Actor{ID: "a", Role: RoleAdmin}, nil, true},
		{"manager of grid", Actor{ID: "manager-1", Role: RoleGridManager}, manager, true},
		{"manager of another grid", Actor{ID: "manager-2", Role: RoleGridManager}, manager, false},
		{"manager on unmanaged grid", Actor{ID: "manager-1", Role: RoleGridManager}, nil, false},
		{"volunteer with matching id", Actor{ID: "manager-1", Role: RoleVolunteer}, manager, false},
		{"guest", Guest(), manager, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanViewContact(tc.actor, tc.manager))
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	assert.NoError(t, RequireAdmin(Actor{ID: "a", Role: RoleAdmin}))
	assert.ErrorIs(t, RequireAdmin(Actor{ID: "m", Role: RoleGridManager}), ErrForbidden)
	assert.ErrorIs(t, RequireAdmin(Guest()), ErrForbidden)
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole(" Grid_Manager ")
	assert.True(t, ok)
	assert.Equal(t, RoleGridManager, role)

	role, ok = ParseRole("root")
	assert.False(t, ok)
	assert.Equal(t, RoleGuest, role)
}

func TestRedact(t *testing.T) {
	assert.Equal(t, RedactedPlaceholder, Redact("0912-345-678"))
	assert.Equal(t, "", Redact(""))
	assert.Equal(t, "  ", Redact("  "))
}

func TestActorID(t *testing.T) {
	assert.Nil(t, Guest().ActorID())
	id := Actor{ID: "u-1", Role: RoleVolunteer}.ActorID()
	if assert.NotNil(t, id) {
		assert.Equal(t, "u-1", *id)
	}
}
