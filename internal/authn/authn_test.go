package authn

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionCapabilities(t *testing.T) {
	tests := []struct {
		role        string
		loggedIn    bool
		manageData  bool
		manageUsers bool
	}{
		{RoleSuper, true, true, true},
		{RoleAdmin, true, true, true},
		{RoleUser, true, false, false},
		{"", false, false, false},
	}
	for _, tt := range tests {
		s := Session{Username: "someone", Role: tt.role}
		if tt.role == "" {
			s = Session{}
		}
		assert.Equal(t, tt.loggedIn, s.LoggedIn(), "role %q", tt.role)
		assert.Equal(t, tt.manageData, s.CanManageData(), "role %q", tt.role)
		assert.Equal(t, tt.manageUsers, s.CanManageUsers(), "role %q", tt.role)
	}
}

func TestContextSwap(t *testing.T) {
	c := NewContext(Session{})
	assert.False(t, c.Current().LoggedIn())

	c.Set(Session{Username: "admin", Role: RoleAdmin})
	assert.Equal(t, "admin", c.Current().Username)

	c.Set(Session{})
	assert.False(t, c.Current().LoggedIn())
}
