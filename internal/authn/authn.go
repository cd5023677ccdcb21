// Package authn models the client-side authentication state: the
// current principal's identity and role, held in one read-only context
// object that only the login/logout flows may replace.
package authn

import "sync"

// Role names as issued by the auth service.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
	RoleSuper = "super"
)

// Session is the current principal. The zero value means logged out.
type Session struct {
	Username string
	Role     string
}

// LoggedIn reports whether a principal is present.
func (s Session) LoggedIn() bool { return s.Username != "" }

// CanManageData reports whether the data editor is available to this
// role.
func (s Session) CanManageData() bool {
	return s.Role == RoleAdmin || s.Role == RoleSuper
}

// CanManageUsers reports whether user administration is available to
// this role.
func (s Session) CanManageUsers() bool {
	return s.Role == RoleAdmin || s.Role == RoleSuper
}

// Context holds the session for the lifetime of the process. Views read
// it; only the login and logout flows call Set. This replaces threading
// identity and role flags through every layer.
type Context struct {
	mu sync.RWMutex
	s  Session
}

// NewContext creates a context holding the given session.
func NewContext(s Session) *Context {
	return &Context{s: s}
}

// Current returns the session snapshot.
func (c *Context) Current() Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.s
}

// Set replaces the session. Call sites are the login and logout flows
// and the 401 handler that drops a dead session.
func (c *Context) Set(s Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.s = s
}
