// ABOUTME: Role capabilities derived from the signed-in user's type
// ABOUTME: The one place views and the shell ask what a user may do

package session

import "github.com/2389/gigboard/internal/model"

// Capabilities gate rendering only. The server enforces authorization.
type Capabilities struct {
	Authenticated bool
	Employer      bool
	Worker        bool
}

// CapabilitiesFor derives capabilities from u, which may be nil.
func CapabilitiesFor(u *model.User) Capabilities {
	if u == nil {
		return Capabilities{}
	}
	return Capabilities{
		Authenticated: true,
		Employer:      u.UserType == model.UserTypeEmployer,
		Worker:        u.UserType == model.UserTypeWorker,
	}
}
