// Package session performs the interactive portal login and produces the
// authentication bundle the listing client and closure workflow act with.
package session

import "context"

// Bundle is the portable authentication context extracted from one
// interactive login: cookies plus the two JSF flow tokens the portal
// requires. It is immutable; the portal invalidating the underlying server
// session is detected downstream, never predicted here.
type Bundle struct {
	Cookies   map[string]string
	Execution string
	ViewState string
}

// System defines the public contract for session operations.
type System interface {
	Login(ctx context.Context) (*Bundle, error)
}
