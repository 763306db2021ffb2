// Package listing retrieves pending service orders by replaying the portal's
// JSF/PrimeFaces AJAX contract over plain HTTP. A full browser is unnecessary
// for read-only listing; the server-rendered framework's partial-update
// protocol is deterministic enough to replay with raw requests.
package listing

import (
	"context"
	"errors"

	"github.com/caesb-automation/baixa/internal/session"
)

// ErrProtocol reports that the tokens required by the portal's AJAX contract
// could not be located in a server response.
var ErrProtocol = errors.New("required portal tokens not found")

// System defines the public contract for listing operations.
type System interface {
	ListPending(ctx context.Context, bundle *session.Bundle) ([]string, error)
}
