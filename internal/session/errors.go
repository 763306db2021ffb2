package session

import "errors"

// ErrAuthFailed reports that login did not reach the order-control page,
// meaning invalid credentials or a portal outage.
var ErrAuthFailed = errors.New("login did not reach the order-control page")
