// internal/domain/cart/errors.go
package cart

import (
	"errors"
	"fmt"
)

// Failure taxonomy every Store implementation reports through, so the facade
// can react deliberately instead of sniffing console output:
//   - storage corruption/unavailability: recovered silently (empty list), never surfaced
//   - ErrNetwork: exchange never completed; operation abandoned, no retry
//   - ErrUnauthorized: credential rejected; adapter has already evicted it
//   - RemoteError: application-level failure; message is shown verbatim
var (
	// ErrUnauthorized is returned after the backing service rejects the
	// credential. By the time a caller sees it, the credential is evicted and
	// the buyer pointed at the login surface.
	ErrUnauthorized = errors.New("cart: unauthorized")

	// ErrNetwork wraps a transport failure. Persisted state is unchanged.
	ErrNetwork = errors.New("cart: network failure")
)

// RemoteError is an application-level failure reported by the cart service
// (non-2xx with a message body). Message is surfaced to the buyer verbatim.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("cart: remote error status=%d message=%q", e.Status, e.Message)
}
