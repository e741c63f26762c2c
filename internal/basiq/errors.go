package basiq

import (
	"errors"
	"fmt"
)

// ErrConfig indicates required provider configuration is absent. Fatal to
// the operation, never retried.
var ErrConfig = errors.New("missing provider configuration")

// ErrAuth indicates the provider rejected the credential exchange.
var ErrAuth = errors.New("provider rejected auth exchange")

// ProviderError is a non-success status from a provider data endpoint.
// It never carries the request or response body.
type ProviderError struct {
	Status   int
	Endpoint string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider returned %d from %s", e.Status, e.Endpoint)
}
