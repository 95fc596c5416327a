package adapter

import (
	"context"

	"github.com/avetrov/go-idm-core/models"
)

// Dispatcher sends a templated notification to the external email service
// and awaits the outcome. Implementations must be safe for concurrent use:
// both request handlers and the background worker dispatch through the same
// instance.
type Dispatcher interface {
	Dispatch(ctx context.Context, notification models.Notification) error
}
