package reconciler

import (
	"context"

	"github.com/ynhstate/ynhstate/app"
)

// Reconciler converges one app towards its declared state in a single
// synchronous pass. In check mode the identical plan is computed and reported
// without executing anything.
type Reconciler interface {
	Reconcile(ctx context.Context, desired app.DesiredState, checkMode bool) (app.Outcome, error)
}
