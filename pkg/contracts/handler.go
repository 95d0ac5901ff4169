package contracts

import (
	"context"

	"github.com/julienschmidt/httprouter"
)

type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

// Worker is a long running background process started next to the HTTP server.
// Run blocks until ctx is canceled.
type Worker interface {
	Name() string
	Run(ctx context.Context) error
}
