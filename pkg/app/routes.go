package app

import (
	"medbook/pkg/contracts"

	"github.com/julienschmidt/httprouter"
)

// Handlers mounts several route groups on the same router.
type Handlers []contracts.Handler

func (hs Handlers) RegisterRoutes(router *httprouter.Router) {
	for _, h := range hs {
		h.RegisterRoutes(router)
	}
}
