package contracts

import "github.com/julienschmidt/httprouter"

// Handler is anything that can mount routes on a service router.
type Handler interface {
	RegisterRoutes(router *httprouter.Router)
}

// Worker is a background job tied to the service lifecycle: started
// after the server comes up, stopped during graceful shutdown.
type Worker interface {
	Start()
	Stop()
}
