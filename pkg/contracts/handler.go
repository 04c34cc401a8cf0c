package contracts

import "github.com/julienschmidt/httprouter"

// Handler is implemented by anything that can attach its routes to the
// service router.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}
