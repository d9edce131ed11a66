// Package extractors wires the built-in strategies into orchestrators.
//
// Registration order is priority: site-specific strategies come first,
// then shape-based ones, and the generic fallback runs only when nothing
// else claims the payload.
package extractors

import (
	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
	"github.com/KKogaa/extracto-storage-service/internal/core/services"
	"github.com/KKogaa/extracto-storage-service/internal/extractors/falabella"
	"github.com/KKogaa/extracto-storage-service/internal/extractors/generic"
	"github.com/KKogaa/extracto-storage-service/internal/extractors/structured"
	"github.com/KKogaa/extracto-storage-service/internal/extractors/urbania"
)

// NewProductOrchestrator returns the commerce orchestrator with every
// built-in product strategy registered.
func NewProductOrchestrator() *services.Orchestrator[domain.Product] {
	o := services.NewOrchestrator[domain.Product](generic.NewProductStrategy())
	o.Register(falabella.New())
	o.Register(structured.NewProductStrategy())
	return o
}

// NewListingOrchestrator returns the real-estate orchestrator with every
// built-in listing strategy registered.
func NewListingOrchestrator() *services.Orchestrator[domain.Listing] {
	o := services.NewOrchestrator[domain.Listing](generic.NewListingStrategy())
	o.Register(urbania.New())
	return o
}
