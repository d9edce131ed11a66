package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
	"github.com/KKogaa/extracto-storage-service/internal/core/ports/driven"
	"github.com/KKogaa/extracto-storage-service/internal/core/ports/driving"
)

// Ensure Orchestrator implements the interface.
var (
	_ driving.Extractor[domain.Product] = (*Orchestrator[domain.Product])(nil)
	_ driving.Extractor[domain.Listing] = (*Orchestrator[domain.Listing])(nil)
)

// Orchestrator selects and runs extraction strategies for one entity kind.
//
// Strategies are tried in registration order and the first whose CanHandle
// returns true wins; registration order is therefore priority. Site-specific
// strategies must be registered before any strategy whose predicate could
// also match their payloads. When nothing claims a payload the fallback,
// which accepts everything, runs.
type Orchestrator[T any] struct {
	mu         sync.RWMutex
	strategies []driven.Strategy[T]
	fallback   driven.Strategy[T]
	now        func() time.Time
}

// NewOrchestrator creates an orchestrator with the given fallback and
// strategies, in priority order.
func NewOrchestrator[T any](fallback driven.Strategy[T], strategies ...driven.Strategy[T]) *Orchestrator[T] {
	return &Orchestrator[T]{
		strategies: append([]driven.Strategy[T](nil), strategies...),
		fallback:   fallback,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Register appends a strategy with the lowest priority so far.
func (o *Orchestrator[T]) Register(s driven.Strategy[T]) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.strategies = append(o.strategies, s)
}

// Strategies returns the strategy names in priority order, fallback last.
func (o *Orchestrator[T]) Strategies() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	names := make([]string, 0, len(o.strategies)+1)
	for _, s := range o.strategies {
		names = append(names, s.Name())
	}
	if o.fallback != nil {
		names = append(names, o.fallback.Name())
	}
	return names
}

// Claims reports whether a registered strategy, not counting the
// fallback, claims the payload.
// A predicate that panics counts as not claiming.
func (o *Orchestrator[T]) Claims(payload domain.Payload, url string) (claimed bool) {
	defer func() {
		if recover() != nil {
			claimed = false
		}
	}()
	return o.selectStrategy(payload, url, false) != nil
}

// Extract runs the selected strategy. It never returns an error or panics:
// failures become an empty entity list with Metadata.Errors populated.
func (o *Orchestrator[T]) Extract(payload domain.Payload, url, jobID string) (result domain.ExtractionResult[T]) {
	result.Entities = []T{}
	result.Metadata = domain.ExtractionMetadata{
		Source:      url,
		ExtractedAt: o.now(),
	}

	defer func() {
		if r := recover(); r != nil {
			result.Entities = []T{}
			result.Metadata.TotalExtracted = 0
			result.Metadata.Errors = append(result.Metadata.Errors, fmt.Sprintf("%v", r))
		}
	}()

	strategy := o.selectStrategy(payload, url, true)
	if strategy == nil {
		result.Metadata.Errors = []string{"no extraction strategy registered"}
		return result
	}
	result.Metadata.StrategyUsed = strategy.Name()

	entities, err := strategy.Extract(payload, url, jobID)
	if err != nil {
		result.Metadata.Errors = []string{err.Error()}
		return result
	}
	if entities != nil {
		result.Entities = entities
	}
	result.Metadata.TotalExtracted = len(result.Entities)
	return result
}

func (o *Orchestrator[T]) selectStrategy(payload domain.Payload, url string, withFallback bool) driven.Strategy[T] {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, s := range o.strategies {
		if s.CanHandle(payload, url) {
			return s
		}
	}
	if withFallback {
		return o.fallback
	}
	return nil
}
