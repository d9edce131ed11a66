// Package generic provides the unconditional fallback strategies: they
// claim every payload and map records using the widest set of common
// field aliases. They must be registered as an orchestrator's fallback,
// never ahead of a site-specific strategy.
package generic

// Name is reported as strategyUsed by both fallbacks.
const Name = "Generic"
