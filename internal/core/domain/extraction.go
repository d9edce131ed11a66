package domain

import "time"

// ExtractionMetadata describes one extraction run.
type ExtractionMetadata struct {
	TotalExtracted int       `json:"totalExtracted"`
	Source         string    `json:"source"`
	ExtractedAt    time.Time `json:"extractedAt"`
	StrategyUsed   string    `json:"strategyUsed,omitempty"`
	Errors         []string  `json:"errors,omitempty"`
}

// ExtractionResult is the output of an extraction run. It is never
// persisted; the store consumes Entities directly.
type ExtractionResult[T any] struct {
	Entities []T               `json:"entities"`
	Metadata ExtractionMetadata `json:"metadata"`
}

// Failed reports whether the run recorded errors.
func (r ExtractionResult[T]) Failed() bool {
	return len(r.Metadata.Errors) > 0
}
