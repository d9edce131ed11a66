package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
)

// stubStrategy is a configurable strategy for orchestrator tests.
type stubStrategy struct {
	name     string
	claims   func(domain.Payload, string) bool
	entities []domain.Product
	err      error
	panicMsg string
	calls    int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) CanHandle(p domain.Payload, url string) bool {
	if s.claims == nil {
		return true
	}
	return s.claims(p, url)
}

func (s *stubStrategy) Extract(domain.Payload, string, string) ([]domain.Product, error) {
	s.calls++
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	return s.entities, s.err
}

func urlContains(sub string) func(domain.Payload, string) bool {
	return func(_ domain.Payload, url string) bool { return strings.Contains(url, sub) }
}

func TestOrchestrator_FirstClaimWins(t *testing.T) {
	first := &stubStrategy{name: "A", claims: urlContains("shop"), entities: []domain.Product{{ProductID: "a"}}}
	second := &stubStrategy{name: "B", entities: []domain.Product{{ProductID: "b"}}}
	fallback := &stubStrategy{name: "Generic"}

	o := NewOrchestrator[domain.Product](fallback, first, second)
	result := o.Extract(domain.Payload{}, "https://shop.test", "job")

	assert.Equal(t, "A", result.Metadata.StrategyUsed)
	require.Len(t, result.Entities, 1)
	assert.Equal(t, "a", result.Entities[0].ProductID)
	assert.Equal(t, 0, second.calls)
	assert.Equal(t, 0, fallback.calls)
}

func TestOrchestrator_FallbackWhenUnclaimed(t *testing.T) {
	site := &stubStrategy{name: "Site", claims: urlContains("site.test")}
	fallback := &stubStrategy{name: "Generic", entities: []domain.Product{{ProductID: "x"}, {ProductID: "y"}}}

	o := NewOrchestrator[domain.Product](fallback, site)
	result := o.Extract(domain.Payload{}, "https://other.test", "")

	assert.Equal(t, "Generic", result.Metadata.StrategyUsed)
	assert.Equal(t, 2, result.Metadata.TotalExtracted)
	assert.Equal(t, "https://other.test", result.Metadata.Source)
	assert.False(t, result.Failed())
}

func TestOrchestrator_StrategyError(t *testing.T) {
	o := NewOrchestrator[domain.Product](&stubStrategy{name: "Generic", err: errors.New("bad shape")})

	result := o.Extract(domain.Payload{}, "", "")

	assert.NotNil(t, result.Entities)
	assert.Empty(t, result.Entities)
	assert.Equal(t, 0, result.Metadata.TotalExtracted)
	assert.Equal(t, []string{"bad shape"}, result.Metadata.Errors)
	assert.Equal(t, "Generic", result.Metadata.StrategyUsed)
}

func TestOrchestrator_RecoversPanics(t *testing.T) {
	boom := &stubStrategy{name: "Boom", panicMsg: "index out of range"}
	o := NewOrchestrator[domain.Product](&stubStrategy{name: "Generic"}, boom)

	var result domain.ExtractionResult[domain.Product]
	require.NotPanics(t, func() {
		result = o.Extract(domain.Payload{}, "", "")
	})

	assert.Empty(t, result.Entities)
	assert.Equal(t, []string{"index out of range"}, result.Metadata.Errors)
}

func TestOrchestrator_ClaimsIgnoresFallback(t *testing.T) {
	site := &stubStrategy{name: "Site", claims: urlContains("site.test")}
	o := NewOrchestrator[domain.Product](&stubStrategy{name: "Generic"}, site)

	assert.True(t, o.Claims(domain.Payload{}, "https://site.test/a"))
	assert.False(t, o.Claims(domain.Payload{}, "https://else.test"))

	panicky := &stubStrategy{name: "P", claims: func(domain.Payload, string) bool { panic("nope") }}
	assert.False(t, NewOrchestrator[domain.Product](nil, panicky).Claims(domain.Payload{}, ""))
}

func TestOrchestrator_NoStrategies(t *testing.T) {
	result := NewOrchestrator[domain.Product](nil).Extract(domain.Payload{}, "", "")

	assert.True(t, result.Failed())
	assert.Equal(t, []string{"no extraction strategy registered"}, result.Metadata.Errors)
}

func TestOrchestrator_RegisterAppends(t *testing.T) {
	o := NewOrchestrator[domain.Product](&stubStrategy{name: "Generic"}, &stubStrategy{name: "A", claims: urlContains("a")})
	o.Register(&stubStrategy{name: "B", claims: urlContains("b")})

	assert.Equal(t, []string{"A", "B", "Generic"}, o.Strategies())
	assert.Equal(t, "B", o.Extract(domain.Payload{}, "b", "").Metadata.StrategyUsed)
}

func TestOrchestrator_Metadata(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	o := NewOrchestrator[domain.Product](&stubStrategy{name: "Generic"})
	o.now = func() time.Time { return fixed }

	result := o.Extract(domain.NewPayload([]byte(`[]`)), "https://x.test", "j")

	assert.Equal(t, fixed, result.Metadata.ExtractedAt)
	assert.NotNil(t, result.Entities)
}
