package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Relay outcome label values.
const (
	outcomeForwarded  = "forwarded"
	outcomeFallback   = "fallback"
	outcomeNoMapping  = "no_mapping"
	outcomeDropped    = "dropped"
	outcomeAckedLocal = "acked_local"
)

var (
	inboundEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "transbridge_inbound_events_total",
		Help: "Inbound platform events by origin platform and event kind.",
	}, []string{"platform", "kind"})

	relays = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "transbridge_relays_total",
		Help: "Message relay attempts by origin platform and outcome.",
	}, []string{"platform", "outcome"})

	translationFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "transbridge_translation_fallbacks_total",
		Help: "Translations degraded to the original text after a provider failure.",
	})

	autoMappings = promauto.NewCounter(prometheus.CounterOpts{
		Name: "transbridge_auto_mappings_total",
		Help: "User mappings created by profile-similarity auto-mapping.",
	})
)
