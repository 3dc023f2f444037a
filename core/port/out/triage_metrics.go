package out

import "time"

// MetricsSink receives pipeline counters and timings. Injected into
// the services that emit metrics so tests can pass a no-op or a
// recording fake.
type MetricsSink interface {
	Incr(name string)
	Observe(name string, d time.Duration)
}

// Metric names emitted by the pipeline
const (
	MetricTicketsReceived      = "tickets_received"
	MetricTicketsDeduplicated  = "tickets_deduplicated"
	MetricResolvedDeterminstic = "resolved_deterministic"
	MetricEscalatedToAI        = "escalated_to_ai"
	MetricAIFallbackFailed     = "ai_fallback_failed"
	MetricUnresolvable         = "unresolvable"
	MetricDraftsGenerated      = "drafts_generated"
	MetricNotifyRetries        = "notify_retries"
	MetricNotifyExhausted      = "notify_exhausted"
	MetricPipelineLatency      = "pipeline_latency"
	MetricLLMLatency           = "llm_latency"
)
