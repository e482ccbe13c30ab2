package health

import "context"

// DBPinger checks video index availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// ModelChecker checks generation model availability. The model is optional
// infrastructure: its failure degrades transformations but never search.
type ModelChecker interface {
	HealthCheck(ctx context.Context) error
}
