package health

import "context"

// Pinger is the primary store. A failed ping degrades the whole service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Checker probes one optional dependency, reported under its registered name.
type Checker interface {
	HealthCheck(ctx context.Context) error
}
