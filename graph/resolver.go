package graph

import (
	"go.opentelemetry.io/otel/trace"
)

// Resolver holds the dependencies of the query resolvers.
type Resolver struct {
	Tracer trace.Tracer
}

func (r *Resolver) Query() *queryResolver { return &queryResolver{r} }

type queryResolver struct{ *Resolver }
