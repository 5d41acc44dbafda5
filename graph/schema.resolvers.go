package graph

import (
	"context"

	"bitbucket.org/mmdatafocus/fama_reports/models/reports"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Reports is the resolver for the reports field.
func (r *queryResolver) Reports(ctx context.Context) ([]*reports.Definition, error) {
	return reports.List(), nil
}

// Report is the resolver for the report field.
func (r *queryResolver) Report(ctx context.Context, name string, filters map[string]string) (*reports.ReportResult, error) {
	ctx, span := r.Tracer.Start(ctx, "graph.report", trace.WithAttributes(attribute.String("report.name", name)))
	defer span.End()

	parsed, err := reports.ParseFilters(filters)
	if err != nil {
		return nil, err
	}
	return reports.Execute(ctx, name, parsed)
}
