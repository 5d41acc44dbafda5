package graph

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"bitbucket.org/mmdatafocus/fama_reports/models/reports"
	"github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

//go:embed schema.graphqls
var schemaSource string

var parsedSchema = gqlparser.MustLoadSchema(&ast.Source{Name: "schema.graphqls", Input: schemaSource})

// Error codes reported in the extensions of a field error.
const (
	CodeBadUserInput = "BAD_USER_INPUT"
	CodeNotFound     = "NOT_FOUND"
	CodeInternal     = "INTERNAL_SERVER_ERROR"
)

var errIntrospectionDisabled = errors.New("introspection is disabled")

type Config struct {
	Resolvers *Resolver
}

type executableSchema struct {
	resolvers *Resolver
}

// NewExecutableSchema serves the report queries over the schema in schema.graphqls.
func NewExecutableSchema(cfg Config) graphql.ExecutableSchema {
	return &executableSchema{resolvers: cfg.Resolvers}
}

func (e *executableSchema) Schema() *ast.Schema {
	return parsedSchema
}

func (e *executableSchema) Complexity(typeName, field string, childComplexity int, rawArgs map[string]interface{}) (int, bool) {
	return 0, false
}

func (e *executableSchema) Exec(ctx context.Context) graphql.ResponseHandler {
	opCtx := graphql.GetOperationContext(ctx)
	first := true

	return func(ctx context.Context) *graphql.Response {
		if !first {
			return nil
		}
		first = false

		if opCtx.Operation.Operation != ast.Query {
			return graphql.ErrorResponse(ctx, "unsupported GraphQL operation %q", opCtx.Operation.Operation)
		}
		ec := executionContext{opCtx: opCtx, resolvers: e.resolvers}
		ec.query(ctx, opCtx.Operation.SelectionSet)
		return &graphql.Response{Data: ec.buf.Bytes(), Errors: ec.errors}
	}
}

// object is a resolved GraphQL object: field name to value, plus its __typename.
type object map[string]interface{}

type executionContext struct {
	opCtx     *graphql.OperationContext
	resolvers *Resolver
	buf       bytes.Buffer
	errors    gqlerror.List
}

func (ec *executionContext) query(ctx context.Context, sel ast.SelectionSet) {
	fields := graphql.CollectFields(ec.opCtx, sel, []string{"Query"})
	q := ec.resolvers.Query()

	ec.buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			ec.buf.WriteByte(',')
		}
		ec.writeKey(f.Alias)

		var (
			v   interface{}
			err error
		)
		switch f.Name {
		case "__typename":
			v = "Query"
		case "__schema", "__type":
			err = errIntrospectionDisabled
		case "reports":
			var defs []*reports.Definition
			if defs, err = q.Reports(ctx); err == nil {
				v = marshalDefinitions(defs)
			}
		case "report":
			args := f.ArgumentMap(ec.opCtx.Variables)
			name, _ := args["name"].(string)
			var result *reports.ReportResult
			if result, err = q.Report(ctx, name, filterArgs(args["filters"])); err == nil {
				v = marshalReportResult(result)
			}
		default:
			err = fmt.Errorf("unknown field %q", f.Name)
		}
		if err != nil {
			ec.errors = append(ec.errors, fieldError(err, ast.Path{ast.PathName(f.Alias)}))
			ec.buf.WriteString("null")
			continue
		}
		ec.writeValue(v, f.Selections)
	}
	ec.buf.WriteByte('}')
}

func (ec *executionContext) writeKey(key string) {
	b, _ := json.Marshal(key)
	ec.buf.Write(b)
	ec.buf.WriteByte(':')
}

func (ec *executionContext) writeValue(v interface{}, sel ast.SelectionSet) {
	switch v := v.(type) {
	case nil:
		ec.buf.WriteString("null")
	case object:
		if v == nil {
			ec.buf.WriteString("null")
			return
		}
		ec.writeObject(v, sel)
	case []object:
		ec.buf.WriteByte('[')
		for i, o := range v {
			if i > 0 {
				ec.buf.WriteByte(',')
			}
			ec.writeObject(o, sel)
		}
		ec.buf.WriteByte(']')
	default:
		b, err := json.Marshal(v)
		if err != nil {
			ec.buf.WriteString("null")
			return
		}
		ec.buf.Write(b)
	}
}

// writeObject emits the selected fields of o in selection order.
func (ec *executionContext) writeObject(o object, sel ast.SelectionSet) {
	typeName, _ := o["__typename"].(string)
	fields := graphql.CollectFields(ec.opCtx, sel, []string{typeName})

	ec.buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			ec.buf.WriteByte(',')
		}
		ec.writeKey(f.Alias)
		ec.writeValue(o[f.Name], f.Selections)
	}
	ec.buf.WriteByte('}')
}

func fieldError(err error, path ast.Path) *gqlerror.Error {
	code := CodeInternal
	switch {
	case errors.Is(err, reports.ErrInvalidFilter), errors.Is(err, errIntrospectionDisabled):
		code = CodeBadUserInput
	case errors.Is(err, reports.ErrReportNotFound):
		code = CodeNotFound
	}
	return &gqlerror.Error{
		Err:        err,
		Message:    err.Error(),
		Path:       path,
		Extensions: map[string]interface{}{"code": code},
	}
}

// filterArgs keeps the string members of a ReportFilters input.
func filterArgs(v interface{}) map[string]string {
	raw := map[string]string{}
	m, ok := v.(map[string]interface{})
	if !ok {
		return raw
	}
	for k, val := range m {
		if s, ok := val.(string); ok {
			raw[k] = s
		}
	}
	return raw
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func marshalDefinitions(defs []*reports.Definition) []object {
	out := make([]object, 0, len(defs))
	for _, def := range defs {
		filters := make([]object, 0, len(def.Filters))
		for _, f := range def.Filters {
			var options interface{}
			if len(f.Options) > 0 {
				options = f.Options
			}
			filters = append(filters, object{
				"__typename": "FilterField",
				"fieldname":  f.FieldName,
				"label":      f.Label,
				"fieldtype":  string(f.FieldType),
				"options":    options,
				"reqd":       f.Required,
				"default":    nullable(f.Default),
			})
		}
		out = append(out, object{
			"__typename": "ReportDefinition",
			"key":        def.Key,
			"title":      def.Title,
			"filters":    filters,
		})
	}
	return out
}

func marshalReportResult(r *reports.ReportResult) object {
	if r == nil {
		return nil
	}
	columns := make([]object, 0, len(r.Columns))
	for _, c := range r.Columns {
		columns = append(columns, object{
			"__typename": "Column",
			"label":      c.Label,
			"fieldname":  c.FieldName,
			"fieldtype":  string(c.FieldType),
			"options":    nullable(c.Options),
			"width":      c.Width,
		})
	}
	rows := r.Result
	if rows == nil {
		rows = []reports.Row{}
	}
	return object{
		"__typename": "ReportResult",
		"columns":    columns,
		"result":     rows,
	}
}
