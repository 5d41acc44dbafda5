package graph

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/fama_reports/config"
	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/99designs/gqlgen/graphql/handler/extension"
	"github.com/99designs/gqlgen/graphql/handler/transport"
	"github.com/ravilushqa/otelgqlgen"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
)

const apqPrefix = "apq:"

// Cache keeps persisted query texts in redis.
type Cache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewCache(client redis.UniversalClient, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) Add(ctx context.Context, key string, value interface{}) {
	c.client.Set(ctx, apqPrefix+key, value, c.ttl)
}

func (c *Cache) Get(ctx context.Context, key string) (interface{}, bool) {
	s, err := c.client.Get(ctx, apqPrefix+key).Result()
	if err != nil {
		return struct{}{}, false
	}
	return s, true
}

// NewHandler serves /query. Persisted queries are enabled when redis is connected.
func NewHandler() *handler.Server {
	h := handler.New(NewExecutableSchema(Config{Resolvers: &Resolver{
		Tracer: otel.Tracer("fama-reports-graph"),
	}}))
	h.AddTransport(transport.GET{})
	h.AddTransport(transport.POST{})
	h.Use(otelgqlgen.Middleware())
	if rdb := config.GetRedisDB(); rdb != nil {
		h.Use(extension.AutomaticPersistedQuery{Cache: NewCache(rdb, 24*time.Hour)})
	}
	return h
}
