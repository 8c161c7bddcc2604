package tracer

import (
	"context"
	"testing"

	"author-be/internal/config"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestInitTracer_DisabledIsNoop(t *testing.T) {
	shutdown := InitTracer(config.TracingConfig{Enabled: false, ServiceName: "author-be"}, "test")
	assert.NoError(t, shutdown(context.Background()))
}

func TestNewResource(t *testing.T) {
	res := newResource("author-be", "staging")

	attrs := make(map[attribute.Key]string)
	for _, kv := range res.Attributes() {
		attrs[kv.Key] = kv.Value.AsString()
	}
	assert.Equal(t, "author-be", attrs["service.name"])
	assert.Equal(t, "staging", attrs["deployment.environment"])
}
