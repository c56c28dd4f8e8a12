package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSetup_DisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := Setup(context.Background(), "", "insurguide", "test")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	require.NoError(t, shutdown(context.Background()))
}

func TestSetup_WithEndpoint(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	shutdown, err := Setup(ctx, "http://127.0.0.1:4318", "insurguide", "test")
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(ctx, "probe")
	require.True(t, span.SpanContext().IsValid())
	span.End()

	// nothing listens on the endpoint; shutdown must still return
	_ = shutdown(ctx)
}
