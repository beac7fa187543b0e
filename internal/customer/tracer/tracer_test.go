package tracer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pk-mender/desafiojr/internal/customer/tracer"
)

func TestNoopTracer(t *testing.T) {
	ctx := context.Background()
	newCtx, span := tracer.NewNoop().Start(ctx, tracer.SpanListLoad, tracer.Int(tracer.AttrPage, 1))

	assert.Equal(t, ctx, newCtx)
	require.NotNil(t, span)
	span.SetAttributes(tracer.Bool(tracer.AttrCacheHit, true))
	span.AddEvent(tracer.EventAuditEmitted)
	span.End(errors.New("ignored"))
}

func TestRecorder(t *testing.T) {
	rec := tracer.NewRecorder()

	_, span := rec.Start(context.Background(), tracer.SpanGatewayCall, tracer.String(tracer.AttrOperation, "list"))
	span.SetAttributes(tracer.Duration("elapsed", 1500*time.Millisecond))
	span.AddEvent(tracer.EventDuplicateFound)
	boom := errors.New("boom")
	span.End(boom)

	_, other := rec.Start(context.Background(), tracer.SpanListLoad)
	other.End(nil)

	spans := rec.Named(tracer.SpanGatewayCall)
	require.Len(t, spans, 1)
	assert.Equal(t, "list", spans[0].Attrs[tracer.AttrOperation])
	assert.Equal(t, int64(1500), spans[0].Attrs["elapsed"])
	assert.Equal(t, []string{tracer.EventDuplicateFound}, spans[0].Events)
	assert.Equal(t, boom, spans[0].Err)
	assert.Len(t, rec.Spans(), 2)
}

func TestHashCPF(t *testing.T) {
	assert.Empty(t, tracer.HashCPF(""))
	assert.Len(t, tracer.HashCPF("529.982.247-25"), 16)
	assert.Equal(t, tracer.HashCPF("52998224725"), tracer.HashCPF("529.982.247-25"))
}

func TestOTelTracerWithGlobalProvider(t *testing.T) {
	tr := tracer.NewOTel()
	_, span := tr.Start(context.Background(), tracer.SpanFormSubmit,
		tracer.String(tracer.AttrMode, "create"),
		tracer.Int(tracer.AttrTotal, 3),
	)
	span.AddEvent(tracer.EventAuditEmitted)
	span.End(nil)
}
