package httpcontext

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/goaltracker/pkg/logger"
)

func TestAttachPropagatesRequestMetadata(t *testing.T) {
	var rc fasthttp.RequestCtx
	rc.Request.Header.Set(HeaderRequestID, "req-7")
	rc.Request.Header.Set(HeaderUserID, "user-1")
	rc.Request.Header.SetUserAgent("tracker-test")

	ctx, cancel := NewAdapter(time.Second).Attach(&rc)
	defer cancel()

	assert.Equal(t, "req-7", appLogger.RequestID(ctx))
	assert.Equal(t, "req-7", string(rc.Response.Header.Peek(HeaderRequestID)))
	assert.Equal(t, "user-1", UserID(ctx))
	assert.Equal(t, "tracker-test", ctx.Value(KeyUserAgent))

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 500*time.Millisecond)
}

func TestAttachGeneratesRequestID(t *testing.T) {
	var rc fasthttp.RequestCtx
	ctx, cancel := NewAdapter(0).Attach(&rc)
	defer cancel()

	reqID := appLogger.RequestID(ctx)
	_, err := uuid.Parse(reqID)
	require.NoError(t, err)
	assert.Equal(t, reqID, string(rc.Response.Header.Peek(HeaderRequestID)))
	assert.Empty(t, UserID(ctx))
	assert.Empty(t, UserID(context.Background()))

	again, cancelAgain := NewAdapter(0).Attach(&rc)
	defer cancelAgain()
	assert.Equal(t, reqID, appLogger.RequestID(again))
}
