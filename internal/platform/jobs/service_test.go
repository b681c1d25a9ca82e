package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"takehome/internal/domain/tax"
)

type countingReloader struct {
	calls atomic.Int32
	err   error
}

func (r *countingReloader) Reload(context.Context, tax.StoreAPI, int) error {
	r.calls.Add(1)
	return r.err
}

func TestRunNowPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	target := &countingReloader{err: boom}
	svc := New(nil, target, 2023, 0, zaptest.NewLogger(t))

	assert.ErrorIs(t, svc.RunNow(context.Background()), boom)
	assert.Equal(t, int32(1), target.calls.Load())
}

func TestStartSchedulesReloads(t *testing.T) {
	target := &countingReloader{}
	svc := New(nil, target, 2023, 10*time.Millisecond, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)

	require.Eventually(t, func() bool { return target.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
}

func TestStartDisabled(t *testing.T) {
	target := &countingReloader{}
	svc := New(nil, target, 2023, 0, nil)

	svc.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), target.calls.Load())
}
