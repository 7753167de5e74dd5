package dispatcher

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGoAllRunsAllTasks(t *testing.T) {
	p := New("test", 4)

	var count int64
	fns := make([]func(context.Context) error, 0, 10)
	for i := 0; i < 10; i++ {
		fns = append(fns, func(ctx context.Context) error {
			atomic.AddInt64(&count, 1)
			return nil
		})
	}

	err := p.GoAll(context.Background(), fns)
	require.NoError(t, err)
	require.Equal(t, int64(10), count)
}

func TestGoAllShortCircuitsOnError(t *testing.T) {
	p := New("test", 2)
	wantErr := errors.New("boom")

	fns := []func(context.Context) error{
		func(ctx context.Context) error { return wantErr },
		func(ctx context.Context) error { return nil },
	}

	err := p.GoAll(context.Background(), fns)
	require.ErrorIs(t, err, wantErr)
}
