package server

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/raphaelgruber/simnet/internal/explorer"
	"github.com/raphaelgruber/simnet/internal/filter"
	"github.com/raphaelgruber/simnet/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingFetcher waits for its context and reports the cause.
type blockingFetcher struct {
	started chan struct{}
	done    chan error
}

func (f *blockingFetcher) SimilarityNetwork(ctx context.Context, p filter.Params) (*models.NetworkResponse, error) {
	close(f.started)
	<-ctx.Done()
	f.done <- ctx.Err()
	return nil, ctx.Err()
}

func TestRendererSubmitStopsWithServer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &blockingFetcher{started: make(chan struct{}), done: make(chan error, 1)}
	ctrl := explorer.NewController(f, explorer.Options{Logger: logger})
	srv := New(ctrl, Options{Logger: logger, SubmitTimeout: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	ran := make(chan error, 1)
	go func() { ran <- srv.Run(ctx, "127.0.0.1:0") }()

	srv.handleInbound(nil, Inbound{Type: MsgSubmit, Bairro: "Centro"})
	select {
	case <-f.started:
	case <-time.After(3 * time.Second):
		t.Fatal("submit never reached the backend")
	}

	cancel()
	require.NoError(t, <-ran)

	select {
	case err := <-f.done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(3 * time.Second):
		t.Fatal("renderer submit outlived the server")
	}
}
