package oracle

import (
	"context"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/betexlabs/saft-engine/internal/engine"
)

type stubApplier struct {
	applied chan appliedQuote
}

type appliedQuote struct {
	requestID string
	rate      *big.Int
}

func (s *stubApplier) ApplyQuote(requestID string, rate *big.Int) (engine.Order, error) {
	s.applied <- appliedQuote{requestID: requestID, rate: rate}
	return engine.Order{Tokens: new(big.Int)}, nil
}

func TestClientResolvesRequest(t *testing.T) {
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"price_usd": "30000.256789"}]`))
	}))
	defer feed.Close()

	applier := &stubApplier{applied: make(chan appliedQuote, 1)}
	c := New(applier)
	c.Start(context.Background())
	defer c.Stop()

	c.RequestQuote(engine.QuoteRequest{
		RequestID:  "req-1",
		OrderID:    0,
		PriceQuery: "json(" + feed.URL + ").0.price_usd",
	})

	select {
	case got := <-applier.applied:
		require.Equal(t, "req-1", got.requestID)
		// 30000.256789 scaled by 10^4, truncated
		require.Equal(t, "300002567", got.rate.String())
	case <-time.After(5 * time.Second):
		t.Fatal("quote was never applied")
	}
}

func TestClientSkipsFailedFetch(t *testing.T) {
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer feed.Close()

	applier := &stubApplier{applied: make(chan appliedQuote, 1)}
	c := New(applier)
	c.Start(context.Background())
	defer c.Stop()

	c.RequestQuote(engine.QuoteRequest{
		RequestID:  "req-1",
		PriceQuery: "json(" + feed.URL + ").0.price_usd",
	})

	select {
	case <-applier.applied:
		t.Fatal("failed fetch must not produce a callback")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestFetchRateScaling(t *testing.T) {
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"price": 3}`))
	}))
	defer feed.Close()

	c := New(nil)
	rate, err := c.fetchRate(context.Background(), "json("+feed.URL+").price")
	require.NoError(t, err)
	require.Equal(t, "30000", rate.String())
}
