package feed

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

// TestHTTPClientRateLimit tests rate limiting functionality
func TestHTTPClientRateLimit(t *testing.T) {
	cfg := DefaultHTTPClientConfig()
	cfg.RateLimit = 10

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	client := NewRateLimitedHTTPClient(cfg, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Burn the initial token
	if err := client.limiter.Wait(ctx); err != nil {
		t.Fatalf("initial wait failed: %v", err)
	}

	// Measure time for 10 sequential waits at 10 req/s
	start := time.Now()
	for i := 0; i < 10; i++ {
		if err := client.limiter.Wait(ctx); err != nil {
			t.Errorf("wait %d failed: %v", i, err)
		}
	}
	elapsed := time.Since(start)

	expectedMin := 800 * time.Millisecond
	expectedMax := 1500 * time.Millisecond
	if elapsed < expectedMin || elapsed > expectedMax {
		t.Errorf("expected duration ~1s, got %v", elapsed)
	}
}

// TestHTTPClientCircuitBreaker tests that repeated failures open the circuit
func TestHTTPClientCircuitBreaker(t *testing.T) {
	cfg := DefaultHTTPClientConfig()
	cfg.MaxRetries = 0
	cfg.RateLimit = 1000
	cfg.CircuitBreakerMax = 2
	cfg.Timeout = time.Second

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	client := NewRateLimitedHTTPClient(cfg, logger)

	ctx := context.Background()
	badURL := "http://127.0.0.1:1/unreachable"

	for i := 0; i < 2; i++ {
		if _, err := client.Get(ctx, badURL); err == nil {
			t.Fatal("expected connection error")
		}
	}

	if !client.isOpen {
		t.Fatal("expected circuit breaker to be open")
	}

	// Further requests fail fast without dialing
	if _, err := client.Get(ctx, badURL); err == nil {
		t.Fatal("expected circuit breaker error")
	}
}

// TestHTTPClientConcurrentUse tests sharing one client across the
// per-day fan-out goroutines
func TestHTTPClientConcurrentUse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/fail" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := DefaultHTTPClientConfig()
	cfg.MaxRetries = 0
	cfg.RateLimit = 1000
	cfg.CircuitBreakerMax = 100

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	client := NewRateLimitedHTTPClient(cfg, logger)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			url := server.URL
			if n%2 == 0 {
				url += "/fail"
			}
			for j := 0; j < 10; j++ {
				resp, err := client.Get(context.Background(), url)
				if err != nil {
					continue
				}
				resp.Body.Close()
			}
		}(i)
	}
	wg.Wait()

	client.mu.Lock()
	open := client.isOpen
	client.mu.Unlock()
	if open {
		t.Error("breaker must stay closed below the failure limit")
	}
}

// TestHTTPClientSuccessResetsCircuit tests that a 2xx closes the breaker path
func TestHTTPClientSuccessResetsCircuit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := DefaultHTTPClientConfig()
	cfg.MaxRetries = 0
	cfg.RateLimit = 1000

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	client := NewRateLimitedHTTPClient(cfg, logger)
	client.consecutiveErrors = 3

	resp, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	resp.Body.Close()

	if client.consecutiveErrors != 0 {
		t.Errorf("expected error streak reset, got %d", client.consecutiveErrors)
	}
}
