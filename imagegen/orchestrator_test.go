package imagegen

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"garden_backend/logging"
)

// scriptedProvider fails a set number of times before succeeding, or fails
// forever when failures is negative.
type scriptedProvider struct {
	name     string
	failures int
	failWith error
	calls    int
	result   []byte
}

func (s *scriptedProvider) Name() string { return s.name }

func (s *scriptedProvider) Generate(ctx context.Context, req GenerateRequest) ([]byte, error) {
	s.calls++
	if s.failures < 0 || s.calls <= s.failures {
		return nil, s.failWith
	}
	return s.result, nil
}

func (s *scriptedProvider) GenerateFromReference(ctx context.Context, req ReferenceRequest) ([]byte, error) {
	return s.Generate(ctx, GenerateRequest{Prompt: req.Prompt})
}

func serverError(provider string) error {
	return &ProviderError{Provider: provider, Class: ErrorClassServer, StatusCode: 503, Err: errors.New("upstream 503")}
}

func clientError(provider string, status int) error {
	return &ProviderError{Provider: provider, Class: ErrorClassClient, StatusCode: status, Err: errors.New("rejected")}
}

// instantPolicy is the default policy with sleeps recorded instead of
// taken.
func instantPolicy(slept *[]time.Duration) RetryPolicy {
	p := DefaultRetryPolicy()
	p.Sleep = func(ctx context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return ctx.Err()
	}
	return p
}

func newTestOrchestrator(t *testing.T, chain []Provider, policy RetryPolicy, obs AttemptObserver) *Orchestrator {
	t.Helper()
	o, err := NewOrchestrator(chain, policy, logging.NewNopLogger(), obs)
	if err != nil {
		t.Fatalf("NewOrchestrator: %v", err)
	}
	return o
}

func TestOrchestratorFallsThroughToSecondProvider(t *testing.T) {
	var slept []time.Duration
	broken := &scriptedProvider{name: "openai", failures: -1, failWith: serverError("openai")}
	healthy := &scriptedProvider{name: "stability", result: []byte("image-bytes")}

	var records []AttemptRecord
	o := newTestOrchestrator(t, []Provider{broken, healthy}, instantPolicy(&slept), func(r AttemptRecord) {
		records = append(records, r)
	})

	data, provider, err := o.Generate(context.Background(), GenerateRequest{Prompt: "garden"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if provider != "stability" || string(data) != "image-bytes" {
		t.Errorf("got (%q, %q)", provider, data)
	}

	// The broken provider gets its full allowance before the chain moves on.
	if broken.calls != 3 {
		t.Errorf("first provider called %d times, want 3", broken.calls)
	}
	if healthy.calls != 1 {
		t.Errorf("second provider called %d times, want 1", healthy.calls)
	}

	// Server errors back off on the short schedule: 1s after attempt 1,
	// 2s after attempt 2, nothing after the final attempt.
	want := []time.Duration{1 * time.Second, 2 * time.Second}
	if len(slept) != len(want) {
		t.Fatalf("slept %v, want %v", slept, want)
	}
	for i := range want {
		if slept[i] != want[i] {
			t.Errorf("backoff[%d] = %v, want %v", i, slept[i], want[i])
		}
	}

	var exhausted, succeeded bool
	for _, r := range records {
		if r.State == StateProviderExhausted && r.Provider == "openai" {
			exhausted = true
		}
		if r.State == StateSucceeded && r.Provider == "stability" {
			succeeded = true
		}
	}
	if !exhausted || !succeeded {
		t.Errorf("observer missed transitions: %+v", records)
	}
}

func TestOrchestratorClientErrorSkipsRetries(t *testing.T) {
	var slept []time.Duration
	rejecting := &scriptedProvider{name: "openai", failures: -1, failWith: clientError("openai", 400)}
	healthy := &scriptedProvider{name: "stability", result: []byte("ok")}

	o := newTestOrchestrator(t, []Provider{rejecting, healthy}, instantPolicy(&slept), nil)

	_, provider, err := o.Generate(context.Background(), GenerateRequest{Prompt: "garden"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if provider != "stability" {
		t.Errorf("provider = %q, want stability", provider)
	}
	if rejecting.calls != 1 {
		t.Errorf("client error retried: %d calls", rejecting.calls)
	}
	if len(slept) != 0 {
		t.Errorf("client error slept: %v", slept)
	}
}

func TestOrchestratorRateLimitUsesSlowSchedule(t *testing.T) {
	var slept []time.Duration
	limited := &scriptedProvider{
		name:     "openai",
		failures: 2,
		failWith: &ProviderError{Provider: "openai", Class: ErrorClassRateLimited, StatusCode: 429, Err: errors.New("too many requests")},
		result:   []byte("ok"),
	}

	o := newTestOrchestrator(t, []Provider{limited}, instantPolicy(&slept), nil)

	_, _, err := o.Generate(context.Background(), GenerateRequest{Prompt: "garden"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	want := []time.Duration{5 * time.Second, 10 * time.Second}
	if len(slept) != 2 || slept[0] != want[0] || slept[1] != want[1] {
		t.Errorf("rate limit backoff = %v, want %v", slept, want)
	}
}

func TestOrchestratorAllExhausted(t *testing.T) {
	var slept []time.Duration
	a := &scriptedProvider{name: "openai", failures: -1, failWith: serverError("openai")}
	b := &scriptedProvider{name: "stability", failures: -1, failWith: clientError("stability", 401)}

	o := newTestOrchestrator(t, []Provider{a, b}, instantPolicy(&slept), nil)

	_, _, err := o.Generate(context.Background(), GenerateRequest{Prompt: "garden"})
	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected *ExhaustedError, got %v", err)
	}

	// The message comes from the LAST failure: a 401 client error.
	if got := err.Error(); got != "The image service rejected the configured credentials. Check the API key configuration." {
		t.Errorf("user-facing message = %q", got)
	}

	// The raw cause stays reachable for logging.
	var pe *ProviderError
	if !errors.As(err, &pe) || pe.Provider != "stability" {
		t.Errorf("unwrapped cause = %v", err)
	}
}

func TestOrchestratorHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := DefaultRetryPolicy()
	policy.Sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	broken := &scriptedProvider{name: "openai", failures: -1, failWith: serverError("openai")}
	o := newTestOrchestrator(t, []Provider{broken}, policy, nil)

	_, _, err := o.Generate(ctx, GenerateRequest{Prompt: "garden"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if broken.calls != 1 {
		t.Errorf("provider called %d times after cancellation, want 1", broken.calls)
	}
}

func TestOrchestratorReferenceFallthrough(t *testing.T) {
	var slept []time.Duration
	// Leonardo-style adapter: reference generation is a client error.
	unsupported := &scriptedProvider{name: "leonardo", failures: -1, failWith: clientError("leonardo", 0)}
	capable := &scriptedProvider{name: "stability", result: []byte("enhanced")}

	o := newTestOrchestrator(t, []Provider{unsupported, capable}, instantPolicy(&slept), nil)

	data, provider, err := o.GenerateFromReference(context.Background(), ReferenceRequest{
		Image:  []byte("png"),
		Prompt: "photorealistic garden",
	})
	if err != nil {
		t.Fatalf("GenerateFromReference: %v", err)
	}
	if provider != "stability" || string(data) != "enhanced" {
		t.Errorf("got (%q, %q)", provider, data)
	}
	if unsupported.calls != 1 {
		t.Errorf("unsupported provider retried: %d calls", unsupported.calls)
	}
}

func TestNewOrchestratorValidation(t *testing.T) {
	if _, err := NewOrchestrator(nil, DefaultRetryPolicy(), logging.NewNopLogger(), nil); err == nil {
		t.Error("empty chain accepted")
	}
	p := DefaultRetryPolicy()
	p.MaxAttempts = 0
	if _, err := NewOrchestrator([]Provider{&scriptedProvider{name: "x"}}, p, logging.NewNopLogger(), nil); err == nil {
		t.Error("zero attempts accepted")
	}
}

func TestUserFacingMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			"server outage",
			&ProviderError{Provider: "openai", Class: ErrorClassServer, StatusCode: 503, Err: errors.New("x")},
			"The image service is experiencing a temporary outage. Please try again in a few minutes.",
		},
		{
			"rate limited",
			&ProviderError{Provider: "openai", Class: ErrorClassRateLimited, StatusCode: 429, Err: errors.New("x")},
			"The image service is handling too many requests right now. Please try again shortly.",
		},
		{
			"bad credentials",
			&ProviderError{Provider: "openai", Class: ErrorClassClient, StatusCode: http.StatusForbidden, Err: errors.New("x")},
			"The image service rejected the configured credentials. Check the API key configuration.",
		},
		{
			"bad request",
			&ProviderError{Provider: "openai", Class: ErrorClassClient, StatusCode: 400, Err: errors.New("x")},
			"The image request was rejected by the service. Adjust the garden description and try again.",
		},
		{
			"network failure",
			&ProviderError{Provider: "openai", Class: ErrorClassNetwork, Err: errors.New("x")},
			"A network problem interrupted image generation. Check your connection and try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserFacingMessage(tt.err); got != tt.want {
				t.Errorf("UserFacingMessage = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorClass
	}{
		{500, ErrorClassServer},
		{503, ErrorClassServer},
		{429, ErrorClassRateLimited},
		{400, ErrorClassClient},
		{401, ErrorClassClient},
		{404, ErrorClassClient},
		{200, ErrorClassNone},
	}
	for _, tt := range tests {
		if got := ClassifyStatus(tt.status); got != tt.want {
			t.Errorf("ClassifyStatus(%d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestRetryable(t *testing.T) {
	if !ErrorClassServer.Retryable() || !ErrorClassRateLimited.Retryable() || !ErrorClassNetwork.Retryable() {
		t.Error("transient classes must be retryable")
	}
	if ErrorClassClient.Retryable() {
		t.Error("client errors must not be retryable")
	}
}
