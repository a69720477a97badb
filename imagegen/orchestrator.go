package imagegen

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"garden_backend/logging"
)

// AttemptState tracks where a generation attempt sits in its lifecycle.
type AttemptState string

const (
	StatePending           AttemptState = "pending"
	StateAttempting        AttemptState = "attempting"
	StateRetryScheduled    AttemptState = "retry_scheduled"
	StateProviderExhausted AttemptState = "provider_exhausted"
	StateSucceeded         AttemptState = "succeeded"
	StateAllExhausted      AttemptState = "all_exhausted"
)

// AttemptRecord is one observable step of the provider chain. Observers
// receive every state transition, in order, on the calling goroutine.
type AttemptRecord struct {
	Provider string
	Attempt  int
	State    AttemptState
	Class    ErrorClass
	Err      error
	Backoff  time.Duration
}

// AttemptObserver receives attempt lifecycle events. May be nil.
type AttemptObserver func(AttemptRecord)

// Orchestrator runs an ordered chain of providers with per-provider retry.
//
// For each provider in order: up to MaxAttempts calls, backing off between
// failures on the class-appropriate schedule. A client-class failure stops
// retrying that provider immediately. When a provider is exhausted the
// chain advances; when the chain is exhausted the caller gets an
// *ExhaustedError carrying the last failure.
//
// Thread Safety: Orchestrator is stateless after construction and safe for
// concurrent use.
type Orchestrator struct {
	chain    []Provider
	policy   RetryPolicy
	logger   *logging.Logger
	observer AttemptObserver
}

// NewOrchestrator builds an orchestrator over an ordered provider chain.
// The observer may be nil.
func NewOrchestrator(chain []Provider, policy RetryPolicy, logger *logging.Logger, observer AttemptObserver) (*Orchestrator, error) {
	if len(chain) == 0 {
		return nil, fmt.Errorf("imagegen: provider chain is empty")
	}
	if policy.MaxAttempts < 1 {
		return nil, fmt.Errorf("imagegen: retry policy needs at least one attempt, got %d", policy.MaxAttempts)
	}
	return &Orchestrator{
		chain:    chain,
		policy:   policy,
		logger:   logger.Named("orchestrator"),
		observer: observer,
	}, nil
}

// Generate runs a text-to-image request through the chain. On success it
// returns the image bytes and the name of the provider that produced them.
func (o *Orchestrator) Generate(ctx context.Context, req GenerateRequest) ([]byte, string, error) {
	return o.GenerateObserved(ctx, req, nil)
}

// GenerateObserved is Generate with an additional per-call observer that
// receives the same lifecycle events as the constructor-time observer.
// Callers running many requests concurrently use this to attribute events
// to their own unit of work.
func (o *Orchestrator) GenerateObserved(ctx context.Context, req GenerateRequest, obs AttemptObserver) ([]byte, string, error) {
	return o.run(ctx, obs, func(p Provider) ([]byte, error) {
		return p.Generate(ctx, req)
	})
}

// GenerateFromReference runs a reference-guided request through the chain.
// Providers that cannot honor a reference fail with a client-class error
// and are skipped without retries.
func (o *Orchestrator) GenerateFromReference(ctx context.Context, req ReferenceRequest) ([]byte, string, error) {
	return o.GenerateFromReferenceObserved(ctx, req, nil)
}

// GenerateFromReferenceObserved is GenerateFromReference with a per-call
// observer.
func (o *Orchestrator) GenerateFromReferenceObserved(ctx context.Context, req ReferenceRequest, obs AttemptObserver) ([]byte, string, error) {
	return o.run(ctx, obs, func(p Provider) ([]byte, error) {
		return p.GenerateFromReference(ctx, req)
	})
}

func (o *Orchestrator) run(ctx context.Context, obs AttemptObserver, call func(Provider) ([]byte, error)) ([]byte, string, error) {
	var lastErr error

	for _, provider := range o.chain {
		o.notify(obs, AttemptRecord{Provider: provider.Name(), State: StatePending})

		for attempt := 1; attempt <= o.policy.MaxAttempts; attempt++ {
			if err := ctx.Err(); err != nil {
				return nil, "", err
			}

			o.notify(obs, AttemptRecord{Provider: provider.Name(), Attempt: attempt, State: StateAttempting})

			data, err := call(provider)
			if err == nil {
				o.notify(obs, AttemptRecord{Provider: provider.Name(), Attempt: attempt, State: StateSucceeded})
				o.logger.Info("generation succeeded",
					zap.String("provider", provider.Name()),
					zap.Int("attempt", attempt),
					zap.Int("bytes", len(data)),
				)
				return data, provider.Name(), nil
			}

			lastErr = err
			class := Classify(err)
			o.logger.Warn("generation attempt failed",
				zap.String("provider", provider.Name()),
				zap.Int("attempt", attempt),
				zap.String("class", class.String()),
				zap.Error(err),
			)

			if !class.Retryable() || attempt == o.policy.MaxAttempts {
				break
			}

			backoff := o.policy.Backoff(class, attempt)
			o.notify(obs, AttemptRecord{
				Provider: provider.Name(),
				Attempt:  attempt,
				State:    StateRetryScheduled,
				Class:    class,
				Err:      err,
				Backoff:  backoff,
			})
			if err := o.policy.wait(ctx, class, attempt); err != nil {
				return nil, "", err
			}
		}

		o.notify(obs, AttemptRecord{
			Provider: provider.Name(),
			State:    StateProviderExhausted,
			Class:    Classify(lastErr),
			Err:      lastErr,
		})
	}

	o.notify(obs, AttemptRecord{State: StateAllExhausted, Class: Classify(lastErr), Err: lastErr})
	o.logger.Error("all providers exhausted", zap.Error(lastErr))
	return nil, "", &ExhaustedError{LastErr: lastErr}
}

func (o *Orchestrator) notify(obs AttemptObserver, rec AttemptRecord) {
	if o.observer != nil {
		o.observer(rec)
	}
	if obs != nil {
		obs(rec)
	}
}
