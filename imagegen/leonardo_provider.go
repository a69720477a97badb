package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"garden_backend/core"
	"garden_backend/logging"
)

// LeonardoProvider generates images through the Leonardo.Ai REST API. The
// API is asynchronous: a generation job is created, polled until complete,
// and the finished image downloaded from the returned URL.
//
// Reference-guided generation is not offered through this adapter; the
// orchestrator falls through to the next provider for enhancement work.
type LeonardoProvider struct {
	apiKey         string
	endpoint       string
	client         *http.Client
	logger         *logging.Logger
	pollInterval   time.Duration
	attemptTimeout time.Duration
}

var _ Provider = (*LeonardoProvider)(nil)

// NewLeonardoProvider builds the provider from application config.
func NewLeonardoProvider(cfg *core.Config, logger *logging.Logger) *LeonardoProvider {
	timeout := cfg.GenerationTimeout
	if timeout <= 0 {
		timeout = 3 * time.Minute
	}
	return &LeonardoProvider{
		apiKey:         cfg.LeonardoAPIKey,
		endpoint:       cfg.LeonardoEndpoint,
		client:         core.GetHTTPClient(cfg, cfg.ProviderTimeout),
		logger:         logger.Named("leonardo"),
		pollInterval:   2 * time.Second,
		attemptTimeout: timeout,
	}
}

// Name returns the chain identifier for this provider.
func (p *LeonardoProvider) Name() string { return "leonardo" }

type leonardoCreateRequest struct {
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt,omitempty"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	NumImages      int    `json:"num_images"`
}

type leonardoCreateResponse struct {
	Job struct {
		GenerationID string `json:"generationId"`
	} `json:"sdGenerationJob"`
}

type leonardoPollResponse struct {
	Generation struct {
		Status string `json:"status"`
		Images []struct {
			URL string `json:"url"`
		} `json:"generated_images"`
	} `json:"generations_by_pk"`
}

// Generate creates a generation job and polls it to completion. The whole
// attempt (create, poll, download) is bounded by the attempt timeout so a
// generation stuck in PENDING cannot block the chain indefinitely. An
// attempt timeout surfaces as a retryable network-class error, never as a
// caller cancellation.
func (p *LeonardoProvider) Generate(parent context.Context, req GenerateRequest) ([]byte, error) {
	ctx, cancel := context.WithTimeout(parent, p.attemptTimeout)
	defer cancel()

	data, err := p.generate(ctx, req)
	if err != nil && parent.Err() == nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, &ProviderError{
			Provider: p.Name(),
			Class:    ErrorClassNetwork,
			Err:      fmt.Errorf("generation attempt timed out after %s", p.attemptTimeout),
		}
	}
	return data, err
}

func (p *LeonardoProvider) generate(ctx context.Context, req GenerateRequest) ([]byte, error) {
	width, height := leonardoDimensions(req.Width, req.Height)
	payload := leonardoCreateRequest{
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
		Width:          width,
		Height:         height,
		NumImages:      1,
	}

	var created leonardoCreateResponse
	if err := p.postJSON(ctx, "/generations", payload, &created); err != nil {
		return nil, err
	}
	if created.Job.GenerationID == "" {
		return nil, &ProviderError{
			Provider: p.Name(),
			Class:    ErrorClassServer,
			Err:      fmt.Errorf("create response missing generation id"),
		}
	}
	p.logger.Debug("generation created", zap.String("generation_id", created.Job.GenerationID))

	url, err := p.pollForResult(ctx, created.Job.GenerationID)
	if err != nil {
		return nil, err
	}
	return p.download(ctx, url)
}

// GenerateFromReference is unsupported on this adapter. The client-class
// error tells the orchestrator to skip retries and try the next provider.
func (p *LeonardoProvider) GenerateFromReference(ctx context.Context, req ReferenceRequest) ([]byte, error) {
	return nil, &ProviderError{
		Provider: p.Name(),
		Class:    ErrorClassClient,
		Err:      fmt.Errorf("reference-guided generation not supported"),
	}
}

func (p *LeonardoProvider) pollForResult(ctx context.Context, generationID string) (string, error) {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", &ProviderError{Provider: p.Name(), Class: ErrorClassNetwork, Err: ctx.Err()}
		case <-ticker.C:
		}

		var polled leonardoPollResponse
		if err := p.getJSON(ctx, "/generations/"+generationID, &polled); err != nil {
			return "", err
		}

		switch polled.Generation.Status {
		case "COMPLETE":
			if len(polled.Generation.Images) == 0 {
				return "", &ProviderError{
					Provider: p.Name(),
					Class:    ErrorClassServer,
					Err:      fmt.Errorf("generation %s completed with no images", generationID),
				}
			}
			return polled.Generation.Images[0].URL, nil
		case "FAILED":
			return "", &ProviderError{
				Provider: p.Name(),
				Class:    ErrorClassServer,
				Err:      fmt.Errorf("generation %s failed", generationID),
			}
		default:
			// PENDING: keep polling until the context deadline fires.
		}
	}
}

func (p *LeonardoProvider) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Class: ErrorClassClient, Err: err}
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Class: Classify(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{
			Provider:   p.Name(),
			Class:      ClassifyStatus(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("image download returned status %d", resp.StatusCode),
		}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Class: ErrorClassNetwork, Err: err}
	}
	return data, nil
}

func (p *LeonardoProvider) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &ProviderError{Provider: p.Name(), Class: ErrorClassClient, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return &ProviderError{Provider: p.Name(), Class: ErrorClassClient, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	return p.doJSON(req, out)
}

func (p *LeonardoProvider) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+path, nil)
	if err != nil {
		return &ProviderError{Provider: p.Name(), Class: ErrorClassClient, Err: err}
	}
	return p.doJSON(req, out)
}

func (p *LeonardoProvider) doJSON(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return &ProviderError{Provider: p.Name(), Class: Classify(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		p.logger.Warn("request failed",
			zap.Int("status", resp.StatusCode),
			zap.String("path", req.URL.Path),
			zap.ByteString("body", excerpt),
		)
		return &ProviderError{
			Provider:   p.Name(),
			Class:      ClassifyStatus(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ProviderError{Provider: p.Name(), Class: ErrorClassServer, Err: fmt.Errorf("invalid JSON response: %w", err)}
	}
	return nil
}

// leonardoDimensions clamps requested output dimensions to the API's
// multiple-of-8 requirement, falling back to a landscape default.
func leonardoDimensions(width, height int) (int, int) {
	if width <= 0 || height <= 0 {
		return 1024, 768
	}
	round8 := func(v int) int {
		v -= v % 8
		if v < 512 {
			v = 512
		}
		if v > 1536 {
			v = 1536
		}
		return v
	}
	return round8(width), round8(height)
}
