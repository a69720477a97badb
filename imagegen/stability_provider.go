package imagegen

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"garden_backend/core"
	"garden_backend/logging"
)

// StabilityProvider generates images through the Stability AI stable-image
// API. Both endpoints answer with raw image bytes when asked for
// Accept: image/*.
type StabilityProvider struct {
	apiKey   string
	endpoint string
	client   *http.Client
	logger   *logging.Logger
}

var _ Provider = (*StabilityProvider)(nil)

// NewStabilityProvider builds the provider from application config.
func NewStabilityProvider(cfg *core.Config, logger *logging.Logger) *StabilityProvider {
	return &StabilityProvider{
		apiKey:   cfg.StabilityAPIKey,
		endpoint: cfg.StabilityEndpoint,
		client:   core.GetHTTPClient(cfg, cfg.ProviderTimeout),
		logger:   logger.Named("stability"),
	}
}

// Name returns the chain identifier for this provider.
func (p *StabilityProvider) Name() string { return "stability" }

// Generate creates an image from a text prompt via the core endpoint.
func (p *StabilityProvider) Generate(ctx context.Context, req GenerateRequest) ([]byte, error) {
	fields := map[string]string{
		"prompt":        req.Prompt,
		"output_format": "png",
		"aspect_ratio":  aspectRatioFor(req.Width, req.Height),
	}
	if req.NegativePrompt != "" {
		fields["negative_prompt"] = req.NegativePrompt
	}
	return p.post(ctx, "/v2beta/stable-image/generate/core", fields, nil)
}

// GenerateFromReference re-renders the reference image via the sd3
// endpoint in image-to-image mode, preserving the reference layout.
func (p *StabilityProvider) GenerateFromReference(ctx context.Context, req ReferenceRequest) ([]byte, error) {
	strength := req.Strength
	if strength <= 0 || strength > 1 {
		strength = 0.65
	}
	fields := map[string]string{
		"prompt":        req.Prompt,
		"mode":          "image-to-image",
		"strength":      strconv.FormatFloat(strength, 'f', 2, 64),
		"output_format": "png",
	}
	return p.post(ctx, "/v2beta/stable-image/generate/sd3", fields, req.Image)
}

// post sends a multipart request and returns the raw image body. A non-2xx
// response is classified from its status code.
func (p *StabilityProvider) post(ctx context.Context, path string, fields map[string]string, image []byte) ([]byte, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, &ProviderError{Provider: p.Name(), Class: ErrorClassClient, Err: err}
		}
	}
	if image != nil {
		part, err := writer.CreateFormFile("image", "reference.png")
		if err != nil {
			return nil, &ProviderError{Provider: p.Name(), Class: ErrorClassClient, Err: err}
		}
		if _, err := part.Write(image); err != nil {
			return nil, &ProviderError{Provider: p.Name(), Class: ErrorClassClient, Err: err}
		}
	}
	if err := writer.Close(); err != nil {
		return nil, &ProviderError{Provider: p.Name(), Class: ErrorClassClient, Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint+path, &body)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Class: ErrorClassClient, Err: err}
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	httpReq.Header.Set("Accept", "image/*")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Class: Classify(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Error bodies are JSON; keep a short excerpt for the log.
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		p.logger.Warn("request failed",
			zap.Int("status", resp.StatusCode),
			zap.String("path", path),
			zap.ByteString("body", excerpt),
		)
		return nil, &ProviderError{
			Provider:   p.Name(),
			Class:      ClassifyStatus(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Class: ErrorClassNetwork, Err: err}
	}
	p.logger.Debug("image received", zap.Int("bytes", len(data)), zap.String("path", path))
	return data, nil
}

// aspectRatioFor snaps requested dimensions onto the ratios the API
// accepts.
func aspectRatioFor(width, height int) string {
	switch {
	case width <= 0 || height <= 0, width == height:
		return "1:1"
	case width > height:
		if float64(width)/float64(height) >= 1.5 {
			return "16:9"
		}
		return "4:3"
	default:
		if float64(height)/float64(width) >= 1.5 {
			return "9:16"
		}
		return "3:4"
	}
}
