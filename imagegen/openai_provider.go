package imagegen

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"garden_backend/core"
	"garden_backend/logging"
)

// OpenAIProvider generates images through the OpenAI image API. Text
// prompts use DALL-E 3; reference-guided generation uses the variations
// endpoint, which only DALL-E 2 supports.
type OpenAIProvider struct {
	client *openai.Client
	model  string
	logger *logging.Logger
}

var _ Provider = (*OpenAIProvider)(nil)

// NewOpenAIProvider builds the provider from application config. The API
// key must already be validated by config loading.
func NewOpenAIProvider(cfg *core.Config, logger *logging.Logger) *OpenAIProvider {
	clientCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		clientCfg.BaseURL = cfg.OpenAIBaseURL
	}
	clientCfg.HTTPClient = core.GetHTTPClient(cfg, cfg.ProviderTimeout)

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.OpenAIImageModel,
		logger: logger.Named("openai"),
	}
}

// Name returns the chain identifier for this provider.
func (p *OpenAIProvider) Name() string { return "openai" }

// Generate creates an image from a text prompt.
//
// The negative prompt has no dedicated parameter on this API, so it is
// folded into the prompt as an avoidance clause.
func (p *OpenAIProvider) Generate(ctx context.Context, req GenerateRequest) ([]byte, error) {
	prompt := req.Prompt
	if req.NegativePrompt != "" {
		prompt = fmt.Sprintf("%s Avoid: %s.", prompt, req.NegativePrompt)
	}

	resp, err := p.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          p.model,
		Size:           sizeForRequest(req.Width, req.Height),
		N:              1,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, p.classify(err)
	}
	return p.decodeFirst(resp)
}

// GenerateFromReference creates a variation of the reference image. The
// variations endpoint takes no prompt, so the spatial layout of the
// reference is all that carries over.
func (p *OpenAIProvider) GenerateFromReference(ctx context.Context, req ReferenceRequest) ([]byte, error) {
	// The client only accepts *os.File for image uploads.
	tmp, err := os.CreateTemp("", "garden-ref-*.png")
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Class: ErrorClassClient, Err: err}
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := tmp.Write(req.Image); err != nil {
		return nil, &ProviderError{Provider: p.Name(), Class: ErrorClassClient, Err: err}
	}
	if _, err := tmp.Seek(0, 0); err != nil {
		return nil, &ProviderError{Provider: p.Name(), Class: ErrorClassClient, Err: err}
	}

	resp, err := p.client.CreateVariImage(ctx, openai.ImageVariRequest{
		Image:          tmp,
		Model:          openai.CreateImageModelDallE2,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, p.classify(err)
	}
	return p.decodeFirst(resp)
}

func (p *OpenAIProvider) decodeFirst(resp openai.ImageResponse) ([]byte, error) {
	if len(resp.Data) == 0 {
		return nil, &ProviderError{
			Provider: p.Name(),
			Class:    ErrorClassServer,
			Err:      fmt.Errorf("response contained no images"),
		}
	}
	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, &ProviderError{
			Provider: p.Name(),
			Class:    ErrorClassServer,
			Err:      fmt.Errorf("invalid base64 payload: %w", err),
		}
	}
	p.logger.Debug("image decoded", zap.Int("bytes", len(data)))
	return data, nil
}

// classify wraps client errors with the retry class derived from the HTTP
// status when the API reported one.
func (p *OpenAIProvider) classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		class := ClassifyStatus(apiErr.HTTPStatusCode)
		if class == ErrorClassNone {
			class = ErrorClassServer
		}
		return &ProviderError{
			Provider:   p.Name(),
			Class:      class,
			StatusCode: apiErr.HTTPStatusCode,
			Err:        err,
		}
	}
	return &ProviderError{Provider: p.Name(), Class: Classify(err), Err: err}
}

// sizeForRequest picks the closest DALL-E 3 output size for the requested
// dimensions. Wide canvases map to the landscape size.
func sizeForRequest(width, height int) string {
	switch {
	case width > height:
		return openai.CreateImageSize1792x1024
	case height > width:
		return openai.CreateImageSize1024x1792
	default:
		return openai.CreateImageSize1024x1024
	}
}
