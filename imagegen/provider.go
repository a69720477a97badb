package imagegen

import "context"

// GenerateRequest describes a text-to-image generation.
type GenerateRequest struct {
	Prompt         string
	NegativePrompt string
	Width          int
	Height         int
}

// ReferenceRequest describes an image-to-image generation guided by a
// reference image, used to enhance composited scenes into photorealistic
// renders.
type ReferenceRequest struct {
	Image    []byte // PNG-encoded reference image
	Prompt   string
	Strength float64 // how strongly the output follows the reference, 0..1
}

// Provider is one external image generation backend. Implementations
// return the generated image bytes (PNG or JPEG as served) and classify
// failures with *ProviderError so the orchestrator can decide whether to
// retry or move on.
//
// A provider that cannot honor a reference image returns a client-class
// ProviderError from GenerateFromReference; the orchestrator then falls
// through to the next provider in the chain.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req GenerateRequest) ([]byte, error)
	GenerateFromReference(ctx context.Context, req ReferenceRequest) ([]byte, error)
}
