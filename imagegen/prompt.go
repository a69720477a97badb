package imagegen

import (
	"fmt"
	"strings"
)

// DefaultNegativePrompt suppresses the artifacts that most often ruin
// photorealistic garden renders. Providers without a negative-prompt
// parameter simply ignore it.
const DefaultNegativePrompt = "cartoon, illustration, painting, watermark, text, logo, " +
	"blurry, low quality, deformed plants, oversaturated colors, people, buildings"

// PromptInput carries the scene facts a prompt is built from. All fields
// except Season are optional.
type PromptInput struct {
	Season         string
	Date           string   // human-readable, e.g. "June 15"
	BloomingPlants []string // display names, already formatted
	GardenName     string
	Style          string // optional style hint, e.g. "english cottage"
}

// BuildScenePrompt renders a deterministic text-to-image prompt for a
// garden on a given day. Pure function: same input, same prompt.
func BuildScenePrompt(in PromptInput) string {
	var b strings.Builder

	b.WriteString("Photorealistic wide-angle photograph of a ")
	if in.Style != "" {
		b.WriteString(in.Style)
		b.WriteString(" ")
	}
	b.WriteString("garden")
	if in.GardenName != "" {
		fmt.Fprintf(&b, " (%s)", in.GardenName)
	}

	if in.Date != "" {
		fmt.Fprintf(&b, " on %s", in.Date)
	}
	if in.Season != "" {
		fmt.Fprintf(&b, " in %s", in.Season)
	}
	b.WriteString(". ")

	switch len(in.BloomingPlants) {
	case 0:
		b.WriteString("No plants are currently in bloom; foliage, structure and seasonal color carry the scene. ")
	case 1:
		fmt.Fprintf(&b, "%s is in full bloom. ", in.BloomingPlants[0])
	default:
		last := len(in.BloomingPlants) - 1
		fmt.Fprintf(&b, "%s and %s are in full bloom. ",
			strings.Join(in.BloomingPlants[:last], ", "), in.BloomingPlants[last])
	}

	b.WriteString("Natural daylight, soft shadows, high detail, botanically accurate.")
	return b.String()
}

// BuildEnhancementPrompt renders the prompt used with a composited layout
// image as reference. The provider keeps the spatial arrangement from the
// reference while re-rendering it photorealistically.
func BuildEnhancementPrompt(in PromptInput) string {
	var b strings.Builder
	b.WriteString("Transform this garden layout into a photorealistic photograph. ")
	b.WriteString("Keep every plant in its current position and relative size. ")
	b.WriteString(BuildScenePrompt(in))
	return b.String()
}
