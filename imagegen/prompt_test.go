package imagegen

import (
	"strings"
	"testing"
)

func TestBuildScenePromptDeterministic(t *testing.T) {
	in := PromptInput{
		Season:         "summer",
		Date:           "June 15",
		BloomingPlants: []string{"Damask Rose 'Celsiana'", "Lavender"},
		GardenName:     "South Border",
		Style:          "english cottage",
	}
	first := BuildScenePrompt(in)
	second := BuildScenePrompt(in)
	if first != second {
		t.Error("prompt is not deterministic")
	}

	for _, want := range []string{"english cottage", "South Border", "June 15", "summer", "Damask Rose 'Celsiana' and Lavender"} {
		if !strings.Contains(first, want) {
			t.Errorf("prompt missing %q: %s", want, first)
		}
	}
}

func TestBuildScenePromptNoBloom(t *testing.T) {
	got := BuildScenePrompt(PromptInput{Season: "winter", Date: "January 5"})
	if !strings.Contains(got, "No plants are currently in bloom") {
		t.Errorf("prompt = %s", got)
	}
}

func TestBuildScenePromptSingleBloom(t *testing.T) {
	got := BuildScenePrompt(PromptInput{Season: "spring", BloomingPlants: []string{"Snowdrop"}})
	if !strings.Contains(got, "Snowdrop is in full bloom") {
		t.Errorf("prompt = %s", got)
	}
}

func TestBuildEnhancementPromptKeepsLayoutInstruction(t *testing.T) {
	got := BuildEnhancementPrompt(PromptInput{Season: "autumn"})
	if !strings.Contains(got, "Keep every plant in its current position") {
		t.Errorf("prompt = %s", got)
	}
	if !strings.Contains(got, "autumn") {
		t.Errorf("prompt missing season: %s", got)
	}
}
