package prompt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"tryonstudio/internal/fault"
	"tryonstudio/internal/llm"
	"tryonstudio/internal/scene"
)

// Payload is the assembled instruction set for one synthesis call.
type Payload struct {
	Prompt         string
	NegativePrompt string
}

// Synthesizer builds per-angle synthesis payloads. Studio mode derives
// structured JSON prompts through additional text-model calls; lifestyle mode
// concatenates flat text.
type Synthesizer struct {
	Client llm.Client
}

// NewSynthesizer constructs a prompt synthesizer backed by the text client.
func NewSynthesizer(client llm.Client) *Synthesizer {
	return &Synthesizer{Client: client}
}

// exampleTransferJSON is the template shown to the text model when deriving
// structured garment-transfer prompts.
const exampleTransferJSON = `{
  "prompt": "Use only the left-side male model as the subject. Do not change his face, pose, hairstyle, body, lighting, or background. Only change his outfit — replace the plain fitted teal crew-neck T-shirt he is wearing with the shirt worn by the right-side model.",
  "garment_transfer": {
    "source_outfit": {
      "type": "men's casual button-up shirt",
      "pattern": "plaid checkered in black, navy blue, and white",
      "fabric": "soft brushed cotton with a matte finish and visible texture",
      "collar": "standard shirt collar",
      "closure": "front placket with small white buttons",
      "sleeves": "full-length sleeves with buttoned cuffs",
      "pocket": "left chest patch pocket with a small red brand tab",
      "fit": "relaxed and untucked with a slightly curved hem",
      "texture": "realistic weave and soft folds around elbows, chest, and shoulders"
    },
    "target_model": {
      "identity": "left-side male model wearing teal T-shirt and grey joggers",
      "pose": "standing front-facing, arms straight down",
      "expression": "neutral",
      "body_type": "athletic build",
      "lighting": "soft white studio lighting",
      "background": "clean white seamless background",
      "camera_angle": "frontal eye-level"
    }
  },
  "output_requirements": {
    "replace_outfit_only": true,
    "preserve_face": true,
    "preserve_pose": true,
    "preserve_lighting": true,
    "preserve_background": true,
    "fit_alignment": true,
    "pattern_wrap": "align plaid pattern to torso and arms realistically",
    "realistic_fabric_folds": true
  }
}`

// antiArtifactFlags is the fixed requirement block merged into every studio
// payload.
var antiArtifactFlags = map[string]any{
	"single_image":       true,
	"single_model":       true,
	"no_collage":         true,
	"no_multiple_people": true,
	"no_extra_items":     true,
	"no_reflections":     true,
	"no_text":            true,
	"no_watermarks":      true,
	"no_logos":           true,
	"no_distortions":     true,
}

// GarmentModelJSON derives the reusable, angle-independent garment/model JSON
// once per run. Deriving it once keeps garment identity from drifting across
// the four angles.
func (s *Synthesizer) GarmentModelJSON(ctx context.Context, desc scene.Description) (string, error) {
	if s == nil || s.Client == nil {
		return "", fault.New(fault.KindService, "prompt synthesizer unavailable")
	}

	detail, err := json.Marshal(desc)
	if err != nil {
		return "", fault.Wrap(fault.KindSynthesisJSON, err, "marshal scene description")
	}

	instruction := fmt.Sprintf(
		"Generate a JSON prompt for a virtual try-on AI. Use the following JSON structure as a template. Fill in the details for the given model, outfit, and accessories.\n\nExample:\n%s\n\nNow, for this model and outfit: %s, generate a JSON prompt in the same structure. The output must be a single image, with only one model, no collages, no extra people/items, no text, no watermarks, no distortions, etc.",
		exampleTransferJSON, string(detail),
	)

	text, err := s.Client.GenerateText(ctx, instruction)
	if err != nil {
		return "", fault.Wrap(fault.KindService, err, "derive garment/model JSON")
	}
	raw, err := scene.ExtractObject(text)
	if err != nil {
		return "", fault.Wrap(fault.KindSynthesisJSON, err, "garment/model response contained no JSON")
	}
	return raw, nil
}

// poseJSON derives the pose/camera JSON for one angle.
func (s *Synthesizer) poseJSON(ctx context.Context, angle Angle) (string, error) {
	instruction := fmt.Sprintf(
		"Generate a JSON object describing only the pose and camera angle for a virtual try-on AI. Use the following JSON structure as a template.\n\nExample:\n%s\n\nFor the view: %s, describe the pose and camera details in the same structure, filling in only the relevant fields for pose, camera, and visibility. The output must be a single image, with only one model, no collages, no extra people/items, no text, no watermarks, no distortions, etc.\n\nPose/camera: %s",
		exampleTransferJSON, angle, CameraDirective(angle),
	)

	text, err := s.Client.GenerateText(ctx, instruction)
	if err != nil {
		return "", fault.Wrap(fault.KindService, err, "derive pose JSON for %s", angle)
	}
	raw, err := scene.ExtractObject(text)
	if err != nil {
		return "", fault.Wrap(fault.KindSynthesisJSON, err, "pose response for %s contained no JSON", angle)
	}
	return raw, nil
}

// BuildStudioPayload merges the run-wide garment/model JSON with a freshly
// derived pose JSON for the angle and the fixed anti-artifact flags.
func (s *Synthesizer) BuildStudioPayload(ctx context.Context, garmentModelJSON string, angle Angle) (Payload, error) {
	if s == nil || s.Client == nil {
		return Payload{}, fault.New(fault.KindService, "prompt synthesizer unavailable")
	}

	var base map[string]any
	if err := json.Unmarshal([]byte(garmentModelJSON), &base); err != nil {
		return Payload{}, fault.Wrap(fault.KindSynthesisJSON, err, "garment/model JSON invalid")
	}

	poseRaw, err := s.poseJSON(ctx, angle)
	if err != nil {
		return Payload{}, err
	}
	var pose map[string]any
	if err := json.Unmarshal([]byte(poseRaw), &pose); err != nil {
		return Payload{}, fault.Wrap(fault.KindSynthesisJSON, err, "pose JSON for %s invalid", angle)
	}

	merged := make(map[string]any, len(base)+len(pose)+1)
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range pose {
		merged[k] = v
	}
	merged["output_requirements"] = antiArtifactFlags

	combined, err := json.Marshal(merged)
	if err != nil {
		return Payload{}, fault.Wrap(fault.KindSynthesisJSON, err, "marshal combined prompt")
	}

	return Payload{
		Prompt:         string(combined),
		NegativePrompt: NegativeConstraints,
	}, nil
}

// BuildLifestylePayload assembles the flat text prompt for lifestyle mode:
// gender template, the scene's own prompt, and an angle directive for
// non-Front angles.
func BuildLifestylePayload(desc scene.Description, angle Angle) Payload {
	base := DetectGender(desc.Model.Identity).Template()
	text := strings.TrimSpace(base + " " + desc.Prompt)
	if directive, ok := lifestyleDirectives[angle]; ok {
		text = text + "\n" + directive
	}
	return Payload{
		Prompt:         text,
		NegativePrompt: NegativeConstraints,
	}
}
