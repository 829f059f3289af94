package scene

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"tryonstudio/internal/fault"
	"tryonstudio/internal/llm"
)

// Describer runs the single vision call that turns the layout image into a
// structured Description.
type Describer struct {
	Client llm.Client
}

// NewDescriber constructs a describer backed by the given vision client.
func NewDescriber(client llm.Client) *Describer {
	return &Describer{Client: client}
}

const analysisRubric = `You are a professional fashion analyst AI.

Please analyze the attached stitched outfit layout image and identify each clothing item or accessory shown in the grid (top-left to bottom-right order). For each item, describe:

- Type of item (e.g., sunglasses, shirt, jeans, sneakers)
- Primary use or region of the body (e.g., torso, legs, face, feet)
- Color and pattern
- Material/fabric type (e.g., cotton, denim, synthetic, plastic)
- Visible textures or design features (e.g., glossy plastic frame, printed logo, button-up front, elastic sole)
- Fit and cut (e.g., slim fit, relaxed, flared)
- Style association (e.g., casual, sporty, summer wear, streetwear, formal)
- Gender relevance (e.g., unisex, male, female)

Then, generate a structured JSON object describing:
1. A model identity and appearance matching the outfit
2. A high-quality prompt to generate the outfit on a realistic try-on model
3. A breakdown of the outfit by items
4. A suitable background style and setting
5. Output requirements for realism

Format:

{
  "prompt": "AI generation description",
  "model": {
    "identity": "...",
    "pose": "...",
    "expression": "...",
    "lighting": "..."
  },
  "garment": {
    "items": [
      {
        "type": "...",
        "location": "...",
        "color": "...",
        "material": "...",
        "texture": "...",
        "fit": "...",
        "style": "...",
        "gender": "..."
      }
    ]
  },
  "background": {
    "type": "...",
    "style": "...",
    "integration": "..."
  },
  "output_requirements": {
    "preserve_model_lighting": true,
    "blend_model_into_background": true,
    "no_pose_change": true,
    "no_outfit_change": true,
    "realistic_shadows": "..."
  }
}

Focus on intricate visual details, textures, and fashion categorization. Do not skip any accessory.`

// Describe uploads the composite to the vision service together with the
// assembled instruction and parses the structured description out of the
// free-form response.
func (d *Describer) Describe(ctx context.Context, composite []byte, style BackgroundStyle, ref *ModelReferenceHint) (Description, error) {
	if d == nil || d.Client == nil {
		return Description{}, fault.New(fault.KindService, "scene describer unavailable")
	}
	if len(composite) == 0 {
		return Description{}, fault.New(fault.KindInput, "composite image is required")
	}

	instruction := BuildInstruction(style, ref)
	text, err := d.Client.GenerateVision(ctx, instruction, composite, "image/jpeg")
	if err != nil {
		return Description{}, fault.Wrap(fault.KindService, err, "vision analysis failed")
	}

	return parseDescription(text)
}

// BuildInstruction assembles the background directive, the model-reference
// directive, and the fixed analytical rubric into one instruction.
func BuildInstruction(style BackgroundStyle, ref *ModelReferenceHint) string {
	bgInstruction := "The user wants the background to be a professional studio style (clean, minimal, well-lit, neutral or white background)."
	if style == BackgroundLifestyle {
		bgInstruction = "The user wants the background to be a lifestyle/real-life setting (natural, realistic, contextually appropriate for the outfit, e.g. street, home, cafe, park, etc)."
	}

	var modelInstruction string
	if ref != nil {
		if ref.Kind == "default" {
			modelInstruction = fmt.Sprintf("The model should be a %s model with a professional appearance.", ref.Gender)
		} else {
			modelInstruction = "The model should match the provided reference image in appearance and pose."
		}
	}

	sections := []string{bgInstruction}
	if modelInstruction != "" {
		sections = append(sections, modelInstruction)
	}
	sections = append(sections, "", analysisRubric)
	return strings.Join(sections, "\n")
}

func parseDescription(text string) (Description, error) {
	raw, err := ExtractObject(text)
	if err != nil {
		return Description{}, fault.Wrap(fault.KindDescriptionParse, err, "vision response contained no JSON")
	}
	var desc Description
	if err := json.Unmarshal([]byte(raw), &desc); err != nil {
		return Description{}, fault.Wrap(fault.KindDescriptionParse, err, "vision response JSON invalid")
	}
	return desc, nil
}
