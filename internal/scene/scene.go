// Package scene derives a structured garment/model description from the
// layout image by way of the vision service.
package scene

// BackgroundStyle selects the setting the generated photos should use.
type BackgroundStyle string

const (
	BackgroundStudio    BackgroundStyle = "studio"
	BackgroundLifestyle BackgroundStyle = "lifestyle"
)

// Valid reports whether the style is one of the two supported settings.
func (s BackgroundStyle) Valid() bool {
	return s == BackgroundStudio || s == BackgroundLifestyle
}

// ModelReferenceHint describes how the try-on model should be cast: a default
// model of a given gender, or one matching a user-provided reference image.
type ModelReferenceHint struct {
	Kind   string `json:"kind"` // "default" or "custom"
	Gender string `json:"gender,omitempty"`
}

// Description is the structured record recovered from the vision response.
type Description struct {
	Prompt             string             `json:"prompt"`
	Model              ModelProfile       `json:"model"`
	Garment            GarmentBreakdown   `json:"garment"`
	Background         BackgroundPlan     `json:"background"`
	OutputRequirements OutputRequirements `json:"output_requirements"`
}

// ModelProfile captures identity and presentation of the try-on model.
type ModelProfile struct {
	Identity   string `json:"identity"`
	Pose       string `json:"pose"`
	Expression string `json:"expression"`
	Lighting   string `json:"lighting"`
}

// GarmentBreakdown lists every garment and accessory found in the layout.
type GarmentBreakdown struct {
	Items []GarmentItem `json:"items"`
}

// GarmentItem is one analyzed clothing item or accessory with the eight
// attributes the rubric asks for.
type GarmentItem struct {
	Type     string `json:"type"`
	Location string `json:"location"`
	Color    string `json:"color"`
	Material string `json:"material"`
	Texture  string `json:"texture"`
	Fit      string `json:"fit"`
	Style    string `json:"style"`
	Gender   string `json:"gender"`
}

// BackgroundPlan describes the setting the model should be blended into.
type BackgroundPlan struct {
	Type        string `json:"type"`
	Style       string `json:"style"`
	Integration string `json:"integration"`
}

// OutputRequirements is the realism flag set the vision service fills in.
type OutputRequirements struct {
	PreserveModelLighting    bool   `json:"preserve_model_lighting"`
	BlendModelIntoBackground bool   `json:"blend_model_into_background"`
	NoPoseChange             bool   `json:"no_pose_change"`
	NoOutfitChange           bool   `json:"no_outfit_change"`
	RealisticShadows         string `json:"realistic_shadows"`
}
