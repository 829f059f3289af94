// Package edit re-runs synthesis against a single generated image with a
// modified instruction, preserving everything the user did not ask to change.
package edit

// Modifier is a predefined structured edit: a canned camera or lighting
// transformation the UI can offer without free-text input.
type Modifier struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Category string `json:"category"`
	Prompt   string `json:"prompt"`
}

var catalog = []Modifier{
	{
		ID:       "camera-zoom-out",
		Label:    "Zoom out",
		Category: "camera",
		Prompt:   "Pull the camera back to show the full body of the model with generous headroom, keeping the framing centered.",
	},
	{
		ID:       "camera-zoom-in",
		Label:    "Zoom in",
		Category: "camera",
		Prompt:   "Move the camera closer for a tighter crop on the outfit's upper half, keeping the garment details sharp.",
	},
	{
		ID:       "camera-low-angle",
		Label:    "Low angle",
		Category: "camera",
		Prompt:   "Shoot from a slightly low camera angle looking up at the model for an editorial feel.",
	},
	{
		ID:       "camera-three-quarter",
		Label:    "Three-quarter turn",
		Category: "camera",
		Prompt:   "Turn the model to a three-quarter angle so both the front and side of the outfit are visible.",
	},
	{
		ID:       "lighting-golden-hour",
		Label:    "Golden hour",
		Category: "lighting",
		Prompt:   "Relight the scene with warm golden-hour sunlight coming from the side, with soft long shadows.",
	},
	{
		ID:       "lighting-high-key",
		Label:    "High key",
		Category: "lighting",
		Prompt:   "Relight the scene as a bright high-key studio shot with even, shadowless white lighting.",
	},
	{
		ID:       "lighting-dramatic",
		Label:    "Dramatic",
		Category: "lighting",
		Prompt:   "Relight the scene with dramatic low-key lighting, a single strong key light and deep shadows.",
	},
	{
		ID:       "lighting-overcast",
		Label:    "Overcast",
		Category: "lighting",
		Prompt:   "Relight the scene with soft diffuse overcast daylight and gentle neutral shadows.",
	},
}

// Catalog returns the fixed set of structured modifiers.
func Catalog() []Modifier {
	out := make([]Modifier, len(catalog))
	copy(out, catalog)
	return out
}

// FindModifier looks a modifier up by ID.
func FindModifier(id string) (Modifier, bool) {
	for _, m := range catalog {
		if m.ID == id {
			return m, true
		}
	}
	return Modifier{}, false
}
