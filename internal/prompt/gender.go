package prompt

import "strings"

// Gender is the three-way result of scanning a model identity string.
type Gender int

const (
	GenderUnspecified Gender = iota
	GenderFemale
	GenderMale
)

// DetectGender scans the model identity text for gender markers. "female" is
// checked before "male" since the latter is a substring of the former.
func DetectGender(modelIdentity string) Gender {
	lowered := strings.ToLower(modelIdentity)
	switch {
	case strings.Contains(lowered, "female"):
		return GenderFemale
	case strings.Contains(lowered, "male"):
		return GenderMale
	default:
		return GenderUnspecified
	}
}

// Template returns the gender-specific base prompt for lifestyle generation.
func (g Gender) Template() string {
	switch g {
	case GenderFemale:
		return "A professional female fashion model wearing the exact outfit shown in the layout image. The model is realistic, styled for a studio editorial photo, with natural lighting, proportional body, and confident posture."
	case GenderMale:
		return "A professional male fashion model wearing the exact outfit shown in the layout image. Keep the style, color, and texture consistent. Full body shot with confident posture, studio lighting, and fashion magazine realism."
	default:
		return "A single professional fashion model dressed in the outfit from the layout image, realistic body and posture, clean studio setup."
	}
}
