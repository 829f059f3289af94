// Package prompt assembles the instruction payloads sent to the
// image-synthesis service for each camera angle.
package prompt

// Angle is one of the four fixed camera/pose targets generated per run.
type Angle string

const (
	AngleFront   Angle = "Front"
	AngleCloseUp Angle = "Close-up"
	AngleBack    Angle = "Back"
	AngleSide    Angle = "Side"
)

// Angles returns the fixed generation order. Front must stay first: every
// other angle is conditioned on the Front result.
func Angles() []Angle {
	return []Angle{AngleFront, AngleCloseUp, AngleBack, AngleSide}
}

// cameraDirectives are the invariant pose/camera instructions per angle.
var cameraDirectives = map[Angle]string{
	AngleFront:   "The model should be standing and facing directly towards the camera, full body visible, arms relaxed at the sides, neutral facial expression, studio lighting, clean background.",
	AngleCloseUp: "The model should be shown in a close-up studio portrait, head and upper torso visible, looking slightly off-camera or straight ahead, natural confident expression, studio lighting, clean background.",
	AngleBack:    "The model should be standing and facing directly away from the camera, full body visible, arms relaxed at the sides, posture natural. The back of the shirt, pants, and all accessories must be clearly visible and unobstructed, studio lighting, clean background.",
	AngleSide:    "The model should be standing in a perfect side profile pose (left or right), body turned exactly 90 degrees to the camera, arms relaxed, side of the outfit clearly visible, studio lighting, clean background.",
}

// lifestyleDirectives extend the base lifestyle prompt for non-Front angles.
var lifestyleDirectives = map[Angle]string{
	AngleCloseUp: "Generate a close-up portrait crop of the same model shown in the input image. Focus on face and upper torso. Realistic lifestyle lighting.",
	AngleBack:    "Generate a back-facing lifestyle shot of the same model and outfit as the input image. Keep identity, body proportions, outfit, and lighting consistent. Use a realistic lifestyle background.",
	AngleSide:    "Show the same model from a clean side profile, standing in the same outfit and lighting. Use a realistic lifestyle background.",
}

// CameraDirective returns the fixed pose/camera instruction for the angle.
func CameraDirective(angle Angle) string {
	return cameraDirectives[angle]
}
