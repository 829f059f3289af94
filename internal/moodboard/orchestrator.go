package moodboard

import (
	"context"
	"net/http"

	"tryonstudio/internal/fault"
	"tryonstudio/internal/imgx"
	"tryonstudio/internal/media"
	"tryonstudio/internal/prompt"
	"tryonstudio/internal/scene"
	"tryonstudio/internal/synth"
)

const (
	conditioningQuality = 95
	safetyTolerance     = synth.MaxSafetyTolerance
)

// Orchestrator drives the per-angle generation state machine. One instance
// serves many runs; each Run call owns its own state.
type Orchestrator struct {
	Prompts    *prompt.Synthesizer
	Synth      synth.Client
	Uploader   media.Uploader
	HTTPClient *http.Client

	// OnView, when set, is invoked after each successful angle.
	OnView func(view View)
}

// state enumerates the machine's positions. Transitions are strictly
// sequential; Front must hold its result before any later state may start.
type state int

const (
	stateFront state = iota
	stateCloseUp
	stateBack
	stateSide
	stateDone
)

var stateAngles = map[state]prompt.Angle{
	stateFront:   prompt.AngleFront,
	stateCloseUp: prompt.AngleCloseUp,
	stateBack:    prompt.AngleBack,
	stateSide:    prompt.AngleSide,
}

// run holds the mutable state of one generation run.
type run struct {
	orch             *Orchestrator
	style            scene.BackgroundStyle
	desc             scene.Description
	composite        []byte
	garmentModelJSON string
	frontImage       []byte
	board            Moodboard
	state            state
}

// Run executes the full Front -> Close-up -> Back -> Side sequence and
// returns the completed moodboard. Any failure aborts the run; no partial
// moodboard is ever returned.
func (o *Orchestrator) Run(ctx context.Context, composite []byte, desc scene.Description, style scene.BackgroundStyle) (Moodboard, error) {
	if o == nil || o.Synth == nil {
		return nil, fault.New(fault.KindService, "synthesis client unavailable")
	}
	if len(composite) == 0 {
		return nil, fault.New(fault.KindInput, "composite image is required")
	}

	r := &run{
		orch:      o,
		style:     style,
		desc:      desc,
		composite: composite,
		board:     make(Moodboard, 0, len(stateAngles)),
	}

	// Studio mode derives the angle-independent garment/model JSON once so
	// garment identity stays stable across all four images.
	if style == scene.BackgroundStudio {
		jsonPrompt, err := o.Prompts.GarmentModelJSON(ctx, desc)
		if err != nil {
			return nil, err
		}
		r.garmentModelJSON = jsonPrompt
	}

	for r.state != stateDone {
		if err := r.step(ctx); err != nil {
			return nil, err
		}
	}
	return r.board, nil
}

// step performs one state transition.
func (r *run) step(ctx context.Context) error {
	angle, ok := stateAngles[r.state]
	if !ok {
		return fault.New(fault.KindService, "orchestrator in unknown state %d", r.state)
	}

	conditioning := r.composite
	if r.state != stateFront {
		// Non-Front angles are conditioned on the literal Front output, not
		// the composite. The front transition must have stored it.
		if len(r.frontImage) == 0 {
			return fault.New(fault.KindService, "front result missing before %s generation", angle)
		}
		conditioning = r.frontImage
	}

	url, err := r.generateView(ctx, angle, conditioning)
	if err != nil {
		return err
	}

	view := View{Label: string(angle), URL: url}
	r.board = append(r.board, view)
	if r.orch.OnView != nil {
		r.orch.OnView(view)
	}

	if r.state == stateFront {
		front, err := r.fetchConditioning(ctx, url)
		if err != nil {
			return err
		}
		r.frontImage = front
	}

	r.state++
	return nil
}

func (r *run) generateView(ctx context.Context, angle prompt.Angle, conditioning []byte) (string, error) {
	var payload prompt.Payload
	var err error
	if r.style == scene.BackgroundStudio {
		payload, err = r.orch.Prompts.BuildStudioPayload(ctx, r.garmentModelJSON, angle)
		if err != nil {
			return "", err
		}
	} else {
		payload = prompt.BuildLifestylePayload(r.desc, angle)
	}

	output, err := r.orch.Synth.Generate(ctx, synth.Request{
		Prompt:          payload.Prompt,
		NegativePrompt:  payload.NegativePrompt,
		Image:           conditioning,
		OutputFormat:    "jpg",
		SafetyTolerance: safetyTolerance,
	})
	if err != nil {
		return "", fault.Wrap(fault.KindService, err, "synthesis failed for %s", angle)
	}

	return synth.ResolveURL(ctx, output, r.orch.Uploader)
}

// fetchConditioning downloads the Front result and re-encodes it to the
// normalized JPEG form the synthesis backends expect.
func (r *run) fetchConditioning(ctx context.Context, url string) ([]byte, error) {
	data, err := imgx.Fetch(ctx, r.orch.HTTPClient, url)
	if err != nil {
		return nil, fault.Wrap(fault.KindService, err, "download front result")
	}
	normalized, err := imgx.ReencodeJPEG(data, conditioningQuality)
	if err != nil {
		return nil, fault.Wrap(fault.KindService, err, "re-encode front result")
	}
	return normalized, nil
}
