// Package studio wires the generation pipeline behind the two entry-point
// operations the UI consumes: generate and edit.
package studio

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"tryonstudio/internal/compositor"
	"tryonstudio/internal/edit"
	"tryonstudio/internal/events"
	"tryonstudio/internal/fault"
	"tryonstudio/internal/llm"
	"tryonstudio/internal/media"
	"tryonstudio/internal/moodboard"
	"tryonstudio/internal/prompt"
	"tryonstudio/internal/scene"
	"tryonstudio/internal/storage"
	"tryonstudio/internal/synth"
)

// Service owns the shared dependencies of the pipeline. Each Generate call
// runs its own state; the service itself is safe for concurrent use.
type Service struct {
	Describer  *scene.Describer
	Prompts    *prompt.Synthesizer
	Synth      synth.Client
	Editor     *edit.Operator
	Store      storage.Store
	Uploader   media.Uploader
	Events     *events.Broker
	HTTPClient *http.Client
}

// ClothingItem is one uploaded image in a generate request. Image data is
// base64, with or without a data-URI prefix.
type ClothingItem struct {
	Name      string `json:"name,omitempty"`
	Role      string `json:"role"`
	ImageData string `json:"image_data"`
}

// ModelReference selects the try-on model casting.
type ModelReference struct {
	Type   string `json:"type"` // "default" or "custom"
	Gender string `json:"gender,omitempty"`
}

// GenerateRequest is the inbound payload for a full moodboard run.
type GenerateRequest struct {
	ClothingItems   []ClothingItem  `json:"clothing_items"`
	ModelReference  *ModelReference `json:"model_reference,omitempty"`
	BackgroundStyle string          `json:"background_style,omitempty"`
	Model           string          `json:"model,omitempty"` // optional vision model override
}

// GenerateResult is the terminal artifact of one run.
type GenerateResult struct {
	RunID     string              `json:"run_id"`
	Moodboard moodboard.Moodboard `json:"moodboard"`
	Timestamp time.Time           `json:"timestamp"`
}

// Generate runs the whole pipeline: compose, describe, then the four-angle
// orchestration. The result is all-or-nothing; a failure at any stage
// returns an error and no moodboard.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	if len(req.ClothingItems) == 0 {
		return GenerateResult{}, fault.New(fault.KindInput, "no clothing items provided")
	}

	style := scene.BackgroundStyle(strings.ToLower(strings.TrimSpace(req.BackgroundStyle)))
	if style == "" {
		style = scene.BackgroundStudio
	}
	if !style.Valid() {
		return GenerateResult{}, fault.New(fault.KindInput, "unknown background style %q", req.BackgroundStyle)
	}

	sources, err := decodeItems(req.ClothingItems)
	if err != nil {
		return GenerateResult{}, err
	}

	if req.Model != "" {
		ctx = llm.WithModel(ctx, req.Model)
	}

	runID := uuid.NewString()

	composite, err := compositor.Compose(sources)
	if err != nil {
		s.publish(events.Event{RunID: runID, Stage: events.StageFailed, Error: err.Error()})
		return GenerateResult{}, err
	}
	s.publish(events.Event{RunID: runID, Stage: events.StageComposited})

	compositeURL := s.hostComposite(ctx, composite)

	desc, err := s.Describer.Describe(ctx, composite, style, referenceHint(req.ModelReference))
	if err != nil {
		s.publish(events.Event{RunID: runID, Stage: events.StageFailed, Error: err.Error()})
		return GenerateResult{}, err
	}
	s.publish(events.Event{RunID: runID, Stage: events.StageDescribed})

	// A fresh orchestrator per run: the state machine is never reused.
	orch := &moodboard.Orchestrator{
		Prompts:    s.Prompts,
		Synth:      s.Synth,
		Uploader:   s.Uploader,
		HTTPClient: s.HTTPClient,
		OnView: func(view moodboard.View) {
			s.publish(events.Event{RunID: runID, Stage: events.StageViewReady, Label: view.Label})
		},
	}

	board, err := orch.Run(ctx, composite, desc, style)
	if err != nil {
		s.publish(events.Event{RunID: runID, Stage: events.StageFailed, Error: err.Error()})
		return GenerateResult{}, err
	}

	run := storage.Run{
		ID:              runID,
		BackgroundStyle: string(style),
		ModelIdentity:   desc.Model.Identity,
		CompositeURL:    compositeURL,
		Views:           board,
		Status:          "completed",
		CreatedAt:       time.Now(),
	}
	if s.Store != nil {
		if _, err := s.Store.CreateRun(ctx, run); err != nil {
			log.Printf("studio: persist run %s failed: %v", runID, err)
		}
	}
	s.publish(events.Event{RunID: runID, Stage: events.StageCompleted})

	return GenerateResult{RunID: runID, Moodboard: board, Timestamp: time.Now()}, nil
}

// EditRequest is the inbound payload for a single-image edit. RunID and
// Label are optional; when present the stored run's view is replaced.
type EditRequest struct {
	ImageURL   string `json:"image_url"`
	EditPrompt string `json:"edit_prompt,omitempty"`
	ModifierID string `json:"modifier_id,omitempty"`
	RunID      string `json:"run_id,omitempty"`
	Label      string `json:"label,omitempty"`
}

// EditResult carries the replacement image URL.
type EditResult struct {
	EditedURL string `json:"edited_url"`
}

// Edit re-runs synthesis for one image with the given instruction. The prior
// image is untouched; its URL is simply superseded.
func (s *Service) Edit(ctx context.Context, req EditRequest) (EditResult, error) {
	if strings.TrimSpace(req.ImageURL) == "" {
		return EditResult{}, fault.New(fault.KindInput, "image_url is required")
	}
	if strings.TrimSpace(req.EditPrompt) == "" && strings.TrimSpace(req.ModifierID) == "" {
		return EditResult{}, fault.New(fault.KindInput, "edit_prompt or modifier_id is required")
	}

	editedURL, err := s.Editor.Edit(ctx, req.ImageURL, edit.Instruction{
		Text:       req.EditPrompt,
		ModifierID: req.ModifierID,
	})
	if err != nil {
		return EditResult{}, err
	}

	if req.RunID != "" && req.Label != "" && s.Store != nil {
		// Last writer wins; concurrent edits of the same entry are not
		// serialized.
		if _, err := s.Store.ReplaceView(ctx, req.RunID, req.Label, editedURL); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return EditResult{}, fault.New(fault.KindNotFound, "run %s not found", req.RunID)
			}
			log.Printf("studio: persist edit for run %s failed: %v", req.RunID, err)
		}
	}
	s.publish(events.Event{RunID: req.RunID, Stage: events.StageEdited, Label: req.Label})

	return EditResult{EditedURL: editedURL}, nil
}

func (s *Service) publish(evt events.Event) {
	if s.Events != nil {
		s.Events.Publish(evt)
	}
}

// hostComposite uploads the layout image so the run record keeps a reviewable
// reference. Best effort: generation proceeds without it.
func (s *Service) hostComposite(ctx context.Context, composite []byte) string {
	if s.Uploader == nil {
		return ""
	}
	result, err := s.Uploader.Upload(ctx, media.UploadInput{
		Filename:    "composite.jpg",
		ContentType: "image/jpeg",
		Body:        bytes.NewReader(composite),
		Size:        int64(len(composite)),
	})
	if err != nil {
		log.Printf("studio: composite upload failed: %v", err)
		return ""
	}
	return result.URL
}

func decodeItems(items []ClothingItem) ([]compositor.SourceImage, error) {
	sources := make([]compositor.SourceImage, 0, len(items))
	for idx, item := range items {
		data, err := decodeImageData(item.ImageData)
		if err != nil {
			return nil, fault.Wrap(fault.KindInput, err, "clothing item %d has invalid image data", idx)
		}
		sources = append(sources, compositor.SourceImage{
			Data: data,
			Role: normalizeRole(item.Role),
		})
	}
	return sources, nil
}

func decodeImageData(raw string) ([]byte, error) {
	payload := strings.TrimSpace(raw)
	if idx := strings.Index(payload, ","); strings.HasPrefix(payload, "data:") && idx >= 0 {
		payload = payload[idx+1:]
	}
	return base64.StdEncoding.DecodeString(payload)
}

// normalizeRole accepts both singular and plural role spellings.
func normalizeRole(role string) compositor.Role {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "garment", "garments":
		return compositor.RoleGarment
	case "accessory", "accessories":
		return compositor.RoleAccessory
	default:
		return compositor.RoleModelReference
	}
}

func referenceHint(ref *ModelReference) *scene.ModelReferenceHint {
	if ref == nil {
		return nil
	}
	return &scene.ModelReferenceHint{Kind: ref.Type, Gender: ref.Gender}
}
