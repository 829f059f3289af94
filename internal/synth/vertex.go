package synth

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	aiplatform "cloud.google.com/go/aiplatform/apiv1"
	"cloud.google.com/go/aiplatform/apiv1/aiplatformpb"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/types/known/structpb"
)

// VertexClient renders images through Vertex AI Imagen predictions.
type VertexClient struct {
	projectID string
	location  string
	model     string
	apiKey    string
}

// VertexConfig describes how to reach the Imagen publisher model.
type VertexConfig struct {
	ProjectID string
	Location  string
	Model     string
	APIKey    string
}

// NewVertexClient wires a Vertex Imagen synthesis client.
func NewVertexClient(cfg VertexConfig) *VertexClient {
	return &VertexClient{
		projectID: strings.TrimSpace(cfg.ProjectID),
		location:  strings.TrimSpace(cfg.Location),
		model:     strings.TrimSpace(cfg.Model),
		apiKey:    strings.TrimSpace(cfg.APIKey),
	}
}

// Generate runs one Imagen prediction conditioned on the request image and
// returns the rendered image bytes.
func (c *VertexClient) Generate(ctx context.Context, req Request) (any, error) {
	if c.projectID == "" || c.location == "" || c.model == "" {
		return nil, fmt.Errorf("vertex: missing project/location/model")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, fmt.Errorf("vertex: prompt is required")
	}
	if len(req.Image) == 0 {
		return nil, fmt.Errorf("vertex: conditioning image is required")
	}

	instance, err := structpb.NewValue(map[string]any{
		"prompt": req.Prompt,
		"image": map[string]any{
			"bytesBase64Encoded": base64.StdEncoding.EncodeToString(req.Image),
		},
	})
	if err != nil {
		return nil, err
	}

	params := map[string]any{
		"sampleCount": 1,
	}
	if req.NegativePrompt != "" {
		params["negativePrompt"] = req.NegativePrompt
	}
	paramsValue, err := structpb.NewValue(params)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("projects/%s/locations/%s/publishers/google/models/%s", c.projectID, c.location, c.model)
	options := []option.ClientOption{option.WithEndpoint(fmt.Sprintf("%s-aiplatform.googleapis.com:443", c.location))}
	if c.apiKey != "" {
		options = append(options, option.WithAPIKey(c.apiKey))
	}

	client, err := aiplatform.NewPredictionClient(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("vertex: prediction client: %w", err)
	}
	defer client.Close()

	resp, err := client.Predict(ctx, &aiplatformpb.PredictRequest{
		Endpoint:   endpoint,
		Instances:  []*structpb.Value{instance},
		Parameters: paramsValue,
	})
	if err != nil {
		return nil, fmt.Errorf("vertex: predict: %w", err)
	}
	if len(resp.Predictions) == 0 {
		return nil, fmt.Errorf("vertex: empty prediction response")
	}

	field := resp.Predictions[0].GetStructValue().GetFields()["bytesBase64Encoded"]
	if field == nil {
		return nil, fmt.Errorf("vertex: prediction missing bytes")
	}

	data, err := base64.StdEncoding.DecodeString(field.GetStringValue())
	if err != nil {
		return nil, fmt.Errorf("vertex: decode result: %w", err)
	}
	return data, nil
}
