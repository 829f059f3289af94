package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"tryonstudio/internal/config"
	"tryonstudio/internal/edit"
	"tryonstudio/internal/events"
	"tryonstudio/internal/llm"
	"tryonstudio/internal/media"
	"tryonstudio/internal/prompt"
	"tryonstudio/internal/scene"
	"tryonstudio/internal/server"
	"tryonstudio/internal/storage"
	"tryonstudio/internal/studio"
	"tryonstudio/internal/synth"
)

func main() {
	_ = godotenv.Load()

	cfg := config.FromEnv()
	ctx := context.Background()

	store, err := storage.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to init store: %v", err)
	}
	defer store.Close()

	var uploader media.Uploader
	if cfg.Media.Bucket != "" && cfg.Media.Region != "" {
		uploader, err = media.NewUploader(ctx, media.Config{
			Bucket:          cfg.Media.Bucket,
			Region:          cfg.Media.Region,
			Endpoint:        cfg.Media.Endpoint,
			PublicURL:       cfg.Media.PublicURL,
			KeyPrefix:       cfg.Media.KeyPrefix,
			ForcePathStyle:  cfg.Media.ForcePathStyle,
			AccessKeyID:     cfg.Media.AccessKeyID,
			SecretAccessKey: cfg.Media.SecretAccessKey,
		})
		if err != nil {
			log.Fatalf("failed to init media uploader: %v", err)
		}
	} else {
		uploader, err = media.NewLocalUploader("")
		if err != nil {
			log.Fatalf("failed to init local media storage: %v", err)
		}
		log.Println("media uploader: using local temp storage (S3 config missing)")
	}

	tokenSource, err := visionTokenSource(ctx, cfg.Vision.ServiceAccountJSON)
	if err != nil {
		log.Fatalf("failed to load vision credentials: %v", err)
	}
	visionClient := llm.NewGeminiClient(cfg.Vision.APIKey, cfg.Vision.Model, cfg.Vision.Timeout, tokenSource)

	synthClient := newSynthClient(cfg)

	eventBroker := events.NewBroker()
	httpClient := &http.Client{Timeout: 60 * time.Second}

	service := &studio.Service{
		Describer:  scene.NewDescriber(visionClient),
		Prompts:    prompt.NewSynthesizer(visionClient),
		Synth:      synthClient,
		Editor:     edit.NewOperator(synthClient, uploader, httpClient),
		Store:      store,
		Uploader:   uploader,
		Events:     eventBroker,
		HTTPClient: httpClient,
	}

	handler := studio.Handler{
		Service: service,
		Store:   store,
		Events:  eventBroker,
	}

	srv := server.New(cfg.Port, handler)

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-shutdownChan
		log.Println("shutting down server...")
		if err := srv.Close(); err != nil {
			log.Printf("server close error: %v", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server failed: %v", err)
	}
}

// visionTokenSource builds OAuth credentials from a service account, given
// either inline JSON or a path to a key file. An empty value means API-key
// auth.
func visionTokenSource(ctx context.Context, raw string) (oauth2.TokenSource, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	data := []byte(raw)
	if !strings.HasPrefix(raw, "{") {
		var err error
		data, err = os.ReadFile(raw)
		if err != nil {
			return nil, err
		}
	}
	creds, err := google.CredentialsFromJSON(ctx, data, "https://www.googleapis.com/auth/cloud-platform")
	if err != nil {
		return nil, err
	}
	return creds.TokenSource, nil
}

func newSynthClient(cfg config.Config) synth.Client {
	switch strings.ToLower(strings.TrimSpace(cfg.Synth.Provider)) {
	case "gemini":
		log.Println("synthesis backend: gemini")
		return synth.NewGeminiClient(cfg.Synth.GeminiAPIKey, cfg.Synth.GeminiModel, cfg.Synth.Timeout)
	case "vertex":
		log.Println("synthesis backend: vertex imagen")
		return synth.NewVertexClient(synth.VertexConfig{
			ProjectID: cfg.Synth.VertexProject,
			Location:  cfg.Synth.VertexLocation,
			Model:     cfg.Synth.VertexModel,
			APIKey:    cfg.Synth.GeminiAPIKey,
		})
	default:
		log.Println("synthesis backend: replicate")
		return synth.NewReplicateClient(cfg.Synth.ReplicateToken, cfg.Synth.ReplicateModel, cfg.Synth.Timeout)
	}
}
