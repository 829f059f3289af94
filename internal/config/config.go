package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration values.
type Config struct {
	Port        string
	DatabaseURL string
	Media       MediaConfig
	Vision      VisionConfig
	Synth       SynthConfig
}

// MediaConfig describes S3/media related configuration.
type MediaConfig struct {
	Bucket          string
	Region          string
	Endpoint        string
	PublicURL       string
	KeyPrefix       string
	ForcePathStyle  bool
	AccessKeyID     string
	SecretAccessKey string
}

// VisionConfig configures the Gemini vision/description client.
type VisionConfig struct {
	APIKey             string
	Model              string
	ServiceAccountJSON string
	Timeout            time.Duration
}

// SynthConfig selects and configures the image-synthesis backend.
type SynthConfig struct {
	Provider       string
	ReplicateToken string
	ReplicateModel string
	GeminiAPIKey   string
	GeminiModel    string
	VertexProject  string
	VertexLocation string
	VertexModel    string
	Timeout        time.Duration
}

// FromEnv loads configuration from environment variables and applies defaults.
func FromEnv() Config {
	cfg := Config{
		Port:        getenv("APP_PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Media: MediaConfig{
			Bucket:          os.Getenv("S3_BUCKET"),
			Region:          os.Getenv("S3_REGION"),
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			PublicURL:       os.Getenv("S3_PUBLIC_URL"),
			KeyPrefix:       strings.Trim(os.Getenv("S3_KEY_PREFIX"), "/"),
			ForcePathStyle:  getenvBool("S3_FORCE_PATH_STYLE", false),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		},
		Vision: VisionConfig{
			APIKey:             os.Getenv("GEMINI_API_KEY"),
			Model:              getenv("GEMINI_MODEL", "gemini-2.0-flash"),
			ServiceAccountJSON: os.Getenv("GEMINI_SERVICE_ACCOUNT_JSON"),
			Timeout:            time.Duration(getenvInt("VISION_TIMEOUT_SECONDS", 60)) * time.Second,
		},
		Synth: SynthConfig{
			Provider:       strings.ToLower(getenv("SYNTH_PROVIDER", "replicate")),
			ReplicateToken: os.Getenv("REPLICATE_API_TOKEN"),
			ReplicateModel: getenv("REPLICATE_MODEL", "black-forest-labs/flux-kontext-pro"),
			GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
			GeminiModel:    getenv("SYNTH_GEMINI_MODEL", "gemini-2.5-flash-image"),
			VertexProject:  os.Getenv("VERTEX_PROJECT_ID"),
			VertexLocation: getenv("VERTEX_LOCATION", "us-central1"),
			VertexModel:    getenv("VERTEX_MODEL", "imagegeneration@006"),
			Timeout:        time.Duration(getenvInt("SYNTH_TIMEOUT_SECONDS", 180)) * time.Second,
		},
	}

	if cfg.Port == "" {
		log.Fatal("APP_PORT cannot be empty")
	}

	return cfg
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}

func getenvBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}

	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}

	return parsed
}

func getenvInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}

	return parsed
}
