package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	// Server
	HTTPAddr string
	MCPAddr  string
	LogLevel string

	// Auth: bcrypt hash of the bearer token accepted on the MCP and HTTP
	// surfaces. Empty disables auth (local development).
	APIKeyHash string

	// Database (optional session snapshot persistence)
	DatabaseURL string

	// Kafka (optional artifact event publishing; empty brokers disable it)
	KafkaBrokers        []string
	KafkaTopicArtifacts string

	// S3/Storage
	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3PublicURL string

	// Gemini API. When VertexProject is set the client uses the Vertex AI
	// backend with project/location; otherwise the Gemini API with the key.
	GeminiAPIKey   string
	VertexProject  string
	VertexLocation string
	ModelRewrite   string // prompt rewriting, e.g. gemini-2.5-flash
	ModelImage     string // image generation/editing, e.g. gemini-2.5-flash-image
	ModelVideo     string // video generation, e.g. veo-2.0-generate-001

	// Video generation defaults
	VideoAspectRatio      string
	VideoCount            int
	VideoDurationSeconds  int
	VideoPersonGeneration string
	VideoResolution       string
	VideoPollInterval     time.Duration
	VideoMaxPolls         int
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		MCPAddr:  getEnv("MCP_ADDR", ":9091"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		APIKeyHash: getEnv("API_KEY_HASH", ""),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		KafkaBrokers:        splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopicArtifacts: getEnv("KAFKA_TOPIC_ARTIFACTS", "creatives.artifacts.v1"),

		S3Endpoint:  getEnv("S3_ENDPOINT", "http://localhost:9000"),
		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3Bucket:    getEnv("S3_BUCKET", "creative-assets"),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_KEY", ""),
		S3PublicURL: getEnv("S3_PUBLIC_URL", ""),

		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		VertexProject:  getEnv("VERTEX_AI_PROJECT", ""),
		VertexLocation: getEnv("VERTEX_AI_LOCATION", "us-central1"),
		ModelRewrite:   getEnv("MODEL_REWRITE", "gemini-2.5-flash"),
		ModelImage:     getEnv("MODEL_IMAGE", "gemini-2.5-flash-image"),
		ModelVideo:     getEnv("MODEL_VIDEO", "veo-2.0-generate-001"),

		VideoAspectRatio:      getEnv("VIDEO_ASPECT_RATIO", "16:9"),
		VideoCount:            getEnvInt("VIDEO_NUMBER_OF_VIDEOS", 1),
		VideoDurationSeconds:  getEnvInt("VIDEO_DURATION_SECONDS", 8),
		VideoPersonGeneration: getEnv("VIDEO_PERSON_GENERATION", "ALLOW_ADULT"),
		VideoResolution:       getEnv("VIDEO_RESOLUTION", "720p"),
		VideoPollInterval:     getEnvDuration("VIDEO_POLL_INTERVAL", 10*time.Second),
		VideoMaxPolls:         clampMin(getEnvInt("VIDEO_MAX_POLLS", 90), 1),
	}
}

// VideoWaitCeiling is the worst-case wall-clock time a video tool call may
// spend polling, plus headroom for the submit and download calls. Server
// write timeouts on the tool surface must exceed this so a slow but
// successful job still gets its result string onto the wire.
func (c *Config) VideoWaitCeiling() time.Duration {
	return c.VideoPollInterval*time.Duration(c.VideoMaxPolls) + 2*time.Minute
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// splitList splits a comma-separated env value, dropping empty entries.
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// clampMin returns v if v >= min, otherwise min. Used to ensure config values are in valid range.
func clampMin(v, min int) int {
	if v < min {
		return min
	}
	return v
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
