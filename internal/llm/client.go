package llm

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"google.golang.org/genai"
)

// maxRewriteLogBytes is the max length of a rewritten prompt to log in full.
const maxRewriteLogBytes = 2048

// VideoDefaults are the fixed parameters submitted with every video job,
// plus the polling policy for the long-running operation.
type VideoDefaults struct {
	AspectRatio      string
	Count            int
	DurationSeconds  int
	PersonGeneration string
	Resolution       string
	PollInterval     time.Duration
	MaxPolls         int
}

// Client wraps the Gemini media clients: the unified genai SDK for image
// and video modalities and a langchaingo model for prompt rewriting.
type Client struct {
	modelRewrite string
	modelImage   string
	modelVideo   string
	llmRewrite   llms.Model    // prompt rewriting; nil when running against Vertex without an API key
	genaiClient  *genai.Client // image/video modalities and rewrite fallback
	video        VideoDefaults
}

// Image is a generated or edited image.
type Image struct {
	Data     []byte
	MimeType string // e.g. "image/png" (from the response inline data)
	Model    string
}

// Video is a generated video.
type Video struct {
	Data     []byte
	MimeType string // e.g. "video/mp4"
	Model    string
}

// NewClient creates a new media client. When vertexProject is non-empty the
// unified SDK uses the Vertex AI backend with project/location; otherwise
// the Gemini API with apiKey. The langchaingo rewrite model requires an API
// key; without one, rewrites go through the unified client.
func NewClient(apiKey, vertexProject, vertexLocation, modelRewrite, modelImage, modelVideo string, video VideoDefaults) (*Client, error) {
	if modelRewrite == "" {
		modelRewrite = "gemini-2.5-flash"
	}
	if modelImage == "" {
		modelImage = "gemini-2.5-flash-image"
	}
	if modelVideo == "" {
		modelVideo = "veo-2.0-generate-001"
	}

	clientConfig := &genai.ClientConfig{}
	if vertexProject != "" {
		clientConfig.Backend = genai.BackendVertexAI
		clientConfig.Project = vertexProject
		clientConfig.Location = vertexLocation
	} else {
		clientConfig.Backend = genai.BackendGeminiAPI
		clientConfig.APIKey = apiKey
	}
	genaiClient, err := genai.NewClient(context.Background(), clientConfig)
	if err != nil {
		return nil, err
	}

	var llmRewrite llms.Model
	if apiKey != "" {
		llmRewrite, err = googleai.New(context.Background(),
			googleai.WithAPIKey(apiKey),
			googleai.WithDefaultModel(modelRewrite),
		)
		if err != nil {
			log.Error().Err(err).Str("model", modelRewrite).Msg("Failed to initialize rewrite model, using unified client")
			llmRewrite = nil
		}
	}

	log.Info().
		Str("model_rewrite", modelRewrite).
		Str("model_image", modelImage).
		Str("model_video", modelVideo).
		Str("vertex_project", vertexProject).
		Bool("langchaingo_rewrite", llmRewrite != nil).
		Msg("Media client initialized")

	return &Client{
		modelRewrite: modelRewrite,
		modelImage:   modelImage,
		modelVideo:   modelVideo,
		llmRewrite:   llmRewrite,
		genaiClient:  genaiClient,
		video:        video,
	}, nil
}

// logRewrite logs a rewritten prompt, truncating if over maxRewriteLogBytes.
func logRewrite(caller, rewritten string) {
	if len(rewritten) <= maxRewriteLogBytes {
		log.Info().Str("caller", caller).Str("rewritten_prompt", rewritten).Msg("Prompt rewritten")
		return
	}
	log.Info().
		Str("caller", caller).
		Str("rewritten_prompt", rewritten[:maxRewriteLogBytes]+"... [truncated]").
		Int("rewritten_prompt_len", len(rewritten)).
		Msg("Prompt rewritten")
}
