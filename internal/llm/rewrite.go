package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"google.golang.org/genai"
)

// RewriteImagePrompt expands a user prompt into a single creative paragraph
// for the image model. An optional text overlay instruction is folded into
// the rewrite request. An empty rewrite falls back to the original prompt;
// a failed call is the caller's to surface.
func (c *Client) RewriteImagePrompt(ctx context.Context, prompt, textOverlay string) (string, error) {
	rewriteReq := fmt.Sprintf(`Rewrite the following prompt to be more descriptive and creative for an image generation model, adding relevant creative details: %s
**Important:** Output your prompt as a single paragraph`, prompt)
	if textOverlay != "" {
		rewriteReq += fmt.Sprintf(" the image should have the following text overlayed on it: '%s'", textOverlay)
	}

	rewritten, err := c.completeText(ctx, rewriteReq, nil, "")
	if err != nil {
		return "", fmt.Errorf("prompt rewrite failed: %w", err)
	}

	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		log.Warn().Msg("Rewrite model returned empty prompt, using original")
		return prompt, nil
	}
	logRewrite("RewriteImagePrompt", rewritten)
	return rewritten, nil
}

// RewriteAnimationPrompt expands a user prompt into an animation-focused
// paragraph for the video model, conditioned on the reference image.
func (c *Client) RewriteAnimationPrompt(ctx context.Context, prompt string, imageData []byte, imageMime string) (string, error) {
	rewriteReq := fmt.Sprintf(`Rewrite the following prompt to be more descriptive and creative for a video generation model that animates a still image.
The goal is to bring the image to life. Add details about movement, atmosphere, and focus.
Original prompt: %s
**Important:** Output your prompt as a single paragraph.`, prompt)

	rewritten, err := c.completeText(ctx, rewriteReq, imageData, imageMime)
	if err != nil {
		return "", fmt.Errorf("animation prompt rewrite failed: %w", err)
	}

	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		log.Warn().Msg("Rewrite model returned empty animation prompt, using original")
		return prompt, nil
	}
	logRewrite("RewriteAnimationPrompt", rewritten)
	return rewritten, nil
}

// completeText runs a single text completion, optionally conditioned on an
// image. Uses langchaingo when available, otherwise the unified client.
func (c *Client) completeText(ctx context.Context, prompt string, imageData []byte, imageMime string) (string, error) {
	if c.llmRewrite != nil {
		if imageData == nil {
			return llms.GenerateFromSinglePrompt(ctx, c.llmRewrite, prompt, llms.WithTemperature(0.8))
		}
		msg := llms.MessageContent{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.BinaryPart(imageMime, imageData),
				llms.TextPart(prompt),
			},
		}
		resp, err := c.llmRewrite.GenerateContent(ctx, []llms.MessageContent{msg}, llms.WithTemperature(0.8))
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", nil
		}
		return resp.Choices[0].Content, nil
	}

	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	if imageData != nil {
		parts = append([]*genai.Part{genai.NewPartFromBytes(imageData, imageMime)}, parts...)
	}
	contents := []*genai.Content{{Role: "user", Parts: parts}}
	resp, err := c.genaiClient.Models.GenerateContent(ctx, c.modelRewrite, contents, nil)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
