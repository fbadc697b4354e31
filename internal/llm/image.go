package llm

import (
	"context"
	"errors"
	"iter"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// ErrNoImage is returned when the generation stream finishes without
// producing inline image data. Callers report it conversationally rather
// than as a failure of the call itself.
var ErrNoImage = errors.New("no image in response stream")

// GenerateImage generates an image from a prompt at the given aspect ratio.
func (c *Client) GenerateImage(ctx context.Context, prompt, aspectRatio string) (*Image, error) {
	log.Debug().
		Str("aspect_ratio", aspectRatio).
		Int("prompt_length", len(prompt)).
		Msg("Generating image")

	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{genai.NewPartFromText(prompt)}},
	}
	return c.streamImage(ctx, "GenerateImage", contents, aspectRatio)
}

// EditImage applies edit instructions to an existing image at the given
// aspect ratio.
func (c *Client) EditImage(ctx context.Context, imageData []byte, imageMime, prompt, aspectRatio string) (*Image, error) {
	log.Debug().
		Str("aspect_ratio", aspectRatio).
		Int("image_size_bytes", len(imageData)).
		Int("prompt_length", len(prompt)).
		Msg("Editing image")

	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{
			genai.NewPartFromBytes(imageData, imageMime),
			genai.NewPartFromText(prompt),
		}},
	}
	return c.streamImage(ctx, "EditImage", contents, aspectRatio)
}

func (c *Client) streamImage(ctx context.Context, caller string, contents []*genai.Content, aspectRatio string) (*Image, error) {
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
		ImageConfig: &genai.ImageConfig{
			AspectRatio: aspectRatio,
		},
	}
	stream := c.genaiClient.Models.GenerateContentStream(ctx, c.modelImage, contents, config)
	return scanImageStream(caller, c.modelImage, stream)
}

// scanImageStream consumes the generation stream and short-circuits on the
// first chunk carrying inline image data; remaining chunks are discarded.
// A stream that ends without image data yields ErrNoImage.
func scanImageStream(caller, model string, stream iter.Seq2[*genai.GenerateContentResponse, error]) (*Image, error) {
	for resp, err := range stream {
		if err != nil {
			return nil, err
		}
		if len(resp.Candidates) == 0 {
			continue
		}
		cand := resp.Candidates[0]
		if cand.Content == nil || len(cand.Content.Parts) == 0 {
			continue
		}
		part := cand.Content.Parts[0]
		if part.InlineData == nil || len(part.InlineData.Data) == 0 {
			if part.Text != "" {
				log.Debug().Str("caller", caller).Str("chunk_text", part.Text).Msg("Text chunk in image stream")
			}
			continue
		}

		mimeType := part.InlineData.MIMEType
		if mimeType == "" {
			mimeType = "image/png"
		}
		log.Info().
			Str("caller", caller).
			Int("image_size_bytes", len(part.InlineData.Data)).
			Str("mime_type", mimeType).
			Msg("Image chunk received")

		return &Image{
			Data:     part.InlineData.Data,
			MimeType: mimeType,
			Model:    model,
		}, nil
	}

	log.Warn().
		Str("caller", caller).
		Str("model", model).
		Msg("Image stream finished without inline data")
	return nil, ErrNoImage
}
