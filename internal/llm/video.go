package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// ErrNoVideo is returned when a completed video job carries no videos.
var ErrNoVideo = errors.New("video job completed with no videos")

// GenerateVideo submits a video generation job animating the reference
// image, polls it to completion and returns the first generated video.
// The wait is bounded by the configured poll limit and the caller's
// context.
func (c *Client) GenerateVideo(ctx context.Context, prompt string, imageData []byte, imageMime string) (*Video, error) {
	config := &genai.GenerateVideosConfig{
		AspectRatio:      c.video.AspectRatio,
		NumberOfVideos:   int32(c.video.Count),
		DurationSeconds:  genai.Ptr(int32(c.video.DurationSeconds)),
		PersonGeneration: c.video.PersonGeneration,
		Resolution:       c.video.Resolution,
	}

	image := &genai.Image{ImageBytes: imageData, MIMEType: imageMime}
	operation, err := c.genaiClient.Models.GenerateVideos(ctx, c.modelVideo, prompt, image, config)
	if err != nil {
		return nil, fmt.Errorf("failed to start video job: %w", err)
	}

	log.Info().
		Str("model", c.modelVideo).
		Str("operation", operation.Name).
		Dur("poll_interval", c.video.PollInterval).
		Int("max_polls", c.video.MaxPolls).
		Msg("Video job submitted, polling for completion")

	polls := 0
	for !operation.Done {
		if polls >= c.video.MaxPolls {
			return nil, fmt.Errorf("video job %s not done after %d polls", operation.Name, polls)
		}
		polls++

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.video.PollInterval):
		}

		operation, err = c.genaiClient.Operations.GetVideosOperation(ctx, operation, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to poll video job: %w", err)
		}
		log.Debug().Str("operation", operation.Name).Int("polls", polls).Bool("done", operation.Done).Msg("Video job polled")
	}

	if operation.Response == nil || len(operation.Response.GeneratedVideos) == 0 {
		return nil, ErrNoVideo
	}

	generated := operation.Response.GeneratedVideos[0]
	if generated.Video == nil {
		return nil, ErrNoVideo
	}

	videoBytes := generated.Video.VideoBytes
	if len(videoBytes) == 0 {
		// Gemini API returns a download URI instead of inline bytes.
		videoBytes, err = c.genaiClient.Files.Download(ctx, generated.Video, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to download generated video: %w", err)
		}
	}

	data, err := spoolVideo(videoBytes)
	if err != nil {
		return nil, err
	}

	mimeType := generated.Video.MIMEType
	if mimeType == "" {
		mimeType = "video/mp4"
	}

	log.Info().
		Str("model", c.modelVideo).
		Int("video_size_bytes", len(data)).
		Int("polls", polls).
		Msg("Video generated")

	return &Video{
		Data:     data,
		MimeType: mimeType,
		Model:    c.modelVideo,
	}, nil
}

// spoolVideo writes the downloaded bytes to a temp file and reads them
// back, guaranteeing removal of the file whether or not that succeeds.
func spoolVideo(videoBytes []byte) ([]byte, error) {
	tmp, err := os.CreateTemp("", "creatives-video-*.mp4")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp video file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err := os.Remove(tmpName); err != nil {
			log.Warn().Err(err).Str("path", tmpName).Msg("Failed to remove temp video file")
		}
	}()

	if _, err := tmp.Write(videoBytes); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to write temp video file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close temp video file: %w", err)
	}

	data, err := os.ReadFile(tmpName)
	if err != nil {
		return nil, fmt.Errorf("failed to read temp video file: %w", err)
	}
	return data, nil
}
