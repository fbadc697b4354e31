package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/brand-loop/creatives/internal/assets"
	"github.com/brand-loop/creatives/internal/llm"
	"github.com/brand-loop/creatives/internal/models"
	"github.com/brand-loop/creatives/internal/session"
)

// GenerateImage creates the first (or next) version of an image asset from
// a prompt.
func (t *Toolbox) GenerateImage(ctx context.Context, sess *session.Session, in GenerateImageInput) string {
	if err := in.Validate(); err != nil {
		return fmt.Sprintf("Invalid generate_image request: %v", err)
	}

	log.Info().
		Str("session_id", sess.ID).
		Str("asset_name", in.AssetName).
		Str("aspect_ratio", in.AspectRatio).
		Msg("Starting image generation")

	rewritten, err := t.media.RewriteImagePrompt(ctx, in.Prompt, in.TextOverlay)
	if err != nil {
		return fmt.Sprintf("An error occurred while generating the image: %v", err)
	}

	// Allocate the version before persisting; a failure below leaves the
	// counter untouched since NextVersion is a pure projection.
	version := sess.NextVersion(in.AssetName)
	filename := assets.VersionedFilename(in.AssetName, version, "png")

	image, err := t.media.GenerateImage(ctx, rewritten, in.AspectRatio)
	if err != nil {
		if errors.Is(err, llm.ErrNoImage) {
			return "No image was generated"
		}
		return fmt.Sprintf("An error occurred while generating the image: %v", err)
	}

	artifact := &models.Artifact{
		Filename: filename,
		MimeType: image.MimeType,
		Data:     image.Data,
	}
	rev, err := t.store.SaveArtifact(ctx, sess.ID, artifact)
	if err != nil {
		return fmt.Sprintf("Error saving generated image as artifact: %v", err)
	}
	checkRevision(filename, rev)

	sess.Record(in.AssetName, version, filename)
	sess.NoteImage(in.AssetName, filename)
	t.sessions.Persist(ctx, sess)
	t.publish(ctx, sess.ID, in.AssetName, version, artifact, "image")

	log.Info().
		Str("session_id", sess.ID).
		Str("artifact", filename).
		Int("version", version).
		Msg("Image generated and saved")

	return fmt.Sprintf("Image generated successfully! Saved as artifact: %s (version %d of %s)", filename, version, in.AssetName)
}
