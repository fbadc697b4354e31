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
	"github.com/brand-loop/creatives/internal/storage"
)

// GenerateVideo animates a reference image into a video. Videos version
// under the {asset}_video namespace, independent of the image counter for
// the same base name.
func (t *Toolbox) GenerateVideo(ctx context.Context, sess *session.Session, in GenerateVideoInput) string {
	if err := in.Validate(); err != nil {
		return fmt.Sprintf("Invalid generate_video request: %v", err)
	}

	refFilename, ok := sess.ResolveReferenceImage(in.ReferenceImageFilename)
	if !ok {
		return "No reference image specified or found. Please specify a reference_image_filename or generate an image first."
	}

	log.Info().
		Str("session_id", sess.ID).
		Str("asset_name", in.AssetName).
		Str("reference_image", refFilename).
		Msg("Starting video generation")

	reference, err := t.store.LoadArtifact(ctx, sess.ID, refFilename)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Sprintf("Could not load reference image: %s", refFilename)
		}
		return fmt.Sprintf("Error loading reference image: %v", err)
	}

	rewritten, err := t.media.RewriteAnimationPrompt(ctx, in.Prompt, reference.Data, reference.MimeType)
	if err != nil {
		return fmt.Sprintf("An error occurred while generating the video: %v", err)
	}

	videoAssetName := assets.VideoNamespace(in.AssetName)
	version := sess.NextVersion(videoAssetName)
	filename := assets.VersionedFilename(videoAssetName, version, "mp4")

	video, err := t.media.GenerateVideo(ctx, rewritten, reference.Data, reference.MimeType)
	if err != nil {
		if errors.Is(err, llm.ErrNoVideo) {
			return "Error occurred while generating video, or no videos were generated."
		}
		return fmt.Sprintf("An error occurred while generating the video: %v", err)
	}

	artifact := &models.Artifact{
		Filename: filename,
		MimeType: video.MimeType,
		Data:     video.Data,
	}
	rev, err := t.store.SaveArtifact(ctx, sess.ID, artifact)
	if err != nil {
		return fmt.Sprintf("Error saving generated video as artifact: %v", err)
	}
	checkRevision(filename, rev)

	sess.Record(videoAssetName, version, filename)
	sess.NoteVideo(videoAssetName, filename)
	t.sessions.Persist(ctx, sess)
	t.publish(ctx, sess.ID, videoAssetName, version, artifact, "video")

	log.Info().
		Str("session_id", sess.ID).
		Str("artifact", filename).
		Int("version", version).
		Msg("Video generated and saved")

	return fmt.Sprintf("Video generated successfully! Saved as artifact: %s (version %d of %s)", filename, version, videoAssetName)
}
