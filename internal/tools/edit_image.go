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

// EditImage produces a new version of an asset by applying edit
// instructions to an existing artifact. The new version is allocated under
// the resolved asset name's own counter, which may differ from the source
// artifact's asset.
func (t *Toolbox) EditImage(ctx context.Context, sess *session.Session, in EditImageInput) string {
	if err := in.Validate(); err != nil {
		return fmt.Sprintf("Invalid edit_image request: %v", err)
	}

	log.Info().
		Str("session_id", sess.ID).
		Str("artifact", in.ArtifactFilename).
		Msg("Starting image edit")

	source, err := t.store.LoadArtifact(ctx, sess.ID, in.ArtifactFilename)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Sprintf("Could not find image artifact: %s", in.ArtifactFilename)
		}
		return fmt.Sprintf("Error loading image artifact: %v", err)
	}

	assetName := sess.ResolveAssetName(in.AssetName, in.ArtifactFilename)
	version := sess.NextVersion(assetName)
	filename := assets.VersionedFilename(assetName, version, "png")

	image, err := t.media.EditImage(ctx, source.Data, source.MimeType, in.Prompt, in.AspectRatio)
	if err != nil {
		if errors.Is(err, llm.ErrNoImage) {
			return "No edited image was generated"
		}
		return fmt.Sprintf("An error occurred while editing the image: %v", err)
	}

	artifact := &models.Artifact{
		Filename: filename,
		MimeType: image.MimeType,
		Data:     image.Data,
	}
	rev, err := t.store.SaveArtifact(ctx, sess.ID, artifact)
	if err != nil {
		return fmt.Sprintf("Error saving edited image as artifact: %v", err)
	}
	checkRevision(filename, rev)

	sess.Record(assetName, version, filename)
	sess.NoteImage(assetName, filename)
	t.sessions.Persist(ctx, sess)
	t.publish(ctx, sess.ID, assetName, version, artifact, "image")

	log.Info().
		Str("session_id", sess.ID).
		Str("artifact", filename).
		Int("version", version).
		Msg("Image edited and saved")

	return fmt.Sprintf("Image edited successfully! Saved as artifact: %s (version %d of %s)", filename, version, assetName)
}
