package tools

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/brand-loop/creatives/internal/llm"
	"github.com/brand-loop/creatives/internal/models"
	"github.com/brand-loop/creatives/internal/session"
)

// MediaService is the media generation boundary the orchestrators call.
// *llm.Client implements it.
type MediaService interface {
	RewriteImagePrompt(ctx context.Context, prompt, textOverlay string) (string, error)
	RewriteAnimationPrompt(ctx context.Context, prompt string, imageData []byte, imageMime string) (string, error)
	GenerateImage(ctx context.Context, prompt, aspectRatio string) (*llm.Image, error)
	EditImage(ctx context.Context, imageData []byte, imageMime, prompt, aspectRatio string) (*llm.Image, error)
	GenerateVideo(ctx context.Context, prompt string, imageData []byte, imageMime string) (*llm.Video, error)
}

// ArtifactStore is the persistence boundary for artifacts. SaveArtifact
// returns the store-assigned revision for the filename; *storage.Client
// implements it.
type ArtifactStore interface {
	SaveArtifact(ctx context.Context, sessionID string, artifact *models.Artifact) (int, error)
	LoadArtifact(ctx context.Context, sessionID, filename string) (*models.Artifact, error)
}

// EventPublisher publishes artifact lifecycle events. May be nil-valued in
// the Toolbox to disable publishing.
type EventPublisher interface {
	PublishArtifact(ctx context.Context, event models.ArtifactEvent)
}

// Toolbox holds the orchestrators the agent runtime invokes. Every tool
// method returns a single human-readable string: the agent's only channel
// to the user is textual tool output, so failures are surfaced as text,
// never as errors or panics.
type Toolbox struct {
	media    MediaService
	store    ArtifactStore
	sessions *session.Manager
	events   EventPublisher // optional
}

// NewToolbox wires the orchestrators. events may be nil.
func NewToolbox(media MediaService, store ArtifactStore, sessions *session.Manager, events EventPublisher) *Toolbox {
	return &Toolbox{
		media:    media,
		store:    store,
		sessions: sessions,
		events:   events,
	}
}

// Sessions exposes the session manager for the serving layers.
func (t *Toolbox) Sessions() *session.Manager {
	return t.sessions
}

// publish emits an artifact event when a publisher is configured.
func (t *Toolbox) publish(ctx context.Context, sessionID, assetName string, version int, artifact *models.Artifact, kind string) {
	if t.events == nil {
		return
	}
	t.events.PublishArtifact(ctx, models.ArtifactEvent{
		ID:        uuid.New(),
		SessionID: sessionID,
		AssetName: assetName,
		Version:   version,
		Filename:  artifact.Filename,
		MimeType:  artifact.MimeType,
		SizeBytes: artifact.Size(),
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	})
}

// checkRevision logs when the store hands back an unexpected revision for a
// freshly derived filename. The ledger-allocated version stays authoritative.
func checkRevision(filename string, rev int) {
	if rev > 1 {
		log.Warn().
			Str("filename", filename).
			Int("store_revision", rev).
			Msg("Artifact filename already had stored revisions")
	}
}
