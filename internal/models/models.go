package models

import (
	"time"

	"github.com/google/uuid"
)

// Artifact is one persisted binary (image or video bytes plus MIME type),
// addressed by its filename within a session. Artifacts are immutable:
// created once per successful generation or edit, never rewritten.
type Artifact struct {
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	Data     []byte `json:"-"`
}

// Size returns the artifact payload size in bytes.
func (a *Artifact) Size() int64 {
	return int64(len(a.Data))
}

// VersionEntry is one row of an asset's append-only version history.
type VersionEntry struct {
	Version  int    `json:"version"`
	Filename string `json:"filename"`
}

// AssetRecord tracks the current version, current filename and the full
// history for one asset name within a session.
type AssetRecord struct {
	Version  int            `json:"version"`
	Filename string         `json:"filename"`
	History  []VersionEntry `json:"history"`
}

// SessionState is the serializable state of one conversation session.
type SessionState struct {
	Assets             map[string]*AssetRecord `json:"assets"`
	LastGeneratedImage string                  `json:"last_generated_image,omitempty"`
	LastGeneratedVideo string                  `json:"last_generated_video,omitempty"`
	CurrentAssetName   string                  `json:"current_asset_name,omitempty"`
}

// ArtifactEvent is published after each successful generation or edit.
type ArtifactEvent struct {
	ID        uuid.UUID `json:"id"`
	SessionID string    `json:"session_id"`
	AssetName string    `json:"asset_name"`
	Version   int       `json:"version"`
	Filename  string    `json:"filename"`
	MimeType  string    `json:"mime_type"`
	SizeBytes int64     `json:"size_bytes"`
	Kind      string    `json:"kind"` // image, video
	CreatedAt time.Time `json:"created_at"`
}

// AssetSummary is asset version info for API responses (list assets).
type AssetSummary struct {
	AssetName string         `json:"asset_name"`
	Version   int            `json:"version"`
	Filename  string         `json:"filename"`
	History   []VersionEntry `json:"history"`
}

// ArtifactResponse is artifact metadata with a download URL for the HTTP API.
type ArtifactResponse struct {
	Filename    string `json:"filename"`
	MimeType    string `json:"mime_type"`
	SizeBytes   int64  `json:"size_bytes"`
	DownloadURL string `json:"download_url,omitempty"`
}
