package session

import (
	"encoding/json"

	"github.com/brand-loop/creatives/internal/assets"
	"github.com/brand-loop/creatives/internal/models"
)

// Session holds all mutable state for one conversation: per-asset version
// records plus the "latest" pointers used to resolve implicit references.
// The agent runtime makes at most one tool call per session turn, so a
// Session has no internal locking; cross-session isolation is the
// Manager's job.
type Session struct {
	ID    string
	state models.SessionState
}

// New returns an empty session.
func New(id string) *Session {
	return &Session{
		ID: id,
		state: models.SessionState{
			Assets: make(map[string]*models.AssetRecord),
		},
	}
}

// NextVersion returns the version number the next artifact of assetName
// should get. Pure projection of recorded state: calling it twice without
// an intervening Record returns the same value.
func (s *Session) NextVersion(assetName string) int {
	rec, ok := s.state.Assets[assetName]
	if !ok {
		return 1
	}
	return rec.Version + 1
}

// Record sets the current version and filename for assetName and appends
// the pair to its history, initializing the record on first use. It does
// not check that version matches NextVersion; that is the caller's
// responsibility.
func (s *Session) Record(assetName string, version int, filename string) {
	rec, ok := s.state.Assets[assetName]
	if !ok {
		rec = &models.AssetRecord{}
		s.state.Assets[assetName] = rec
	}
	rec.Version = version
	rec.Filename = filename
	rec.History = append(rec.History, models.VersionEntry{Version: version, Filename: filename})
}

// Asset returns the record for assetName, or nil if nothing was recorded.
func (s *Session) Asset(assetName string) *models.AssetRecord {
	return s.state.Assets[assetName]
}

// AssetNames returns all asset names with at least one recorded version.
func (s *Session) AssetNames() []string {
	names := make([]string, 0, len(s.state.Assets))
	for name := range s.state.Assets {
		names = append(names, name)
	}
	return names
}

// LastGeneratedImage returns the filename of the most recent image artifact.
func (s *Session) LastGeneratedImage() string {
	return s.state.LastGeneratedImage
}

// LastGeneratedVideo returns the filename of the most recent video artifact.
func (s *Session) LastGeneratedVideo() string {
	return s.state.LastGeneratedVideo
}

// CurrentAssetName returns the asset name most recently acted upon.
func (s *Session) CurrentAssetName() string {
	return s.state.CurrentAssetName
}

// NoteImage records filename as the latest image and assetName as current.
func (s *Session) NoteImage(assetName, filename string) {
	s.state.LastGeneratedImage = filename
	s.state.CurrentAssetName = assetName
}

// NoteVideo records filename as the latest video and assetName as current.
func (s *Session) NoteVideo(assetName, filename string) {
	s.state.LastGeneratedVideo = filename
	s.state.CurrentAssetName = assetName
}

// ResolveAssetName determines the effective asset name for an edit request:
// an explicit name wins, then the session's current asset, then the base
// name stripped from the source artifact's filename, then the default.
func (s *Session) ResolveAssetName(explicit, artifactFilename string) string {
	if explicit != "" {
		return explicit
	}
	if s.state.CurrentAssetName != "" {
		return s.state.CurrentAssetName
	}
	if base, ok := assets.BaseAssetName(artifactFilename); ok {
		return base
	}
	return assets.DefaultAssetName
}

// ResolveReferenceImage substitutes the session's last generated image for
// the "latest" sentinel. Returns ok=false when the sentinel is used but no
// image has been generated yet.
func (s *Session) ResolveReferenceImage(requested string) (string, bool) {
	if requested != ReferenceLatest {
		return requested, requested != ""
	}
	if s.state.LastGeneratedImage == "" {
		return "", false
	}
	return s.state.LastGeneratedImage, true
}

// ReferenceLatest is the sentinel reference image filename meaning "the
// most recently generated image in this session".
const ReferenceLatest = "latest"

// MarshalState serializes the session state for snapshot persistence.
func (s *Session) MarshalState() ([]byte, error) {
	return json.Marshal(&s.state)
}

// UnmarshalState restores session state from a snapshot.
func (s *Session) UnmarshalState(data []byte) error {
	var st models.SessionState
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}
	if st.Assets == nil {
		st.Assets = make(map[string]*models.AssetRecord)
	}
	s.state = st
	return nil
}
