package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/brand-loop/creatives/internal/models"
	"github.com/brand-loop/creatives/internal/session"
)

// ListAssetVersions renders a per-asset summary of everything created in
// the session, for the agent to show the user prior work.
func (t *Toolbox) ListAssetVersions(sess *session.Session) string {
	names := sess.AssetNames()
	if len(names) == 0 {
		return "No assets have been created in this session yet."
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Assets created in this session:\n")
	for _, name := range names {
		rec := sess.Asset(name)
		fmt.Fprintf(&b, "- %s: current version %d (%s)\n", name, rec.Version, rec.Filename)
		for _, entry := range rec.History {
			fmt.Fprintf(&b, "    v%d: %s\n", entry.Version, entry.Filename)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// LoadArtifact is the read-only artifact capability exposed to the agent.
// Unlike the generation tools it returns the artifact itself, since the
// serving layer renders binary content for the agent to inspect.
func (t *Toolbox) LoadArtifact(ctx context.Context, sess *session.Session, filename string) (*models.Artifact, error) {
	if filename == "" {
		return nil, fmt.Errorf("filename is required")
	}
	return t.store.LoadArtifact(ctx, sess.ID, filename)
}

// AssetSummaries returns structured version info for the HTTP API.
func (t *Toolbox) AssetSummaries(sess *session.Session) []models.AssetSummary {
	names := sess.AssetNames()
	sort.Strings(names)
	summaries := make([]models.AssetSummary, 0, len(names))
	for _, name := range names {
		rec := sess.Asset(name)
		summaries = append(summaries, models.AssetSummary{
			AssetName: name,
			Version:   rec.Version,
			Filename:  rec.Filename,
			History:   rec.History,
		})
	}
	return summaries
}
