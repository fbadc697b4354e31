package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/brand-loop/creatives/internal/llm"
	"github.com/brand-loop/creatives/internal/models"
	"github.com/brand-loop/creatives/internal/session"
	"github.com/brand-loop/creatives/internal/storage"
)

// fakeMedia scripts the media generation boundary and records calls.
type fakeMedia struct {
	calls      []string
	rewriteErr error
	imageErr   error
	videoErr   error
	imageMime  string
}

func (f *fakeMedia) RewriteImagePrompt(_ context.Context, prompt, textOverlay string) (string, error) {
	f.calls = append(f.calls, "rewrite_image")
	if f.rewriteErr != nil {
		return "", f.rewriteErr
	}
	return "rewritten: " + prompt, nil
}

func (f *fakeMedia) RewriteAnimationPrompt(_ context.Context, prompt string, _ []byte, _ string) (string, error) {
	f.calls = append(f.calls, "rewrite_animation")
	if f.rewriteErr != nil {
		return "", f.rewriteErr
	}
	return "animated: " + prompt, nil
}

func (f *fakeMedia) GenerateImage(_ context.Context, prompt, aspectRatio string) (*llm.Image, error) {
	f.calls = append(f.calls, "generate_image")
	if f.imageErr != nil {
		return nil, f.imageErr
	}
	mime := f.imageMime
	if mime == "" {
		mime = "image/png"
	}
	return &llm.Image{Data: []byte("image-bytes"), MimeType: mime}, nil
}

func (f *fakeMedia) EditImage(_ context.Context, _ []byte, _, prompt, aspectRatio string) (*llm.Image, error) {
	f.calls = append(f.calls, "edit_image")
	if f.imageErr != nil {
		return nil, f.imageErr
	}
	return &llm.Image{Data: []byte("edited-bytes"), MimeType: "image/png"}, nil
}

func (f *fakeMedia) GenerateVideo(_ context.Context, prompt string, _ []byte, _ string) (*llm.Video, error) {
	f.calls = append(f.calls, "generate_video")
	if f.videoErr != nil {
		return nil, f.videoErr
	}
	return &llm.Video{Data: []byte("video-bytes"), MimeType: "video/mp4"}, nil
}

// memStore is an in-memory artifact store with per-filename revisions.
type memStore struct {
	objects map[string][]*models.Artifact
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]*models.Artifact)}
}

func (s *memStore) key(sessionID, filename string) string {
	return sessionID + "/" + filename
}

func (s *memStore) SaveArtifact(_ context.Context, sessionID string, artifact *models.Artifact) (int, error) {
	if s.saveErr != nil {
		return 0, s.saveErr
	}
	k := s.key(sessionID, artifact.Filename)
	s.objects[k] = append(s.objects[k], artifact)
	return len(s.objects[k]), nil
}

func (s *memStore) LoadArtifact(_ context.Context, sessionID, filename string) (*models.Artifact, error) {
	revs := s.objects[s.key(sessionID, filename)]
	if len(revs) == 0 {
		return nil, storage.ErrNotFound
	}
	return revs[len(revs)-1], nil
}

func newTestToolbox() (*Toolbox, *fakeMedia, *memStore, *session.Session) {
	media := &fakeMedia{}
	store := newMemStore()
	mgr := session.NewManager(nil)
	tb := NewToolbox(media, store, mgr, nil)
	sess := mgr.Get(context.Background(), "test-session")
	return tb, media, store, sess
}

func TestGenerateImage_Success(t *testing.T) {
	tb, _, store, sess := newTestToolbox()

	result := tb.GenerateImage(context.Background(), sess, GenerateImageInput{
		Prompt:    "a red bicycle",
		AssetName: "launch",
	})

	if !strings.Contains(result, "launch_v1.png") {
		t.Errorf("result %q does not name launch_v1.png", result)
	}
	if !strings.Contains(result, "version 1") {
		t.Errorf("result %q does not name version 1", result)
	}

	if _, err := store.LoadArtifact(context.Background(), sess.ID, "launch_v1.png"); err != nil {
		t.Errorf("artifact not persisted: %v", err)
	}
	if sess.LastGeneratedImage() != "launch_v1.png" {
		t.Errorf("last image = %q, want launch_v1.png", sess.LastGeneratedImage())
	}
	if sess.CurrentAssetName() != "launch" {
		t.Errorf("current asset = %q, want launch", sess.CurrentAssetName())
	}
	rec := sess.Asset("launch")
	if rec == nil || rec.Version != 1 || len(rec.History) != 1 {
		t.Errorf("ledger record = %+v, want version 1 with one history entry", rec)
	}
}

func TestGenerateImage_DefaultsApplied(t *testing.T) {
	tb, _, _, sess := newTestToolbox()

	result := tb.GenerateImage(context.Background(), sess, GenerateImageInput{Prompt: "poster"})
	if !strings.Contains(result, "marketing_post_v1.png") {
		t.Errorf("result %q does not use the default asset name", result)
	}
}

func TestGenerateImage_ValidationError(t *testing.T) {
	tb, media, _, sess := newTestToolbox()

	result := tb.GenerateImage(context.Background(), sess, GenerateImageInput{})
	if !strings.Contains(result, "prompt is required") {
		t.Errorf("result %q does not surface the validation error", result)
	}
	if len(media.calls) != 0 {
		t.Errorf("validation failure should make no external calls, got %v", media.calls)
	}
}

func TestGenerateImage_NoImageOutcome(t *testing.T) {
	tb, media, _, sess := newTestToolbox()
	media.imageErr = llm.ErrNoImage

	result := tb.GenerateImage(context.Background(), sess, GenerateImageInput{Prompt: "x", AssetName: "launch"})
	if result != "No image was generated" {
		t.Errorf("result = %q, want the distinct no-image outcome", result)
	}
	if sess.Asset("launch") != nil {
		t.Error("nothing should be recorded when no image is produced")
	}
	// The allocated number was never recorded, so the next call reuses it.
	if sess.NextVersion("launch") != 1 {
		t.Errorf("NextVersion after failure = %d, want 1", sess.NextVersion("launch"))
	}
}

func TestGenerateImage_SaveFailureLeavesLedgerUntouched(t *testing.T) {
	tb, _, store, sess := newTestToolbox()
	store.saveErr = context.DeadlineExceeded

	result := tb.GenerateImage(context.Background(), sess, GenerateImageInput{Prompt: "x", AssetName: "launch"})
	if !strings.Contains(result, "Error saving generated image") {
		t.Errorf("result = %q, want a save-error string", result)
	}
	if sess.Asset("launch") != nil {
		t.Error("failed save must not be recorded")
	}
}

func TestEditImage_ResolvesAssetFromFilename(t *testing.T) {
	tb, _, store, sess := newTestToolbox()
	store.SaveArtifact(context.Background(), sess.ID, &models.Artifact{
		Filename: "foo_v5.png", MimeType: "image/png", Data: []byte("src"),
	})

	result := tb.EditImage(context.Background(), sess, EditImageInput{
		ArtifactFilename: "foo_v5.png",
		Prompt:           "make it blue",
		AspectRatio:      "1:1",
	})

	// No asset_name and no current_asset_name: base name "foo" from the
	// filename, versioned under foo's own fresh counter.
	if !strings.Contains(result, "foo_v1.png") || !strings.Contains(result, "of foo") {
		t.Errorf("result %q should version under asset foo", result)
	}
}

func TestEditImage_FallsBackToDefaultAsset(t *testing.T) {
	tb, _, store, sess := newTestToolbox()
	store.SaveArtifact(context.Background(), sess.ID, &models.Artifact{
		Filename: "randomfile.png", MimeType: "image/png", Data: []byte("src"),
	})

	result := tb.EditImage(context.Background(), sess, EditImageInput{
		ArtifactFilename: "randomfile.png",
		Prompt:           "crop it",
		AspectRatio:      "16:9",
	})

	if !strings.Contains(result, "marketing_post_v1.png") {
		t.Errorf("result %q should fall back to the default asset name", result)
	}
}

func TestEditImage_NotFound(t *testing.T) {
	tb, media, _, sess := newTestToolbox()

	result := tb.EditImage(context.Background(), sess, EditImageInput{
		ArtifactFilename: "missing_v1.png",
		Prompt:           "tweak",
		AspectRatio:      "1:1",
	})
	if !strings.Contains(result, "Could not find image artifact: missing_v1.png") {
		t.Errorf("result = %q, want a not-found string", result)
	}
	if len(media.calls) != 0 {
		t.Errorf("not-found should make no media calls, got %v", media.calls)
	}
}

func TestEditImage_InvalidAspectRatio(t *testing.T) {
	tb, _, _, sess := newTestToolbox()

	result := tb.EditImage(context.Background(), sess, EditImageInput{
		ArtifactFilename: "foo_v1.png",
		Prompt:           "tweak",
		AspectRatio:      "21:9",
	})
	if !strings.Contains(result, "invalid aspect_ratio") {
		t.Errorf("result = %q, want an aspect ratio validation error", result)
	}
}

func TestGenerateVideo_NoReferenceImage(t *testing.T) {
	tb, media, _, sess := newTestToolbox()

	result := tb.GenerateVideo(context.Background(), sess, GenerateVideoInput{
		Prompt:                 "zoom in",
		ReferenceImageFilename: "latest",
	})
	if !strings.Contains(result, "No reference image") {
		t.Errorf("result = %q, want the no-reference failure", result)
	}
	if len(media.calls) != 0 {
		t.Errorf("no-reference failure must make no external calls, got %v", media.calls)
	}
}

func TestGenerateVideo_EmptyResult(t *testing.T) {
	tb, media, store, sess := newTestToolbox()
	media.videoErr = llm.ErrNoVideo
	store.SaveArtifact(context.Background(), sess.ID, &models.Artifact{
		Filename: "launch_v1.png", MimeType: "image/png", Data: []byte("img"),
	})

	result := tb.GenerateVideo(context.Background(), sess, GenerateVideoInput{
		Prompt:                 "pan across",
		AssetName:              "launch",
		ReferenceImageFilename: "launch_v1.png",
	})
	if !strings.Contains(result, "no videos were generated") {
		t.Errorf("result = %q, want the empty-result outcome", result)
	}
}

func TestEndToEnd_GenerateEditAnimate(t *testing.T) {
	tb, _, _, sess := newTestToolbox()
	ctx := context.Background()

	gen := tb.GenerateImage(ctx, sess, GenerateImageInput{Prompt: "product shot", AssetName: "launch"})
	if !strings.Contains(gen, "launch_v1.png") || !strings.Contains(gen, "version 1") {
		t.Fatalf("generate result = %q", gen)
	}

	edit := tb.EditImage(ctx, sess, EditImageInput{
		ArtifactFilename: "launch_v1.png",
		Prompt:           "brighter background",
		AspectRatio:      "1:1",
	})
	if !strings.Contains(edit, "launch_v2.png") || !strings.Contains(edit, "version 2") {
		t.Fatalf("edit result = %q", edit)
	}

	video := tb.GenerateVideo(ctx, sess, GenerateVideoInput{
		Prompt:                 "slow dolly in",
		AssetName:              "launch",
		ReferenceImageFilename: "latest",
	})
	if !strings.Contains(video, "launch_video_v1.mp4") {
		t.Fatalf("video result = %q", video)
	}

	// Image and video namespaces version independently.
	if sess.Asset("launch").Version != 2 {
		t.Errorf("launch version = %d, want 2", sess.Asset("launch").Version)
	}
	if sess.Asset("launch_video").Version != 1 {
		t.Errorf("launch_video version = %d, want 1", sess.Asset("launch_video").Version)
	}
	if sess.LastGeneratedVideo() != "launch_video_v1.mp4" {
		t.Errorf("last video = %q", sess.LastGeneratedVideo())
	}
}

func TestListAssetVersions(t *testing.T) {
	tb, _, _, sess := newTestToolbox()

	if got := tb.ListAssetVersions(sess); !strings.Contains(got, "No assets") {
		t.Errorf("empty session listing = %q", got)
	}

	tb.GenerateImage(context.Background(), sess, GenerateImageInput{Prompt: "x", AssetName: "promo"})
	got := tb.ListAssetVersions(sess)
	if !strings.Contains(got, "promo") || !strings.Contains(got, "promo_v1.png") {
		t.Errorf("listing %q missing promo_v1.png", got)
	}
}

func TestLoadArtifact(t *testing.T) {
	tb, _, store, sess := newTestToolbox()
	store.SaveArtifact(context.Background(), sess.ID, &models.Artifact{
		Filename: "promo_v1.png", MimeType: "image/png", Data: []byte("img"),
	})

	art, err := tb.LoadArtifact(context.Background(), sess, "promo_v1.png")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if art.MimeType != "image/png" || string(art.Data) != "img" {
		t.Errorf("loaded artifact = %+v", art)
	}

	if _, err := tb.LoadArtifact(context.Background(), sess, "nope.png"); err == nil {
		t.Error("expected error for missing artifact")
	}
}
