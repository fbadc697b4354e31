package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/brand-loop/creatives/internal/models"
	"github.com/brand-loop/creatives/internal/storage"
	"github.com/brand-loop/creatives/internal/tools"
)

// presignExpiration is how long artifact download URLs stay valid.
const presignExpiration = 15 * time.Minute

// Handler contains all HTTP handlers
type Handler struct {
	toolbox *tools.Toolbox
	storage *storage.Client // nil when S3 is not configured
}

// NewHandler creates a new handler. storage may be nil; artifact downloads
// then fall back to inline delivery.
func NewHandler(toolbox *tools.Toolbox, storage *storage.Client) *Handler {
	return &Handler{
		toolbox: toolbox,
		storage: storage,
	}
}

// Healthz handles GET /healthz
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListSessionAssets handles GET /v1/sessions/{id}/assets
func (h *Handler) ListSessionAssets(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]
	if sessionID == "" {
		writeJSONError(w, http.StatusBadRequest, "session id required")
		return
	}

	sess := h.toolbox.Sessions().Get(r.Context(), sessionID)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"assets":     h.toolbox.AssetSummaries(sess),
	})
}

// GetArtifact handles GET /v1/sessions/{id}/artifacts/{filename}.
// By default it returns artifact metadata with a presigned download URL;
// ?inline=true streams the artifact bytes directly.
func (h *Handler) GetArtifact(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]
	filename := vars["filename"]
	if sessionID == "" || filename == "" {
		writeJSONError(w, http.StatusBadRequest, "session id and filename required")
		return
	}

	sess := h.toolbox.Sessions().Get(r.Context(), sessionID)
	artifact, err := h.toolbox.LoadArtifact(r.Context(), sess, filename)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "artifact not found")
			return
		}
		log.Error().Err(err).Str("filename", filename).Msg("Failed to load artifact")
		writeJSONError(w, http.StatusInternalServerError, "failed to load artifact")
		return
	}

	inline, _ := strconv.ParseBool(r.URL.Query().Get("inline"))
	if !inline && h.storage != nil {
		// Public buckets skip presigning.
		url := h.storage.PublicURL(sessionID, filename)
		if url == "" {
			url, err = h.storage.PresignedURL(r.Context(), sessionID, filename, presignExpiration)
			if err != nil {
				log.Error().Err(err).Str("filename", filename).Msg("Failed to presign artifact URL")
				writeJSONError(w, http.StatusInternalServerError, "failed to generate download URL")
				return
			}
		}
		writeJSON(w, http.StatusOK, models.ArtifactResponse{
			Filename:    artifact.Filename,
			MimeType:    artifact.MimeType,
			SizeBytes:   artifact.Size(),
			DownloadURL: url,
		})
		return
	}

	w.Header().Set("Content-Type", artifact.MimeType)
	w.Header().Set("Content-Length", strconv.FormatInt(artifact.Size(), 10))
	w.WriteHeader(http.StatusOK)
	w.Write(artifact.Data)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
