package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// Service validates bearer tokens against a single bcrypt hash from
// configuration. An empty hash disables auth (local development).
type Service struct {
	apiKeyHash string
}

// NewService creates a new auth service
func NewService(apiKeyHash string) *Service {
	if apiKeyHash == "" {
		log.Warn().Msg("API_KEY_HASH not set; auth is disabled")
	}
	return &Service{apiKeyHash: apiKeyHash}
}

// Enabled reports whether a key hash is configured.
func (s *Service) Enabled() bool {
	return s.apiKeyHash != ""
}

// ValidateAPIKey checks a presented key against the configured hash.
func (s *Service) ValidateAPIKey(apiKey string) error {
	if !s.Enabled() {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.apiKeyHash), []byte(apiKey)); err != nil {
		return fmt.Errorf("invalid api key")
	}
	return nil
}

// Middleware creates an authentication middleware validating
// Authorization: Bearer <key>. A no-op when auth is disabled.
func (s *Service) Middleware(next http.Handler) http.Handler {
	if !s.Enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeJSONError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			writeJSONError(w, http.StatusUnauthorized, "invalid authorization header format")
			return
		}

		apiKey := strings.TrimSpace(parts[1])
		if apiKey == "" {
			writeJSONError(w, http.StatusUnauthorized, "empty api key")
			return
		}

		if err := s.ValidateAPIKey(apiKey); err != nil {
			log.Debug().Msg("Rejected api key")
			writeJSONError(w, http.StatusUnauthorized, "invalid api key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
