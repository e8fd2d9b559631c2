package models

import (
	"errors"
	"os"
	"strings"

	"github.com/dohr-michael/pal/internal/config"
)

// ErrNoCredential is returned by ResolveAuth when no API key can be found.
var ErrNoCredential = errors.New("GEMINI_API_KEY not set")

// CredentialEnvVars are checked in order when the config carries no key.
var CredentialEnvVars = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}

// ResolveAuth resolves the API key for the model gateway.
// Resolution order: direct api_key → ${VAR} indirection → GEMINI_API_KEY → GOOGLE_API_KEY.
func ResolveAuth(cfg config.ModelConfig) (string, error) {
	if key := resolve(cfg.Auth.APIKey); key != "" {
		return key, nil
	}

	for _, name := range CredentialEnvVars {
		if key := strings.TrimSpace(os.Getenv(name)); key != "" {
			return key, nil
		}
	}
	return "", ErrNoCredential
}

func resolve(token string) string {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "${") && strings.HasSuffix(trimmed, "}") {
		return strings.TrimSpace(os.Getenv(trimmed[2 : len(trimmed)-1]))
	}
	return trimmed
}
