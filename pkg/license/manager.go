package license

import (
	"fmt"
	"time"
)

// EditionCommunity is the edition used when no license is configured.
const EditionCommunity = "community"

// Manager validates tokens against the current machine id.
type Manager struct {
	Secret string
}

func NewManager(secret string) *Manager {
	return &Manager{Secret: secret}
}

// Validate checks a license token and returns the licensed edition.
// An empty token with an empty secret runs as the community edition.
func (m *Manager) Validate(token string) (string, error) {
	if m.Secret == "" && token == "" {
		return EditionCommunity, nil
	}
	mid, err := MachineID()
	if err != nil {
		return "", fmt.Errorf("machine id: %w", err)
	}
	claims, err := ParseToken(m.Secret, token)
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	if claims.Machine != mid {
		return "", fmt.Errorf("license machine mismatch")
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return "", fmt.Errorf("license expired")
	}
	if claims.Edition == "" {
		return EditionCommunity, nil
	}
	return claims.Edition, nil
}

// Issue creates a token for this machine; used by the activation tooling.
func (m *Manager) Issue(edition string, ttl time.Duration) (string, error) {
	mid, err := MachineID()
	if err != nil {
		return "", fmt.Errorf("machine id: %w", err)
	}
	return CreateToken(m.Secret, mid, edition, ttl)
}
