package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// LifecyclePolicy groups the time-based policy knobs of the interview
// lifecycle. The values come from configuration; none of them are hard-coded
// business truths.
type LifecyclePolicy struct {
	// GracePeriod allows starting this long before the scheduled time.
	GracePeriod time.Duration
	// IdleTimeout moves an in-progress interview with no answer activity
	// to abandoned.
	IdleTimeout time.Duration
	// MissedAfter moves a never-started interview to missed this long
	// past its scheduled time.
	MissedAfter time.Duration
	// TTL fixes expires_at at scheduled_at + TTL, recomputed on
	// reschedule.
	TTL time.Duration
}

// DefaultLifecyclePolicy mirrors the configuration defaults.
func DefaultLifecyclePolicy() LifecyclePolicy {
	return LifecyclePolicy{
		GracePeriod: 5 * time.Minute,
		IdleTimeout: 2 * time.Hour,
		MissedAfter: 2 * time.Hour,
		TTL:         24 * time.Hour,
	}
}

// newAccessToken returns a cryptographically random bearer token for the
// public candidate flow.
func newAccessToken() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}

	return hex.EncodeToString(buf), nil
}
