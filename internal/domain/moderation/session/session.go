package session

import (
	"regexp"

	domainerrors "github.com/zipwire/moderation-service/internal/domain/moderation/errors"
)

// StateSource tags which state source is canonical for a session.
type StateSource string

const (
	// SourceStructured means a caller-supplied structured article set is canonical.
	SourceStructured StateSource = "structured"

	// SourceTextExtracted means articles were reconstructed from rendered
	// display markup; extracted data is best-effort and never authoritative
	// for writes.
	SourceTextExtracted StateSource = "text_extracted"

	// SourceLocalOnly means no canonical server state exists and the local
	// cache is the only backend for this session.
	SourceLocalOnly StateSource = "local_only"
)

var zipPattern = regexp.MustCompile(`^\d{5}$`)

// Session carries the active tenant and canonical state source. Every scoring,
// reconciler and controller operation takes the session explicitly; the tenant
// is never read from ambient state.
type Session struct {
	ZipCode string
	Source  StateSource
}

// New creates a session for a validated 5-digit zip code tenant.
func New(zipCode string, source StateSource) (*Session, error) {
	if !ValidZip(zipCode) {
		return nil, domainerrors.ErrTenantNotResolved
	}
	return &Session{ZipCode: zipCode, Source: source}, nil
}

// ValidZip reports whether s is exactly five digits.
func ValidZip(s string) bool {
	return zipPattern.MatchString(s)
}

// Remote reports whether the session writes through to the remote store.
func (s *Session) Remote() bool {
	return s.Source != SourceLocalOnly
}
