package file

import (
	"errors"
	"os"

	"github.com/custodia-labs/bidflow/internal/core/domain"
	"github.com/custodia-labs/bidflow/internal/core/ports/driven"
	"github.com/custodia-labs/bidflow/internal/logger"
)

// Ensure ProfileStore implements the interface.
var _ driven.ProfileStore = (*ProfileStore)(nil)

// ProfileStore reads the business profile from a text file on every Load.
type ProfileStore struct{}

// NewProfileStore creates a profile store.
func NewProfileStore() *ProfileStore {
	return &ProfileStore{}
}

// Load returns the file at path verbatim. A missing file yields the default
// profile; any other read failure does too, with a warning.
func (s *ProfileStore) Load(path string) domain.BusinessProfile {
	if path == "" {
		return domain.DefaultProfile(path)
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		return domain.BusinessProfile{Text: string(data), Path: path, Source: domain.ProfileSourceFile}
	case errors.Is(err, os.ErrNotExist):
		logger.Debug("No business profile at %s, using default", path)
	default:
		logger.Warnw("cannot read business profile, using default", "path", path, "error", err)
	}
	return domain.DefaultProfile(path)
}
