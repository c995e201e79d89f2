package driven

import "github.com/custodia-labs/bidflow/internal/core/domain"

// ProfileStore loads the business profile.
// It never fails: an unreadable source yields the default profile.
type ProfileStore interface {
	Load(path string) domain.BusinessProfile
}
