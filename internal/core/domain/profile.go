package domain

// DefaultBusinessProfile is used whenever no profile file can be read.
const DefaultBusinessProfile = "Standard IT services and software engineering expertise."

// ProfileSource records where a BusinessProfile came from.
type ProfileSource string

const (
	// ProfileSourceFile means the profile was read from disk.
	ProfileSourceFile ProfileSource = "file"

	// ProfileSourceDefault means the built-in default was used.
	ProfileSourceDefault ProfileSource = "default"
)

// BusinessProfile is the free-form capability statement of the bidding company.
type BusinessProfile struct {
	// Text is the profile content, verbatim.
	Text string

	// Path is the file the profile was requested from.
	Path string

	// Source tells whether Text came from Path or is the default.
	Source ProfileSource
}

// DefaultProfile returns the fallback profile for path.
func DefaultProfile(path string) BusinessProfile {
	return BusinessProfile{
		Text:   DefaultBusinessProfile,
		Path:   path,
		Source: ProfileSourceDefault,
	}
}
