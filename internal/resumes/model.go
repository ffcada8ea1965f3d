package resumes

import (
	"time"

	"resume-parser/internal/resume"
)

const (
	StatusDraft = "draft"
)

// Resume is a parsed resume owned by a user or guest.
type Resume struct {
	ID               string
	OwnerID          string
	Title            string
	Status           string
	SourceFileName   string
	SourceMediaType  string
	SourceFormat     string
	SourceSizeBytes  int64
	StorageKey       string
	ExtractedTextKey string
	Data             resume.Record
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
