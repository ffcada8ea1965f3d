package resumes

import (
	"context"
	"time"

	"resume-parser/internal/resume"
)

// Repo defines persistence operations for resumes. Every lookup is scoped to
// the owner.
type Repo interface {
	Create(ctx context.Context, r Resume) error
	GetByID(ctx context.Context, ownerID, id string) (Resume, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Resume, error)
	UpdateData(ctx context.Context, ownerID, id, title string, data resume.Record, updatedAt time.Time) (Resume, error)
	Delete(ctx context.Context, ownerID, id string, deletedAt time.Time) error
}
