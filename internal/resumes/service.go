package resumes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-parser/internal/extract"
	"resume-parser/internal/parsing"
	"resume-parser/internal/resume"
	"resume-parser/internal/shared/storage/object"
	"resume-parser/internal/shared/telemetry"
	"resume-parser/internal/shared/util"
)

// Parser runs the ingestion pipeline.
type Parser interface {
	Parse(ctx context.Context, doc extract.Document) (parsing.Result, error)
}

// Upload is a file received at the HTTP or CLI boundary.
type Upload struct {
	FileName  string
	MediaType string
	Data      []byte
}

// Service contains business logic for resumes.
type Service struct {
	Parser Parser
	Store  object.ObjectStore
	Repo   Repo

	now   func() time.Time
	newID func() string
}

func NewService(parser Parser, store object.ObjectStore, repo Repo) *Service {
	return &Service{Parser: parser, Store: store, Repo: repo, now: time.Now, newID: uuid.NewString}
}

// ParseUpload runs the pipeline over an upload and saves the result as a
// draft. Nothing is stored when parsing fails.
func (s *Service) ParseUpload(ctx context.Context, ownerID string, up Upload) (Resume, error) {
	if strings.TrimSpace(ownerID) == "" {
		return Resume{}, fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}

	mediaType := extract.ResolveMediaType(up.MediaType, up.FileName, up.Data)
	result, err := s.Parser.Parse(ctx, extract.Document{
		Data:      up.Data,
		MediaType: mediaType,
		Size:      int64(len(up.Data)),
		FileName:  up.FileName,
	})
	if err != nil {
		return Resume{}, err
	}

	now := s.now().UTC()
	res := Resume{
		ID:              s.newID(),
		OwnerID:         ownerID,
		Title:           result.Record.DisplayName(),
		Status:          StatusDraft,
		SourceFileName:  up.FileName,
		SourceMediaType: mediaType,
		SourceFormat:    result.Format.String(),
		SourceSizeBytes: int64(len(up.Data)),
		Data:            result.Record,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if s.Store != nil {
		if err := s.storeSources(ctx, &res, up.Data, result.Text); err != nil {
			return Resume{}, err
		}
	}

	if err := s.Repo.Create(ctx, res); err != nil {
		s.deleteObjects(ctx, res)
		return Resume{}, fmt.Errorf("save resume: %w", err)
	}
	return res, nil
}

func (s *Service) storeSources(ctx context.Context, res *Resume, original []byte, text string) error {
	name, err := util.SanitizeFileName(res.SourceFileName)
	if err != nil {
		name = "upload"
	}
	base := path.Join("resumes", util.OwnerKey(res.OwnerID), res.ID)

	originalKey := path.Join(base, name)
	if _, err := s.Store.Put(ctx, originalKey, res.SourceMediaType, bytes.NewReader(original)); err != nil {
		return fmt.Errorf("store original: %w", err)
	}
	res.StorageKey = originalKey

	textKey := path.Join(base, name+".extracted.txt")
	if _, err := s.Store.Put(ctx, textKey, "text/plain; charset=utf-8", strings.NewReader(text)); err != nil {
		s.deleteObjects(ctx, *res)
		return fmt.Errorf("store extracted text: %w", err)
	}
	res.ExtractedTextKey = textKey
	return nil
}

func (s *Service) deleteObjects(ctx context.Context, res Resume) {
	if s.Store == nil {
		return
	}
	for _, key := range []string{res.StorageKey, res.ExtractedTextKey} {
		if key == "" {
			continue
		}
		if err := s.Store.Delete(context.WithoutCancel(ctx), key); err != nil {
			telemetry.Warn("resumes.object_delete_failed", map[string]any{
				"resume_id": res.ID,
				"key":       key,
				"error":     err,
			})
		}
	}
}

// Get returns one resume owned by ownerID.
func (s *Service) Get(ctx context.Context, ownerID, id string) (Resume, error) {
	if ownerID == "" || id == "" {
		return Resume{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, ownerID, id)
}

// List returns an owner's resumes, newest first.
func (s *Service) List(ctx context.Context, ownerID string, limit, offset int) ([]Resume, error) {
	if ownerID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByOwner(ctx, ownerID, limit, offset)
}

// Update replaces a resume's record with a user-edited one. The body must
// carry every required section and pass the field rules.
func (s *Service) Update(ctx context.Context, ownerID, id, title string, data []byte) (Resume, error) {
	if ownerID == "" || id == "" {
		return Resume{}, ErrInvalidInput
	}
	rec, err := resume.Normalize(string(data))
	if err != nil {
		return Resume{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	rec, err = resume.PrepareEdit(rec)
	if err != nil {
		return Resume{}, err
	}
	return s.Repo.UpdateData(ctx, ownerID, id, strings.TrimSpace(title), rec, s.now().UTC())
}

// Delete removes a resume and its stored files.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	res, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, ownerID, id, s.now().UTC()); err != nil {
		return err
	}
	s.deleteObjects(ctx, res)
	return nil
}

// OpenOriginal streams the uploaded file behind a resume.
func (s *Service) OpenOriginal(ctx context.Context, ownerID, id string) (Resume, io.ReadCloser, error) {
	res, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return Resume{}, nil, err
	}
	if s.Store == nil || res.StorageKey == "" {
		return Resume{}, nil, ErrNotFound
	}
	rc, err := s.Store.Open(ctx, res.StorageKey)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return Resume{}, nil, ErrNotFound
		}
		return Resume{}, nil, err
	}
	return res, rc, nil
}
