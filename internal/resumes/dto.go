package resumes

import (
	"time"

	"resume-parser/internal/resume"
)

// ResumeResponse is the outward-facing representation of a resume.
type ResumeResponse struct {
	ResumeID  string        `json:"resumeId"`
	Title     string        `json:"title"`
	Status    string        `json:"status"`
	Source    SourceInfo    `json:"source"`
	Data      resume.Record `json:"data"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// SourceInfo describes the uploaded file a resume was parsed from.
type SourceInfo struct {
	FileName  string `json:"fileName"`
	MediaType string `json:"mediaType"`
	Format    string `json:"format"`
	SizeBytes int64  `json:"sizeBytes"`
}

// SummaryResponse is one entry of the resume list.
type SummaryResponse struct {
	ResumeID  string    `json:"resumeId"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	FileName  string    `json:"fileName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toResponse(r Resume) ResumeResponse {
	return ResumeResponse{
		ResumeID: r.ID,
		Title:    r.Title,
		Status:   r.Status,
		Source: SourceInfo{
			FileName:  r.SourceFileName,
			MediaType: r.SourceMediaType,
			Format:    r.SourceFormat,
			SizeBytes: r.SourceSizeBytes,
		},
		Data:      r.Data,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func toSummary(r Resume) SummaryResponse {
	return SummaryResponse{
		ResumeID:  r.ID,
		Title:     r.Title,
		Status:    r.Status,
		FileName:  r.SourceFileName,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
