package resumes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"resume-parser/internal/extract"
	"resume-parser/internal/extract/extracttest"
	"resume-parser/internal/llm"
	"resume-parser/internal/parsing"
	"resume-parser/internal/resume"
	"resume-parser/internal/resumes"
	"resume-parser/internal/shared/server/middleware"
	"resume-parser/internal/shared/storage/object/local"
)

const modelReply = `{
  "personalInfo": {"fullName": "Jane Doe", "email": "jane@x.com", "phone": "+1 555 0100"},
  "experience": [{"jobTitle": "Engineer", "company": "Acme", "startDate": "2021", "endDate": "Present", "description": "", "achievements": []}],
  "education": [],
  "skills": ["Go"]
}`

type replyCompleter struct {
	reply string
}

func (r replyCompleter) Complete(context.Context, string) (string, error) { return r.reply, nil }

type stubParser struct {
	err error
}

func (s stubParser) Parse(context.Context, extract.Document) (parsing.Result, error) {
	return parsing.Result{}, s.err
}

func newRouter(t *testing.T, parser resumes.Parser, maxUpload int64) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := resumes.NewService(parser, local.New(t.TempDir()), resumes.NewMemoryRepo())
	h := resumes.NewHandler(svc, maxUpload, 5*time.Second)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Auth("dev"))
	h.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func pipelineParser() resumes.Parser {
	return parsing.NewService(extract.New(), llm.NewRequester(replyCompleter{reply: modelReply}))
}

func multipartUpload(t *testing.T, fileName, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func do(t *testing.T, router http.Handler, method, path string, body io.Reader, contentType, guest string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("X-Guest-Id", guest)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func errorCode(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error body %q: %v", resp.Body.String(), err)
	}
	return payload.Error.Code
}

func TestParseAndManageResume(t *testing.T) {
	router := newRouter(t, pipelineParser(), 0)
	docx := extracttest.DOCX(t, extracttest.Paragraphs("Jane Doe", "jane@x.com", "Engineer at Acme"))

	// Generic upload types are resolved from the payload.
	body, ct := multipartUpload(t, "jane.docx", "application/octet-stream", docx)
	resp := do(t, router, http.MethodPost, "/api/v1/resumes/parse", body, ct, "g1")
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created struct {
		ResumeID string        `json:"resumeId"`
		Title    string        `json:"title"`
		Data     resume.Record `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.ResumeID == "" {
		t.Fatalf("expected resumeId")
	}
	if created.Title != "Jane Doe Resume" {
		t.Fatalf("unexpected title %q", created.Title)
	}
	if created.Data.Experience[0].EndDate != "Present" {
		t.Fatalf("unexpected end date %q", created.Data.Experience[0].EndDate)
	}

	resp = do(t, router, http.MethodGet, "/api/v1/resumes/"+created.ResumeID, nil, "", "g1")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var fetched resumes.ResumeResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &fetched); err != nil {
		t.Fatalf("decode get response: %v", err)
	}
	if fetched.Source.MediaType != extract.MimeDOCX || fetched.Source.Format != "word" {
		t.Fatalf("unexpected source %+v", fetched.Source)
	}

	resp = do(t, router, http.MethodGet, "/api/v1/resumes/"+created.ResumeID+"/file", nil, "", "g1")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for file, got %d", resp.Code)
	}
	if !bytes.Equal(resp.Body.Bytes(), docx) {
		t.Fatalf("downloaded file differs from upload")
	}

	resp = do(t, router, http.MethodGet, "/api/v1/resumes/"+created.ResumeID, nil, "", "someone-else")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for another owner, got %d", resp.Code)
	}

	resp = do(t, router, http.MethodGet, "/api/v1/resumes", nil, "", "g1")
	var list []resumes.SummaryResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 || list[0].ResumeID != created.ResumeID {
		t.Fatalf("unexpected list %+v", list)
	}

	// Edits: field rules, then required sections, then a valid change.
	badEmail := `{"data":{"personalInfo":{"fullName":"Jane Doe","email":"not-an-email","phone":""},"experience":[],"education":[],"skills":[]}}`
	resp = do(t, router, http.MethodPut, "/api/v1/resumes/"+created.ResumeID, strings.NewReader(badEmail), "application/json", "g1")
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for bad email, got %d", resp.Code)
	}

	missingSkills := `{"data":{"personalInfo":{"fullName":"Jane Doe","email":"","phone":""},"experience":[],"education":[]}}`
	resp = do(t, router, http.MethodPut, "/api/v1/resumes/"+created.ResumeID, strings.NewReader(missingSkills), "application/json", "g1")
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for missing skills, got %d", resp.Code)
	}

	valid := `{"title":"Jane - Backend","data":{"personalInfo":{"fullName":"Jane Doe","email":"jane@x.com","phone":""},"summary":"Backend engineer","experience":[],"education":[],"skills":["Go","SQL"]}}`
	resp = do(t, router, http.MethodPut, "/api/v1/resumes/"+created.ResumeID, strings.NewReader(valid), "application/json", "g1")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for valid edit, got %d: %s", resp.Code, resp.Body.String())
	}
	var updated resumes.ResumeResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode update: %v", err)
	}
	if updated.Title != "Jane - Backend" || len(updated.Data.Skills) != 2 {
		t.Fatalf("unexpected update %+v", updated)
	}

	resp = do(t, router, http.MethodDelete, "/api/v1/resumes/"+created.ResumeID, nil, "", "g1")
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	resp = do(t, router, http.MethodGet, "/api/v1/resumes/"+created.ResumeID, nil, "", "g1")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.Code)
	}
}

func TestParseErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		retryAfter string
	}{
		{"unsupported", &parsing.Error{Kind: parsing.KindUnsupportedFormat, Err: extract.ErrUnsupportedFormat}, http.StatusUnsupportedMediaType, "unsupported_format", ""},
		{"extraction", &parsing.Error{Kind: parsing.KindExtractionFailed, Err: extract.ErrExtractionFailed}, http.StatusUnprocessableEntity, "extraction_failed", ""},
		{"empty", &parsing.Error{Kind: parsing.KindEmptyDocument, Err: extract.ErrEmptyDocument}, http.StatusUnprocessableEntity, "empty_document", ""},
		{"auth", &parsing.Error{Kind: parsing.KindUpstreamUnavailable, Err: &llm.UpstreamError{Reason: llm.ReasonAuth, StatusCode: 401}}, http.StatusServiceUnavailable, "ai_auth_failed", ""},
		{"rate limit", &parsing.Error{Kind: parsing.KindUpstreamUnavailable, Err: &llm.UpstreamError{Reason: llm.ReasonRateLimit, RetryAfter: 7 * time.Second}}, http.StatusTooManyRequests, "ai_rate_limited", "7"},
		{"rate limit default hint", &parsing.Error{Kind: parsing.KindUpstreamUnavailable, Err: &llm.UpstreamError{Reason: llm.ReasonRateLimit}}, http.StatusTooManyRequests, "ai_rate_limited", "30"},
		{"generic upstream", &parsing.Error{Kind: parsing.KindUpstreamUnavailable, Err: &llm.UpstreamError{Reason: llm.ReasonGeneric}}, http.StatusBadGateway, "ai_unavailable", ""},
		{"malformed", &parsing.Error{Kind: parsing.KindMalformedResponse, Err: resume.ErrMalformedResponse}, http.StatusBadGateway, "ai_malformed_response", ""},
		{"incomplete", &parsing.Error{Kind: parsing.KindIncompleteResponse, Err: resume.ErrIncompleteResponse}, http.StatusBadGateway, "ai_incomplete_response", ""},
		{"timeout", &parsing.Error{Kind: parsing.KindTimeout, Err: context.DeadlineExceeded}, http.StatusGatewayTimeout, "timeout", ""},
		{"unknown", errors.New("disk full"), http.StatusInternalServerError, "internal_error", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router := newRouter(t, stubParser{err: tc.err}, 0)
			body, ct := multipartUpload(t, "cv.pdf", extract.MimePDF, []byte("%PDF-1.4"))
			resp := do(t, router, http.MethodPost, "/api/v1/resumes/parse", body, ct, "g1")

			if resp.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tc.wantStatus, resp.Code, resp.Body.String())
			}
			if code := errorCode(t, resp); code != tc.wantCode {
				t.Fatalf("expected code %q, got %q", tc.wantCode, code)
			}
			if got := resp.Header().Get("Retry-After"); got != tc.retryAfter {
				t.Fatalf("expected Retry-After %q, got %q", tc.retryAfter, got)
			}
		})
	}
}

func TestParseRejectsOversizedFile(t *testing.T) {
	router := newRouter(t, pipelineParser(), 1024)
	body, ct := multipartUpload(t, "big.pdf", extract.MimePDF, bytes.Repeat([]byte("a"), 2048))

	resp := do(t, router, http.MethodPost, "/api/v1/resumes/parse", body, ct, "g1")
	if resp.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", resp.Code)
	}
	if code := errorCode(t, resp); code != "file_too_large" {
		t.Fatalf("unexpected code %q", code)
	}
}

func TestParseRequiresFile(t *testing.T) {
	router := newRouter(t, pipelineParser(), 0)
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	_ = writer.WriteField("note", "no file here")
	_ = writer.Close()

	resp := do(t, router, http.MethodPost, "/api/v1/resumes/parse", body, writer.FormDataContentType(), "g1")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestParseFailureStoresNothing(t *testing.T) {
	router := newRouter(t, pipelineParser(), 0)
	body, ct := multipartUpload(t, "empty.png", extract.MimePNG, []byte{})

	resp := do(t, router, http.MethodPost, "/api/v1/resumes/parse", body, ct, "g1")
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.Code)
	}
	if code := errorCode(t, resp); code != "empty_document" {
		t.Fatalf("unexpected code %q", code)
	}

	resp = do(t, router, http.MethodGet, "/api/v1/resumes", nil, "", "g1")
	if strings.TrimSpace(resp.Body.String()) != "[]" {
		t.Fatalf("expected empty list, got %s", resp.Body.String())
	}
}
