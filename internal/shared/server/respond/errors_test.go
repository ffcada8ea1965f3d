package respond

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-parser/internal/shared/telemetry"
)

func TestErrorWritesEnvelopeAndLogsByStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var logs bytes.Buffer
	telemetry.SetOutput(&logs)
	defer telemetry.SetOutput(nil)

	r := gin.New()
	r.GET("/client", func(c *gin.Context) {
		c.Set("resumeId", "r-1")
		Error(c, http.StatusUnprocessableEntity, "empty_document", "File appears to be empty", []string{"x"})
	})
	r.GET("/server", func(c *gin.Context) {
		Error(c, http.StatusInternalServerError, "internal_error", "boom", nil)
	})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/client", nil))
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.Code)
	}
	var body ErrorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "empty_document" || body.Error.Message != "File appears to be empty" {
		t.Fatalf("unexpected body %+v", body)
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/server", nil))
	if strings.Contains(resp.Body.String(), "details") {
		t.Fatalf("empty details should be omitted: %s", resp.Body.String())
	}

	lines := strings.Split(strings.TrimSpace(logs.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], `"level":"warn"`) || !strings.Contains(lines[0], `"resume_id":"r-1"`) {
		t.Fatalf("unexpected client log %s", lines[0])
	}
	if !strings.Contains(lines[1], `"level":"error"`) {
		t.Fatalf("unexpected server log %s", lines[1])
	}
}
