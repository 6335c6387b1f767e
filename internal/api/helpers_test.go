package api_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gfcbot/rulekeeper/internal/middleware"
)

const testTenantID = "123456789012345678"

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)

	return l
}

// newTestRouter returns an engine that reads the actor headers the way the real router does.
func newTestRouter() *gin.Engine {
	r := gin.New()
	r.Use(middleware.Actor())

	return r
}

// doRequest sends one request to r. headers are name/value pairs; a non-empty
// body is sent as JSON.
func doRequest(r http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, http.NoBody)
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	for len(headers) >= 2 {
		req.Header.Set(headers[0], headers[1])
		headers = headers[2:]
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

// decodeBody unmarshals the recorded response into a T, failing the test on bad JSON.
func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding %q: %v", w.Body.String(), err)
	}

	return v
}

func tenantPath(suffix string) string {
	return "/servers/" + testTenantID + suffix
}
