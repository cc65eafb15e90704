package server_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gkobilansky/abreport/internal/metrics"
	"github.com/gkobilansky/abreport/internal/server"
	"github.com/gkobilansky/abreport/internal/store"
	"github.com/gkobilansky/abreport/internal/testutil"
)

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func setupTestServer(t *testing.T, opts server.Options) (*server.Server, *store.MemoryStore) {
	t.Helper()

	s := testutil.SampleStore(t)
	opts.Now = func() time.Time { return now }
	if opts.NewID == nil {
		opts.NewID = func() string { return "new-1" }
	}
	return server.New(s, opts), s
}

func serve(srv *server.Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func validForm() url.Values {
	return url.Values{
		"name":                  {"Signup Form Length"},
		"description":           {"Fewer fields on signup"},
		"test_url":              {"https://example.com/signup"},
		"data_source":           {"manual"},
		"start_date":            {"2024-03-10"},
		"end_date":              {"2024-03-24"},
		"target_audience":       {"New Visitors", "Mobile Users"},
		"split_a":               {"40"},
		"variant_a_name":        {"Long form"},
		"variant_b_name":        {"Short form"},
		"variant_b_description": {"Email and password only"},
	}
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestDashboard_ListsTests(t *testing.T) {
	srv, _ := setupTestServer(t, server.Options{})

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("expected HTML content type, got %s", ct)
	}

	body := w.Body.String()
	for _, expected := range []string{
		"Homepage Hero Section Test",
		"Checkout Button Copy",
		"Pricing Page Annual Toggle",
		"Feb 1, 2024 - Feb 15, 2024",
		"Completed",
		"Scheduled",
		"Variant B won (95% confidence)",
		"70% A / 30% B",
		`href="/report/1"`,
	} {
		if !strings.Contains(body, expected) {
			t.Errorf("dashboard missing %q", expected)
		}
	}
}

func TestDashboard_UnknownPath(t *testing.T) {
	srv, _ := setupTestServer(t, server.Options{})

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestReport_Detailed(t *testing.T) {
	srv, _ := setupTestServer(t, server.Options{})

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/report/1", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	body := w.Body.String()
	for _, expected := range []string{
		"A/B Test Report: Homepage Hero Section Test",
		"Key Metrics",
		"2.50%",
		"3.50%",
		"$10.50",
		"$12.75",
		"5,000",
		"Statistical Analysis",
		"Implement the new hero section design",
		"window.print()",
		`/report/1/download?format=csv`,
	} {
		if !strings.Contains(body, expected) {
			t.Errorf("report missing %q", expected)
		}
	}
}

func TestReport_ExecutiveFormat(t *testing.T) {
	srv, _ := setupTestServer(t, server.Options{})

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/report/1?format=executive", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	body := w.Body.String()
	if strings.Contains(body, "Key Metrics") {
		t.Error("executive format should omit key metrics")
	}
	if !strings.Contains(body, "Recommended Action") {
		t.Error("executive format should show the overall block")
	}
	if !strings.Contains(body, `value="executive" selected`) {
		t.Error("format selector should mark executive as selected")
	}
}

func TestReport_NoResults(t *testing.T) {
	srv, _ := setupTestServer(t, server.Options{})

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/report/3", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "No results recorded yet.") {
		t.Error("expected no-results placeholder")
	}
	if !strings.Contains(body, "No winner yet") {
		t.Error("expected no-winner outcome")
	}
}

func TestReport_NarrativeWithoutResults(t *testing.T) {
	srv, s := setupTestServer(t, server.Options{})

	test, err := s.GetTest(t.Context(), "1")
	if err != nil {
		t.Fatalf("failed to get test: %v", err)
	}
	test.ID = "pending"
	test.Results = nil
	test.Report = &store.Report{
		ExecutiveSummary: "Traffic is still ramping up.",
		KeyFindings:      []string{"Mobile visitors bounce less"},
		NextSteps:        []string{"Extend the test by a week"},
	}
	if _, err := s.CreateTest(t.Context(), test); err != nil {
		t.Fatalf("failed to create test: %v", err)
	}

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/report/pending", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, expected := range []string{
		"No results recorded yet.",
		"Key Findings",
		"Mobile visitors bounce less",
		"Next Steps",
		"Extend the test by a week",
	} {
		if !strings.Contains(body, expected) {
			t.Errorf("report page missing %q", expected)
		}
	}
	if strings.Contains(body, "Key Metrics") {
		t.Error("key metrics should be omitted without results")
	}
}

func TestReport_UnknownID(t *testing.T) {
	srv, _ := setupTestServer(t, server.Options{})

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/report/does-not-exist", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Report not found") || !strings.Contains(body, "does-not-exist") {
		t.Errorf("expected not-found page naming the id, got:\n%s", body)
	}
}

func TestNewForm_Defaults(t *testing.T) {
	srv, _ := setupTestServer(t, server.Options{})

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/new", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, expected := range []string{
		`name="variant_a_name" value="Control"`,
		`name="variant_b_name" value="Variation"`,
		`name="split_a" min="0" max="100"`,
		"US Traffic",
	} {
		if !strings.Contains(body, expected) {
			t.Errorf("form missing %q", expected)
		}
	}
}

func TestNewSubmit_Creates(t *testing.T) {
	srv, s := setupTestServer(t, server.Options{})

	w := serve(srv, postForm("/new", validForm()))

	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected status 303, got %d: %s", w.Code, w.Body.String())
	}
	if loc := w.Header().Get("Location"); loc != "/report/new-1" {
		t.Errorf("expected redirect to /report/new-1, got %s", loc)
	}

	created, err := s.GetTest(t.Context(), "new-1")
	if err != nil {
		t.Fatalf("created test not stored: %v", err)
	}
	if created.Name != "Signup Form Length" {
		t.Errorf("got name %q", created.Name)
	}
	if created.TrafficSplit != (store.TrafficSplit{VariantA: 40, VariantB: 60}) {
		t.Errorf("got split %+v, want 40/60", created.TrafficSplit)
	}
	if len(created.TargetAudience) != 2 {
		t.Errorf("got audience %v", created.TargetAudience)
	}
	if !created.CreatedAt.Equal(now) {
		t.Errorf("got created_at %v, want %v", created.CreatedAt, now)
	}

	w = serve(srv, httptest.NewRequest(http.MethodGet, "/report/new-1", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected new report to render, got %d", w.Code)
	}
}

func TestNewSubmit_Invalid(t *testing.T) {
	srv, s := setupTestServer(t, server.Options{})

	values := validForm()
	values.Set("name", "")
	values.Set("test_url", "not a url")
	values.Set("end_date", "2024-03-01")

	w := serve(srv, postForm("/new", values))

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", w.Code)
	}
	body := w.Body.String()
	for _, expected := range []string{
		"is required",
		"must be a valid URL",
		"must not be before start_date",
		// The submitted values are kept.
		">Fewer fields on signup</textarea>",
		`value="40"`,
		`value="Short form"`,
	} {
		if !strings.Contains(body, expected) {
			t.Errorf("form response missing %q", expected)
		}
	}

	if _, err := s.GetTest(t.Context(), "new-1"); err == nil {
		t.Error("invalid submission should not create a test")
	}
}

func TestNewSubmit_InvalidVariantImage(t *testing.T) {
	srv, _ := setupTestServer(t, server.Options{})

	values := validForm()
	values.Set("variant_a_image_url", "not-a-url")

	w := serve(srv, postForm("/new", values))

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", w.Code)
	}
	body := w.Body.String()
	if n := strings.Count(body, `class="field-error"`); n != 1 {
		t.Errorf("expected exactly one inline field error, got %d", n)
	}
	if !strings.Contains(body, "must be a valid URL") {
		t.Error("expected image URL error message next to the field")
	}
	if !strings.Contains(body, `value="not-a-url"`) {
		t.Error("expected submitted image URL to be kept")
	}
}

func TestDownload(t *testing.T) {
	srv, _ := setupTestServer(t, server.Options{})

	tests := []struct {
		format      string
		status      int
		contentType string
		contains    string
	}{
		{"csv", http.StatusOK, "text/csv", "Conversion Rate,2.50%,3.50%,1.00%,95.00%"},
		{"", http.StatusOK, "text/csv", "metric,variant_a,variant_b,change,confidence"},
		{"json", http.StatusOK, "application/json", `"name": "Homepage Hero Section Test"`},
		{"pdf", http.StatusNotImplemented, "text/html", "not yet implemented"},
		{"xml", http.StatusBadRequest, "text/plain", "invalid format"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			w := serve(srv, httptest.NewRequest(http.MethodGet, "/report/1/download?format="+tt.format, nil))

			if w.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, tt.contentType) {
				t.Errorf("expected content type %s, got %s", tt.contentType, ct)
			}
			if !strings.Contains(w.Body.String(), tt.contains) {
				t.Errorf("body missing %q:\n%s", tt.contains, w.Body.String())
			}
		})
	}
}

func TestDownload_Attachment(t *testing.T) {
	srv, _ := setupTestServer(t, server.Options{})

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/report/1/download?format=json", nil))

	if cd := w.Header().Get("Content-Disposition"); cd != `attachment; filename="report-1.json"` {
		t.Errorf("got Content-Disposition %q", cd)
	}
}

func TestShare_NotImplemented(t *testing.T) {
	srv, _ := setupTestServer(t, server.Options{})

	w := serve(srv, httptest.NewRequest(http.MethodPost, "/report/1/share", nil))

	if w.Code != http.StatusNotImplemented {
		t.Fatalf("expected status 501, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "not yet implemented") {
		t.Error("expected not-implemented message")
	}
}

func TestShare_UnknownID(t *testing.T) {
	srv, _ := setupTestServer(t, server.Options{})

	w := serve(srv, httptest.NewRequest(http.MethodPost, "/report/nope/share", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestDuplicate(t *testing.T) {
	srv, s := setupTestServer(t, server.Options{})

	w := serve(srv, httptest.NewRequest(http.MethodPost, "/tests/1/duplicate", nil))

	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected status 303, got %d: %s", w.Code, w.Body.String())
	}
	if loc := w.Header().Get("Location"); loc != "/report/new-1" {
		t.Errorf("expected redirect to /report/new-1, got %s", loc)
	}

	dup, err := s.GetTest(t.Context(), "new-1")
	if err != nil {
		t.Fatalf("duplicate not stored: %v", err)
	}
	if dup.Name != "Homepage Hero Section Test (copy)" {
		t.Errorf("got name %q", dup.Name)
	}
	if dup.Results != nil || dup.Report != nil {
		t.Error("duplicate should not carry results or report")
	}
}

func TestDuplicate_UnknownID(t *testing.T) {
	srv, _ := setupTestServer(t, server.Options{})

	w := serve(srv, httptest.NewRequest(http.MethodPost, "/tests/nope/duplicate", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

// readOnly hides the write methods of a store.
type readOnly struct {
	store.Provider
}

func TestReadOnlyProvider(t *testing.T) {
	srv := server.New(readOnly{testutil.SampleStore(t)}, server.Options{
		Now: func() time.Time { return now },
	})

	w := serve(srv, postForm("/new", validForm()))
	if w.Code != http.StatusNotImplemented {
		t.Errorf("POST /new: expected status 501, got %d", w.Code)
	}

	w = serve(srv, httptest.NewRequest(http.MethodPost, "/tests/1/duplicate", nil))
	if w.Code != http.StatusNotImplemented {
		t.Errorf("duplicate: expected status 501, got %d", w.Code)
	}

	w = serve(srv, httptest.NewRequest(http.MethodGet, "/report/1", nil))
	if w.Code != http.StatusOK {
		t.Errorf("report: expected status 200, got %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := setupTestServer(t, server.Options{Metrics: metrics.NewCollector()})

	serve(srv, httptest.NewRequest(http.MethodGet, "/report/1?format=summary", nil))
	w := serve(srv, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, expected := range []string{
		`abreport_http_requests_total{method="GET",route="GET /report/{id}",status="200"} 1`,
		`abreport_reports_viewed_total{format="summary"} 1`,
	} {
		if !strings.Contains(body, expected) {
			t.Errorf("metrics missing %q", expected)
		}
	}
}

func TestMetricsEndpoint_Disabled(t *testing.T) {
	srv, _ := setupTestServer(t, server.Options{})

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404 without a collector, got %d", w.Code)
	}
}
