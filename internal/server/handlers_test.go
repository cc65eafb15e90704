package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gkobilansky/abreport/internal/server"
)

func TestHealth(t *testing.T) {
	srv, _ := setupTestServer(t, server.Options{})

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp server.HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "ok" || resp.TestsCount != 3 {
		t.Errorf("unexpected health response %+v", resp)
	}
}

func TestTestsAPI(t *testing.T) {
	srv, _ := setupTestServer(t, server.Options{})

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/api/tests", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Errorf("expected JSON content type, got %s", ct)
	}

	var resp struct {
		Tests []struct {
			ID         string `json:"id"`
			Name       string `json:"name"`
			Status     string `json:"status"`
			Outcome    string `json:"outcome"`
			HasResults bool   `json:"has_results"`
		} `json:"tests"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(resp.Tests) != 3 {
		t.Fatalf("expected 3 tests, got %d", len(resp.Tests))
	}
	// Newest first.
	if resp.Tests[0].ID != "3" || resp.Tests[2].ID != "1" {
		t.Errorf("unexpected order: %+v", resp.Tests)
	}
	hero := resp.Tests[2]
	if hero.Status != "Completed" || hero.Outcome != "Variant B won (95% confidence)" || !hero.HasResults {
		t.Errorf("unexpected summary for test 1: %+v", hero)
	}
}

func TestTestAPI(t *testing.T) {
	srv, _ := setupTestServer(t, server.Options{})

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/api/tests/2", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		Status       string `json:"status"`
		Outcome      string `json:"outcome"`
		TrafficSplit struct {
			VariantA int `json:"variant_a"`
			VariantB int `json:"variant_b"`
		} `json:"traffic_split"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.ID != "2" || resp.Name != "Checkout Button Copy" {
		t.Errorf("unexpected test %+v", resp)
	}
	if resp.Status != "Scheduled" || resp.Outcome != "Tie" {
		t.Errorf("unexpected derived state %+v", resp)
	}
	if resp.TrafficSplit.VariantA+resp.TrafficSplit.VariantB != 100 {
		t.Errorf("unexpected split %+v", resp.TrafficSplit)
	}
}

func TestTestAPI_NotFound(t *testing.T) {
	srv, _ := setupTestServer(t, server.Options{})

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/api/tests/nope", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["error"] != `test "nope" not found` {
		t.Errorf("got error %q", resp["error"])
	}
}
