package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"moatmap/types"

	"github.com/gin-gonic/gin"
)

func testContext(t *testing.T, target string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c, w
}

func writeArtifact(t *testing.T) string {
	t.Helper()
	doc := types.GraphDocument{
		Nodes: []types.CompanyRecord{{ID: "AAPL", Name: "Apple Inc", Sector: "Technology", Score: 87}},
		Links: []types.Edge{{Source: "AAPL", Target: "MSFT", Similarity: 0.91}},
		SectorAverages: map[string]map[string]float64{
			"Technology": {"gross_margin": 45.2},
		},
		Metadata: types.Metadata{
			GeneratedAt:   "2026-01-02T03:04:05Z",
			TotalStocks:   1,
			FailedTickers: []string{},
			RunID:         "test-run",
		},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Failed to marshal artifact: %v", err)
	}
	path := filepath.Join(t.TempDir(), "graph_data.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Failed to write artifact: %v", err)
	}
	return path
}

func TestGetGraph_ServesFileArtifact(t *testing.T) {
	t.Setenv("OUTPUT_PATH", writeArtifact(t))

	c, w := testContext(t, "/api/graph")
	GraphController.GetGraph(c)

	if w.Code != 200 {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var doc types.GraphDocument
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("Expected a graph document body, got %v", err)
	}
	if len(doc.Nodes) != 1 || doc.Nodes[0].ID != "AAPL" {
		t.Errorf("Expected the AAPL node, got %v", doc.Nodes)
	}
	if doc.Metadata.RunID != "test-run" {
		t.Errorf("Expected run id test-run, got %s", doc.Metadata.RunID)
	}
}

func TestGetGraph_NoArtifact(t *testing.T) {
	t.Setenv("OUTPUT_PATH", filepath.Join(t.TempDir(), "missing.json"))

	c, w := testContext(t, "/api/graph")
	GraphController.GetGraph(c)

	if w.Code != 404 {
		t.Errorf("Expected 404 without an artifact, got %d", w.Code)
	}
}

func TestGetSectorAverages(t *testing.T) {
	t.Setenv("OUTPUT_PATH", writeArtifact(t))

	c, w := testContext(t, "/api/sectors")
	GraphController.GetSectorAverages(c)

	if w.Code != 200 {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Technology") || !strings.Contains(body, "45.2") {
		t.Errorf("Expected sector averages in the body, got %s", body)
	}
	if !strings.Contains(body, "2026-01-02T03:04:05Z") {
		t.Errorf("Expected the generation timestamp in the body, got %s", body)
	}
}

func TestGetStocks_InvalidPageNumber(t *testing.T) {
	c, w := testContext(t, "/api/fetchStocks?pageNumber=abc")
	StockController.GetStocks(c)

	if w.Code != 400 {
		t.Errorf("Expected 400 for a bad page number, got %d", w.Code)
	}
}

func TestGetStocks_PersistenceNotConfigured(t *testing.T) {
	c, w := testContext(t, "/api/fetchStocks?pageNumber=1")
	StockController.GetStocks(c)

	if w.Code != 503 {
		t.Errorf("Expected 503 without Mongo configured, got %d", w.Code)
	}
}

func TestIsRunning(t *testing.T) {
	c, w := testContext(t, "/api/keepServerRunning")
	HealthController.IsRunning(c)

	if w.Code != 200 {
		t.Errorf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Server is running") {
		t.Errorf("Expected health message, got %s", w.Body.String())
	}
}
