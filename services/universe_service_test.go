package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"testing"

	"moatmap/utils/constants"

	"github.com/xuri/excelize/v2"
)

func TestTickers_EnvOverride(t *testing.T) {
	t.Setenv("TICKERS", "aapl, msft ,AAPL,, goog")

	got := UniverseService.Tickers(context.Background())
	want := []string{"AAPL", "MSFT", "GOOG"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestTickers_DefaultUniverse(t *testing.T) {
	t.Setenv("TICKERS", "")

	got := UniverseService.Tickers(context.Background())
	if !reflect.DeepEqual(got, constants.DefaultUniverse) {
		t.Errorf("Expected the default universe, got %v", got)
	}
}

func TestLoadWatchlistXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.xlsx")

	f := excelize.NewFile()
	cells := map[string]string{
		"A1": "Name", "B1": "Ticker",
		"A2": "Apple", "B2": "aapl",
		"A3": "Microsoft", "B3": "MSFT",
		"A4": "Apple again", "B4": "AAPL",
		"A5": "Blank row", "B5": "",
	}
	for cell, value := range cells {
		if err := f.SetCellValue("Sheet1", cell, value); err != nil {
			t.Fatalf("Failed to set cell %s: %v", cell, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("Failed to save workbook: %v", err)
	}

	got, err := UniverseService.LoadWatchlistXLSX(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	want := []string{"AAPL", "MSFT"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestLoadWatchlistXLSX_NoTickerColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.xlsx")

	f := excelize.NewFile()
	if err := f.SetCellValue("Sheet1", "A1", "Company"); err != nil {
		t.Fatalf("Failed to set cell: %v", err)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("Failed to save workbook: %v", err)
	}

	if _, err := UniverseService.LoadWatchlistXLSX(path); err == nil {
		t.Errorf("Expected an error when no ticker column exists")
	}
}

func TestScrapeConstituents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><table>
			<thead><tr><th>Symbol</th><th>Name</th></tr></thead>
			<tbody>
				<tr><td>aapl</td><td>Apple</td></tr>
				<tr><td>MSFT</td><td>Microsoft</td></tr>
				<tr><td>AAPL</td><td>Apple duplicate</td></tr>
			</tbody>
		</table></body></html>`)
	}))
	defer srv.Close()

	got, err := UniverseService.ScrapeConstituents(srv.URL)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	want := []string{"AAPL", "MSFT"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestScrapeConstituents_EmptyTable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>No table here</p></body></html>`)
	}))
	defer srv.Close()

	if _, err := UniverseService.ScrapeConstituents(srv.URL); err == nil {
		t.Errorf("Expected an error for a page without constituents")
	}
}
