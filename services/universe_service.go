package services

import (
	"context"
	"fmt"
	"os"
	"strings"

	"moatmap/clients/http_client"
	mongo_client "moatmap/clients/mongo"
	"moatmap/utils/constants"
	"moatmap/utils/helpers"

	"github.com/PuerkitoBio/goquery"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gopkg.in/mgo.v2/bson"
)

func mongoUpsert() *options.UpdateOptions {
	return options.Update().SetUpsert(true)
}

type UniverseServiceI interface {
	Tickers(ctx context.Context) []string
	LoadWatchlistXLSX(filePath string) ([]string, error)
	ScrapeConstituents(pageURL string) ([]string, error)
	SaveWatchlist(ctx context.Context, tickers []string) error
}

type universeService struct{}

var UniverseService UniverseServiceI = &universeService{}

// Tickers resolves the injectable ticker universe. Priority: the Mongo
// watchlist collection, then the TICKERS env var (comma separated), then
// the built-in default list. Order is preserved and duplicates dropped.
func (u *universeService) Tickers(ctx context.Context) []string {
	if mongo_client.Client != nil {
		collection := mongo_client.Client.Database(os.Getenv("DATABASE")).Collection(helpers.GetEnv("WATCHLIST_COLLECTION", "watchlist"))
		cursor, err := collection.Find(ctx, bson.M{})
		if err == nil {
			var tickers []string
			for cursor.Next(ctx) {
				var doc bson.M
				if err := cursor.Decode(&doc); err != nil {
					zap.L().Error("Error decoding watchlist document", zap.Error(err))
					continue
				}
				if ticker, ok := doc["ticker"].(string); ok && ticker != "" {
					tickers = append(tickers, ticker)
				}
			}
			cursor.Close(ctx)
			if len(tickers) > 0 {
				return dedupe(tickers)
			}
		} else {
			zap.L().Error("Error reading watchlist collection", zap.Error(err))
		}
	}

	if env := os.Getenv("TICKERS"); env != "" {
		parts := strings.Split(env, ",")
		tickers := make([]string, 0, len(parts))
		for _, p := range parts {
			if t := strings.ToUpper(strings.TrimSpace(p)); t != "" {
				tickers = append(tickers, t)
			}
		}
		if len(tickers) > 0 {
			return dedupe(tickers)
		}
	}

	return append([]string(nil), constants.DefaultUniverse...)
}

// LoadWatchlistXLSX extracts ticker symbols from an uploaded spreadsheet.
// The ticker column is located by header match; rows below it are read
// until the sheet runs out.
func (u *universeService) LoadWatchlistXLSX(filePath string) ([]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error opening watchlist file: %w", err)
	}
	defer f.Close()

	var tickers []string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			zap.L().Error("Error reading rows from sheet", zap.String("sheet", sheet), zap.Error(err))
			continue
		}

		tickerCol := -1
		for _, row := range rows {
			if tickerCol == -1 {
				for i, cell := range row {
					if matchesTickerHeader(cell) {
						tickerCol = i
						break
					}
				}
				continue
			}
			if tickerCol >= len(row) {
				continue
			}
			ticker := strings.ToUpper(strings.TrimSpace(row[tickerCol]))
			if ticker != "" {
				tickers = append(tickers, ticker)
			}
		}
	}
	if len(tickers) == 0 {
		return nil, fmt.Errorf("no tickers found in %s", filePath)
	}
	return dedupe(tickers), nil
}

func matchesTickerHeader(cell string) bool {
	normalized := strings.ToLower(strings.TrimSpace(cell))
	return normalized == "ticker" || normalized == "symbol" || normalized == "ticker symbol"
}

// ScrapeConstituents pulls ticker symbols out of an index-constituents HTML
// table (first column of each body row).
func (u *universeService) ScrapeConstituents(pageURL string) ([]string, error) {
	body, err := http_client.GetPage(pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch the constituents page: %v", err)
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse the HTML content: %v", err)
	}

	var tickers []string
	doc.Find("table tbody tr").Each(func(i int, row *goquery.Selection) {
		ticker := strings.ToUpper(strings.TrimSpace(row.Find("td").First().Text()))
		if ticker != "" {
			tickers = append(tickers, ticker)
		}
	})
	if len(tickers) == 0 {
		return nil, fmt.Errorf("no tickers found at %s", pageURL)
	}
	return dedupe(tickers), nil
}

// SaveWatchlist upserts tickers into the Mongo watchlist collection so the
// next pipeline run picks them up.
func (u *universeService) SaveWatchlist(ctx context.Context, tickers []string) error {
	if mongo_client.Client == nil {
		return fmt.Errorf("mongo client not configured")
	}
	collection := mongo_client.Client.Database(os.Getenv("DATABASE")).Collection(helpers.GetEnv("WATCHLIST_COLLECTION", "watchlist"))
	for _, ticker := range tickers {
		filter := bson.M{"ticker": ticker}
		update := bson.M{"$set": bson.M{"ticker": ticker}}
		if _, err := collection.UpdateOne(ctx, filter, update, mongoUpsert()); err != nil {
			zap.L().Error("Failed to upsert watchlist ticker", zap.String("ticker", ticker), zap.Error(err))
			return err
		}
	}
	zap.L().Info("Watchlist saved", zap.Int("tickers", len(tickers)))
	return nil
}

func dedupe(tickers []string) []string {
	seen := make(map[string]bool, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
