package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	kafka_client "moatmap/clients/kafka"
	mongo_client "moatmap/clients/mongo"
	rabbitmq_client "moatmap/clients/rabbitmq"
	"moatmap/types"
	"moatmap/utils/constants"
	"moatmap/utils/helpers"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/mgo.v2/bson"
)

// ErrEmptyBatch means no ticker could be processed at all. The run aborts
// before any write so a previous artifact is never clobbered by an empty one.
var ErrEmptyBatch = errors.New("no tickers could be processed")

type PipelineServiceI interface {
	Run(ctx context.Context) error
	BuildGraph(ctx context.Context, tickers []string) (*types.GraphDocument, error)
}

type pipelineService struct {
	fetcher FetchServiceI
	pacing  time.Duration
}

var PipelineService PipelineServiceI = &pipelineService{
	fetcher: FetchService,
	pacing:  -1, // resolved from env at run time
}

// Run executes a full pipeline pass: resolve the universe, build the graph
// document, and persist it to disk, Mongo, Cloudinary, Kafka and RabbitMQ.
func (p *pipelineService) Run(ctx context.Context) error {
	defer sentry.Recover()
	span := sentry.StartSpan(ctx, "[PIPELINE] Run")
	defer span.Finish()

	tickers := UniverseService.Tickers(ctx)
	zap.L().Info("Pipeline run starting", zap.Int("tickers", len(tickers)))

	doc, err := p.BuildGraph(span.Context(), tickers)
	if err != nil {
		sentry.CaptureException(err)
		span.Status = sentry.SpanStatusInternalError
		return err
	}

	if err := p.persist(span.Context(), doc); err != nil {
		sentry.CaptureException(err)
		return err
	}

	kafka_client.SendRunEvent(types.MoatmapEvent{
		RunID:       doc.Metadata.RunID,
		TotalStocks: doc.Metadata.TotalStocks,
		TotalLinks:  len(doc.Links),
		FailedCount: len(doc.Metadata.FailedTickers),
		GeneratedAt: doc.Metadata.GeneratedAt,
	})
	for _, ticker := range doc.Metadata.FailedTickers {
		rabbitmq_client.SendFailure(types.TickerFailure{
			RunID:  doc.Metadata.RunID,
			Ticker: ticker,
			Reason: "statements unavailable",
		})
	}

	zap.L().Info("Pipeline run complete",
		zap.String("run_id", doc.Metadata.RunID),
		zap.Int("nodes", len(doc.Nodes)),
		zap.Int("links", len(doc.Links)),
		zap.Int("failed", len(doc.Metadata.FailedTickers)))
	return nil
}

// BuildGraph runs the batch pipeline over the given tickers and assembles
// the sanitized output artifact. Per-ticker failures are recorded, not
// propagated; an entirely failed batch is fatal.
func (p *pipelineService) BuildGraph(ctx context.Context, tickers []string) (*types.GraphDocument, error) {
	pacing := p.pacing
	if pacing < 0 {
		pacing = time.Duration(helpers.GetEnvInt("FETCH_PACING_MS", 500)) * time.Millisecond
	}

	records := make([]*types.CompanyRecord, 0, len(tickers))
	var failed []string

	for i, ticker := range tickers {
		if i > 0 && pacing > 0 {
			// Courtesy delay so the upstream provider is not hammered.
			time.Sleep(pacing)
		}

		bundle, err := p.fetcher.Fetch(ctx, ticker)
		if err != nil {
			zap.L().Warn("Skipping ticker", zap.String("ticker", ticker), zap.Error(err))
			failed = append(failed, ticker)
			continue
		}

		records = append(records, buildRecord(bundle))
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %d tickers attempted", ErrEmptyBatch, len(tickers))
	}

	sort.Slice(records, func(a, b int) bool { return records[a].ID < records[b].ID })
	ScoreService.ScoreBatch(records)
	links := GraphService.BuildLinks(records)

	nodes := make([]types.CompanyRecord, len(records))
	for i, rec := range records {
		nodes[i] = *rec
	}

	doc := &types.GraphDocument{
		Nodes:          nodes,
		Links:          links,
		SectorAverages: sectorAverages(records),
		Metadata: types.Metadata{
			GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
			TotalStocks:   len(nodes),
			FailedTickers: failedOrEmpty(failed),
			RunID:         uuid.New().String(),
		},
	}
	SanitizeGraph(doc)
	return doc, nil
}

func buildRecord(bundle *types.StatementBundle) *types.CompanyRecord {
	profile := bundle.Profile

	name := profile.ShortName
	if name == "" {
		name = bundle.Ticker
	}
	sector := profile.Sector
	if sector == "" {
		sector = "Unknown"
	}
	industry := profile.Industry
	if industry == "" {
		industry = "Unknown"
	}

	return &types.CompanyRecord{
		ID:         bundle.Ticker,
		Name:       name,
		Sector:     sector,
		Industry:   industry,
		MarketCap:  profile.MarketCap,
		RawMetrics: MetricsService.Compute(bundle),
		History:    MetricsService.History(bundle),
	}
}

// sectorAverages computes the per-sector mean of every scored metric, used
// for benchmarking in the sidebar.
func sectorAverages(records []*types.CompanyRecord) map[string]map[string]float64 {
	sums := make(map[string]map[string]float64)
	counts := make(map[string]int)
	for _, rec := range records {
		if sums[rec.Sector] == nil {
			sums[rec.Sector] = make(map[string]float64, len(constants.ScoredMetrics))
		}
		counts[rec.Sector]++
		for _, metric := range constants.ScoredMetrics {
			sums[rec.Sector][metric] += rec.RawMetrics[metric]
		}
	}

	averages := make(map[string]map[string]float64, len(sums))
	for sector, metricSums := range sums {
		averages[sector] = make(map[string]float64, len(metricSums))
		for metric, sum := range metricSums {
			averages[sector][metric] = helpers.Round(sum/float64(counts[sector]), 2)
		}
	}
	return averages
}

func failedOrEmpty(failed []string) []string {
	if failed == nil {
		return []string{}
	}
	return failed
}

// persist writes the artifact everywhere it is consumed from: the local
// JSON file for the static frontend, Mongo for the API, and Cloudinary as
// the CDN copy.
func (p *pipelineService) persist(ctx context.Context, doc *types.GraphDocument) error {
	outputPath := helpers.GetEnv("OUTPUT_PATH", "data/graph_data.json")
	if err := os.MkdirAll(filepath.Dir(outputPath), os.ModePerm); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshalling graph document: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("error writing graph document: %w", err)
	}
	zap.L().Info("Artifact written", zap.String("path", outputPath))

	if mongo_client.Client != nil {
		dbSpan := sentry.StartSpan(ctx, "[DB] Upsert graph document")
		db := mongo_client.Client.Database(os.Getenv("DATABASE"))

		graphs := db.Collection(helpers.GetEnv("GRAPH_COLLECTION", "graphs"))
		if _, err := graphs.UpdateOne(ctx,
			bson.M{"latest": true},
			bson.M{"$set": bson.M{"latest": true, "document": doc}},
			mongoUpsert()); err != nil {
			zap.L().Error("Failed to upsert graph document", zap.Error(err))
			sentry.CaptureException(err)
		}

		companies := db.Collection(helpers.GetEnv("COMPANY_COLLECTION", "companies"))
		for i := range doc.Nodes {
			node := doc.Nodes[i]
			if _, err := companies.UpdateOne(ctx,
				bson.M{"id": node.ID},
				bson.M{"$set": node},
				mongoUpsert()); err != nil {
				zap.L().Error("Failed to upsert company record", zap.String("ticker", node.ID), zap.Error(err))
				sentry.CaptureException(err)
			}
		}
		dbSpan.Finish()
	}

	if cloudinaryURL := os.Getenv("CLOUDINARY_URL"); cloudinaryURL != "" {
		cld, err := cloudinary.NewFromURL(cloudinaryURL)
		if err != nil {
			zap.L().Error("Error initializing Cloudinary", zap.Error(err))
			sentry.CaptureException(err)
			return nil
		}
		file, err := os.Open(outputPath)
		if err != nil {
			zap.L().Error("Error opening artifact for upload", zap.Error(err))
			return nil
		}
		defer file.Close()

		uploadResult, err := cld.Upload.Upload(ctx, file, uploader.UploadParams{
			PublicID: doc.Metadata.RunID + ".json",
			Folder:   "graph_artifacts",
		})
		if err != nil {
			zap.L().Error("Error uploading artifact to Cloudinary", zap.Error(err))
			sentry.CaptureException(err)
			return nil
		}
		zap.L().Info("Artifact uploaded to Cloudinary", zap.String("url", uploadResult.SecureURL))
	}

	return nil
}
