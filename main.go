package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Tn-Hub-777/rematcher/config"
	"github.com/Tn-Hub-777/rematcher/models"
	"github.com/Tn-Hub-777/rematcher/scraper/portal"
	"github.com/Tn-Hub-777/rematcher/services"
	"github.com/Tn-Hub-777/rematcher/storage"
	"github.com/Tn-Hub-777/rematcher/utils"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLogger(utils.ParseLevel(cfg.LogLevel))

	logger.Info("=== Property Reconciliation & Matching Engine starting ===")
	logger.Info("Config — min score: %d | metrics port: %s", cfg.MinScore, cfg.MetricsPort)

	utils.StartMetrics(cfg.MetricsPort)

	store, err := storage.NewPostgresStore(cfg.DSN())
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		logger.Error("Make sure Docker is running: docker compose up -d")
		os.Exit(1)
	}
	defer store.Close()

	baseBuyers, err := store.List(storage.TableBuyers)
	if err != nil {
		logger.Error("Failed to list buyers: %v", err)
		os.Exit(1)
	}
	baseListings, err := store.List(storage.TableListings)
	if err != nil {
		logger.Error("Failed to list listings: %v", err)
		os.Exit(1)
	}
	logger.Info("Base collections — %d buyers, %d listings", len(baseBuyers), len(baseListings))

	normalizer := services.NewNormalizer(logger)
	merger := services.NewMerger(logger)

	uploadedBuyers := ingestUpload(cfg.BuyersUploadPath, storage.TableBuyers, logger, func(recs []models.Record) []models.Record {
		recs = normalizer.NormalizeBuyers(recs)
		allocateIDs("buyer", recs, baseBuyers)
		return recs
	})
	uploadedListings := ingestUpload(cfg.ListingsUploadPath, storage.TableListings, logger, func(recs []models.Record) []models.Record {
		recs = normalizer.NormalizeListings(recs)
		allocateIDs("listing", recs, baseListings)
		return recs
	})

	if cfg.PortalSearchURL != "" {
		importer := portal.New(cfg, logger)
		imported, err := importer.Import()
		if err != nil {
			logger.Error("Portal import failed: %v", err)
		} else {
			imported = normalizer.NormalizeListings(imported)
			allocateIDs("listing", imported, baseListings, uploadedListings)
			uploadedListings = append(uploadedListings, imported...)
		}
	}

	mergedBuyers := merger.MergeBuyers(baseBuyers, uploadedBuyers)
	mergedListings := merger.MergeListings(baseListings, uploadedListings)

	if err := store.BulkUpsert(storage.TableBuyers, mergedBuyers); err != nil {
		logger.Error("Failed to persist merged buyers: %v", err)
	}
	if err := store.BulkUpsert(storage.TableListings, mergedListings); err != nil {
		logger.Error("Failed to persist merged listings: %v", err)
	}

	matcher := services.NewMatcher(logger)
	matches := matcher.Match(mergedBuyers, mergedListings, cfg.MinScore)

	reporter := services.NewReportService(logger)
	reporter.Print(reporter.Generate(matches))

	matchRecords := make([]models.Record, 0, len(matches))
	for i := range matches {
		rec := matches[i].Record()
		rec["id"] = matches[i].BuyerID + ":" + matches[i].ListingID
		matchRecords = append(matchRecords, rec)
	}

	// Matches are recomputed in full each run, so the table is replaced.
	if err := store.Clear(storage.TableMatches); err != nil {
		logger.Error("Failed to clear matches: %v", err)
	} else if err := store.BulkUpsert(storage.TableMatches, matchRecords); err != nil {
		logger.Error("Failed to persist matches: %v", err)
	}

	if cfg.MatchesOutputPath != "" && len(matchRecords) > 0 {
		if err := writeMatchesCSV(cfg.MatchesOutputPath, matchRecords); err != nil {
			logger.Error("Matches CSV write failed: %v", err)
		} else {
			logger.Info("Matches exported to %s", cfg.MatchesOutputPath)
		}
	}

	fmt.Printf("  Done. %d buyers × %d listings → %d matches\n\n",
		len(mergedBuyers), len(mergedListings), len(matches))
}

// ingestUpload decodes one uploaded CSV and runs it through the given
// normalization step, recording an upload batch along the way. A missing
// path means no upload for this table.
func ingestUpload(path, table string, logger *utils.Logger, prepare func([]models.Record) []models.Record) []models.Record {
	if path == "" {
		return nil
	}

	text, err := os.ReadFile(path)
	if err != nil {
		logger.Error("Failed to read upload %s: %v", path, err)
		return nil
	}

	batch := models.NewUploadBatch(filepath.Base(path), table)
	records, _, err := storage.Decode(string(text))
	if err != nil {
		logger.Error("Failed to decode upload %s: %v", path, err)
		return nil
	}

	prepared := prepare(records)
	batch.Finish(len(records), len(prepared))
	utils.UploadsIngested.Inc()

	logger.Info("[upload] Batch %s — %s: %d rows decoded into %s",
		batch.ID, batch.Filename, batch.Total, batch.Table)
	return prepared
}

// allocateIDs assigns a collision-free identifier to every record that
// lacks one, treating each allocate+assign as one step so later records
// in the same batch see earlier allocations.
func allocateIDs(prefix string, recs []models.Record, existing ...[]models.Record) {
	collections := append([][]models.Record{recs}, existing...)
	for _, rec := range recs {
		if rec == nil || rec.ID() != "" {
			continue
		}
		rec["id"] = services.EnsureUniqueID(prefix, "", collections...)
	}
}

func writeMatchesCSV(path string, records []models.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	text, err := storage.Encode(records, storage.Columns(records))
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(text), 0644)
}
