package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"polyterm/internal/domain"
)

// Compile-time interface check.
var _ SnapshotStore = (*ParquetStore)(nil)

// ParquetStore implements SnapshotStore using one Parquet file per capture
// date on disk.
type ParquetStore struct {
	DataDir string
}

// NewParquetStore creates a ParquetStore rooted at the given data directory.
func NewParquetStore(dataDir string) *ParquetStore {
	return &ParquetStore{DataDir: dataDir}
}

// SnapshotRecord is the Parquet schema for market snapshot rows.
type SnapshotRecord struct {
	EventID      string  `parquet:"event_id"`
	EventTitle   string  `parquet:"event_title"`
	Category     string  `parquet:"category"`
	MarketID     string  `parquet:"market_id"`
	Question     string  `parquet:"question"`
	OutcomePrice float64 `parquet:"outcome_price"`
	Volume       float64 `parquet:"volume"`
	CapturedAt   int64   `parquet:"captured_at,timestamp(millisecond)"` // Unix ms
}

// WriteSnapshots appends snapshot rows, grouped into one file per capture
// date. Rows already stored for the same (event, market, captured_at) are
// replaced by the incoming ones.
func (s *ParquetStore) WriteSnapshots(_ context.Context, snaps []domain.Snapshot) error {
	if len(snaps) == 0 {
		return nil
	}

	groups := make(map[string][]SnapshotRecord)
	for _, snap := range snaps {
		date := snap.CapturedAt.UTC().Format("2006-01-02")
		groups[date] = append(groups[date], SnapshotRecord{
			EventID:      snap.EventID,
			EventTitle:   snap.EventTitle,
			Category:     snap.Category,
			MarketID:     snap.MarketID,
			Question:     snap.Question,
			OutcomePrice: snap.OutcomePrice,
			Volume:       snap.Volume,
			CapturedAt:   snap.CapturedAt.UnixMilli(),
		})
	}

	for date, records := range groups {
		path := s.snapshotPath(date)

		existing, _ := readParquetFile[SnapshotRecord](path)
		merged := mergeSnapshotRecords(existing, records)

		if err := writeParquetFile(path, merged); err != nil {
			return fmt.Errorf("writing snapshots for %s: %w", date, err)
		}
	}
	return nil
}

// ReadSnapshots returns all snapshot rows captured on the given day.
func (s *ParquetStore) ReadSnapshots(_ context.Context, day time.Time) ([]domain.Snapshot, error) {
	path := s.snapshotPath(day.UTC().Format("2006-01-02"))
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	records, err := readParquetFile[SnapshotRecord](path)
	if err != nil {
		return nil, err
	}

	snaps := make([]domain.Snapshot, 0, len(records))
	for _, r := range records {
		snaps = append(snaps, domain.Snapshot{
			EventID:      r.EventID,
			EventTitle:   r.EventTitle,
			Category:     r.Category,
			MarketID:     r.MarketID,
			Question:     r.Question,
			OutcomePrice: r.OutcomePrice,
			Volume:       r.Volume,
			CapturedAt:   time.UnixMilli(r.CapturedAt).UTC(),
		})
	}
	return snaps, nil
}

// ListDates returns the capture dates that have snapshot files, sorted
// ascending.
func (s *ParquetStore) ListDates(_ context.Context) ([]string, error) {
	dir := filepath.Join(s.DataDir, "snapshots")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var dates []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".parquet") {
			dates = append(dates, strings.TrimSuffix(name, ".parquet"))
		}
	}
	sort.Strings(dates)
	return dates, nil
}

// snapshotPath returns the filesystem path for a snapshot Parquet file.
// Layout: <dataDir>/snapshots/<YYYY-MM-DD>.parquet
func (s *ParquetStore) snapshotPath(date string) string {
	return filepath.Join(s.DataDir, "snapshots", date+".parquet")
}

// ---------------------------------------------------------------------------
// Parquet file helpers
// ---------------------------------------------------------------------------

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// mergeSnapshotRecords deduplicates rows by (event, market, captured_at),
// preferring incoming records. Results are sorted by capture time, then by
// event and market ID for a stable file layout.
func mergeSnapshotRecords(existing, incoming []SnapshotRecord) []SnapshotRecord {
	type key struct {
		eventID  string
		marketID string
		ts       int64
	}
	seen := make(map[key]SnapshotRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[key{r.EventID, r.MarketID, r.CapturedAt}] = r
	}
	for _, r := range incoming {
		seen[key{r.EventID, r.MarketID, r.CapturedAt}] = r
	}

	merged := make([]SnapshotRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].CapturedAt != merged[j].CapturedAt {
			return merged[i].CapturedAt < merged[j].CapturedAt
		}
		if merged[i].EventID != merged[j].EventID {
			return merged[i].EventID < merged[j].EventID
		}
		return merged[i].MarketID < merged[j].MarketID
	})
	return merged
}
