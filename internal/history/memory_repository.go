package history

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryRepository is an in-memory implementation of Repository, used in
// tests and in environments without a database.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[Key]Record
}

// NewMemoryRepository creates a new in-memory history repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[Key]Record)}
}

// Upsert writes records, last write per key wins.
func (r *MemoryRepository) Upsert(_ context.Context, records []Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, rec := range records {
		rec.UpdatedAt = now
		r.records[rec.Key()] = rec
	}
	return nil
}

// ByStation retrieves one station's records, oldest first.
func (r *MemoryRepository) ByStation(_ context.Context, stationUID, pollutant string, limit int) ([]Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Record
	for _, rec := range r.records {
		if rec.StationUID == stationUID && rec.Pollutant == pollutant {
			out = append(out, rec)
		}
	}
	return trimOldest(out, limit), nil
}

// ByLocation retrieves records whose location matches the query, oldest
// first.
func (r *MemoryRepository) ByLocation(_ context.Context, location, pollutant string, limit int) ([]Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(location)
	var out []Record
	for _, rec := range r.records {
		if rec.Pollutant == pollutant && strings.Contains(strings.ToLower(rec.Location), needle) {
			out = append(out, rec)
		}
	}
	return trimOldest(out, limit), nil
}

// Since retrieves all records of one pollutant on or after a date.
func (r *MemoryRepository) Since(_ context.Context, pollutant string, since time.Time) ([]Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Record
	for _, rec := range r.records {
		if rec.Pollutant == pollutant && !rec.Date.Before(since) {
			out = append(out, rec)
		}
	}
	sortByDate(out)
	return out, nil
}

// Count returns the total number of stored records.
func (r *MemoryRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records), nil
}

func sortByDate(records []Record) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].Date.Equal(records[j].Date) {
			return records[i].StationUID < records[j].StationUID
		}
		return records[i].Date.Before(records[j].Date)
	})
}

// trimOldest sorts ascending and keeps the most recent limit records.
func trimOldest(records []Record, limit int) []Record {
	sortByDate(records)
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}
	return records
}

// Ensure MemoryRepository implements Repository interface.
var _ Repository = (*MemoryRepository)(nil)
