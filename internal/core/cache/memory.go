package cache

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/penwyp/go-virus-feed/internal/core/model"
	"github.com/penwyp/go-virus-feed/internal/util"
)

// TimelineEntry holds the time-ordered detail records of one entity
type TimelineEntry struct {
	Records      []model.DetailRecord
	LastAccessed int64
}

// MemoryCache answers "all detail records of entity X, ordered by elapsed
// time" against a dataset that never changes after load. Entries are built
// on first lookup.
type MemoryCache struct {
	mu      sync.RWMutex
	details []model.DetailRecord
	entries map[model.EntityID]*TimelineEntry
}

// NewMemoryCache creates a cache over details. The slice is not copied and
// must not be modified afterwards.
func NewMemoryCache(details []model.DetailRecord) *MemoryCache {
	return &MemoryCache{
		details: details,
		entries: make(map[model.EntityID]*TimelineEntry),
	}
}

// Get returns the records of id sorted ascending by elapsed time. Equal times
// keep their dataset order and records whose elapsed time is NaN come last.
// An unknown id yields an empty slice.
func (mc *MemoryCache) Get(id model.EntityID) []model.DetailRecord {
	mc.mu.RLock()
	entry, ok := mc.entries[id]
	mc.mu.RUnlock()

	if !ok {
		entry = mc.build(id)
	}

	mc.mu.Lock()
	entry.LastAccessed = time.Now().Unix()
	mc.mu.Unlock()

	records := make([]model.DetailRecord, len(entry.Records))
	copy(records, entry.Records)
	return records
}

func (mc *MemoryCache) build(id model.EntityID) *TimelineEntry {
	records := make([]model.DetailRecord, 0)
	for _, d := range mc.details {
		if d.EntityID == id {
			records = append(records, d)
		}
	}
	SortByElapsed(records)

	mc.mu.Lock()
	defer mc.mu.Unlock()

	// Another caller may have built it meanwhile
	if existing, ok := mc.entries[id]; ok {
		return existing
	}
	entry := &TimelineEntry{Records: records}
	mc.entries[id] = entry

	util.LogDebugf("MemoryCache: indexed entity %d with %d records", id, len(records))
	return entry
}

// Len returns the number of entities indexed so far
func (mc *MemoryCache) Len() int {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return len(mc.entries)
}

// Clear drops every built entry; the next lookups rebuild them.
func (mc *MemoryCache) Clear() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.entries = make(map[model.EntityID]*TimelineEntry)
}

// SortByElapsed stable-sorts records ascending by MinutesSinceFirst with NaN
// values after every number.
func SortByElapsed(records []model.DetailRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i].MinutesSinceFirst, records[j].MinutesSinceFirst
		switch {
		case math.IsNaN(a):
			return false
		case math.IsNaN(b):
			return true
		default:
			return a < b
		}
	})
}
