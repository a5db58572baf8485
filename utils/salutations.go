package utils

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Built-in salutation code table. The supplier addresses guests by numeric
// title codes; overrides can be published to the reference cache hash
// without a redeploy.
var defaultSalutations = map[string]string{
	"147": "Mr",
	"148": "Mrs",
	"149": "Ms",
	"150": "Miss",
	"151": "Dr",
	"152": "Prof",
	"53":  "Master",
	"54":  "Child",
}

const salutationCacheKey = "reference:salutations"

// SalutationTable is a read-only code→title lookup, lazily refreshed from the
// reference cache on a TTL. Safe for concurrent reads.
type SalutationTable struct {
	mu        sync.RWMutex
	titles    map[string]string
	loadedAt  time.Time
	refreshIn time.Duration
}

var salutations = &SalutationTable{
	titles:    defaultSalutations,
	refreshIn: 12 * time.Hour,
}

// GetSalutations returns the process-wide salutation table.
func GetSalutations() *SalutationTable {
	return salutations
}

// Title resolves a salutation code to its display title, refreshing the
// table from the reference cache when stale. Unknown codes fall back to "Mr"
// so a missing reference row never blocks a booking.
func (t *SalutationTable) Title(code string) string {
	t.maybeRefresh()
	t.mu.RLock()
	defer t.mu.RUnlock()
	if title, ok := t.titles[code]; ok {
		return title
	}
	return "Mr"
}

// Code resolves a display title back to its supplier code. Defaults to the
// "Mr" code for unknown titles.
func (t *SalutationTable) Code(title string) string {
	t.maybeRefresh()
	t.mu.RLock()
	defer t.mu.RUnlock()
	for code, tl := range t.titles {
		if tl == title {
			return code
		}
	}
	return "147"
}

func (t *SalutationTable) maybeRefresh() {
	t.mu.RLock()
	stale := time.Since(t.loadedAt) > t.refreshIn
	t.mu.RUnlock()
	if !stale {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if time.Since(t.loadedAt) <= t.refreshIn {
		return
	}
	// Serve the current table on any cache failure; refresh is best-effort.
	t.loadedAt = time.Now()

	if ReferenceCacheClient == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	overrides, err := ReferenceCacheClient.HGetAll(ctx, salutationCacheKey).Result()
	if err != nil {
		GetLogger().Warn("salutation refresh failed, keeping current table", zap.Error(err))
		return
	}
	if len(overrides) == 0 {
		return
	}
	merged := make(map[string]string, len(defaultSalutations)+len(overrides))
	for code, title := range defaultSalutations {
		merged[code] = title
	}
	for code, title := range overrides {
		merged[code] = title
	}
	t.titles = merged
}
