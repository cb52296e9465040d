package query

import "sort"

// Filter is an equality predicate on a named dimension.
type Filter struct {
	Dim   string
	Value string
}

// Collection describes the paginated view of one record set. The backing
// store supports efficient equality lookups only on single pre-declared
// dimensions combined with the sort key, so exactly one supplied filter
// becomes the indexed dimension and the rest are applied in memory.
type Collection struct {
	Name string

	// IndexPriority lists the dimensions the store can scan efficiently,
	// most selective first. The fallback is always the mandatory
	// tenant-scope filter alone.
	IndexPriority []string

	// MaxLimit is the hard per-page ceiling. Callers requesting more
	// silently receive the ceiling.
	MaxLimit int

	// DefaultLimit applies when the caller requests no limit.
	DefaultLimit int
}

// SelectIndex chooses the indexed dimension from the supplied equality
// filters and returns the rest as residual predicates. A nil indexed filter
// means the scan runs on the tenant-scope dimension alone. Residuals are
// ordered by index priority, then alphabetically, so predicate application
// is deterministic.
func (c Collection) SelectIndex(filters map[string]string) (indexed *Filter, residual []Filter) {
	remaining := make(map[string]string, len(filters))
	for dim, value := range filters {
		remaining[dim] = value
	}

	for _, dim := range c.IndexPriority {
		if value, ok := remaining[dim]; ok && indexed == nil {
			indexed = &Filter{Dim: dim, Value: value}
			delete(remaining, dim)
			break
		}
	}

	for _, dim := range c.IndexPriority {
		if value, ok := remaining[dim]; ok {
			residual = append(residual, Filter{Dim: dim, Value: value})
			delete(remaining, dim)
		}
	}

	leftover := make([]string, 0, len(remaining))
	for dim := range remaining {
		leftover = append(leftover, dim)
	}
	sort.Strings(leftover)
	for _, dim := range leftover {
		residual = append(residual, Filter{Dim: dim, Value: remaining[dim]})
	}
	return indexed, residual
}

// ClampLimit applies the default and the per-collection ceiling.
func (c Collection) ClampLimit(limit int) int {
	if limit <= 0 {
		return c.DefaultLimit
	}
	if limit > c.MaxLimit {
		return c.MaxLimit
	}
	return limit
}
