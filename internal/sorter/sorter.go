// Package sorter orders file records before planning. All orderings are
// stable so numbering after a sort is deterministic between runs.
package sorter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/On-Jun9/NamePipe/internal/metadata"
	"github.com/On-Jun9/NamePipe/pkg/types"
)

type Sorter struct {
	meta *metadata.Resolver
}

func New(meta *metadata.Resolver) *Sorter {
	return &Sorter{meta: meta}
}

// ValidKey reports whether key is empty or a known sort key.
func ValidKey(key types.SortKey) bool {
	switch key {
	case types.SortNone, types.SortByName, types.SortByDate, types.SortBySize:
		return true
	}
	return false
}

// ValidOrder reports whether order is empty or asc/desc.
func ValidOrder(order types.SortOrder) bool {
	return order == "" || order == types.SortAsc || order == types.SortDesc
}

// Sort dispatches on spec.By. SortNone returns a copy of files unchanged.
func (s *Sorter) Sort(files []types.FileRecord, spec types.SortSpec) ([]types.FileRecord, error) {
	switch spec.By {
	case types.SortNone:
		return append([]types.FileRecord(nil), files...), nil
	case types.SortByName:
		return ByName(files, spec.Order), nil
	case types.SortByDate:
		return s.ByDate(files, spec.DateSource, spec.Order)
	case types.SortBySize:
		return s.BySize(files, spec.Order)
	default:
		return nil, fmt.Errorf("unknown sort key %q", spec.By)
	}
}

// ByName orders files by case-insensitive name. Ties fall back to input order.
func ByName(files []types.FileRecord, order types.SortOrder) []types.FileRecord {
	keys := make([]string, len(files))
	for i, f := range files {
		keys[i] = strings.ToLower(f.Name)
	}
	return stableSort(files, order, func(a, b int) int {
		return strings.Compare(keys[a], keys[b])
	})
}

// ByDate orders files by the timestamp of kind. A stat failure on any file
// aborts the sort.
func (s *Sorter) ByDate(files []types.FileRecord, kind types.DateSource, order types.SortOrder) ([]types.FileRecord, error) {
	keys := make([]time.Time, len(files))
	for i, f := range files {
		t, err := s.meta.FileDate(f.Path, kind)
		if err != nil {
			return nil, fmt.Errorf("sort by date: %w", err)
		}
		keys[i] = t
	}
	return stableSort(files, order, func(a, b int) int {
		return keys[a].Compare(keys[b])
	}), nil
}

// BySize orders files by byte length. A stat failure on any file aborts the sort.
func (s *Sorter) BySize(files []types.FileRecord, order types.SortOrder) ([]types.FileRecord, error) {
	keys := make([]int64, len(files))
	for i, f := range files {
		size, err := s.meta.Size(f.Path)
		if err != nil {
			return nil, fmt.Errorf("sort by size: %w", err)
		}
		keys[i] = size
	}
	return stableSort(files, order, func(a, b int) int {
		switch {
		case keys[a] < keys[b]:
			return -1
		case keys[a] > keys[b]:
			return 1
		}
		return 0
	}), nil
}

// stableSort sorts indices rather than records so key slices stay aligned.
// Descending order flips the comparison, so equal keys keep input order in
// both directions.
func stableSort(files []types.FileRecord, order types.SortOrder, cmp func(a, b int) int) []types.FileRecord {
	idx := make([]int, len(files))
	for i := range idx {
		idx[i] = i
	}

	sign := 1
	if order == types.SortDesc {
		sign = -1
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return sign*cmp(idx[i], idx[j]) < 0
	})

	out := make([]types.FileRecord, len(files))
	for i, k := range idx {
		out[i] = files[k]
	}
	return out
}
