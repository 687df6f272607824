package engine

import (
	"runtime"
	"sync/atomic"
	"time"

	"github.com/roach88/eclat/internal/matrix"
	"github.com/roach88/eclat/internal/tidset"
)

// Stage is a step of a run. Stages advance in order and never repeat.
type Stage string

const (
	StageInit            Stage = "INIT"
	StageSingleItemCount Stage = "SINGLE_ITEM_COUNT"
	StageMatrixBuild     Stage = "MATRIX_BUILD"
	StageSort            Stage = "SORT"
	StageEnumerate       Stage = "ENUMERATE"
	StageDone            Stage = "DONE"
)

// Stats summarizes a run. On failure it reports what was done up to the
// failing stage.
type Stats struct {
	RunID           string        `json:"run_id"`
	Transactions    int           `json:"transactions"`
	Items           int           `json:"items"`
	FrequentItems   int           `json:"frequent_items"`
	Itemsets        int64         `json:"itemsets"`   // all emitted itemsets, singletons included
	Singletons      int           `json:"singletons"` // frequent single items emitted
	MinSupportRatio float64       `json:"min_support_ratio"`
	MinSupport      int           `json:"min_support"`
	MatrixKind      matrix.Kind   `json:"matrix_kind,omitempty"` // empty when pruning is off
	TidsetKind      tidset.Kind   `json:"tidset_kind"`
	Duration        time.Duration `json:"duration_ns"`
	PeakHeapBytes   uint64        `json:"peak_heap_bytes"`
	Stage           Stage         `json:"stage"`
}

// heapSampler tracks the largest heap size seen across samples.
type heapSampler struct {
	peak atomic.Uint64
}

func (h *heapSampler) sample() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	for {
		cur := h.peak.Load()
		if m.HeapAlloc <= cur || h.peak.CompareAndSwap(cur, m.HeapAlloc) {
			return
		}
	}
}

func (h *heapSampler) max() uint64 {
	return h.peak.Load()
}
