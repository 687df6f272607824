package harness

import (
	"github.com/roach88/eclat/internal/engine"
	"github.com/roach88/eclat/internal/sink"
	"github.com/roach88/eclat/internal/store"
)

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true if every expectation held.
	Pass bool `json:"pass"`

	// Itemsets are the emitted records in emission order.
	Itemsets []sink.Record `json:"itemsets"`

	// Output is the JSON-lines rendering of Itemsets.
	Output string `json:"-"`

	// Rules are the association edges, when the scenario expects any.
	Rules []store.Rule `json:"rules,omitempty"`

	// GraphFailures counts records the graph store rejected.
	GraphFailures int64 `json:"graph_failures,omitempty"`

	Stats engine.Stats `json:"stats"`

	// Err is the load or mining error, if the run failed.
	Err error `json:"-"`

	// Errors contains expectation failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Itemsets: []sink.Record{},
		Errors:   []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
