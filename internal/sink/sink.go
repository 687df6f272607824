package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/roach88/eclat/internal/itemset"
	"github.com/roach88/eclat/internal/store"
)

// Record is one emitted frequent itemset: Prefix ∪ {Item} with its support.
// Prefix is in discovery order and is empty for single items.
type Record struct {
	Prefix  []itemset.Label
	Item    itemset.Label
	Support int
}

// Items returns the full itemset in discovery order.
func (r Record) Items() []itemset.Label {
	items := make([]itemset.Label, 0, len(r.Prefix)+1)
	items = append(items, r.Prefix...)
	return append(items, r.Item)
}

// Size returns the number of items in the itemset.
func (r Record) Size() int {
	return len(r.Prefix) + 1
}

// MarshalJSON renders the record as {"itemSet":[...],"item":x,"support":n}.
// An empty prefix is rendered as [] rather than null.
func (r Record) MarshalJSON() ([]byte, error) {
	prefix := r.Prefix
	if prefix == nil {
		prefix = []itemset.Label{}
	}
	return json.Marshal(struct {
		ItemSet []itemset.Label `json:"itemSet"`
		Item    itemset.Label   `json:"item"`
		Support int             `json:"support"`
	}{prefix, r.Item, r.Support})
}

// Sink consumes emitted itemsets.
//
// Emit is called once per frequent itemset. A returned error aborts the run.
type Sink interface {
	Emit(ctx context.Context, r Record) error
}

// WriteCloser is a Sink that owns resources released by Close.
type WriteCloser interface {
	Sink
	io.Closer
}

// Kind selects a sink variant.
type Kind string

const (
	KindBuffer Kind = "buffer"
	KindFile   Kind = "file"
	KindGraph  Kind = "graph"
)

// Kinds lists the valid sink kinds.
var Kinds = []Kind{KindBuffer, KindFile, KindGraph}

// ParseKind converts a CLI or config value to a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !slices.Contains(Kinds, k) {
		return "", fmt.Errorf("unknown output %q (want buffer, file, or graph)", s)
	}
	return k, nil
}

// Target carries what each sink kind needs to open.
type Target struct {
	// Path is the output file for KindFile.
	Path string

	// Store is the graph store for KindGraph. It is not closed by the sink.
	Store *store.Store

	// RunID tags graph nodes and edges.
	RunID string
}

// Open constructs the sink for kind once, before the run starts.
func Open(kind Kind, t Target) (WriteCloser, error) {
	switch kind {
	case KindBuffer:
		return NewBuffer(), nil
	case KindFile:
		if t.Path == "" {
			return nil, fmt.Errorf("open file sink: output path required")
		}
		return CreateFile(t.Path)
	case KindGraph:
		if t.Store == nil {
			return nil, fmt.Errorf("open graph sink: store required")
		}
		return NewGraph(t.Store, t.RunID), nil
	default:
		return nil, fmt.Errorf("open sink: unknown kind %q", kind)
	}
}

// SortedKey returns the canonical JSON key of a set of labels: the labels
// sorted ascending and encoded as a JSON array.
func SortedKey(labels []itemset.Label) (string, error) {
	sorted := slices.Clone(labels)
	if sorted == nil {
		sorted = []itemset.Label{}
	}
	slices.SortFunc(sorted, itemset.Label.Compare)
	b, err := json.Marshal(sorted)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
