package harness

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/roach88/eclat/internal/itemset"
	"github.com/roach88/eclat/internal/sink"
	"github.com/roach88/eclat/internal/store"
)

// confidenceTolerance is the allowed difference between an expected and a
// stored rule confidence.
const confidenceTolerance = 1e-6

// ExpectationError is returned when an expectation fails.
// It includes enough context to debug the failure.
type ExpectationError struct {
	Type     string // expectation type, e.g. "itemset" or "order"
	Expected string // human-readable expected outcome
	Actual   string // human-readable actual outcome
}

// Error implements the error interface.
func (e *ExpectationError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Expectation failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// emitted indexes the records of a run by sorted itemset key.
type emitted struct {
	support  map[string]int
	position map[string]int
	keys     []string
}

func indexRecords(records []sink.Record) (*emitted, []string) {
	e := &emitted{
		support:  make(map[string]int, len(records)),
		position: make(map[string]int, len(records)),
	}
	var dups []string
	for i, r := range records {
		key, err := sink.SortedKey(r.Items())
		if err != nil {
			dups = append(dups, fmt.Sprintf("unencodable itemset %v: %v", r.Items(), err))
			continue
		}
		if _, ok := e.support[key]; ok {
			dups = append(dups, key)
			continue
		}
		e.support[key] = r.Support
		e.position[key] = i
		e.keys = append(e.keys, key)
	}
	return e, dups
}

// evaluate checks every expectation of s against result and returns the
// failure messages.
func evaluate(s *Scenario, result *Result, kind itemset.Kind) []string {
	var errs []string
	fail := func(err error) {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	fail(checkError(s.Expect.Error, result.Err))
	if result.Err != nil {
		return errs
	}

	idx, dups := indexRecords(result.Itemsets)
	for _, d := range dups {
		fail(&ExpectationError{Type: "unique", Expected: "each itemset emitted once", Actual: d + " emitted again"})
	}
	if result.GraphFailures > 0 {
		fail(&ExpectationError{
			Type:     "graph",
			Expected: "every record written to the graph",
			Actual:   fmt.Sprintf("%d records rejected", result.GraphFailures),
		})
	}

	keyOf := func(items []string) (string, error) {
		labels := make([]itemset.Label, len(items))
		for i, raw := range items {
			l, err := itemset.ParseLabel(raw, kind)
			if err != nil {
				return "", fmt.Errorf("expected item %q: %w", raw, err)
			}
			labels[i] = l
		}
		return sink.SortedKey(labels)
	}

	fail(checkItemsets(s.Expect.Itemsets, s.Expect.Exact, idx, keyOf))
	fail(checkAbsent(s.Expect.Absent, idx, keyOf))
	fail(checkCount(s.Expect.Count, len(result.Itemsets)))
	fail(checkOrder(s.Expect.Order, idx, keyOf))
	fail(checkRules(s.Expect.Rules, result, keyOf))

	return errs
}

func checkError(want string, got error) error {
	switch {
	case want == "" && got != nil:
		return &ExpectationError{Type: "error", Expected: "run succeeds", Actual: got.Error()}
	case want != "" && got == nil:
		return &ExpectationError{Type: "error", Expected: fmt.Sprintf("error containing %q", want), Actual: "run succeeded"}
	case want != "" && !strings.Contains(got.Error(), want):
		return &ExpectationError{Type: "error", Expected: fmt.Sprintf("error containing %q", want), Actual: got.Error()}
	}
	return nil
}

type keyFunc func([]string) (string, error)

func checkItemsets(want []ExpectedItemset, exact bool, idx *emitted, keyOf keyFunc) error {
	var problems []string
	listed := make(map[string]bool, len(want))

	for _, w := range want {
		key, err := keyOf(w.Items)
		if err != nil {
			return err
		}
		listed[key] = true
		support, ok := idx.support[key]
		switch {
		case !ok:
			problems = append(problems, fmt.Sprintf("%s missing", key))
		case support != w.Support:
			problems = append(problems, fmt.Sprintf("%s support %d, want %d", key, support, w.Support))
		}
	}

	if exact {
		for _, key := range idx.keys {
			if !listed[key] {
				problems = append(problems, fmt.Sprintf("%s not expected", key))
			}
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return &ExpectationError{
		Type:     "itemsets",
		Expected: fmt.Sprintf("%d listed itemsets", len(want)),
		Actual:   strings.Join(problems, "; "),
	}
}

func checkAbsent(absent [][]string, idx *emitted, keyOf keyFunc) error {
	var found []string
	for _, items := range absent {
		key, err := keyOf(items)
		if err != nil {
			return err
		}
		if _, ok := idx.support[key]; ok {
			found = append(found, key)
		}
	}
	if len(found) == 0 {
		return nil
	}
	return &ExpectationError{Type: "absent", Expected: "itemsets not emitted", Actual: strings.Join(found, ", ") + " emitted"}
}

func checkCount(want *int, got int) error {
	if want == nil || *want == got {
		return nil
	}
	return &ExpectationError{Type: "count", Expected: fmt.Sprintf("%d itemsets", *want), Actual: fmt.Sprintf("%d itemsets", got)}
}

// checkOrder requires each listed itemset to be emitted after the previous
// one. Itemsets in between are allowed.
func checkOrder(order [][]string, idx *emitted, keyOf keyFunc) error {
	last, lastKey := -1, ""
	for _, items := range order {
		key, err := keyOf(items)
		if err != nil {
			return err
		}
		pos, ok := idx.position[key]
		if !ok {
			return &ExpectationError{Type: "order", Expected: key + " emitted", Actual: "not emitted"}
		}
		if pos < last {
			return &ExpectationError{
				Type:     "order",
				Expected: fmt.Sprintf("%s after %s", key, lastKey),
				Actual:   fmt.Sprintf("%s at %d, %s at %d", key, pos, lastKey, last),
			}
		}
		last, lastKey = pos, key
	}
	return nil
}

func checkRules(want []ExpectedRule, result *Result, keyOf keyFunc) error {
	var problems []string
	for _, w := range want {
		source, err := keyOf(w.Source)
		if err != nil {
			return err
		}
		target, err := keyOf(w.Target)
		if err != nil {
			return err
		}

		i := slices.IndexFunc(result.Rules, func(r store.Rule) bool {
			return r.Source == source && r.Target == target
		})
		switch {
		case i < 0:
			problems = append(problems, fmt.Sprintf("%s -> %s missing", source, target))
		case math.Abs(result.Rules[i].Confidence-w.Confidence) > confidenceTolerance:
			problems = append(problems, fmt.Sprintf("%s -> %s confidence %g, want %g",
				source, target, result.Rules[i].Confidence, w.Confidence))
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return &ExpectationError{
		Type:     "rules",
		Expected: fmt.Sprintf("%d listed rules", len(want)),
		Actual:   strings.Join(problems, "; "),
	}
}
