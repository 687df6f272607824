package testutil

// FixedRunID generates the same run id every time.
//
// Unlike engine.FixedGenerator, which returns ids in sequence, this generator
// never runs out, so golden output stays byte-identical however many runs a
// test starts.
//
// Thread-safety: FixedRunID is stateless and safe for concurrent use.
type FixedRunID struct {
	id string
}

// NewFixedRunID creates a generator returning id.
// If id is empty, Generate returns "test-run".
func NewFixedRunID(id string) *FixedRunID {
	if id == "" {
		id = "test-run"
	}
	return &FixedRunID{id: id}
}

// Generate returns the fixed id.
//
// Implements engine.RunIDGenerator.
func (g *FixedRunID) Generate() string {
	return g.id
}
