package sink

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/eclat/internal/itemset"
	"github.com/roach88/eclat/internal/store"
)

func ints(ns ...int64) []itemset.Label {
	labels := make([]itemset.Label, len(ns))
	for i, n := range ns {
		labels[i] = itemset.IntLabel(n)
	}
	return labels
}

func rec(prefix []int64, item int64, support int) Record {
	return Record{Prefix: ints(prefix...), Item: itemset.IntLabel(item), Support: support}
}

func TestRecord_MarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		r    Record
		want string
	}{
		{"single", rec(nil, 7, 3), `{"itemSet":[],"item":7,"support":3}`},
		{"pair", rec([]int64{7}, 2, 1), `{"itemSet":[7],"item":2,"support":1}`},
		{
			"strings",
			Record{Prefix: []itemset.Label{itemset.StringLabel("milk")}, Item: itemset.StringLabel("bread"), Support: 2},
			`{"itemSet":["milk"],"item":"bread","support":2}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := tt.r.MarshalJSON()
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(b))
		})
	}
}

func TestSortedKey(t *testing.T) {
	key, err := SortedKey(ints(30, 4, 100))
	require.NoError(t, err)
	assert.Equal(t, "[4,30,100]", key)

	key, err = SortedKey(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", key)
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKind("neo4j")
	assert.Error(t, err)
}

func TestBuffer(t *testing.T) {
	b := NewBuffer()
	ctx := context.Background()

	require.NoError(t, b.Emit(ctx, rec(nil, 1, 2)))
	require.NoError(t, b.Emit(ctx, rec([]int64{1}, 2, 1)))

	assert.Equal(t,
		"{\"itemSet\":[],\"item\":1,\"support\":2}\n{\"itemSet\":[1],\"item\":2,\"support\":1}\n",
		b.String())
	assert.Len(t, b.Records(), 2)
	assert.NoError(t, b.Close())
}

func TestFile_WritesLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	f, err := CreateFile(path)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, f.Emit(ctx, rec(nil, 5, 1)))
	require.NoError(t, f.Emit(ctx, rec([]int64{5}, 6, 1)))
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"{\"itemSet\":[],\"item\":5,\"support\":1}\n{\"itemSet\":[5],\"item\":6,\"support\":1}\n",
		string(data))
}

func TestFile_CloseIsIdempotent(t *testing.T) {
	f, err := CreateFile(filepath.Join(t.TempDir(), "out.jsonl"))
	require.NoError(t, err)

	require.NoError(t, f.Close())
	require.NoError(t, f.Close())

	err = f.Emit(context.Background(), rec(nil, 1, 1))
	assert.True(t, errors.Is(err, ErrClosed))
}

func TestFile_WriteErrorSurfaces(t *testing.T) {
	f, err := CreateFile(filepath.Join(t.TempDir(), "out.jsonl"))
	require.NoError(t, err)

	// Pull the handle out from under the buffered writer.
	require.NoError(t, f.f.Close())

	ctx := context.Background()
	var emitErr error
	for i := 0; i < 10000 && emitErr == nil; i++ {
		emitErr = f.Emit(ctx, rec([]int64{1, 2, 3}, int64(i), 1))
	}
	require.Error(t, emitErr)
	assert.Contains(t, emitErr.Error(), "write ")

	assert.Error(t, f.Close())
	assert.NoError(t, f.Close())
}

func TestCreateFile_BadPath(t *testing.T) {
	_, err := CreateFile(filepath.Join(t.TempDir(), "missing", "out.jsonl"))
	assert.Error(t, err)
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "graph.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGraph_WritesNodesAndEdges(t *testing.T) {
	s := openStore(t)
	g := NewGraph(s, "run-1")
	ctx := context.Background()

	// Discovery order: singletons, then prefix [3] extended by 1.
	require.NoError(t, g.Emit(ctx, rec(nil, 3, 2)))
	require.NoError(t, g.Emit(ctx, rec(nil, 1, 4)))
	require.NoError(t, g.Emit(ctx, rec([]int64{3}, 1, 2)))

	assert.Equal(t, int64(3), g.Written())
	assert.Equal(t, int64(0), g.Failures())

	n, ok, err := s.Node(ctx, "[1,3]")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "[3,1]", n.Items)
	assert.Equal(t, 2, n.Size)

	single, ok, err := s.Node(ctx, "[3]")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "3", single.Title)

	rules, err := s.Rules(ctx, store.RuleQuery{})
	require.NoError(t, err)
	require.Len(t, rules, 2)

	// [3] -> [1,3] has confidence 2/2; [1] -> [1,3] has 2/4.
	assert.Equal(t, "[3]", rules[0].Source)
	assert.Equal(t, "[1]", rules[0].AssocItems)
	assert.InDelta(t, 1.0, rules[0].Confidence, 1e-9)
	assert.Equal(t, "[1]", rules[1].Source)
	assert.Equal(t, "[3]", rules[1].AssocItems)
	assert.InDelta(t, 0.5, rules[1].Confidence, 1e-9)
}

func TestGraph_FailureIsNotFatal(t *testing.T) {
	s := openStore(t)
	g := NewGraph(s, "run-1")
	ctx := context.Background()

	// The prefix node was never written.
	err := g.Emit(ctx, rec([]int64{8}, 9, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), g.Failures())

	require.NoError(t, g.Emit(ctx, rec(nil, 8, 1)))
	assert.Equal(t, int64(1), g.Written())
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	s := openStore(t)

	tests := []struct {
		name    string
		kind    Kind
		target  Target
		wantErr bool
	}{
		{"buffer", KindBuffer, Target{}, false},
		{"file", KindFile, Target{Path: filepath.Join(dir, "out.jsonl")}, false},
		{"file without path", KindFile, Target{}, true},
		{"graph", KindGraph, Target{Store: s, RunID: "r"}, false},
		{"graph without store", KindGraph, Target{}, true},
		{"unknown", Kind("csv"), Target{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := Open(tt.kind, tt.target)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, w.Close())
		})
	}
}

func TestCountingAndSerialized(t *testing.T) {
	b := NewBuffer()
	c := NewCounting(b)
	s := NewSerialized(c)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = s.Emit(ctx, rec(nil, int64(i*100+j), 1))
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(400), c.Count())
	assert.Len(t, b.Records(), 400)
}

type failingSink struct{}

func (failingSink) Emit(context.Context, Record) error { return errors.New("boom") }

func TestCounting_SkipsRejected(t *testing.T) {
	c := NewCounting(failingSink{})
	assert.Error(t, c.Emit(context.Background(), rec(nil, 1, 1)))
	assert.Equal(t, int64(0), c.Count())
}

func TestTee(t *testing.T) {
	a, b := NewBuffer(), NewBuffer()
	s := Tee(a, b)

	require.NoError(t, s.Emit(context.Background(), rec(nil, 1, 1)))
	assert.Equal(t, a.String(), b.String())
	assert.Len(t, b.Records(), 1)

	c := NewBuffer()
	err := Tee(failingSink{}, c).Emit(context.Background(), rec(nil, 1, 1))
	assert.Error(t, err)
	assert.Empty(t, c.Records(), "sinks after a failing one are skipped")
}
