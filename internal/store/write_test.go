package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func singleton(key string, support int) Association {
	return Association{
		RunID:   "run-1",
		Itemset: Node{Key: key, Items: key, Title: key[1 : len(key)-1], Size: 1, Support: support, RunID: "run-1"},
	}
}

func TestWriteAssociation_Singleton(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteAssociation(ctx, singleton("[1]", 4)))

	n, ok, err := s.Node(ctx, "[1]")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4, n.Support)
	assert.Equal(t, "1", n.Title)
	assert.Equal(t, "run-1", n.RunID)

	rules, err := s.CountRules(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, rules, "singletons have no upstream edges")
}

func TestWriteAssociation_PairCreatesBothEdges(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteAssociation(ctx, singleton("[1]", 4)))
	require.NoError(t, s.WriteAssociation(ctx, singleton("[2]", 3)))

	err := s.WriteAssociation(ctx, Association{
		RunID:       "run-1",
		Itemset:     Node{Key: "[1,2]", Items: "[1,2]", Size: 2, Support: 2, RunID: "run-1"},
		ItemKey:     "[2]",
		ItemAssoc:   "[1]",
		PrefixKey:   "[1]",
		PrefixAssoc: "[2]",
	})
	require.NoError(t, err)

	rules, err := s.Rules(ctx, RuleQuery{})
	require.NoError(t, err)
	require.Len(t, rules, 2)

	// Ordered by confidence: 2/3 from [2], then 2/4 from [1].
	assert.Equal(t, "[2]", rules[0].Source)
	assert.Equal(t, "[1,2]", rules[0].Target)
	assert.Equal(t, "[1]", rules[0].AssocItems)
	assert.InDelta(t, 2.0/3.0, rules[0].Confidence, 1e-9)
	assert.Equal(t, 2, rules[0].Level)

	assert.Equal(t, "[1]", rules[1].Source)
	assert.Equal(t, "[2]", rules[1].AssocItems)
	assert.InDelta(t, 0.5, rules[1].Confidence, 1e-9)
}

func TestWriteAssociation_MissingSourceRollsBack(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteAssociation(ctx, singleton("[1]", 4)))

	err := s.WriteAssociation(ctx, Association{
		RunID:       "run-1",
		Itemset:     Node{Key: "[1,9]", Items: "[1,9]", Size: 2, Support: 2, RunID: "run-1"},
		ItemKey:     "[9]",
		ItemAssoc:   "[1]",
		PrefixKey:   "[1]",
		PrefixAssoc: "[9]",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingNode))

	_, ok, err := s.Node(ctx, "[1,9]")
	require.NoError(t, err)
	assert.False(t, ok, "combined node must not survive a failed record")
}

func TestWriteAssociation_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteAssociation(ctx, singleton("[1]", 4)))
	// A second write of the same key keeps the first support (merge on create).
	require.NoError(t, s.WriteAssociation(ctx, singleton("[1]", 99)))

	n, ok, err := s.Node(ctx, "[1]")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4, n.Support)

	count, err := s.CountNodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRules_Filters(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, a := range []Association{singleton("[1]", 4), singleton("[2]", 2), singleton("[3]", 2)} {
		require.NoError(t, s.WriteAssociation(ctx, a))
	}
	pair := func(a, b string, support int) Association {
		key := "[" + a + "," + b + "]"
		return Association{
			RunID:       "run-1",
			Itemset:     Node{Key: key, Items: key, Size: 2, Support: support, RunID: "run-1"},
			ItemKey:     "[" + b + "]",
			ItemAssoc:   "[" + a + "]",
			PrefixKey:   "[" + a + "]",
			PrefixAssoc: "[" + b + "]",
		}
	}
	require.NoError(t, s.WriteAssociation(ctx, pair("1", "2", 2)))
	require.NoError(t, s.WriteAssociation(ctx, pair("1", "3", 1)))

	rules, err := s.Rules(ctx, RuleQuery{MinConfidence: 0.9})
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "[2]", rules[0].Source)

	rules, err = s.Rules(ctx, RuleQuery{Source: "[1]"})
	require.NoError(t, err)
	assert.Len(t, rules, 2)

	rules, err = s.Rules(ctx, RuleQuery{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, rules, 3)

	rules, err = s.Rules(ctx, RuleQuery{Level: 3})
	require.NoError(t, err)
	assert.NotNil(t, rules)
	assert.Empty(t, rules)
}

func TestNode_Missing(t *testing.T) {
	s := createTestStore(t)

	_, ok, err := s.Node(context.Background(), "[42]")
	require.NoError(t, err)
	assert.False(t, ok)
}
