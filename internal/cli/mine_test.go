package cli

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/eclat/internal/engine"
)

const workedExample = "1 2 3\n1 2\n1 3\n2 3\n1\n"

var workedExampleRecords = []string{
	`{"itemSet":[],"item":1,"support":4}`,
	`{"itemSet":[],"item":2,"support":3}`,
	`{"itemSet":[],"item":3,"support":3}`,
	`{"itemSet":[2],"item":3,"support":2}`,
	`{"itemSet":[2],"item":1,"support":2}`,
	`{"itemSet":[3],"item":1,"support":2}`,
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

type mineResponse struct {
	Status string `json:"status"`
	Data   struct {
		Stats         engine.Stats      `json:"stats"`
		Output        string            `json:"output"`
		Out           string            `json:"out"`
		DB            string            `json:"db"`
		Itemsets      []json.RawMessage `json:"itemsets"`
		GraphFailures int64             `json:"graph_failures"`
	} `json:"data"`
	Error *CLIError `json:"error"`
}

func decodeMine(t *testing.T, out string) mineResponse {
	t.Helper()
	var resp mineResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp
}

func TestMine_TextBuffer(t *testing.T) {
	input := writeFile(t, t.TempDir(), "tx.txt", workedExample)

	out, err := execute(t, "mine", "--min-support", "0.4", "--run-id", "r1", input)
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.Greater(t, len(lines), len(workedExampleRecords))
	assert.Equal(t, workedExampleRecords, lines[:len(workedExampleRecords)])
	assert.Contains(t, out, "Run:            r1\n")
	assert.Contains(t, out, "Transactions:   5\n")
	assert.Contains(t, out, "Min support:    2 (ratio 0.4)\n")
	assert.Contains(t, out, "Itemsets:       6 (3 single items)\n")
}

func TestMine_JSON(t *testing.T) {
	input := writeFile(t, t.TempDir(), "tx.txt", workedExample)

	out, err := execute(t, "--format", "json", "mine", "--min-support", "0.4", "--run-id", "r1", "--workers", "3", input)
	require.NoError(t, err)

	resp := decodeMine(t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "buffer", resp.Data.Output)
	assert.Equal(t, "r1", resp.Data.Stats.RunID)
	assert.Equal(t, int64(6), resp.Data.Stats.Itemsets)
	assert.Equal(t, engine.StageDone, resp.Data.Stats.Stage)

	got := make([]string, len(resp.Data.Itemsets))
	for i, raw := range resp.Data.Itemsets {
		got[i] = string(raw)
	}
	assert.ElementsMatch(t, workedExampleRecords, got)
}

func TestMine_Stdin(t *testing.T) {
	out, err := executeWithInput(t, strings.NewReader(workedExample), "mine", "--min-support", "0.4", "-")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, strings.Join(workedExampleRecords, "\n")+"\n"))
}

func TestMine_StringItems(t *testing.T) {
	input := writeFile(t, t.TempDir(), "tx.csv", "milk,bread\nbread,milk\neggs\n")

	out, err := execute(t, "mine", "--item-kind", "string", "--separator", ",", "--min-support", "0.5", input)
	require.NoError(t, err)
	assert.Contains(t, out, `{"itemSet":["milk"],"item":"bread","support":2}`)
	assert.NotContains(t, out, `"eggs"`)
}

func TestMine_FileOutput(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "tx.txt", workedExample)
	path := filepath.Join(dir, "itemsets.jsonl")

	out, err := execute(t, "mine", "--min-support", "0.4", "--output", "file", "-o", path, input)
	require.NoError(t, err)
	assert.Contains(t, out, "Output:         "+path)
	assert.NotContains(t, out, `"itemSet"`, "records go to the file, not stdout")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(workedExampleRecords, "\n")+"\n", string(data))
}

func TestMine_ConfigFilePrecedence(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "tx.txt", workedExample)
	cfg := writeFile(t, dir, "run.yaml", "min_support: 0.9\ntidset_kind: sorted\n")

	// 0.9 of 5 transactions needs support 5: nothing is frequent.
	out, err := execute(t, "--format", "json", "mine", "--config", cfg, input)
	require.NoError(t, err)
	resp := decodeMine(t, out)
	assert.Equal(t, 5, resp.Data.Stats.MinSupport)
	assert.Equal(t, int64(0), resp.Data.Stats.Itemsets)
	assert.Equal(t, "sorted", string(resp.Data.Stats.TidsetKind))

	// An explicit flag wins over the file; the rest of the file still applies.
	out, err = execute(t, "--format", "json", "mine", "--config", cfg, "--min-support", "0.4", input)
	require.NoError(t, err)
	resp = decodeMine(t, out)
	assert.Equal(t, int64(6), resp.Data.Stats.Itemsets)
	assert.Equal(t, "sorted", string(resp.Data.Stats.TidsetKind))
}

func TestMine_Query(t *testing.T) {
	dir := t.TempDir()
	dsn := filepath.Join(dir, "orders.db")

	db, err := sql.Open("sqlite3", dsn)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE orders (id INTEGER PRIMARY KEY, itemSet TEXT)`)
	require.NoError(t, err)
	for _, list := range []string{"[1,2,3]", "[1,2]", "[1,3]", "[2,3]", "[1]"} {
		_, err = db.Exec(`INSERT INTO orders (itemSet) VALUES (?)`, list)
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())

	out, err := execute(t, "--format", "json", "mine",
		"--min-support", "0.4",
		"--query", "SELECT id, itemSet FROM orders ORDER BY id",
		"--query-dsn", dsn,
	)
	require.NoError(t, err)

	resp := decodeMine(t, out)
	assert.Equal(t, 5, resp.Data.Stats.Transactions)
	assert.Equal(t, int64(6), resp.Data.Stats.Itemsets)
}

func TestMine_GraphThenRules(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "tx.txt", workedExample)
	graph := filepath.Join(dir, "graph.db")

	out, err := execute(t, "--format", "json", "mine",
		"--min-support", "0.4", "--output", "graph", "--db", graph, "--run-id", "r1", input)
	require.NoError(t, err)
	resp := decodeMine(t, out)
	assert.Equal(t, graph, resp.Data.DB)
	assert.Zero(t, resp.Data.GraphFailures)
	assert.Empty(t, resp.Data.Itemsets)

	var rules struct {
		Status string      `json:"status"`
		Data   RulesResult `json:"data"`
	}

	out, err = execute(t, "--format", "json", "rules", "--db", graph)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &rules))
	assert.Equal(t, 6, rules.Data.Nodes)
	assert.Equal(t, 6, rules.Data.Total)
	require.Len(t, rules.Data.Rules, 6)
	for _, r := range rules.Data.Rules {
		assert.Equal(t, "r1", r.RunID)
		assert.Equal(t, 2, r.Level)
	}

	out, err = execute(t, "--format", "json", "rules", "--db", graph, "--source", "1")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &rules))
	require.Len(t, rules.Data.Rules, 2)
	for _, r := range rules.Data.Rules {
		assert.Equal(t, "[1]", r.Source)
		assert.InDelta(t, 0.5, r.Confidence, 1e-9)
	}

	out, err = execute(t, "rules", "--db", graph, "--min-confidence", "0.6", "--limit", "3")
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, "confidence 0.667"))
	assert.Contains(t, out, "Showing 3 of 6 rules over 6 itemsets")
}

func TestMine_Errors(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "tx.txt", workedExample)
	bad := writeFile(t, dir, "bad.txt", "1 2\nx\n")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"ratio zero", []string{"mine", "--min-support", "0", input}, "min_support"},
		{"ratio above one", []string{"mine", "--min-support", "1.5", input}, "min_support"},
		{"bad matrix kind", []string{"mine", "--matrix-kind", "diagonal", input}, "matrix_kind"},
		{"file output without path", []string{"mine", "--output", "file", input}, "out"},
		{"graph output without db", []string{"mine", "--output", "graph", input}, "db"},
		{"no input", []string{"mine"}, "no input"},
		{"file and query", []string{"mine", "--query", "SELECT 1", "--query-dsn", "x.db", input}, "mutually exclusive"},
		{"missing file", []string{"mine", filepath.Join(dir, "nope.txt")}, "failed to read transactions"},
		{"unparseable item", []string{"mine", bad}, `parse item "x"`},
		{"missing config", []string{"mine", "--config", filepath.Join(dir, "nope.yaml"), input}, "invalid configuration"},
		{"output dir missing", []string{"mine", "--output", "file", "-o", filepath.Join(dir, "no", "out.jsonl"), input}, "failed to open output"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}

func TestMine_ErrorJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "mine", "--min-support", "0")
	require.Error(t, err)

	resp := decodeMine(t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeConfig, resp.Error.Code)
}

func TestRules_MissingDatabase(t *testing.T) {
	_, err := execute(t, "rules", "--db", filepath.Join(t.TempDir(), "nope.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database not found")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRules_BadSource(t *testing.T) {
	dir := t.TempDir()
	graph := filepath.Join(dir, "graph.db")
	input := writeFile(t, dir, "tx.txt", workedExample)
	_, err := execute(t, "mine", "--output", "graph", "--db", graph, input)
	require.NoError(t, err)

	_, err = execute(t, "rules", "--db", graph, "--source", "1,x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --source")

	out, err := execute(t, "rules", "--db", graph, "--source", "9")
	require.NoError(t, err)
	assert.Contains(t, out, "No rules found.")
}

func TestSourceKey(t *testing.T) {
	key, err := sourceKey("30,4", "int")
	require.NoError(t, err)
	assert.Equal(t, "[4,30]", key)

	key, err = sourceKey("milk,bread", "string")
	require.NoError(t, err)
	assert.Equal(t, `["bread","milk"]`, key)

	_, err = sourceKey("1", "float")
	assert.Error(t, err)
}
