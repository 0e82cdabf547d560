package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), err
}

func writeCorpus(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, text := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(text), 0o600))
	}
	return dir
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)

	out, err = run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "lshsearch "+Version)
}

func TestConfigCommand(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LSH_INDEX_BAND_WIDTH", "5")

	out, err := run(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "band_width: 5")
	assert.Contains(t, out, "signature_length: 10")
}

func TestQueryCommand(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := writeCorpus(t, map[string]string{
		"a.txt": "the quick brown fox jumps over the lazy dog",
		"b.txt": "the quick brown fox jumps over the lazy dog",
		"c.txt": "pack my box with five dozen liquor jugs",
	})
	pattern := filepath.Join(dir, "*.txt")

	t.Run("by text", func(t *testing.T) {
		out, err := run(t, "query", "--corpus", pattern, "--no-progress",
			"--text", "the quick brown fox jumps over the lazy dog")
		require.NoError(t, err)
		assert.Contains(t, out, filepath.Join(dir, "a.txt"))
		assert.Contains(t, out, filepath.Join(dir, "b.txt"))
		assert.Contains(t, out, "1.0000")
	})

	t.Run("by document", func(t *testing.T) {
		out, err := run(t, "query", "--corpus", pattern, "--no-progress", "--doc", "2")
		require.NoError(t, err)
		assert.Contains(t, out, filepath.Join(dir, "c.txt"))
	})

	t.Run("needs text or doc", func(t *testing.T) {
		_, err := run(t, "query", "--corpus", pattern, "--no-progress")
		assert.Error(t, err)
	})

	t.Run("invalid settings", func(t *testing.T) {
		_, err := run(t, "query", "--corpus", pattern, "--no-progress", "--text", "fox", "-k", "10", "-w", "3")
		assert.Error(t, err)
	})

	t.Run("no matching files", func(t *testing.T) {
		_, err := run(t, "query", "--corpus", filepath.Join(dir, "*.md"), "--text", "fox")
		assert.Error(t, err)
	})
}

func TestDuplicatesCommand(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := writeCorpus(t, map[string]string{
		"a.txt": "lorem ipsum dolor sit amet consectetur",
		"b.txt": "lorem ipsum dolor sit amet consectetur",
		"c.txt": "sphinx of black quartz judge my vow",
	})

	out, err := run(t, "duplicates", "--corpus", filepath.Join(dir, "*.txt"), "--no-progress", "--threshold", "0.99")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, "a.txt"))
	assert.Contains(t, out, filepath.Join(dir, "b.txt"))
	assert.NotContains(t, out, filepath.Join(dir, "c.txt"))

	_, err = run(t, "duplicates", "--corpus", filepath.Join(dir, "*.txt"), "--threshold", "1.5")
	assert.Error(t, err)
}

func TestDemoCommand(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := run(t, "demo", "--pairs", "20", "--length", "100", "--no-progress")
	require.NoError(t, err)
	assert.Contains(t, out, "LSH recall")
	assert.Contains(t, out, "Recall:")

	_, err = run(t, "demo", "--pairs", "0")
	assert.Error(t, err)
}

func TestRecallReport(t *testing.T) {
	r := recallReport{Pairs: 10, Found: 6, Skipped: 2, SimilaritySum: 4.5}
	assert.InDelta(t, 0.75, r.Recall(), 1e-9)
	assert.InDelta(t, 0.75, r.MeanSimilarity(), 1e-9)

	assert.Zero(t, recallReport{Pairs: 3, Skipped: 3}.Recall())
	assert.Zero(t, recallReport{}.MeanSimilarity())
}
