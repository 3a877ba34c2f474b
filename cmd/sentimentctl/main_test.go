package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/socialsent/internal/domain"
)

func runCmd(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CLASSIFIER_BACKEND", "vader")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func decodeLines(t *testing.T, out string) []domain.SentimentResult {
	t.Helper()
	var results []domain.SentimentResult
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		var r domain.SentimentResult
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &r))
		results = append(results, r)
	}
	return results
}

func TestAnalyze_Args(t *testing.T) {
	out, err := runCmd(t, "", "analyze", "Fena değil @musteri", "Rezalet 😡")
	require.NoError(t, err)

	results := decodeLines(t, out)
	require.Len(t, results, 2)

	assert.Equal(t, domain.LabelPositive, results[0].Label)
	assert.Equal(t, "Fena değil", results[0].ProcessedText)
	assert.Equal(t, domain.LabelNegative, results[1].Label)
	assert.Contains(t, out, "😡", "emoji is not HTML-escaped")
}

func TestAnalyze_Stdin(t *testing.T) {
	out, err := runCmd(t, "Fena değil\n\n   \nFena değil\r\n", "analyze", "--file", "-")
	require.NoError(t, err)

	results := decodeLines(t, out)
	require.Len(t, results, 2, "blank lines are skipped")
	assert.Equal(t, results[0], results[1])
}

func TestAnalyze_FilePretty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.txt")
	require.NoError(t, os.WriteFile(path, []byte("Fena değil\n"), 0o600))

	out, err := runCmd(t, "", "analyze", "--pretty", "-f", path)
	require.NoError(t, err)

	var results []domain.SentimentResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Contains(t, out, "\n  {")
}

func TestAnalyze_NoInput(t *testing.T) {
	_, err := runCmd(t, "", "analyze")
	assert.ErrorContains(t, err, "no texts given")
}

func TestAnalyze_MissingFile(t *testing.T) {
	_, err := runCmd(t, "", "analyze", "-f", filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorContains(t, err, "open input")
}

func TestLexiconCheck_Default(t *testing.T) {
	out, err := runCmd(t, "", "lexicon", "check")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, "emoji_positive", lines[0])
	assert.Contains(t, lines, "irony_marker")
}

func TestVersion(t *testing.T) {
	out, err := runCmd(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "socialsent "))
}

func TestAnalyze_BackendOverrideIsValidated(t *testing.T) {
	t.Setenv("CLASSIFIER_URL", "")
	_, err := runCmd(t, "", "analyze", "--backend", "http", "Fena değil")
	assert.ErrorContains(t, err, "CLASSIFIER_URL is required")
}
