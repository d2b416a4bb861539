package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLayout = `{"sitecore":{"context":{"site":{"name":"mvp-site"},"language":"en"},"route":{"name":"home","itemId":"c91b1c4b-c37b-4709-b6b7-3c83053b9f0d","placeholders":{"headless-main":[{"uid":"u-1","componentName":"Hero","fields":{"Text":"Welcome"}}]}}}}`

const testRules = `
rules:
  - name: home
    items: ["{C91B1C4B-C37B-4709-B6B7-3C83053B9F0D}"]
    components:
      Hero:
        fields:
          Text: { kind: text, value: "to {{.Site}}" }
`

func writeRules(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testRules), 0o600))
	return path
}

func runPatch(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	root := NewRoot()
	var stdout, stderr bytes.Buffer
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"patch"}, args...))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestPatchCmd_TargetedRoute(t *testing.T) {
	out, _, err := runPatch(t, testLayout, "--rules", writeRules(t))
	require.NoError(t, err)

	var doc struct {
		Sitecore struct {
			Route struct {
				Placeholders map[string][]struct {
					Fields map[string]any `json:"fields"`
				} `json:"placeholders"`
			} `json:"route"`
		} `json:"sitecore"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "Welcome to mvp-site", doc.Sitecore.Route.Placeholders["headless-main"][0].Fields["Text"])
}

func TestPatchCmd_UntargetedItemIsUnchanged(t *testing.T) {
	out, stderr, err := runPatch(t, testLayout, "--rules", writeRules(t), "--item", "{94DE9AC3-A9F7-40AB-AE90-ACDA364B9C40}")
	require.NoError(t, err)

	assert.Equal(t, testLayout, out)
	assert.Contains(t, stderr, "no rule targets item")
}

func TestPatchCmd_FileInOut(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.json")
	out := filepath.Join(dir, "out.json")
	require.NoError(t, os.WriteFile(in, []byte(testLayout), 0o600))

	_, _, err := runPatch(t, "", "--rules", writeRules(t), "--in", in, "--out", out)
	require.NoError(t, err)

	body, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"Text":"Welcome to mvp-site"`)
}

func TestPatchCmd_Errors(t *testing.T) {
	rulesPath := writeRules(t)
	testCases := []struct {
		name  string
		stdin string
		args  []string
	}{
		{"missing rules", testLayout, []string{"--rules", filepath.Join(t.TempDir(), "none.yaml")}},
		{"invalid layout", "<html/>", []string{"--rules", rulesPath}},
		{"null route", `{"sitecore":{"context":{},"route":null}}`, []string{"--rules", rulesPath}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := runPatch(t, tc.stdin, tc.args...)
			assert.Error(t, err)
		})
	}
}
