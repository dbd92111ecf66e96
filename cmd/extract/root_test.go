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

const reply = "Here are 2 spots for you:\n```json\n" +
	`{"recommendations":[{"name":"Karura Forest","type":"Forest"},{"name":"Uhuru Park"}]}` +
	"\n```"

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRecommendations_Stdin(t *testing.T) {
	out, err := run(t, reply, "recommendations")
	require.NoError(t, err)

	var got struct {
		IntroText       string `json:"introText"`
		Recommendations []struct {
			Name string `json:"name"`
			Type string `json:"type"`
		} `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Here are 2 spots for you:", got.IntroText)
	require.Len(t, got.Recommendations, 2)
	assert.Equal(t, "Outdoor Space", got.Recommendations[1].Type)
}

func TestNullWhenNothingExtracted(t *testing.T) {
	for _, sub := range []string{"recommendations", "disposal"} {
		t.Run(sub, func(t *testing.T) {
			out, err := run(t, "Just prose", sub)
			require.NoError(t, err)
			assert.Equal(t, "null\n", out)
		})
	}
}

func TestDisposal_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reply.txt")
	require.NoError(t, os.WriteFile(path, []byte(`{"item":"Can","recycling_available":true}`), 0o600))

	out, err := run(t, "", "disposal", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"item": "Can"`)
	assert.Contains(t, out, `"recycling_available": true`)
}

func TestStrip(t *testing.T) {
	out, err := run(t, reply, "strip")
	require.NoError(t, err)
	assert.Equal(t, "Here are 2 spots for you:\n", out)
}

func TestClassify(t *testing.T) {
	out, err := run(t, reply, "classify", "--variant", "disposal")
	require.NoError(t, err)
	assert.Equal(t, "shape_mismatch\n", out)

	_, err = run(t, reply, "classify", "--variant", "parks")
	assert.Error(t, err)
}

func TestMissingFile(t *testing.T) {
	_, err := run(t, "", "strip", "-f", filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)
}
