package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/tugas/pkg/scraper"
)

func sampleResult() *scraper.FetchResult {
	var tasks scraper.TaskGroup
	tasks.Add(scraper.Task{Name: "Assignment 1", URL: "https://x/1", Course: "CS101 Algorithms", Date: "20 Mar", HeadingDate: "Tomorrow"})
	tasks.Add(scraper.Task{Name: "Project Proposal", Date: "10 Apr"})
	return &scraper.FetchResult{User: "20190001", Tasks: tasks}
}

func TestCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["fetch"])
	assert.True(t, names["install"])

	assert.NotNil(t, serveCmd.Flags().Lookup("port"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
}

func TestWriteResultJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeResult(&buf, "json", sampleResult()))

	var body struct {
		Username string                       `json:"username"`
		Message  string                       `json:"message"`
		Tasks    map[string][]json.RawMessage `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &body))
	assert.Equal(t, "20190001", body.Username)
	assert.Equal(t, "Login successful!", body.Message)
	assert.Len(t, body.Tasks["Tomorrow"], 1)
	assert.Len(t, body.Tasks[""], 1)
}

func TestWriteResultText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeResult(&buf, "text", sampleResult()))

	out := buf.String()
	assert.Contains(t, out, "Logged in as 20190001")
	assert.Contains(t, out, "Tomorrow")
	assert.Contains(t, out, "- Assignment 1 (20 Mar)")
	assert.Contains(t, out, "CS101 Algorithms")
	assert.Contains(t, out, "(no date)")
}

func TestRenderTextEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderText(&buf, &scraper.FetchResult{User: "42"}))
	assert.Contains(t, buf.String(), "No pending tasks.")
}

func TestLoadConfigRejectsUnknownLogLevel(t *testing.T) {
	t.Setenv("TUGAS_LOG_LEVEL", "")
	logLevel = "chatty"
	defer func() { logLevel = "" }()

	_, err := loadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid logging verbosity")
}
