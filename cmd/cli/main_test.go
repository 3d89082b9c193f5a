package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_InvalidGraph(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	invalidHCL := `
		node "input" "a" {
		  contents {
		// Missing closing brace here
	`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "main.hcl")
	err := os.WriteFile(filePath, []byte(invalidHCL), 0600)
	require.NoError(t, err, "failed to set up test file")

	args := []string{"-debounce", "0s", filePath}
	out := &bytes.Buffer{}

	// --- Act ---
	runErr := run(context.Background(), out, args)

	// --- Assert ---
	require.Error(t, runErr, "run() should return an error for an unparsable graph")
	require.Contains(t, runErr.Error(), "failed to parse")
}

func TestRun_Success(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	graphHCL := `
		node "input" "name" {
		  contents {
		    output = "hello"
		  }
		}

		node "prompt" "greet" {
		  contents {
		    prompt = "Say {x}"
		  }
		}

		edge {
		  from = "name.input"
		  to   = "greet.x"
		}
	`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "main.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(graphHCL), 0600))
	outPath := filepath.Join(tempDir, "out.json")

	args := []string{"-debounce", "0s", "-log-level", "error", "-out", outPath, filePath}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, args)

	// --- Assert ---
	require.NoError(t, err)
	require.Contains(t, out.String(), "greet [prompt]\n  prompt = \"Say hello\"\n")
	require.FileExists(t, outPath)
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	args := []string{"-h"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, args)

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// Providing an unknown flag will cause cli.Parse to return an error.
	args := []string{"--this-is-not-a-valid-flag"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, args)

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}
