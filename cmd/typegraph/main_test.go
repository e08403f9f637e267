package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func captureOutput(t *testing.T, fn func() error) (stdout, stderr string, err error) {
	t.Helper()
	oldOut, oldErr := os.Stdout, os.Stderr
	defer func() {
		os.Stdout, os.Stderr = oldOut, oldErr
	}()

	outR, outW, _ := os.Pipe()
	errR, errW, _ := os.Pipe()
	os.Stdout, os.Stderr = outW, errW

	doneOut := make(chan struct{})
	var bufOut bytes.Buffer
	go func() { io.Copy(&bufOut, outR); close(doneOut) }()

	doneErr := make(chan struct{})
	var bufErr bytes.Buffer
	go func() { io.Copy(&bufErr, errR); close(doneErr) }()

	err = fn()
	outW.Close()
	errW.Close()
	<-doneOut
	<-doneErr
	stdout, stderr = bufOut.String(), bufErr.String()
	return
}

func writeMediaSchemas(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	schema := `type Photo @discriminant(value: "Photo") {
  width: Int
}

type Movie {
  rating: Float
}

union Media = Photo | Movie
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "media.graphql"), []byte(schema), 0644))
	return dir
}

func writeValue(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "value.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestHelp(t *testing.T) {
	out, _, err := captureOutput(t, func() error {
		return run([]string{"help", "resolve"})
	})
	require.NoError(t, err)
	require.Contains(t, out, "resolve FLAGS")
}

func TestUnknownCommand(t *testing.T) {
	_, stderr, err := captureOutput(t, func() error {
		return run([]string{"frobnicate"})
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), `unknown command "frobnicate"`)
	require.Contains(t, stderr, "COMMANDS:")
}

func TestCheckStrictFindsUncoveredVariant(t *testing.T) {
	dir := writeMediaSchemas(t)

	out, _, err := captureOutput(t, func() error {
		return run([]string{"check", "-schema.dir", dir})
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "check failed")
	require.Contains(t, out, "ERROR Media.Movie")
}

func TestCheckPermissiveDowngrades(t *testing.T) {
	dir := writeMediaSchemas(t)

	out, _, err := captureOutput(t, func() error {
		return run([]string{"check", "-schema.dir", dir, "-check.permissive"})
	})
	require.NoError(t, err)
	require.Contains(t, out, "WARN")
	require.Contains(t, out, "checked 1 abstract types")
}

func TestResolveByTypename(t *testing.T) {
	dir := writeMediaSchemas(t)
	vf := writeValue(t, `{"__typename": "Movie", "rating": 4.5}`)

	out, stderr, err := captureOutput(t, func() error {
		return run([]string{"resolve", "-schema.dir", dir, "-type", "Media", "-value.file", vf})
	})
	require.NoError(t, err)
	require.Equal(t, "Movie", strings.TrimSpace(out))
	require.Contains(t, stderr, "build completed")
}

func TestResolveValueMissingDiscriminant(t *testing.T) {
	dir := writeMediaSchemas(t)
	vf := writeValue(t, `{"rating": 4.5}`)

	_, stderr, err := captureOutput(t, func() error {
		return run([]string{"resolve", "-schema.dir", dir, "-type", "Media", "-value.file", vf})
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "could not be resolved")
	require.Contains(t, stderr, "resolution failed")
}

func TestResolveRequiresType(t *testing.T) {
	_, _, err := captureOutput(t, func() error {
		return run([]string{"resolve"})
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "-type is required")
}

func TestResolveWithConfigFile(t *testing.T) {
	dir := writeMediaSchemas(t)
	vf := writeValue(t, `{"__typename": "Photo", "width": 800}`)

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	cfg := fmt.Sprintf(`strategy:
  typename_field: true
schema:
  dir: %s
logging:
  level: warn
`, dir)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))

	out, _, err := captureOutput(t, func() error {
		return run([]string{"resolve", "-config.file", cfgPath, "-type", "Media", "-value.file", vf})
	})
	require.NoError(t, err)
	require.Equal(t, "Photo", strings.TrimSpace(out))
}
