package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stdinFile 非终端的 stdin，内容为 content
func stdinFile(t *testing.T, content string) *os.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stdin")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = f.Close()
	})
	return f
}

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"CUTOUT_MODEL", "CUTOUT_SERVER", "CUTOUT_MODEL_HOME", "CUTOUT_REMBG_BIN", "CUTOUT_PYTHON", "CUTOUT_YES", "U2NET_HOME"} {
		t.Setenv(key, "")
	}
}

func inputFile(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, ksuid.New().String()+".jpg")
	require.NoError(t, os.WriteFile(path, []byte("input-image"), 0o644))
	return path
}

func TestRun_Usage(t *testing.T) {
	isolateEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{name: "no args", args: nil},
		{name: "one arg", args: []string{"in.png"}},
		{name: "three args", args: []string{"in.png", "out.png", "extra"}},
		{name: "four args", args: []string{"a", "b", "c", "d"}},
		{name: "unknown flag", args: []string{"in.png", "out.png", "--bogus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(tt.args, stdinFile(t, ""), &stdout, &stderr)

			assert.Equal(t, 1, code)
			assert.Contains(t, stdout.String(), "Usage: cutout <input_path> <output_path>")
		})
	}
}

func TestRun_MissingInput(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	out := filepath.Join(dir, "out.png")

	var stdout, stderr bytes.Buffer
	code := run([]string{filepath.Join(dir, "missing.png"), out, "--server", "http://127.0.0.1:1"}, stdinFile(t, "y\n"), &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stdout.String(), "Error: Input file does not exist:")
	assert.NoFileExists(t, out)
}

func TestRun_Server(t *testing.T) {
	isolateEnv(t)
	want := []byte("fixed-buffer-B")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(want)
	}))
	defer server.Close()

	dir := t.TempDir()
	in := inputFile(t, dir)
	out := filepath.Join(dir, "out.png")
	require.NoError(t, os.WriteFile(out, []byte("stale"), 0o644))

	var stdout, stderr bytes.Buffer
	code := run([]string{in, out, "--server", server.URL}, stdinFile(t, ""), &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Contains(t, stdout.String(), "Background removal complete.")
}

func TestRun_ServerFailure(t *testing.T) {
	isolateEnv(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	dir := t.TempDir()
	out := filepath.Join(dir, "out.png")

	var stdout, stderr bytes.Buffer
	code := run([]string{inputFile(t, dir), out, "--server", server.URL}, stdinFile(t, ""), &stdout, &stderr)

	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "Error: background removal failed")
	assert.NoFileExists(t, out)
}

func TestRun_InstallRefused(t *testing.T) {
	isolateEnv(t)
	t.Setenv("CUTOUT_REMBG_BIN", filepath.Join(t.TempDir(), "no-such-rembg"))

	dir := t.TempDir()
	out := filepath.Join(dir, "out.png")

	var stdout, stderr bytes.Buffer
	code := run([]string{inputFile(t, dir), out}, stdinFile(t, "n\n"), &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stdout.String(), "installed via pip. Do you want to proceed? [y/N]: ")
	assert.Contains(t, stdout.String(), "Installation aborted by user.")
	assert.NoFileExists(t, out)
}

func TestRun_DownloadRefused(t *testing.T) {
	isolateEnv(t)
	// 测试二进制本身可执行，当作已安装的 rembg
	t.Setenv("CUTOUT_REMBG_BIN", os.Args[0])
	t.Setenv("U2NET_HOME", t.TempDir())

	dir := t.TempDir()
	out := filepath.Join(dir, "out.png")

	var stdout, stderr bytes.Buffer
	code := run([]string{inputFile(t, dir), out}, stdinFile(t, ""), &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stdout.String(), "(~170MB)")
	assert.Contains(t, stdout.String(), "Model download aborted by user.")
	assert.NoFileExists(t, out)
}
