package rembg

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// helperCommand 用测试二进制本身模拟 rembg
func helperCommand(ctx context.Context, name string, args ...string) *exec.Cmd {
	cs := append([]string{"-test.run=TestHelperProcess", "--", name}, args...)
	cmd := exec.CommandContext(ctx, os.Args[0], cs...)
	cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1")
	return cmd
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	defer os.Exit(0)

	args := os.Args
	for len(args) > 0 {
		if args[0] == "--" {
			args = args[1:]
			break
		}
		args = args[1:]
	}
	name, args := args[0], args[1:]

	switch name {
	case "rembg-ok":
		in, _ := io.ReadAll(os.Stdin)
		_, _ = fmt.Fprintf(os.Stdout, "[%s]%s", strings.Join(args, " "), in)
	case "rembg-fail":
		_, _ = fmt.Fprint(os.Stderr, "No such model: isnet-general-use\n")
		os.Exit(3)
	case "rembg-silent-fail":
		os.Exit(4)
	}
}

func TestArgs(t *testing.T) {
	assert.Equal(t,
		[]string{"i", "-m", "isnet-general-use", "-a", "-af", "240", "-ab", "10", "-ae", "10", "-", "-"},
		Args(DefaultOptions()))

	assert.Equal(t,
		[]string{"i", "-m", "u2net", "-", "-"},
		Args(Options{Model: "u2net"}))
}

func TestCLIRemover_Remove(t *testing.T) {
	c := NewCLIRemover("rembg-ok")
	c.command = helperCommand

	got, err := c.Remove(context.Background(), []byte("image-bytes"), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "[i -m isnet-general-use -a -af 240 -ab 10 -ae 10 - -]image-bytes", string(got))
}

func TestCLIRemover_RemoveFailure(t *testing.T) {
	c := NewCLIRemover("rembg-fail")
	c.command = helperCommand

	_, err := c.Remove(context.Background(), []byte("image-bytes"), DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exit status 3")
	assert.Contains(t, err.Error(), "No such model: isnet-general-use")

	var exitErr *exec.ExitError
	assert.ErrorAs(t, err, &exitErr)
}

func TestCLIRemover_RemoveFailureWithoutStderr(t *testing.T) {
	c := NewCLIRemover("rembg-silent-fail")
	c.command = helperCommand

	_, err := c.Remove(context.Background(), []byte("image-bytes"), DefaultOptions())
	require.Error(t, err)
	assert.Equal(t, "run rembg-silent-fail: exit status 4", err.Error())
}

func TestCLIRemover_MissingBinary(t *testing.T) {
	c := NewCLIRemover("/nonexistent/bin/rembg")

	_, err := c.Remove(context.Background(), []byte("image-bytes"), DefaultOptions())
	assert.Error(t, err)
}
