package rembg

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// CommandFunc 创建子进程，测试时替换
type CommandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// CLIRemover 通过 `rembg i` 子进程处理，stdin 输入，stdout 输出
type CLIRemover struct {
	bin     string
	command CommandFunc
}

func NewCLIRemover(bin string) *CLIRemover {
	return &CLIRemover{
		bin:     bin,
		command: exec.CommandContext,
	}
}

func (c *CLIRemover) Remove(ctx context.Context, input []byte, opts Options) ([]byte, error) {
	cmd := c.command(ctx, c.bin, Args(opts)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdin = bytes.NewReader(input)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("run %s: %w", c.bin, err)
		}
		return nil, fmt.Errorf("run %s: %w: %s", c.bin, err, msg)
	}
	return stdout.Bytes(), nil
}

// Args `rembg i` 的参数，"-" 表示 stdin/stdout
//
//	rembg i -m isnet-general-use -a -af 240 -ab 10 -ae 10 - -
func Args(opts Options) []string {
	args := []string{"i", "-m", opts.Model}
	if opts.AlphaMatting {
		args = append(args,
			"-a",
			"-af", strconv.Itoa(opts.ForegroundThreshold),
			"-ab", strconv.Itoa(opts.BackgroundThreshold),
			"-ae", strconv.Itoa(opts.ErodeSize),
		)
	}
	return append(args, "-", "-")
}
