// Package consent asks the operator before a side-effecting action runs.
// Every provider fails closed: anything other than an explicit "y" is a refusal.
package consent

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

const affirmative = "y"

type Provider interface {
	Ask(prompt string) bool
}

type ProviderFunc func(prompt string) bool

func (f ProviderFunc) Ask(prompt string) bool {
	return f(prompt)
}

// IsAffirmative 去空白、转小写后只接受 "y"
func IsAffirmative(answer string) bool {
	return strings.ToLower(strings.TrimSpace(answer)) == affirmative
}

func question(prompt string) string {
	return prompt + " [y/N]: "
}

// LineProvider 从任意 reader 读一行，适合管道和测试
type LineProvider struct {
	in  *bufio.Reader
	out io.Writer
}

func NewLineProvider(in io.Reader, out io.Writer) *LineProvider {
	return &LineProvider{
		in:  bufio.NewReader(in),
		out: out,
	}
}

func (p *LineProvider) Ask(prompt string) bool {
	_, _ = fmt.Fprint(p.out, question(prompt))
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		// 没读到任何输入 (EOF / 读失败) 一律视为拒绝
		_, _ = fmt.Fprintln(p.out)
		slog.Debug("consent input unavailable", "error", err)
		return false
	}
	return IsAffirmative(line)
}

// TerminalProvider 在交互式终端上用 readline 读取回答
// 同一个 readline 实例在多次询问之间复用，用完调用 Close
type TerminalProvider struct {
	stdin  io.Reader
	stdout io.Writer
	rl     *readline.Instance
}

func NewTerminalProvider(stdin io.Reader, stdout io.Writer) *TerminalProvider {
	return &TerminalProvider{stdin: stdin, stdout: stdout}
}

func (p *TerminalProvider) Ask(prompt string) bool {
	if p.rl == nil {
		rl, err := readline.NewEx(&readline.Config{
			Stdin:  readline.NewCancelableStdin(p.stdin),
			Stdout: p.stdout,
		})
		if err != nil {
			slog.Debug("readline unavailable", "error", err)
			return false
		}
		p.rl = rl
	}

	p.rl.SetPrompt(question(prompt))
	line, err := p.rl.Readline()
	if err != nil { // io.EOF, readline.ErrInterrupt
		return false
	}
	return IsAffirmative(line)
}

func (p *TerminalProvider) Close() error {
	if p.rl == nil {
		return nil
	}
	return p.rl.Close()
}

// AssumeYes 不读输入，直接同意，对应 --yes
type AssumeYes struct {
	out io.Writer
}

func NewAssumeYes(out io.Writer) *AssumeYes {
	return &AssumeYes{out: out}
}

func (p *AssumeYes) Ask(prompt string) bool {
	_, _ = fmt.Fprintln(p.out, question(prompt)+"y (assumed)")
	return true
}

// New stdin 是终端时用 readline，否则按行读取
func New(in *os.File, out io.Writer) Provider {
	if term.IsTerminal(int(in.Fd())) {
		return NewTerminalProvider(in, out)
	}
	return NewLineProvider(in, out)
}
