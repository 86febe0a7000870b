package remover

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"

	"github.com/chaos-io/cutout/consent"
	"github.com/chaos-io/cutout/rembg"
)

const installPrompt = "The 'rembg' library is required to remove backgrounds. It will be installed via pip. Do you want to proceed?"

// Provisioner 确保 rembg 可用，缺失时征得同意后用 pip 安装
type Provisioner struct {
	bin      string
	python   string
	packages []string
	consent  consent.Provider
	out      io.Writer

	lookPath func(file string) (string, error)
	command  rembg.CommandFunc
}

func NewProvisioner(bin, python string, packages []string, c consent.Provider, out io.Writer) *Provisioner {
	return &Provisioner{
		bin:      bin,
		python:   python,
		packages: packages,
		consent:  c,
		out:      out,
		lookPath: exec.LookPath,
		command:  exec.CommandContext,
	}
}

// EnsureAvailable 返回 rembg 可执行文件路径
func (p *Provisioner) EnsureAvailable(ctx context.Context) (string, error) {
	path, err := p.lookPath(p.bin)
	if err == nil {
		slog.Debug("rembg found", "path", path)
		return path, nil
	}
	slog.Debug("rembg not found", "bin", p.bin, "error", err)

	if !p.consent.Ask(installPrompt) {
		_, _ = fmt.Fprintln(p.out, "Installation aborted by user.")
		return "", fmt.Errorf("%w: install %s", ErrConsentRefused, p.bin)
	}

	_, _ = fmt.Fprintln(p.out, "Installing rembg...")
	if err := p.install(ctx); err != nil {
		_, _ = fmt.Fprintln(p.out, "Failed to install rembg.")
		return "", fmt.Errorf("%w: %w", ErrInstallFailure, err)
	}

	path, err = p.lookPath(p.bin)
	if err != nil {
		_, _ = fmt.Fprintln(p.out, "Failed to load rembg after installation.")
		return "", fmt.Errorf("%w: %s still unavailable after install: %w", ErrInstallFailure, p.bin, err)
	}
	return path, nil
}

func (p *Provisioner) install(ctx context.Context) error {
	args := append([]string{"-m", "pip", "install"}, p.packages...)
	cmd := p.command(ctx, p.python, args...)
	cmd.Stdout = p.out
	cmd.Stderr = p.out

	slog.Debug("run installer", "cmd", cmd.String())
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %s -m pip install: %w", p.python, err)
	}
	return nil
}
