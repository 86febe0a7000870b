package remover

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/chaos-io/cutout/consent"
	"github.com/chaos-io/cutout/rembg"
	"github.com/chaos-io/cutout/util"
)

const downloadPrompt = "This appears to be the first run. The background removal model (~170MB) needs to be downloaded. Proceed?"

type BackgroundRemover struct {
	backend rembg.Remover
	opts    rembg.Options
	consent consent.Provider
	out     io.Writer

	// modelPath 为空时跳过下载确认 (例如走远程服务)
	modelPath string
}

func New(backend rembg.Remover, opts rembg.Options, c consent.Provider, out io.Writer) *BackgroundRemover {
	return &BackgroundRemover{
		backend: backend,
		opts:    opts,
		consent: c,
		out:     out,
	}
}

// WithModelCache 下载确认以 path 是否存在为准
func (b *BackgroundRemover) WithModelCache(path string) *BackgroundRemover {
	b.modelPath = path
	return b
}

// Remove 读取 inputPath，去背景后原样写到 outputPath，已存在则直接覆盖
// 输入不存在或未获同意时不会触碰 outputPath
func (b *BackgroundRemover) Remove(ctx context.Context, inputPath, outputPath string) error {
	b.printf("Processing: %s -> %s\n", inputPath, outputPath)

	if !util.FileExists(inputPath) {
		b.printf("Error: Input file does not exist: %s\n", inputPath)
		return fmt.Errorf("%w: %s", ErrMissingInput, inputPath)
	}

	if b.modelPath != "" && !rembg.ModelCached(b.modelPath) {
		slog.Debug("model not cached", "path", b.modelPath)
		if !b.consent.Ask(downloadPrompt) {
			b.printf("Model download aborted by user.\n")
			return fmt.Errorf("%w: download model %s", ErrConsentRefused, b.opts.Model)
		}
	}

	input, err := os.ReadFile(inputPath)
	if err != nil {
		b.printf("Error: Input file does not exist: %s\n", inputPath)
		return fmt.Errorf("%w: %w", ErrMissingInput, err)
	}

	session := rembg.NewSession(b.backend, b.opts)

	b.printf("Applying background removal (this may take a moment)...\n")
	output, err := b.segment(ctx, session, input)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCollaborator, err)
	}

	if err := util.WriteFile(outputPath, output); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	if desc := util.DescribeImage(output); desc != "" {
		b.printf("Background removal complete (%s).\n", desc)
	} else {
		b.printf("Background removal complete.\n")
	}
	return nil
}

func (b *BackgroundRemover) segment(ctx context.Context, session *rembg.Session, input []byte) ([]byte, error) {
	defer util.Trace("segment " + session.Model())()
	return session.Remove(ctx, input)
}

func (b *BackgroundRemover) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(b.out, format, args...)
}
