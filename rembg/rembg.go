package rembg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

const (
	// ModelISNetGeneral 通用前景/背景分割模型
	ModelISNetGeneral = "isnet-general-use"

	defaultForegroundThreshold = 240
	defaultBackgroundThreshold = 10
	defaultErodeSize           = 10
)

// Remover 去背景的后端，输入输出都是原始图片字节，本包不解析图片
type Remover interface {
	Remove(ctx context.Context, input []byte, opts Options) ([]byte, error)
}

// Options alpha matting 的阈值取值 0-255，ErodeSize 单位为像素
type Options struct {
	Model               string
	AlphaMatting        bool
	ForegroundThreshold int
	BackgroundThreshold int
	ErodeSize           int
}

func DefaultOptions() Options {
	return Options{
		Model:               ModelISNetGeneral,
		AlphaMatting:        true,
		ForegroundThreshold: defaultForegroundThreshold,
		BackgroundThreshold: defaultBackgroundThreshold,
		ErodeSize:           defaultErodeSize,
	}
}

// Session 绑定一个后端和一组参数，每次运行创建一次，用完即弃
type Session struct {
	remover Remover
	opts    Options
}

func NewSession(remover Remover, opts Options) *Session {
	if opts.Model == "" {
		opts.Model = ModelISNetGeneral
	}
	return &Session{
		remover: remover,
		opts:    opts,
	}
}

func (s *Session) Model() string {
	return s.opts.Model
}

func (s *Session) Options() Options {
	return s.opts
}

func (s *Session) Remove(ctx context.Context, input []byte) ([]byte, error) {
	if len(input) == 0 {
		return nil, errors.New("empty input")
	}

	slog.Debug("remove background", "model", s.opts.Model, "alphaMatting", s.opts.AlphaMatting, "size", len(input))
	output, err := s.remover.Remove(ctx, input, s.opts)
	if err != nil {
		return nil, fmt.Errorf("rembg %s: %w", s.opts.Model, err)
	}
	if len(output) == 0 {
		return nil, fmt.Errorf("rembg %s: empty output", s.opts.Model)
	}
	return output, nil
}
