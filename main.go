package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chaos-io/cutout/config"
	"github.com/chaos-io/cutout/consent"
	"github.com/chaos-io/cutout/rembg"
	"github.com/chaos-io/cutout/remover"
	"github.com/chaos-io/cutout/util"
)

const usage = "Usage: cutout <input_path> <output_path>"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run 唯一的错误出口：打印信息并换算退出码
func run(args []string, stdin *os.File, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdin, stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	switch {
	case err == nil:
	case errors.Is(err, remover.ErrUsage):
		_, _ = fmt.Fprintln(stdout, usage)
	case errors.Is(err, remover.ErrMissingInput),
		errors.Is(err, remover.ErrConsentRefused),
		errors.Is(err, remover.ErrInstallFailure):
		// 已经在控制台提示过
		slog.Debug("aborted", "error", err)
	default:
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return remover.ExitCode(err)
}

func newRootCmd(stdin *os.File, stdout, stderr io.Writer) *cobra.Command {
	v := viper.New()
	var configFile string

	cmd := &cobra.Command{
		Use:           "cutout <input_path> <output_path>",
		Short:         "Remove the background from an image with rembg",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("%w: got %d", remover.ErrUsage, len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, configFile)
			if err != nil {
				return err
			}
			util.SetupLogger(stderr, cfg.Verbose)
			return removeBackground(cmd, cfg, stdin, stdout, args[0], args[1])
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", remover.ErrUsage, err)
	})

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "YAML config file")
	flags.String(config.KeyModel, "", "rembg model name (default isnet-general-use)")
	flags.String(config.KeyServer, "", "base URL of a running `rembg s` server")
	flags.Bool(config.KeyYes, false, "answer yes to every confirmation")
	flags.Bool(config.KeyVerbose, false, "debug logging")
	for _, key := range []string{config.KeyModel, config.KeyServer, config.KeyYes, config.KeyVerbose} {
		_ = v.BindPFlag(key, flags.Lookup(key))
	}

	return cmd
}

func removeBackground(cmd *cobra.Command, cfg *config.Config, stdin *os.File, stdout io.Writer, inputPath, outputPath string) error {
	ctx := cmd.Context()

	var provider consent.Provider
	if cfg.Yes {
		provider = consent.NewAssumeYes(stdout)
	} else {
		provider = consent.New(stdin, stdout)
	}
	if closer, ok := provider.(io.Closer); ok {
		defer func() {
			_ = closer.Close()
		}()
	}

	opts := rembg.DefaultOptions()
	opts.Model = cfg.Model

	if cfg.Server != "" {
		slog.Debug("using rembg server", "url", cfg.Server)
		return remover.New(rembg.NewServerRemover(cfg.Server), opts, provider, stdout).
			Remove(ctx, inputPath, outputPath)
	}

	bin, err := remover.NewProvisioner(cfg.RembgBin, cfg.Python, cfg.Packages, provider, stdout).EnsureAvailable(ctx)
	if err != nil {
		return err
	}

	home, err := rembg.ModelHome(cfg.ModelHome)
	if err != nil {
		slog.Debug("model home unresolved", "error", err)
		home = ".u2net"
	}

	return remover.New(rembg.NewCLIRemover(bin), opts, provider, stdout).
		WithModelCache(rembg.ModelPath(home, opts.Model)).
		Remove(ctx, inputPath, outputPath)
}
