package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ieee0824/htspack"
	"github.com/ieee0824/htspack/config"
	"github.com/ieee0824/htspack/feature"
	"github.com/ieee0824/htspack/htk"
)

const (
	formatCMP = "cmp"
	formatFFO = "ffo"
)

func (a *app) newPacker(cfg *config.Root, format string) (*htspack.Packer, error) {
	streams, err := cfg.Resolve()
	if err != nil {
		return nil, err
	}
	opts := []htspack.Option{
		htspack.WithLogger(a.logger),
		htspack.WithWorkers(a.v.GetInt("workers")),
	}
	switch format {
	case formatCMP:
		period := cfg.FramePeriod
		if a.v.IsSet("frame-period") {
			period = a.v.GetInt32("frame-period")
		}
		return htspack.NewCMP(streams, period, opts...)
	case formatFFO:
		return htspack.NewFFO(streams, opts...)
	}
	return nil, errors.Errorf("unknown format %q (want cmp or ffo)", format)
}

func (a *app) packCmd(format string) *cobra.Command {
	var cfgPath, output string
	short := "Write a headered observation file"
	if format == formatFFO {
		short = "Write a headerless observation file with MSD off"
	}

	cmd := &cobra.Command{
		Use:   format + " --config FILE --output FILE INPUT...",
		Short: short,
		Long: short + ".\n\nOne input file per configured stream, in config order. " +
			"Streams of different lengths are truncated to the shortest.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFile(cfgPath)
			if err != nil {
				return err
			}
			p, err := a.newPacker(cfg, format)
			if err != nil {
				return err
			}
			if err := p.Generate(args, output); err != nil {
				return err
			}
			a.logger.WithFields(logrus.Fields{
				"output":  output,
				"streams": len(args),
			}).Info("observation file written")
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "stream config file (YAML)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")
	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func (a *app) batchCmd() *cobra.Command {
	var cfgPath, listPath, outDir, format string

	cmd := &cobra.Command{
		Use:   "batch --config FILE --list FILE --out-dir DIR",
		Short: "Pack every utterance of a basename list",
		Long: "Pack every utterance of a basename list.\n\n" +
			"Stream inputs are <dir>/<basename>.<ext> using each stream's dir and ext " +
			"from the config. Outputs are <out-dir>/<basename>.<format>. " +
			"Use --list - to read basenames from stdin.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFile(cfgPath)
			if err != nil {
				return err
			}
			names, err := readList(cmd.InOrStdin(), listPath)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				return errors.Errorf("%s: no basenames", listPath)
			}
			p, err := a.newPacker(cfg, format)
			if err != nil {
				return err
			}
			jobs, err := cfg.Jobs(names, outDir, format)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return &feature.IOError{Op: "mkdir", Path: outDir, Err: err}
			}

			a.logger.WithFields(logrus.Fields{
				"utterances": len(jobs),
				"format":     format,
				"workers":    p.Options().Workers,
			}).Info("batch started")
			if err := p.Batch(jobs); err != nil {
				return err
			}
			a.logger.WithField("utterances", len(jobs)).Info("batch finished")
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "stream config file (YAML)")
	cmd.Flags().StringVarP(&listPath, "list", "l", "", "basename list, one per line")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "output directory")
	cmd.Flags().StringVar(&format, "format", formatCMP, "output format (cmp, ffo)")
	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("list")
	_ = cmd.MarkFlagRequired("out-dir")
	return cmd
}

func readList(stdin io.Reader, path string) ([]string, error) {
	if path == "-" {
		return config.ReadList(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &feature.IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()
	names, err := config.ReadList(f)
	if err != nil {
		return nil, &feature.IOError{Op: "read", Path: path, Err: err}
	}
	return names, nil
}

func (a *app) inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE...",
		Short: "Print the header and a payload summary of headered observation files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, path := range args {
				info, err := htk.Inspect(path)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\tframes=%d\tdim=%d\tperiod=%d\tkind=%d\tmissing=%d\tpeak=%g\n",
					path, info.Frames, info.Dim, info.Header.SampPeriod, info.Header.ParamKind,
					info.Missing, info.Peak)
			}
			return nil
		},
	}
}

func (a *app) windowCmd() *cobra.Command {
	var kind, output string
	var width int

	cmd := &cobra.Command{
		Use:   "window --kind static|delta|accel",
		Short: "Write a standard window file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			var w feature.Window
			switch kind {
			case "static":
				w = feature.StaticWindow()
			case "delta":
				if w, err = feature.RegressionWindow(width); err != nil {
					return err
				}
			case "accel":
				w = feature.AccelerationWindow()
			default:
				return errors.Errorf("unknown window kind %q (want static, delta or accel)", kind)
			}

			if output == "" {
				return feature.WriteWindow(cmd.OutOrStdout(), w)
			}
			f, err := os.Create(output)
			if err != nil {
				return &feature.IOError{Op: "create", Path: output, Err: err}
			}
			defer func() {
				if cerr := f.Close(); cerr != nil && err == nil {
					err = &feature.IOError{Op: "close", Path: output, Err: cerr}
				}
			}()
			return feature.WriteWindow(f, w)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "delta", "window kind (static, delta, accel)")
	cmd.Flags().IntVar(&width, "width", 1, "half-width of the delta regression window")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}
