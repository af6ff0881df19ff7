// Command htspack builds HTS observation files (.cmp with an HTK header,
// .ffo without) from per-stream feature files.
//
// Usage:
//
//	htspack cmp --config streams.yaml --output utt.cmp utt.mgc utt.lf0 utt.bap
//	htspack ffo --config streams.yaml --output utt.ffo utt.dur
//	htspack batch --config streams.yaml --list train.scp --out-dir cmp
//	htspack inspect utt.cmp
//	htspack window --kind delta --width 1 --output mgc.win2
//
// Global settings come from flags or HTSPACK_* environment variables
// (HTSPACK_LOG_LEVEL, HTSPACK_LOG_FORMAT, HTSPACK_WORKERS, HTSPACK_FRAME_PERIOD).
package main

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type app struct {
	v      *viper.Viper
	logger *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), logger: logrus.New()}

	root := &cobra.Command{
		Use:           "htspack",
		Short:         "Pack acoustic feature streams into HTS observation files",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setupLogging(cmd.ErrOrStderr())
		},
	}

	pf := root.PersistentFlags()
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "text", "log format (text, json)")
	pf.Int("workers", 0, "concurrent streams or utterances (0 = NumCPU)")
	pf.Int32("frame-period", 0, "header frame period, overrides frame_period from the config")
	for _, name := range []string{"log-level", "log-format", "workers", "frame-period"} {
		if err := a.v.BindPFlag(name, pf.Lookup(name)); err != nil {
			panic(err)
		}
	}
	a.v.SetEnvPrefix("HTSPACK")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(
		a.packCmd(formatCMP),
		a.packCmd(formatFFO),
		a.batchCmd(),
		a.inspectCmd(),
		a.windowCmd(),
	)
	return root
}

func (a *app) setupLogging(w io.Writer) error {
	level, err := logrus.ParseLevel(a.v.GetString("log-level"))
	if err != nil {
		return err
	}
	a.logger.SetLevel(level)
	a.logger.SetOutput(w)

	switch format := a.v.GetString("log-format"); format {
	case "text":
		a.logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		a.logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return errors.Errorf("unknown log format %q", format)
	}
	return nil
}
