package main

import (
	"errors"
	"flag"
	"io"

	"github.com/nguyentantai21042004/scribe-flow/internal/config"
)

type options struct {
	configPath    string
	models        []string
	playlistStart int
	noConsensus   bool
	watch         bool
	input         string
}

// parseArgs reads the command line (without the program name).
func parseArgs(args []string, output io.Writer) (options, error) {
	fs := flag.NewFlagSet("scribe", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		io.WriteString(output, "usage: scribe [-config config.yaml] [-models a,b] [-playlist-start N] [-no-consensus] [-watch] <input>\n")
		fs.PrintDefaults()
	}

	var opts options
	var models string
	fs.StringVar(&opts.configPath, "config", "config.yaml", "configuration file")
	fs.StringVar(&models, "models", "", "comma separated model ids (default: models from the configuration)")
	fs.IntVar(&opts.playlistStart, "playlist-start", 1, "1-based playlist entry to start from")
	fs.BoolVar(&opts.noConsensus, "no-consensus", false, "do not build a consensus transcript")
	fs.BoolVar(&opts.watch, "watch", false, "watch the input directory for new media files")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return options{}, errors.New("exactly one input is required")
	}

	opts.input = fs.Arg(0)
	opts.models = config.SplitList(models)
	return opts, nil
}

// apply folds the command line overrides into cfg.
func (o options) apply(cfg *config.Config) {
	if len(o.models) > 0 {
		cfg.Models = o.models
	}
	if o.noConsensus {
		cfg.Consensus.Enabled = false
	}
}
