package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	trials "github.com/Taiyounomiya/nsds-lab-to-nwb/pkg"
	"github.com/Taiyounomiya/nsds-lab-to-nwb/pkg/nwbio"
)

type app struct {
	configFilename string
	configuration  Configuration
	logger         Logger

	verbosity   int
	dataPath    string
	protocolDir string
	stimLibPath string
	markFormat  string
	outputDir   string
	stimulus    string
	catalogPath string
	numWorkers  int
	noWrite     bool
}

func main() {
	root := newRootCommand(NewLogger(os.Stdout, os.Stderr))
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(logger Logger) *cobra.Command {
	a := &app{logger: logger}

	root := &cobra.Command{
		Use:           "nwbconvert",
		Short:         "Tokenize stimulus blocks into labeled trial intervals",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadConfiguration(cmd); err != nil {
				a.logger.Error(err.Error())
				return err
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFilename, "config", "", "Configuration file path")
	flags.IntVarP(&a.verbosity, "verbosity", "v", 0, "Verbosity level")
	flags.StringVar(&a.dataPath, "data-path", "", "Directory holding one folder per block")
	flags.StringVar(&a.protocolDir, "protocol-dir", "", "Directory of stimulus protocol YAML files")
	flags.StringVar(&a.stimLibPath, "stim-lib-path", "", "Stimulus library root for parameter and audio files")
	flags.StringVar(&a.markFormat, "mark-format", "", "Mark track format (htk or hdf5)")
	flags.StringVar(&a.outputDir, "output-dir", "", "Directory for the output files")
	flags.StringVar(&a.stimulus, "stimulus", "", "Stimulus name, overrides the catalog")
	flags.StringVar(&a.catalogPath, "catalog", "", "SQLite block catalog, enables catalog lookups")
	flags.IntVar(&a.numWorkers, "workers", 0, "Number of parallel workers for batch conversion")
	flags.BoolVar(&a.noWrite, "no-write", false, "Tokenize without writing output files")

	root.AddCommand(
		a.tokenizeCommand(),
		a.batchCommand(),
		a.onsetsCommand(),
		a.catalogCommand(),
	)
	return root
}

// loadConfiguration reads the configuration file and applies the flags set
// on the command line on top of it.
func (a *app) loadConfiguration(cmd *cobra.Command) error {
	config, err := LoadConfiguration(a.configFilename)
	if err != nil {
		return fmt.Errorf("error reading configuration file: %w", err)
	}

	changed := cmd.Flags().Changed
	if changed("verbosity") {
		config.Verbosity = a.verbosity
	}
	if changed("data-path") {
		config.DataPath = a.dataPath
	}
	if changed("protocol-dir") {
		config.ProtocolDir = a.protocolDir
	}
	if changed("stim-lib-path") {
		config.StimLibPath = a.stimLibPath
	}
	if changed("mark-format") {
		config.MarkFormat = a.markFormat
	}
	if changed("output-dir") {
		config.OutputDir = a.outputDir
	}
	if changed("stimulus") {
		config.Stimulus = a.stimulus
	}
	if changed("catalog") {
		config.NoDB = false
		config.Driver = "sqlite"
		config.CatalogPath = a.catalogPath
	}
	if changed("workers") {
		config.NumWorkers = a.numWorkers
	}
	if a.noWrite {
		config.WriteData = false
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	a.configuration = config
	nwbio.SetLogger(a.logger)
	if config.Verbosity > 0 {
		if a.configFilename != "" {
			a.logger.Info(fmt.Sprintf("Reading configuration file: %s", a.configFilename), "main")
		}
		printConfiguration(config, a.logger)
	}
	return nil
}

func (a *app) tokenizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tokenize <block>",
		Short: "Tokenize a single block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conv, err := NewConverter(a.configuration, a.logger)
			if err != nil {
				a.logger.Error(err.Error())
				return err
			}
			defer conv.Close()

			result, err := conv.ConvertBlock(args[0])
			if err != nil {
				a.logger.Error(fmt.Sprintf("Error converting block %s: %v", args[0], err))
				return err
			}
			printSummary(cmd, result)
			return nil
		},
	}
}

func (a *app) batchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "batch [block...]",
		Short: "Tokenize several blocks in parallel",
		Long:  "Tokenize the given blocks, or every catalog block of the configured stimulus when none is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			conv, err := NewConverter(a.configuration, a.logger)
			if err != nil {
				a.logger.Error(err.Error())
				return err
			}
			defer conv.Close()

			blocks := args
			if len(blocks) == 0 {
				if conv.catalog == nil {
					return errors.New("no blocks given and no catalog configured")
				}
				records, err := conv.catalog.Blocks(a.configuration.Stimulus)
				if err != nil {
					return err
				}
				for _, record := range records {
					blocks = append(blocks, record.Block)
				}
			}

			outcomes, err := runBatch(context.Background(), conv, a.logger, blocks, a.configuration.NumWorkers)
			if err != nil {
				return err
			}
			failed := 0
			for _, outcome := range outcomes {
				if outcome.Err != nil {
					failed++
					a.logger.Error(fmt.Sprintf("Error converting block %s: %v", outcome.Block, outcome.Err))
					cmd.Printf("block %s: FAILED: %v\n", outcome.Block, outcome.Err)
					continue
				}
				printSummary(cmd, outcome.Result)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d blocks failed", failed, len(blocks))
			}
			return nil
		},
	}
}

func (a *app) onsetsCommand() *cobra.Command {
	var threshold float64
	cmd := &cobra.Command{
		Use:   "onsets <block>",
		Short: "Print the onsets detected on the mark track of a block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conv, err := NewConverter(a.configuration, a.logger)
			if err != nil {
				return err
			}
			defer conv.Close()

			block, err := conv.LoadBlock(args[0])
			if err != nil {
				return err
			}
			protocol := block.Protocol
			effective := protocol.EffectiveThreshold()
			if cmd.Flags().Changed("threshold") {
				effective = threshold
			}
			onsets := trials.Detect(block.Mark, effective, protocol.MinSeparation)
			if a.configuration.Verbosity > 0 {
				a.logger.Info(fmt.Sprintf("Block %s: %d onsets above %g", block.Name, len(onsets), effective), "onsets")
			}
			for _, onset := range onsets {
				cmd.Printf("%.6f\n", onset)
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Override the protocol mark threshold")
	return cmd
}

func (a *app) catalogCommand() *cobra.Command {
	catalog := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the block catalog",
	}

	var record nwbio.BlockRecord
	add := &cobra.Command{
		Use:   "add <block>",
		Short: "Register a block in the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.configuration.NoDB {
				return errors.New("no catalog configured")
			}
			if record.Stimulus == "" {
				record.Stimulus = a.configuration.Stimulus
			}
			if _, err := a.lookupProtocol(record.Stimulus); err != nil {
				return err
			}
			db, err := openCatalog(a.configuration)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.EnsureSchema(); err != nil {
				return err
			}
			record.Block = args[0]
			if err := db.AddBlock(record); err != nil {
				return err
			}
			cmd.Printf("block %s: registered with stimulus %s\n", record.Block, record.Stimulus)
			return nil
		},
	}
	add.Flags().StringVar(&record.StimValuesPath, "stim-values", "", "Per-block stimulus parameter file")
	add.Flags().StringVar(&record.AudioPath, "audio", "", "Per-block stimulus audio file")

	catalog.AddCommand(add)
	return catalog
}

func (a *app) lookupProtocol(name string) (trials.StimulusProtocol, error) {
	library, err := trials.LoadProtocolLibrary(a.configuration.ProtocolDir)
	if err != nil {
		return trials.StimulusProtocol{}, err
	}
	return library.Lookup(name)
}

func printSummary(cmd *cobra.Command, result *trials.TokenizationResult) {
	audioStart := "not measured"
	if result.AudioStartMeasured {
		audioStart = fmt.Sprintf("%.6f s", result.AudioStartTime)
	}
	cmd.Printf("block %s: stimulus %s (%v), %d onsets, %d trials, audio start %s\n",
		result.Block, result.Protocol, result.Kind, len(result.Onsets), len(result.Trials), audioStart)
	if warnings := result.Diagnostics.Warnings(); len(warnings) > 0 {
		cmd.Printf("block %s: %d warnings\n", result.Block, len(warnings))
	}
}
