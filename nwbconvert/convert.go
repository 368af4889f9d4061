package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	trials "github.com/Taiyounomiya/nsds-lab-to-nwb/pkg"
	"github.com/Taiyounomiya/nsds-lab-to-nwb/pkg/nwbio"
)

// Converter turns recording blocks into trial tables. It is safe for
// concurrent use once built.
type Converter struct {
	config  Configuration
	library *trials.ProtocolLibrary
	catalog *nwbio.Catalog
	logger  Logger
	runID   uuid.UUID
}

func NewConverter(config Configuration, logger Logger) (*Converter, error) {
	library, err := trials.LoadProtocolLibrary(config.ProtocolDir)
	if err != nil {
		return nil, err
	}
	if config.Verbosity > 0 {
		logger.Info(fmt.Sprintf("Loaded stimulus protocols: %v", library.Names()), "main")
	}
	if config.Verbosity > 2 {
		protocols := library.Protocols()
		for _, name := range library.Names() {
			p := protocols[name]
			logger.Debug(fmt.Sprintf("Protocol %s: %v, duration %g s, play length %g s",
				name, p.Kind, p.StimulusDuration(), p.PlayLength), "main")
		}
	}

	conv := &Converter{
		config:  config,
		library: library,
		logger:  logger,
		runID:   uuid.New(),
	}
	if !config.NoDB {
		if conv.catalog, err = openCatalog(config); err != nil {
			return nil, err
		}
	}
	return conv, nil
}

func openCatalog(config Configuration) (*nwbio.Catalog, error) {
	if config.Driver == "mysql" {
		return nwbio.ConnectToDatabase(config.User, config.Passwd, config.Host, config.DBName)
	}
	return nwbio.OpenCatalog(config.Driver, config.CatalogPath)
}

func (c *Converter) Close() error {
	if c.catalog == nil {
		return nil
	}
	return c.catalog.Close()
}

func (c *Converter) resolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.config.StimLibPath, path)
}

// LoadBlock gathers the mark track, protocol and stimulus values of a block.
func (c *Converter) LoadBlock(name string) (trials.Block, error) {
	record := nwbio.BlockRecord{Block: name, Stimulus: c.config.Stimulus}
	if c.catalog != nil {
		found, err := c.catalog.LookupBlock(name)
		if err != nil {
			return trials.Block{}, err
		}
		record = found
		if c.config.Stimulus != "" {
			record.Stimulus = c.config.Stimulus
		}
	}
	if record.Stimulus == "" {
		return trials.Block{}, fmt.Errorf("block %s: no stimulus given and no catalog configured", name)
	}

	protocol, err := c.library.Lookup(record.Stimulus)
	if err != nil {
		return trials.Block{}, err
	}

	valuesPath := record.StimValuesPath
	if valuesPath == "" {
		valuesPath = protocol.StimValuesPath
	}
	values, err := nwbio.LoadStimulusValues(protocol, c.resolvePath(valuesPath))
	if err != nil {
		return trials.Block{}, err
	}

	audioPath := record.AudioPath
	if audioPath == "" {
		audioPath = protocol.AudioPath
	}
	if protocol.PlayLength == 0 && audioPath != "" {
		playLength, err := nwbio.WavPlayLength(c.resolvePath(audioPath))
		if err != nil {
			return trials.Block{}, fmt.Errorf("block %s: %w", name, err)
		}
		protocol.PlayLength = playLength
		if c.config.Verbosity > 1 {
			c.logger.Info(fmt.Sprintf("Block %s: play length %.3f s from %s", name, playLength, audioPath), "convert")
		}
	}

	mark, events, err := c.readMark(name, protocol.UseLoggedEvents)
	if err != nil {
		return trials.Block{}, err
	}

	return trials.Block{
		Name:         name,
		Mark:         mark,
		Protocol:     protocol,
		Values:       values,
		LoggedEvents: events,
	}, nil
}

func (c *Converter) readMark(name string, withEvents bool) (trials.MarkTrack, []float64, error) {
	blockDir := filepath.Join(c.config.DataPath, name)
	switch c.config.MarkFormat {
	case MarkFormatHDF5:
		source := nwbio.HDF5MarkSource{Path: filepath.Join(blockDir, name+".h5")}
		mark, err := source.ReadMark(c.config.MarkStream)
		if err != nil {
			return trials.MarkTrack{}, nil, err
		}
		if !withEvents {
			return mark, nil, nil
		}
		events, err := source.ReadEvents(c.config.MarkStream)
		return mark, events, err
	default:
		mark, err := nwbio.ReadHTKFile(filepath.Join(blockDir, "Analog", "mrk11.htk"))
		return mark, nil, err
	}
}

// ConvertBlock tokenizes a block and, when WriteData is set, writes the
// result to <output_dir>/<block>.h5.
func (c *Converter) ConvertBlock(name string) (*trials.TokenizationResult, error) {
	block, err := c.LoadBlock(name)
	if err != nil {
		return nil, err
	}

	result, err := trials.AssembleTrials(block)
	if err != nil {
		return nil, err
	}
	replayDiagnostics(c.logger, result.Diagnostics, c.config.Verbosity)

	if c.config.WriteData {
		if err := c.write(block, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (c *Converter) write(block trials.Block, result *trials.TokenizationResult) (err error) {
	filename := filepath.Join(c.config.OutputDir, block.Name+".h5")
	writer, err := nwbio.NewWriter(filename, c.runID, c.config.CompressionLevel)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, writer.Close())
	}()

	if err := writer.WriteBlock(result, block.Mark.StartTime); err != nil {
		return err
	}
	if c.config.WriteMark {
		return writer.WriteMark(block.Mark)
	}
	return nil
}

// replayDiagnostics forwards the diagnostics collected while tokenizing to the
// logger. Debug messages need verbosity above 2, info above 0.
func replayDiagnostics(logger Logger, diags trials.Diagnostics, verbosity int) {
	for _, diag := range diags {
		switch diag.Severity {
		case trials.SeverityWarning:
			logger.Warn(diag.Message, diag.Component)
		case trials.SeverityInfo:
			if verbosity > 0 {
				logger.Info(diag.Message, diag.Component)
			}
		default:
			if verbosity > 2 {
				logger.Debug(diag.Message, diag.Component)
			}
		}
	}
}
