package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

type Configuration struct {
	Verbosity        int    `json:"verbosity"`
	DataPath         string `json:"data_path"`
	ProtocolDir      string `json:"protocol_dir"`
	StimLibPath      string `json:"stim_lib_path"`
	MarkFormat       string `json:"mark_format"`
	MarkStream       string `json:"mark_stream"`
	OutputDir        string `json:"output_dir"`
	NoDB             bool   `json:"no_db"`
	Driver           string `json:"driver"`
	Host             string `json:"host"`
	User             string `json:"user"`
	Passwd           string `json:"pass"`
	DBName           string `json:"dbname"`
	CatalogPath      string `json:"catalog_path"`
	Stimulus         string `json:"stimulus"`
	NumWorkers       int    `json:"num_workers"`
	CompressionLevel int    `json:"compression_level"`
	WriteData        bool   `json:"write_data"`
	WriteMark        bool   `json:"write_mark"`
}

const (
	MarkFormatHTK  = "htk"
	MarkFormatHDF5 = "hdf5"
)

// LoadConfiguration returns the default configuration overridden by the
// values in filename. An empty filename returns the defaults.
func LoadConfiguration(filename string) (Configuration, error) {
	var config Configuration

	// Set default values
	config.Verbosity = 0
	config.DataPath = "."
	config.ProtocolDir = "stimuli"
	config.StimLibPath = "."
	config.MarkFormat = MarkFormatHTK
	config.MarkStream = "mrk1"
	config.OutputDir = "."
	config.NoDB = true
	config.Driver = "sqlite"
	config.Host = "localhost"
	config.User = "nsdsreader"
	config.DBName = "nsds"
	config.NumWorkers = 1
	config.CompressionLevel = 4
	config.WriteData = true
	config.WriteMark = true

	if filename == "" {
		return config, nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	err = json.Unmarshal(data, &config)
	if err != nil {
		return config, fmt.Errorf("parse %s: %w", filename, err)
	}
	return config, nil
}

func (c Configuration) Validate() error {
	var errs []error
	if c.MarkFormat != MarkFormatHTK && c.MarkFormat != MarkFormatHDF5 {
		errs = append(errs, fmt.Errorf("mark_format %q is invalid; valid values: %s, %s", c.MarkFormat, MarkFormatHTK, MarkFormatHDF5))
	}
	if c.NumWorkers < 1 {
		errs = append(errs, fmt.Errorf("num_workers must be at least 1, got %d", c.NumWorkers))
	}
	if c.CompressionLevel < 0 || c.CompressionLevel > 9 {
		errs = append(errs, fmt.Errorf("compression_level must be between 0 and 9, got %d", c.CompressionLevel))
	}
	if !c.NoDB && c.Driver != "mysql" && c.Driver != "sqlite" {
		errs = append(errs, fmt.Errorf("driver %q is invalid; valid values: mysql, sqlite", c.Driver))
	}
	if !c.NoDB && c.Driver == "sqlite" && c.CatalogPath == "" {
		errs = append(errs, errors.New("catalog_path is required for the sqlite catalog"))
	}
	return errors.Join(errs...)
}

func printConfiguration(config Configuration, logger Logger) {
	logger.Info(fmt.Sprintf("Data path: %s", config.DataPath), "config")
	logger.Info(fmt.Sprintf("Protocol dir: %s", config.ProtocolDir), "config")
	logger.Info(fmt.Sprintf("Stimulus library: %s", config.StimLibPath), "config")
	logger.Info(fmt.Sprintf("Mark format: %s", config.MarkFormat), "config")
	logger.Info(fmt.Sprintf("Mark stream: %s", config.MarkStream), "config")
	logger.Info(fmt.Sprintf("Output dir: %s", config.OutputDir), "config")
	logger.Info(fmt.Sprintf("No DB: %t", config.NoDB), "config")
	logger.Info(fmt.Sprintf("Driver: %s", config.Driver), "config")
	logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
	logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	logger.Info(fmt.Sprintf("Catalog path: %s", config.CatalogPath), "config")
	logger.Info(fmt.Sprintf("Stimulus: %s", config.Stimulus), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
	logger.Info(fmt.Sprintf("Number of workers: %d", config.NumWorkers), "config")
	logger.Info(fmt.Sprintf("Compression level: %d", config.CompressionLevel), "config")
	logger.Info(fmt.Sprintf("Write data: %t", config.WriteData), "config")
	logger.Info(fmt.Sprintf("Write mark: %t", config.WriteMark), "config")
}
