package nwbio

import (
	"fmt"
	"path/filepath"
	"strings"

	trials "github.com/Taiyounomiya/nsds-lab-to-nwb/pkg"
)

const toneMatDataset = "stimVls"

// ReadToneMat reads the stimVls matrix of a MATLAB v7.3 file. Those files are
// HDF5 containers.
func ReadToneMat(path string, amplitudeOffset float64) ([]trials.ToneParameter, error) {
	h5Lock.Lock()
	defer h5Lock.Unlock()

	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dset, err := f.OpenDataset(toneMatDataset)
	if err != nil {
		return nil, &ErrReadDataset{Filename: path, Dataset: toneMatDataset, Err: err}
	}
	defer dset.Close()

	data, dims, err := readFloatDataset(dset)
	if err != nil {
		return nil, &ErrReadDataset{Filename: path, Dataset: toneMatDataset, Err: err}
	}
	if len(dims) != 2 {
		return nil, &ErrReadDataset{Filename: path, Dataset: toneMatDataset, Err: fmt.Errorf("expected a matrix, got %d dimensions", len(dims))}
	}
	return trials.ToneTableFromMatrix(data, int(dims[0]), int(dims[1]), amplitudeOffset)
}

// LoadStimulusValues loads the per-trial parameters of a protocol. Tone tables
// ending in .mat are read with ReadToneMat, everything else is handed to
// trials.LoadStimulusValues.
func LoadStimulusValues(protocol trials.StimulusProtocol, path string) (trials.StimulusValues, error) {
	if protocol.Kind == trials.KindTone && strings.EqualFold(filepath.Ext(path), ".mat") {
		tones, err := ReadToneMat(path, protocol.ToneAmplitudeOffset())
		if err != nil {
			return trials.StimulusValues{}, &trials.ErrMissingParameterData{Protocol: protocol.Name, Path: path, Err: err}
		}
		logger.Info(fmt.Sprintf("Loaded %d tone parameters from %s", len(tones), path), "params")
		return trials.StimulusValues{Tones: tones}, nil
	}
	return trials.LoadStimulusValues(protocol, path)
}
