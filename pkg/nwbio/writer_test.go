package nwbio

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	trials "github.com/Taiyounomiya/nsds-lab-to-nwb/pkg"
)

func TestWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "R32_B7.h5")
	writer, err := NewWriter(path, uuid.New(), 4)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	track := trials.MarkTrack{Samples: []float64{0, 1, 1, 0, 0, 1, 0}, SampleRate: 2, StartTime: 0.5}
	result := &trials.TokenizationResult{
		Block:    "R32_B7",
		Protocol: "wn2",
		Kind:     trials.KindWhiteNoise,
		Onsets:   []float64{0.5, 2.5},
		Trials: []trials.TrialInterval{
			{StartTime: 0, StopTime: 0.5, Label: trials.LabelBaseline},
			{StartTime: 0.5, StopTime: 1, Label: trials.LabelStimulus},
			{StartTime: 1, StopTime: 3.5, Label: trials.LabelBaseline},
		},
		Columns:            trials.WhiteNoiseTokenizer{}.Columns(),
		RecordingEndTime:   3.5,
		AudioStartTime:     0.2,
		AudioStartMeasured: true,
	}
	if err := writer.WriteBlock(result, track.StartTime); err != nil {
		t.Fatalf("WriteBlock: %v", err)
	}
	var already *ErrAlreadyTokenized
	if err := writer.WriteBlock(result, track.StartTime); !errors.As(err, &already) {
		t.Errorf("expected ErrAlreadyTokenized, got %v", err)
	}
	if err := writer.WriteMark(track); err != nil {
		t.Fatalf("WriteMark: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	source := HDF5MarkSource{Path: path}
	got, err := source.ReadMark("/stimulus/recorded_mark")
	if err != nil {
		t.Fatalf("ReadMark: %v", err)
	}
	if got.SampleRate != track.SampleRate || got.StartTime != track.StartTime || len(got.Samples) != len(track.Samples) {
		t.Fatalf("ReadMark = %+v, want %+v", got, track)
	}
	for i := range track.Samples {
		if got.Samples[i] != track.Samples[i] {
			t.Errorf("sample %d = %g, want %g", i, got.Samples[i], track.Samples[i])
		}
	}

	events, err := source.ReadEvents("mrk1")
	if err != nil || events != nil {
		t.Errorf("ReadEvents = %v, %v; want nil, nil", events, err)
	}
}

func TestHDF5MarkSourceMissingFile(t *testing.T) {
	source := HDF5MarkSource{Path: filepath.Join(t.TempDir(), "missing.h5")}
	_, err := source.ReadMark("mrk1")
	var openErr *ErrOpenFile
	if !errors.As(err, &openErr) {
		t.Errorf("expected ErrOpenFile, got %v", err)
	}
}

func TestWriteBlockRejectsOversizedValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "R32_B20.h5")
	writer, err := NewWriter(path, uuid.New(), 0)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	defer writer.Close()

	longName := strings.Repeat("s", VALUELEN) + ".wav"
	result := &trials.TokenizationResult{
		Block:    "R32_B20",
		Protocol: "timit",
		Kind:     trials.KindTimit,
		Onsets:   []float64{1},
		Trials: []trials.TrialInterval{
			{StartTime: 0, StopTime: 1, Label: trials.LabelBaseline, Attributes: map[string]string{trials.ColumnSampleFilename: "none"}},
			{StartTime: 1, StopTime: 4, Label: trials.LabelStimulus, Attributes: map[string]string{trials.ColumnSampleFilename: longName}},
		},
		Columns:          (&trials.TimitTokenizer{}).Columns(),
		RecordingEndTime: 4,
	}
	var tooLong *ErrValueTooLong
	if err := writer.WriteBlock(result, 0); !errors.As(err, &tooLong) {
		t.Fatalf("expected ErrValueTooLong, got %v", err)
	}
	if tooLong.Value != longName || tooLong.Max != VALUELEN {
		t.Errorf("unexpected error %+v", tooLong)
	}

	result.Trials[1].Attributes[trials.ColumnSampleFilename] = "fcjf0_si1027.wav"
	if err := writer.WriteBlock(result, 0); err != nil {
		t.Errorf("WriteBlock after a rejected block: %v", err)
	}
}

func TestConvertToHdf5String(t *testing.T) {
	got, err := convertToHdf5String("block", "R32_B7")
	if err != nil || string(got[:6]) != "R32_B7" || got[6] != 0 {
		t.Errorf("convertToHdf5String = %q, %v", got, err)
	}
	if _, err := convertToHdf5String("block", strings.Repeat("b", STRLEN)); err != nil {
		t.Errorf("a value of exactly %d bytes must fit: %v", STRLEN, err)
	}
	var tooLong *ErrValueTooLong
	if _, err := convertToHdf5String("block", strings.Repeat("b", STRLEN+1)); !errors.As(err, &tooLong) {
		t.Errorf("expected ErrValueTooLong, got %v", err)
	}
}
