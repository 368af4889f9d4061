package trials

import (
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestLoadToneCSV(t *testing.T) {
	input := "amplitude,frequency\n60,500\n70.9,1000\n\n50,2000\n"
	params, err := LoadToneCSV(strings.NewReader(input), DefaultToneAmplitudeOffset)
	if err != nil {
		t.Fatalf("LoadToneCSV: %v", err)
	}
	want := []ToneParameter{
		{Amplitude: 68, Frequency: 500},
		{Amplitude: 78, Frequency: 1000},
		{Amplitude: 58, Frequency: 2000},
	}
	if !reflect.DeepEqual(params, want) {
		t.Errorf("LoadToneCSV = %v, want %v", params, want)
	}
}

func TestLoadToneCSVTransposed(t *testing.T) {
	input := "60,70,50\n500,1000,2000\n"
	params, err := LoadToneCSV(strings.NewReader(input), 0)
	if err != nil {
		t.Fatalf("LoadToneCSV: %v", err)
	}
	want := []ToneParameter{
		{Amplitude: 60, Frequency: 500},
		{Amplitude: 70, Frequency: 1000},
		{Amplitude: 50, Frequency: 2000},
	}
	if !reflect.DeepEqual(params, want) {
		t.Errorf("LoadToneCSV = %v, want %v", params, want)
	}
}

func TestLoadToneCSVErrors(t *testing.T) {
	if _, err := LoadToneCSV(strings.NewReader("60,500\nabc,1000\n"), 0); err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("expected a line 2 error, got %v", err)
	}
	if _, err := LoadToneCSV(strings.NewReader("68,5OO\n78,1000\n"), 0); err == nil || !strings.Contains(err.Error(), "line 1") {
		t.Errorf("a malformed first data row must be reported, got %v", err)
	}
	if _, err := LoadToneCSV(strings.NewReader("1,2,3\n4,5,6\n7,8,9\n"), 0); !errors.Is(err, errToneTableShape) {
		t.Errorf("expected errToneTableShape, got %v", err)
	}
}

func TestLoadSampleFilenames(t *testing.T) {
	names, err := LoadSampleFilenames(strings.NewReader("fadg0_si1279.wav\n\n  mrjo0_sx54.wav \n"))
	if err != nil {
		t.Fatalf("LoadSampleFilenames: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"fadg0_si1279.wav", "mrjo0_sx54.wav"}) {
		t.Errorf("LoadSampleFilenames = %v", names)
	}
}

func TestLoadStimulusValues(t *testing.T) {
	dir := t.TempDir()
	timitPath := writeFile(t, dir, "timit.txt", "a.wav\nb.wav\n")

	protocol := StimulusProtocol{Name: "timit", Kind: KindTimit}
	values, err := LoadStimulusValues(protocol, timitPath)
	if err != nil {
		t.Fatalf("LoadStimulusValues: %v", err)
	}
	if len(values.SampleFilenames) != 2 {
		t.Errorf("got %v", values.SampleFilenames)
	}

	_, err = LoadStimulusValues(protocol, filepath.Join(dir, "missing.txt"))
	var missing *ErrMissingParameterData
	if !errors.As(err, &missing) {
		t.Errorf("expected ErrMissingParameterData, got %v", err)
	}

	values, err = LoadStimulusValues(StimulusProtocol{Name: "wn2", Kind: KindWhiteNoise}, "")
	if err != nil || values.Tones != nil || values.SampleFilenames != nil {
		t.Errorf("white noise needs no values: %+v, %v", values, err)
	}
}
