package main

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func executeCommand(args ...string) (string, error) {
	root := newRootCommand(NewLogger(io.Discard, io.Discard))
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

const wnProtocolYAML = `name: wn2
type: discrete
mark_threshold: 0.5
duration: 0.1
baseline_start: 0.2
baseline_end: 0.5
`

type fixture struct {
	dataPath    string
	protocolDir string
	outputDir   string
}

// newFixture lays out a protocol library and one HTK block with mark pulses
// at the given times, sampled at 1 kHz for 3 s.
func newFixture(t *testing.T, block string, onsets ...float64) fixture {
	t.Helper()
	root := t.TempDir()
	f := fixture{
		dataPath:    filepath.Join(root, "data"),
		protocolDir: filepath.Join(root, "stimuli"),
		outputDir:   filepath.Join(root, "out"),
	}
	for _, dir := range []string{f.protocolDir, f.outputDir, filepath.Join(f.dataPath, block, "Analog")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(f.protocolDir, "wn2.yaml"), []byte(wnProtocolYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	samples := make([]float32, 3000)
	for _, onset := range onsets {
		start := int(onset * 1000)
		for i := start; i < start+10; i++ {
			samples[i] = 1
		}
	}
	var buf bytes.Buffer
	header := struct {
		NSamples     int32
		SamplePeriod int32
		SampleSize   int16
		ParmKind     int16
	}{int32(len(samples)), 10000, 4, 9}
	if err := binary.Write(&buf, binary.BigEndian, header); err != nil {
		t.Fatal(err)
	}
	if err := binary.Write(&buf, binary.BigEndian, samples); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(f.dataPath, block, "Analog", "mrk11.htk"), buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return f
}

func (f fixture) args(args ...string) []string {
	return append(args, "--data-path", f.dataPath, "--protocol-dir", f.protocolDir, "--output-dir", f.outputDir)
}

func TestTokenizeCommand(t *testing.T) {
	f := newFixture(t, "R1_B1", 1, 2)
	out, err := executeCommand(f.args("tokenize", "R1_B1", "--stimulus", "wn2", "--no-write")...)
	if err != nil {
		t.Fatalf("tokenize: %v\n%s", err, out)
	}
	want := "block R1_B1: stimulus wn2 (white-noise), 2 onsets, 6 trials, audio start 1.000000 s"
	if !strings.Contains(out, want) {
		t.Errorf("output %q does not contain %q", out, want)
	}
	if _, err := os.Stat(filepath.Join(f.outputDir, "R1_B1.h5")); !os.IsNotExist(err) {
		t.Errorf("--no-write must not create an output file")
	}
}

func TestTokenizeCommandUnknownStimulus(t *testing.T) {
	f := newFixture(t, "R1_B1", 1)
	if _, err := executeCommand(f.args("tokenize", "R1_B1", "--stimulus", "chirp", "--no-write")...); err == nil {
		t.Error("expected an error for an unknown stimulus")
	}
}

func TestOnsetsCommand(t *testing.T) {
	f := newFixture(t, "R1_B2", 0.5, 2.25)
	out, err := executeCommand(f.args("onsets", "R1_B2", "--stimulus", "wn2")...)
	if err != nil {
		t.Fatalf("onsets: %v\n%s", err, out)
	}
	if out != "0.500000\n2.250000\n" {
		t.Errorf("onsets output = %q", out)
	}

	out, err = executeCommand(f.args("onsets", "R1_B2", "--stimulus", "wn2", "--threshold", "2")...)
	if err != nil {
		t.Fatalf("onsets: %v", err)
	}
	if out != "" {
		t.Errorf("onsets above 2 = %q, want none", out)
	}
}

func TestBatchCommandReportsFailedBlocks(t *testing.T) {
	f := newFixture(t, "R1_B1", 1, 2)
	out, err := executeCommand(f.args("batch", "R1_B1", "R1_B9", "--stimulus", "wn2", "--no-write", "--workers", "2")...)
	if err == nil || !strings.Contains(err.Error(), "1 of 2 blocks failed") {
		t.Fatalf("expected one failed block, got %v", err)
	}
	if !strings.Contains(out, "block R1_B1: stimulus wn2") {
		t.Errorf("missing summary of R1_B1 in %q", out)
	}
	if !strings.Contains(out, "block R1_B9: FAILED") {
		t.Errorf("missing failure of R1_B9 in %q", out)
	}
}

func TestCatalogDrivesStimulus(t *testing.T) {
	f := newFixture(t, "R1_B1", 1, 2)
	catalog := filepath.Join(t.TempDir(), "catalog.db")

	out, err := executeCommand(f.args("catalog", "add", "R1_B1", "--stimulus", "wn2", "--catalog", catalog)...)
	if err != nil {
		t.Fatalf("catalog add: %v\n%s", err, out)
	}

	out, err = executeCommand(f.args("batch", "--catalog", catalog, "--no-write")...)
	if err != nil {
		t.Fatalf("batch: %v\n%s", err, out)
	}
	if !strings.Contains(out, "block R1_B1: stimulus wn2") {
		t.Errorf("output %q does not contain the catalog block", out)
	}
}

func TestInvalidMarkFormat(t *testing.T) {
	f := newFixture(t, "R1_B1", 1)
	_, err := executeCommand(f.args("tokenize", "R1_B1", "--stimulus", "wn2", "--mark-format", "wav")...)
	if err == nil || !strings.Contains(err.Error(), "mark_format") {
		t.Errorf("expected a mark_format error, got %v", err)
	}
}

func TestConverterListsProtocolsWhenVerbose(t *testing.T) {
	f := newFixture(t, "R1_B1", 1)
	var out bytes.Buffer
	config := Configuration{Verbosity: 3, ProtocolDir: f.protocolDir, NoDB: true}
	if _, err := NewConverter(config, NewLogger(&out, io.Discard)); err != nil {
		t.Fatalf("NewConverter: %v", err)
	}
	want := "Protocol wn2: white-noise, duration 0.1 s, play length 0 s"
	if !strings.Contains(out.String(), want) {
		t.Errorf("output %q does not contain %q", out.String(), want)
	}
}
