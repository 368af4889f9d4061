package trials

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// LoadSampleFilenames reads one sample filename per line. Blank lines are
// skipped.
func LoadSampleFilenames(r io.Reader) ([]string, error) {
	filenames := make([]string, 0)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		filenames = append(filenames, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read sample filenames: %w", err)
	}
	return filenames, nil
}

// LoadToneCSV reads a tone parameter table with amplitude and frequency
// columns. A first row without any number is taken as a header. Tables stored
// as two rows are transposed. amplitudeOffset is added to every amplitude.
func LoadToneCSV(r io.Reader, amplitudeOffset float64) ([]ToneParameter, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read tone table: %w", err)
	}

	rows := make([][]float64, 0, len(records))
	for i, record := range records {
		if i == 0 && isHeader(record) {
			continue
		}
		values, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		if len(values) == 0 {
			continue
		}
		if len(rows) > 0 && len(values) != len(rows[0]) {
			return nil, fmt.Errorf("line %d: expected %d values, got %d", i+1, len(rows[0]), len(values))
		}
		rows = append(rows, values)
	}
	if len(rows) == 0 {
		return []ToneParameter{}, nil
	}

	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for _, row := range rows {
		data = append(data, row...)
	}
	return ToneTableFromMatrix(data, len(rows), cols, amplitudeOffset)
}

// isHeader reports whether no field of record is a number.
func isHeader(record []string) bool {
	for _, field := range record {
		if _, err := strconv.ParseFloat(strings.TrimSpace(field), 64); err == nil {
			return false
		}
	}
	return true
}

func parseRow(record []string) ([]float64, error) {
	values := make([]float64, 0, len(record))
	for _, field := range record {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", field, err)
		}
		values = append(values, v)
	}
	return values, nil
}

var errToneTableShape = errors.New("tone table must have two columns (amplitude, frequency) or two rows")

// ToneTableFromMatrix converts a row-major rows x cols matrix into tone
// parameters. Either dimension may hold the (amplitude, frequency) pair; when
// both are 2 the pairs are read from the columns. Values are truncated to
// integers before the amplitude offset is applied.
func ToneTableFromMatrix(data []float64, rows, cols int, amplitudeOffset float64) ([]ToneParameter, error) {
	if len(data) != rows*cols {
		return nil, fmt.Errorf("tone table holds %d values, expected %dx%d", len(data), rows, cols)
	}

	var at func(trial, column int) float64
	var n int
	switch {
	case rows == 2:
		n = cols
		at = func(trial, column int) float64 { return data[column*cols+trial] }
	case cols == 2:
		n = rows
		at = func(trial, column int) float64 { return data[trial*cols+column] }
	default:
		return nil, errToneTableShape
	}

	params := make([]ToneParameter, n)
	for i := range params {
		params[i] = ToneParameter{
			Amplitude: float64(int64(at(i, 0))) + amplitudeOffset,
			Frequency: float64(int64(at(i, 1))),
		}
	}
	return params, nil
}

// LoadStimulusValues reads the parameter file of text based protocols. Tone
// tables stored as .mat files are read by the nwbio package instead.
func LoadStimulusValues(protocol StimulusProtocol, path string) (StimulusValues, error) {
	if protocol.Kind != KindTone && protocol.Kind != KindTimit {
		return StimulusValues{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return StimulusValues{}, &ErrMissingParameterData{Protocol: protocol.Name, Path: path, Err: err}
	}
	defer f.Close()

	switch protocol.Kind {
	case KindTone:
		tones, err := LoadToneCSV(f, protocol.ToneAmplitudeOffset())
		if err != nil {
			return StimulusValues{}, &ErrMissingParameterData{Protocol: protocol.Name, Path: path, Err: err}
		}
		return StimulusValues{Tones: tones}, nil
	default:
		filenames, err := LoadSampleFilenames(f)
		if err != nil {
			return StimulusValues{}, &ErrMissingParameterData{Protocol: protocol.Name, Path: path, Err: err}
		}
		return StimulusValues{SampleFilenames: filenames}, nil
	}
}
