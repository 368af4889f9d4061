package nwbio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	trials "github.com/Taiyounomiya/nsds-lab-to-nwb/pkg"
)

const (
	rateAttribute         = "rate"
	startingTimeAttribute = "starting_time"

	// HTK sample periods are stored in units of 100 ns.
	htkPeriodsPerSecond = 1e7

	htkPreallocatedSamples = 1 << 20
)

type htkHeader struct {
	NSamples     int32
	SamplePeriod int32
	SampleSize   int16
	ParmKind     int16
}

// ReadHTK reads a single channel HTK file. Multi channel frames keep their
// first channel only.
func ReadHTK(r io.Reader) (trials.MarkTrack, error) {
	br := bufio.NewReader(r)
	var header htkHeader
	if err := binary.Read(br, binary.BigEndian, &header); err != nil {
		return trials.MarkTrack{}, &ErrInvalidHTK{Reason: fmt.Sprintf("header: %v", err)}
	}
	if header.NSamples < 0 {
		return trials.MarkTrack{}, &ErrInvalidHTK{Reason: fmt.Sprintf("negative sample count %d", header.NSamples)}
	}
	if header.SamplePeriod <= 0 {
		return trials.MarkTrack{}, &ErrInvalidHTK{Reason: fmt.Sprintf("sample period %d", header.SamplePeriod)}
	}
	if header.SampleSize < 4 || header.SampleSize%4 != 0 {
		return trials.MarkTrack{}, &ErrInvalidHTK{Reason: fmt.Sprintf("sample size %d is not a multiple of 4 bytes", header.SampleSize)}
	}

	channels := int(header.SampleSize) / 4
	frame := make([]byte, header.SampleSize)
	// The header count is not trusted for the allocation; a corrupted file
	// runs out of frames long before the slice grows that far.
	samples := make([]float64, 0, min(int(header.NSamples), htkPreallocatedSamples))
	for i := 0; i < int(header.NSamples); i++ {
		if _, err := io.ReadFull(br, frame); err != nil {
			return trials.MarkTrack{}, &ErrInvalidHTK{Reason: fmt.Sprintf("sample %d of %d: %v", i, header.NSamples, err)}
		}
		samples = append(samples, float64(math.Float32frombits(binary.BigEndian.Uint32(frame[:4]))))
	}
	if channels > 1 {
		logger.Warn(fmt.Sprintf("HTK file holds %d channels, keeping the first", channels), "marks")
	}

	return trials.NewMarkTrack(samples, htkPeriodsPerSecond/float64(header.SamplePeriod))
}

func ReadHTKFile(path string) (trials.MarkTrack, error) {
	f, err := os.Open(path)
	if err != nil {
		return trials.MarkTrack{}, &ErrOpenFile{Filename: path, Err: err}
	}
	defer f.Close()

	track, err := ReadHTK(f)
	if err != nil {
		return trials.MarkTrack{}, fmt.Errorf("%s: %w", path, err)
	}
	logger.Info(fmt.Sprintf("Read %d mark samples at %g Hz from %s", track.NumSamples(), track.SampleRate, path), "marks")
	return track, nil
}

// HDF5MarkSource reads mark streams exported from the recording system.
// Streams live in /streams/<name> with a rate attribute; event times logged by
// the recording system, if any, in /events/<name>. Names starting with a slash
// are used as dataset paths directly.
type HDF5MarkSource struct {
	Path string
}

func datasetPath(group, name string) string {
	if strings.HasPrefix(name, "/") {
		return name
	}
	return "/" + group + "/" + name
}

// ReadMark reads the stream called name. The starting_time attribute is
// optional.
func (s HDF5MarkSource) ReadMark(name string) (trials.MarkTrack, error) {
	h5Lock.Lock()
	defer h5Lock.Unlock()

	f, err := openFile(s.Path)
	if err != nil {
		return trials.MarkTrack{}, err
	}
	defer f.Close()

	path := datasetPath("streams", name)
	dset, err := f.OpenDataset(path)
	if err != nil {
		return trials.MarkTrack{}, &ErrReadDataset{Filename: s.Path, Dataset: path, Err: err}
	}
	defer dset.Close()

	samples, _, err := readFloatDataset(dset)
	if err != nil {
		return trials.MarkTrack{}, &ErrReadDataset{Filename: s.Path, Dataset: path, Err: err}
	}
	rate, err := readScalarAttribute(dset, rateAttribute)
	if err != nil {
		return trials.MarkTrack{}, &ErrReadDataset{Filename: s.Path, Dataset: path + "@" + rateAttribute, Err: err}
	}

	track, err := trials.NewMarkTrack(samples, rate)
	if err != nil {
		return trials.MarkTrack{}, fmt.Errorf("%s: %w", s.Path, err)
	}
	if start, err := readScalarAttribute(dset, startingTimeAttribute); err == nil {
		track.StartTime = start
	}
	return track, nil
}

// ReadEvents returns the logged event times of stream name, or nil when the
// file has none.
func (s HDF5MarkSource) ReadEvents(name string) ([]float64, error) {
	h5Lock.Lock()
	defer h5Lock.Unlock()

	f, err := openFile(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	path := datasetPath("events", name)
	dset, err := f.OpenDataset(path)
	if err != nil {
		logger.Info(fmt.Sprintf("No logged events at %s in %s", path, s.Path), "marks")
		return nil, nil
	}
	defer dset.Close()

	events, _, err := readFloatDataset(dset)
	if err != nil {
		return nil, &ErrReadDataset{Filename: s.Path, Dataset: path, Err: err}
	}
	return events, nil
}
