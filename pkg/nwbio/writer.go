package nwbio

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmbenlloch/go-hdf5"

	trials "github.com/Taiyounomiya/nsds-lab-to-nwb/pkg"
)

type TrialHDF5 struct {
	start float64
	stop  float64
	sb    [STRLEN]byte
}

type TrialColumnHDF5 struct {
	name        [STRLEN]byte
	description [VALUELEN]byte
}

type TrialAttributeHDF5 struct {
	trial  int32
	column [STRLEN]byte
	value  [VALUELEN]byte
}

type StimulusTimingHDF5 struct {
	audioStart    float64
	measured      int32
	recordingEnd  float64
	markStartTime float64
}

type RunHDF5 struct {
	runID    [UUIDLEN]byte
	block    [STRLEN]byte
	protocol [STRLEN]byte
	kind     [STRLEN]byte
}

// Writer stores the tokenization result of one block in a fresh HDF5 file.
type Writer struct {
	File            *hdf5.File
	Filename        string
	RunID           uuid.UUID
	IntervalsGroup  *hdf5.Group
	StimulusGroup   *hdf5.Group
	GeneralGroup    *hdf5.Group
	TrialsTable     *hdf5.Dataset
	ColumnsTable    *hdf5.Dataset
	AttributesTable *hdf5.Dataset
	OnsetsTable     *hdf5.Dataset
	TimingTable     *hdf5.Dataset
	RunTable        *hdf5.Dataset
	MarkData        *hdf5.Dataset

	compressionLevel int
	tokenized        bool
}

// NewWriter creates filename, truncating any existing file, and lays out the
// output groups and tables.
func NewWriter(filename string, runID uuid.UUID, compressionLevel int) (*Writer, error) {
	h5Lock.Lock()
	defer h5Lock.Unlock()

	logger.Info(fmt.Sprintf("Creating file: %s", filename), "hdf5writer")
	writer := &Writer{
		Filename:         filename,
		RunID:            runID,
		compressionLevel: compressionLevel,
	}

	var err error
	if writer.File, err = createFile(filename); err != nil {
		return nil, err
	}
	fail := func(err error) (*Writer, error) {
		return nil, errors.Join(err, writer.close())
	}

	if writer.IntervalsGroup, err = createGroup(writer.File, "intervals"); err != nil {
		return fail(err)
	}
	if writer.StimulusGroup, err = createGroup(writer.File, "stimulus"); err != nil {
		return fail(err)
	}
	if writer.GeneralGroup, err = createGroup(writer.File, "general"); err != nil {
		return fail(err)
	}

	tables := []struct {
		dset     **hdf5.Dataset
		group    *hdf5.Group
		name     string
		datatype interface{}
	}{
		{&writer.TrialsTable, writer.IntervalsGroup, "trials", TrialHDF5{}},
		{&writer.ColumnsTable, writer.IntervalsGroup, "trial_columns", TrialColumnHDF5{}},
		{&writer.AttributesTable, writer.IntervalsGroup, "trial_attributes", TrialAttributeHDF5{}},
		{&writer.OnsetsTable, writer.StimulusGroup, "onsets", float64(0)},
		{&writer.TimingTable, writer.StimulusGroup, "timing", StimulusTimingHDF5{}},
		{&writer.RunTable, writer.GeneralGroup, "run", RunHDF5{}},
	}
	for _, table := range tables {
		if *table.dset, err = createTable(table.group, table.name, table.datatype, compressionLevel); err != nil {
			return fail(err)
		}
	}
	return writer, nil
}

// WriteBlock stores the trials, stimulus onsets and timing of a block. It can
// only be called once per file.
func (w *Writer) WriteBlock(result *trials.TokenizationResult, markStartTime float64) error {
	h5Lock.Lock()
	defer h5Lock.Unlock()

	if w.tokenized {
		return &ErrAlreadyTokenized{Filename: w.Filename}
	}

	// Every row is converted before the first write so an oversized value
	// leaves the file untouched.
	var err error
	rows := make([]TrialHDF5, len(result.Trials))
	attributes := make([]TrialAttributeHDF5, 0)
	for i, trial := range result.Trials {
		rows[i] = TrialHDF5{
			start: trial.StartTime,
			stop:  trial.StopTime,
		}
		if rows[i].sb, err = convertToHdf5String("sb", trial.Label.Code()); err != nil {
			return err
		}
		for _, column := range result.Columns {
			value, ok := trial.Attributes[column.Name]
			if !ok {
				continue
			}
			attribute := TrialAttributeHDF5{trial: int32(i)}
			if attribute.column, err = convertToHdf5String("column name", column.Name); err != nil {
				return err
			}
			if attribute.value, err = convertToHdf5Value(column.Name, value); err != nil {
				return fmt.Errorf("trial %d: %w", i, err)
			}
			attributes = append(attributes, attribute)
		}
	}

	columns := make([]TrialColumnHDF5, len(result.Columns))
	for i, column := range result.Columns {
		if columns[i].name, err = convertToHdf5String("column name", column.Name); err != nil {
			return err
		}
		if columns[i].description, err = convertToHdf5Value("column description", column.Description); err != nil {
			return err
		}
	}

	var runID [UUIDLEN]byte
	copy(runID[:], w.RunID.String())
	run := RunHDF5{runID: runID}
	if run.block, err = convertToHdf5String("block", result.Block); err != nil {
		return err
	}
	if run.protocol, err = convertToHdf5String("protocol", result.Protocol); err != nil {
		return err
	}
	if run.kind, err = convertToHdf5String("protocol kind", result.Kind.String()); err != nil {
		return err
	}

	w.tokenized = true
	if err := writeArrayToTable(w.TrialsTable, &rows, 0); err != nil {
		return fmt.Errorf("write trials: %w", err)
	}
	if err := writeArrayToTable(w.AttributesTable, &attributes, 0); err != nil {
		return fmt.Errorf("write trial attributes: %w", err)
	}
	if err := writeArrayToTable(w.ColumnsTable, &columns, 0); err != nil {
		return fmt.Errorf("write trial columns: %w", err)
	}

	onsets := append([]float64(nil), result.Onsets...)
	if err := writeArrayToTable(w.OnsetsTable, &onsets, 0); err != nil {
		return fmt.Errorf("write onsets: %w", err)
	}

	measured := int32(0)
	if result.AudioStartMeasured {
		measured = 1
	}
	timing := StimulusTimingHDF5{
		audioStart:    result.AudioStartTime,
		measured:      measured,
		recordingEnd:  result.RecordingEndTime,
		markStartTime: markStartTime,
	}
	if err := writeEntryToTable(w.TimingTable, timing, 0); err != nil {
		return fmt.Errorf("write stimulus timing: %w", err)
	}
	if err := writeEntryToTable(w.RunTable, run, 0); err != nil {
		return fmt.Errorf("write run info: %w", err)
	}

	logger.Info(fmt.Sprintf("Block %s: %d trials written to %s", result.Block, len(rows), w.Filename), "hdf5writer")
	return nil
}

// WriteMark stores the recorded mark track as /stimulus/recorded_mark with
// its rate and starting time as attributes.
func (w *Writer) WriteMark(track trials.MarkTrack) error {
	h5Lock.Lock()
	defer h5Lock.Unlock()

	if w.MarkData != nil {
		return fmt.Errorf("recorded mark already written to '%s'", w.Filename)
	}
	dset, err := createTable(w.StimulusGroup, "recorded_mark", float64(0), w.compressionLevel)
	if err != nil {
		return err
	}
	w.MarkData = dset

	samples := append([]float64(nil), track.Samples...)
	if err := writeArrayToTable(dset, &samples, 0); err != nil {
		return fmt.Errorf("write recorded mark: %w", err)
	}
	if err := writeScalarAttribute(dset, rateAttribute, track.SampleRate); err != nil {
		return fmt.Errorf("write recorded mark rate: %w", err)
	}
	if err := writeScalarAttribute(dset, startingTimeAttribute, track.StartTime); err != nil {
		return fmt.Errorf("write recorded mark starting time: %w", err)
	}
	return nil
}

func (w *Writer) Close() error {
	h5Lock.Lock()
	defer h5Lock.Unlock()
	return w.close()
}

func (w *Writer) close() error {
	var errs []error
	for _, dset := range []**hdf5.Dataset{
		&w.TrialsTable, &w.ColumnsTable, &w.AttributesTable,
		&w.OnsetsTable, &w.TimingTable, &w.RunTable, &w.MarkData,
	} {
		if *dset != nil {
			errs = append(errs, (*dset).Close())
			*dset = nil
		}
	}
	for _, group := range []**hdf5.Group{&w.IntervalsGroup, &w.StimulusGroup, &w.GeneralGroup} {
		if *group != nil {
			errs = append(errs, (*group).Close())
			*group = nil
		}
	}
	if w.File != nil {
		errs = append(errs, w.File.Close())
		w.File = nil
	}
	return errors.Join(errs...)
}
