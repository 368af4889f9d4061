package nwbio

import (
	"fmt"
	"sync"

	"github.com/jmbenlloch/go-hdf5"
)

const (
	STRLEN   = 32
	VALUELEN = 64
	UUIDLEN  = 36
)

// The HDF5 library is not built thread-safe. Every exported function that
// touches HDF5 handles holds h5Lock.
var h5Lock sync.Mutex

func convertToHdf5String(field, s string) ([STRLEN]byte, error) {
	var byteArray [STRLEN]byte
	if len(s) > STRLEN {
		return byteArray, &ErrValueTooLong{Field: field, Value: s, Max: STRLEN}
	}
	copy(byteArray[:], s)
	return byteArray, nil
}

func convertToHdf5Value(field, s string) ([VALUELEN]byte, error) {
	var byteArray [VALUELEN]byte
	if len(s) > VALUELEN {
		return byteArray, &ErrValueTooLong{Field: field, Value: s, Max: VALUELEN}
	}
	copy(byteArray[:], s)
	return byteArray, nil
}

func createFile(fname string) (*hdf5.File, error) {
	f, err := hdf5.CreateFile(fname, hdf5.F_ACC_TRUNC)
	if err != nil {
		return nil, &ErrOpenFile{Filename: fname, Err: err}
	}
	return f, nil
}

func openFile(fname string) (*hdf5.File, error) {
	f, err := hdf5.OpenFile(fname, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, &ErrOpenFile{Filename: fname, Err: err}
	}
	return f, nil
}

func createGroup(file *hdf5.File, groupName string) (*hdf5.Group, error) {
	g, err := file.CreateGroup(groupName)
	if err != nil {
		return nil, &ErrCreateGroup{GroupName: groupName, Err: err}
	}
	return g, nil
}

// createTable creates an extensible one dimensional dataset whose element
// type is taken from datatype.
func createTable(group *hdf5.Group, name string, datatype interface{}, compressionLevel int) (*hdf5.Dataset, error) {
	dims := []uint{0}
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	maxDims := []uint{uint(unlimitedDims)}
	fileSpace, err := hdf5.CreateSimpleDataspace(dims, maxDims)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	defer fileSpace.Close()

	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	defer plist.Close()

	chunks := []uint{32768}
	if err := plist.SetChunk(chunks); err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	if compressionLevel > 0 {
		if err := plist.SetDeflate(compressionLevel); err != nil {
			return nil, &ErrCreateTable{TableName: name, Err: err}
		}
	}

	dtype, err := hdf5.NewDatatypeFromValue(datatype)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}

	dset, err := group.CreateDatasetWith(name, dtype, fileSpace, plist)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	return dset, nil
}

// writeArrayToTable appends data to an extensible table currently holding
// rowsInTable rows.
func writeArrayToTable[T any](dataset *hdf5.Dataset, data *[]T, rowsInTable int) error {
	length := uint(len(*data))
	if length == 0 {
		return nil
	}
	dims := []uint{length}
	dataspace, err := hdf5.CreateSimpleDataspace(dims, nil)
	if err != nil {
		return err
	}
	defer dataspace.Close()

	// extend
	offset := uint(rowsInTable)
	newsize := []uint{offset + length}
	if err := dataset.Resize(newsize); err != nil {
		return err
	}
	filespace := dataset.Space()
	defer filespace.Close()

	start := []uint{offset}
	count := []uint{length}
	if err := filespace.SelectHyperslab(start, nil, count, nil); err != nil {
		return err
	}
	return dataset.WriteSubset(data, dataspace, filespace)
}

func writeEntryToTable[T any](dataset *hdf5.Dataset, data T, rowsInTable int) error {
	array := []T{data}
	return writeArrayToTable(dataset, &array, rowsInTable)
}

// readFloatDataset reads a numeric dataset of 32 or 64 bit floats. It returns
// the values in row-major order together with the dataset dimensions.
func readFloatDataset(dset *hdf5.Dataset) ([]float64, []uint, error) {
	space := dset.Space()
	defer space.Close()
	dims, _, err := space.SimpleExtentDims()
	if err != nil {
		return nil, nil, err
	}
	n := uint(1)
	for _, d := range dims {
		n *= d
	}

	dtype, err := dset.Datatype()
	if err != nil {
		return nil, nil, err
	}
	defer dtype.Close()

	switch dtype.Size() {
	case 8:
		data := make([]float64, n)
		if n > 0 {
			if err := dset.Read(&data); err != nil {
				return nil, nil, err
			}
		}
		return data, dims, nil
	case 4:
		single := make([]float32, n)
		if n > 0 {
			if err := dset.Read(&single); err != nil {
				return nil, nil, err
			}
		}
		data := make([]float64, n)
		for i, v := range single {
			data[i] = float64(v)
		}
		return data, dims, nil
	}
	return nil, nil, fmt.Errorf("unsupported sample size of %d bytes", dtype.Size())
}

func writeScalarAttribute(dset *hdf5.Dataset, name string, value float64) error {
	space, err := hdf5.CreateDataspace(hdf5.S_SCALAR)
	if err != nil {
		return err
	}
	defer space.Close()
	attr, err := dset.CreateAttribute(name, hdf5.T_NATIVE_DOUBLE, space)
	if err != nil {
		return err
	}
	defer attr.Close()
	return attr.Write(&value, hdf5.T_NATIVE_DOUBLE)
}

func readScalarAttribute(dset *hdf5.Dataset, name string) (float64, error) {
	attr, err := dset.OpenAttribute(name)
	if err != nil {
		return 0, err
	}
	defer attr.Close()
	var value float64
	if err := attr.Read(&value, hdf5.T_NATIVE_DOUBLE); err != nil {
		return 0, err
	}
	return value, nil
}
