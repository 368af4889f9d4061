package nwbio

import "fmt"

// ErrOpenFile represents an error when opening or creating a file.
type ErrOpenFile struct {
	Filename string
	Err      error
}

func (e *ErrOpenFile) Error() string {
	return fmt.Sprintf("failed to open file '%s': %v", e.Filename, e.Err)
}

func (e *ErrOpenFile) Unwrap() error {
	return e.Err
}

// ErrCreateGroup represents an error when creating a group in an HDF5 file.
type ErrCreateGroup struct {
	GroupName string
	Err       error
}

func (e *ErrCreateGroup) Error() string {
	return fmt.Sprintf("failed to create group '%s': %v", e.GroupName, e.Err)
}

func (e *ErrCreateGroup) Unwrap() error {
	return e.Err
}

// ErrCreateTable represents an error when creating a dataset in an HDF5 file.
type ErrCreateTable struct {
	TableName string
	Err       error
}

func (e *ErrCreateTable) Error() string {
	return fmt.Sprintf("failed to create table '%s': %v", e.TableName, e.Err)
}

func (e *ErrCreateTable) Unwrap() error {
	return e.Err
}

// ErrReadDataset represents an error when reading a dataset or attribute.
type ErrReadDataset struct {
	Filename string
	Dataset  string
	Err      error
}

func (e *ErrReadDataset) Error() string {
	return fmt.Sprintf("failed to read '%s' from '%s': %v", e.Dataset, e.Filename, e.Err)
}

func (e *ErrReadDataset) Unwrap() error {
	return e.Err
}

// ErrAlreadyTokenized is returned when a trials table was already written to
// the output file.
type ErrAlreadyTokenized struct {
	Filename string
}

func (e *ErrAlreadyTokenized) Error() string {
	return fmt.Sprintf("trials already written to '%s'", e.Filename)
}

// ErrInvalidHTK represents a malformed HTK file header.
type ErrInvalidHTK struct {
	Reason string
}

func (e *ErrInvalidHTK) Error() string {
	return fmt.Sprintf("invalid HTK file: %s", e.Reason)
}

// ErrValueTooLong is returned when a string does not fit its fixed-size HDF5
// field.
type ErrValueTooLong struct {
	Field string
	Value string
	Max   int
}

func (e *ErrValueTooLong) Error() string {
	return fmt.Sprintf("%s '%s' is longer than %d bytes", e.Field, e.Value, e.Max)
}
