package feature

import "fmt"

// FormatError reports malformed input: a window file with an even size or bad
// tokens, a feature file whose length is not a whole number of frames, or a
// truncated header.
type FormatError struct {
	Path string // empty when the input did not come from a file
	Msg  string
}

func (e *FormatError) Error() string {
	if e.Path == "" {
		return "format error: " + e.Msg
	}
	return fmt.Sprintf("format error: %s: %s", e.Path, e.Msg)
}

// DataError reports invalid numeric content, e.g. NaN values in a feature file.
type DataError struct {
	Path string
	Msg  string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("data error: %s %s", e.Path, e.Msg)
}

// IOError reports a filesystem failure. Err is the underlying cause.
type IOError struct {
	Op   string // "read", "write", "rename", ...
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("io error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
