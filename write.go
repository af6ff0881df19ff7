package htspack

import (
	"os"
	"path/filepath"
)

// writeFileAtomic writes data to a temporary file next to path and renames it
// over path once fully written.
func writeFileAtomic(path string, data []byte) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			os.Remove(tmp)
		}
	}()

	if _, err = f.Write(data); err != nil {
		f.Close()
		return &IOError{Op: "write", Path: tmp, Err: err}
	}
	if err = f.Sync(); err != nil {
		f.Close()
		return &IOError{Op: "sync", Path: tmp, Err: err}
	}
	if err = f.Close(); err != nil {
		return &IOError{Op: "close", Path: tmp, Err: err}
	}
	if err = os.Chmod(tmp, 0o644); err != nil {
		return &IOError{Op: "chmod", Path: tmp, Err: err}
	}
	if err = os.Rename(tmp, path); err != nil {
		return &IOError{Op: "rename", Path: path, Err: err}
	}
	return nil
}
