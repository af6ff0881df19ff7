package htk

import (
	"bytes"
	"fmt"
	"os"

	"github.com/ieee0824/htspack/feature"
	"github.com/ieee0824/htspack/internal/mathutil"
)

// Info summarizes a headered observation file.
type Info struct {
	Header  Header
	Frames  int     // frames present in the payload
	Dim     int     // float32 values per frame
	Missing int     // cells holding feature.MissingValue
	Peak    float64 // largest absolute present value
}

// Inspect decodes the header of a headered observation file and checks that
// the payload holds exactly NSamples frames of SampSize bytes.
func Inspect(path string) (Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Info{}, &feature.IOError{Op: "read", Path: path, Err: err}
	}
	if len(data) < HeaderSize {
		return Info{}, &feature.FormatError{Path: path, Msg: fmt.Sprintf("%d bytes is shorter than a header", len(data))}
	}
	var h Header
	if err := h.UnmarshalBinary(data); err != nil {
		return Info{}, err
	}

	// SampSize may have wrapped; the unsigned reading is right up to 65535.
	frameBytes := int(uint16(h.SampSize))
	if frameBytes == 0 || frameBytes%4 != 0 {
		return Info{Header: h}, &feature.FormatError{Path: path, Msg: fmt.Sprintf("bad sample size %d", frameBytes)}
	}
	payload := data[HeaderSize:]
	if want := int(h.NSamples) * frameBytes; len(payload) != want {
		return Info{Header: h}, &feature.FormatError{
			Path: path,
			Msg:  fmt.Sprintf("payload is %d bytes, header announces %d", len(payload), want),
		}
	}

	m, err := feature.Decode(bytes.NewReader(payload), frameBytes/4, path)
	if err != nil {
		return Info{Header: h}, err
	}
	info := Info{
		Header:  h,
		Frames:  m.Frames(),
		Dim:     m.Dim(),
		Missing: m.MissingCount(),
	}
	present := make([]float64, 0, m.Dim())
	for t := 0; t < m.Frames(); t++ {
		present = present[:0]
		for d := 0; d < m.Dim(); d++ {
			if v, ok := m.At(t, d); ok {
				present = append(present, v)
			}
		}
		if p := mathutil.MaxAbs(present); p > info.Peak {
			info.Peak = p
		}
	}
	return info, nil
}
