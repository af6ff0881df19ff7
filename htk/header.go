package htk

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/ieee0824/htspack/feature"
)

// HeaderSize is the size in bytes of an encoded Header.
const HeaderSize = 12

// ParamKindUser is the HTK parameter kind for user-defined features.
const ParamKindUser int16 = 9

// Header is the HTK observation file header.
type Header struct {
	NSamples   int32 // number of frames
	SampPeriod int32 // frame period, written as supplied
	SampSize   int16 // bytes per frame
	ParamKind  int16
}

// ComputeHeader describes the packed form of streams. SampSize is the total
// frame size in bytes narrowed to int16; it wraps for frames above 32767 bytes.
//
// framePeriod is stored verbatim. HTK readers expect 100ns units, so callers
// that pass milliseconds (as the HTS recipes historically did) get a header
// that HTK tools misinterpret.
func ComputeHeader(streams []*feature.Matrix, framePeriod int32, kind int16) Header {
	return Header{
		NSamples:   int32(FrameCount(streams)),
		SampPeriod: framePeriod,
		SampSize:   int16(FrameDim(streams) * 4),
		ParamKind:  kind,
	}
}

// SampSizeOverflows reports whether the frame size of streams does not fit in
// the header's int16 SampSize field.
func SampSizeOverflows(streams []*feature.Matrix) bool {
	return FrameDim(streams)*4 > 1<<15-1
}

// Bytes returns the little-endian encoding of h.
func (h Header) Bytes() []byte {
	buf := make([]byte, 0, HeaderSize)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(h.NSamples))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(h.SampPeriod))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(h.SampSize))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(h.ParamKind))
	return buf
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (h Header) MarshalBinary() ([]byte, error) {
	return h.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return &feature.FormatError{Msg: fmt.Sprintf("header needs %d bytes, got %d", HeaderSize, len(data))}
	}
	h.NSamples = int32(binary.LittleEndian.Uint32(data[0:4]))
	h.SampPeriod = int32(binary.LittleEndian.Uint32(data[4:8]))
	h.SampSize = int16(binary.LittleEndian.Uint16(data[8:10]))
	h.ParamKind = int16(binary.LittleEndian.Uint16(data[10:12]))
	return nil
}

// ReadHeader reads and decodes a header from r.
func ReadHeader(r io.Reader) (Header, error) {
	var buf [HeaderSize]byte
	n, err := io.ReadFull(r, buf[:])
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return Header{}, &feature.FormatError{Msg: fmt.Sprintf("header needs %d bytes, got %d", HeaderSize, n)}
	}
	if err != nil {
		return Header{}, errors.Wrap(err, "read header")
	}
	var h Header
	err = h.UnmarshalBinary(buf[:])
	return h, err
}
