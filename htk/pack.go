// Package htk packs augmented feature streams into HTK-style observation
// files: interleaved little-endian float32 frames, optionally preceded by a
// 12-byte header.
package htk

import "github.com/ieee0824/htspack/feature"

// FrameCount returns the number of frames shared by all streams, i.e. the
// smallest frame count. It returns 0 for an empty set.
func FrameCount(streams []*feature.Matrix) int {
	if len(streams) == 0 {
		return 0
	}
	T := streams[0].Frames()
	for _, s := range streams[1:] {
		if s.Frames() < T {
			T = s.Frames()
		}
	}
	return T
}

// FrameDim returns the total number of values per packed frame.
func FrameDim(streams []*feature.Matrix) int {
	dim := 0
	for _, s := range streams {
		dim += s.Dim()
	}
	return dim
}

// Truncated reports whether the streams disagree on their frame count, in
// which case Merge and ComputeHeader drop the trailing frames of the longer ones.
func Truncated(streams []*feature.Matrix) bool {
	T := FrameCount(streams)
	for _, s := range streams {
		if s.Frames() != T {
			return true
		}
	}
	return false
}

// Merge interleaves the streams frame by frame: for each frame t in
// [0, FrameCount), every stream's frame t in the given order. Values are
// written as little-endian float32; missing cells as feature.MissingValue.
func Merge(streams []*feature.Matrix) []byte {
	T := FrameCount(streams)
	buf := make([]byte, 0, T*FrameDim(streams)*4)
	for t := 0; t < T; t++ {
		for _, s := range streams {
			buf = s.AppendFrame(buf, t)
		}
	}
	return buf
}
