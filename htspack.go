// Package htspack builds HTS observation files from raw acoustic feature
// streams: it appends dynamic features computed with FIR windows and
// interleaves the streams into one little-endian float32 file, with or
// without an HTK header.
package htspack

import (
	"runtime"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ieee0824/htspack/feature"
	"github.com/ieee0824/htspack/htk"
)

// Options selects the output variant and tunes the pipeline.
type Options struct {
	IncludeHeader bool  // prefix the data with an HTK header
	ForceMSDOff   bool  // ignore StreamConfig.MSD and treat missing values as numbers
	FramePeriod   int32 // header SampPeriod, written verbatim
	ParamKind     int16 // header ParamKind
	Workers       int   // streams processed concurrently; <= 0 means NumCPU
	Logger        logrus.FieldLogger
}

// Option configures a Packer.
type Option func(*Options)

// WithHeader enables or disables the HTK header.
func WithHeader(enabled bool) Option {
	return func(o *Options) {
		o.IncludeHeader = enabled
	}
}

// WithForceMSDOff disables missing-value propagation for every stream.
func WithForceMSDOff(off bool) Option {
	return func(o *Options) {
		o.ForceMSDOff = off
	}
}

// WithFramePeriod sets the header frame period. No unit conversion is done.
func WithFramePeriod(period int32) Option {
	return func(o *Options) {
		o.FramePeriod = period
	}
}

// WithParamKind sets the header parameter kind (default htk.ParamKindUser).
func WithParamKind(kind int16) Option {
	return func(o *Options) {
		o.ParamKind = kind
	}
}

// WithWorkers bounds the number of streams loaded and windowed concurrently.
func WithWorkers(n int) Option {
	return func(o *Options) {
		o.Workers = n
	}
}

// WithLogger sets the logger. The default is logrus.StandardLogger().
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// Packer turns per-stream feature files into one observation file.
type Packer struct {
	streams []StreamConfig
	opts    Options
}

// New creates a Packer for streams. Without options it writes headered CMP
// data with a zero frame period; see NewCMP and NewFFO for the usual presets.
func New(streams []StreamConfig, opts ...Option) (*Packer, error) {
	if len(streams) == 0 {
		return nil, ErrNoStreams
	}
	for i, s := range streams {
		if err := s.Validate(); err != nil {
			return nil, errors.Wrapf(err, "stream %s", s.label(i))
		}
	}

	o := Options{
		IncludeHeader: true,
		ParamKind:     htk.ParamKindUser,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}

	p := &Packer{streams: make([]StreamConfig, len(streams)), opts: o}
	copy(p.streams, streams)
	return p, nil
}

// NewCMP creates a Packer for headered CMP files. Each stream keeps its own
// MSD setting.
func NewCMP(streams []StreamConfig, framePeriod int32, opts ...Option) (*Packer, error) {
	base := []Option{WithHeader(true), WithForceMSDOff(false), WithFramePeriod(framePeriod)}
	return New(streams, append(base, opts...)...)
}

// NewFFO creates a Packer for headerless FFO files, with MSD off for every
// stream.
func NewFFO(streams []StreamConfig, opts ...Option) (*Packer, error) {
	base := []Option{WithHeader(false), WithForceMSDOff(true)}
	return New(streams, append(base, opts...)...)
}

// Streams returns the configured streams.
func (p *Packer) Streams() []StreamConfig { return p.streams }

// Options returns the effective options.
func (p *Packer) Options() Options { return p.opts }

// Augment loads inputs[i] as stream i and applies that stream's windows. The
// result is in stream order.
func (p *Packer) Augment(inputs []string) ([]*feature.Matrix, error) {
	return p.augment(inputs, p.opts.Workers)
}

func (p *Packer) augment(inputs []string, workers int) ([]*feature.Matrix, error) {
	if len(inputs) != len(p.streams) {
		return nil, errors.Wrapf(ErrStreamCount, "%d inputs for %d streams", len(inputs), len(p.streams))
	}

	out := make([]*feature.Matrix, len(inputs))
	errs := make([]error, len(inputs))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i := range inputs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			out[i], errs[i] = p.augmentStream(i, inputs[i])
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, errors.Wrapf(err, "stream %s", p.streams[i].label(i))
		}
	}
	return out, nil
}

func (p *Packer) augmentStream(i int, path string) (*feature.Matrix, error) {
	s := p.streams[i]
	in, err := feature.Load(path, s.Dim())
	if err != nil {
		return nil, err
	}
	msd := s.MSD && !p.opts.ForceMSDOff
	out := feature.ApplyWindows(in, s.Windows, msd)

	p.opts.Logger.WithFields(logrus.Fields{
		"stream":  s.label(i),
		"path":    path,
		"frames":  in.Frames(),
		"dim":     out.Dim(),
		"msd":     msd,
		"missing": out.MissingCount(),
	}).Debug("stream augmented")
	return out, nil
}

// Pack returns the observation file contents for inputs, one path per stream
// in stream order.
func (p *Packer) Pack(inputs []string) ([]byte, error) {
	return p.pack(inputs, p.opts.Workers)
}

func (p *Packer) pack(inputs []string, workers int) ([]byte, error) {
	streams, err := p.augment(inputs, workers)
	if err != nil {
		return nil, err
	}
	return p.encode(streams), nil
}

func (p *Packer) encode(streams []*feature.Matrix) []byte {
	if htk.Truncated(streams) {
		frames := make(logrus.Fields, len(streams))
		for i, s := range streams {
			frames[p.streams[i].label(i)] = s.Frames()
		}
		p.opts.Logger.WithFields(frames).
			WithField("kept", htk.FrameCount(streams)).
			Warn("frame counts differ across streams, truncating to the shortest")
	}

	data := htk.Merge(streams)
	if !p.opts.IncludeHeader {
		return data
	}

	if htk.SampSizeOverflows(streams) {
		p.opts.Logger.WithField("bytes", htk.FrameDim(streams)*4).
			Warn("frame size does not fit the header sample size field")
	}
	h := htk.ComputeHeader(streams, p.opts.FramePeriod, p.opts.ParamKind)
	return append(h.Bytes(), data...)
}

// Generate packs inputs and writes the result to output. The file is written
// to a temporary name in the same directory and renamed into place, so a
// failed call leaves no partial output.
func (p *Packer) Generate(inputs []string, output string) error {
	return p.generate(inputs, output, p.opts.Workers)
}

func (p *Packer) generate(inputs []string, output string, workers int) error {
	data, err := p.pack(inputs, workers)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(output, data); err != nil {
		return err
	}
	p.opts.Logger.WithFields(logrus.Fields{
		"output": output,
		"bytes":  len(data),
		"header": p.opts.IncludeHeader,
	}).Debug("observation written")
	return nil
}
