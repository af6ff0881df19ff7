// Package config reads the stream description used to pack observation files.
//
// The file is YAML (JSON is accepted too, being a YAML subset):
//
//	frame_period: 50000
//	streams:
//	  - name: mgc
//	    order: 34
//	    windows: [win/mgc.win1, win/mgc.win2, win/mgc.win3]
//	    dir: data/mgc
//	    ext: mgc
//	  - name: lf0
//	    order: 0
//	    msd: true
//	    windows: [win/lf0.win1, win/lf0.win2, win/lf0.win3]
//
// Relative paths are resolved against the directory of the config file.
package config

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/ieee0824/htspack"
	"github.com/ieee0824/htspack/feature"
)

// Stream is one stream entry of the config file.
type Stream struct {
	Name    string   `yaml:"name"`
	Order   int      `yaml:"order"`
	MSD     bool     `yaml:"msd"`
	IsMSD   bool     `yaml:"is_msd"` // older spelling of msd
	Windows []string `yaml:"windows"`
	Dir     string   `yaml:"dir"` // feature directory for batch runs
	Ext     string   `yaml:"ext"` // feature file extension for batch runs
}

// Root is the whole config file.
type Root struct {
	FramePeriod int32    `yaml:"frame_period"`
	Streams     []Stream `yaml:"streams"`

	base string // directory relative paths are resolved against
}

// Load decodes a config from r. Relative paths resolve against the working
// directory.
func Load(r io.Reader) (*Root, error) {
	var cfg Root
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &feature.FormatError{Msg: "empty config"}
		}
		return nil, &feature.FormatError{Msg: err.Error()}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile is a convenience wrapper that opens a file path.
func LoadFile(path string) (*Root, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &feature.IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()
	cfg, err := Load(f)
	if err != nil {
		var fe *feature.FormatError
		if errors.As(err, &fe) && fe.Path == "" {
			fe.Path = path
		}
		return nil, err
	}
	cfg.base = filepath.Dir(path)
	return cfg, nil
}

// Validate checks the stream entries without touching the filesystem.
func (c *Root) Validate() error {
	if len(c.Streams) == 0 {
		return &feature.FormatError{Msg: "no streams"}
	}
	seen := map[string]bool{}
	for i, s := range c.Streams {
		if s.Order < 0 {
			return &feature.FormatError{Msg: "stream " + s.label(i) + ": negative order"}
		}
		if len(s.Windows) == 0 {
			return &feature.FormatError{Msg: "stream " + s.label(i) + ": no windows"}
		}
		if s.Name != "" {
			if seen[s.Name] {
				return &feature.FormatError{Msg: "duplicate stream name " + s.Name}
			}
			seen[s.Name] = true
		}
	}
	return nil
}

func (s Stream) label(i int) string {
	if s.Name != "" {
		return s.Name
	}
	return "#" + strconv.Itoa(i)
}

func (c *Root) path(p string) string {
	if p == "" || filepath.IsAbs(p) || c.base == "" {
		return p
	}
	return filepath.Join(c.base, p)
}

// Resolve loads every window file and returns the typed stream configs.
func (c *Root) Resolve() ([]htspack.StreamConfig, error) {
	out := make([]htspack.StreamConfig, len(c.Streams))
	for i, s := range c.Streams {
		paths := make([]string, len(s.Windows))
		for j, w := range s.Windows {
			paths[j] = c.path(w)
		}
		windows, err := feature.LoadWindows(paths)
		if err != nil {
			return nil, errors.Wrapf(err, "stream %s", s.label(i))
		}
		out[i] = htspack.StreamConfig{
			Name:    s.Name,
			Order:   s.Order,
			Windows: windows,
			MSD:     s.MSD || s.IsMSD,
		}
	}
	return out, nil
}

// Inputs returns the feature file of every stream for one utterance,
// <dir>/<basename>.<ext>, in stream order.
func (c *Root) Inputs(basename string) ([]string, error) {
	inputs := make([]string, len(c.Streams))
	for i, s := range c.Streams {
		if s.Dir == "" || s.Ext == "" {
			return nil, errors.Errorf("stream %s: dir and ext are required for batch runs", s.label(i))
		}
		inputs[i] = filepath.Join(c.path(s.Dir), basename+"."+s.Ext)
	}
	return inputs, nil
}

// Jobs builds one job per basename, writing <outDir>/<basename>.<ext>.
func (c *Root) Jobs(basenames []string, outDir, ext string) ([]htspack.Job, error) {
	jobs := make([]htspack.Job, 0, len(basenames))
	for _, b := range basenames {
		inputs, err := c.Inputs(b)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, htspack.Job{
			Name:   b,
			Inputs: inputs,
			Output: filepath.Join(outDir, b+"."+ext),
		})
	}
	return jobs, nil
}

// ReadList reads utterance basenames, one per line. Blank lines and lines
// starting with '#' are skipped.
func ReadList(r io.Reader) ([]string, error) {
	var names []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return names, nil
}
