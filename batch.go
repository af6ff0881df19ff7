package htspack

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Job is one utterance: an input path per stream and the output path.
type Job struct {
	Name   string // defaults to Output in logs and errors
	Inputs []string
	Output string
}

func (j Job) label() string {
	if j.Name != "" {
		return j.Name
	}
	return j.Output
}

// BatchError lists the jobs that failed in a Batch call.
type BatchError struct {
	Total  int
	Failed map[string]error // job label -> cause
}

func (e *BatchError) Error() string {
	names := make([]string, 0, len(e.Failed))
	for name := range e.Failed {
		names = append(names, name)
	}
	sort.Strings(names)
	const maxListed = 5
	if len(names) > maxListed {
		names = append(names[:maxListed], "...")
	}
	return fmt.Sprintf("%d of %d utterances failed: %s", len(e.Failed), e.Total, strings.Join(names, ", "))
}

// Batch runs Generate for every job, Options.Workers jobs at a time. Streams
// within a job are processed sequentially. A failing job does not stop the
// others; Batch returns a *BatchError when at least one job failed.
func (p *Packer) Batch(jobs []Job) error {
	type result struct {
		job Job
		err error
	}
	resultCh := make(chan result, len(jobs))
	sem := make(chan struct{}, p.opts.Workers)
	var wg sync.WaitGroup

	for _, job := range jobs {
		wg.Add(1)
		sem <- struct{}{}
		go func(j Job) {
			defer wg.Done()
			defer func() { <-sem }()
			resultCh <- result{job: j, err: p.generate(j.Inputs, j.Output, 1)}
		}(job)
	}
	go func() {
		wg.Wait()
		close(resultCh)
	}()

	berr := &BatchError{Total: len(jobs), Failed: map[string]error{}}
	done := 0
	for r := range resultCh {
		done++
		if r.err != nil {
			berr.Failed[r.job.label()] = r.err
			p.opts.Logger.WithError(r.err).WithField("job", r.job.label()).Error("utterance failed")
			continue
		}
		p.opts.Logger.WithFields(logrus.Fields{
			"job":      r.job.label(),
			"progress": fmt.Sprintf("%d/%d", done, len(jobs)),
		}).Info("utterance packed")
	}
	if len(berr.Failed) > 0 {
		return berr
	}
	return nil
}
