package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// RunnerConfig describes a multi-step command
type RunnerConfig struct {
	Title     string  // e.g. "Enroll student"
	Command   string  // e.g. "hostelctl student create"
	Params    []Field // shown in the header
	StepNames []string
	Output    io.Writer // default os.Stdout

	// Troubleshoot maps a failure to tips for the failure box
	Troubleshoot func(error) []string
}

// Operation is the work a StepRunner wraps. It reports progress through
// onStep and returns the details for the success box.
type Operation func(ctx context.Context, onStep StepCallback) ([]Field, error)

// StepRunner prints header, step progress and result for one command
type StepRunner struct {
	config   RunnerConfig
	header   *Header
	progress *Progress
	out      io.Writer
	width    int
	now      func() time.Time
}

// NewStepRunner creates a runner for a multi-step command
func NewStepRunner(config RunnerConfig) *StepRunner {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	width := GetTerminalWidth()

	header := NewHeader(config.Title, config.Command, config.Params).SetWidth(width)

	var progress *Progress
	if len(config.StepNames) > 0 {
		progress = NewProgress("", len(config.StepNames)).SetWidth(width).SetStepNames(config.StepNames)
	}

	return &StepRunner{
		config:   config,
		header:   header,
		progress: progress,
		out:      config.Output,
		width:    width,
		now:      time.Now,
	}
}

// Progress returns the runner's step tracker, nil when no steps were named
func (r *StepRunner) Progress() *Progress {
	return r.progress
}

// Run prints the header, executes op and prints the result box.
// The error from op is returned unchanged.
func (r *StepRunner) Run(ctx context.Context, op Operation) error {
	start := r.now()

	_, _ = fmt.Fprintln(r.out, r.header.Render())
	_, _ = fmt.Fprintln(r.out)

	details, err := op(ctx, r.onStep)
	elapsed := r.now().Sub(start).Round(time.Millisecond)

	_, _ = fmt.Fprintln(r.out)
	if err != nil {
		var tips []string
		if r.config.Troubleshoot != nil {
			tips = r.config.Troubleshoot(err)
		}
		res := NewFailureResult(r.config.Title+" failed", err, tips).SetWidth(r.width)
		_, _ = fmt.Fprintln(r.out, res.Render())
		return err
	}

	res := NewSuccessResult(r.config.Title+" complete", details...).SetWidth(r.width)
	res.AddDetail("Duration", elapsed.String())
	_, _ = fmt.Fprintln(r.out, res.Render())
	return nil
}

func (r *StepRunner) onStep(stepNumber int, name string, status StepStatus, message string) {
	if r.progress == nil || stepNumber < 1 || stepNumber > len(r.progress.Steps) {
		return
	}
	if name != "" {
		r.progress.Steps[stepNumber-1].Name = name
	}
	r.progress.UpdateStep(stepNumber, status, message)

	line := r.progress.renderStepLine(r.progress.Steps[stepNumber-1])
	if status == StepRunning {
		// overwritten when the step finishes
		_, _ = fmt.Fprint(r.out, line+"\r")
		return
	}
	_, _ = fmt.Fprintln(r.out, line)
}
