package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"moveflow/internal/trace"
)

type traceFlags struct {
	output    string
	level     string
	mode      string
	ringSize  int
	heartbeat time.Duration
}

func readTraceFlags(flags *pflag.FlagSet) (traceFlags, error) {
	var (
		tf   traceFlags
		errs []error
	)
	get := func(name string, read func() error) {
		if err := read(); err != nil {
			errs = append(errs, fmt.Errorf("--%s: %w", name, err))
		}
	}
	get("trace", func() (err error) { tf.output, err = flags.GetString("trace"); return })
	get("trace-level", func() (err error) { tf.level, err = flags.GetString("trace-level"); return })
	get("trace-mode", func() (err error) { tf.mode, err = flags.GetString("trace-mode"); return })
	get("trace-ring-size", func() (err error) { tf.ringSize, err = flags.GetInt("trace-ring-size"); return })
	get("trace-heartbeat", func() (err error) { tf.heartbeat, err = flags.GetDuration("trace-heartbeat"); return })
	return tf, errors.Join(errs...)
}

// setupTracing installs the tracer selected by the --trace* flags into the
// command context. The returned cleanup flushes and closes it.
func setupTracing(cmd *cobra.Command) (func(), error) {
	tf, err := readTraceFlags(cmd.Flags())
	if err != nil {
		return nil, err
	}
	level, err := trace.ParseLevel(tf.level)
	if err != nil {
		return nil, fmt.Errorf("invalid trace level: %w", err)
	}
	// --trace без уровня включает фазы
	if level == trace.LevelOff && tf.output != "" {
		level = trace.LevelPhase
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}
	mode, err := trace.ParseMode(tf.mode)
	if err != nil {
		return nil, fmt.Errorf("invalid trace mode: %w", err)
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		OutputPath: tf.output,
		RingSize:   tf.ringSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))
	heartbeat := trace.StartHeartbeat(tracer, tf.heartbeat)

	return func() {
		heartbeat.Stop()
		if err := errors.Join(tracer.Flush(), tracer.Close()); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: %v\n", err)
		}
	}, nil
}

// dumpTraceOnPanic writes the ring buffer, if one is configured, before
// the panic continues. Call it deferred.
func dumpTraceOnPanic(cmd *cobra.Command, w io.Writer) {
	r := recover()
	if r == nil {
		return
	}
	if ring := trace.FindRing(trace.FromContext(cmd.Context())); ring != nil {
		fmt.Fprintln(w, "moveflow: last trace events before the crash:")
		if n := ring.Dropped(); n > 0 {
			fmt.Fprintf(w, "(%d earlier events overwritten)\n", n)
		}
		if err := ring.Dump(w, trace.FormatText); err != nil {
			fmt.Fprintf(w, "trace: dump error: %v\n", err)
		}
	}
	panic(r)
}
