package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/threadevent/pkg/threadevent"
	"github.com/randalmurphal/threadevent/pkg/threadevent/config"
	"github.com/randalmurphal/threadevent/pkg/threadevent/event"
	"github.com/randalmurphal/threadevent/pkg/threadevent/id"
	"github.com/randalmurphal/threadevent/pkg/threadevent/listener"
	"github.com/randalmurphal/threadevent/pkg/threadevent/observability"
)

// sampleEvent is the event published by the demo.
type sampleEvent struct {
	event.Base
}

func (e *sampleEvent) String() string {
	return "SampleEvent with ID: " + e.ID()
}

func (e *sampleEvent) EventName() string {
	return "SampleEvent"
}

// sampleListener prints a line for every stage it reacts to. A reaction for
// failStage, when set, fails instead.
func sampleListener(out io.Writer, failStage *event.Stage) listener.Factory {
	return listener.Func("SampleEventListener", func() listener.Reactions[*sampleEvent] {
		reactions := listener.Reactions[*sampleEvent]{}
		for _, s := range event.Stages() {
			reactions[s] = func(_ context.Context, e *sampleEvent) error {
				if failStage != nil && *failStage == s {
					return fmt.Errorf("SampleEventListener refused %s stage for %s", s, e)
				}
				fmt.Fprintf(out, "SampleEventListener handling %s stage for %s\n", s, e)
				return nil
			}
		}
		return reactions
	})
}

type demoOptions struct {
	configPath string
	logFile    string
	swallow    bool
	stages     []string
	failStage  string
}

func newDemoCmd() *cobra.Command {
	opts := demoOptions{}

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Publish a sample event through a sequence of stages",
		Long: `Registers a sample listener, builds a publisher, and publishes one
sample event once per requested stage, moving the event to that stage first.`,
		Example: `  threadevent demo
  threadevent demo --stage start --stage success --stage end
  threadevent demo --fail-stage end --swallow`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.configPath, _ = cmd.Flags().GetString("config")
			return runDemo(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "write JSON logs to this rotated file instead of stderr")
	cmd.Flags().BoolVar(&opts.swallow, "swallow", false, "log listener failures and continue instead of aborting")
	cmd.Flags().StringSliceVar(&opts.stages, "stage", []string{"START", "END"}, "stages to publish the event at, in order")
	cmd.Flags().StringVar(&opts.failStage, "fail-stage", "", "make the sample listener fail at this stage")

	return cmd
}

func runDemo(ctx context.Context, out, errOut io.Writer, opts demoOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	settings, err := loadSettings(opts)
	if err != nil {
		return err
	}

	stages, err := parseStages(opts.stages)
	if err != nil {
		return err
	}

	var failStage *event.Stage
	if opts.failStage != "" {
		s, err := event.ParseStage(opts.failStage)
		if err != nil {
			return err
		}
		failStage = &s
	}

	logger, closeLogger, err := newLogger(errOut, settings)
	if err != nil {
		return err
	}
	defer closeLogger()

	gen, err := settings.Generator()
	if err != nil {
		return err
	}

	reg := listener.NewRegistry()
	if err := reg.Register(sampleListener(out, failStage)); err != nil {
		return fmt.Errorf("register sample listener: %w", err)
	}

	pub, err := threadevent.NewBuilder(reg).
		WithSettings(settings).
		WithLogger(logger).
		Build()
	if err != nil {
		return fmt.Errorf("build publisher: %w", err)
	}

	return publishStages(ctx, out, pub, newSampleEvent(gen), stages)
}

func newSampleEvent(gen id.Generator) *sampleEvent {
	return &sampleEvent{Base: event.NewBase(event.WithIDGenerator(gen))}
}

func publishStages(ctx context.Context, out io.Writer, pub *threadevent.Publisher, evt *sampleEvent, stages []event.Stage) error {
	for _, s := range stages {
		if err := event.Transition(evt, s); err != nil {
			return err
		}

		fmt.Fprintf(out, "\nPublishing event at %s stage...\n", s)
		ec, err := pub.Publish(ctx, evt)
		if err != nil {
			return fmt.Errorf("publish at %s stage: %w", s, err)
		}
		fmt.Fprintf(out, "Processed by %d listener(s), %s since creation\n",
			len(ec.ProcessedListeners()), ec.Duration())
	}
	return nil
}

func loadSettings(opts demoOptions) (config.Settings, error) {
	settings := config.DefaultSettings()
	if opts.configPath != "" {
		var err error
		if settings, err = config.Load(opts.configPath); err != nil {
			return config.Settings{}, err
		}
	}

	if opts.swallow {
		settings.ExceptionHandler = config.HandlerSwallow
	}
	if opts.logFile != "" {
		settings.LogFile = opts.logFile
	}
	return settings, nil
}

func parseStages(names []string) ([]event.Stage, error) {
	stages := make([]event.Stage, 0, len(names))
	for _, name := range names {
		s, err := event.ParseStage(name)
		if err != nil {
			return nil, fmt.Errorf("--stage: %w (valid: %s)", err, stageList())
		}
		stages = append(stages, s)
	}
	return stages, nil
}

func stageList() string {
	names := make([]string, 0, len(event.Stages()))
	for _, s := range event.Stages() {
		names = append(names, s.String())
	}
	return strings.Join(names, ", ")
}

// newLogger returns the publisher logger and a function flushing it.
func newLogger(errOut io.Writer, settings config.Settings) (observability.Logger, func(), error) {
	if settings.LogFile != "" {
		opts := observability.DefaultFileOptions()
		opts.MaxSizeMB = settings.LogMaxSizeMB

		zl, err := observability.NewFileLoggerWithOptions(settings.LogFile, settings.LogLevel, false, opts)
		if err != nil {
			return nil, nil, err
		}
		zl = zl.Named("EventPublisher")
		return observability.NewZapLogger(zl), func() { _ = zl.Sync() }, nil
	}

	level, err := settings.SlogLevel()
	if err != nil {
		return nil, nil, err
	}
	base := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))
	return observability.NamedLogger(base, "EventPublisher"), func() {}, nil
}
