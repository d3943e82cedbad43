// Package host drives a plugin over an audio source the way a simple
// command line host does: choose sizes, initialise, feed overlapping
// blocks, then collect the remaining features.
package host

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/statekit"
	"github.com/felixgeelhaar/vamphost/internal/ports"
	"github.com/felixgeelhaar/vamphost/pkg/vamp"
	"github.com/google/uuid"
)

// State is a session lifecycle state.
type State string

const (
	// StateCreated means the plugin has not been initialised.
	StateCreated State = "created"
	// StateInitialised means the plugin accepted the run configuration.
	StateInitialised State = "initialised"
	// StateProcessing means blocks are being fed.
	StateProcessing State = "processing"
	// StateFinished means remaining features have been collected.
	StateFinished State = "finished"
	// StateError means the run failed. The session cannot be reused.
	StateError State = "error"
)

// Event types for the session state machine.
const (
	EventInitialise = "INITIALISE"
	EventProcess    = "PROCESS"
	EventFinish     = "FINISH"
	EventFail       = "FAIL"
)

// Session errors.
var (
	ErrChannelsOutOfRange = errors.New("audio channel count out of range for plugin")
	ErrWrongState         = errors.New("operation not allowed in current session state")
)

// Options configures a Session.
type Options struct {
	// BlockSize and StepSize override the plugin's preferences when
	// non-zero.
	BlockSize int
	StepSize  int
	// RunID labels log entries. A random UUID is used when empty.
	RunID  string
	Logger ports.Logger
}

// Stats summarises a finished run.
type Stats struct {
	Blocks   int
	Features int
	Frames   int64
}

// Emit receives each feature a run produces. Features the plugin left
// without a timestamp carry the timestamp of the block that produced them.
type Emit func(output int, f vamp.Feature) error

// Session runs one plugin over one source.
type Session struct {
	id     string
	plugin vamp.Plugin
	source Source
	logger ports.Logger
	interp *statekit.Interpreter[Stats]

	sizes    Sizes
	channels int
	mix      bool
	stats    Stats
}

// NewSession prepares a run. The caller keeps ownership of p and src.
func NewSession(p vamp.Plugin, src Source, opts Options) (*Session, error) {
	if src.Channels() < 1 || src.Frames() < 0 {
		return nil, ErrNoAudio
	}

	id := opts.RunID
	if id == "" {
		id = uuid.NewString()
	}
	interp, err := buildSessionMachine()
	if err != nil {
		return nil, fmt.Errorf("failed to build state machine: %w", err)
	}
	interp.Start()

	s := &Session{
		id:     id,
		plugin: p,
		source: src,
		interp: interp,
		sizes:  ResolveSizes(p, opts.BlockSize, opts.StepSize),
	}
	if opts.Logger != nil {
		s.logger = opts.Logger.With(ports.F("run", id), ports.F("plugin", p.Identifier()))
	}
	return s, nil
}

func buildSessionMachine() (*statekit.Interpreter[Stats], error) {
	machine, err := statekit.NewMachine[Stats]("vamphost-session").
		WithInitial(statekit.StateID(StateCreated)).
		WithContext(Stats{}).
		State(statekit.StateID(StateCreated)).
		On(EventInitialise).Target(statekit.StateID(StateInitialised)).
		On(EventFail).Target(statekit.StateID(StateError)).Done().
		State(statekit.StateID(StateInitialised)).
		On(EventProcess).Target(statekit.StateID(StateProcessing)).
		On(EventFinish).Target(statekit.StateID(StateFinished)).
		On(EventFail).Target(statekit.StateID(StateError)).Done().
		State(statekit.StateID(StateProcessing)).
		On(EventFinish).Target(statekit.StateID(StateFinished)).
		On(EventFail).Target(statekit.StateID(StateError)).Done().
		State(statekit.StateID(StateFinished)).Done().
		State(statekit.StateID(StateError)).Done().
		Build()
	if err != nil {
		return nil, err
	}
	return statekit.NewInterpreter(machine), nil
}

// ID returns the run id.
func (s *Session) ID() string { return s.id }

// State returns the lifecycle state.
func (s *Session) State() State { return State(s.interp.State().Value) }

// Sizes returns the block and step sizes the run uses.
func (s *Session) Sizes() Sizes { return s.sizes }

// Channels returns the channel count the plugin was initialised with.
func (s *Session) Channels() int { return s.channels }

// MixesDown reports whether source channels are averaged to mono because
// the plugin cannot take them all.
func (s *Session) MixesDown() bool { return s.mix }

func (s *Session) send(event string) {
	s.interp.Send(statekit.Event{Type: statekit.EventType(event)})
}

func (s *Session) fail(ctx context.Context, err error) error {
	s.send(EventFail)
	s.log(ctx, ports.LevelError, "run failed", ports.Err(err))
	return err
}

// log writes to the session logger, or to the context's logger when the
// session was created without one.
func (s *Session) log(ctx context.Context, level ports.Level, msg string, fields ...ports.Field) {
	logger := s.logger
	if logger == nil {
		if logger = ports.LoggerFromContext(ctx); logger == nil {
			return
		}
		logger = logger.With(ports.F("run", s.id), ports.F("plugin", s.plugin.Identifier()))
	}
	switch level {
	case ports.LevelDebug:
		logger.Debug(ctx, msg, fields...)
	case ports.LevelWarn:
		logger.Warn(ctx, msg, fields...)
	case ports.LevelError:
		logger.Error(ctx, msg, fields...)
	default:
		logger.Info(ctx, msg, fields...)
	}
}

// Initialise checks the channel count and initialises the plugin. A
// source with more channels than a mono-capable plugin accepts is mixed
// down to one channel.
func (s *Session) Initialise(ctx context.Context) error {
	if s.State() != StateCreated {
		return fmt.Errorf("%w: initialise in %s", ErrWrongState, s.State())
	}

	channels := s.source.Channels()
	minCh, maxCh := s.plugin.MinChannelCount(), s.plugin.MaxChannelCount()
	if channels < minCh || channels > maxCh {
		if minCh != 1 {
			return s.fail(ctx, fmt.Errorf("%w: source has %d, plugin accepts %d to %d",
				ErrChannelsOutOfRange, channels, minCh, maxCh))
		}
		s.mix = true
		s.log(ctx, ports.LevelWarn, "mixing down to one channel", ports.F("channels", channels))
		channels = 1
	}

	s.log(ctx, ports.LevelDebug, "initialising",
		ports.F("channels", channels),
		ports.F("block_size", s.sizes.BlockSize),
		ports.F("step_size", s.sizes.StepSize),
		ports.F("rounded", s.sizes.Rounded))

	if err := s.plugin.Initialise(channels, s.sizes.StepSize, s.sizes.BlockSize); err != nil {
		return s.fail(ctx, err)
	}
	s.channels = channels
	s.send(EventInitialise)
	return nil
}

// Run initialises the plugin if needed, feeds every block and the
// remaining features to emit, and returns run statistics.
func (s *Session) Run(ctx context.Context, emit Emit) (Stats, error) {
	if s.State() == StateCreated {
		if err := s.Initialise(ctx); err != nil {
			return Stats{}, err
		}
	}
	if s.State() != StateInitialised {
		return Stats{}, fmt.Errorf("%w: run in %s", ErrWrongState, s.State())
	}
	s.send(EventProcess)

	start := time.Now()
	rate := s.source.SampleRate()
	total := s.source.Frames()
	block := vamp.NewBufferSet(s.source.Channels(), s.sizes.BlockSize)
	input := block
	if s.mix {
		input = vamp.NewBufferSet(1, s.sizes.BlockSize)
	}

	for frame := int64(0); frame < total; frame += int64(s.sizes.StepSize) {
		if err := ctx.Err(); err != nil {
			return s.stats, s.fail(ctx, err)
		}
		if _, err := s.source.ReadAt(block, frame); err != nil {
			return s.stats, s.fail(ctx, err)
		}
		if s.mix {
			mixdown(block, input)
		}

		ts := vamp.FrameToRealTime(frame, rate)
		fs, err := s.plugin.Process(input, ts)
		if err != nil {
			return s.stats, s.fail(ctx, fmt.Errorf("processing block at %s: %w", vamp.FormatRealTime(ts), err))
		}
		s.stats.Blocks++
		if err := s.emit(fs, ts, emit); err != nil {
			return s.stats, s.fail(ctx, err)
		}
	}

	fs, err := s.plugin.RemainingFeatures()
	if err != nil {
		return s.stats, s.fail(ctx, fmt.Errorf("remaining features: %w", err))
	}
	if err := s.emit(fs, vamp.FrameToRealTime(total, rate), emit); err != nil {
		return s.stats, s.fail(ctx, err)
	}

	s.stats.Frames = total
	s.send(EventFinish)
	s.log(ctx, ports.LevelInfo, "run complete",
		ports.F("blocks", s.stats.Blocks),
		ports.F("features", s.stats.Features),
		ports.F("elapsed", time.Since(start)))
	return s.stats, nil
}

// emit delivers fs in output order.
func (s *Session) emit(fs vamp.FeatureSet, ts time.Duration, emit Emit) error {
	if emit == nil || len(fs) == 0 {
		s.stats.Features += fs.Len()
		return nil
	}
	for output := 0; output < len(s.plugin.OutputDescriptors()); output++ {
		for _, f := range fs[output] {
			if !f.HasTimestamp {
				f.Timestamp = ts
			}
			s.stats.Features++
			if err := emit(output, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// mixdown averages every channel of in into the single channel of out.
func mixdown(in, out vamp.BufferSet) {
	dst := out.Channel(0)
	clear(dst)
	for c := 0; c < in.Channels(); c++ {
		for i, v := range in.Channel(c) {
			dst[i] += v
		}
	}
	n := float32(in.Channels())
	for i := range dst {
		dst[i] /= n
	}
}
