package pipeline

import (
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-moodbot/internal/log"
	"github.com/teslashibe/go-moodbot/pkg/debug"
	"github.com/teslashibe/go-moodbot/pkg/detection"
	"github.com/teslashibe/go-moodbot/pkg/emotion"
	"github.com/teslashibe/go-moodbot/pkg/metrics"
	"github.com/teslashibe/go-moodbot/pkg/response"
	"github.com/teslashibe/go-moodbot/pkg/stabilizer"
)

// Worker owns the camera, the stabilizer and the response generator.
// Start and Stop may be called from any goroutine; everything else runs
// on the loop goroutine.
type Worker struct {
	config    Config
	open      CameraOpener
	analyzer  Analyzer
	out       Dispatcher
	gen       *response.Generator
	stab      *stabilizer.Stabilizer
	rng       response.Rand
	now       func() time.Time
	logger    *slog.Logger
	qualityFn func() int

	mu      sync.Mutex // Serializes Start/Stop
	running atomic.Bool
	stop    chan struct{}
	done    chan struct{}
	runID   uuid.UUID
	seq     atomic.Uint64

	// Loop state
	simLast    time.Time
	simDet     *detection.Detection
	failStreak int
	readStreak int
	quality    int
}

// Option configures a Worker.
type Option func(*Worker)

// WithAnalyzer enables live mode. Without an analyzer the worker simulates.
func WithAnalyzer(a Analyzer) Option {
	return func(w *Worker) { w.analyzer = a }
}

// WithRand sets the random source used to draw simulated emotions.
func WithRand(r response.Rand) Option {
	return func(w *Worker) { w.rng = r }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(w *Worker) { w.now = now }
}

// WithQuality sets where the JPEG quality is read from at each Start.
// Values outside 1-100 fall back to Config.JPEGQuality.
func WithQuality(fn func() int) Option {
	return func(w *Worker) { w.qualityFn = fn }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Worker) { w.logger = l }
}

// New creates a stopped worker.
func New(config Config, open CameraOpener, out Dispatcher, gen *response.Generator, opts ...Option) (*Worker, error) {
	if out == nil {
		return nil, ErrNoDispatcher
	}
	config = config.withDefaults()
	w := &Worker{
		config:  config,
		open:    open,
		out:     out,
		gen:     gen,
		stab:    stabilizer.New(config.CycleInterval),
		now:     time.Now,
		quality: config.JPEGQuality,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.rng == nil {
		w.rng = response.NewRand(uint64(time.Now().UnixNano()))
	}
	if w.gen == nil {
		w.gen = response.NewGenerator(nil, w.rng)
	}
	if w.logger == nil {
		w.logger = log.Component("pipeline")
	}
	return w, nil
}

// Mode reports whether frames are classified or simulated.
func (w *Worker) Mode() Mode {
	if w.analyzer == nil {
		return ModeSimulation
	}
	return ModeLive
}

// Running reports whether the loop is active.
func (w *Worker) Running() bool {
	return w.running.Load()
}

// Start opens the camera and launches the loop. Calling Start on a running
// worker does nothing. If a previous loop is still finishing its last
// iteration, Start waits for it first.
func (w *Worker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running.Load() {
		return nil
	}
	if w.done != nil {
		<-w.done
	}
	if w.open == nil {
		return ErrNoCamera
	}

	cam, err := w.open()
	if err != nil {
		return fmt.Errorf("open camera: %w", err)
	}

	w.runID = uuid.New()
	w.stab.Reset()
	w.simDet = nil
	w.failStreak = 0
	w.readStreak = 0
	w.quality = w.currentQuality()
	w.stop = make(chan struct{})
	w.done = make(chan struct{})
	w.running.Store(true)
	metrics.PipelineRunning.Set(1)

	w.logger.Info("pipeline started",
		"run", w.runID,
		"mode", w.Mode(),
		"frame_interval", w.config.FrameInterval,
		"jpeg_quality", w.quality,
		"cycle_interval", w.config.CycleInterval)

	go w.loop(cam, w.stop, w.done)
	return nil
}

// Stop asks the loop to exit after its current iteration. It does not wait;
// use Wait for that. Calling Stop on a stopped worker does nothing.
func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running.CompareAndSwap(true, false) {
		return
	}
	close(w.stop)
	w.logger.Info("pipeline stopping", "run", w.runID)
}

// Wait blocks until the loop has exited and released the camera.
func (w *Worker) Wait() {
	w.mu.Lock()
	done := w.done
	w.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (w *Worker) loop(cam Camera, stop <-chan struct{}, done chan<- struct{}) {
	ticker := time.NewTicker(w.config.FrameInterval)
	defer ticker.Stop()
	defer close(done)
	defer func() {
		if err := cam.Close(); err != nil {
			w.logger.Warn("camera close failed", "error", err)
		}
		metrics.PipelineRunning.Set(0)
		w.logger.Info("pipeline stopped", "frames", w.seq.Load())
	}()

	for {
		select {
		case <-stop:
			return
		default:
		}

		w.Step(cam)

		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}

// Step runs a single iteration against cam and reports how it went.
// The loop calls it once per tick; tests call it directly.
func (w *Worker) Step(cam Camera) Outcome {
	start := w.now()
	began := time.Now()
	outcome := w.step(cam, start)
	metrics.FramesTotal.WithLabelValues(outcome.String()).Inc()
	metrics.IterationDuration.Observe(time.Since(began).Seconds())
	return outcome
}

func (w *Worker) step(cam Camera, now time.Time) Outcome {
	frame, err := cam.Read()
	if err != nil || frame == nil {
		w.readFailed(err)
		return OutcomeNoFrame
	}
	defer frame.Close()
	w.readStreak = 0

	outcome := OutcomeOK
	size := frame.Size()

	var observed emotion.Emotion
	var dets []detection.Detection
	if w.analyzer != nil {
		dets, err = w.analyzer.Analyze(frame)
		if err != nil {
			w.inferenceFailed(err)
			outcome = OutcomeInferenceFailed
			dets = nil
		} else {
			w.failStreak = 0
		}
		if p := detection.Primary(dets); p != nil {
			observed = p.Emotion
		}
	} else {
		observed, dets = w.simulate(size, now)
	}

	if len(dets) > 0 {
		frame.Annotate(dets)
	}

	decision := w.stab.Observe(observed, now)
	locked, _ := w.stab.Current()

	ev := UpdateEvent{
		ID:         uuid.New(),
		RunID:      w.runID,
		Seq:        w.seq.Add(1),
		FrameSize:  size,
		Detections: dets,
		Observed:   observed,
		Decision:   decision,
		Emotion:    locked,
		Color:      emotion.Hex(locked),
		Timestamp:  now,
	}

	if decision.Emits() {
		ev.Response = w.gen.Get(decision.Emotion, decision.ForceNew())
		metrics.DecisionsTotal.WithLabelValues(decision.Kind.String()).Inc()
		metrics.ResponsesTotal.WithLabelValues(string(decision.Emotion)).Inc()
		debug.Log(w.logger, "emotion decision",
			"kind", decision.Kind, "emotion", decision.Emotion, "response", ev.Response)
	}

	jpeg, err := frame.JPEG(w.quality)
	if err != nil {
		debug.Log(w.logger, "frame encode failed", "error", err)
		if outcome == OutcomeOK {
			outcome = OutcomeEncodeFailed
		}
	} else {
		ev.Frame = jpeg
	}

	w.out.Enqueue(ev)
	debug.FrameLog(w.logger, "frame dispatched",
		"seq", ev.Seq, "observed", observed, "faces", len(dets), "outcome", outcome)
	return outcome
}

// simulate draws a random emotion every SimulationInterval. Between draws
// nothing is observed but the last synthetic box stays on screen.
func (w *Worker) simulate(size image.Point, now time.Time) (emotion.Emotion, []detection.Detection) {
	if w.simDet != nil && now.Sub(w.simLast) < w.config.SimulationInterval {
		return "", []detection.Detection{*w.simDet}
	}

	all := emotion.All()
	e := all[w.rng.IntN(len(all))]
	d := detection.Synthetic(size, e)
	w.simDet = &d
	w.simLast = now
	debug.Log(w.logger, "simulated emotion", "emotion", e)
	return e, []detection.Detection{d}
}

// currentQuality asks the quality source, if any.
func (w *Worker) currentQuality() int {
	if w.qualityFn != nil {
		if q := w.qualityFn(); q >= 1 && q <= 100 {
			return q
		}
	}
	return w.config.JPEGQuality
}

// readFailed logs the first missing frame of a streak and every hundredth after.
func (w *Worker) readFailed(err error) {
	w.readStreak++
	if w.readStreak == 1 || w.readStreak%100 == 0 {
		w.logger.Warn("camera read failed, skipping frame",
			"error", err, "consecutive", w.readStreak)
	}
}

// inferenceFailed logs the first failure of a streak and every hundredth after.
func (w *Worker) inferenceFailed(err error) {
	w.failStreak++
	if w.failStreak == 1 || w.failStreak%100 == 0 {
		w.logger.Warn("inference failed, treating frame as empty",
			"error", err, "consecutive", w.failStreak)
	}
}
