package pipeline

import (
	"bytes"
	"errors"
	"image"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-moodbot/internal/log"
	"github.com/teslashibe/go-moodbot/pkg/detection"
	"github.com/teslashibe/go-moodbot/pkg/emotion"
	"github.com/teslashibe/go-moodbot/pkg/response"
	"github.com/teslashibe/go-moodbot/pkg/stabilizer"
)

type fakeFrame struct {
	size      image.Point
	encodeErr error
	annotated []detection.Detection
	closed    bool
}

func (f *fakeFrame) Size() image.Point                   { return f.size }
func (f *fakeFrame) Annotate(dets []detection.Detection) { f.annotated = append(f.annotated, dets...) }
func (f *fakeFrame) Close() error                        { f.closed = true; return nil }

func (f *fakeFrame) JPEG(quality int) ([]byte, error) {
	if f.encodeErr != nil {
		return nil, f.encodeErr
	}
	return []byte{0xFF, 0xD8, byte(quality)}, nil
}

type fakeCamera struct {
	mu        sync.Mutex
	readErr   error
	encodeErr error
	frames    []*fakeFrame
	closed    atomic.Bool
}

func (c *fakeCamera) Read() (Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.readErr != nil {
		return nil, c.readErr
	}
	f := &fakeFrame{size: image.Pt(640, 480), encodeErr: c.encodeErr}
	c.frames = append(c.frames, f)
	return f, nil
}

func (c *fakeCamera) Close() error {
	c.closed.Store(true)
	return nil
}

type fakeAnalyzer struct {
	dets []detection.Detection
	err  error
}

func (a *fakeAnalyzer) Analyze(Frame) ([]detection.Detection, error) {
	return a.dets, a.err
}

type recorder struct {
	mu     sync.Mutex
	events []UpdateEvent
}

func (r *recorder) Enqueue(ev UpdateEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) all() []UpdateEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]UpdateEvent(nil), r.events...)
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestWorker(t *testing.T, out Dispatcher, clk *clock, opts ...Option) *Worker {
	t.Helper()
	gen := response.NewGenerator(response.MustLoadEmbedded(), response.NewRand(1))
	opts = append([]Option{
		WithClock(clk.now),
		WithRand(response.NewRand(2)),
		WithLogger(log.Discard()),
	}, opts...)
	w, err := New(DefaultConfig(), nil, out, gen, opts...)
	require.NoError(t, err)
	return w
}

func face(e emotion.Emotion) detection.Detection {
	return detection.Detection{Box: image.Rect(100, 100, 200, 200), Emotion: e, Confidence: 0.9}
}

func TestNew_RequiresDispatcher(t *testing.T) {
	_, err := New(DefaultConfig(), nil, nil, nil)
	assert.ErrorIs(t, err, ErrNoDispatcher)
}

func TestWorker_Mode(t *testing.T) {
	clk := &clock{t: time.Now()}
	assert.Equal(t, ModeSimulation, newTestWorker(t, &recorder{}, clk).Mode())
	assert.Equal(t, ModeLive, newTestWorker(t, &recorder{}, clk, WithAnalyzer(&fakeAnalyzer{})).Mode())
}

func TestWorker_LiveChangedThenQuiet(t *testing.T) {
	rec := &recorder{}
	clk := &clock{t: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)}
	an := &fakeAnalyzer{dets: []detection.Detection{face(emotion.Happy), face(emotion.Sad)}}
	w := newTestWorker(t, rec, clk, WithAnalyzer(an))
	cam := &fakeCamera{}

	require.Equal(t, OutcomeOK, w.Step(cam))
	clk.advance(33 * time.Millisecond)
	require.Equal(t, OutcomeOK, w.Step(cam))

	events := rec.all()
	require.Len(t, events, 2)

	first := events[0]
	assert.Equal(t, uint64(1), first.Seq)
	assert.Equal(t, emotion.Happy, first.Observed, "first face wins")
	assert.Equal(t, stabilizer.Decision{Kind: stabilizer.Changed, Emotion: emotion.Happy}, first.Decision)
	assert.Equal(t, emotion.Happy, first.Emotion)
	assert.Equal(t, "#FFD700", first.Color)
	assert.True(t, first.HasResponse())
	assert.True(t, response.MustLoadEmbedded().Contains(emotion.Happy, first.Response))
	assert.Equal(t, []byte{0xFF, 0xD8, 80}, first.Frame)
	assert.Equal(t, image.Pt(640, 480), first.FrameSize)

	second := events[1]
	assert.Equal(t, stabilizer.None, second.Decision.Kind)
	assert.Empty(t, second.Response)
	assert.Equal(t, emotion.Happy, second.Emotion)

	for _, f := range cam.frames {
		assert.True(t, f.closed, "frames are released")
		assert.Len(t, f.annotated, 2, "every face is annotated")
	}
}

func TestWorker_LiveCycle(t *testing.T) {
	rec := &recorder{}
	clk := &clock{t: time.Now()}
	w := newTestWorker(t, rec, clk, WithAnalyzer(&fakeAnalyzer{dets: []detection.Detection{face(emotion.Sad)}}))
	cam := &fakeCamera{}

	w.Step(cam)
	clk.advance(5 * time.Second)
	w.Step(cam)

	events := rec.all()
	require.Len(t, events, 2)
	assert.Equal(t, stabilizer.Changed, events[0].Decision.Kind)
	assert.Equal(t, stabilizer.Cycle, events[1].Decision.Kind)
	assert.NotEmpty(t, events[1].Response)
}

func TestWorker_NoFrameSkipsIteration(t *testing.T) {
	rec := &recorder{}
	w := newTestWorker(t, rec, &clock{t: time.Now()})

	outcome := w.Step(&fakeCamera{readErr: errors.New("device busy")})
	assert.Equal(t, OutcomeNoFrame, outcome)
	assert.Empty(t, rec.all())
}

func TestWorker_ReadFailuresAreLogged(t *testing.T) {
	var buf bytes.Buffer
	rec := &recorder{}
	w := newTestWorker(t, rec, &clock{t: time.Now()}, WithLogger(log.New(&buf, "info")))

	broken := &fakeCamera{readErr: errors.New("device unplugged")}
	for i := 0; i < 99; i++ {
		w.Step(broken)
	}
	assert.Equal(t, 1, strings.Count(buf.String(), "camera read failed"), "first failure of a streak")
	assert.Contains(t, buf.String(), "device unplugged")

	w.Step(broken)
	assert.Equal(t, 2, strings.Count(buf.String(), "camera read failed"), "every hundredth failure")

	w.Step(&fakeCamera{})
	w.Step(broken)
	assert.Equal(t, 3, strings.Count(buf.String(), "camera read failed"), "a good frame starts a new streak")
	assert.Len(t, rec.all(), 1)
}

func TestWorker_InferenceFailureTreatedAsNoFace(t *testing.T) {
	rec := &recorder{}
	w := newTestWorker(t, rec, &clock{t: time.Now()}, WithAnalyzer(&fakeAnalyzer{err: errors.New("bad tensor")}))

	outcome := w.Step(&fakeCamera{})
	assert.Equal(t, OutcomeInferenceFailed, outcome)

	events := rec.all()
	require.Len(t, events, 1)
	assert.Empty(t, events[0].Observed)
	assert.Equal(t, stabilizer.None, events[0].Decision.Kind)
	assert.NotEmpty(t, events[0].Frame)
}

func TestWorker_EncodeFailureStillDispatches(t *testing.T) {
	rec := &recorder{}
	w := newTestWorker(t, rec, &clock{t: time.Now()}, WithAnalyzer(&fakeAnalyzer{dets: []detection.Detection{face(emotion.Fear)}}))

	outcome := w.Step(&fakeCamera{encodeErr: errors.New("imencode")})
	assert.Equal(t, OutcomeEncodeFailed, outcome)

	events := rec.all()
	require.Len(t, events, 1)
	assert.Nil(t, events[0].Frame)
	assert.Equal(t, stabilizer.Changed, events[0].Decision.Kind)
}

func TestWorker_SimulationHoldsBoxBetweenDraws(t *testing.T) {
	rec := &recorder{}
	clk := &clock{t: time.Now()}
	w := newTestWorker(t, rec, clk)
	cam := &fakeCamera{}

	w.Step(cam)
	clk.advance(time.Second)
	w.Step(cam)
	clk.advance(2 * time.Second)
	w.Step(cam)

	events := rec.all()
	require.Len(t, events, 3)

	assert.NotEmpty(t, events[0].Observed)
	assert.Equal(t, stabilizer.Changed, events[0].Decision.Kind)
	assert.Empty(t, events[1].Observed, "nothing observed between draws")
	assert.NotEmpty(t, events[2].Observed, "new draw after the interval")

	want := image.Rect(160, 120, 480, 360)
	for i, f := range cam.frames {
		require.Len(t, f.annotated, 1, "frame %d", i)
		assert.Equal(t, want, f.annotated[0].Box)
		assert.True(t, f.annotated[0].Synthetic)
	}
	assert.Equal(t, events[0].Observed, cam.frames[1].annotated[0].Emotion)
}

func TestWorker_SimulationCoversAllEmotions(t *testing.T) {
	rec := &recorder{}
	clk := &clock{t: time.Now()}
	w := newTestWorker(t, rec, clk)
	cam := &fakeCamera{}

	const draws = 7000
	counts := make(map[emotion.Emotion]int)
	for i := 0; i < draws; i++ {
		w.Step(cam)
		clk.advance(3 * time.Second)
	}
	for _, ev := range rec.all() {
		counts[ev.Observed]++
	}

	require.Len(t, counts, emotion.Count)
	expected := draws / emotion.Count
	for _, e := range emotion.All() {
		assert.InDelta(t, expected, counts[e], float64(expected)/5, "%s drawn %d times", e, counts[e])
	}
}

func TestWorker_StartStop(t *testing.T) {
	rec := &recorder{}
	cam := &fakeCamera{}
	var opened atomic.Int32
	open := func() (Camera, error) {
		opened.Add(1)
		return cam, nil
	}

	cfg := DefaultConfig()
	cfg.FrameInterval = time.Millisecond
	w, err := New(cfg, open, rec, nil, WithLogger(log.Discard()))
	require.NoError(t, err)

	w.Wait() // no-op before the first start
	require.NoError(t, w.Start())
	require.NoError(t, w.Start())
	assert.True(t, w.Running())
	assert.Equal(t, int32(1), opened.Load(), "second start is a no-op")

	require.Eventually(t, func() bool { return len(rec.all()) >= 3 }, time.Second, time.Millisecond)

	w.Stop()
	w.Stop()
	w.Wait()
	assert.False(t, w.Running())
	assert.True(t, cam.closed.Load(), "camera released on exit")

	n := len(rec.all())
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, n, len(rec.all()), "no events after stop")

	require.NoError(t, w.Start())
	assert.Equal(t, int32(2), opened.Load())
	w.Stop()
	w.Wait()
}

func TestWorker_QualityReadAtStart(t *testing.T) {
	rec := &recorder{}
	cam := &fakeCamera{}
	var quality atomic.Int32
	quality.Store(70)

	cfg := DefaultConfig()
	cfg.FrameInterval = time.Millisecond
	w, err := New(cfg, func() (Camera, error) { return cam, nil }, rec, nil,
		WithLogger(log.Discard()),
		WithQuality(func() int { return int(quality.Load()) }))
	require.NoError(t, err)

	run := func() byte {
		t.Helper()
		before := len(rec.all())
		require.NoError(t, w.Start())
		require.Eventually(t, func() bool { return len(rec.all()) > before }, time.Second, time.Millisecond)
		w.Stop()
		w.Wait()
		return rec.all()[before].Frame[2]
	}

	assert.Equal(t, byte(70), run())

	quality.Store(40)
	assert.Equal(t, byte(40), run(), "new quality applies on the next start")

	quality.Store(0)
	assert.Equal(t, byte(cfg.JPEGQuality), run(), "out of range falls back to the config")
}

func TestWorker_StartErrors(t *testing.T) {
	w, err := New(DefaultConfig(), nil, &recorder{}, nil, WithLogger(log.Discard()))
	require.NoError(t, err)
	assert.ErrorIs(t, w.Start(), ErrNoCamera)

	boom := errors.New("no device")
	w, err = New(DefaultConfig(), func() (Camera, error) { return nil, boom }, &recorder{}, nil, WithLogger(log.Discard()))
	require.NoError(t, err)
	assert.ErrorIs(t, w.Start(), boom)
	assert.False(t, w.Running())
}

func TestConfig_Validate(t *testing.T) {
	assert.Empty(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.JPEGQuality = 0
	cfg.FrameInterval = 0
	assert.Len(t, cfg.Validate(), 2)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "ok", OutcomeOK.String())
	assert.Equal(t, "no_frame", OutcomeNoFrame.String())
	assert.Equal(t, "inference_failed", OutcomeInferenceFailed.String())
	assert.Equal(t, "encode_failed", OutcomeEncodeFailed.String())
}
