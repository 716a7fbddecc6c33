// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"errors"
	"math"
	"testing"
	"testing/fstest"
	"time"

	"github.com/ik5/audmux/audio"
	"github.com/ik5/audmux/backend"
	"github.com/ik5/audmux/formats/wav"
	"github.com/ik5/audmux/internal/audiotest"
	"github.com/ik5/audmux/source"
)

// 1kHz mono with 100ms buffers keeps frame arithmetic readable.
var testFormat = backend.Format{SampleRate: 1000, Channels: 1, BufferFrames: 100, Sample: backend.S16}

const half = 16384 // 0.5 once scaled

func testRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})
	return reg
}

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"sfx/tone.wav":   {Data: audiotest.WAV(1000, 1, audiotest.Constant(1000, 1, half))},
		"sfx/short.wav":  {Data: audiotest.WAV(1000, 1, audiotest.Constant(150, 1, half))},
		"sfx/low.wav":    {Data: audiotest.WAV(500, 1, audiotest.Constant(100, 1, half))},
		"sfx/bad.wav":    {Data: []byte("not a riff file at all")},
		"sfx/readme.txt": {Data: []byte("notes")},
		"sfx/sub/x.wav":  {Data: audiotest.WAV(1000, 1, audiotest.Constant(10, 1, half))},
	}
}

func newTestManager(t testing.TB, f backend.Format, opts ...Option) *Manager {
	t.Helper()

	opts = append([]Option{WithFS(testFS()), WithThreaded(false)}, opts...)
	m, err := New(backend.NewTicker(f, nil, 0), testRegistry(), opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })

	return m
}

func mustSound(t testing.TB, m *Manager, file, category, prefix string) *Sound {
	t.Helper()

	snd, err := m.CreateSound(file, category, prefix)
	if err != nil {
		t.Fatalf("CreateSound(%q) error = %v", file, err)
	}
	return snd
}

func mustPlay(t testing.TB, snd *Sound, fade time.Duration, looping bool) Voice {
	t.Helper()

	v, err := snd.Play(fade, looping)
	if err != nil {
		t.Fatalf("Play(%s) error = %v", snd.Name(), err)
	}
	return v
}

// mixOnce renders one device buffer.
func mixOnce(m *Manager) []float32 {
	f := m.Format()
	out := make([]float32, f.BufferFrames*f.Channels)
	m.Mix(out)
	return out
}

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-3
}

func TestNew(t *testing.T) {
	t.Parallel()

	if _, err := New(backend.NewTicker(testFormat, nil, 0), nil); !errors.Is(err, ErrNoRegistry) {
		t.Errorf("New(nil registry) error = %v, want ErrNoRegistry", err)
	}
	if _, err := New(backend.NewTicker(backend.Format{}, nil, 0), testRegistry()); !errors.Is(err, backend.ErrFormat) {
		t.Errorf("New(zero format) error = %v, want ErrFormat", err)
	}

	m := newTestManager(t, testFormat,
		WithVoices(4),
		WithGlobalGain(0.5),
		WithCategory("music", 0.25, source.Streamed, source.RAM),
	)
	if m.Capacity() != 4 || m.FreeVoices() != 4 {
		t.Errorf("Capacity() = %d, FreeVoices() = %d, want 4, 4", m.Capacity(), m.FreeVoices())
	}
	if m.GlobalGain() != 0.5 {
		t.Errorf("GlobalGain() = %v, want 0.5", m.GlobalGain())
	}
	if _, ok := m.Category(DefaultCategory); !ok {
		t.Error("default category missing")
	}
	c, ok := m.Category("music")
	if !ok {
		t.Fatal("music category missing")
	}
	if c.Gain() != 0.25 || c.SourceMode() != source.RAM || !c.IsStreamed() {
		t.Errorf("music = gain %v mode %v streamed %v", c.Gain(), c.SourceMode(), c.IsStreamed())
	}
}

func TestManager_CreateCategory(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, testFormat)

	c, err := m.CreateCategory("ui", source.Managed, source.Disk)
	if err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}
	if !c.IsMemoryManaged() || c.Name() != "ui" || c.Gain() != 1 {
		t.Errorf("category = %q managed %v gain %v", c.Name(), c.IsMemoryManaged(), c.Gain())
	}
	if _, err := m.CreateCategory("ui", source.Streamed, source.Disk); !errors.Is(err, ErrCategoryExists) {
		t.Errorf("duplicate CreateCategory() error = %v, want ErrCategoryExists", err)
	}

	c.SetGain(-3)
	if c.Gain() != 0 {
		t.Errorf("Gain() after SetGain(-3) = %v, want 0", c.Gain())
	}
}

func TestManager_CreateSound(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, testFormat)

	snd := mustSound(t, m, `sfx\tone.wav`, "", "ui.")
	if snd.Name() != "ui.tone" {
		t.Errorf("Name() = %q, want ui.tone", snd.Name())
	}
	if snd.Filename() != "sfx/tone.wav" {
		t.Errorf("Filename() = %q, want sfx/tone.wav", snd.Filename())
	}
	if snd.Category().Name() != DefaultCategory {
		t.Errorf("Category() = %q, want %q", snd.Category().Name(), DefaultCategory)
	}
	if snd.Duration() != 1 || snd.Info().Channels != 1 || snd.Info().SamplingRate != 1000 {
		t.Errorf("Info() = %+v", snd.Info())
	}

	if _, err := m.CreateSound("sfx/tone.wav", "", "ui."); !errors.Is(err, ErrSoundExists) {
		t.Errorf("duplicate error = %v, want ErrSoundExists", err)
	}
	if _, err := m.CreateSound("sfx/tone.wav", "nope", ""); !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("unknown category error = %v, want ErrUnknownCategory", err)
	}
	if got, ok := m.Sound("ui.tone"); !ok || got != snd {
		t.Errorf("Sound(ui.tone) = %v, %v", got, ok)
	}
}

func TestManager_UnavailableSound(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, testFormat)

	for _, file := range []string{"sfx/bad.wav", "sfx/missing.wav"} {
		snd, err := m.CreateSound(file, "", "")
		if err != nil {
			t.Fatalf("CreateSound(%q) error = %v", file, err)
		}
		if snd.Available() || snd.Err() == nil {
			t.Errorf("%s: Available() = true, want false", file)
		}
		if _, err := snd.Play(0, false); !errors.Is(err, ErrSoundUnavailable) {
			t.Errorf("%s: Play() error = %v, want ErrSoundUnavailable", file, err)
		}
		if _, err := snd.Replay(0, false); !errors.Is(err, ErrSoundUnavailable) {
			t.Errorf("%s: Replay() error = %v, want ErrSoundUnavailable", file, err)
		}
	}
	if m.FreeVoices() != m.Capacity() {
		t.Errorf("FreeVoices() = %d, want %d", m.FreeVoices(), m.Capacity())
	}
}

func TestManager_CreateSoundsFromPath(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, testFormat)

	sounds, err := m.CreateSoundsFromPath("sfx", "", "sfx.")
	if err != nil {
		t.Fatalf("CreateSoundsFromPath() error = %v", err)
	}
	// bad.wav registers as unavailable, readme.txt and sub/ are skipped
	if len(sounds) != 4 {
		t.Errorf("got %d sounds, want 4", len(sounds))
	}

	want := []string{"sfx.bad", "sfx.low", "sfx.short", "sfx.tone"}
	got := m.Sounds()
	if len(got) != len(want) {
		t.Fatalf("Sounds() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Sounds()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if _, err := m.CreateSoundsFromPath("sfx", "", "sfx."); !errors.Is(err, ErrSoundExists) {
		t.Errorf("second pass error = %v, want ErrSoundExists", err)
	}
	if _, err := m.CreateSoundsFromPath("nowhere", "", ""); err == nil {
		t.Error("missing directory: want error")
	}
}

func TestManager_DestroySound(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, testFormat, WithVoices(4))

	a := mustSound(t, m, "sfx/tone.wav", "", "a.")
	mustSound(t, m, "sfx/tone.wav", "", "b.")
	mustSound(t, m, "sfx/short.wav", "", "b.")

	v := mustPlay(t, a, 0, true)
	mustPlay(t, a, 0, true)
	if m.FreeVoices() != 2 {
		t.Fatalf("FreeVoices() = %d, want 2", m.FreeVoices())
	}

	if err := m.DestroySound("a.tone"); err != nil {
		t.Fatalf("DestroySound() error = %v", err)
	}
	if m.FreeVoices() != 4 {
		t.Errorf("FreeVoices() after destroy = %d, want 4", m.FreeVoices())
	}
	if v.Valid() {
		t.Error("voice of destroyed sound still valid")
	}
	if _, ok := m.Sound("a.tone"); ok {
		t.Error("destroyed sound still registered")
	}
	if err := m.DestroySound("a.tone"); !errors.Is(err, ErrUnknownSound) {
		t.Errorf("second DestroySound() error = %v, want ErrUnknownSound", err)
	}
	if _, err := a.Play(0, false); !errors.Is(err, ErrUnknownSound) {
		t.Errorf("Play() on destroyed sound error = %v, want ErrUnknownSound", err)
	}

	if n := m.DestroySoundsWithPrefix("b."); n != 2 {
		t.Errorf("DestroySoundsWithPrefix() = %d, want 2", n)
	}
	if len(m.Sounds()) != 0 {
		t.Errorf("Sounds() = %v, want none", m.Sounds())
	}
}

func TestManager_PlayByName(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, testFormat)
	mustSound(t, m, "sfx/tone.wav", "", "")

	if _, err := m.Play("tone", 0, false); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if !m.IsAnyPlaying("tone") || m.IsAnyFading("tone") {
		t.Error("tone should be playing and not fading")
	}
	if _, err := m.Play("nope", 0, false); !errors.Is(err, ErrUnknownSound) {
		t.Errorf("Play(nope) error = %v, want ErrUnknownSound", err)
	}

	if err := m.Stop("tone", time.Second); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if !m.IsAnyFading("tone") {
		t.Error("tone should be fading out")
	}
	if err := m.Stop("nope", 0); !errors.Is(err, ErrUnknownSound) {
		t.Errorf("Stop(nope) error = %v, want ErrUnknownSound", err)
	}
	if m.IsAnyPlaying("nope") || m.IsAnyFading("nope") {
		t.Error("unknown sound reported active")
	}
}

func TestManager_StopCategory(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, testFormat, WithCategory("music", 1, source.Streamed, source.Disk))

	music := mustSound(t, m, "sfx/tone.wav", "music", "m.")
	sfx := mustSound(t, m, "sfx/tone.wav", "", "s.")
	mustPlay(t, music, 0, true)
	mustPlay(t, sfx, 0, true)

	if err := m.StopCategory("music", 0); err != nil {
		t.Fatalf("StopCategory() error = %v", err)
	}
	if music.VoiceCount() != 0 {
		t.Errorf("music voices = %d, want 0", music.VoiceCount())
	}
	if !sfx.IsPlaying() {
		t.Error("sfx stopped with the music category")
	}
	if err := m.StopCategory("nope", 0); !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("StopCategory(nope) error = %v, want ErrUnknownCategory", err)
	}
}

func TestManager_StopAllReleasesEveryVoice(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, testFormat, WithVoices(8))
	snd := mustSound(t, m, "sfx/tone.wav", "", "")

	for range 3 {
		mustPlay(t, snd, 0, false)
	}
	if snd.VoiceCount() != 3 {
		t.Fatalf("VoiceCount() = %d, want 3", snd.VoiceCount())
	}
	if m.FreeVoices() != 5 {
		t.Fatalf("FreeVoices() = %d, want 5", m.FreeVoices())
	}

	snd.StopAll(0)
	if m.FreeVoices() != 8 {
		t.Errorf("FreeVoices() after StopAll = %d, want 8", m.FreeVoices())
	}
	if snd.IsAnyPlaying() {
		t.Error("IsAnyPlaying() after StopAll = true")
	}
}

func TestManager_AllocateSource(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, testFormat, WithVoices(2))

	a, err := m.AllocateSource()
	if err != nil {
		t.Fatalf("AllocateSource() error = %v", err)
	}
	if !a.Valid() || a.Sound() != "" || a.State() != Stopped {
		t.Errorf("raw voice = valid %v sound %q state %v", a.Valid(), a.Sound(), a.State())
	}
	if m.FreeVoices() != 1 {
		t.Errorf("FreeVoices() = %d, want 1", m.FreeVoices())
	}

	b, err := m.AllocateSource()
	if err != nil {
		t.Fatalf("AllocateSource() error = %v", err)
	}
	a.Lock()
	b.Lock()
	if _, err := m.AllocateSource(); !errors.Is(err, ErrNoVoice) {
		t.Errorf("AllocateSource() on locked pool error = %v, want ErrNoVoice", err)
	}

	// an unlocked raw voice is the first to go
	b.Unlock()
	snd := mustSound(t, m, "sfx/tone.wav", "", "")
	v := mustPlay(t, snd, 0, false)
	if b.Valid() {
		t.Error("raw voice survived eviction")
	}
	if v.ID() != b.ID() {
		t.Errorf("played on slot %d, want evicted slot %d", v.ID(), b.ID())
	}

	a.Release()
	if a.Valid() || m.FreeVoices() != 1 {
		t.Errorf("after Release: valid %v, free %d", a.Valid(), m.FreeVoices())
	}
}

func TestManager_EvictionOrder(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, testFormat, WithVoices(3))

	play := func(prefix string) (*Sound, Voice) {
		snd := mustSound(t, m, "sfx/tone.wav", "", prefix)
		return snd, mustPlay(t, snd, 0, true)
	}

	paused, pv := play("paused.")
	pv.Pause(0)
	fading, fv := play("fading.")
	fv.Stop(time.Second)
	loud, _ := play("loud.")

	// fading out toward stop goes before paused
	first, _ := play("first.")
	if fading.VoiceCount() != 0 || paused.VoiceCount() != 1 {
		t.Fatalf("after first eviction: fading %d paused %d voices", fading.VoiceCount(), paused.VoiceCount())
	}

	second, _ := play("second.")
	if paused.VoiceCount() != 0 {
		t.Fatal("paused voice was not evicted second")
	}

	// all playing now: the quietest goes
	first.SetGain(0.1)
	second.SetGain(0.5)
	play("third.")
	if first.VoiceCount() != 0 || second.VoiceCount() != 1 || loud.VoiceCount() != 1 {
		t.Errorf("quietest not evicted: first %d second %d loud %d",
			first.VoiceCount(), second.VoiceCount(), loud.VoiceCount())
	}
}

func TestManager_LockedVoiceIsNotEvicted(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, testFormat, WithVoices(1))

	a := mustSound(t, m, "sfx/tone.wav", "", "a.")
	b := mustSound(t, m, "sfx/tone.wav", "", "b.")

	mustPlay(t, a, 0, true)
	a.Lock()
	if !a.IsLocked() {
		t.Fatal("IsLocked() = false after Lock")
	}

	if _, err := b.Play(0, false); !errors.Is(err, ErrNoVoice) {
		t.Errorf("Play() with locked pool error = %v, want ErrNoVoice", err)
	}
	if !a.IsPlaying() {
		t.Error("locked voice was disturbed")
	}

	a.Unlock()
	mustPlay(t, b, 0, false)
	if a.VoiceCount() != 0 || !b.IsPlaying() {
		t.Error("unlocked voice was not evicted")
	}
}

func TestManager_GainPropagatesToNextMix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		set  func(m *Manager, snd *Sound)
		want float32
	}{
		{"unchanged", func(*Manager, *Sound) {}, 0.5},
		{"instance", func(_ *Manager, snd *Sound) { snd.SetGain(0.5) }, 0.25},
		{"category", func(_ *Manager, snd *Sound) { snd.Category().SetGain(0.5) }, 0.25},
		{"global", func(m *Manager, _ *Sound) { m.SetGlobalGain(0.5) }, 0.25},
		{"all", func(m *Manager, snd *Sound) {
			snd.SetGain(0.5)
			snd.Category().SetGain(0.5)
			m.SetGlobalGain(0.5)
		}, 0.0625},
		{"muted", func(m *Manager, _ *Sound) { m.SetGlobalGain(0) }, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := newTestManager(t, testFormat)
			snd := mustSound(t, m, "sfx/tone.wav", "", "")
			mustPlay(t, snd, 0, false)

			if out := mixOnce(m); !near(out[0], 0.5) {
				t.Fatalf("before: out[0] = %v, want 0.5", out[0])
			}

			tt.set(m, snd)
			m.Update()
			out := mixOnce(m)
			for i, s := range out {
				if !near(s, tt.want) {
					t.Fatalf("out[%d] = %v, want %v", i, s, tt.want)
				}
			}
		})
	}
}

func TestManager_SuspendResume(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, testFormat)

	a := mustSound(t, m, "sfx/tone.wav", "", "a.")
	b := mustSound(t, m, "sfx/tone.wav", "", "b.")
	held := mustSound(t, m, "sfx/tone.wav", "", "held.")
	mustPlay(t, a, 0, true)
	mustPlay(t, b, time.Second, true)
	mustPlay(t, held, 0, true)
	held.Pause(0)

	m.Suspend()
	if !a.IsPaused() || !b.IsPaused() {
		t.Fatalf("after Suspend: a %v, b %v", a.Voice().State(), b.Voice().State())
	}
	for i, s := range mixOnce(m) {
		if s != 0 {
			t.Fatalf("suspended mix out[%d] = %v, want 0", i, s)
		}
	}

	m.Resume()
	if !a.IsPlaying() || !b.IsPlaying() {
		t.Errorf("after Resume: a %v, b %v", a.Voice().State(), b.Voice().State())
	}
	if !held.IsPaused() {
		t.Error("voice paused before Suspend was resumed")
	}
}

func TestManager_Stats(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, testFormat, WithVoices(2))
	snd := mustSound(t, m, "sfx/tone.wav", "", "")
	v := mustPlay(t, snd, 0, true)
	v.SetGain(0.5)
	v.Lock()
	mixOnce(m)

	stats := m.Stats()
	if len(stats) != 2 {
		t.Fatalf("len(Stats()) = %d, want 2", len(stats))
	}

	st := stats[v.ID()]
	if !st.Bound || st.Sound != "tone" || st.State != Playing || !st.Looping || !st.Locked {
		t.Errorf("stat = %+v", st)
	}
	if st.PlayID != v.PlayID() {
		t.Errorf("PlayID = %v, want %v", st.PlayID, v.PlayID())
	}
	if math.Abs(st.Gain-0.5) > 1e-9 || math.Abs(st.Offset-0.1) > 1e-9 {
		t.Errorf("gain %v offset %v, want 0.5 and 0.1", st.Gain, st.Offset)
	}
	if st.Buffered != 300 {
		t.Errorf("Buffered = %d, want 300", st.Buffered)
	}
	if other := stats[1-v.ID()]; other.Bound || other.State != Stopped {
		t.Errorf("free slot = %+v", other)
	}
	if m.Clock() != 100*time.Millisecond {
		t.Errorf("Clock() = %v, want 100ms", m.Clock())
	}
}

func TestManager_Closed(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, testFormat)
	snd := mustSound(t, m, "sfx/tone.wav", "", "")
	v := mustPlay(t, snd, 0, true)

	if err := m.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := m.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if v.Valid() {
		t.Error("voice valid after Close")
	}
	if _, err := snd.Play(0, false); !errors.Is(err, ErrClosed) {
		t.Errorf("Play() after Close error = %v, want ErrClosed", err)
	}
	if _, err := m.AllocateSource(); !errors.Is(err, ErrClosed) {
		t.Errorf("AllocateSource() after Close error = %v, want ErrClosed", err)
	}
}
