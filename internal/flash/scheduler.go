// Package flash schedules timed message flashes from weighted categories.
package flash

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/subflash/internal/model"
)

// MinDelay is the floor applied to the interval and display duration.
const MinDelay = 5 * time.Millisecond

// Content is the read side of the content store.
type Content interface {
	Messages(category string) []string
	Weight(category string) float64
	ActiveCategories() []string
	CurrentCategory() string
}

// Summary describes a finished session.
type Summary struct {
	StartedAt  time.Time
	EndedAt    time.Time
	Flashes    int
	Categories map[string]int
	Reason     model.StopReason
	Settings   model.Settings
}

// Hooks are invoked outside the scheduler lock.
type Hooks struct {
	OnStop func(Summary)
}

// Options configures a Scheduler. Nil fields use the system clock,
// a time-seeded random source and a disabled logger.
type Options struct {
	Clock  Clock
	Rand   *rand.Rand
	Logger *zerolog.Logger
	Hooks  Hooks
}

// Status is the observable state after the latest tick.
type Status struct {
	Running bool
	Flashes int
	// Seconds is the remaining time when Countdown is set, elapsed time otherwise.
	Seconds   int
	Countdown bool
}

// Scheduler drives the select, show, hide and reschedule cycle.
type Scheduler struct {
	mu    sync.Mutex
	clock Clock
	sink  Sink
	log   zerolog.Logger
	hooks Hooks
	pick  picker

	running    bool
	settings   model.Settings
	content    Content
	flashes    int
	perCat     map[string]int
	startedAt  time.Time
	endAt      time.Time
	flashLimit int
	timer      Timer
	// gen identifies the current session; callbacks armed for an older one are ignored.
	gen uint64
}

// New returns a stopped Scheduler that presents through sink.
func New(sink Sink, opts Options) *Scheduler {
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock()
	}
	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = opts.Logger.With().Str("component", "flash").Logger()
	}
	return &Scheduler{
		clock:  clock,
		sink:   sink,
		log:    log,
		hooks:  opts.Hooks,
		pick:   picker{rnd: rnd},
		perCat: map[string]int{},
	}
}

// Start begins a session. It is a no-op while a session is running.
func (s *Scheduler) Start(settings model.Settings, content Content) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	eligible := eligibleCategories(content)
	total := 0
	for _, c := range eligible {
		total += len(content.Messages(c))
	}
	if total == 0 {
		return &NoContentError{Categories: eligible}
	}

	now := s.clock.Now()
	s.endAt = time.Time{}
	s.flashLimit = 0
	if settings.AutoStop {
		if settings.AutoStopMinutes != 0 {
			s.endAt = now.Add(time.Duration(settings.AutoStopMinutes * float64(time.Minute)))
		}
		s.flashLimit = settings.AutoStopFlashes
	}
	s.settings = settings
	s.content = content
	s.running = true
	s.flashes = 0
	s.perCat = map[string]int{}
	s.startedAt = now
	s.gen++
	s.scheduleLocked(0)

	s.log.Info().
		Strs("categories", eligible).
		Int("messages", total).
		Dur("interval", settings.Interval).
		Dur("duration", settings.Duration).
		Str("mode", string(settings.Mode)).
		Msg("flash session started")
	return nil
}

// Stop ends the running session and hides all outputs.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	summary := s.stopLocked(model.StopManual)
	s.mu.Unlock()
	s.notifyStop(summary)
}

// Reset clears the counters and auto-stop limits without touching the running flag.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flashes = 0
	s.perCat = map[string]int{}
	s.startedAt = s.clock.Now()
	s.endAt = time.Time{}
	s.flashLimit = 0
}

// Running reports whether a session is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Status returns the flash count and the remaining or elapsed seconds.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked(s.clock.Now())
}

func (s *Scheduler) statusLocked(now time.Time) Status {
	st := Status{Running: s.running, Flashes: s.flashes}
	if !s.endAt.IsZero() {
		st.Countdown = true
		remain := math.Ceil(s.endAt.Sub(now).Seconds())
		if remain < 0 {
			remain = 0
		}
		st.Seconds = int(remain)
		return st
	}
	if !s.startedAt.IsZero() {
		st.Seconds = int(now.Sub(s.startedAt) / time.Second)
	}
	return st
}

// scheduleLocked arms the next tick for the current session.
func (s *Scheduler) scheduleLocked(d time.Duration) {
	gen := s.gen
	s.timer = s.clock.AfterFunc(d, func() { s.tick(gen) })
}

func (s *Scheduler) tick(gen uint64) {
	s.mu.Lock()
	summary, stopped := s.tickLocked(gen)
	s.mu.Unlock()
	if stopped {
		s.notifyStop(summary)
	}
}

func (s *Scheduler) tickLocked(gen uint64) (Summary, bool) {
	if !s.running || gen != s.gen {
		return Summary{}, false
	}
	now := s.clock.Now()
	if !s.endAt.IsZero() && !now.Before(s.endAt) {
		return s.stopLocked(model.StopDeadline), true
	}
	if s.flashLimit != 0 && s.flashes >= s.flashLimit {
		return s.stopLocked(model.StopLimit), true
	}

	interval := floorDelay(s.settings.Interval)
	category := pickWeighted(s.pick.rnd, eligibleCategories(s.content), s.content.Weight)
	pool := s.content.Messages(category)
	if len(pool) == 0 {
		s.log.Debug().Str("category", category).Msg("empty category, skipping tick")
		s.scheduleLocked(interval)
		return Summary{}, false
	}

	text := s.pick.message(pool, s.settings.NoRepeat)
	if s.settings.Mode == model.ModeWord {
		text = s.pick.word(text)
	}
	s.sink.Show(text)
	s.clock.AfterFunc(floorDelay(s.settings.Duration), func() { s.hide(gen) })

	s.flashes++
	s.perCat[category]++
	s.log.Debug().Int("flash", s.flashes).Str("category", category).Msg("flash shown")

	s.scheduleLocked(interval)
	return Summary{}, false
}

func (s *Scheduler) hide(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.sink.Hide()
}

func (s *Scheduler) stopLocked(reason model.StopReason) Summary {
	s.running = false
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.sink.Hide()

	perCat := make(map[string]int, len(s.perCat))
	for k, v := range s.perCat {
		perCat[k] = v
	}
	summary := Summary{
		StartedAt:  s.startedAt,
		EndedAt:    s.clock.Now(),
		Flashes:    s.flashes,
		Categories: perCat,
		Reason:     reason,
		Settings:   s.settings,
	}
	s.log.Info().
		Int("flashes", summary.Flashes).
		Str("reason", string(reason)).
		Dur("elapsed", summary.EndedAt.Sub(summary.StartedAt)).
		Msg("flash session stopped")
	return summary
}

func (s *Scheduler) notifyStop(summary Summary) {
	if s.hooks.OnStop != nil {
		s.hooks.OnStop(summary)
	}
}

// eligibleCategories returns the active set, or the current category when it is empty.
func eligibleCategories(content Content) []string {
	if active := content.ActiveCategories(); len(active) > 0 {
		return active
	}
	return []string{content.CurrentCategory()}
}

func floorDelay(d time.Duration) time.Duration {
	if d < MinDelay {
		return MinDelay
	}
	return d
}
