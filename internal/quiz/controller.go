package quiz

import (
	"context"
	"time"
)

// Controller owns the state of a single playthrough.
//
// It is not safe for concurrent use: commands, ticks, advances and batch
// deliveries must be serialized by the caller (the Bubble Tea update loop
// does this). Fetch is the only method that may run elsewhere; it reads
// nothing but the source.
type Controller struct {
	settings Settings
	source   Source
	clock    Clock
	shuffler *Shuffler

	closed bool
	phase  Phase

	questions []Question
	loading   bool
	stock     []Question
	hasStock  bool
	request   uint64
	requests  uint64
	fetchErr  error

	current     int
	correct     int
	selection   int
	lastCorrect bool
	penalties   int

	outcome         Outcome
	reason          Reason
	timeAtFinish    time.Duration
	hasTimeAtFinish bool

	remaining       time.Duration
	anchorAt        time.Time
	anchorRemaining time.Duration
	ticking         bool
	epoch           uint64

	pending uint64
	seq     uint64
}

// NewController builds a controller in the NotStarted phase. A nil clock
// uses wall time; a nil shuffler is seeded from the current time.
func NewController(settings Settings, source Source, clock Clock, shuffler *Shuffler) *Controller {
	if clock == nil {
		clock = realClock{}
	}
	if shuffler == nil {
		shuffler = NewShuffler(0)
	}
	c := &Controller{
		settings: settings,
		source:   source,
		clock:    clock,
		shuffler: shuffler,
	}
	c.resetSession()
	return c
}

// Settings returns the rules the controller was built with.
func (c *Controller) Settings() Settings {
	return c.settings
}

// Prefetch requests a question set ahead of Start when none is stocked or in flight.
func (c *Controller) Prefetch() Request {
	if c.closed || c.hasStock || c.request != 0 {
		return Request{}
	}
	return c.newRequest()
}

// Start begins a session and reports whether it did. It is a no-op while a
// session is in progress, once the clock has run out, or after Close; a
// session still loading after a failed fetch gets a new Request instead.
// The returned Request must be executed with Fetch when it is pending.
func (c *Controller) Start() (Request, bool) {
	if c.closed {
		return Request{}, false
	}
	if c.phase == PhaseInProgress {
		// A running session whose fetch failed asks for its questions again.
		if c.loading && c.request == 0 {
			c.fetchErr = nil
			return c.newRequest(), false
		}
		return Request{}, false
	}
	if c.remaining <= 0 {
		return Request{}, false
	}
	c.resetSession()
	c.phase = PhaseInProgress
	c.epoch++
	c.ticking = true
	now := c.clock.Now()

	if c.hasStock {
		c.questions = c.stock
		c.stock = nil
		c.hasStock = false
		c.anchor(now)
		return Request{}, true
	}

	c.loading = true
	c.anchor(now)
	if c.request != 0 {
		return Request{}, true
	}
	return c.newRequest(), true
}

// Answer selects an option for the current question. Invalid or repeated
// answers are ignored. When the session continues, the returned Advance
// must be handed back to Advance after its delay.
func (c *Controller) Answer(optionIndex int) (Advance, bool) {
	if c.closed || c.phase != PhaseInProgress || c.loading || c.selection >= 0 {
		return Advance{}, false
	}
	if c.current >= len(c.questions) {
		return Advance{}, false
	}
	q := c.questions[c.current]
	if optionIndex < 0 || optionIndex >= len(q.Options) {
		return Advance{}, false
	}

	now := c.clock.Now()
	c.sync(now)
	c.evaluate()
	if c.phase != PhaseInProgress {
		return Advance{}, false
	}

	c.selection = optionIndex
	if q.IsCorrect(optionIndex) {
		c.correct++
		c.lastCorrect = true
	} else {
		c.lastCorrect = false
		c.penalties++
		c.remaining -= c.settings.Penalty
		if c.remaining < 0 {
			c.remaining = 0
		}
		c.anchor(now)
	}

	c.evaluate()
	if c.phase != PhaseInProgress {
		return Advance{}, false
	}
	c.seq++
	c.pending = c.seq
	return Advance{Epoch: c.epoch, Seq: c.seq, Delay: c.settings.AdvanceDelay}, true
}

// Advance moves to the next question if a is still the pending advance.
func (c *Controller) Advance(a Advance) bool {
	if c.closed || c.phase != PhaseInProgress || c.pending == 0 {
		return false
	}
	if a.Epoch != c.epoch || a.Seq != c.pending {
		return false
	}
	c.pending = 0
	c.current++
	c.selection = -1
	c.lastCorrect = false
	c.sync(c.clock.Now())
	c.evaluate()
	return true
}

// Tick updates the countdown. Ticks from a cancelled subscription are
// ignored. It reports whether the subscription is still live.
func (c *Controller) Tick(epoch uint64) bool {
	if c.closed || !c.ticking || epoch != c.epoch || c.phase != PhaseInProgress {
		return false
	}
	c.sync(c.clock.Now())
	c.evaluate()
	return c.ticking
}

// Retry discards the current session and prefetches a fresh question set.
// Pending advances and ticks from the discarded session are cancelled.
func (c *Controller) Retry() Request {
	if c.closed {
		return Request{}
	}
	c.epoch++
	c.ticking = false
	c.resetSession()
	c.phase = PhaseNotStarted
	c.stock = nil
	c.hasStock = false
	c.fetchErr = nil
	return c.newRequest()
}

// Close cancels the countdown and any pending advance; later calls are no-ops.
func (c *Controller) Close() {
	c.closed = true
	c.ticking = false
	c.pending = 0
	c.epoch++
}

// Fetch executes req against the source. It does not touch session state.
func (c *Controller) Fetch(ctx context.Context, req Request) Batch {
	if c.source == nil {
		return Batch{Request: req, Err: ErrNoSource}
	}
	questions, err := c.source.Questions(ctx)
	return Batch{Request: req, Questions: questions, Err: err}
}

// Deliver installs the result of a Fetch and reports whether it was applied.
// Results of superseded requests are dropped. A failed fetch leaves the
// question list empty.
func (c *Controller) Deliver(b Batch) bool {
	if c.closed || b.Request.ID == 0 || b.Request.ID != c.request {
		return false
	}
	c.request = 0
	if b.Err != nil {
		c.fetchErr = b.Err
		return true
	}
	questions, err := c.prepare(b.Questions)
	if err != nil {
		c.fetchErr = err
		return true
	}
	c.fetchErr = nil
	if c.phase == PhaseInProgress && c.loading {
		c.questions = questions
		c.loading = false
		c.anchor(c.clock.Now())
		return true
	}
	c.stock = questions
	c.hasStock = true
	return true
}

// Snapshot returns the current read model.
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		Phase:           c.phase,
		Loading:         c.loading,
		Ready:           c.hasStock,
		FetchErr:        c.fetchErr,
		Remaining:       c.remaining,
		CurrentIndex:    c.current,
		Total:           len(c.questions),
		Selection:       c.selection,
		HasSelection:    c.selection >= 0,
		LastCorrect:     c.lastCorrect,
		Correct:         c.correct,
		Required:        c.settings.RequiredCorrect,
		Penalties:       c.penalties,
		Outcome:         c.outcome,
		Reason:          c.reason,
		TimeAtFinish:    c.timeAtFinish,
		HasTimeAtFinish: c.hasTimeAtFinish,
		Epoch:           c.epoch,
		Ticking:         c.ticking,
	}
	if c.phase == PhaseInProgress && c.current < len(c.questions) {
		q := c.questions[c.current]
		q.Options = append([]string(nil), q.Options...)
		s.Question = &q
	}
	return s
}

func (c *Controller) newRequest() Request {
	c.requests++
	c.request = c.requests
	return Request{ID: c.request}
}

func (c *Controller) prepare(questions []Question) ([]Question, error) {
	questions = NormalizeQuestions(questions)
	if err := ValidateQuestions(questions); err != nil {
		return nil, err
	}
	shuffled := c.shuffler.Questions(questions)
	if limit := c.settings.QuestionLimit; limit > 0 && len(shuffled) > limit {
		shuffled = shuffled[:limit]
	}
	return shuffled, nil
}

func (c *Controller) resetSession() {
	c.questions = nil
	c.loading = false
	c.current = 0
	c.correct = 0
	c.selection = -1
	c.lastCorrect = false
	c.penalties = 0
	c.outcome = OutcomeNone
	c.reason = ReasonNone
	c.timeAtFinish = 0
	c.hasTimeAtFinish = false
	c.remaining = c.settings.Budget
	c.anchorRemaining = c.settings.Budget
	c.anchorAt = time.Time{}
	c.pending = 0
}

func (c *Controller) anchor(now time.Time) {
	c.anchorAt = now
	c.anchorRemaining = c.remaining
}

// sync recomputes remaining time from the anchor. The countdown is held
// while the question set is still loading.
func (c *Controller) sync(now time.Time) {
	if c.loading {
		c.anchor(now)
		return
	}
	elapsed := now.Sub(c.anchorAt)
	if elapsed < 0 {
		elapsed = 0
	}
	remaining := c.anchorRemaining - elapsed
	if remaining < 0 {
		remaining = 0
	}
	c.remaining = remaining
}

// evaluate applies the termination rules; a win always takes precedence.
func (c *Controller) evaluate() {
	if c.phase != PhaseInProgress || c.loading {
		return
	}
	switch {
	case c.correct >= c.settings.RequiredCorrect && c.remaining > 0:
		c.timeAtFinish = c.remaining
		c.hasTimeAtFinish = true
		c.finish(OutcomeDefused, ReasonThreshold)
	case c.remaining <= 0:
		if c.current != len(c.questions) {
			c.current = len(c.questions)
			c.selection = -1
			c.lastCorrect = false
		}
		c.finish(OutcomeFailed, ReasonTimeExpired)
	case len(c.questions) > 0 && c.current >= len(c.questions):
		c.finish(OutcomeFailed, ReasonExhausted)
	}
}

func (c *Controller) finish(outcome Outcome, reason Reason) {
	c.phase = PhaseFinished
	c.outcome = outcome
	c.reason = reason
	c.ticking = false
	c.pending = 0
}
