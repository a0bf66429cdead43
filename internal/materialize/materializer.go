package materialize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/prospector/internal/dom"
)

// State is a step of a materializer run.
type State int

// States of a run.
const (
	Idle State = iota
	Navigating
	Polling
	Found
	TimedOut
	Failed
	Restored
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Navigating:
		return "navigating"
	case Polling:
		return "polling"
	case Found:
		return "found"
	case TimedOut:
		return "timed_out"
	case Failed:
		return "failed"
	case Restored:
		return "restored"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrPanic wraps a panic recovered from the Source.
var ErrPanic = errors.New("materialize: source panicked")

// Config holds the navigation target and the polling budget.
type Config struct {
	// Control selects the navigation control to activate.
	Control string
	// Items selects the content nodes on the target view.
	Items string
	// Settle is the wait between navigation and the first scan.
	Settle time.Duration
	// Interval is the wait between two scans.
	Interval time.Duration
	// Timeout bounds the whole run, measured from the navigation.
	Timeout time.Duration
	// MinLength is the rune count an item must exceed to qualify.
	MinLength int
	// Max is the number of items after which collection stops.
	Max int
	// RestoreTimeout bounds the Back call.
	RestoreTimeout time.Duration
}

// RecentActivity returns the configuration for recent posts.
func RecentActivity() Config {
	return Config{
		Control:        `a[href*="recent-activity/all"]`,
		Items:          `.update-components-text span[dir='ltr']`,
		Settle:         time.Second,
		Interval:       500 * time.Millisecond,
		Timeout:        8 * time.Second,
		MinLength:      30,
		Max:            5,
		RestoreTimeout: 5 * time.Second,
	}
}

// Result is the outcome of a run.
type Result struct {
	// Items are the qualifying texts in encounter order. Never nil.
	Items []string
	// Outcome is Found, TimedOut or Failed, or Restored when no control
	// was present.
	Outcome State
	// Trace lists every state entered, in order.
	Trace []State
	// Restored reports whether the navigation was reversed.
	Restored bool
	// Err is the cause of a Failed outcome.
	Err error
	// RestoreErr is the error returned by the reverse navigation, if any.
	RestoreErr error
}

func (r *Result) enter(s State) {
	r.Trace = append(r.Trace, s)
	if s != Restored && s != Idle && s != Navigating && s != Polling {
		r.Outcome = s
	}
}

func (r *Result) fail(err error) {
	r.Items = []string{}
	r.Err = err
	r.enter(Failed)
}

// Materializer runs the navigate, poll, restore sequence.
type Materializer struct {
	cfg    Config
	logger *slog.Logger
}

// Option configures a Materializer.
type Option func(*Materializer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Materializer) {
		m.logger = logger
	}
}

// New creates a Materializer.
func New(cfg Config, opts ...Option) *Materializer {
	m := &Materializer{cfg: cfg}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	return m
}

// Config returns the configuration of m.
func (m *Materializer) Config() Config {
	return m.cfg
}

// Run performs one materialization against src. It never returns an error;
// failures are reported through Result.Outcome and Result.Err.
func (m *Materializer) Run(ctx context.Context, src dom.Source) (res Result) {
	res.Items = []string{}
	res.enter(Idle)
	start := time.Now()

	found, err := m.navigate(ctx, src)
	if !found {
		// Nothing was activated, so there is no position to release.
		if err != nil {
			m.logger.Debug("navigation control lookup failed", "error", err)
			res.fail(err)
		} else {
			m.logger.Debug("navigation control absent", "control", m.cfg.Control)
			res.Outcome = Restored
		}
		res.enter(Restored)
		return res
	}

	res.enter(Navigating)
	defer m.release(ctx, src, &res)

	if err != nil {
		m.logger.Debug("navigation failed", "error", err)
		res.fail(err)
		return res
	}

	m.poll(ctx, src, start, &res)
	return res
}

// navigate reports whether the control existed. A panic counts as an
// acquired position so that it is still released.
func (m *Materializer) navigate(ctx context.Context, src dom.Source) (found bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			found, err = true, fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return src.Follow(ctx, m.cfg.Control)
}

func (m *Materializer) poll(ctx context.Context, src dom.Source, start time.Time, res *Result) {
	defer func() {
		if r := recover(); r != nil {
			res.fail(fmt.Errorf("%w: %v", ErrPanic, r))
		}
	}()

	res.enter(Polling)
	if err := wait(ctx, m.cfg.Settle); err != nil {
		res.fail(err)
		return
	}

	for scans := 1; ; scans++ {
		doc, err := src.Snapshot(ctx)
		if err != nil {
			res.fail(fmt.Errorf("materialize: snapshot: %w", err))
			return
		}
		if items := m.scan(doc); len(items) > 0 {
			res.Items = items
			res.enter(Found)
			m.logger.Debug("content found", "items", len(items), "scans", scans)
			return
		}
		if time.Since(start) > m.cfg.Timeout {
			res.enter(TimedOut)
			m.logger.Debug("content wait timed out", "scans", scans, "timeout", m.cfg.Timeout)
			return
		}
		if err := wait(ctx, m.cfg.Interval); err != nil {
			res.fail(err)
			return
		}
	}
}

func (m *Materializer) scan(doc *goquery.Document) []string {
	items := make([]string, 0, m.cfg.Max)
	seen := make(map[string]struct{})
	doc.Find(m.cfg.Items).EachWithBreak(func(_ int, node *goquery.Selection) bool {
		text := strings.TrimSpace(node.Text())
		if utf8.RuneCountInString(text) <= m.cfg.MinLength {
			return true
		}
		if _, dup := seen[text]; dup {
			return true
		}
		seen[text] = struct{}{}
		items = append(items, text)
		return m.cfg.Max <= 0 || len(items) < m.cfg.Max
	})
	return items
}

// release reverses the navigation once. It runs even when ctx is already
// cancelled.
func (m *Materializer) release(ctx context.Context, src dom.Source, res *Result) {
	restoreCtx := context.WithoutCancel(ctx)
	if m.cfg.RestoreTimeout > 0 {
		var cancel context.CancelFunc
		restoreCtx, cancel = context.WithTimeout(restoreCtx, m.cfg.RestoreTimeout)
		defer cancel()
	}

	func() {
		defer func() {
			if r := recover(); r != nil {
				res.RestoreErr = fmt.Errorf("%w: %v", ErrPanic, r)
			}
		}()
		res.RestoreErr = src.Back(restoreCtx)
	}()

	if res.RestoreErr != nil {
		m.logger.Warn("failed to restore navigation position", "error", res.RestoreErr)
	}
	res.Restored = true
	res.enter(Restored)
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
