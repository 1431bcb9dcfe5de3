package dash

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hiveboard/hiveboard/pkg/logging"
)

// pollTickMsg fires when a widget's interval elapses
type pollTickMsg struct {
	source string
}

// pollResult carries a fetch outcome back to the update loop. The
// sequence number lets the poller drop responses that arrive after a
// newer poll has already been applied.
type pollResult[T any] struct {
	source string
	seq    uint64
	data   T
	err    error
}

// poller owns the fetch cadence and last-known-good snapshot for one
// widget. Snapshots only ever move forward: a slow response from an
// earlier poll never overwrites data from a later one.
type poller[T any] struct {
	source     string
	interval   time.Duration
	staleAfter time.Duration
	timeout    time.Duration
	fetch      func(ctx context.Context) (T, error)

	nextSeq    uint64
	appliedSeq uint64

	data        T
	hasData     bool
	lastSuccess time.Time
	failures    int
	lastErr     error
}

func newPoller[T any](source string, interval, timeout time.Duration, staleFactor int, fetch func(ctx context.Context) (T, error)) *poller[T] {
	if staleFactor <= 0 {
		staleFactor = 3
	}
	return &poller[T]{
		source:     source,
		interval:   interval,
		staleAfter: time.Duration(staleFactor) * interval,
		timeout:    timeout,
		fetch:      fetch,
	}
}

// fetchCmd starts one poll. The parent context lets the dashboard cancel
// in-flight requests on teardown; the per-fetch timeout bounds each one.
func (p *poller[T]) fetchCmd(parent context.Context) tea.Cmd {
	p.nextSeq++
	seq := p.nextSeq
	fetch := p.fetch
	source := p.source
	timeout := p.timeout

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(logging.WithWidget(parent, source), timeout)
		defer cancel()
		data, err := fetch(ctx)
		return pollResult[T]{source: source, seq: seq, data: data, err: err}
	}
}

// tickCmd schedules the next interval tick
func (p *poller[T]) tickCmd() tea.Cmd {
	source := p.source
	return tea.Tick(p.interval, func(time.Time) tea.Msg {
		return pollTickMsg{source: source}
	})
}

// apply folds a fetch result into the poller state. It returns false for
// results that are stale (an earlier poll arriving after a later one) or
// failed; the last-known-good snapshot is untouched in both cases.
func (p *poller[T]) apply(res pollResult[T]) bool {
	if res.seq <= p.appliedSeq {
		return false
	}
	p.appliedSeq = res.seq

	if res.err != nil {
		p.failures++
		p.lastErr = res.err
		return false
	}

	p.data = res.data
	p.hasData = true
	p.lastSuccess = time.Now()
	p.failures = 0
	p.lastErr = nil
	return true
}

// stale reports whether the snapshot on screen is older than the
// configured multiple of the poll interval
func (p *poller[T]) stale(now time.Time) bool {
	return p.hasData && now.Sub(p.lastSuccess) > p.staleAfter
}
