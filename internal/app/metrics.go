package app

import (
	"sync/atomic"
	"time"

	"github.com/dshills/gameflow/internal/flow"
)

// Metrics tracks loop timings and transitions. It satisfies flow.Recorder.
// Recording is lock-free; Snapshot may be called from any goroutine.
type Metrics struct {
	// Frame timing
	frameCount   atomic.Uint64
	frameTotalNs atomic.Int64
	frameMinNs   atomic.Int64
	frameMaxNs   atomic.Int64
	lastFrameNs  atomic.Int64

	updateCount   atomic.Uint64
	updateTotalNs atomic.Int64

	renderCount   atomic.Uint64
	renderTotalNs atomic.Int64

	changes atomic.Uint64
	quits   atomic.Uint64

	inputReceived atomic.Uint64
	inputDropped  atomic.Uint64

	startTime time.Time
	now       func() time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	m := &Metrics{now: time.Now}
	m.startTime = m.now()
	m.frameMinNs.Store(1<<63 - 1)
	return m
}

// RecordFrame records the duration of one whole frame.
func (m *Metrics) RecordFrame(d time.Duration) {
	ns := d.Nanoseconds()
	m.frameCount.Add(1)
	m.frameTotalNs.Add(ns)
	m.lastFrameNs.Store(ns)

	for {
		old := m.frameMinNs.Load()
		if ns >= old || m.frameMinNs.CompareAndSwap(old, ns) {
			break
		}
	}
	for {
		old := m.frameMaxNs.Load()
		if ns <= old || m.frameMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordUpdate records one call to a mode's Update.
func (m *Metrics) RecordUpdate(d time.Duration) {
	m.updateCount.Add(1)
	m.updateTotalNs.Add(d.Nanoseconds())
}

// RecordRender records one call to a mode's Render.
func (m *Metrics) RecordRender(d time.Duration) {
	m.renderCount.Add(1)
	m.renderTotalNs.Add(d.Nanoseconds())
}

// RecordTransition counts a processed transition.
func (m *Metrics) RecordTransition(kind flow.TransitionKind) {
	switch kind {
	case flow.KindChange:
		m.changes.Add(1)
	case flow.KindQuit:
		m.quits.Add(1)
	}
}

// RecordInput sets the input queue totals.
func (m *Metrics) RecordInput(received, dropped uint64) {
	m.inputReceived.Store(received)
	m.inputDropped.Store(dropped)
}

// Snapshot returns a point-in-time view of the metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		Uptime:        m.now().Sub(m.startTime),
		FrameCount:    m.frameCount.Load(),
		MaxFrameNs:    m.frameMaxNs.Load(),
		LastFrameNs:   m.lastFrameNs.Load(),
		UpdateCount:   m.updateCount.Load(),
		RenderCount:   m.renderCount.Load(),
		Changes:       m.changes.Load(),
		Quits:         m.quits.Load(),
		InputReceived: m.inputReceived.Load(),
		InputDropped:  m.inputDropped.Load(),
	}
	if s.FrameCount > 0 {
		s.AvgFrameNs = m.frameTotalNs.Load() / int64(s.FrameCount)
		s.MinFrameNs = m.frameMinNs.Load()
	}
	if s.UpdateCount > 0 {
		s.AvgUpdateNs = m.updateTotalNs.Load() / int64(s.UpdateCount)
	}
	if s.RenderCount > 0 {
		s.AvgRenderNs = m.renderTotalNs.Load() / int64(s.RenderCount)
	}
	return s
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.frameCount.Store(0)
	m.frameTotalNs.Store(0)
	m.frameMinNs.Store(1<<63 - 1)
	m.frameMaxNs.Store(0)
	m.lastFrameNs.Store(0)
	m.updateCount.Store(0)
	m.updateTotalNs.Store(0)
	m.renderCount.Store(0)
	m.renderTotalNs.Store(0)
	m.changes.Store(0)
	m.quits.Store(0)
	m.inputReceived.Store(0)
	m.inputDropped.Store(0)
	m.startTime = m.now()
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Uptime        time.Duration
	FrameCount    uint64
	AvgFrameNs    int64
	MinFrameNs    int64
	MaxFrameNs    int64
	LastFrameNs   int64
	UpdateCount   uint64
	AvgUpdateNs   int64
	RenderCount   uint64
	AvgRenderNs   int64
	Changes       uint64
	Quits         uint64
	InputReceived uint64
	InputDropped  uint64
}

// AvgFPS returns the average frame rate over the uptime.
func (s MetricsSnapshot) AvgFPS() float64 {
	if s.Uptime <= 0 {
		return 0
	}
	return float64(s.FrameCount) / s.Uptime.Seconds()
}
