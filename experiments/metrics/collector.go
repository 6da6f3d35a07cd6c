package metrics

import (
	"sync/atomic"
	"time"
)

// SchedulerMetric summarizes one batched self-play run.
type SchedulerMetric struct {
	Workers  int
	Rounds   int // Model calls
	Requests int
	MaxBatch int
	Duration time.Duration
}

// MeanBatch is the average number of states per model call.
func (m SchedulerMetric) MeanBatch() float64 {
	if m.Rounds == 0 {
		return 0
	}
	return float64(m.Requests) / float64(m.Rounds)
}

type Collector interface {
	Start(workers int)
	AddRequest()
	AddRound(batch int)
	Complete() SchedulerMetric
}

type collector struct {
	workers   int
	startTime time.Time
	requests  atomic.Int32
	rounds    atomic.Int32
	maxBatch  atomic.Int32
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(workers int) {
	m.startTime = time.Now()
	m.workers = workers
	m.requests.Store(0)
	m.rounds.Store(0)
	m.maxBatch.Store(0)
}

func (m *collector) AddRequest() {
	m.requests.Add(1)
}

func (m *collector) AddRound(batch int) {
	m.rounds.Add(1)
	for {
		current := m.maxBatch.Load()
		if int32(batch) <= current || m.maxBatch.CompareAndSwap(current, int32(batch)) {
			return
		}
	}
}

func (m *collector) Complete() SchedulerMetric {
	return SchedulerMetric{
		Workers:  m.workers,
		Rounds:   int(m.rounds.Load()),
		Requests: int(m.requests.Load()),
		MaxBatch: int(m.maxBatch.Load()),
		Duration: time.Since(m.startTime),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(workers int)         {}
func (m *dummyCollector) AddRequest()               {}
func (m *dummyCollector) AddRound(batch int)        {}
func (m *dummyCollector) Complete() SchedulerMetric { return SchedulerMetric{} }
