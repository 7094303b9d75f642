package metrics

import (
	"sync/atomic"
	"time"
)

type SearchMetric struct {
	Algorithm string
	Depth     int
	Duration  time.Duration
	Nodes     int
	Cutoffs   int
}

type MoveMetric struct {
	Step     int
	Move     string
	Status   string
	Opponent string
	SearchMetric
}

type GameMetric struct {
	Game         string
	Status       string
	Score        int
	TotalMoves   int
	InvalidMoves int
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
}

type Collector interface {
	Start(algorithm string, depth int)
	AddNode()
	AddCutoff()
	Complete() SearchMetric
}

type collector struct {
	algorithm string
	depth     int
	startTime time.Time
	nodes     atomic.Int64
	cutoffs   atomic.Int64
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(algorithm string, depth int) {
	m.startTime = time.Now()
	m.algorithm = algorithm
	m.depth = depth
	m.nodes.Store(0)
	m.cutoffs.Store(0)
}

func (m *collector) AddNode() {
	m.nodes.Add(1)
}

func (m *collector) AddCutoff() {
	m.cutoffs.Add(1)
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Algorithm: m.algorithm,
		Depth:     m.depth,
		Duration:  time.Since(m.startTime),
		Nodes:     int(m.nodes.Load()),
		Cutoffs:   int(m.cutoffs.Load()),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(algorithm string, depth int) {}
func (m *dummyCollector) AddNode()                          {}
func (m *dummyCollector) AddCutoff()                        {}
func (m *dummyCollector) Complete() SearchMetric            { return SearchMetric{} }
