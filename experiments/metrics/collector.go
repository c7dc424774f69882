package metrics

import (
	"blokus/game"
	"sync/atomic"
	"time"
)

// SearchMetric summarizes one move search. RootMoves is the branching factor
// at the root and ReusedVisits the visits carried over from the previous tree.
type SearchMetric struct {
	Goroutines   int
	Duration     time.Duration
	Episodes     int
	Cutoff       int
	Evaluate     game.Evaluate
	FullPlayouts int
	IsTreeReset  bool
	RootMoves    int
	ReusedVisits int
	MaxDepth     int
}

type MoveMetric struct {
	Step   int
	Player int // Player ID
	Move   game.Move
	SearchMetric
}

type GameMetric struct {
	StartingPlayer int // Player ID
	Winner         int // Player ID, -1 for a shared top score
	Scores         []int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalMoves     int
}

// Collector gathers a SearchMetric while search goroutines run. Start opens
// a search and clears everything recorded for the previous one.
type Collector interface {
	Start(goroutines, cutoff int, evaluate game.Evaluate)
	SetRoot(moves, reusedVisits int, reset bool)
	AddEpisode()
	AddFullPlayout()
	ObserveDepth(depth int)
	Complete() SearchMetric
}

type collector struct {
	metric       SearchMetric
	startTime    time.Time
	episodes     atomic.Int32
	fullPlayouts atomic.Int32
	maxDepth     atomic.Int32
}

func NewCollector() Collector {
	return &collector{}
}

func (c *collector) Start(goroutines, cutoff int, evaluate game.Evaluate) {
	c.startTime = time.Now()
	c.metric = SearchMetric{Goroutines: goroutines, Cutoff: cutoff, Evaluate: evaluate}
	c.episodes.Store(0)
	c.fullPlayouts.Store(0)
	c.maxDepth.Store(0)
}

// SetRoot is called once per search, before the goroutines start.
func (c *collector) SetRoot(moves, reusedVisits int, reset bool) {
	c.metric.RootMoves = moves
	c.metric.ReusedVisits = reusedVisits
	c.metric.IsTreeReset = reset
}

func (c *collector) AddEpisode() {
	c.episodes.Add(1)
}

func (c *collector) AddFullPlayout() {
	c.fullPlayouts.Add(1)
}

func (c *collector) ObserveDepth(depth int) {
	d := int32(depth)
	for {
		cur := c.maxDepth.Load()
		if d <= cur || c.maxDepth.CompareAndSwap(cur, d) {
			return
		}
	}
}

func (c *collector) Complete() SearchMetric {
	metric := c.metric
	metric.Duration = time.Since(c.startTime)
	metric.Episodes = int(c.episodes.Load())
	metric.FullPlayouts = int(c.fullPlayouts.Load())
	metric.MaxDepth = int(c.maxDepth.Load())
	return metric
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return dummyCollector{}
}

func (dummyCollector) Start(int, int, game.Evaluate) {}
func (dummyCollector) SetRoot(int, int, bool)        {}
func (dummyCollector) AddEpisode()                   {}
func (dummyCollector) AddFullPlayout()               {}
func (dummyCollector) ObserveDepth(int)              {}
func (dummyCollector) Complete() SearchMetric        { return SearchMetric{} }
