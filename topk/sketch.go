package topk

import (
	"sync"

	"github.com/keilerkonzept/topk/sliding"
)

// thresholdPercent of the window capacity a single client must exceed
// before it is reported for blocking.
const thresholdPercent = 80

// Sketch wraps a sliding top-k sketch with a mutex and drives its tick
// from the request count rather than wall time.
type Sketch struct {
	mu        sync.Mutex
	sketch    *sliding.Sketch
	tickSize  uint64 // number of requests per tick
	tickReq   uint64 // requests processed since last tick
	tickCount uint64 // total ticks processed
	threshold int
}

// NewSketch creates a thread-safe sketch wrapper.
// tickSize is how many observed requests trigger a sketch tick and
// top-k check.
func NewSketch(instance *sliding.Sketch, tickSize uint64) *Sketch {
	if instance == nil {
		panic("sketch instance cannot be nil")
	}
	if tickSize == 0 {
		tickSize = 1000
	}

	windowCapacity := uint64(instance.WindowSize) * tickSize
	threshold := int((windowCapacity * thresholdPercent) / 100)

	return &Sketch{
		sketch:    instance,
		tickSize:  tickSize,
		threshold: threshold,
	}
}

// ProcessTick records one request for the given client key. On tick
// boundaries it returns the keys whose observed count exceeds the
// blocking threshold, otherwise nil.
func (cs *Sketch) ProcessTick(key string) []string {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.sketch.Incr(key)
	cs.tickReq++

	if cs.tickReq < cs.tickSize {
		return nil
	}

	cs.sketch.Tick()
	cs.tickCount++
	cs.tickReq = 0

	items := cs.sketch.SortedSlice()

	toBlock := make([]string, 0)
	for _, item := range items {
		if item.Count > uint32(cs.threshold) {
			toBlock = append(toBlock, item.Item)
		} else {
			// Sorted descending, nothing further can qualify.
			break
		}
	}
	return toBlock
}
