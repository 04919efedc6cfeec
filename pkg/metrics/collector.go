package metrics

import (
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
)

// Collector samples writer gauges on a cron schedule. The schedule accepts
// the standard cron format plus descriptors like "@every 15s".
type Collector struct {
	registry *Registry
	cron     *cron.Cron
	entry    cron.EntryID

	mu       sync.RWMutex
	samplers map[string]func() int64
}

// NewCollector creates a collector that refreshes gauges in registry
// according to spec. The collector is idle until Start is called.
func NewCollector(registry *Registry, spec string) (*Collector, error) {
	if registry == nil {
		registry = DefaultRegistry
	}

	c := &Collector{
		registry: registry,
		cron:     cron.New(),
		samplers: make(map[string]func() int64),
	}

	entry, err := c.cron.AddFunc(spec, c.sample)
	if err != nil {
		return nil, fmt.Errorf("invalid collector schedule %q: %w", spec, err)
	}
	c.entry = entry

	return c, nil
}

// Register adds a bytes-pending sampler for the named writer. Registering
// the same name again replaces the previous sampler.
func (c *Collector) Register(name string, bytesPending func() int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.samplers[name] = bytesPending
}

// Unregister removes the named writer's sampler and deletes its gauge.
func (c *Collector) Unregister(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.samplers, name)
	c.registry.WriterBytesPending.DeleteLabelValues(name)
}

// Start begins periodic sampling.
func (c *Collector) Start() {
	c.cron.Start()
}

// Stop halts periodic sampling. Any sampling run already in progress is
// allowed to finish.
func (c *Collector) Stop() {
	<-c.cron.Stop().Done()
}

// Sample refreshes all gauges once, outside the cron schedule.
func (c *Collector) Sample() {
	c.sample()
}

func (c *Collector) sample() {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for name, pending := range c.samplers {
		c.registry.WriterBytesPending.WithLabelValues(name).Set(float64(pending()))
	}
}
