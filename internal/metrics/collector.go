package metrics

import (
	"context"
	"sync"
	"time"

	"invoice-backend/internal/logger"
)

// PoolSnapshot is a point-in-time view of the database pool
type PoolSnapshot struct {
	Total    int32
	Idle     int32
	Acquired int32
}

// StatusCounter reports how many invoices exist per status
type StatusCounter interface {
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// Collector samples gauges that are not updated on the request path
type Collector struct {
	pool     func() PoolSnapshot
	invoices StatusCounter
	interval time.Duration

	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewCollector builds a collector. Either source may be nil.
func NewCollector(pool func() PoolSnapshot, invoices StatusCounter, interval time.Duration) *Collector {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Collector{
		pool:     pool,
		invoices: invoices,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start collects once, then on every tick until Stop
func (c *Collector) Start() {
	c.collectAll()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.collectAll()
			case <-c.stopChan:
				return
			}
		}
	}()
}

// Stop ends the collection loop and waits for it
func (c *Collector) Stop() {
	close(c.stopChan)
	c.wg.Wait()
}

func (c *Collector) collectAll() {
	if c.pool != nil {
		snap := c.pool()
		DBPoolConnections.WithLabelValues("total").Set(float64(snap.Total))
		DBPoolConnections.WithLabelValues("idle").Set(float64(snap.Idle))
		DBPoolConnections.WithLabelValues("acquired").Set(float64(snap.Acquired))
	}

	if c.invoices != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		counts, err := c.invoices.CountByStatus(ctx)
		if err != nil {
			log := logger.WithComponent("metrics")
			log.Warn().Err(err).Msg("invoice status counts unavailable")
			return
		}
		InvoicesByStatus.Reset()
		for status, n := range counts {
			InvoicesByStatus.WithLabelValues(status).Set(float64(n))
		}
	}
}
