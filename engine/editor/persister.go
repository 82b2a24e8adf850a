package editor

import (
	"context"
	"sync"
	"time"

	"github.com/compozy/tplsettings/pkg/logger"
	"github.com/romdo/go-debounce"
)

const (
	DefaultAgentSaveWait    = 500 * time.Millisecond
	DefaultAgentSaveMaxWait = 5 * time.Second
)

// Persister coalesces agent-level saves. Bursts of Schedule calls within wait
// collapse into one save; a save always runs within maxWait of the first
// pending call.
type Persister struct {
	saver     AgentSaver
	ctx       context.Context
	debounced func()
	cancel    func()
	mu        sync.Mutex
	pending   bool
	closed    bool
}

// NewPersister creates a Persister. The agent save runs detached from the
// caller's cancellation but keeps its values, including the logger.
func NewPersister(ctx context.Context, saver AgentSaver, wait, maxWait time.Duration) *Persister {
	if wait <= 0 {
		wait = DefaultAgentSaveWait
	}
	if maxWait < wait {
		maxWait = DefaultAgentSaveMaxWait
		if maxWait < wait {
			maxWait = wait
		}
	}
	p := &Persister{saver: saver, ctx: context.WithoutCancel(ctx)}
	p.debounced, p.cancel = debounce.NewWithMaxWait(wait, maxWait, p.run)
	return p
}

// Schedule requests an agent save.
func (p *Persister) Schedule() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.pending = true
	p.mu.Unlock()
	p.debounced()
}

// Flush runs a pending save immediately. The timer still fires later but
// finds nothing pending.
func (p *Persister) Flush(ctx context.Context) error {
	p.mu.Lock()
	pending := p.pending
	p.pending = false
	p.mu.Unlock()
	if !pending {
		return nil
	}
	return p.saver.SaveAgent(ctx)
}

// Close drops any pending save and stops accepting new ones.
func (p *Persister) Close() {
	p.mu.Lock()
	p.closed = true
	p.pending = false
	p.mu.Unlock()
	p.cancel()
}

func (p *Persister) run() {
	p.mu.Lock()
	if !p.pending {
		p.mu.Unlock()
		return
	}
	p.pending = false
	p.mu.Unlock()
	if err := p.saver.SaveAgent(p.ctx); err != nil {
		logger.FromContext(p.ctx).Error("Failed to save agent", "error", err)
	}
}
