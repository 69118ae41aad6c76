package session

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/danmuck/esphost/internal/protocol"
	"github.com/danmuck/esphost/internal/protocol/rpc"
)

// PendingRequest tracks one request awaiting its response.
type PendingRequest struct {
	UID    uint32
	ID     rpc.MsgID
	SentAt time.Time
}

// Pending stores outstanding requests by uid.
type Pending struct {
	mu    sync.RWMutex
	items map[uint32]PendingRequest
}

func NewPending() *Pending {
	return &Pending{
		items: make(map[uint32]PendingRequest),
	}
}

// Add registers item. A uid can only have one request in flight.
func (p *Pending) Add(item PendingRequest) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if prev, ok := p.items[item.UID]; ok {
		return fmt.Errorf("%w: uid %d already pending for %s", protocol.ErrInvalidData, item.UID, prev.ID)
	}
	p.items[item.UID] = item
	return nil
}

// Resolve removes and returns the request registered under uid.
func (p *Pending) Resolve(uid uint32) (PendingRequest, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	item, ok := p.items[uid]
	if ok {
		delete(p.items, uid)
	}
	return item, ok
}

func (p *Pending) Remove(uid uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.items, uid)
}

func (p *Pending) Get(uid uint32) (PendingRequest, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	item, ok := p.items[uid]
	return item, ok
}

func (p *Pending) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.items)
}

func (p *Pending) List() []PendingRequest {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]PendingRequest, 0, len(p.items))
	for _, item := range p.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UID < out[j].UID
	})
	return out
}

// Sweep drops requests sent before cutoff and returns them ordered by uid.
func (p *Pending) Sweep(cutoff time.Time) []PendingRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []PendingRequest
	for uid, item := range p.items {
		if item.SentAt.Before(cutoff) {
			out = append(out, item)
			delete(p.items, uid)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UID < out[j].UID
	})
	return out
}
