package ledger

import (
	"sync"

	"github.com/vaibhaw-/VerifyR/internal/verifyr/engine"
)

// Registry records the stake each user registered with. It implements
// engine.StakeOracle.
type Registry struct {
	mu     sync.RWMutex
	stakes map[engine.Principal]uint64
}

func NewRegistry() *Registry {
	return &Registry{stakes: make(map[engine.Principal]uint64)}
}

// Register sets p's registered stake. Re-registering overwrites it.
func (r *Registry) Register(p engine.Principal, stake uint64) error {
	if stake == 0 {
		return ErrZeroAmount
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stakes[p] = stake
	return nil
}

func (r *Registry) StakeOf(p engine.Principal) uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stakes[p]
}

func (r *Registry) Export() map[engine.Principal]uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[engine.Principal]uint64, len(r.stakes))
	for p, s := range r.stakes {
		out[p] = s
	}
	return out
}

func (r *Registry) Restore(stakes map[engine.Principal]uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stakes = make(map[engine.Principal]uint64, len(stakes))
	for p, s := range stakes {
		r.stakes[p] = s
	}
}
