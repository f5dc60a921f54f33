package ledger

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/vaibhaw-/VerifyR/internal/verifyr/engine"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrZeroAmount          = errors.New("amount must be positive")
	ErrOverflow            = errors.New("balance overflow")
)

const (
	KindMint     = "mint"
	KindTransfer = "transfer"
)

// Transfer is one recorded balance movement. Mints have an empty From.
type Transfer struct {
	Seq    uint64           `json:"seq"`
	Kind   string           `json:"kind"`
	From   engine.Principal `json:"from,omitempty"`
	To     engine.Principal `json:"to"`
	Amount uint64           `json:"amount"`
}

// State is the serializable form of a Memory ledger.
type State struct {
	Balances  map[engine.Principal]uint64 `json:"balances"`
	Transfers []Transfer                  `json:"transfers"`
}

// Memory is an in-process ledger. Every movement is appended to an ordered
// audit list.
type Memory struct {
	mu        sync.RWMutex
	balances  map[engine.Principal]uint64
	transfers []Transfer
}

func NewMemory() *Memory {
	return &Memory{balances: make(map[engine.Principal]uint64)}
}

func (m *Memory) BalanceOf(p engine.Principal) uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.balances[p]
}

// Transfer debits from and credits to in one step.
func (m *Memory) Transfer(amount uint64, from, to engine.Principal) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.balances[from] < amount {
		return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientBalance, from, m.balances[from], amount)
	}
	if from != to && m.balances[to] > math.MaxUint64-amount {
		return ErrOverflow
	}
	m.balances[from] -= amount
	m.balances[to] += amount
	m.record(KindTransfer, from, to, amount)
	return nil
}

// Mint credits amount to p out of thin air. Used to fund accounts.
func (m *Memory) Mint(p engine.Principal, amount uint64) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.balances[p] > math.MaxUint64-amount {
		return ErrOverflow
	}
	m.balances[p] += amount
	m.record(KindMint, "", p, amount)
	return nil
}

// caller holds m.mu
func (m *Memory) record(kind string, from, to engine.Principal, amount uint64) {
	m.transfers = append(m.transfers, Transfer{
		Seq:    uint64(len(m.transfers)) + 1,
		Kind:   kind,
		From:   from,
		To:     to,
		Amount: amount,
	})
}

// Transfers returns the audit list starting at index from (0-based).
func (m *Memory) Transfers(from int) []Transfer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if from < 0 {
		from = 0
	}
	if from >= len(m.transfers) {
		return nil
	}
	out := make([]Transfer, len(m.transfers)-from)
	copy(out, m.transfers[from:])
	return out
}

func (m *Memory) Export() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st := State{
		Balances:  make(map[engine.Principal]uint64, len(m.balances)),
		Transfers: make([]Transfer, len(m.transfers)),
	}
	for p, b := range m.balances {
		st.Balances[p] = b
	}
	copy(st.Transfers, m.transfers)
	return st
}

// Restore replaces the ledger contents with st.
func (m *Memory) Restore(st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances = make(map[engine.Principal]uint64, len(st.Balances))
	for p, b := range st.Balances {
		m.balances[p] = b
	}
	m.transfers = append([]Transfer(nil), st.Transfers...)
}
