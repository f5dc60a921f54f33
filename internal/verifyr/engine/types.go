package engine

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// Principal identifies a caller, a voter or a ledger account.
type Principal string

// ContractPrincipal is the ledger account holding escrowed stake.
const ContractPrincipal Principal = "contract"

// Category classifies what a report is about.
type Category string

const (
	CategoryInfrastructure Category = "infrastructure"
	CategoryCorruption     Category = "corruption"
	CategoryEnvironment    Category = "environment"
)

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case CategoryInfrastructure, CategoryCorruption, CategoryEnvironment:
		return c, nil
	}
	return "", ErrInvalidCategory
}

// HashSize is the width of an evidence digest.
const HashSize = 32

// Hash is a fixed-width evidence digest. It encodes as lowercase hex.
type Hash [HashSize]byte

// ParseHash accepts exactly HashSize bytes.
func ParseHash(b []byte) (Hash, error) {
	var h Hash
	if len(b) != HashSize {
		return h, ErrInvalidEvidenceHash
	}
	copy(h[:], b)
	return h, nil
}

func (h Hash) String() string { return hex.EncodeToString(h[:]) }

func (h Hash) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

func (h *Hash) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("decode evidence hash: %w", err)
	}
	parsed, err := ParseHash(b)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// Report is one submitted claim under review.
//
// Only the admission protocol touches the counters, and only consensus
// resolution touches Status. PositiveVotes+NegativeVotes always equals
// VerificationCount.
type Report struct {
	ID                uint64    `json:"id"`
	Submitter         Principal `json:"submitter"`
	EvidenceHash      Hash      `json:"evidence_hash"`
	Category          Category  `json:"category"`
	CreatedAt         uint64    `json:"created_at"`
	CloseTime         uint64    `json:"close_time"`
	Status            bool      `json:"status"`
	VerificationCount uint64    `json:"verification_count"`
	PositiveVotes     uint64    `json:"positive_votes"`
	NegativeVotes     uint64    `json:"negative_votes"`
	TotalStake        uint64    `json:"total_stake"`
}

// Verification is one admitted vote. Records are never updated or deleted.
type Verification struct {
	Vote        bool   `json:"vote"`
	StakeAmount uint64 `json:"stake_amount"`
	Timestamp   uint64 `json:"timestamp"`
}

// VerificationKey is the composite (report, voter) key of the vote table.
// It encodes as "<reportID>/<voter>" so the table survives JSON round trips.
type VerificationKey struct {
	ReportID uint64
	Voter    Principal
}

func (k VerificationKey) MarshalText() ([]byte, error) {
	return []byte(strconv.FormatUint(k.ReportID, 10) + "/" + string(k.Voter)), nil
}

func (k *VerificationKey) UnmarshalText(text []byte) error {
	id, voter, ok := strings.Cut(string(text), "/")
	if !ok {
		return fmt.Errorf("verification key %q: missing separator", text)
	}
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return fmt.Errorf("verification key %q: %w", text, err)
	}
	k.ReportID = n
	k.Voter = Principal(voter)
	return nil
}
