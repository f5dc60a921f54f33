package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// LoadState reads the chain head from path. A missing file or empty path
// yields a fresh chain at the zero hash.
func LoadState(path string) (*ChainState, error) {
	fresh := &ChainState{LastHeadHash: zeroHash()}
	if path == "" {
		return fresh, nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fresh, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read journal state: %w", err)
	}

	var st ChainState
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, fmt.Errorf("decode journal state: %w", err)
	}
	if st.LastHeadHash == "" {
		st.LastHeadHash = zeroHash()
	}
	return &st, nil
}

// SaveState writes the chain head through a temp file and rename, so a
// crash leaves either the old or the new state on disk.
func SaveState(path string, state *ChainState) error {
	if path == "" {
		return nil
	}
	b, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode journal state: %w", err)
	}
	return writeFileAtomic(path, b)
}

func writeFileAtomic(path string, b []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0644); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

// zeroHash is the genesis hash_prev: 64 hex zeros, the width of SHA-256.
func zeroHash() string {
	return strings.Repeat("0", 64)
}
