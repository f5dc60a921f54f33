package journal

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// WriteCheckpoint signs the journal head with the P-256 key at
// privateKeyPath and writes it under dir. It returns the file written.
func WriteCheckpoint(dir string, state *ChainState, height uint64, privateKeyPath string) (string, error) {
	if dir == "" {
		return "", errors.New("checkpoint dir required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("mkdir: %w", err)
	}
	key, err := loadPrivateKey(privateKeyPath)
	if err != nil {
		return "", err
	}

	cp := Checkpoint{
		ChainIndex: state.LastChainIndex,
		HeadHash:   state.LastHeadHash,
		Height:     height,
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
	}
	digest, err := checkpointDigest(cp)
	if err != nil {
		return "", err
	}
	sig, err := ecdsa.SignASN1(rand.Reader, key, digest)
	if err != nil {
		return "", fmt.Errorf("sign checkpoint: %w", err)
	}

	b, err := json.Marshal(SignedCheckpoint{Checkpoint: cp, Signature: base64.StdEncoding.EncodeToString(sig)})
	if err != nil {
		return "", fmt.Errorf("marshal checkpoint: %w", err)
	}
	name := fmt.Sprintf("checkpoint-%s-%d.json", cp.CreatedAt.Format("20060102-150405"), cp.ChainIndex)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, b, 0644); err != nil {
		return "", fmt.Errorf("write checkpoint: %w", err)
	}
	return path, nil
}

// VerifyCheckpoint checks the signature on a checkpoint file and that it
// commits to expectedHead.
func VerifyCheckpoint(path, publicKeyPath, expectedHead string) (bool, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read checkpoint: %w", err)
	}
	var sc SignedCheckpoint
	if err := json.Unmarshal(b, &sc); err != nil {
		return false, fmt.Errorf("unmarshal checkpoint: %w", err)
	}
	if sc.Checkpoint.HeadHash != expectedHead {
		return false, nil
	}
	sig, err := base64.StdEncoding.DecodeString(sc.Signature)
	if err != nil {
		return false, fmt.Errorf("decode signature: %w", err)
	}
	pub, err := loadPublicKey(publicKeyPath)
	if err != nil {
		return false, err
	}
	digest, err := checkpointDigest(sc.Checkpoint)
	if err != nil {
		return false, err
	}
	return ecdsa.VerifyASN1(pub, digest, sig), nil
}

func checkpointDigest(cp Checkpoint) ([]byte, error) {
	canon, err := json.Marshal(struct {
		ChainIndex int    `json:"chain_index"`
		HeadHash   string `json:"head_hash"`
		Height     uint64 `json:"height"`
		CreatedAt  string `json:"created_at"`
	}{cp.ChainIndex, cp.HeadHash, cp.Height, cp.CreatedAt.UTC().Format(time.RFC3339)})
	if err != nil {
		return nil, fmt.Errorf("canonicalize checkpoint: %w", err)
	}
	sum := sha256.Sum256(canon)
	return sum[:], nil
}

func readPEM(path, what string) (*pem.Block, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s key: %w", what, err)
	}
	block, _ := pem.Decode(b)
	if block == nil {
		return nil, fmt.Errorf("invalid PEM for %s key", what)
	}
	return block, nil
}

func loadPrivateKey(path string) (*ecdsa.PrivateKey, error) {
	block, err := readPEM(path, "private")
	if err != nil {
		return nil, err
	}
	var key *ecdsa.PrivateKey
	switch block.Type {
	case "EC PRIVATE KEY":
		key, err = x509.ParseECPrivateKey(block.Bytes)
	default:
		var parsed any
		parsed, err = x509.ParsePKCS8PrivateKey(block.Bytes)
		if err == nil {
			var ok bool
			if key, ok = parsed.(*ecdsa.PrivateKey); !ok {
				return nil, errors.New("not an ECDSA private key")
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	if key.Curve != elliptic.P256() {
		return nil, errors.New("unsupported curve: want P-256")
	}
	return key, nil
}

func loadPublicKey(path string) (*ecdsa.PublicKey, error) {
	block, err := readPEM(path, "public")
	if err != nil {
		return nil, err
	}
	if block.Type != "PUBLIC KEY" && block.Type != "EC PUBLIC KEY" {
		return nil, fmt.Errorf("unsupported public key type: %s", block.Type)
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	key, ok := parsed.(*ecdsa.PublicKey)
	if !ok {
		return nil, errors.New("not an ECDSA public key")
	}
	if key.Curve != elliptic.P256() {
		return nil, errors.New("unsupported curve: want P-256")
	}
	return key, nil
}
