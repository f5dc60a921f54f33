package journal

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vaibhaw-/VerifyR/internal/verifyr/ledger"
	"github.com/vaibhaw-/VerifyR/internal/verifyr/logger"
)

func sampleTransfers() []ledger.Transfer {
	return []ledger.Transfer{
		{Seq: 1, Kind: ledger.KindMint, To: "alice", Amount: 1000},
		{Seq: 2, Kind: ledger.KindTransfer, From: "alice", To: "contract", Amount: 100},
	}
}

func TestCanonicalize_IgnoresHashFieldsAndZone(t *testing.T) {
	at := time.Date(2025, 10, 16, 19, 0, 0, 5, time.UTC)
	e1 := Entry{EventID: "x", RecordedAt: at, Seq: 1, Kind: "mint", To: "a", Amount: 3, Hash: "dead"}
	e2 := e1
	e2.Hash, e2.HashPrev, e2.ChainIndex = "beef", "cafe", 9
	e2.RecordedAt = at.In(time.FixedZone("X", 3600))

	c1, err := Canonicalize(e1)
	if err != nil {
		t.Fatalf("canonicalize 1: %v", err)
	}
	c2, err := Canonicalize(e2)
	if err != nil {
		t.Fatalf("canonicalize 2: %v", err)
	}
	if c1 != c2 {
		t.Fatalf("canonical forms differ:\n%s\n!=\n%s", c1, c2)
	}
}

func TestChain_Roundtrip_And_Tamper(t *testing.T) {
	logger.SetNop()
	var out bytes.Buffer
	st, err := Seal(&out, NewEntries(sampleTransfers(), 4), nil)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if st.LastChainIndex != 2 {
		t.Fatalf("unexpected index %d", st.LastChainIndex)
	}

	res, err := VerifyChain(bytes.NewReader(out.Bytes()))
	if err != nil {
		t.Fatalf("verify chain: %v", err)
	}
	if !res.OK() || res.Entries != 2 || res.Head != st.LastHeadHash {
		t.Fatalf("unexpected verify: %+v", res)
	}

	// Inflate the escrowed amount on the second line and expect detection
	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	var e2 Entry
	if err := json.Unmarshal(lines[1], &e2); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	e2.Amount = 1
	lines[1], _ = json.Marshal(e2)
	res, err = VerifyChain(bytes.NewReader(bytes.Join(lines, []byte("\n"))))
	if err != nil {
		t.Fatalf("verify tampered: %v", err)
	}
	if len(res.Tampered) != 1 || res.Tampered[0] != 2 {
		t.Fatalf("expected index 2 tampered, got %v", res.Tampered)
	}
}

func TestChain_DroppedEntryBreaksLink(t *testing.T) {
	logger.SetNop()
	var out bytes.Buffer
	trs := append(sampleTransfers(), ledger.Transfer{Seq: 3, Kind: ledger.KindTransfer, From: "alice", To: "contract", Amount: 5})
	if _, err := Seal(&out, NewEntries(trs, 0), nil); err != nil {
		t.Fatalf("seal: %v", err)
	}
	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	res, err := VerifyChain(bytes.NewReader(bytes.Join([][]byte{lines[0], lines[2]}, []byte("\n"))))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if len(res.Tampered) != 1 || res.Tampered[0] != 3 {
		t.Fatalf("expected index 3 tampered, got %v", res.Tampered)
	}
}

func TestAppendFile_ContinuesChainAcrossRuns(t *testing.T) {
	logger.SetNop()
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.ndjson")
	statePath := filepath.Join(dir, "state.json")

	st, err := LoadState(statePath)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if st.LastChainIndex != 0 || st.LastHeadHash != zeroHash() {
		t.Fatalf("unexpected fresh state: %+v", st)
	}

	trs := sampleTransfers()
	st1, err := AppendFile(path, NewEntries(trs[:1], 0), st)
	if err != nil {
		t.Fatalf("append 1: %v", err)
	}
	if err := SaveState(statePath, st1); err != nil {
		t.Fatalf("save state: %v", err)
	}

	loaded, err := LoadState(statePath)
	if err != nil {
		t.Fatalf("reload state: %v", err)
	}
	if *loaded != *st1 {
		t.Fatalf("state mismatch: %+v != %+v", loaded, st1)
	}
	st2, err := AppendFile(path, NewEntries(trs[1:], 1), loaded)
	if err != nil {
		t.Fatalf("append 2: %v", err)
	}

	res, err := VerifyFile(path)
	if err != nil {
		t.Fatalf("verify file: %v", err)
	}
	if !res.OK() || res.Entries != 2 || res.Head != st2.LastHeadHash {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestLoadState_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadState(path); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestCheckpoint_SignVerify_Roundtrip(t *testing.T) {
	dir := t.TempDir()
	priv, pub := mustGenKeys(t, dir)
	st := &ChainState{LastChainIndex: 10, LastHeadHash: "abcd"}
	path, err := WriteCheckpoint(dir, st, 150, priv)
	if err != nil {
		t.Fatalf("write checkpoint: %v", err)
	}
	ok, err := VerifyCheckpoint(path, pub, "abcd")
	if err != nil {
		t.Fatalf("verify checkpoint: %v", err)
	}
	if !ok {
		t.Fatalf("expected checkpoint verify ok")
	}

	ok, err = VerifyCheckpoint(path, pub, "efgh")
	if err != nil {
		t.Fatalf("verify checkpoint: %v", err)
	}
	if ok {
		t.Fatalf("expected mismatch to fail verify")
	}
}

func TestCheckpoint_WrongKeyFails(t *testing.T) {
	dir := t.TempDir()
	priv, _ := mustGenKeys(t, filepath.Join(dir, "a"))
	_, otherPub := mustGenKeys(t, filepath.Join(dir, "b"))
	path, err := WriteCheckpoint(dir, &ChainState{LastChainIndex: 1, LastHeadHash: "ff"}, 0, priv)
	if err != nil {
		t.Fatalf("write checkpoint: %v", err)
	}
	ok, err := VerifyCheckpoint(path, otherPub, "ff")
	if err != nil {
		t.Fatalf("verify checkpoint: %v", err)
	}
	if ok {
		t.Fatalf("expected signature from another key to fail")
	}
}

func TestWriteCheckpoint_RequiresDir(t *testing.T) {
	if _, err := WriteCheckpoint("", &ChainState{}, 0, "unused.pem"); err == nil {
		t.Fatalf("expected error without dir")
	}
}

func mustGenKeys(t *testing.T, dir string) (privPath, pubPath string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	sk, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("gen key: %v", err)
	}
	pkcs8, err := x509.MarshalPKCS8PrivateKey(sk)
	if err != nil {
		t.Fatalf("marshal pkcs8: %v", err)
	}
	privPath = filepath.Join(dir, "private.pem")
	if err := os.WriteFile(privPath, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: pkcs8}), 0600); err != nil {
		t.Fatalf("write priv: %v", err)
	}

	der, err := x509.MarshalPKIXPublicKey(&sk.PublicKey)
	if err != nil {
		t.Fatalf("marshal pkix: %v", err)
	}
	pubPath = filepath.Join(dir, "public.pem")
	if err := os.WriteFile(pubPath, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), 0644); err != nil {
		t.Fatalf("write pub: %v", err)
	}
	return
}
