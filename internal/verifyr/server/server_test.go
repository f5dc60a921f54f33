package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaibhaw-/VerifyR/internal/verifyr/engine"
	"github.com/vaibhaw-/VerifyR/internal/verifyr/ledger"
	"github.com/vaibhaw-/VerifyR/internal/verifyr/logger"
)

const admin = engine.Principal("ST1TEST")

var evidenceHex = strings.Repeat("ab", engine.HashSize)

type fixture struct {
	router  *gin.Engine
	backend Backend
	ledger  *ledger.Memory
	commits int
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.SetNop()

	l := ledger.NewMemory()
	stakes := ledger.NewRegistry()
	clock := engine.NewManualClock(0)
	for _, p := range []engine.Principal{admin, "alice", "bob"} {
		require.NoError(t, l.Mint(p, 1000))
		require.NoError(t, stakes.Register(p, 100))
	}
	f := &fixture{ledger: l}
	f.backend = Backend{
		Engine: engine.New(nil, stakes, l, clock),
		Ledger: l,
		Stakes: stakes,
		Clock:  clock,
	}
	if opts.Commit == nil {
		opts.Commit = func(context.Context) error { f.commits++; return nil }
	}
	f.router = NewRouter(f.backend, opts)
	return f
}

func (f *fixture) do(t *testing.T, method, path string, caller engine.Principal, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if caller != "" {
		req.Header.Set(principalHeader, string(caller))
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	out := map[string]any{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func (f *fixture) submit(t *testing.T) {
	t.Helper()
	w, out := f.do(t, http.MethodPost, "/v1/reports", "alice",
		map[string]string{"evidence_hash": evidenceHex, "category": "infrastructure"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Equal(t, float64(0), out["id"])
}

func TestReportLifecycle(t *testing.T) {
	f := newFixture(t, Options{})
	f.submit(t)

	w, out := f.do(t, http.MethodGet, "/v1/reports/0", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "infrastructure", out["category"])
	assert.Equal(t, "open", out["phase"])

	w, out = f.do(t, http.MethodPost, "/v1/reports/0/verifications", "bob", map[string]any{"vote": true, "stake": 200})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "InvalidReportId", out["err"])
	assert.Equal(t, float64(101), out["code"])

	f.submit2(t)
	w, _ = f.do(t, http.MethodPost, "/v1/reports/1/verifications", "bob", map[string]any{"vote": true, "stake": 200})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, uint64(800), f.ledger.BalanceOf("bob"))

	w, out = f.do(t, http.MethodGet, "/v1/reports/1/verifications/bob", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, out["vote"])

	w, out = f.do(t, http.MethodPost, "/v1/reports/1/resolve", "bob", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "VerificationClosed", out["err"])

	_, err := f.backend.Clock.Advance(engine.DefaultParams().VerificationDuration)
	require.NoError(t, err)
	w, _ = f.do(t, http.MethodPost, "/v1/reports/1/resolve", "bob", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, out = f.do(t, http.MethodGet, "/v1/reports/1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, out["status"])
	assert.Equal(t, "finalized", out["phase"])

	// submit, submit, verify, resolve
	assert.Equal(t, 4, f.commits)
}

func (f *fixture) submit2(t *testing.T) {
	t.Helper()
	w, out := f.do(t, http.MethodPost, "/v1/reports", "alice",
		map[string]string{"evidence_hash": evidenceHex, "category": "corruption"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Equal(t, float64(1), out["id"])
}

func TestErrorMapping(t *testing.T) {
	f := newFixture(t, Options{})

	tests := []struct {
		name   string
		method string
		path   string
		caller engine.Principal
		body   any
		status int
		err    string
	}{
		{"missing report", http.MethodGet, "/v1/reports/9", "", nil, http.StatusNotFound, "ReportNotFound"},
		{"bad id", http.MethodGet, "/v1/reports/x", "", nil, http.StatusBadRequest, "InvalidReportId"},
		{"bad hex", http.MethodPost, "/v1/reports", "alice", map[string]string{"evidence_hash": "zz", "category": "infrastructure"}, http.StatusBadRequest, "InvalidEvidenceHash"},
		{"bad category", http.MethodPost, "/v1/reports", "alice", map[string]string{"evidence_hash": evidenceHex, "category": "gossip"}, http.StatusBadRequest, "InvalidCategory"},
		{"missing vote", http.MethodPost, "/v1/reports/3/verifications", "bob", map[string]any{"stake": 200}, http.StatusBadRequest, "InvalidVote"},
		{"verify unknown", http.MethodPost, "/v1/reports/3/verifications", "bob", map[string]any{"vote": false, "stake": 200}, http.StatusNotFound, "ReportNotFound"},
		{"param by non-admin", http.MethodPut, "/v1/params/verification-threshold", "bob", map[string]any{"value": 60}, http.StatusForbidden, "NotAuthorized"},
		{"param out of range", http.MethodPut, "/v1/params/verification-threshold", admin, map[string]any{"value": 101}, http.StatusBadRequest, "InvalidThreshold"},
		{"clock by non-admin", http.MethodPost, "/v1/clock/advance", "bob", map[string]any{"blocks": 1}, http.StatusForbidden, "NotAuthorized"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, out := f.do(t, tc.method, tc.path, tc.caller, tc.body)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
			assert.Equal(t, tc.err, out["err"])
		})
	}
	assert.Zero(t, f.commits)
}

func TestParamsAndClock(t *testing.T) {
	f := newFixture(t, Options{})

	w, out := f.do(t, http.MethodPut, "/v1/params/min-stake-amount", admin, map[string]any{"value": 250})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(250), out["min_stake_amount"])

	w, _ = f.do(t, http.MethodPut, "/v1/params/nonsense", admin, map[string]any{"value": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, out = f.do(t, http.MethodPost, "/v1/clock/advance", admin, map[string]any{"blocks": 5})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(5), out["height"])

	w, out = f.do(t, http.MethodGet, "/v1/clock", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(5), out["height"])

	w, out = f.do(t, http.MethodGet, "/v1/accounts/alice", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1000), out["balance"])
	assert.Equal(t, float64(100), out["stake"])

	assert.Equal(t, 2, f.commits)
}

func TestIdentityRequired(t *testing.T) {
	f := newFixture(t, Options{})
	w, _ := f.do(t, http.MethodPost, "/v1/reports", "", map[string]string{"evidence_hash": evidenceHex, "category": "infrastructure"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTIdentity(t *testing.T) {
	secret := []byte("test-secret")
	f := newFixture(t, Options{JWTSecret: secret})

	body := `{"evidence_hash":"` + evidenceHex + `","category":"infrastructure"}`
	post := func(auth string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/reports", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		// the header is ignored once a secret is configured
		req.Header.Set(principalHeader, "mallory")
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusUnauthorized, post("").Code)
	assert.Equal(t, http.StatusUnauthorized, post("Bearer garbage").Code)

	other, err := IssueToken([]byte("other"), "alice", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, post("Bearer "+other).Code)

	tok, err := IssueToken(secret, "alice", time.Minute)
	require.NoError(t, err)
	w := post("Bearer " + tok)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	r, ok := f.backend.Engine.Report(0)
	require.True(t, ok)
	assert.Equal(t, engine.Principal("alice"), r.Submitter)
}

func TestCommitFailure(t *testing.T) {
	f := newFixture(t, Options{Commit: func(context.Context) error { return errors.New("disk full") }})
	w, _ := f.do(t, http.MethodPost, "/v1/reports", "alice",
		map[string]string{"evidence_hash": evidenceHex, "category": "infrastructure"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	// the report was admitted before persistence failed
	_, ok := f.backend.Engine.Report(0)
	assert.True(t, ok)
	assert.Equal(t, uint64(1), f.backend.Engine.NextReportID())
}

func TestClockAdvanceOverflow(t *testing.T) {
	f := newFixture(t, Options{})
	require.NoError(t, f.backend.Clock.Set(math.MaxUint64-1))

	w, out := f.do(t, http.MethodPost, "/v1/clock/advance", admin, map[string]any{"blocks": uint64(5)})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Equal(t, "InvalidTimestamp", out["err"])
	assert.Equal(t, uint64(math.MaxUint64-1), f.backend.Clock.Now())
	assert.Zero(t, f.commits)
}

func TestCORS(t *testing.T) {
	f := newFixture(t, Options{AllowOrigins: []string{"http://localhost:3000"}})
	req := httptest.NewRequest(http.MethodGet, "/v1/params", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
