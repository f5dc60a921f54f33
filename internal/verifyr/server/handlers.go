package server

import (
	"context"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vaibhaw-/VerifyR/internal/verifyr/engine"
	"github.com/vaibhaw-/VerifyR/internal/verifyr/logger"
)

var kindStatus = map[engine.Kind]int{
	engine.KindAuthorization: http.StatusForbidden,
	engine.KindInput:         http.StatusBadRequest,
	engine.KindState:         http.StatusConflict,
	engine.KindEconomic:      http.StatusUnprocessableEntity,
}

// writeError renders engine rejections as {"err", "code"}.
func writeError(c *gin.Context, err error) {
	var e *engine.Error
	if !errors.As(err, &e) {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	status := kindStatus[e.Kind()]
	if e == engine.ErrReportNotFound {
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"err": e.Name, "code": e.Code})
}

// commit runs the commit hook; the mutation has already been applied.
func commit(c *gin.Context, fn func(context.Context) error) bool {
	if fn == nil {
		return true
	}
	if err := fn(c.Request.Context()); err != nil {
		logger.L().Errorw("commit failed", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "persist: " + err.Error()})
		return false
	}
	return true
}

func reportID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, engine.ErrInvalidReportID)
		return 0, false
	}
	return id, true
}

type reportView struct {
	engine.Report
	Phase engine.Phase `json:"phase"`
}

type Reports struct {
	b      Backend
	commit func(context.Context) error
}

func NewReports(b Backend, commit func(context.Context) error) Reports {
	return Reports{b: b, commit: commit}
}

func (h Reports) Submit(c *gin.Context) {
	var req struct {
		EvidenceHash string `json:"evidence_hash"`
		Category     string `json:"category"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	evidence, err := hex.DecodeString(req.EvidenceHash)
	if err != nil {
		writeError(c, engine.ErrInvalidEvidenceHash)
		return
	}
	id, err := h.b.Engine.SubmitReport(callerOf(c), evidence, req.Category)
	if err != nil {
		writeError(c, err)
		return
	}
	if !commit(c, h.commit) {
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h Reports) Get(c *gin.Context) {
	id, ok := reportID(c)
	if !ok {
		return
	}
	r, found := h.b.Engine.Report(id)
	if !found {
		writeError(c, engine.ErrReportNotFound)
		return
	}
	c.JSON(http.StatusOK, reportView{Report: r, Phase: r.PhaseAt(h.b.Engine.Now())})
}

func (h Reports) Verify(c *gin.Context) {
	id, ok := reportID(c)
	if !ok {
		return
	}
	var req struct {
		Vote  *bool  `json:"vote"`
		Stake uint64 `json:"stake"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	if req.Vote == nil {
		writeError(c, engine.ErrInvalidVote)
		return
	}
	caller := callerOf(c)
	if err := h.b.Engine.VerifyReport(caller, id, *req.Vote, req.Stake); err != nil {
		writeError(c, err)
		return
	}
	if !commit(c, h.commit) {
		return
	}
	v, _ := h.b.Engine.Verification(id, caller)
	c.JSON(http.StatusCreated, v)
}

func (h Reports) GetVerification(c *gin.Context) {
	id, ok := reportID(c)
	if !ok {
		return
	}
	v, found := h.b.Engine.Verification(id, engine.Principal(c.Param("voter")))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"err": "verification not found"})
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h Reports) Resolve(c *gin.Context) {
	id, ok := reportID(c)
	if !ok {
		return
	}
	if err := h.b.Engine.ResolveConsensus(callerOf(c), id); err != nil {
		writeError(c, err)
		return
	}
	if !commit(c, h.commit) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": true})
}

type Params struct {
	b      Backend
	commit func(context.Context) error
}

func NewParams(b Backend, commit func(context.Context) error) Params {
	return Params{b: b, commit: commit}
}

func (h Params) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.b.Engine.Params())
}

func (h Params) Set(c *gin.Context) {
	set, ok := h.b.Engine.Setter(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"err": "unknown param"})
		return
	}
	var req struct {
		Value *uint64 `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Value == nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "value required"})
		return
	}
	if err := set(callerOf(c), *req.Value); err != nil {
		writeError(c, err)
		return
	}
	if !commit(c, h.commit) {
		return
	}
	c.JSON(http.StatusOK, h.b.Engine.Params())
}

type Accounts struct{ b Backend }

func NewAccounts(b Backend) Accounts { return Accounts{b: b} }

func (h Accounts) Get(c *gin.Context) {
	p := engine.Principal(c.Param("principal"))
	c.JSON(http.StatusOK, gin.H{
		"principal": p,
		"balance":   h.b.Ledger.BalanceOf(p),
		"stake":     h.b.Stakes.StakeOf(p),
	})
}

type Clock struct {
	b      Backend
	commit func(context.Context) error
}

func NewClock(b Backend, commit func(context.Context) error) Clock {
	return Clock{b: b, commit: commit}
}

func (h Clock) Get(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"height": h.b.Clock.Now()})
}

// Advance moves logical time forward. Admin only.
func (h Clock) Advance(c *gin.Context) {
	if callerOf(c) != h.b.Engine.Params().Admin {
		writeError(c, engine.ErrNotAuthorized)
		return
	}
	var req struct {
		Blocks uint64 `json:"blocks"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Blocks == 0 {
		writeError(c, engine.ErrInvalidTimestamp)
		return
	}
	height, err := h.b.Clock.Advance(req.Blocks)
	if err != nil {
		writeError(c, err)
		return
	}
	if !commit(c, h.commit) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"height": height})
}
