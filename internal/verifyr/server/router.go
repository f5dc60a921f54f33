package server

import (
	"context"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/vaibhaw-/VerifyR/internal/verifyr/engine"
)

// Options configures the HTTP surface.
type Options struct {
	// JWTSecret switches caller identity from the X-Principal header to the
	// sub claim of an HS256 bearer token.
	JWTSecret    []byte
	AllowOrigins []string
	// Commit runs after every successful mutation, typically persisting a
	// snapshot. A failing Commit yields a 500 but the mutation stays applied
	// in memory and is persisted by the next Commit that succeeds.
	Commit func(ctx context.Context) error
}

// Backend is what the handlers operate on.
type Backend struct {
	Engine *engine.Engine
	Ledger engine.Ledger
	Stakes engine.StakeOracle
	Clock  *engine.ManualClock
}

// NewRouter builds the gin engine with all routes attached.
func NewRouter(b Backend, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	attachRoutes(r, b, opts)
	return r
}

func attachRoutes(r *gin.Engine, b Backend, opts Options) {
	if len(opts.AllowOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  opts.AllowOrigins,
			AllowMethods:  []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", principalHeader},
			ExposeHeaders: []string{"Content-Length"},
		}))
	}

	reportH := NewReports(b, opts.Commit)
	paramH := NewParams(b, opts.Commit)
	accountH := NewAccounts(b)
	clockH := NewClock(b, opts.Commit)

	v1 := r.Group("/v1")
	{
		v1.GET("/reports/:id", reportH.Get)
		v1.GET("/reports/:id/verifications/:voter", reportH.GetVerification)
		v1.GET("/params", paramH.Get)
		v1.GET("/accounts/:principal", accountH.Get)
		v1.GET("/clock", clockH.Get)
	}

	secured := v1.Group("")
	secured.Use(IdentityMiddleware(opts.JWTSecret))
	{
		secured.POST("/reports", reportH.Submit)
		secured.POST("/reports/:id/verifications", reportH.Verify)
		secured.POST("/reports/:id/resolve", reportH.Resolve)
		secured.PUT("/params/:name", paramH.Set)
		secured.POST("/clock/advance", clockH.Advance)
	}
}
