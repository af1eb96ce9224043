package deps

import (
	"time"

	"github.com/MrSnakeDoc/muse/internal/api"
	"github.com/MrSnakeDoc/muse/internal/catalog"
	"github.com/MrSnakeDoc/muse/internal/logger"
)

type Deps struct {
	Logger          logger.Logger
	StartTime       time.Time
	Version         string
	Commit          string
	BuildDate       string
	GoVersion       string
	TimeNow         func() time.Time // for testing, defaults to time.Now
	AllowedCIDRS    []string         // IPs allowed to access healthz/readyz/infra endpoints
	TrustProxy      bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)
	RateBurst       int              // generation requests allowed in a burst per client IP
	RatePerMin      int              // generation requests refilled per minute per client IP
	Service         *api.Service     // envelope-returning generation operations
	Catalog         *catalog.Catalog // personas, styles and facet options
	ProviderTimeout time.Duration    // per provider call, reported by /infra
}
