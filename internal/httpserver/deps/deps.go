package deps

import (
	"time"

	"github.com/linkhoard/linkhoard/internal/importer"
	"github.com/linkhoard/linkhoard/internal/logger"
	"github.com/linkhoard/linkhoard/internal/session"
	"github.com/linkhoard/linkhoard/internal/store"
	"github.com/linkhoard/linkhoard/internal/wordpress"
)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	Store     *store.Store     // bookmark/tag/settings persistence
	Sessions  session.Store    // login sessions (memory or Redis)
	Importer  *importer.Engine // bulk import engine
	WordPress *wordpress.Client

	AdminPassword  string        // password for the single admin account
	SessionTTL     time.Duration // lifetime of new sessions
	AllowedOrigins []string      // origins allowed to call the API cross-site
	TrustProxy     bool          // true if running behind a trusted reverse proxy

	LoginRateBurst    int           // login attempts allowed before throttling
	LoginRateInterval time.Duration // refill interval per login attempt
}
