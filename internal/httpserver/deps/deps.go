package deps

import (
	"time"

	"statusmirror/internal/logger"
	"statusmirror/internal/mirror"
	redisstore "statusmirror/internal/store/redis"
)

type Deps struct {
	Logger       logger.Logger
	Mirror       *mirror.Service   // scrape-and-normalize pipeline
	Cache        *redisstore.Store // optional snapshot cache, nil when disabled
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	AllowedHosts []string         // Host headers allowed to access the server
	AllowedCIDRS []string         // IPs allowed to access ops endpoints
	TrustProxy   bool             // true if running behind a trusted reverse proxy
	APIMaxAge    time.Duration    // Cache-Control max-age on /api responses
	RateBurst    int              // rate-limit bucket size per IP
	RateRefill   int              // rate-limit refill per IP per minute
}
