package mirror

import (
	"context"
	"errors"
	"time"

	"statusmirror/internal/domain"
	"statusmirror/internal/logger"
	"statusmirror/internal/memo"
	"statusmirror/internal/sources/kuma"
	redisstore "statusmirror/internal/store/redis"
)

const logSnippetLimit = 120

// Service runs the scrape-and-normalize pipeline (fetch → locate → sanitize →
// parse → assemble) and applies the degradation policy: anything the page can
// still usefully render without (maintenance, incident) degrades to a safe
// default with success=false; anything it cannot render without propagates as
// a typed error for the route boundary to turn into an HTTP response.
type Service struct {
	base     *domain.BaseConfig
	fetcher  *kuma.Fetcher
	log      logger.Logger
	inflight *memo.Group
	cache    *redisstore.Store // nil = snapshot cache disabled
	cacheTTL time.Duration
	now      func() time.Time
}

type Options struct {
	Base        *domain.BaseConfig
	Fetcher     *kuma.Fetcher
	Logger      logger.Logger
	Cache       *redisstore.Store // optional
	SnapshotTTL time.Duration
	TimeNow     func() time.Time // for testing, defaults to time.Now
}

func New(opts Options) *Service {
	if opts.SnapshotTTL <= 0 {
		opts.SnapshotTTL = redisstore.DefaultSnapshotTTL
	}
	if opts.TimeNow == nil {
		opts.TimeNow = time.Now
	}
	return &Service{
		base:     opts.Base,
		fetcher:  opts.Fetcher,
		log:      opts.Logger,
		inflight: memo.NewGroup(),
		cache:    opts.Cache,
		cacheTTL: opts.SnapshotTTL,
		now:      opts.TimeNow,
	}
}

// GetGlobalConfig runs the full pipeline for one page and assembles the
// outward /api/config contract.
//
// Degradations: a maintenance list with the wrong shape becomes an empty list
// with Success=false; a preload config that fails validation becomes the
// minimal placeholder config. Fetch, payload-not-found and sanitization
// failures propagate — there is no safe default for "no data at all".
func (s *Service) GetGlobalConfig(ctx context.Context, pageID string) (*domain.GlobalConfig, error) {
	page := s.base.ResolvePage(pageID)
	endpoint := s.base.BaseURL + kuma.StatusHTMLPath(page.ID)

	pd, sanitized, err := s.preload(ctx, page.ID)
	success := true

	switch {
	case err == nil:
	case isAPIDataError(err) && pd != nil:
		s.log.Warn("degraded upstream data on config request",
			logger.String("endpoint", endpoint),
			logger.String("payload", truncate(sanitized, logSnippetLimit)),
			logger.Error(err))
		success = false
	case isValidationError(err):
		s.log.Warn("preload config failed validation, serving placeholder",
			logger.String("endpoint", endpoint),
			logger.String("payload", truncate(sanitized, logSnippetLimit)),
			logger.Error(err))
		return &domain.GlobalConfig{
			Success:         false,
			Config:          domain.AssembleConfig(s.base, pageID, nil),
			MaintenanceList: []domain.Maintenance{},
		}, nil
	default:
		return nil, err
	}

	// Statuses are derived against "now" on every pass, never stored, so a
	// cached payload still yields a current lifecycle state.
	now := s.now()
	for i := range pd.MaintenanceList {
		pd.MaintenanceList[i].Status = domain.ComputeMaintenanceStatus(pd.MaintenanceList[i], now)
	}

	return &domain.GlobalConfig{
		Success:         success,
		Config:          domain.AssembleConfig(s.base, pageID, &pd.Config),
		Incident:        pd.Incident,
		MaintenanceList: pd.MaintenanceList,
	}, nil
}

// GetMonitor assembles the outward /api/monitor contract. The two upstream
// calls one screen needs — monitor groups from the scraped page, series from
// the heartbeat API — are issued concurrently and joined.
func (s *Service) GetMonitor(ctx context.Context, pageID string) (*domain.MonitorData, error) {
	page := s.base.ResolvePage(pageID)

	type preloadResult struct {
		pd        *domain.PreloadData
		sanitized string
		err       error
	}
	preloadCh := make(chan preloadResult, 1)
	go func() {
		pd, sanitized, err := s.preload(ctx, page.ID)
		preloadCh <- preloadResult{pd: pd, sanitized: sanitized, err: err}
	}()

	hbBody, hbErr := s.heartbeat(ctx, page.ID)
	pr := <-preloadCh

	if hbErr != nil {
		return nil, hbErr
	}

	out := &domain.MonitorData{
		Success:       true,
		MonitorGroups: []domain.MonitorGroup{},
	}

	hbEndpoint := s.base.BaseURL + kuma.HeartbeatPath(page.ID)
	data, err := kuma.ParseHeartbeat(hbBody)
	out.Data = data
	if err != nil {
		s.log.Warn("degraded heartbeat data on monitor request",
			logger.String("endpoint", hbEndpoint),
			logger.String("payload", truncate(string(hbBody), logSnippetLimit)),
			logger.Error(err))
		out.Success = false
	}

	switch {
	case pr.err == nil:
		out.MonitorGroups = pr.pd.MonitorGroups
	case isAPIDataError(pr.err) && pr.pd != nil:
		s.log.Warn("degraded upstream data on monitor request",
			logger.String("endpoint", s.base.BaseURL+kuma.StatusHTMLPath(page.ID)),
			logger.String("payload", truncate(pr.sanitized, logSnippetLimit)),
			logger.Error(pr.err))
		out.MonitorGroups = pr.pd.MonitorGroups
		out.Success = false
	case isValidationError(pr.err):
		// The series are still renderable without group metadata.
		s.log.Warn("preload failed validation, serving monitor data without groups",
			logger.String("endpoint", s.base.BaseURL+kuma.StatusHTMLPath(page.ID)),
			logger.String("payload", truncate(pr.sanitized, logSnippetLimit)),
			logger.Error(pr.err))
		out.Success = false
	default:
		return nil, pr.err
	}

	return out, nil
}

// preload yields parsed preload data for a resolved page id, deduplicating
// concurrent identical extractions and consulting the snapshot cache when one
// is configured. The sanitized text is returned alongside for diagnostics.
func (s *Service) preload(ctx context.Context, pageID string) (*domain.PreloadData, string, error) {
	key := "preload|" + s.base.BaseURL + "|" + pageID
	v, err := s.inflight.Do(key, func() (any, error) {
		return s.sanitizedPreload(ctx, pageID)
	})
	if err != nil {
		return nil, "", err
	}
	sanitized := v.(string)

	pd, err := kuma.ParsePreload(sanitized)
	if err != nil {
		var serr *domain.SanitizationError
		if errors.As(err, &serr) && s.cache != nil {
			// A poisoned snapshot would keep failing until it expires.
			_ = s.cache.InvalidateSnapshot(ctx, redisstore.PreloadKey(pageID))
		}
	}
	return pd, sanitized, err
}

// sanitizedPreload produces the sanitized preload JSON for a page, from cache
// when possible, otherwise by scraping.
func (s *Service) sanitizedPreload(ctx context.Context, pageID string) (string, error) {
	if s.cache != nil {
		cached, err := s.cache.GetSnapshot(ctx, redisstore.PreloadKey(pageID))
		if err != nil {
			s.log.Warn("snapshot cache read failed", logger.Error(err))
		} else if cached != nil {
			return string(cached), nil
		}
	}

	endpoint := s.base.BaseURL + kuma.StatusHTMLPath(pageID)
	html, err := s.fetcher.FetchStatusHTML(ctx, pageID)
	if err != nil {
		return "", err
	}

	raw, err := kuma.LocatePreload(endpoint, html)
	if err != nil {
		return "", err
	}

	sanitized := kuma.Sanitize(raw)

	if s.cache != nil {
		if err := s.cache.SaveSnapshot(ctx, redisstore.PreloadKey(pageID), []byte(sanitized), s.cacheTTL); err != nil {
			s.log.Warn("snapshot cache write failed", logger.Error(err))
		}
	}

	return sanitized, nil
}

// heartbeat fetches the raw heartbeat API body, with the same dedup and
// caching treatment as the preload path.
func (s *Service) heartbeat(ctx context.Context, pageID string) ([]byte, error) {
	key := "heartbeat|" + s.base.BaseURL + "|" + pageID
	v, err := s.inflight.Do(key, func() (any, error) {
		if s.cache != nil {
			cached, err := s.cache.GetSnapshot(ctx, redisstore.HeartbeatKey(pageID))
			if err != nil {
				s.log.Warn("snapshot cache read failed", logger.Error(err))
			} else if cached != nil {
				return cached, nil
			}
		}

		body, err := s.fetcher.FetchHeartbeat(ctx, pageID)
		if err != nil {
			return nil, err
		}

		if s.cache != nil {
			if err := s.cache.SaveSnapshot(ctx, redisstore.HeartbeatKey(pageID), body, s.cacheTTL); err != nil {
				s.log.Warn("snapshot cache write failed", logger.Error(err))
			}
		}
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Prewarm refreshes the snapshots of every configured page. Only useful with
// a cache; the scheduler guards that.
func (s *Service) Prewarm(ctx context.Context) {
	for _, page := range s.base.Pages {
		if _, err := s.sanitizedPreload(ctx, page.ID); err != nil {
			s.log.Warn("prewarm: preload refresh failed",
				logger.String("page", page.ID),
				logger.Error(err))
		}
		if _, err := s.fetchAndCacheHeartbeat(ctx, page.ID); err != nil {
			s.log.Warn("prewarm: heartbeat refresh failed",
				logger.String("page", page.ID),
				logger.Error(err))
		}
	}
}

func (s *Service) fetchAndCacheHeartbeat(ctx context.Context, pageID string) ([]byte, error) {
	body, err := s.fetcher.FetchHeartbeat(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SaveSnapshot(ctx, redisstore.HeartbeatKey(pageID), body, s.cacheTTL); err != nil {
			s.log.Warn("snapshot cache write failed", logger.Error(err))
		}
	}
	return body, nil
}

func isValidationError(err error) bool {
	var verr *domain.ValidationError
	return errors.As(err, &verr)
}

func isAPIDataError(err error) bool {
	var aerr *domain.APIDataError
	return errors.As(err, &aerr)
}

func truncate(s string, limit int) string {
	if len(s) > limit {
		return s[:limit]
	}
	return s
}
