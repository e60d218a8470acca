package aqi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/yanqian/aqi-search/pkg/errors"
	"github.com/yanqian/aqi-search/pkg/metrics"
	"github.com/yanqian/aqi-search/pkg/util"
)

const (
	defaultCacheTTL    = 10 * time.Minute
	defaultRecentLimit = 10
	maxRecentLimit     = 100
)

// Service exposes the backend lookup capabilities.
type Service interface {
	Lookup(ctx context.Context, city string) (Reading, error)
	Recent(ctx context.Context, limit int) ([]LookupRecord, error)
	Stats() metrics.LookupStats
}

// UpstreamClient fetches a station report from the air quality provider.
type UpstreamClient interface {
	Fetch(ctx context.Context, city string) (Feed, error)
}

// Cache stores readings keyed by normalized city name. Expired entries are never returned.
type Cache interface {
	Get(ctx context.Context, key string) (Reading, bool, error)
	Set(ctx context.Context, key string, reading Reading, ttl time.Duration) error
}

// HistoryRepository keeps a log of served lookups.
type HistoryRepository interface {
	Record(ctx context.Context, record LookupRecord) error
	Recent(ctx context.Context, limit int) ([]LookupRecord, error)
}

// Archive keeps raw upstream payloads.
type Archive interface {
	Put(ctx context.Context, key string, payload []byte) error
}

type service struct {
	cfg      Config
	upstream UpstreamClient
	cache    Cache
	history  HistoryRepository
	archive  Archive
	counter  *metrics.LookupCounter
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// NewService wires up the lookup domain.
func NewService(cfg Config, upstream UpstreamClient, cache Cache, history HistoryRepository, archive Archive, counter *metrics.LookupCounter, logger *slog.Logger) Service {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = defaultRecentLimit
	}
	if cfg.ArchivePrefix == "" {
		cfg.ArchivePrefix = "aqicn"
	}
	if counter == nil {
		counter = metrics.NewLookupCounter()
	}
	return &service{
		cfg:      cfg,
		upstream: upstream,
		cache:    cache,
		history:  history,
		archive:  archive,
		counter:  counter,
		logger:   logger.With("component", "aqi.service"),
		now:      util.NowUTC,
		newID:    uuid.NewString,
	}
}

func (s *service) Lookup(ctx context.Context, raw string) (Reading, error) {
	city := strings.TrimSpace(raw)
	if city == "" {
		s.counter.IncFailed()
		return Reading{}, apperrors.Wrap(apperrors.CodeInvalidInput, "City parameter is required", nil)
	}
	key := CacheKey(city)

	cached, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("cache lookup failed, fetching live", "city", city, "error", err)
	}
	if err == nil && ok {
		cached.Source = SourceCache
		s.counter.IncCached()
		s.logger.Info("aqi served from cache", "city", city)
		s.record(ctx, city, cached)
		return cached, nil
	}

	feed, err := s.upstream.Fetch(ctx, city)
	if err != nil {
		s.counter.IncFailed()
		if errors.Is(err, ErrUnknownCity) {
			return Reading{}, apperrors.Wrap(apperrors.CodeCityNotFound, "City not found", err)
		}
		return Reading{}, apperrors.Wrap(apperrors.CodeUpstreamError, "Failed to fetch air quality data", err)
	}

	reading := buildReading(feed)
	reading.Source = SourceLive
	s.counter.IncLive()
	s.logger.Info("aqi fetched from upstream", "city", city, "station", reading.City, "aqi", derefIndex(reading.AQI))

	if err := s.cache.Set(ctx, key, reading, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("cache store failed", "city", city, "error", err)
	}
	s.archiveFeed(ctx, city, feed)
	s.record(ctx, city, reading)
	return reading, nil
}

func (s *service) Recent(ctx context.Context, limit int) ([]LookupRecord, error) {
	if limit <= 0 {
		limit = s.cfg.RecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	records, err := s.history.Recent(ctx, limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeCacheError, "failed to load lookup history", err)
	}
	if records == nil {
		records = []LookupRecord{}
	}
	return records, nil
}

func (s *service) Stats() metrics.LookupStats {
	return s.counter.Snapshot()
}

// CacheKey normalizes a city query for cache lookups.
func CacheKey(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}

func buildReading(feed Feed) Reading {
	reading := Reading{
		City:              feed.Station,
		AQI:               feed.AQI,
		DominantPollutant: feed.DominantPollutant,
		Time:              feed.Time,
		Geo:               feed.Geo,
		Details:           feed.Details,
	}
	if feed.AQI != nil {
		band := CategoryFor(int(*feed.AQI))
		reading.Category = band.Label
		reading.Color = band.Color
	}
	return reading
}

func (s *service) record(ctx context.Context, query string, reading Reading) {
	if s.history == nil {
		return
	}
	entry := LookupRecord{
		ID:         s.newID(),
		Query:      query,
		City:       reading.City,
		AQI:        reading.AQI,
		Category:   reading.Category,
		Source:     reading.Source,
		LookedUpAt: s.now(),
	}
	if err := s.history.Record(ctx, entry); err != nil {
		s.logger.Warn("lookup history record failed", "city", query, "error", err)
	}
}

func (s *service) archiveFeed(ctx context.Context, city string, feed Feed) {
	if s.archive == nil || len(feed.Raw) == 0 {
		return
	}
	key := fmt.Sprintf("%s/%s/%s-%s.json", s.cfg.ArchivePrefix, slug(city), s.now().Format("20060102T150405Z"), s.newID())
	if err := s.archive.Put(ctx, key, feed.Raw); err != nil {
		s.logger.Warn("upstream payload archive failed", "key", key, "error", err)
	}
}

func slug(city string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(city) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash && b.Len() > 0:
			b.WriteByte('-')
			lastDash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "unknown"
	}
	return out
}

func derefIndex(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
