package ergast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Josh-Mantel/MCP-F1/internal/config"
	"github.com/Josh-Mantel/MCP-F1/internal/metrics"
	"github.com/Josh-Mantel/MCP-F1/internal/services/cache"
)

const (
	pageLimit = 100
	maxPages  = 50
	userAgent = "f1-mcp-server/1.0"
)

var (
	// ErrNotFound means the source has nothing published for the request
	ErrNotFound = errors.New("ergast: no data")
	// ErrUpstream covers transport failures and unexpected responses
	ErrUpstream = errors.New("ergast: upstream failure")
)

// Service reads the Ergast-compatible F1 API. Every page fetched is cached
// under its URL.
type Service struct {
	client  *http.Client
	baseURL string
	cache   *cache.Service
	metrics metrics.Recorder
}

func NewService(cfg config.ErgastConfig, cacheService *cache.Service, recorder metrics.Recorder) *Service {
	if recorder == nil {
		recorder = metrics.NewNoopMetrics()
	}
	if cacheService == nil {
		cacheService = cache.NewServiceWithStore(cache.NewMemoryStore(), cfg.CacheTTL, recorder)
	}

	s := &Service{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		cache:   cacheService,
		metrics: recorder,
	}

	log.Info().
		Str("base_url", s.baseURL).
		Str("cache", cacheService.Backend()).
		Msg("Ergast service initialized successfully")

	return s
}

// Races returns a season's calendar
func (s *Service) Races(ctx context.Context, year int) ([]Race, error) {
	pages, err := s.fetchAll(ctx, "races", fmt.Sprintf("%d.json", year))
	if err != nil {
		return nil, err
	}

	races := mergeRaces(pages)
	if len(races) == 0 {
		return nil, fmt.Errorf("%w: no schedule for %d", ErrNotFound, year)
	}
	return races, nil
}

// RaceResults returns the race with its classification
func (s *Service) RaceResults(ctx context.Context, year, round int) (*Race, error) {
	return s.race(ctx, "results", year, round, func(r *Race) bool { return len(r.Results) > 0 })
}

func (s *Service) QualifyingResults(ctx context.Context, year, round int) (*Race, error) {
	return s.race(ctx, "qualifying", year, round, func(r *Race) bool { return len(r.QualifyingResults) > 0 })
}

func (s *Service) SprintResults(ctx context.Context, year, round int) (*Race, error) {
	return s.race(ctx, "sprint", year, round, func(r *Race) bool { return len(r.SprintResults) > 0 })
}

// Laps returns per-lap timings for every driver in a race
func (s *Service) Laps(ctx context.Context, year, round int) (*Race, error) {
	return s.race(ctx, "laps", year, round, func(r *Race) bool { return len(r.Laps) > 0 })
}

// DriverStandings returns the standings after round, or the latest when round is 0
func (s *Service) DriverStandings(ctx context.Context, year, round int) (*StandingsList, error) {
	return s.standings(ctx, "driverStandings", year, round)
}

// ConstructorStandings returns the standings after round, or the latest when round is 0
func (s *Service) ConstructorStandings(ctx context.Context, year, round int) (*StandingsList, error) {
	return s.standings(ctx, "constructorStandings", year, round)
}

func (s *Service) race(ctx context.Context, endpoint string, year, round int, hasData func(*Race) bool) (*Race, error) {
	pages, err := s.fetchAll(ctx, endpoint, fmt.Sprintf("%d/%d/%s.json", year, round, endpoint))
	if err != nil {
		return nil, err
	}

	races := mergeRaces(pages)
	if len(races) == 0 || !hasData(&races[0]) {
		return nil, fmt.Errorf("%w: no %s for %d round %d", ErrNotFound, endpoint, year, round)
	}
	return &races[0], nil
}

func (s *Service) standings(ctx context.Context, endpoint string, year, round int) (*StandingsList, error) {
	path := fmt.Sprintf("%d/%s.json", year, endpoint)
	if round > 0 {
		path = fmt.Sprintf("%d/%d/%s.json", year, round, endpoint)
	}

	pages, err := s.fetchAll(ctx, endpoint, path)
	if err != nil {
		return nil, err
	}

	list := mergeStandings(pages)
	if list == nil {
		return nil, fmt.Errorf("%w: no %s for %d", ErrNotFound, endpoint, year)
	}
	return list, nil
}

// fetchAll follows limit/offset pagination until MRData.total rows are read
func (s *Service) fetchAll(ctx context.Context, endpoint, path string) ([]MRData, error) {
	var pages []MRData

	for offset := 0; len(pages) < maxPages; offset += pageLimit {
		page, err := s.fetchPage(ctx, endpoint, path, offset)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)

		total, err := strconv.Atoi(page.Total)
		if err != nil || offset+pageLimit >= total {
			break
		}
	}

	return pages, nil
}

func (s *Service) fetchPage(ctx context.Context, endpoint, path string, offset int) (MRData, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(pageLimit))
	query.Set("offset", strconv.Itoa(offset))
	pageURL := fmt.Sprintf("%s/%s?%s", s.baseURL, path, query.Encode())

	body, err := s.cache.GetWithFetch(ctx, pageURL, func(ctx context.Context) ([]byte, error) {
		return s.get(ctx, endpoint, pageURL)
	})
	if err != nil {
		return MRData{}, err
	}

	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		// drop the entry so the next request refetches it
		if delErr := s.cache.Delete(ctx, pageURL); delErr != nil {
			log.Warn().Err(delErr).Str("url", pageURL).Msg("Failed to evict undecodable page")
		}
		return MRData{}, fmt.Errorf("%w: failed to decode response: %v", ErrUpstream, err)
	}
	return resp.MRData, nil
}

func (s *Service) get(ctx context.Context, endpoint, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		s.metrics.RecordUpstreamRequest(endpoint, 0, time.Since(start))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Error().
			Err(err).
			Str("url", pageURL).
			Msg("Request to F1 data source failed")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	s.metrics.RecordUpstreamRequest(endpoint, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, pageURL)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Error().
			Int("status", resp.StatusCode).
			Str("url", pageURL).
			Str("body", string(body)).
			Msg("F1 data source returned an error")
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrUpstream, err)
	}

	log.Debug().
		Str("url", pageURL).
		Int("bytes", len(body)).
		Msg("Fetched page from F1 data source")

	return body, nil
}

// mergeRaces folds paginated race tables into one list. A race split across
// pages has its rows concatenated, and a lap split across pages has its
// timings concatenated.
func mergeRaces(pages []MRData) []Race {
	var races []Race
	index := make(map[string]int)

	for _, page := range pages {
		if page.RaceTable == nil {
			continue
		}
		for _, race := range page.RaceTable.Races {
			i, seen := index[race.Round]
			if !seen {
				index[race.Round] = len(races)
				races = append(races, race)
				continue
			}

			merged := &races[i]
			merged.Results = append(merged.Results, race.Results...)
			merged.SprintResults = append(merged.SprintResults, race.SprintResults...)
			merged.QualifyingResults = append(merged.QualifyingResults, race.QualifyingResults...)
			merged.Laps = mergeLaps(merged.Laps, race.Laps)
		}
	}

	return races
}

func mergeLaps(laps, more []Lap) []Lap {
	for _, lap := range more {
		if n := len(laps); n > 0 && laps[n-1].Number == lap.Number {
			laps[n-1].Timings = append(laps[n-1].Timings, lap.Timings...)
			continue
		}
		laps = append(laps, lap)
	}
	return laps
}

func mergeStandings(pages []MRData) *StandingsList {
	var list *StandingsList

	for _, page := range pages {
		if page.StandingsTable == nil {
			continue
		}
		for _, standings := range page.StandingsTable.StandingsLists {
			if list == nil {
				copied := standings
				list = &copied
				continue
			}
			list.DriverStandings = append(list.DriverStandings, standings.DriverStandings...)
			list.ConstructorStandings = append(list.ConstructorStandings, standings.ConstructorStandings...)
		}
	}

	return list
}
