package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sqlgrader-api/internal/dto"
	"github.com/noah-isme/sqlgrader-api/internal/ranking"
	"github.com/noah-isme/sqlgrader-api/internal/repository"
)

const (
	leaderboardCacheKey = "leaderboard:v1"
	leaderboardTopSize  = 4
)

// LeaderboardService produces the ranked standings view.
type LeaderboardService interface {
	Leaderboard(ctx context.Context, studentID uint) (dto.LeaderboardResponse, error)
	Invalidate(ctx context.Context) error
}

type leaderboardService struct {
	submissions repository.SubmissionRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
}

// NewLeaderboardService builds the leaderboard aggregator. The redis client
// may be nil, in which case standings are computed on every request.
func NewLeaderboardService(submissions repository.SubmissionRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) LeaderboardService {
	return &leaderboardService{
		submissions: submissions,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "leaderboard_service").Logger(),
	}
}

func (s *leaderboardService) Leaderboard(ctx context.Context, studentID uint) (dto.LeaderboardResponse, error) {
	standings, err := s.standings(ctx)
	if err != nil {
		return dto.LeaderboardResponse{}, err
	}

	response := dto.LeaderboardResponse{
		Standings: dto.NewLeaderboardEntrySlice(standings),
		Top:       dto.NewLeaderboardEntrySlice(standings.Top(leaderboardTopSize)),
	}

	if entry, ok := standings.For(studentID); ok {
		me := dto.NewLeaderboardEntryResponse(entry)
		response.Me = &me
	}

	return response, nil
}

// standings is cache-aside over the shared standings, not per-student: the
// caller-specific fields are sliced out of the cached value.
func (s *leaderboardService) standings(ctx context.Context) (ranking.Standings, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, leaderboardCacheKey).Result(); err == nil {
			var standings ranking.Standings
			if unmarshalErr := json.Unmarshal([]byte(cached), &standings); unmarshalErr == nil {
				s.logger.Debug().Msg("leaderboard cache hit")
				return standings, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read leaderboard cache")
		}
	}

	rows, err := s.submissions.RankingRows(ctx)
	if err != nil {
		return nil, err
	}

	standings := ranking.Compute(rows)

	if s.cache != nil {
		if payload, err := json.Marshal(standings); err == nil {
			if err := s.cache.Set(ctx, leaderboardCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store leaderboard cache")
			}
		}
	}

	return standings, nil
}

func (s *leaderboardService) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Del(ctx, leaderboardCacheKey).Err()
}
