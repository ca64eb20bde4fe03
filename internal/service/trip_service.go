package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"safiri/config"
	"safiri/internal/models"
	"safiri/internal/repository"

	"github.com/redis/go-redis/v9"
)

// TripService fronts trip search with a short-lived Redis cache. Cache keys
// embed a version counter; admin writes bump the counter instead of deleting
// keys, so invalidation is one INCR no matter how many filters were cached.
type TripService struct {
	tripRepo *repository.TripRepository
	rdb      *redis.Client
	ttl      time.Duration
}

const searchVersionKey = "trips:search:version"

func NewTripService(cfg *config.RedisConfig, tripRepo *repository.TripRepository, rdb *redis.Client) *TripService {
	return &TripService{tripRepo: tripRepo, rdb: rdb, ttl: cfg.SearchTTL}
}

func (s *TripService) Search(ctx context.Context, f repository.TripSearch) ([]models.Trip, error) {
	key, ok := s.searchKey(ctx, f)
	if ok {
		if data, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
			var trips []models.Trip
			if json.Unmarshal(data, &trips) == nil {
				return trips, nil
			}
		}
	}
	trips, err := s.tripRepo.Search(f)
	if err != nil {
		return nil, err
	}
	if ok {
		if data, err := json.Marshal(trips); err == nil {
			if err := s.rdb.Set(ctx, key, data, s.ttl).Err(); err != nil {
				log.Printf("trip search cache set: %v", err)
			}
		}
	}
	return trips, nil
}

func (s *TripService) GetByID(id uint) (*models.Trip, error) {
	return s.tripRepo.GetByID(id)
}

func (s *TripService) ListCities() ([]models.City, error) {
	return s.tripRepo.ListCities()
}

// InvalidateSearchCache bumps the cache version after an admin writes trip
// data. Failure only means stale results for at most the TTL.
func (s *TripService) InvalidateSearchCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Incr(ctx, searchVersionKey).Err(); err != nil {
		log.Printf("trip search cache invalidate: %v", err)
	}
}

// searchKey builds the versioned cache key; ok is false when Redis is
// unavailable and the caller should go straight to the database.
func (s *TripService) searchKey(ctx context.Context, f repository.TripSearch) (string, bool) {
	if s.rdb == nil {
		return "", false
	}
	version, err := s.rdb.Get(ctx, searchVersionKey).Int64()
	if err != nil && err != redis.Nil {
		return "", false
	}
	date := ""
	if !f.Date.IsZero() {
		date = f.Date.Format("2006-01-02")
	}
	key := fmt.Sprintf("trips:search:v%d:%s:%d:%d:%s:%d:%d",
		version, f.Mode, f.FromCity, f.ToCity, date, f.Limit, f.Offset)
	return key, true
}
