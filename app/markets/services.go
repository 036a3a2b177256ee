package markets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/joefazee/roundbet/internal/cache"
	"github.com/joefazee/roundbet/internal/logger"
	"github.com/joefazee/roundbet/models"
	"gorm.io/gorm"
)

const (
	listCacheKey     = "markets:active"
	marketCacheKeyFn = "market:%s"
)

// service implements the Service interface
type service struct {
	repo   Repository
	db     *gorm.DB
	cache  cache.Cache[string]
	config *Config
	logger logger.Logger
}

// NewService creates a new market service
func NewService(repo Repository, db *gorm.DB, c cache.Cache[string], config *Config, log logger.Logger) Service {
	if config == nil {
		config = GetDefaultConfig()
	}
	return &service{
		repo:   repo,
		db:     db,
		cache:  c,
		config: config,
		logger: log,
	}
}

// Get returns a market by slug, served from cache when possible.
func (s *service) Get(ctx context.Context, id string) (*models.Market, error) {
	raw, err := cache.Remember(ctx, s.cache, fmt.Sprintf(marketCacheKeyFn, id), s.config.CacheTTL, func(ctx context.Context) (string, error) {
		market, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return "", err
		}
		return encode(market)
	})
	if err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			return nil, models.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get market: %w", err)
	}

	var market models.Market
	if err := json.Unmarshal([]byte(raw), &market); err != nil {
		return nil, fmt.Errorf("failed to decode market: %w", err)
	}
	return &market, nil
}

// List returns the active markets.
func (s *service) List(ctx context.Context) ([]models.Market, error) {
	raw, err := cache.Remember(ctx, s.cache, listCacheKey, s.config.CacheTTL, func(ctx context.Context) (string, error) {
		markets, err := s.repo.GetAll(ctx, true)
		if err != nil {
			return "", err
		}
		return encode(markets)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list markets: %w", err)
	}

	var markets []models.Market
	if err := json.Unmarshal([]byte(raw), &markets); err != nil {
		return nil, fmt.Errorf("failed to decode markets: %w", err)
	}
	return markets, nil
}

// IsOpen reports whether the market's daily window admits bets at now.
func (s *service) IsOpen(market *models.Market, now time.Time) bool {
	return market.IsActive && market.IsOpen(now)
}

// Sync upserts the catalogue and drops cached copies.
func (s *service) Sync(ctx context.Context, catalogue []models.Market) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		for i := range catalogue {
			if err := catalogue[i].Validate(); err != nil {
				return fmt.Errorf("market %q: %w", catalogue[i].ID, err)
			}
			if err := repo.Upsert(ctx, &catalogue[i]); err != nil {
				return fmt.Errorf("failed to upsert market %q: %w", catalogue[i].ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for i := range catalogue {
		s.invalidate(ctx, catalogue[i].ID)
	}
	s.logger.Info("market catalogue synced", map[string]interface{}{
		"markets": len(catalogue),
	})
	return nil
}

// UpdateSchedule changes a market's daily window and records who did it.
func (s *service) UpdateSchedule(ctx context.Context, adminID uuid.UUID, id string, req *ScheduleRequest) (*models.Market, error) {
	market, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	old := models.AuditValues{"open_at": deref(market.OpenAt), "close_at": deref(market.CloseAt)}
	market.OpenAt, market.CloseAt = req.OpenAt, req.CloseAt
	if err := market.Validate(); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpdateSchedule(ctx, id, req.OpenAt, req.CloseAt); err != nil {
			return err
		}
		audit := models.NewAdminAuditLog(adminID, models.AuditActionScheduleUpdate, models.AuditResourceMarket, id,
			old,
			models.AuditValues{"open_at": deref(req.OpenAt), "close_at": deref(req.CloseAt)})
		if err := repo.CreateAuditLog(ctx, audit); err != nil {
			return fmt.Errorf("failed to create audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	s.logger.Info("market schedule updated", map[string]interface{}{
		"admin_id":  adminID.String(),
		"market_id": id,
		"open_at":   deref(req.OpenAt),
		"close_at":  deref(req.CloseAt),
	})
	return market, nil
}

func (s *service) invalidate(ctx context.Context, id string) {
	_ = s.cache.Delete(ctx, fmt.Sprintf(marketCacheKeyFn, id))
	_ = s.cache.Delete(ctx, listCacheKey)
}

func encode(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
