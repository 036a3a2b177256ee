package players

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/joefazee/roundbet/app/wallet"
	"github.com/joefazee/roundbet/internal/cache"
	"github.com/joefazee/roundbet/internal/formatter"
	"github.com/joefazee/roundbet/internal/logger"
	"github.com/joefazee/roundbet/internal/sanitizer"
	"github.com/joefazee/roundbet/models"
	"gorm.io/gorm"
)

type service struct {
	repo      Repository
	db        *gorm.DB
	ledger    wallet.Ledger
	cache     cache.Cache[string]
	sanitizer sanitizer.HTMLStripperer
	config    *Config
	logger    logger.Logger
}

func NewService(repo Repository, db *gorm.DB, ledger wallet.Ledger, c cache.Cache[string], s sanitizer.HTMLStripperer, config *Config, log logger.Logger) Service {
	if config == nil {
		config = GetDefaultConfig()
	}
	return &service{
		repo:      repo,
		db:        db,
		ledger:    ledger,
		cache:     c,
		sanitizer: s,
		config:    config,
		logger:    log,
	}
}

func permissionsKey(userID uuid.UUID) string {
	return fmt.Sprintf("player:%s:permissions", userID)
}

// GetPermissions returns the subject's role permissions. A subject with no
// player record is an ordinary player; an inactive one is refused.
func (s *service) GetPermissions(ctx context.Context, userID uuid.UUID) ([]string, error) {
	raw, err := cache.Remember(ctx, s.cache, permissionsKey(userID), s.config.PermissionTTL, func(ctx context.Context) (string, error) {
		perms, err := s.loadPermissions(ctx, userID)
		if err != nil {
			return "", err
		}
		b, err := json.Marshal(perms)
		return string(b), err
	})
	if err != nil {
		return nil, err
	}

	var perms []string
	if err := json.Unmarshal([]byte(raw), &perms); err != nil {
		return nil, fmt.Errorf("failed to decode cached permissions: %w", err)
	}
	return perms, nil
}

func (s *service) loadPermissions(ctx context.Context, userID uuid.UUID) ([]string, error) {
	player, err := s.repo.GetByID(ctx, userID)
	if errors.Is(err, models.ErrRecordNotFound) {
		return models.RolePlayer.Permissions(), nil
	}
	if err != nil {
		return nil, err
	}
	if !player.IsActive {
		return nil, models.ErrPlayerInactive
	}
	return player.Permissions(), nil
}

// Register records the token subject as a player and opens an empty wallet
// for them in the same transaction.
func (s *service) Register(ctx context.Context, userID uuid.UUID, req *RegisterRequest) (*Response, error) {
	if userID == uuid.Nil {
		return nil, models.ErrInvalidUserID
	}

	region := req.CountryCode
	if region == "" {
		region = s.config.DefaultRegion
	}
	phone, err := formatter.FormatPhone(req.Phone, region)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidPhone, err)
	}

	if _, err := s.repo.GetByID(ctx, userID); err == nil {
		return nil, models.ErrPlayerExists
	} else if !errors.Is(err, models.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := s.repo.GetByPhone(ctx, phone); err == nil {
		return nil, models.ErrPhoneTaken
	} else if !errors.Is(err, models.ErrRecordNotFound) {
		return nil, err
	}

	player := &models.Player{
		ID:          userID,
		Phone:       phone,
		DisplayName: s.sanitizer.StripHTML(req.DisplayName),
		Role:        models.RolePlayer,
		IsActive:    true,
	}
	if err := player.Validate(); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, player); err != nil {
			return err
		}
		_, err := s.ledger.WithTx(tx).EnsureWallet(ctx, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register player: %w", err)
	}

	if err := s.cache.Delete(ctx, permissionsKey(userID)); err != nil {
		s.logger.Warn("failed to drop cached permissions", map[string]interface{}{
			"user_id": userID.String(),
			"error":   err.Error(),
		})
	}

	s.logger.Info("player registered", map[string]interface{}{"user_id": userID.String()})
	return ToResponse(player), nil
}

func (s *service) GetMe(ctx context.Context, userID uuid.UUID) (*Response, error) {
	player, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ToResponse(player), nil
}
