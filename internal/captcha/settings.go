package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/sudmegaphone/backend/internal/models"
)

const settingsCacheKey = "security:settings"

// SettingsService reads the bot-protection configuration, cached in redis
// so the check on every public submit does not hit the database.
type SettingsService struct {
	db       *pgxpool.Pool
	redis    *redis.Client
	cacheTTL time.Duration
}

func NewSettingsService(db *pgxpool.Pool, rdb *redis.Client, cacheTTL time.Duration) *SettingsService {
	return &SettingsService{db: db, redis: rdb, cacheTTL: cacheTTL}
}

func (s *SettingsService) Get(ctx context.Context) (*models.SecuritySettings, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, settingsCacheKey).Bytes(); err == nil {
			var settings models.SecuritySettings
			if err := json.Unmarshal(cached, &settings); err == nil {
				return &settings, nil
			}
		}
	}

	var settings models.SecuritySettings
	err := s.db.QueryRow(ctx,
		`SELECT id, captcha_enabled, site_key, min_score, updated_at FROM security_settings WHERE id = 1`,
	).Scan(&settings.ID, &settings.CaptchaEnabled, &settings.SiteKey, &settings.MinScore, &settings.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get security settings: %w", err)
	}

	s.cache(ctx, &settings)
	return &settings, nil
}

func (s *SettingsService) Update(ctx context.Context, enabled bool, siteKey string, minScore float64) (*models.SecuritySettings, error) {
	var settings models.SecuritySettings
	err := s.db.QueryRow(ctx,
		`UPDATE security_settings SET captcha_enabled = $1, site_key = $2, min_score = $3, updated_at = now()
		 WHERE id = 1
		 RETURNING id, captcha_enabled, site_key, min_score, updated_at`,
		enabled, siteKey, minScore,
	).Scan(&settings.ID, &settings.CaptchaEnabled, &settings.SiteKey, &settings.MinScore, &settings.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update security settings: %w", err)
	}

	if s.redis != nil {
		if err := s.redis.Del(ctx, settingsCacheKey).Err(); err != nil {
			slog.Warn("invalidate settings cache", "error", err)
		}
	}
	s.cache(ctx, &settings)
	return &settings, nil
}

func (s *SettingsService) cache(ctx context.Context, settings *models.SecuritySettings) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, settingsCacheKey, data, s.cacheTTL).Err(); err != nil {
		slog.Warn("cache security settings", "error", err)
	}
}
