package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skillbridge/backend/internal/models"
)

// SettingRepo manages the single platform_settings row. The row is
// created on first read with the configured default fee.
type SettingRepo struct {
	pool       *pgxpool.Pool
	defaultPct int
}

func NewSettingRepo(pool *pgxpool.Pool, defaultPct int) *SettingRepo {
	return &SettingRepo{pool: pool, defaultPct: defaultPct}
}

func (r *SettingRepo) Get(ctx context.Context) (*models.PlatformSetting, error) {
	var s models.PlatformSetting
	err := r.pool.QueryRow(ctx, `
		INSERT INTO platform_settings (id, platform_fee_pct) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET id = platform_settings.id
		RETURNING platform_fee_pct, updated_at
	`, r.defaultPct).Scan(&s.PlatformFeePct, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// PlatformFeePct returns the current commission percentage.
func (r *SettingRepo) PlatformFeePct(ctx context.Context) (int, error) {
	s, err := r.Get(ctx)
	if err != nil {
		return 0, err
	}
	return s.PlatformFeePct, nil
}

func (r *SettingRepo) UpdateFee(ctx context.Context, pct int) (*models.PlatformSetting, error) {
	var s models.PlatformSetting
	err := r.pool.QueryRow(ctx, `
		INSERT INTO platform_settings (id, platform_fee_pct) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET platform_fee_pct = $1, updated_at = now()
		RETURNING platform_fee_pct, updated_at
	`, pct).Scan(&s.PlatformFeePct, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
