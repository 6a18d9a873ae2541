package models

import "time"

// DefaultPlatformFeePct is the platform's cut of a released escrow when
// no override is configured or passed per call.
const DefaultPlatformFeePct = 12

// PlatformSetting is the process-wide singleton row holding the
// commission percentage. Admins may update it at runtime.
type PlatformSetting struct {
	PlatformFeePct int       `json:"platform_fee_pct"`
	UpdatedAt      time.Time `json:"updated_at"`
}
