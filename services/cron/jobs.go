package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/vivekdhawan/gravimetry-api/services"
)

// CleanupExpiredTokens deletes password-reset and email-verification tokens
// past their expiry. Expired tokens already fail verification; this bounds
// table growth.
func (m *CronManager) CleanupExpiredTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	jobName := "cleanup_expired_tokens"

	tokens := services.NewTokenService(m.db)
	removed, err := tokens.DeleteExpired(ctx)
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to delete expired tokens: %w", err))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Deleted %d expired tokens", removed))
}

// PruneRevocationSet drops revocation entries whose tokens are past their
// natural expiry, bounding the set's memory use.
func (m *CronManager) PruneRevocationSet() {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	jobName := "prune_revocation_set"

	removed, err := m.revoked.Prune(ctx)
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to prune revocation set: %w", err))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Pruned %d revocation entries", removed))
}
