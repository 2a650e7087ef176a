package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// StartTokenCleaner periodically removes refresh tokens that are expired
// or revoked. It stops when ctx is done.
func StartTokenCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				res, err := db.ExecContext(ctx, `
                    DELETE FROM refresh_tokens
                     WHERE revoked = true
                        OR expires_at < $1
                `, time.Now().UTC())
				if err != nil {
					log.Error("failed to clean refresh tokens", zap.Error(err))
					continue
				}
				if rows, _ := res.RowsAffected(); rows > 0 {
					log.Info("cleaned refresh tokens", zap.Int64("removed", rows))
				}
			}
		}
	}()
}
