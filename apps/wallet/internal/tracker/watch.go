package tracker

import (
	"context"
	"time"

	"go.uber.org/zap"
	"wallet/apps/wallet/internal/model"
)

// Watch polls Verify on a fixed interval until the transfer reaches a terminal
// status, then invokes fn with the final record and returns. The caller owns
// the lifetime: cancel ctx to stop watching a transfer that never lands.
func (t *Tracker) Watch(ctx context.Context, txHash string, interval time.Duration, fn func(model.Transfer)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			transfer, err := t.Verify(ctx, txHash)
			if err != nil {
				t.logger.Warn("Verify attempt failed while watching transfer",
					zap.String("tx_hash", txHash),
					zap.Error(err))
				continue
			}
			if transfer.IsTerminal() {
				fn(transfer)
				return nil
			}
		}
	}
}
