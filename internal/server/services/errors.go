package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/vaultx/internal/common"
	"github.com/dmitrijs2005/vaultx/internal/logging"
)

// publicError returns err as is when it matches one of the known sentinels.
// Anything else is logged and replaced with common.ErrorInternal so driver
// and library details never reach a client.
func publicError(ctx context.Context, logger logging.Logger, op string, err error, known ...error) error {
	for _, k := range known {
		if errors.Is(err, k) {
			return err
		}
	}
	logger.Error(ctx, op+" failed", "error", err)
	return common.ErrorInternal
}
