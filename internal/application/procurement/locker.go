package procurement

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// VendorLocker serializes allocation runs for one vendor across processes.
// It is an optimization only; row locks taken inside the transaction are
// what keep balances consistent.
type VendorLocker interface {
	LockVendor(ctx context.Context, vendorID uuid.UUID) (release func(), err error)
}

type noopVendorLocker struct{}

func (noopVendorLocker) LockVendor(context.Context, uuid.UUID) (func(), error) {
	return func() {}, nil
}

// lockVendor takes the best-effort vendor lock. Failure to lock is logged
// and the database row locks take over.
func lockVendor(ctx context.Context, locker VendorLocker, log *zap.Logger, vendorID uuid.UUID) func() {
	release, err := locker.LockVendor(ctx, vendorID)
	if err != nil {
		log.Warn("vendor lock not acquired",
			zap.String("vendor_id", vendorID.String()),
			zap.Error(err),
		)
		return func() {}
	}
	return release
}
