package dues

import (
	"errors"
	"fmt"
)

// Error taxonomy for the reconciliation engine. Validation errors are
// local rejections and must never be retried; ErrStorage propagates so
// the transport returns a server error and the gateway retries (safe,
// because the idempotency guard makes the retry a no-op if the original
// attempt actually committed).
var (
	// ErrInvalidAmount rejects non-positive amounts before any write.
	ErrInvalidAmount = errors.New("dues: amount must be greater than zero")

	// ErrPlanMismatch rejects payments referencing a plan that does not
	// belong to the member or is not Active.
	ErrPlanMismatch = errors.New("dues: plan does not belong to member or is not active")

	// ErrMemberNotFound marks a gateway event whose payer email matches
	// no member. Terminal: retrying will not create a member, so the
	// event is recorded with an explanation and needs human attention.
	ErrMemberNotFound = errors.New("dues: no member matches payer email")

	// ErrDuplicateEvent marks an event that was already fully processed.
	// The transport must treat this as success to stop gateway retries.
	ErrDuplicateEvent = errors.New("dues: event already processed")

	// ErrStaleEvent rejects events older than the acceptance window,
	// before the duplicate check. The transport should return a client
	// error so the gateway stops retrying a permanently-too-old event.
	ErrStaleEvent = errors.New("dues: event timestamp outside acceptance window")

	// ErrArchivalFailed marks a failed plan archive transaction. The
	// plan stays in its last durably committed state and a later
	// evaluation may retry safely.
	ErrArchivalFailed = errors.New("dues: plan archival failed")

	// ErrActivePlanExists rejects enrolling a member who already holds
	// an active plan.
	ErrActivePlanExists = errors.New("dues: member already has an active plan")

	// ErrUnknownFrequency rejects a plan frequency outside the known
	// schedules.
	ErrUnknownFrequency = errors.New("dues: unknown plan frequency")
)

// StorageError wraps a durable-store failure so callers can distinguish
// transient storage trouble (retry at the transport) from validation and
// business rejections (never retried).
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("dues: storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// IsStorageError reports whether err is (or wraps) a storage failure.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
