package ledger

import "errors"

var (
	// ErrValidation is returned when a payload is rejected before any write.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when the target entity no longer exists. The
	// operation is a no-op; nothing committed earlier is touched.
	ErrNotFound = errors.New("not found")

	// ErrReadOnly is returned when a caller tries to edit or delete a
	// mirrored transaction directly. The remedy is to edit the owning
	// invoice or project, not to retry.
	ErrReadOnly = errors.New("transaction is managed automatically from its source invoice or project")

	// ErrOverpayment is returned when a payment would exceed the invoice
	// balance and the caller has not confirmed. It is a confirmable
	// condition, not a hard failure: retry with confirmation to record the
	// overpayment as given, unclamped.
	ErrOverpayment = errors.New("payment exceeds invoice balance")
)
