package booking

import "context"

// BookingSequence is the sequence name used for booking references.
const BookingSequence = "bookingId"

// SequenceStore is the authoritative atomic counter capability. Next must be
// an indivisible increment-and-fetch: no two callers may ever observe the
// same value for a name, and the first value for a fresh name is 1.
//
// Implementations must surface store failures as
// domain.CodeSequenceUnavailable; callers never fabricate values locally.
type SequenceStore interface {
	Next(ctx context.Context, name string) (int64, error)
}
