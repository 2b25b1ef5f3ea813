package contracts

import "errors"

// Error taxonomy shared by every stage.
// ⭐ SSOT: per-instrument 실패 사유는 여기서만 정의
var (
	// ErrMalformedInput means a file or row could not be parsed, or the
	// series is not a valid ascending daily series.
	ErrMalformedInput = errors.New("malformed input")

	// ErrInsufficientHistory means the series is shorter than a stage requires.
	ErrInsufficientHistory = errors.New("insufficient history")
)

// Degenerate arithmetic (zero denominators, flat windows) is not an error:
// indicators fall back to 0 or Undefined.
