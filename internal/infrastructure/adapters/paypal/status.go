package paypal

import "strings"

// TransactionStatus is the normalized form of a provider transaction status. The
// recognized values are the three constants below plus StatusUnknown; anything the
// provider reports outside the mapping table passes through uppercased.
type TransactionStatus string

const (
	StatusSuccess TransactionStatus = "SUCCESS"
	StatusFailed  TransactionStatus = "FAILED"
	StatusPending TransactionStatus = "PENDING"
	StatusUnknown TransactionStatus = "UNKNOWN"
)

// statusTable maps lowercased provider status strings to normalized statuses.
var statusTable = map[string]TransactionStatus{
	"success":   StatusSuccess,
	"completed": StatusSuccess,
	"claimed":   StatusSuccess,
	"failed":    StatusFailed,
	"returned":  StatusFailed,
	"refunded":  StatusFailed,
	"blocked":   StatusFailed,
	"pending":   StatusPending,
	"unclaimed": StatusPending,
}

// NormalizeStatus maps a provider status string to a TransactionStatus. Pure function:
// unrecognized non-empty strings come back uppercased, empty input maps to UNKNOWN.
func NormalizeStatus(raw string) TransactionStatus {
	if raw == "" {
		return StatusUnknown
	}
	if normalized, ok := statusTable[strings.ToLower(raw)]; ok {
		return normalized
	}
	return TransactionStatus(strings.ToUpper(raw))
}

// IsSuccess reports whether the status means the payout item was paid
func (s TransactionStatus) IsSuccess() bool {
	return s == StatusSuccess
}

// IsFailed reports whether the status means the payout item will never be paid
func (s TransactionStatus) IsFailed() bool {
	return s == StatusFailed
}

// IsRecognized reports whether the status came from the mapping table
func (s TransactionStatus) IsRecognized() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusPending:
		return true
	}
	return false
}
