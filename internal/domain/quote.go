package domain

import "time"

// QuoteStatus is the persisted lifecycle state of a quote. "expired" is never
// stored: it is derived at read time from the validity date, mirroring how
// invoices derive overdue.
type QuoteStatus string

const (
	QuoteDraft     QuoteStatus = "draft"
	QuoteSent      QuoteStatus = "sent"
	QuoteAccepted  QuoteStatus = "accepted"
	QuoteRejected  QuoteStatus = "rejected"
	QuoteConverted QuoteStatus = "converted"
)

func ParseQuoteStatus(raw string) (QuoteStatus, bool) {
	switch QuoteStatus(raw) {
	case QuoteDraft, QuoteSent, QuoteAccepted, QuoteRejected, QuoteConverted:
		return QuoteStatus(raw), true
	}
	return "", false
}

// CanModifyItems: quote lines are mutable only while the quote is a draft.
func (s QuoteStatus) CanModifyItems() bool {
	return s == QuoteDraft
}

// CanSend guards draft -> sent: a draft with at least one line.
func (s QuoteStatus) CanSend(itemCount int) error {
	if s != QuoteDraft {
		return ErrInvalidTransition
	}
	if itemCount < 1 {
		return ErrInvalidInvoiceState
	}
	return nil
}

// CanAccept guards sent -> accepted.
func (s QuoteStatus) CanAccept() error {
	if s != QuoteSent {
		return ErrInvalidTransition
	}
	return nil
}

// CanReject guards sent -> rejected.
func (s QuoteStatus) CanReject() error {
	if s != QuoteSent {
		return ErrInvalidTransition
	}
	return nil
}

// CanConvert guards accepted -> converted. A quote converts to an invoice at
// most once.
func (s QuoteStatus) CanConvert(alreadyConverted bool) error {
	if s != QuoteAccepted {
		return ErrInvalidTransition
	}
	if alreadyConverted {
		return ErrInvalidInvoiceState
	}
	return nil
}

// DeriveQuoteExpired evaluates the read-time expiry predicate: a sent quote
// whose validity date has passed. An expired quote can still be accepted if
// the client comes back; expiry is informational, not a lock.
func DeriveQuoteExpired(status QuoteStatus, validityDate time.Time, now time.Time) bool {
	return status == QuoteSent && now.After(validityDate)
}
