package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseQuoteStatus(t *testing.T) {
	for _, raw := range []string{"draft", "sent", "accepted", "rejected", "converted"} {
		status, ok := ParseQuoteStatus(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, QuoteStatus(raw), status)
	}

	_, ok := ParseQuoteStatus("expired")
	assert.False(t, ok, "expired is derived, never stored")
}

func TestQuoteCanModifyItems(t *testing.T) {
	assert.True(t, QuoteDraft.CanModifyItems())
	for _, s := range []QuoteStatus{QuoteSent, QuoteAccepted, QuoteRejected, QuoteConverted} {
		assert.False(t, s.CanModifyItems(), "lines must be frozen in %s", s)
	}
}

func TestQuoteCanSend(t *testing.T) {
	assert.NoError(t, QuoteDraft.CanSend(1))
	assert.ErrorIs(t, QuoteDraft.CanSend(0), ErrInvalidInvoiceState)

	for _, s := range []QuoteStatus{QuoteSent, QuoteAccepted, QuoteRejected, QuoteConverted} {
		assert.ErrorIs(t, s.CanSend(2), ErrInvalidTransition, "send from %s", s)
	}
}

func TestQuoteAcceptReject(t *testing.T) {
	assert.NoError(t, QuoteSent.CanAccept())
	assert.NoError(t, QuoteSent.CanReject())

	for _, s := range []QuoteStatus{QuoteDraft, QuoteAccepted, QuoteRejected, QuoteConverted} {
		assert.ErrorIs(t, s.CanAccept(), ErrInvalidTransition, "accept from %s", s)
		assert.ErrorIs(t, s.CanReject(), ErrInvalidTransition, "reject from %s", s)
	}
}

func TestQuoteCanConvert(t *testing.T) {
	assert.NoError(t, QuoteAccepted.CanConvert(false))
	assert.ErrorIs(t, QuoteAccepted.CanConvert(true), ErrInvalidInvoiceState)

	for _, s := range []QuoteStatus{QuoteDraft, QuoteSent, QuoteRejected, QuoteConverted} {
		assert.ErrorIs(t, s.CanConvert(false), ErrInvalidTransition, "convert from %s", s)
	}
}

func TestDeriveQuoteExpired(t *testing.T) {
	validity := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	before := validity.AddDate(0, 0, -1)
	after := validity.AddDate(0, 0, 1)

	assert.False(t, DeriveQuoteExpired(QuoteSent, validity, before))
	assert.True(t, DeriveQuoteExpired(QuoteSent, validity, after))
	assert.False(t, DeriveQuoteExpired(QuoteDraft, validity, after))
	assert.False(t, DeriveQuoteExpired(QuoteAccepted, validity, after))
}
