// Package assistant connects the loan desk to an external generative AI
// assistant. A Session keeps the conversation, lets at most one inquiry be in
// flight and turns every gateway failure into a local apology message. The
// assistant never reads or changes calculator state.
package assistant

import "context"

// SystemInstruction frames every inquiry sent to the model.
const SystemInstruction = `You are a mortgage regulation assistant for bank loan officers in Korea.
Answer questions about LTV, DSR, regional regulation tiers, policy loan caps,
living stabilization funds and post-approval obligations concisely and factually.
Amounts are in millions of KRW unless stated otherwise. If a question cannot be
answered from current regulation, say so instead of guessing.`

// Gateway sends one free-text inquiry to an assistant and returns its reply.
// Implementations make a single attempt and honour the context deadline.
type Gateway interface {
	SendInquiry(ctx context.Context, text string) (string, error)
}

// DisabledGateway is used when no API key is configured. Every inquiry fails
// with ErrNotConfigured, which a Session renders as an apology.
type DisabledGateway struct{}

// SendInquiry always fails with ErrNotConfigured.
func (DisabledGateway) SendInquiry(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}
