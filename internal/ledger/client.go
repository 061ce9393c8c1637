package ledger

import (
	"context"
)

// Receipt is the durable proof returned for a submitted topic message. The
// network assigns a monotonically increasing sequence number per topic; there
// is no ordering guarantee across topics.
type Receipt struct {
	SequenceNumber     uint64
	ConsensusTimestamp string
}

// Client is the distributed-ledger collaborator contract. Implementations
// are explicitly constructed and injected so tests can substitute fakes.
type Client interface {
	// CreateTopic creates a new append-only topic and returns its id.
	CreateTopic(ctx context.Context, memo string) (string, error)

	// SubmitMessage appends message to the topic and waits for the receipt.
	SubmitMessage(ctx context.Context, topicID string, message []byte) (Receipt, error)

	// CreateAccount mints a new ledger account for the given public key and
	// returns the account identifier.
	CreateAccount(ctx context.Context, publicKey string, initialBalance int64) (string, error)

	// GetBalance returns the balance of an account as a display string.
	GetBalance(ctx context.Context, accountID string) (string, error)

	// Network returns the configured network name (testnet, mainnet, previewnet).
	Network() string
}
