package services

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"medichain-server/internal/domain"
	"medichain-server/internal/ledger"
)

// Identity is a freshly minted decentralized identifier bound to a ledger
// account. AccountRef is the ledger's account identifier the DID derives from.
type Identity struct {
	DID        string
	PublicKey  string
	AccountRef string
}

// IdentityMinter mints ledger accounts for new users and derives their DID.
// Minting is fail-fast with no retry beyond the client's own attempt policy:
// registration must fail atomically when the network call cannot complete,
// so no caller persists a user without an identity.
type IdentityMinter struct {
	client         ledger.Client
	initialBalance int64
	logger         *zap.Logger
}

// NewIdentityMinter creates an IdentityMinter.
func NewIdentityMinter(client ledger.Client, initialBalance int64, log *zap.Logger) *IdentityMinter {
	return &IdentityMinter{
		client:         client,
		initialBalance: initialBalance,
		logger:         log,
	}
}

// Mint generates a keypair, creates a ledger account for it, and derives the
// DID string from the resulting account identifier.
func (m *IdentityMinter) Mint(ctx context.Context) (Identity, error) {
	publicKey, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return Identity{}, domain.Internal("generate identity keypair", err)
	}
	publicKeyHex := hex.EncodeToString(publicKey)

	accountID, err := m.client.CreateAccount(ctx, publicKeyHex, m.initialBalance)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Identity{}, domain.DeadlineExceeded("ledger account creation timed out", err)
		}
		return Identity{}, domain.LedgerUnavailable("ledger account creation failed", err)
	}

	identity := Identity{
		DID:        fmt.Sprintf("did:hedera:%s:%s", m.client.Network(), accountID),
		PublicKey:  publicKeyHex,
		AccountRef: accountID,
	}

	m.logger.Info("Minted identity",
		zap.String("did", identity.DID),
		zap.String("account_id", accountID),
	)
	return identity, nil
}
