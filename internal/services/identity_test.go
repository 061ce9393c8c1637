package services

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"medichain-server/internal/domain"
)

func TestIdentityMinter_Mint_DerivesDIDFromAccount(t *testing.T) {
	var gotKey string
	var gotBalance int64
	client := &MockLedgerClient{
		NetworkName: "testnet",
		CreateAccountFunc: func(ctx context.Context, publicKey string, initialBalance int64) (string, error) {
			gotKey = publicKey
			gotBalance = initialBalance
			return "0.0.7777", nil
		},
	}

	minter := NewIdentityMinter(client, 100, zap.NewNop())

	identity, err := minter.Mint(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "did:hedera:testnet:0.0.7777", identity.DID)
	assert.Equal(t, "0.0.7777", identity.AccountRef)
	assert.Equal(t, int64(100), gotBalance)

	// ed25519 public keys are 32 bytes, hex encoded.
	raw, err := hex.DecodeString(identity.PublicKey)
	require.NoError(t, err)
	assert.Len(t, raw, 32)
	assert.Equal(t, identity.PublicKey, gotKey)
}

func TestIdentityMinter_Mint_EachIdentityIsUnique(t *testing.T) {
	client := &MockLedgerClient{
		CreateAccountFunc: func(ctx context.Context, publicKey string, initialBalance int64) (string, error) {
			return "0.0.7777", nil
		},
	}
	minter := NewIdentityMinter(client, 0, zap.NewNop())

	first, err := minter.Mint(context.Background())
	require.NoError(t, err)
	second, err := minter.Mint(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, first.PublicKey, second.PublicKey)
}

func TestIdentityMinter_Mint_LedgerFailureIsFailFast(t *testing.T) {
	client := &MockLedgerClient{
		CreateAccountFunc: func(ctx context.Context, publicKey string, initialBalance int64) (string, error) {
			return "", errors.New("connection refused")
		},
	}
	minter := NewIdentityMinter(client, 100, zap.NewNop())

	_, err := minter.Mint(context.Background())
	require.Error(t, err)
	assert.Equal(t, domain.KindLedgerUnavailable, domain.KindOf(err))
}

func TestIdentityMinter_Mint_TimeoutMapsToDeadlineExceeded(t *testing.T) {
	client := &MockLedgerClient{
		CreateAccountFunc: func(ctx context.Context, publicKey string, initialBalance int64) (string, error) {
			return "", fmt.Errorf("create account: %w", context.DeadlineExceeded)
		},
	}
	minter := NewIdentityMinter(client, 100, zap.NewNop())

	_, err := minter.Mint(context.Background())
	require.Error(t, err)
	assert.Equal(t, domain.KindDeadlineExceeded, domain.KindOf(err))
}
