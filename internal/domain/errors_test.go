package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(Validationf("bad input")))
	assert.Equal(t, KindNotFound, KindOf(NotFoundf("missing")))
	assert.Equal(t, KindConflict, KindOf(Conflictf("already done")))
	assert.Equal(t, KindLedgerUnavailable, KindOf(LedgerUnavailable("down", errors.New("refused"))))
}

func TestKindOfWrappedError(t *testing.T) {
	inner := StorageUnavailable("pin failed", errors.New("502"))
	wrapped := fmt.Errorf("upload: %w", inner)
	assert.Equal(t, KindStorageUnavailable, KindOf(wrapped))
}

func TestKindOfPlainErrorIsInternal(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("dial timeout")
	err := LedgerUnavailable("submit failed", cause)
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "LEDGER_UNAVAILABLE")
	assert.Contains(t, err.Error(), "dial timeout")
}

func TestIs(t *testing.T) {
	assert.True(t, Is(Conflictf("dup"), KindConflict))
	assert.False(t, Is(Conflictf("dup"), KindNotFound))
}
