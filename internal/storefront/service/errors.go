package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrEmptyCart indicates a checkout was attempted with nothing in the cart
var ErrEmptyCart = errors.New("cart is empty")

// ErrKeyCollisionExhausted indicates key generation kept colliding with
// already-issued keys until the retry budget ran out
type ErrKeyCollisionExhausted struct {
	AppID    int64
	Attempts int
}

func (e ErrKeyCollisionExhausted) Error() string {
	return fmt.Sprintf("could not mint a unique key for game %d after %d attempts", e.AppID, e.Attempts)
}

// Is implements the errors.Is interface for ErrKeyCollisionExhausted
func (e ErrKeyCollisionExhausted) Is(target error) bool {
	_, ok := target.(ErrKeyCollisionExhausted)
	return ok
}

// ErrRollbackFailed indicates a checkout debit could not be reversed after the
// purchase failed to persist. The wallet is frozen and the amount must be
// restored by an operator.
type ErrRollbackFailed struct {
	UserID uuid.UUID
	Amount int64
}

func (e ErrRollbackFailed) Error() string {
	return fmt.Sprintf("failed to reverse debit of %d for user %s; wallet frozen for reconciliation", e.Amount, e.UserID.String())
}

// Is implements the errors.Is interface for ErrRollbackFailed
func (e ErrRollbackFailed) Is(target error) bool {
	_, ok := target.(ErrRollbackFailed)
	return ok
}
