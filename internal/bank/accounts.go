package bank

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/sollpay/sollpay-programs/internal/program/token"
	"github.com/sollpay/sollpay-programs/internal/storage/accountstore"
)

var (
	// ErrAccountExists is returned when creating an account that is already stored
	ErrAccountExists = errors.New("account already exists")

	// ErrNotTokenOwner is returned when a token account operation is not signed by its owner
	ErrNotTokenOwner = errors.New("signer does not own the token account")
)

// rentLamports is credited to accounts created by the bank
const rentLamports = 1_000_000

// Account returns the stored state of key
func (b *Bank) Account(ctx context.Context, key solana.PublicKey) (*accountstore.Account, error) {
	return b.store.Get(ctx, key)
}

// ForEachAccount walks every stored account in address order
func (b *Bank) ForEachAccount(ctx context.Context, fn func(*accountstore.Account) bool) error {
	return b.store.ForEach(ctx, fn)
}

// CreateAccount allocates a zeroed account of size space owned by owner
func (b *Bank) CreateAccount(ctx context.Context, key, owner solana.PublicKey, space int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ensureMissing(ctx, key); err != nil {
		return err
	}
	return b.store.Put(ctx, &accountstore.Account{
		Key:      key,
		Owner:    owner,
		Lamports: rentLamports,
		Data:     make([]byte, space),
		Slot:     b.slot,
	})
}

// CreateTokenAccount creates an initialized token account of mint held by owner
func (b *Bank) CreateTokenAccount(ctx context.Context, key, mint, owner solana.PublicKey, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ensureMissing(ctx, key); err != nil {
		return err
	}
	data, err := token.Encode(token.NewAccount(mint, owner, amount))
	if err != nil {
		return fmt.Errorf("encode token account %s: %w", key, err)
	}
	return b.store.Put(ctx, &accountstore.Account{
		Key:      key,
		Owner:    b.tokens.id,
		Lamports: rentLamports,
		Data:     data,
		Slot:     b.slot,
	})
}

// MintTo credits amount to a token account
func (b *Bank) MintTo(ctx context.Context, key solana.PublicKey, amount uint64) error {
	return b.updateToken(ctx, key, func(acc *token.Account) error {
		if acc.Amount+amount < acc.Amount {
			return fmt.Errorf("mint to %s overflows", key)
		}
		acc.Amount += amount
		return nil
	})
}

// Approve lets delegate transfer up to amount out of a token account. The
// token account owner must sign; a zero amount revokes the delegate.
func (b *Bank) Approve(ctx context.Context, key, owner, delegate solana.PublicKey, amount uint64) error {
	return b.updateToken(ctx, key, func(acc *token.Account) error {
		if !acc.Owner.Equals(owner) {
			return ErrNotTokenOwner
		}
		if amount == 0 {
			acc.Delegate = nil
			acc.DelegatedAmount = 0
			return nil
		}
		d := delegate
		acc.Delegate = &d
		acc.DelegatedAmount = amount
		return nil
	})
}

func (b *Bank) updateToken(ctx context.Context, key solana.PublicKey, fn func(*token.Account) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	stored, err := b.store.Get(ctx, key)
	if err != nil {
		return err
	}
	if !stored.Owner.Equals(b.tokens.id) {
		return fmt.Errorf("account %s is not a token account", key)
	}
	acc, err := token.Decode(stored.Data)
	if err != nil {
		return fmt.Errorf("decode token account %s: %w", key, err)
	}
	if err := fn(acc); err != nil {
		return err
	}

	stored.Data, err = token.Encode(acc)
	if err != nil {
		return fmt.Errorf("encode token account %s: %w", key, err)
	}
	stored.Slot = b.slot
	return b.store.Put(ctx, stored)
}

func (b *Bank) ensureMissing(ctx context.Context, key solana.PublicKey) error {
	_, err := b.store.Get(ctx, key)
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s", ErrAccountExists, key)
	case errors.Is(err, accountstore.ErrAccountNotFound):
		return nil
	default:
		return err
	}
}
