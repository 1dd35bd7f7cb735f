// Package token is the program's view of the fungible token collaborator:
// decoding token accounts and requesting transfers signed by a custody
// authority.
package token

import (
	"bytes"
	"context"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	spltoken "github.com/gagliardetto/solana-go/programs/token"

	"github.com/sollpay/sollpay-programs/internal/program"
)

//go:generate mockgen -destination=mock_token/mock_transferer.go -package=mock_token github.com/sollpay/sollpay-programs/internal/program/token Transferer

// AccountLen is the size of a token account's data
const AccountLen = 165

// Account is a decoded token account
type Account = spltoken.Account

// Transfer asks the token collaborator to move Amount from Source to
// Destination under Authority.
type Transfer struct {
	TokenProgram *program.AccountInfo
	Source       *program.AccountInfo
	Destination  *program.AccountInfo
	Authority    *program.AccountInfo
	Amount       uint64
	// SignerSeeds let the host sign for a program-derived Authority
	SignerSeeds [][]byte
}

// Transferer executes token transfers on behalf of an invoking program.
type Transferer interface {
	Transfer(ctx context.Context, programID solana.PublicKey, t *Transfer) error
}

// UnpackAccount decodes a token account owned by tokenProgramID.
func UnpackAccount(acc *program.AccountInfo, tokenProgramID solana.PublicKey) (*Account, error) {
	if !acc.Owner.Equals(tokenProgramID) {
		return nil, program.IncorrectTokenProgramID
	}
	return Decode(acc.Data)
}

// Decode decodes token account data.
func Decode(data []byte) (*Account, error) {
	if len(data) != AccountLen {
		return nil, program.ExpectedAccount
	}
	var out Account
	if err := bin.NewBinDecoder(data).Decode(&out); err != nil {
		return nil, program.ExpectedAccount
	}
	// uninitialized
	if out.State == 0 {
		return nil, program.ExpectedAccount
	}
	return &out, nil
}

// Encode writes a token account in its 165-byte layout.
func Encode(acc *Account) ([]byte, error) {
	var buf bytes.Buffer
	if err := bin.NewBinEncoder(&buf).Encode(acc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// NewAccount returns an initialized token account holding amount of mint.
func NewAccount(mint, owner solana.PublicKey, amount uint64) *Account {
	return &Account{
		Mint:   mint,
		Owner:  owner,
		Amount: amount,
		State:  1,
	}
}
