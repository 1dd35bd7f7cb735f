package program

import (
	"github.com/gagliardetto/solana-go"
)

// AccountInfo is the host's handle on one account declared by an instruction.
// Data is the account's data region; writes to it are only kept by the host
// when the instruction succeeds and the account is writable.
type AccountInfo struct {
	Key        solana.PublicKey
	Owner      solana.PublicKey
	Lamports   uint64
	Data       []byte
	IsSigner   bool
	IsWritable bool
	Executable bool
}

// Clone returns a deep copy of the account handle.
func (a *AccountInfo) Clone() *AccountInfo {
	c := *a
	if a.Data != nil {
		c.Data = make([]byte, len(a.Data))
		copy(c.Data, a.Data)
	}
	return &c
}

// AccountIter walks the positional account list of an instruction.
type AccountIter struct {
	accounts []*AccountInfo
	pos      int
}

// NewAccountIter creates an iterator over the given accounts
func NewAccountIter(accounts []*AccountInfo) *AccountIter {
	return &AccountIter{accounts: accounts}
}

// Next returns the next account or NotEnoughAccountKeys when the list is exhausted.
func (it *AccountIter) Next() (*AccountInfo, error) {
	if it.pos >= len(it.accounts) {
		return nil, NotEnoughAccountKeys
	}
	acc := it.accounts[it.pos]
	it.pos++
	return acc, nil
}

// Remaining returns the accounts not consumed yet.
func (it *AccountIter) Remaining() []*AccountInfo {
	return it.accounts[it.pos:]
}
