package bank

import (
	"bytes"

	"github.com/gagliardetto/solana-go"

	"github.com/sollpay/sollpay-programs/internal/program"
	"github.com/sollpay/sollpay-programs/internal/storage/accountstore"
)

// action represents what an instruction did to a tracked account
type action int

const (
	// actionCache means the account was read but not modified
	actionCache action = iota
	// actionInsert means a previously missing account was written
	actionInsert
	// actionModify means an existing account was modified
	actionModify
)

func (a action) String() string {
	switch a {
	case actionInsert:
		return "insert"
	case actionModify:
		return "modify"
	default:
		return "cache"
	}
}

// trackedEntry is one account loaded for an instruction
type trackedEntry struct {
	// original is the state before the instruction; exists is false for
	// accounts that were not in the store
	original *accountstore.Account
	exists   bool
	// synthetic accounts (sysvars, programs) are never persisted
	synthetic bool
	handle    *program.AccountInfo
}

// stateTable hands the program one mutable handle per distinct account and
// works out, after the program returns, which accounts to persist. Nothing
// reaches the store unless the whole instruction succeeded.
type stateTable struct {
	items map[solana.PublicKey]*trackedEntry
	order []solana.PublicKey
}

func newStateTable() *stateTable {
	return &stateTable{items: make(map[solana.PublicKey]*trackedEntry)}
}

// track registers an account. A nil acc tracks a missing account.
func (t *stateTable) track(key solana.PublicKey, acc *accountstore.Account) {
	if _, ok := t.items[key]; ok {
		return
	}
	entry := &trackedEntry{exists: acc != nil}
	if acc == nil {
		acc = &accountstore.Account{Key: key, Owner: solana.SystemProgramID, Data: []byte{}}
	}
	entry.original = acc
	entry.handle = &program.AccountInfo{
		Key:        key,
		Owner:      acc.Owner,
		Lamports:   acc.Lamports,
		Data:       append([]byte(nil), acc.Data...),
		Executable: acc.Executable,
	}
	t.items[key] = entry
	t.order = append(t.order, key)
}

// trackSynthetic registers a host-provided account such as a sysvar
func (t *stateTable) trackSynthetic(info *program.AccountInfo) {
	if _, ok := t.items[info.Key]; ok {
		return
	}
	t.items[info.Key] = &trackedEntry{
		original: &accountstore.Account{
			Key:        info.Key,
			Owner:      info.Owner,
			Lamports:   info.Lamports,
			Data:       append([]byte(nil), info.Data...),
			Executable: info.Executable,
		},
		exists:    true,
		synthetic: true,
		handle:    info,
	}
	t.order = append(t.order, info.Key)
}

func (t *stateTable) tracked(key solana.PublicKey) bool {
	_, ok := t.items[key]
	return ok
}

// accountInfos returns the handles in the instruction's positional order.
// An account listed twice shares one handle whose flags are the union.
func (t *stateTable) accountInfos(metas []*solana.AccountMeta) []*program.AccountInfo {
	out := make([]*program.AccountInfo, len(metas))
	for i, m := range metas {
		h := t.items[m.PublicKey].handle
		h.IsWritable = h.IsWritable || m.IsWritable
		h.IsSigner = h.IsSigner || m.IsSigner
		out[i] = h
	}
	return out
}

// change is an account to persist
type change struct {
	action  action
	account *accountstore.Account
}

// changes validates the handles against the originals and returns the
// accounts to commit. Data may only change on writable accounts owned by one
// of owners, and never change size.
func (t *stateTable) changes(slot uint64, owners ...solana.PublicKey) ([]change, error) {
	var out []change
	for _, key := range t.order {
		e := t.items[key]
		h, orig := e.handle, e.original

		dataChanged := !bytes.Equal(orig.Data, h.Data)
		modified := dataChanged || orig.Lamports != h.Lamports || !orig.Owner.Equals(h.Owner)
		if !modified {
			continue
		}
		if e.synthetic || !h.IsWritable {
			return nil, program.ReadonlyDataModified
		}
		if len(orig.Data) != len(h.Data) {
			return nil, program.InvalidAccountData
		}
		if dataChanged && !ownedByAny(orig.Owner, owners) {
			return nil, program.ReadonlyDataModified
		}

		a := actionModify
		if !e.exists {
			a = actionInsert
		}
		out = append(out, change{
			action: a,
			account: &accountstore.Account{
				Key:        key,
				Owner:      h.Owner,
				Lamports:   h.Lamports,
				Executable: orig.Executable,
				Data:       append([]byte(nil), h.Data...),
				Slot:       slot,
			},
		})
	}
	return out, nil
}

func ownedByAny(owner solana.PublicKey, owners []solana.PublicKey) bool {
	for _, o := range owners {
		if owner.Equals(o) {
			return true
		}
	}
	return false
}
