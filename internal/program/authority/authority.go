// Package authority derives the custody authority of a plan: an address only
// the program can sign for, computed from the program id, the plan account and
// a nonce.
package authority

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/sollpay/sollpay-programs/internal/program"
)

// Authority is the custody capability of one plan. It is validated once at
// plan creation, stored in the plan record and compared by value afterwards.
type Authority struct {
	Address solana.PublicKey
	Nonce   uint8
}

// seeds returns the derivation seeds for a plan account and nonce.
func seeds(plan solana.PublicKey, nonce uint8) [][]byte {
	return [][]byte{plan[:], {nonce}}
}

// Derive computes the authority address for (programID, plan, nonce).
// It fails with InvalidProgramAddress when the derived point lies on the
// ed25519 curve; callers may retry with another nonce.
func Derive(programID, plan solana.PublicKey, nonce uint8) (Authority, error) {
	addr, err := solana.CreateProgramAddress(seeds(plan, nonce), programID)
	if err != nil {
		return Authority{}, program.InvalidProgramAddress
	}
	return Authority{Address: addr, Nonce: nonce}, nil
}

// Find searches nonces from 255 downwards and returns the first valid authority.
func Find(programID, plan solana.PublicKey) (Authority, error) {
	addr, nonce, err := solana.FindProgramAddress([][]byte{plan[:]}, programID)
	if err != nil {
		return Authority{}, fmt.Errorf("find authority for plan %s: %w", plan, program.InvalidProgramAddress)
	}
	return Authority{Address: addr, Nonce: nonce}, nil
}

// FromPlan rebuilds the stored capability without re-deriving it.
func FromPlan(address solana.PublicKey, nonce uint8) Authority {
	return Authority{Address: address, Nonce: nonce}
}

// Matches reports whether key is this authority's address
func (a Authority) Matches(key solana.PublicKey) bool {
	return a.Address.Equals(key)
}

// SignerSeeds returns the seeds the host needs to sign for the authority
// on behalf of the program.
func (a Authority) SignerSeeds(plan solana.PublicKey) [][]byte {
	return seeds(plan, a.Nonce)
}

// Verify checks that signerSeeds derive key under programID.
func Verify(programID, key solana.PublicKey, signerSeeds [][]byte) bool {
	addr, err := solana.CreateProgramAddress(signerSeeds, programID)
	if err != nil {
		return false
	}
	return addr.Equals(key)
}
