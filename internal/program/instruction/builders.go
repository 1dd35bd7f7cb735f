package instruction

import (
	"github.com/gagliardetto/solana-go"
)

func meta(key solana.PublicKey, writable, signer bool) *solana.AccountMeta {
	return &solana.AccountMeta{PublicKey: key, IsWritable: writable, IsSigner: signer}
}

// NewCreatePlanInstruction builds a CreatePlan call with accounts in positional order.
func NewCreatePlanInstruction(
	programID solana.PublicKey,
	plan, owner, authority, mint solana.PublicKey,
	nonce uint8, timeframe, maxAmount uint64,
) *solana.GenericInstruction {
	ix := &CreatePlan{Nonce: nonce, SubscriptionTimeframe: timeframe, MaxAmount: maxAmount}
	return solana.NewInstruction(programID, solana.AccountMetaSlice{
		meta(plan, true, false),
		meta(owner, false, true),
		meta(authority, false, false),
		meta(mint, false, false),
	}, ix.Pack())
}

// NewCreateSubscriptionInstruction builds a CreateSubscription call. payer
// owns tokenAccount and signs.
func NewCreateSubscriptionInstruction(
	programID solana.PublicKey,
	subscription, plan, tokenAccount, tokenProgram, feeAccount, payer solana.PublicKey,
	timeframe, maxAmount uint64,
) *solana.GenericInstruction {
	ix := &CreateSubscription{SubscriptionTimeframe: timeframe, MaxAmount: maxAmount}
	return solana.NewInstruction(programID, solana.AccountMetaSlice{
		meta(subscription, true, false),
		meta(plan, false, false),
		meta(tokenAccount, false, false),
		meta(tokenProgram, false, false),
		meta(solana.SysVarClockPubkey, false, false),
		meta(feeAccount, false, false),
		meta(payer, false, true),
	}, ix.Pack())
}

// NewClaimInstruction builds a Claim call. A zero amount claims the remaining allowance.
func NewClaimInstruction(
	programID solana.PublicKey,
	subscription, plan, source, destination, authority, tokenProgram solana.PublicKey,
	amount uint64,
) *solana.GenericInstruction {
	ix := &Claim{Amount: amount}
	return solana.NewInstruction(programID, solana.AccountMetaSlice{
		meta(subscription, true, false),
		meta(plan, false, false),
		meta(solana.SysVarClockPubkey, false, false),
		meta(source, true, false),
		meta(destination, true, false),
		meta(authority, false, false),
		meta(tokenProgram, false, false),
	}, ix.Pack())
}
