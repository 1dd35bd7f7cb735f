package bank

import (
	"context"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sollpay/sollpay-programs/internal/program"
	"github.com/sollpay/sollpay-programs/internal/program/token"
)

func testNowTime() time.Time {
	return time.Unix(1_700_000_000, 0)
}

func encodeToken(t *testing.T, acc *token.Account) []byte {
	t.Helper()
	data, err := token.Encode(acc)
	require.NoError(t, err)
	return data
}

func tokenHandle(t *testing.T, key, owner solana.PublicKey, amount uint64) *program.AccountInfo {
	return &program.AccountInfo{
		Key:        key,
		Owner:      solana.TokenProgramID,
		IsWritable: true,
		Data:       encodeToken(t, token.NewAccount(testMint, owner, amount)),
	}
}

func decodeHandle(t *testing.T, h *program.AccountInfo) *token.Account {
	t.Helper()
	acc, err := token.Decode(h.Data)
	require.NoError(t, err)
	return acc
}

func TestTokenProgramTransfer(t *testing.T) {
	tests := []struct {
		name      string
		authority *program.AccountInfo
		amount    uint64
		wantErr   error
	}{
		{name: "owner signs", authority: &program.AccountInfo{Key: payer, IsSigner: true}, amount: 40},
		{name: "owner did not sign", authority: &program.AccountInfo{Key: payer}, amount: 40, wantErr: program.MissingRequiredSignature},
		{name: "stranger signs", authority: &program.AccountInfo{Key: payee, IsSigner: true}, amount: 40, wantErr: program.InvalidArgument},
		{name: "balance too low", authority: &program.AccountInfo{Key: payer, IsSigner: true}, amount: 101, wantErr: program.InsufficientFunds},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tp := &tokenProgram{id: solana.TokenProgramID, log: zerolog.Nop()}
			src := tokenHandle(t, sourceKey, payer, 100)
			dst := tokenHandle(t, destKey, payee, 0)
			srcBefore := append([]byte(nil), src.Data...)

			err := tp.Transfer(context.Background(), testProgram, &token.Transfer{
				TokenProgram: &program.AccountInfo{Key: solana.TokenProgramID},
				Source:       src,
				Destination:  dst,
				Authority:    tc.authority,
				Amount:       tc.amount,
			})
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Equal(t, srcBefore, src.Data)
				assert.Zero(t, tp.moved)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 100-tc.amount, decodeHandle(t, src).Amount)
			assert.Equal(t, tc.amount, decodeHandle(t, dst).Amount)
			assert.Equal(t, tc.amount, tp.moved)
		})
	}
}

func TestTokenProgramRejectsMintMismatch(t *testing.T) {
	tp := &tokenProgram{id: solana.TokenProgramID, log: zerolog.Nop()}
	dst := tokenHandle(t, destKey, payee, 0)
	dst.Data = encodeToken(t, token.NewAccount(filledKey(0xCC), payee, 0))

	err := tp.Transfer(context.Background(), testProgram, &token.Transfer{
		TokenProgram: &program.AccountInfo{Key: solana.TokenProgramID},
		Source:       tokenHandle(t, sourceKey, payer, 100),
		Destination:  dst,
		Authority:    &program.AccountInfo{Key: payer, IsSigner: true},
		Amount:       1,
	})
	require.ErrorIs(t, err, program.InvalidTokenAccount)
}
