package processor

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/golang/mock/gomock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sollpay/sollpay-programs/internal/program"
	"github.com/sollpay/sollpay-programs/internal/program/authority"
	"github.com/sollpay/sollpay-programs/internal/program/instruction"
	"github.com/sollpay/sollpay-programs/internal/program/state"
	"github.com/sollpay/sollpay-programs/internal/program/sysvar"
	"github.com/sollpay/sollpay-programs/internal/program/token"
	"github.com/sollpay/sollpay-programs/internal/program/token/mock_token"
)

const (
	testNow       = int64(1_700_000_000)
	testNonce     = uint8(7)
	testTimeframe = uint64(2592000)
	testMax       = uint64(1000)
)

var (
	testProgram = filledKey(0xA0)
	testMint    = filledKey(0xB0)
)

func filledKey(b byte) solana.PublicKey {
	var k solana.PublicKey
	for i := range k {
		k[i] = b
	}
	return k
}

// fixture holds the accounts of one plan, one subscription and two token
// accounts. The plan owner collects into destination; payer holds source.
type fixture struct {
	plan         *program.AccountInfo
	owner        *program.AccountInfo
	payer        *program.AccountInfo
	authority    *program.AccountInfo
	mint         *program.AccountInfo
	subscription *program.AccountInfo
	source       *program.AccountInfo
	destination  *program.AccountInfo
	tokenProgram *program.AccountInfo
	clock        *program.AccountInfo
	fee          *program.AccountInfo
	auth         authority.Authority
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	// find a plan key for which testNonce yields a valid authority
	var (
		planKey solana.PublicKey
		auth    authority.Authority
		found   bool
	)
	for b := 1; b < 256 && !found; b++ {
		candidate := filledKey(byte(b))
		a, err := authority.Derive(testProgram, candidate, testNonce)
		if err == nil {
			planKey, auth, found = candidate, a, true
		}
	}
	require.True(t, found)

	payer, payee := filledKey(0x11), filledKey(0x55)
	return &fixture{
		plan:         &program.AccountInfo{Key: planKey, Owner: testProgram, IsWritable: true, Data: make([]byte, state.PlanLen)},
		owner:        &program.AccountInfo{Key: payee, IsSigner: true},
		payer:        &program.AccountInfo{Key: payer, IsSigner: true},
		authority:    &program.AccountInfo{Key: auth.Address},
		mint:         &program.AccountInfo{Key: testMint, Owner: solana.TokenProgramID},
		subscription: &program.AccountInfo{Key: filledKey(0x22), Owner: testProgram, IsWritable: true, Data: make([]byte, state.SubscriptionLen)},
		source:       tokenAccount(t, filledKey(0x33), payer, 5000),
		destination:  tokenAccount(t, filledKey(0x44), payee, 0),
		tokenProgram: &program.AccountInfo{Key: solana.TokenProgramID, Executable: true},
		clock:        clockAccount(testNow),
		fee:          &program.AccountInfo{Key: filledKey(0x66)},
		auth:         auth,
	}
}

func encodeToken(t *testing.T, acc *token.Account) []byte {
	t.Helper()
	data, err := token.Encode(acc)
	require.NoError(t, err)
	return data
}

func tokenAccount(t *testing.T, key, owner solana.PublicKey, amount uint64) *program.AccountInfo {
	return &program.AccountInfo{
		Key:        key,
		Owner:      solana.TokenProgramID,
		IsWritable: true,
		Data:       encodeToken(t, token.NewAccount(testMint, owner, amount)),
	}
}

func clockAccount(now int64) *program.AccountInfo {
	return &program.AccountInfo{Key: solana.SysVarClockPubkey, Data: (&sysvar.Clock{UnixTimestamp: now}).Pack()}
}

func (f *fixture) createPlanAccounts() []*program.AccountInfo {
	return []*program.AccountInfo{f.plan, f.owner, f.authority, f.mint}
}

func (f *fixture) createSubscriptionAccounts() []*program.AccountInfo {
	return []*program.AccountInfo{f.subscription, f.plan, f.source, f.tokenProgram, f.clock, f.fee, f.payer}
}

func (f *fixture) claimAccounts() []*program.AccountInfo {
	return []*program.AccountInfo{f.subscription, f.plan, f.clock, f.source, f.destination, f.authority, f.tokenProgram}
}

func newProcessor(opts Options) *Processor {
	opts.Logger = zerolog.Nop()
	return New(opts)
}

func createPlanData(nonce uint8, timeframe, maxAmount uint64) []byte {
	return (&instruction.CreatePlan{Nonce: nonce, SubscriptionTimeframe: timeframe, MaxAmount: maxAmount}).Pack()
}

func createSubscriptionData(timeframe, maxAmount uint64) []byte {
	return (&instruction.CreateSubscription{SubscriptionTimeframe: timeframe, MaxAmount: maxAmount}).Pack()
}

func claimData(amount uint64) []byte {
	return (&instruction.Claim{Amount: amount}).Pack()
}

func (f *fixture) mustCreatePlan(t *testing.T, p *Processor) {
	t.Helper()
	err := p.Process(context.Background(), testProgram, f.createPlanAccounts(), createPlanData(testNonce, testTimeframe, testMax))
	require.NoError(t, err)
}

func (f *fixture) mustCreateSubscription(t *testing.T, p *Processor, timeframe, maxAmount uint64) {
	t.Helper()
	err := p.Process(context.Background(), testProgram, f.createSubscriptionAccounts(), createSubscriptionData(timeframe, maxAmount))
	require.NoError(t, err)
}

func TestProcessRejectsMalformedData(t *testing.T) {
	p := newProcessor(Options{})
	f := newFixture(t)

	for _, data := range [][]byte{nil, {9}, {0, 7, 1, 2}} {
		err := p.Process(context.Background(), testProgram, f.createPlanAccounts(), data)
		require.ErrorIs(t, err, program.InvalidInstruction)
	}
}

func TestCreatePlan(t *testing.T) {
	p := newProcessor(Options{})
	f := newFixture(t)

	f.mustCreatePlan(t, p)

	plan, err := state.UnpackPlan(f.plan.Data)
	require.NoError(t, err)
	assert.Equal(t, &state.SubscriptionPlan{
		IsInitialized:         true,
		Nonce:                 testNonce,
		Owner:                 f.owner.Key,
		Authority:             f.auth.Address,
		Token:                 testMint,
		SubscriptionTimeframe: testTimeframe,
		MaxAmount:             testMax,
	}, plan)
}

func TestCreatePlanReinitializeLeavesBytesUnchanged(t *testing.T) {
	p := newProcessor(Options{})
	f := newFixture(t)
	f.mustCreatePlan(t, p)

	before := append([]byte(nil), f.plan.Data...)
	err := p.Process(context.Background(), testProgram, f.createPlanAccounts(), createPlanData(testNonce, 60, 5))
	require.ErrorIs(t, err, program.AccountAlreadyInitialized)
	assert.Equal(t, before, f.plan.Data)
}

func TestCreatePlanChecks(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *fixture) []*program.AccountInfo
		data    []byte
		wantErr program.Error
	}{
		{
			name:    "missing accounts",
			mutate:  func(f *fixture) []*program.AccountInfo { return f.createPlanAccounts()[:3] },
			wantErr: program.NotEnoughAccountKeys,
		},
		{
			name: "plan not owned by program",
			mutate: func(f *fixture) []*program.AccountInfo {
				f.plan.Owner = solana.SystemProgramID
				return f.createPlanAccounts()
			},
			wantErr: program.IncorrectProgramID,
		},
		{
			name: "owner did not sign",
			mutate: func(f *fixture) []*program.AccountInfo {
				f.owner.IsSigner = false
				return f.createPlanAccounts()
			},
			wantErr: program.MissingRequiredSignature,
		},
		{
			name: "wrong authority",
			mutate: func(f *fixture) []*program.AccountInfo {
				f.authority.Key = filledKey(0x77)
				return f.createPlanAccounts()
			},
			wantErr: program.InvalidProgramAddress,
		},
		{
			name:    "wrong nonce",
			mutate:  func(f *fixture) []*program.AccountInfo { return f.createPlanAccounts() },
			data:    createPlanData(testNonce+1, testTimeframe, testMax),
			wantErr: program.InvalidProgramAddress,
		},
		{
			name:    "zero timeframe",
			mutate:  func(f *fixture) []*program.AccountInfo { return f.createPlanAccounts() },
			data:    createPlanData(testNonce, 0, testMax),
			wantErr: program.InvalidSubscriptionTimeframe,
		},
		{
			name:    "zero max amount",
			mutate:  func(f *fixture) []*program.AccountInfo { return f.createPlanAccounts() },
			data:    createPlanData(testNonce, testTimeframe, 0),
			wantErr: program.InvalidMaxAmount,
		},
		{
			name: "wrong record size",
			mutate: func(f *fixture) []*program.AccountInfo {
				f.plan.Data = make([]byte, state.PlanLen-1)
				return f.createPlanAccounts()
			},
			wantErr: program.InvalidAccountData,
		},
		{
			name: "garbage initialized byte",
			mutate: func(f *fixture) []*program.AccountInfo {
				f.plan.Data[0] = 0xAB
				return f.createPlanAccounts()
			},
			wantErr: program.AccountAlreadyInitialized,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := newProcessor(Options{})
			f := newFixture(t)
			accounts := tc.mutate(f)
			data := tc.data
			if data == nil {
				data = createPlanData(testNonce, testTimeframe, testMax)
			}
			before := append([]byte(nil), f.plan.Data...)

			err := p.Process(context.Background(), testProgram, accounts, data)
			require.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, before, f.plan.Data)
		})
	}
}

func TestCreateSubscription(t *testing.T) {
	p := newProcessor(Options{})
	f := newFixture(t)
	f.mustCreatePlan(t, p)
	f.mustCreateSubscription(t, p, testTimeframe, testMax)

	sub, err := state.UnpackSubscription(f.subscription.Data)
	require.NoError(t, err)
	assert.Equal(t, &state.Subscription{
		IsInitialized:           true,
		IsApproved:              true,
		SubscriptionPlanAccount: f.plan.Key,
		TokenAccount:            f.source.Key,
		Owner:                   f.owner.Key,
		CycleStart:              testNow,
		SubscriptionTimeframe:   testTimeframe,
		MaxAmount:               testMax,
	}, sub)

	err = p.Process(context.Background(), testProgram, f.createSubscriptionAccounts(), createSubscriptionData(testTimeframe, testMax))
	require.ErrorIs(t, err, program.AccountAlreadyInitialized)
}

func TestCreateSubscriptionCycleOpenOffset(t *testing.T) {
	p := newProcessor(Options{CycleOpenOffset: 86400})
	f := newFixture(t)
	f.mustCreatePlan(t, p)
	f.mustCreateSubscription(t, p, testTimeframe, testMax)

	sub, err := state.UnpackSubscription(f.subscription.Data)
	require.NoError(t, err)
	assert.Equal(t, testNow-86400, sub.CycleStart)
}

func TestCreateSubscriptionNegativeCycleOpenOffset(t *testing.T) {
	p := newProcessor(Options{CycleOpenOffset: -86400})
	f := newFixture(t)
	f.mustCreatePlan(t, p)
	f.mustCreateSubscription(t, p, testTimeframe, testMax)

	sub, err := state.UnpackSubscription(f.subscription.Data)
	require.NoError(t, err)
	assert.Equal(t, testNow, sub.CycleStart, "cycle never starts in the future")
}

func TestCreateSubscriptionTermsMismatchWritesNothing(t *testing.T) {
	tests := []struct {
		name      string
		shift     uint
		timeframe uint64
		maxAmount uint64
		wantErr   error
	}{
		{name: "exact timeframe mismatch", timeframe: testTimeframe - 1, maxAmount: testMax, wantErr: program.InvalidSubscriptionTimeframe},
		{name: "exact max mismatch", timeframe: testTimeframe, maxAmount: testMax + 1, wantErr: program.InvalidMaxAmount},
		{name: "exact match", timeframe: testTimeframe, maxAmount: testMax},
		{name: "scaled rule rejects unscaled terms", shift: 8, timeframe: testTimeframe, maxAmount: testMax, wantErr: program.InvalidSubscriptionTimeframe},
		{name: "scaled max mismatch", shift: 8, timeframe: testTimeframe >> 8, maxAmount: testMax, wantErr: program.InvalidMaxAmount},
		{name: "scaled match", shift: 8, timeframe: testTimeframe >> 8, maxAmount: testMax >> 8},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := newProcessor(Options{ScaleShift: tc.shift})
			f := newFixture(t)
			f.mustCreatePlan(t, p)

			err := p.Process(context.Background(), testProgram, f.createSubscriptionAccounts(), createSubscriptionData(tc.timeframe, tc.maxAmount))
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Equal(t, make([]byte, state.SubscriptionLen), f.subscription.Data)
				return
			}
			require.NoError(t, err)
			sub, err := state.UnpackSubscription(f.subscription.Data)
			require.NoError(t, err)
			assert.Equal(t, tc.maxAmount, sub.MaxAmount)
			assert.Equal(t, tc.timeframe, sub.SubscriptionTimeframe)
		})
	}
}

func TestCreateSubscriptionChecks(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *fixture)
		wantErr program.Error
	}{
		{name: "plan not initialized", mutate: func(f *fixture) { f.plan.Data = make([]byte, state.PlanLen) }, wantErr: program.UninitializedAccount},
		{name: "plan with garbage flag", mutate: func(f *fixture) { f.plan.Data[0] = 2 }, wantErr: program.InvalidAccountData},
		{name: "plan owned elsewhere", mutate: func(f *fixture) { f.plan.Owner = solana.SystemProgramID }, wantErr: program.IncorrectProgramID},
		{name: "subscription owned elsewhere", mutate: func(f *fixture) { f.subscription.Owner = solana.SystemProgramID }, wantErr: program.IncorrectProgramID},
		{name: "wrong token program", mutate: func(f *fixture) { f.tokenProgram.Key = solana.SystemProgramID }, wantErr: program.IncorrectTokenProgramID},
		{name: "token account owned elsewhere", mutate: func(f *fixture) { f.source.Owner = solana.SystemProgramID }, wantErr: program.IncorrectTokenProgramID},
		{name: "token account not decodable", mutate: func(f *fixture) { f.source.Data = []byte{1, 2, 3} }, wantErr: program.ExpectedAccount},
		{
			name: "token account for another mint",
			mutate: func(f *fixture) {
				f.source.Data = encodeToken(t, token.NewAccount(filledKey(0x99), f.payer.Key, 1))
			},
			wantErr: program.InvalidTokenAccount,
		},
		{name: "payer did not sign", mutate: func(f *fixture) { f.payer.IsSigner = false }, wantErr: program.MissingRequiredSignature},
		{name: "signer does not hold the token account", mutate: func(f *fixture) { f.payer.Key = filledKey(0x77) }, wantErr: program.MissingRequiredSignature},
		{name: "plan owner signs for the payer", mutate: func(f *fixture) { f.payer = f.owner }, wantErr: program.MissingRequiredSignature},
		{name: "clock is not the sysvar", mutate: func(f *fixture) { f.clock.Key = filledKey(0x12) }, wantErr: program.InvalidArgument},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := newProcessor(Options{})
			f := newFixture(t)
			f.mustCreatePlan(t, p)
			tc.mutate(f)

			err := p.Process(context.Background(), testProgram, f.createSubscriptionAccounts(), createSubscriptionData(testTimeframe, testMax))
			require.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, make([]byte, state.SubscriptionLen), f.subscription.Data)
		})
	}

	t.Run("fee account is required", func(t *testing.T) {
		p := newProcessor(Options{})
		f := newFixture(t)
		f.mustCreatePlan(t, p)

		err := p.Process(context.Background(), testProgram, f.createSubscriptionAccounts()[:5], createSubscriptionData(testTimeframe, testMax))
		require.ErrorIs(t, err, program.NotEnoughAccountKeys)
	})

	t.Run("payer is required", func(t *testing.T) {
		p := newProcessor(Options{})
		f := newFixture(t)
		f.mustCreatePlan(t, p)

		err := p.Process(context.Background(), testProgram, f.createSubscriptionAccounts()[:6], createSubscriptionData(testTimeframe, testMax))
		require.ErrorIs(t, err, program.NotEnoughAccountKeys)
		assert.Equal(t, make([]byte, state.SubscriptionLen), f.subscription.Data)
	})
}

func TestCreateSubscriptionSecondUnsignedSubscriptionFails(t *testing.T) {
	p := newProcessor(Options{})
	f := newFixture(t)
	f.mustCreatePlan(t, p)
	f.mustCreateSubscription(t, p, testTimeframe, testMax)

	// another subscription drawing on the same token account
	second := &program.AccountInfo{Key: filledKey(0x23), Owner: testProgram, IsWritable: true, Data: make([]byte, state.SubscriptionLen)}
	unsigned := &program.AccountInfo{Key: f.payer.Key}
	accounts := []*program.AccountInfo{second, f.plan, f.source, f.tokenProgram, f.clock, f.fee, unsigned}

	err := p.Process(context.Background(), testProgram, accounts, createSubscriptionData(testTimeframe, testMax))
	require.ErrorIs(t, err, program.MissingRequiredSignature)
	assert.Equal(t, make([]byte, state.SubscriptionLen), second.Data)
}

func TestClaimEndToEnd(t *testing.T) {
	ctrl := gomock.NewController(t)
	transferer := mock_token.NewMockTransferer(ctrl)

	p := newProcessor(Options{Transferer: transferer})
	f := newFixture(t)
	f.mustCreatePlan(t, p)
	f.mustCreateSubscription(t, p, testTimeframe, testMax)

	transferer.EXPECT().
		Transfer(gomock.Any(), testProgram, gomock.Any()).
		DoAndReturn(func(_ context.Context, programID solana.PublicKey, tr *token.Transfer) error {
			assert.Equal(t, testMax, tr.Amount)
			assert.Equal(t, f.source, tr.Source)
			assert.Equal(t, f.destination, tr.Destination)
			assert.Equal(t, f.authority, tr.Authority)
			assert.True(t, authority.Verify(programID, tr.Authority.Key, tr.SignerSeeds))
			return nil
		}).
		Times(1)

	f.clock.Data = (&sysvar.Clock{UnixTimestamp: testNow + 60}).Pack()
	require.NoError(t, p.Process(context.Background(), testProgram, f.claimAccounts(), claimData(testMax)))

	sub, err := state.UnpackSubscription(f.subscription.Data)
	require.NoError(t, err)
	assert.Equal(t, testMax, sub.WithdrawnAmount)
	assert.Equal(t, testNow, sub.CycleStart)

	// allowance exhausted for this cycle
	before := append([]byte(nil), f.subscription.Data...)
	err = p.Process(context.Background(), testProgram, f.claimAccounts(), claimData(testMax))
	require.ErrorIs(t, err, program.InvalidMaxAmount)
	assert.Equal(t, before, f.subscription.Data)

	err = p.Process(context.Background(), testProgram, f.claimAccounts(), claimData(0))
	require.ErrorIs(t, err, program.InvalidMaxAmount)
}

func TestClaimNextCycle(t *testing.T) {
	ctrl := gomock.NewController(t)
	transferer := mock_token.NewMockTransferer(ctrl)
	transferer.EXPECT().Transfer(gomock.Any(), testProgram, gomock.Any()).Return(nil).Times(2)

	p := newProcessor(Options{Transferer: transferer})
	f := newFixture(t)
	f.mustCreatePlan(t, p)
	f.mustCreateSubscription(t, p, testTimeframe, testMax)

	require.NoError(t, p.Process(context.Background(), testProgram, f.claimAccounts(), claimData(0)))

	next := testNow + 2*int64(testTimeframe) + 10
	f.clock.Data = (&sysvar.Clock{UnixTimestamp: next}).Pack()
	require.NoError(t, p.Process(context.Background(), testProgram, f.claimAccounts(), claimData(400)))

	sub, err := state.UnpackSubscription(f.subscription.Data)
	require.NoError(t, err)
	assert.Equal(t, testNow+2*int64(testTimeframe), sub.CycleStart)
	assert.Equal(t, uint64(400), sub.WithdrawnAmount)
}

func TestClaimTransferFailureWritesNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	transferer := mock_token.NewMockTransferer(ctrl)
	transferer.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any()).Return(program.InsufficientFunds)

	p := newProcessor(Options{Transferer: transferer})
	f := newFixture(t)
	f.mustCreatePlan(t, p)
	f.mustCreateSubscription(t, p, testTimeframe, testMax)

	before := append([]byte(nil), f.subscription.Data...)
	err := p.Process(context.Background(), testProgram, f.claimAccounts(), claimData(10))
	require.ErrorIs(t, err, program.InsufficientFunds)
	assert.Equal(t, before, f.subscription.Data)
}

func TestClaimChecks(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *fixture) []*program.AccountInfo
		wantErr program.Error
	}{
		{
			name: "plan does not govern subscription",
			mutate: func(f *fixture) []*program.AccountInfo {
				accs := f.claimAccounts()
				accs[1] = &program.AccountInfo{Key: filledKey(0x78), Owner: testProgram, Data: f.plan.Data}
				return accs
			},
			wantErr: program.InvalidSubscriptionPlan,
		},
		{
			name: "wrong authority",
			mutate: func(f *fixture) []*program.AccountInfo {
				accs := f.claimAccounts()
				accs[5] = &program.AccountInfo{Key: f.owner.Key}
				return accs
			},
			wantErr: program.InvalidProgramAddress,
		},
		{
			name: "source is not the subscription's token account",
			mutate: func(f *fixture) []*program.AccountInfo {
				accs := f.claimAccounts()
				accs[3] = f.destination
				return accs
			},
			wantErr: program.InvalidTokenAccount,
		},
		{
			name: "destination for another mint",
			mutate: func(f *fixture) []*program.AccountInfo {
				f.destination.Data = encodeToken(t, token.NewAccount(filledKey(0x98), f.owner.Key, 0))
				return f.claimAccounts()
			},
			wantErr: program.InvalidTokenAccount,
		},
		{
			name: "destination owned by someone else",
			mutate: func(f *fixture) []*program.AccountInfo {
				accs := f.claimAccounts()
				accs[4] = tokenAccount(t, filledKey(0x45), filledKey(0x77), 0)
				return accs
			},
			wantErr: program.InvalidTokenAccount,
		},
		{
			name: "destination owned by the payer",
			mutate: func(f *fixture) []*program.AccountInfo {
				accs := f.claimAccounts()
				accs[4] = tokenAccount(t, filledKey(0x45), f.payer.Key, 0)
				return accs
			},
			wantErr: program.InvalidTokenAccount,
		},
		{
			name: "wrong token program",
			mutate: func(f *fixture) []*program.AccountInfo {
				f.tokenProgram.Key = solana.SystemProgramID
				return f.claimAccounts()
			},
			wantErr: program.IncorrectTokenProgramID,
		},
		{
			name: "subscription not approved",
			mutate: func(f *fixture) []*program.AccountInfo {
				sub, _ := state.UnpackSubscription(f.subscription.Data)
				sub.IsApproved = false
				_ = sub.Pack(f.subscription.Data)
				return f.claimAccounts()
			},
			wantErr: program.SubscriptionNotApproved,
		},
		{
			name: "subscription not initialized",
			mutate: func(f *fixture) []*program.AccountInfo {
				f.subscription.Data = make([]byte, state.SubscriptionLen)
				return f.claimAccounts()
			},
			wantErr: program.UninitializedAccount,
		},
		{
			name:    "missing token program",
			mutate:  func(f *fixture) []*program.AccountInfo { return f.claimAccounts()[:6] },
			wantErr: program.NotEnoughAccountKeys,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			transferer := mock_token.NewMockTransferer(ctrl)

			p := newProcessor(Options{Transferer: transferer})
			f := newFixture(t)
			f.mustCreatePlan(t, p)
			f.mustCreateSubscription(t, p, testTimeframe, testMax)

			accounts := tc.mutate(f)
			before := append([]byte(nil), f.subscription.Data...)

			err := p.Process(context.Background(), testProgram, accounts, claimData(1))
			require.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, before, f.subscription.Data)
		})
	}
}
