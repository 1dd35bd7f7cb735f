// Package bank is a single-node host for the program. It loads the accounts
// an instruction names from the account store, publishes the clock sysvar,
// runs the processor against private copies and commits every change of a
// successful instruction in one storage batch.
package bank

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	"github.com/sollpay/sollpay-programs/internal/metrics"
	"github.com/sollpay/sollpay-programs/internal/program"
	"github.com/sollpay/sollpay-programs/internal/program/instruction"
	"github.com/sollpay/sollpay-programs/internal/program/processor"
	"github.com/sollpay/sollpay-programs/internal/storage/accountstore"
	"github.com/sollpay/sollpay-programs/internal/storage/history"
)

// loaderID owns executable program accounts
var loaderID = solana.BPFLoaderUpgradeableProgramID

// Options configures a Bank
type Options struct {
	ProgramID solana.PublicKey
	Processor processor.Options
	Store     *accountstore.Store
	// History is optional
	History *history.DB
	Clock   ClockSource
	Logger  zerolog.Logger
}

// Receipt describes an executed instruction
type Receipt struct {
	Slot        uint64
	UnixTime    int64
	Instruction string
	// Transferred is the token amount moved by the instruction
	Transferred uint64
	Modified    []solana.PublicKey
	Duration    time.Duration
}

// Bank executes instructions one at a time against the account store
type Bank struct {
	mu sync.Mutex

	programID solana.PublicKey
	store     *accountstore.Store
	history   *history.DB
	proc      *processor.Processor
	tokens    *tokenProgram
	clock     ClockSource
	log       zerolog.Logger

	slot uint64
}

// New creates a bank. The processor's transfer collaborator is always the
// bank's own token program.
func New(opts Options) (*Bank, error) {
	if opts.Store == nil {
		return nil, errors.New("bank requires an account store")
	}
	if opts.ProgramID.IsZero() {
		return nil, errors.New("bank requires a program id")
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	log := opts.Logger.With().Str("component", "bank").Logger()

	procOpts := opts.Processor
	procOpts.Logger = opts.Logger
	if procOpts.TokenProgramID.IsZero() {
		procOpts.TokenProgramID = solana.TokenProgramID
	}
	tokens := &tokenProgram{
		id:  procOpts.TokenProgramID,
		log: opts.Logger.With().Str("component", "token").Logger(),
	}
	procOpts.Transferer = tokens

	return &Bank{
		programID: opts.ProgramID,
		store:     opts.Store,
		history:   opts.History,
		proc:      processor.New(procOpts),
		tokens:    tokens,
		clock:     opts.Clock,
		log:       log,
	}, nil
}

// ProgramID returns the id of the hosted program
func (b *Bank) ProgramID() solana.PublicKey {
	return b.programID
}

// TokenProgramID returns the id of the bank's token program
func (b *Bank) TokenProgramID() solana.PublicKey {
	return b.tokens.id
}

// Execute runs one instruction. On failure no account changes are kept and
// the program error is returned together with the receipt.
func (b *Bank) Execute(ctx context.Context, ix solana.Instruction) (*Receipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	start := time.Now()
	b.slot++
	now := b.clock()

	receipt := &Receipt{Slot: b.slot, UnixTime: now.Unix(), Instruction: "Unknown"}

	data, err := ix.Data()
	if err != nil {
		return receipt, fmt.Errorf("instruction data: %w", err)
	}
	if decoded, err := instruction.Unpack(data); err == nil {
		receipt.Instruction = decoded.Opcode().String()
	}

	metas := ix.Accounts()
	var target solana.PublicKey
	if len(metas) > 0 {
		target = metas[0].PublicKey
	}

	err = b.execute(ctx, ix.ProgramID(), metas, data, now, receipt)
	receipt.Duration = time.Since(start)
	b.finish(ctx, receipt, target, err)
	return receipt, err
}

func (b *Bank) execute(ctx context.Context, programID solana.PublicKey, metas []*solana.AccountMeta, data []byte, now time.Time, receipt *Receipt) error {
	if !programID.Equals(b.programID) {
		return program.IncorrectProgramID
	}

	table, err := b.load(ctx, metas, receipt.Slot, now)
	if err != nil {
		return err
	}

	b.tokens.reset()
	if err := b.proc.Process(ctx, programID, table.accountInfos(metas), data); err != nil {
		return err
	}

	changes, err := table.changes(receipt.Slot, b.programID, b.tokens.id)
	if err != nil {
		return err
	}

	accounts := make([]*accountstore.Account, 0, len(changes))
	for _, c := range changes {
		accounts = append(accounts, c.account)
		receipt.Modified = append(receipt.Modified, c.account.Key)
		b.log.Debug().Stringer("account", c.account.Key).Stringer("action", c.action).Msg("account changed")
	}
	if len(accounts) > 0 {
		if err := b.store.Commit(ctx, accounts); err != nil {
			return err
		}
		metrics.CommittedAccountsTotal.Add(float64(len(accounts)))
	}
	receipt.Transferred = b.tokens.moved
	return nil
}

// load builds the state table for the accounts an instruction names
func (b *Bank) load(ctx context.Context, metas []*solana.AccountMeta, slot uint64, now time.Time) (*stateTable, error) {
	table := newStateTable()

	var keys []solana.PublicKey
	seen := make(map[solana.PublicKey]bool)
	for _, m := range metas {
		key := m.PublicKey
		if seen[key] {
			continue
		}
		seen[key] = true

		switch {
		case key.Equals(solana.SysVarClockPubkey):
			table.trackSynthetic(clockAccount(slot, now))
		case key.Equals(b.programID) || key.Equals(b.tokens.id):
			table.trackSynthetic(&program.AccountInfo{Key: key, Owner: loaderID, Lamports: 1, Executable: true})
		default:
			keys = append(keys, key)
		}
	}

	loaded, err := b.store.LoadMany(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	for i, key := range keys {
		table.track(key, loaded[i])
	}
	return table, nil
}

func (b *Bank) finish(ctx context.Context, r *Receipt, target solana.PublicKey, err error) {
	result := "ok"
	code := ""
	if err != nil {
		result = "error"
		code = err.Error()
		var perr program.Error
		if errors.As(err, &perr) {
			code = perr.String()
		}
		b.log.Warn().Err(err).Uint64("slot", r.Slot).Str("instruction", r.Instruction).Msg("instruction failed")
	} else {
		b.log.Info().
			Uint64("slot", r.Slot).
			Str("instruction", r.Instruction).
			Uint64("transferred", r.Transferred).
			Int("modified", len(r.Modified)).
			Msg("instruction executed")
		metrics.ClaimedAmountTotal.Add(float64(r.Transferred))
	}
	metrics.ObserveInstruction(r.Instruction, result, r.Duration)

	if b.history == nil {
		return
	}
	herr := b.history.Record(ctx, &history.Entry{
		Slot:        r.Slot,
		UnixTime:    r.UnixTime,
		Instruction: r.Instruction,
		Account:     target,
		Amount:      r.Transferred,
		Success:     err == nil,
		Error:       code,
		Duration:    r.Duration,
	})
	if herr != nil {
		b.log.Error().Err(herr).Uint64("slot", r.Slot).Msg("failed to record history")
	}
}
