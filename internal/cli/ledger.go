package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sollpay/sollpay-programs/internal/bank"
	"github.com/sollpay/sollpay-programs/internal/config"
	"github.com/sollpay/sollpay-programs/internal/logger"
	"github.com/sollpay/sollpay-programs/internal/metrics"
	"github.com/sollpay/sollpay-programs/internal/program/processor"
	"github.com/sollpay/sollpay-programs/internal/storage/accountstore"
	"github.com/sollpay/sollpay-programs/internal/storage/history"
)

// ledgerOptions holds the flags shared by ledger commands
type ledgerOptions struct {
	root *rootOptions
	// now overrides the clock with a unix timestamp
	now int64
}

// ledger is an opened local bank and everything it owns
type ledger struct {
	cfg     *config.Config
	store   *accountstore.Store
	history *history.DB
	bank    *bank.Bank
}

func newLedgerCmd(root *rootOptions) *cobra.Command {
	opts := &ledgerOptions{root: root}

	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Run the program against the local ledger",
		Long: `Commands that create accounts and execute program instructions against
the local single-node ledger configured in the [storage] section.`,
	}
	cmd.PersistentFlags().Int64Var(&opts.now, "now", 0, "unix time published by the clock sysvar (default: wall clock)")

	cmd.AddCommand(
		newLedgerCreateAccountCmd(opts),
		newLedgerCreateTokenAccountCmd(opts),
		newLedgerMintToCmd(opts),
		newLedgerApproveCmd(opts),
		newLedgerCreatePlanCmd(opts),
		newLedgerCreateSubscriptionCmd(opts),
		newLedgerClaimCmd(opts),
		newLedgerShowCmd(opts),
		newLedgerHistoryCmd(opts),
	)
	return cmd
}

// open loads the configuration and opens the storage, history and bank
func (o *ledgerOptions) open(ctx context.Context) (*ledger, error) {
	cfg, err := o.root.loadConfig()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	db, err := accountstore.OpenDB(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Backend, err)
	}
	store, err := accountstore.New(db, accountstore.Options{
		CacheSize:   cfg.Storage.CacheSize,
		Compression: cfg.Storage.Compression,
		Logger:      log,
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	l := &ledger{cfg: cfg, store: store}

	if cfg.History.Enabled {
		if err := ensureHistoryDir(cfg.History); err != nil {
			l.close()
			return nil, err
		}
		l.history, err = history.Open(ctx, cfg.History.Driver, cfg.History.DSN)
		if err != nil {
			l.close()
			return nil, fmt.Errorf("open history: %w", err)
		}
	}

	metrics.InitMetrics()

	clock := bank.ClockSource(time.Now)
	if o.now != 0 {
		clock = bank.FixedClock(time.Unix(o.now, 0))
	}

	l.bank, err = bank.New(bank.Options{
		ProgramID: cfg.ProgramID(),
		Processor: processor.Options{
			TokenProgramID:  cfg.TokenProgramID(),
			ScaleShift:      cfg.Program.TimeframeScaleShift,
			TimeUnitSeconds: cfg.Program.TimeUnitSeconds,
			CycleOpenOffset: cfg.Program.CycleOpenOffset,
		},
		Store:   store,
		History: l.history,
		Clock:   clock,
		Logger:  log,
	})
	if err != nil {
		l.close()
		return nil, err
	}
	return l, nil
}

// close releases the ledger and writes the metrics textfile when configured
func (l *ledger) close() error {
	var errs []error
	if l.cfg.Metrics.Textfile != "" && l.bank != nil {
		if err := metrics.WriteTextfile(l.cfg.Metrics.Textfile); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	if l.history != nil {
		if err := l.history.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := l.store.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ensureHistoryDir creates the directory of a sqlite database file
func ensureHistoryDir(cfg config.HistoryConfig) error {
	if cfg.Driver != history.DriverSQLite || cfg.DSN == ":memory:" || strings.HasPrefix(cfg.DSN, "file:") {
		return nil
	}
	dir := filepath.Dir(cfg.DSN)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create history directory: %w", err)
	}
	return nil
}

// withLedger runs fn against an opened ledger and closes it afterwards
func (o *ledgerOptions) withLedger(cmd *cobra.Command, fn func(ctx context.Context, l *ledger) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	l, err := o.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := l.close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(ctx, l)
}
