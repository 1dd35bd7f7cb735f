package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sollpay/sollpay-programs/internal/config"
	"github.com/sollpay/sollpay-programs/internal/program"
	"github.com/sollpay/sollpay-programs/internal/program/authority"
	"github.com/sollpay/sollpay-programs/internal/program/instruction"
	"github.com/sollpay/sollpay-programs/internal/program/state"
)

func filledKey(b byte) solana.PublicKey {
	var k solana.PublicKey
	for i := range k {
		k[i] = b
	}
	return k
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeLedgerConfig(t *testing.T) (path, dir string) {
	t.Helper()
	dir = t.TempDir()
	path = filepath.Join(dir, "sollpay.toml")
	content := fmt.Sprintf(`
[storage]
backend = "bbolt"
path = %q

[history]
enabled = true
driver = "sqlite"
dsn = %q

[log]
level = "error"
format = "json"

[metrics]
textfile = %q
`, filepath.Join(dir, "data"), filepath.Join(dir, "data", "history.db"), filepath.Join(dir, "sollpay.prom"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path, dir
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "sollpay version "+Version)
}

func TestAuthorityCommands(t *testing.T) {
	programID := filledKey(0xA0)
	plan := filledKey(0x10)

	out, err := run(t, "authority", "find", "--program", programID.String(), "--plan", plan.String())
	require.NoError(t, err)

	var found authorityOutput
	require.NoError(t, json.Unmarshal([]byte(out), &found))
	want, err := authority.Find(programID, plan)
	require.NoError(t, err)
	assert.Equal(t, want.Address, found.Authority)
	assert.Equal(t, want.Nonce, found.Nonce)

	out, err = run(t, "authority", "derive", "--program", programID.String(), "--plan", plan.String(),
		"--nonce", fmt.Sprint(want.Nonce))
	require.NoError(t, err)
	var derived authorityOutput
	require.NoError(t, json.Unmarshal([]byte(out), &derived))
	assert.Equal(t, found, derived)
}

func TestAuthorityUsesConfiguredProgram(t *testing.T) {
	plan := filledKey(0x10)
	out, err := run(t, "authority", "find", "--plan", plan.String())
	require.NoError(t, err)

	var found authorityOutput
	require.NoError(t, json.Unmarshal([]byte(out), &found))
	assert.Equal(t, config.DefaultProgramID, found.ProgramID.String())
}

func TestAuthorityRejectsBadKey(t *testing.T) {
	_, err := run(t, "authority", "find", "--plan", "not-base58!")
	require.Error(t, err)

	_, err = run(t, "authority", "find")
	require.Error(t, err)
}

func TestInstructionEncodeDecode(t *testing.T) {
	out, err := run(t, "instruction", "encode", "create-plan", "--nonce", "7", "--timeframe", "2592000", "--max-amount", "1000")
	require.NoError(t, err)
	data := strings.TrimSpace(out)
	want := (&instruction.CreatePlan{Nonce: 7, SubscriptionTimeframe: 2592000, MaxAmount: 1000}).Pack()
	assert.Equal(t, fmt.Sprintf("%x", want), data)

	out, err = run(t, "instruction", "decode", data)
	require.NoError(t, err)
	var decoded struct {
		Instruction string                 `json:"instruction"`
		Opcode      uint8                  `json:"opcode"`
		Args        instruction.CreatePlan `json:"args"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "CreatePlan", decoded.Instruction)
	assert.Equal(t, uint8(0), decoded.Opcode)
	assert.Equal(t, instruction.CreatePlan{Nonce: 7, SubscriptionTimeframe: 2592000, MaxAmount: 1000}, decoded.Args)

	out, err = run(t, "instruction", "encode", "claim")
	require.NoError(t, err)
	assert.Equal(t, "02", strings.TrimSpace(out))

	out, err = run(t, "instruction", "encode", "create-subscription", "--timeframe", "1", "--max-amount", "2")
	require.NoError(t, err)
	assert.Equal(t, "0101000000000000000200000000000000", strings.TrimSpace(out))
}

func TestInstructionDecodeInvalid(t *testing.T) {
	_, err := run(t, "instruction", "decode", "09")
	require.ErrorIs(t, err, program.InvalidInstruction)

	_, err = run(t, "instruction", "decode", "zz")
	require.Error(t, err)
}

func TestRecordDecode(t *testing.T) {
	plan := &state.SubscriptionPlan{
		IsInitialized:         true,
		Nonce:                 254,
		Owner:                 filledKey(1),
		Authority:             filledKey(2),
		Token:                 filledKey(3),
		SubscriptionTimeframe: 30,
		MaxAmount:             500,
	}
	data := plan.Bytes()

	out, err := run(t, "record", "decode", "plan", fmt.Sprintf("%x", data))
	require.NoError(t, err)
	var got state.SubscriptionPlan
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, *plan, got)

	// a malformed boolean tag is rejected unless --unchecked
	data[0] = 2
	_, err = run(t, "record", "decode", "plan", fmt.Sprintf("%x", data))
	require.ErrorIs(t, err, program.InvalidAccountData)

	out, err = run(t, "record", "decode", "--unchecked", "plan", fmt.Sprintf("%x", data))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.True(t, got.IsInitialized)

	sub := &state.Subscription{IsInitialized: true, IsApproved: true, CycleStart: -86400, MaxAmount: 9}
	out, err = run(t, "record", "decode", "subscription", "base64:"+base64.StdEncoding.EncodeToString(sub.Bytes()))
	require.NoError(t, err)
	var gotSub state.Subscription
	require.NoError(t, json.Unmarshal([]byte(out), &gotSub))
	assert.Equal(t, *sub, gotSub)
}

func TestLedgerFlow(t *testing.T) {
	conf, dir := writeLedgerConfig(t)

	var (
		mint   = filledKey(0xB0)
		payer  = filledKey(0x01)
		payee  = filledKey(0x02)
		plan   = filledKey(0x10)
		sub    = filledKey(0x20)
		source = filledKey(0x30)
		dest   = filledKey(0x40)
		now    = "1700000000"
	)
	ledger := func(args ...string) (string, error) {
		return run(t, append([]string{"--conf", conf, "ledger"}, args...)...)
	}

	_, err := ledger("create-token-account", "--key", source.String(), "--mint", mint.String(), "--owner", payer.String(), "--amount", "5000")
	require.NoError(t, err)
	_, err = ledger("create-token-account", "--key", dest.String(), "--mint", mint.String(), "--owner", payee.String())
	require.NoError(t, err)

	out, err := ledger("create-plan", "--now", now, "--plan", plan.String(), "--owner", payee.String(),
		"--mint", mint.String(), "--timeframe", "2592000", "--max-amount", "1000")
	require.NoError(t, err)
	var planReceipt struct {
		Instruction string           `json:"instruction"`
		Authority   solana.PublicKey `json:"authority"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &planReceipt))
	assert.Equal(t, "CreatePlan", planReceipt.Instruction)

	_, err = ledger("approve", "--key", source.String(), "--owner", payer.String(),
		"--delegate", planReceipt.Authority.String(), "--amount", "2500")
	require.NoError(t, err)

	_, err = ledger("create-subscription", "--now", now, "--subscription", sub.String(), "--plan", plan.String(),
		"--token-account", source.String(), "--payer", payer.String(), "--timeframe", "2592000", "--max-amount", "1000")
	require.NoError(t, err)

	out, err = ledger("claim", "--now", "1700000010", "--subscription", sub.String(), "--destination", dest.String())
	require.NoError(t, err)
	var claimReceipt receiptOutput
	require.NoError(t, json.Unmarshal([]byte(out), &claimReceipt))
	assert.Equal(t, uint64(1000), claimReceipt.Transferred)

	_, err = ledger("claim", "--now", "1700000020", "--subscription", sub.String(), "--destination", dest.String(), "--amount", "1")
	require.ErrorIs(t, err, program.InvalidMaxAmount)

	out, err = ledger("show", dest.String())
	require.NoError(t, err)
	var shown struct {
		Kind    string `json:"kind"`
		Decoded struct {
			Amount uint64 `json:"Amount"`
		} `json:"decoded"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, "token_account", shown.Kind)
	assert.Equal(t, uint64(1000), shown.Decoded.Amount)

	out, err = ledger("show", sub.String())
	require.NoError(t, err)
	var shownSub struct {
		Kind    string             `json:"kind"`
		Decoded state.Subscription `json:"decoded"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &shownSub))
	assert.Equal(t, "subscription", shownSub.Kind)
	assert.Equal(t, uint64(1000), shownSub.Decoded.WithdrawnAmount)
	assert.Equal(t, int64(1700000000), shownSub.Decoded.CycleStart)

	out, err = ledger("show", "--all")
	require.NoError(t, err)
	var all []accountOutput
	require.NoError(t, json.Unmarshal([]byte(out), &all))
	assert.Len(t, all, 4)

	out, err = ledger("history", "--account", sub.String())
	require.NoError(t, err)
	var entries []historyOutput
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 3)
	assert.False(t, entries[0].Success)
	assert.Equal(t, "InvalidMaxAmount", entries[0].Error)
	assert.Equal(t, uint64(1000), entries[1].Amount)

	prom, err := os.ReadFile(filepath.Join(dir, "sollpay.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(prom), "sollpay_instructions_total")
}

func TestLedgerShowRequiresTarget(t *testing.T) {
	conf, _ := writeLedgerConfig(t)
	_, err := run(t, "--conf", conf, "ledger", "show")
	require.Error(t, err)
}

func TestApproveRequiresDelegate(t *testing.T) {
	conf, _ := writeLedgerConfig(t)
	_, err := run(t, "--conf", conf, "ledger", "approve", "--key", filledKey(1).String(),
		"--owner", filledKey(2).String(), "--amount", "5")
	require.Error(t, err)
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sollpay.toml")

	out, err := run(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	_, err = run(t, "config", "init", path)
	require.Error(t, err)

	out, err = run(t, "--conf", path, "--debug", "config", "show")
	require.NoError(t, err)
	var cfg struct {
		Storage struct {
			Backend string
		}
		Log struct {
			Level string
		}
	}
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, "pebble", cfg.Storage.Backend)
	assert.Equal(t, "debug", cfg.Log.Level)
}
