package cli

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

// pubkeyValue is a flag holding a base58 public key
type pubkeyValue struct {
	key *solana.PublicKey
}

func (v *pubkeyValue) String() string {
	if v.key == nil || v.key.IsZero() {
		return ""
	}
	return v.key.String()
}

func (v *pubkeyValue) Set(s string) error {
	key, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return fmt.Errorf("invalid public key %q: %w", s, err)
	}
	*v.key = key
	return nil
}

func (v *pubkeyValue) Type() string {
	return "pubkey"
}

// pubkeyFlag registers a public key flag, required unless optional is set
func pubkeyFlag(cmd *cobra.Command, key *solana.PublicKey, name, usage string, required bool) {
	cmd.Flags().Var(&pubkeyValue{key: key}, name, usage)
	if required {
		_ = cmd.MarkFlagRequired(name)
	}
}

// decodeBytes parses hex (optionally 0x-prefixed) or, with the base64:
// prefix, standard base64.
func decodeBytes(s string) ([]byte, error) {
	if rest, ok := strings.CutPrefix(s, "base64:"); ok {
		return base64.StdEncoding.DecodeString(rest)
	}
	return hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
}

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
