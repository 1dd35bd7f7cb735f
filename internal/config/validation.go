package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their config keys rather than Go names
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateConfig checks struct constraints first, then the semantic rules
// struct tags cannot express.
func ValidateConfig(config *Config) error {
	if err := validate.Struct(config); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return formatValidationErrors(verrs)
		}
		return err
	}

	if err := validateProgramConfig(&config.Program); err != nil {
		return fmt.Errorf("program config validation failed: %w", err)
	}
	return nil
}

func validateProgramConfig(p *ProgramConfig) error {
	programID, err := solana.PublicKeyFromBase58(p.ID)
	if err != nil {
		return fmt.Errorf("invalid id %q: %w", p.ID, err)
	}
	tokenProgramID, err := solana.PublicKeyFromBase58(p.TokenProgramID)
	if err != nil {
		return fmt.Errorf("invalid token_program_id %q: %w", p.TokenProgramID, err)
	}
	if programID.Equals(tokenProgramID) {
		return errors.New("id and token_program_id must differ")
	}
	return nil
}

// formatValidationErrors turns validator errors into config key paths
func formatValidationErrors(verrs validator.ValidationErrors) error {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		// Config.storage.backend -> storage.backend
		parts := strings.Split(fe.Namespace(), ".")
		if len(parts) > 1 {
			parts = parts[1:]
		}
		key := strings.Join(parts, ".")
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s (got %v)", key, fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s", key, fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
