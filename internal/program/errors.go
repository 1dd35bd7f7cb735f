package program

import "fmt"

// Error represents a program error code returned to the host.
//
// Negative values are host-defined errors shared by every program, non-negative
// values are this program's custom codes and are reported by the host as
// Custom(n).
type Error int

// Host-defined error codes
const (
	InvalidArgument           Error = -1
	InvalidInstructionData    Error = -2
	InvalidAccountData        Error = -3
	AccountDataTooSmall       Error = -4
	InsufficientFunds         Error = -5
	IncorrectProgramID        Error = -6
	MissingRequiredSignature  Error = -7
	AccountAlreadyInitialized Error = -8
	UninitializedAccount      Error = -9
	NotEnoughAccountKeys      Error = -10
	ReadonlyDataModified      Error = -11
)

// Custom program error codes. The first six keep the numbering clients
// already decode.
const (
	InvalidInstruction           Error = 0
	InvalidMaxAmount             Error = 1
	InvalidSubscriptionTimeframe Error = 2
	InvalidProgramAddress        Error = 3
	IncorrectTokenProgramID      Error = 4
	ExpectedAccount              Error = 5
	SubscriptionNotApproved      Error = 6
	InvalidSubscriptionPlan      Error = 7
	InvalidTokenAccount          Error = 8
)

// Error implements the error interface.
func (e Error) Error() string {
	return e.Message()
}

// IsCustom returns true if this is a program-specific code
func (e Error) IsCustom() bool {
	return e >= 0
}

// Custom returns the custom code carried by the host for program errors.
func (e Error) Custom() (uint32, bool) {
	if !e.IsCustom() {
		return 0, false
	}
	return uint32(e), true
}

// String returns the name of the error code
func (e Error) String() string {
	switch e {
	case InvalidArgument:
		return "InvalidArgument"
	case InvalidInstructionData:
		return "InvalidInstructionData"
	case InvalidAccountData:
		return "InvalidAccountData"
	case AccountDataTooSmall:
		return "AccountDataTooSmall"
	case InsufficientFunds:
		return "InsufficientFunds"
	case IncorrectProgramID:
		return "IncorrectProgramId"
	case MissingRequiredSignature:
		return "MissingRequiredSignature"
	case AccountAlreadyInitialized:
		return "AccountAlreadyInitialized"
	case UninitializedAccount:
		return "UninitializedAccount"
	case NotEnoughAccountKeys:
		return "NotEnoughAccountKeys"
	case ReadonlyDataModified:
		return "ReadonlyDataModified"
	case InvalidInstruction:
		return "InvalidInstruction"
	case InvalidMaxAmount:
		return "InvalidMaxAmount"
	case InvalidSubscriptionTimeframe:
		return "InvalidSubscriptionTimeframe"
	case InvalidProgramAddress:
		return "InvalidProgramAddress"
	case IncorrectTokenProgramID:
		return "IncorrectTokenProgramId"
	case ExpectedAccount:
		return "ExpectedAccount"
	case SubscriptionNotApproved:
		return "SubscriptionNotApproved"
	case InvalidSubscriptionPlan:
		return "InvalidSubscriptionPlan"
	case InvalidTokenAccount:
		return "InvalidTokenAccount"
	default:
		if e.IsCustom() {
			return fmt.Sprintf("Custom(%d)", int(e))
		}
		return fmt.Sprintf("Unknown(%d)", int(e))
	}
}

// Message returns a human-readable message for the error
func (e Error) Message() string {
	switch e {
	case InvalidArgument:
		return "An argument provided to the program is invalid"
	case InvalidInstructionData:
		return "An instruction's data contents was invalid"
	case InvalidAccountData:
		return "An account's data contents was invalid"
	case AccountDataTooSmall:
		return "An account's data was too small"
	case InsufficientFunds:
		return "An account's balance was too small to complete the instruction"
	case IncorrectProgramID:
		return "The account did not have the expected program id"
	case MissingRequiredSignature:
		return "A signature was required but not found"
	case AccountAlreadyInitialized:
		return "An initialize instruction was sent to an account that has already been initialized"
	case UninitializedAccount:
		return "An attempt to operate on an account that hasn't been initialized"
	case NotEnoughAccountKeys:
		return "The instruction expected additional account keys"
	case ReadonlyDataModified:
		return "The program modified the data of a read-only account"
	case InvalidInstruction:
		return "Invalid instruction"
	case InvalidMaxAmount:
		return "Invalid max amount"
	case InvalidSubscriptionTimeframe:
		return "Invalid subscription timeframe"
	case InvalidProgramAddress:
		return "Invalid program address generated from nonce and key"
	case IncorrectTokenProgramID:
		return "The provided token program does not match the expected token program"
	case ExpectedAccount:
		return "Deserialized account is not an SPL Token account"
	case SubscriptionNotApproved:
		return "The subscription is not approved for withdrawals"
	case InvalidSubscriptionPlan:
		return "The plan account does not govern this subscription"
	case InvalidTokenAccount:
		return "The token account does not match the subscription or plan"
	default:
		return e.String()
	}
}
