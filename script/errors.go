package script

import "github.com/pkg/errors"

var (
	ErrInvalidOpcode          = errors.New("invalid opcode")
	ErrDisabledOpcode         = errors.New("disabled opcode")
	ErrUnbalancedConditional  = errors.New("unbalanced conditional")
	ErrEmptyConditionalBranch = errors.New("empty conditional branch")
	ErrTrailingData           = errors.New("trailing or truncated script data")
	ErrInvalidNumericEncoding = errors.New("invalid numeric encoding")
	ErrVerifyFailed           = errors.New("verify failed")
	ErrReturn                 = errors.New("script returned early")
	ErrNotRunnable            = errors.New("operation is not runnable")
	ErrNegativeLockTime       = errors.New("negative locktime")
	ErrHashLengthMismatch     = errors.New("hash length mismatch")
	ErrInvalidPubKey          = errors.New("invalid public key length")
	ErrInvalidMultiSig        = errors.New("invalid multisig script")
	ErrUnexpectedScriptType   = errors.New("unexpected script type")
)
