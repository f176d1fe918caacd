package errors

// Code is a stable string error code for programs and agents to branch on.
// Codes are append-only; old meanings are never reused.
type Code string

const (
	// Config / args
	CodeCfgNotFound Code = "KPX_CFG_NOT_FOUND"
	CodeCfgInvalid  Code = "KPX_CFG_INVALID"
	CodeExeNotFound Code = "KPX_EXE_NOT_FOUND"

	// Credential
	CodeCredNotFound Code = "KPX_CRED_NOT_FOUND"
	CodeCredInvalid  Code = "KPX_CRED_INVALID"

	// keepassxc-cli
	CodeAuthFailed    Code = "KPX_AUTH_FAILED"
	CodeNotConnected  Code = "KPX_NOT_CONNECTED"
	CodeEntryNotFound Code = "KPX_ENTRY_NOT_FOUND"
	CodeCLIFailed     Code = "KPX_CLI_FAILED"

	// Internal
	CodeInternal Code = "KPX_INTERNAL"
)

func AllCodes() []Code {
	return []Code{
		CodeCfgNotFound,
		CodeCfgInvalid,
		CodeExeNotFound,
		CodeCredNotFound,
		CodeCredInvalid,
		CodeAuthFailed,
		CodeNotConnected,
		CodeEntryNotFound,
		CodeCLIFailed,
		CodeInternal,
	}
}
