package errors

// ExitCode is the process exit code; stable contract for scripts.
type ExitCode int

const (
	ExitOK ExitCode = 0

	// 2: argument / configuration errors
	ExitConfig ExitCode = 2

	// 3: credential or database unlock failures
	ExitAuth ExitCode = 3

	// 4: keepassxc-cli failed (non-zero exit, entry missing, no session)
	ExitCLI ExitCode = 4

	// 10: internal errors
	ExitInternal ExitCode = 10
)

func ExitCodeFor(code Code) ExitCode {
	switch code {
	case CodeCfgNotFound, CodeCfgInvalid, CodeExeNotFound:
		return ExitConfig
	case CodeCredNotFound, CodeCredInvalid, CodeAuthFailed:
		return ExitAuth
	case CodeNotConnected, CodeEntryNotFound, CodeCLIFailed:
		return ExitCLI
	case CodeInternal:
		fallthrough
	default:
		return ExitInternal
	}
}
