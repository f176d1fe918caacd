package config

// File is the kpx.yaml structure. Precedence everywhere is CLI > ENV > Config.
type File struct {
	Profiles map[string]Profile `yaml:"profiles"`
	MCP      MCP                `yaml:"mcp"`
}

// Profile describes one KeePass database and how to unlock it.
type Profile struct {
	Description string `yaml:"description"`
	Format      string `yaml:"format"`

	// Database and tool paths
	Database string `yaml:"database"` // .kdbx file path
	KeyFile  string `yaml:"keyfile"`  // optional key file
	Exe      string `yaml:"exe"`      // explicit keepassxc-cli path; empty = discover

	// Master password source. Supports keyring:<account> references;
	// plaintext values are rejected unless allow_plaintext is set.
	Password       string `yaml:"password"`
	AllowPlaintext bool   `yaml:"allow_plaintext"`

	// Stored credential
	CredentialBackend   string `yaml:"credential_backend"`    // keyring (default) | file
	CredentialFile      string `yaml:"credential_file"`       // file backend path override
	OnInvalidCredential string `yaml:"on_invalid_credential"` // prompt (default) | regenerate | abort

	// Subprocess timeout in seconds; 0 blocks until keepassxc-cli exits.
	TimeoutSeconds int `yaml:"timeout"`
}

type MCP struct {
	Transport string  `yaml:"transport"`
	HTTP      MCPHTTP `yaml:"http"`
}

type MCPHTTP struct {
	Addr                string `yaml:"addr"`
	AuthToken           string `yaml:"auth_token"` // supports keyring:<account>
	AllowPlaintextToken bool   `yaml:"allow_plaintext_token"`
}

type Resolved struct {
	ConfigPath  string
	ProfileName string
	Format      string
	Profile     Profile
}

type Options struct {
	// ConfigPath: when non-empty, only that file is read (missing is an error).
	ConfigPath string

	// CLI
	CLIProfile    string
	CLIProfileSet bool
	CLIFormat     string
	CLIFormatSet  bool

	// ENV (injected by the caller for testability)
	EnvProfile string
	EnvFormat  string

	// HomeDir for default path computation (auto-detected when empty).
	HomeDir string

	// WorkDir for default paths (process working directory when empty).
	WorkDir string
}
