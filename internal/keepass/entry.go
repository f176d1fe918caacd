// Package keepass shells out to the keepassxc-cli executable and turns
// its line-oriented output into structured entries. All cryptography and
// database parsing stay inside the external tool; this package only
// builds arguments, feeds the secret over stdin and parses text.
package keepass

// Entry is a single password-manager record as printed by `show -s`.
// Absent labels stay empty strings.
type Entry struct {
	Title    string `json:"title" yaml:"title"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	URL      string `json:"url,omitempty" yaml:"url,omitempty"`
	Notes    string `json:"notes,omitempty" yaml:"notes,omitempty"`
	UUID     string `json:"uuid,omitempty" yaml:"uuid,omitempty"`
	Tags     string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// ListItem is one parsed line of the recursive flattened listing.
type ListItem struct {
	UUID  string `json:"uuid,omitempty" yaml:"uuid,omitempty"`
	Group string `json:"group,omitempty" yaml:"group,omitempty"`
	Title string `json:"title" yaml:"title"`
}

// DirectoryTitle marks group lines in the listing.
const DirectoryTitle = "[Directory]"
