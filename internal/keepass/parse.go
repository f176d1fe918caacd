package keepass

import (
	"regexp"
	"strings"
)

// The recursive flattened listing is loosely structured text. Each line
// runs through an ordered list of named matchers; the first hit wins.
// The bare-title matcher always succeeds, so parsing a line never fails,
// but a listing where only bare-title ever matched is flagged as
// unstructured so callers can tell it apart from an empty database.

type lineMatcher struct {
	name  string
	match func(line string) (ListItem, bool)
}

var (
	// "a1b2c3  Finance/Bank  MyBank": hex identifier, group path, title,
	// separated by runs of at least two spaces.
	reUUIDEntry = regexp.MustCompile(`^([0-9a-fA-F]{6,40})\s{2,}(\S+)\s{2,}(.+)$`)

	// Looser shape: three whitespace-delimited fields.
	reLooseEntry = regexp.MustCompile(`^(\S+)\s+(\S+)\s+(\S+)$`)

	// "Finance/Bank/": a bare group path ending in a slash.
	reDirectory = regexp.MustCompile(`^(\S+)/$`)
)

var listMatchers = []lineMatcher{
	{
		name: "uuid-group-title",
		match: func(line string) (ListItem, bool) {
			m := reUUIDEntry.FindStringSubmatch(line)
			if m == nil {
				return ListItem{}, false
			}
			return ListItem{UUID: m[1], Group: m[2], Title: m[3]}, true
		},
	},
	{
		name: "loose-three-field",
		match: func(line string) (ListItem, bool) {
			m := reLooseEntry.FindStringSubmatch(line)
			if m == nil {
				return ListItem{}, false
			}
			return ListItem{UUID: m[1], Group: m[2], Title: m[3]}, true
		},
	},
	{
		name: "directory",
		match: func(line string) (ListItem, bool) {
			m := reDirectory.FindStringSubmatch(line)
			if m == nil {
				return ListItem{}, false
			}
			return ListItem{Group: m[1], Title: DirectoryTitle}, true
		},
	},
	{
		name: "bare-title",
		match: func(line string) (ListItem, bool) {
			return ListItem{Title: strings.TrimSpace(line)}, true
		},
	},
}

const bareTitleMatcher = "bare-title"

// ParseListLine parses one listing line. The returned matcher name says
// which shape hit; bare-title is the last resort and never fails.
func ParseListLine(line string) (ListItem, string) {
	for _, m := range listMatchers {
		if item, ok := m.match(line); ok {
			return item, m.name
		}
	}
	// Unreachable: bare-title matches everything.
	return ListItem{Title: strings.TrimSpace(line)}, bareTitleMatcher
}

// skipListLine drops empty lines, the password-prompt banner and divider
// rows before matching.
func skipListLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return true
	}
	if strings.HasPrefix(trimmed, "Enter password to unlock") {
		return true
	}
	return strings.Trim(trimmed, "-= ") == ""
}

// ListResult is the outcome of parsing a full listing. Unstructured is
// true when no line matched a structured shape; Raw then carries the
// original lines so nothing is lost. An empty database yields zero
// items and Unstructured false.
type ListResult struct {
	Items        []ListItem `json:"items" yaml:"items"`
	Raw          []string   `json:"raw,omitempty" yaml:"raw,omitempty"`
	Unstructured bool       `json:"unstructured,omitempty" yaml:"unstructured,omitempty"`
}

// ParseListing parses the combined output of the recursive flattened
// listing.
func ParseListing(out string) ListResult {
	var result ListResult
	var kept []string
	structured := false

	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if skipListLine(line) {
			continue
		}
		kept = append(kept, line)
		item, matcher := ParseListLine(line)
		if matcher != bareTitleMatcher {
			structured = true
		}
		result.Items = append(result.Items, item)
	}

	if len(kept) > 0 && !structured {
		result.Unstructured = true
		result.Raw = kept
	}
	return result
}

// Field labels of `show -s` output. Each field is extracted by an
// independent pattern; absent labels default to empty string.
var showFieldPatterns = map[string]*regexp.Regexp{
	"title":    regexp.MustCompile(`(?m)^Title:[ \t]*(.*)$`),
	"username": regexp.MustCompile(`(?m)^UserName:[ \t]*(.*)$`),
	"password": regexp.MustCompile(`(?m)^Password:[ \t]*(.*)$`),
	"url":      regexp.MustCompile(`(?m)^URL:[ \t]*(.*)$`),
	"notes":    regexp.MustCompile(`(?m)^Notes:[ \t]*(.*)$`),
	"uuid":     regexp.MustCompile(`(?m)^Uuid:[ \t]*(.*)$`),
	"tags":     regexp.MustCompile(`(?m)^Tags:[ \t]*(.*)$`),
}

func extractShowField(out, field string) string {
	re, ok := showFieldPatterns[field]
	if !ok {
		return ""
	}
	m := re.FindStringSubmatch(out)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// ParseShowOutput extracts the labeled fields of a single-entry `show`
// invocation.
func ParseShowOutput(out string) Entry {
	return Entry{
		Title:    extractShowField(out, "title"),
		Username: extractShowField(out, "username"),
		Password: extractShowField(out, "password"),
		URL:      extractShowField(out, "url"),
		Notes:    extractShowField(out, "notes"),
		UUID:     extractShowField(out, "uuid"),
		Tags:     extractShowField(out, "tags"),
	}
}
