package keepass

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseListLine_UUIDGroupTitle(t *testing.T) {
	item, matcher := ParseListLine("a1b2c3  Finance/Bank  MyBank")
	assert.Equal(t, "uuid-group-title", matcher)
	assert.Equal(t, "a1b2c3", item.UUID)
	assert.Equal(t, "Finance/Bank", item.Group)
	assert.Equal(t, "MyBank", item.Title)
}

func TestParseListLine_LooseThreeField(t *testing.T) {
	// First token is not hex, so the loose shape picks it up.
	item, matcher := ParseListLine("entry-1 Personal Mailbox")
	assert.Equal(t, "loose-three-field", matcher)
	assert.Equal(t, "entry-1", item.UUID)
	assert.Equal(t, "Personal", item.Group)
	assert.Equal(t, "Mailbox", item.Title)
}

func TestParseListLine_DirectoryMarker(t *testing.T) {
	item, matcher := ParseListLine("Finance/Bank/")
	assert.Equal(t, "directory", matcher)
	assert.Equal(t, "Finance/Bank", item.Group)
	assert.Equal(t, DirectoryTitle, item.Title)
	assert.Empty(t, item.UUID)
}

func TestParseListLine_BareTitleFallback(t *testing.T) {
	item, matcher := ParseListLine("some unrecognized banner text that is long")
	assert.Equal(t, "bare-title", matcher)
	assert.Equal(t, "some unrecognized banner text that is long", item.Title)
	assert.Empty(t, item.UUID)
	assert.Empty(t, item.Group)
}

func TestParseListLine_Idempotent(t *testing.T) {
	lines := []string{
		"a1b2c3  Finance/Bank  MyBank",
		"Finance/Bank/",
		"odd line",
	}
	for _, line := range lines {
		first, m1 := ParseListLine(line)
		second, m2 := ParseListLine(line)
		assert.Equal(t, first, second, "line %q", line)
		assert.Equal(t, m1, m2, "line %q", line)
	}
}

func TestParseListing_Structured(t *testing.T) {
	out := "Enter password to unlock /vault/main.kdbx: \n" +
		"a1b2c3  Finance/Bank  MyBank\n" +
		"Finance/Bank/\n" +
		"d4e5f6  Personal/Mail  Mailbox\n"
	result := ParseListing(out)
	assert.False(t, result.Unstructured)
	assert.Nil(t, result.Raw)
	assert.Len(t, result.Items, 3)
	assert.Equal(t, "MyBank", result.Items[0].Title)
	assert.Equal(t, DirectoryTitle, result.Items[1].Title)
}

func TestParseListing_EmptyDatabase(t *testing.T) {
	result := ParseListing("Enter password to unlock /vault/main.kdbx: \n\n")
	assert.Empty(t, result.Items)
	assert.False(t, result.Unstructured)
	assert.Nil(t, result.Raw)
}

func TestParseListing_UnstructuredFallback(t *testing.T) {
	out := "something the parser has never seen\nanother odd banner line here\n"
	result := ParseListing(out)
	assert.True(t, result.Unstructured)
	assert.Equal(t, []string{
		"something the parser has never seen",
		"another odd banner line here",
	}, result.Raw)
	// Bare-title items are still produced so callers keep a title list.
	assert.Len(t, result.Items, 2)
}

func TestParseListing_SkipsDividers(t *testing.T) {
	out := "----------\na1b2c3  Finance/Bank  MyBank\n==========\n"
	result := ParseListing(out)
	assert.Len(t, result.Items, 1)
	assert.False(t, result.Unstructured)
}

func TestParseShowOutput_AllFields(t *testing.T) {
	out := "Title: X\n" +
		"UserName: Y\n" +
		"Password: hunter2\n" +
		"URL: https://example.com\n" +
		"Notes: a note\n" +
		"Uuid: {a1b2c3}\n" +
		"Tags: work,bank\n"
	e := ParseShowOutput(out)
	assert.Equal(t, "X", e.Title)
	assert.Equal(t, "Y", e.Username)
	assert.Equal(t, "hunter2", e.Password)
	assert.Equal(t, "https://example.com", e.URL)
	assert.Equal(t, "a note", e.Notes)
	assert.Equal(t, "{a1b2c3}", e.UUID)
	assert.Equal(t, "work,bank", e.Tags)
}

func TestParseShowOutput_AbsentLabelsYieldEmpty(t *testing.T) {
	e := ParseShowOutput("Title: X\nUserName: Y\n")
	assert.Equal(t, "X", e.Title)
	assert.Equal(t, "Y", e.Username)
	assert.Empty(t, e.Password)
	assert.Empty(t, e.URL)
	assert.Empty(t, e.Notes)
	assert.Empty(t, e.UUID)
	assert.Empty(t, e.Tags)
}

func TestParseShowOutput_ToleratesPromptBanner(t *testing.T) {
	out := "Enter password to unlock /vault/main.kdbx: Title: X\nTitle: MyBank\nUserName: me\n"
	e := ParseShowOutput(out)
	// Only the line-anchored label counts, not the banner remnant.
	assert.Equal(t, "MyBank", e.Title)
	assert.Equal(t, "me", e.Username)
}
