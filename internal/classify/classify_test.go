package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyURL(t *testing.T) {
	c := New()

	for _, text := range []string{
		"https://example.com",
		"http://example.com/path?q=1",
		"  https://example.com/trailing  ",
		"HTTPS://EXAMPLE.COM",
	} {
		assert.Equal(t, KindURL, c.Classify(text), "text: %q", text)
	}
}

func TestClassifyCode(t *testing.T) {
	c := New()

	for _, text := range []string{
		"function greet() {}",
		"const x = 1",
		"x => x * 2",
		"class Foo",
		"if (ok) { return }",
	} {
		assert.Equal(t, KindCode, c.Classify(text), "text: %q", text)
	}
}

func TestClassifyText(t *testing.T) {
	c := New()

	assert.Equal(t, KindText, c.Classify("hello world"))
	assert.Equal(t, KindText, c.Classify(""))
	assert.Equal(t, KindText, c.Classify("ftp://example.com"))
}

// URL wins over code even when the text also contains a code marker — the
// rule order is part of the contract.
func TestClassifyURLBeatsCode(t *testing.T) {
	c := New()
	assert.Equal(t, KindURL, c.Classify("https://example.com/{id}"))
}

// A URL embedded in prose is not an absolute URL match; the brace rule may
// still fire. Known heuristic limitation.
func TestClassifyURLMustBeWholeText(t *testing.T) {
	c := New()
	assert.Equal(t, KindText, c.Classify("see https://example.com for details"))
}

func TestClassifyCustomRules(t *testing.T) {
	c := NewWithRules([]Rule{
		{Kind: Kind("shout"), Match: func(s string) bool { return s == "HEY" }},
	})
	assert.Equal(t, Kind("shout"), c.Classify("HEY"))
	assert.Equal(t, KindText, c.Classify("hey"))
}
