package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmail(t *testing.T) {
	got, ok := Email("  jane@example.com ")
	assert.True(t, ok)
	assert.Equal(t, "jane@example.com", got)

	for _, bad := range []string{"", "jane", "jane@", "jane@example", strings.Repeat("a", 250) + "@x.io"} {
		_, ok := Email(bad)
		assert.False(t, ok, bad)
	}
}

func TestPhone(t *testing.T) {
	for _, good := range []string{"0711000000", "+254 711 000 000", "+254-711-000000"} {
		_, ok := Phone(good)
		assert.True(t, ok, good)
	}
	for _, bad := range []string{"", "12345", "phone", "+254 711 000 000 000 000 000"} {
		_, ok := Phone(bad)
		assert.False(t, ok, bad)
	}
}

func TestQ(t *testing.T) {
	got, ok := Q("  teak table ")
	assert.True(t, ok)
	assert.Equal(t, "teak table", got)

	got, ok = Q(strings.Repeat("x", 150))
	assert.True(t, ok)
	assert.Len(t, got, 100)

	_, ok = Q("50%")
	assert.False(t, ok)
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Living Room":        "living-room",
		"  Dining -- Sets  ": "dining-sets",
		"Kids' Rooms & Play": "kids-rooms-play",
		"office_chairs":      "office-chairs",
		"Café Tables 2025":   "caf-tables-2025",
		"!!!":                "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
	assert.True(t, Slug("living-room"))
	assert.False(t, Slug("Living Room"))
	assert.False(t, Slug(""))
}

func TestName(t *testing.T) {
	got, ok := Name("  Sofa ", 10)
	assert.True(t, ok)
	assert.Equal(t, "Sofa", got)
	_, ok = Name("   ", 10)
	assert.False(t, ok)
	_, ok = Name(strings.Repeat("x", 11), 10)
	assert.False(t, ok)
}

func TestOneOf(t *testing.T) {
	assert.True(t, OneOf("wood", []string{"wood", "metal"}))
	assert.False(t, OneOf("Wood", []string{"wood", "metal"}))
}

func TestPassword(t *testing.T) {
	assert.True(t, Password("Sup3r$ecret"))
	assert.False(t, Password("short1!"))
	assert.False(t, Password("alllowercase1!"))
	assert.False(t, Password("NoDigits!!"))
}
