package activity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSelector(t *testing.T) {
	tests := []struct {
		in   string
		want Selector
	}{
		{"", Selector{Kind: SelectAll}},
		{"  ", Selector{Kind: SelectAll}},
		{"blog", Selector{Kind: SelectGroup, Group: "blog"}},
		{"@show", Selector{Kind: SelectType, Type: "show"}},
		{"blog@show", Selector{Kind: SelectGroupType, Group: "blog", Type: "show"}},
		{"/blog/42", Selector{Kind: SelectPath, Path: "/blog/42"}},
		{"/blog/42/?x=1", Selector{Kind: SelectPath, Path: "/blog/42"}},
		{"blog@", Selector{}},
		{"@", Selector{}},
		{"a@b@c", Selector{}},
		{"blog/42", Selector{Kind: SelectPath, Path: "/blog/42"}},
		{"docs/a/b/", Selector{Kind: SelectPath, Path: "/docs/a/b"}},
		{"blog post", Selector{}},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ParseSelector(tc.in), "input %q", tc.in)
	}
}

func TestSelector_Match(t *testing.T) {
	rec := Record{Path: "/blog/42", Group: "blog", Type: TypeShow}

	assert.True(t, ParseSelector("").Match(rec))
	assert.True(t, ParseSelector("blog").Match(rec))
	assert.False(t, ParseSelector("docs").Match(rec))
	assert.True(t, ParseSelector("@show").Match(rec))
	assert.False(t, ParseSelector("@index").Match(rec))
	assert.True(t, ParseSelector("blog@show").Match(rec))
	assert.False(t, ParseSelector("blog@edit").Match(rec))
	assert.True(t, ParseSelector("/blog/42").Match(rec))
	assert.False(t, ParseSelector("/blog/4").Match(rec))
	assert.False(t, ParseSelector("blog@").Match(rec))
}

func TestSelector_StringRoundtrip(t *testing.T) {
	for _, in := range []string{"", "blog", "@show", "blog@show", "/blog/42"} {
		assert.Equal(t, in, ParseSelector(in).String())
	}
	assert.Equal(t, "!", ParseSelector("a@b@c").String())
	assert.Equal(t, "group+type", SelectGroupType.String())
	assert.Equal(t, "none", SelectNone.String())
}
