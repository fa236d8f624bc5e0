package curio

import (
	"reflect"
	"testing"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  Already-Slugged  ", "already-slugged"},
		{"Symbols & Stuff!!", "symbols-stuff"},
		{"Trailing punctuation...", "trailing-punctuation"},
		{"2026 in review", "2026-in-review"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBuildURL(t *testing.T) {
	cases := []struct {
		base string
		segs []string
		want string
	}{
		{"https://example.com", []string{"article", "view", "7"}, "https://example.com/article/view/7"},
		{"https://example.com/", nil, "https://example.com/"},
		{"https://example.com", []string{"/article/view/7"}, "https://example.com/article/view/7"},
	}
	for _, tc := range cases {
		if got := BuildURL(tc.base, tc.segs...); got != tc.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tc.base, tc.segs, got, tc.want)
		}
	}
}

func TestFilterEmpty(t *testing.T) {
	in := []string{" go ", "", "   ", "postgres", "\t"}
	want := []string{"go", "postgres"}
	if got := FilterEmpty(in); !reflect.DeepEqual(got, want) {
		t.Errorf("FilterEmpty(%v) = %v, want %v", in, got, want)
	}
}

func TestPlainTransformEscapesAndParagraphs(t *testing.T) {
	var tr plainTransform
	got := tr.ToHTML("first <b>line</b>\nsecond line\n\nnew paragraph")
	want := "<p>first &lt;b&gt;line&lt;/b&gt;<br>second line</p><p>new paragraph</p>"
	if got != want {
		t.Errorf("ToHTML = %q, want %q", got, want)
	}
}
