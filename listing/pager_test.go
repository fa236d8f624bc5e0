package listing

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestPagerSuppressedWhenOnePage(t *testing.T) {
	if links := PageLinks("/article", 20, 20, 1); links != nil {
		t.Fatalf("expected no pager for total <= size, got %d links", len(links))
	}
	if links := PageLinks("/article", 7, 20, 1); links != nil {
		t.Fatalf("expected no pager for a partial single page, got %d links", len(links))
	}
}

func TestPagerMiddlePage(t *testing.T) {
	// total=45, size=20, current=2 -> pages [1,2,3], 2 active, prev and next.
	links := PageLinks("/article", 45, 20, 2)
	if len(links) != 5 {
		t.Fatalf("expected 5 links (prev, 1, 2, 3, next), got %d", len(links))
	}
	if links[0].Label != "«" || links[0].URL != "/article?page=1" {
		t.Errorf("prev link = %+v", links[0])
	}
	if links[4].Label != "»" || links[4].URL != "/article?page=3" {
		t.Errorf("next link = %+v", links[4])
	}
	if !links[2].Active || links[2].Label != "2" || links[2].URL != "" {
		t.Errorf("current page should be an active non-link, got %+v", links[2])
	}
	if links[1].URL != "/article?page=1" || links[3].URL != "/article?page=3" {
		t.Errorf("page links wrong: %+v %+v", links[1], links[3])
	}
}

func TestPagerFirstAndLastPage(t *testing.T) {
	first := PageLinks("/b", 45, 20, 1)
	if first[0].Label == "«" {
		t.Error("first page must not render a previous link")
	}
	if first[len(first)-1].Label != "»" {
		t.Error("first page should render a next link")
	}

	last := PageLinks("/b", 45, 20, 3)
	if last[0].Label != "«" {
		t.Error("last page should render a previous link")
	}
	if last[len(last)-1].Label == "»" {
		t.Error("last page must not render a next link")
	}
}

func TestPageCount(t *testing.T) {
	cases := []struct {
		total int64
		size  int
		want  int
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{45, 20, 3},
		{100, 10, 10},
	}
	for _, c := range cases {
		if got := PageCount(c.total, c.size); got != c.want {
			t.Errorf("PageCount(%d, %d) = %d, want %d", c.total, c.size, got, c.want)
		}
	}
}

func TestPagerLinkCountMatchesPageCount(t *testing.T) {
	for _, current := range []int{1, 2, 5, 9} {
		links := PageLinks("/x", 170, 20, current)
		numbered := 0
		for _, l := range links {
			if l.Label != "«" && l.Label != "»" {
				numbered++
			}
		}
		if numbered != 9 {
			t.Errorf("current=%d: %d numbered links, want 9", current, numbered)
		}
	}
}

func TestPagerComponentEmitsNothingForOnePage(t *testing.T) {
	var buf bytes.Buffer
	if err := Pager("/a", 10, 20, 1).Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected empty output, got %q", buf.String())
	}
}

func TestPagerComponentMarkup(t *testing.T) {
	var buf bytes.Buffer
	if err := Pager("/a", 45, 20, 2).Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, `href="/a?page=1"`) || !strings.Contains(out, `href="/a?page=3"`) {
		t.Errorf("missing page links in %q", out)
	}
	if !strings.Contains(out, `page-item active`) {
		t.Errorf("missing active marker in %q", out)
	}
	if strings.Contains(out, `href="/a?page=2"`) {
		t.Errorf("current page must not be a self-link: %q", out)
	}
}
