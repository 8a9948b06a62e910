package paginate

import (
	"fmt"
	"testing"

	"github.com/facturo/facturo/internal/models"
)

// testLayout keeps the arithmetic easy to follow in assertions.
func testLayout() Layout {
	return Layout{
		PageHeight:     100,
		HeaderHeight:   30,
		TopMargin:      10,
		FooterHeight:   25,
		BaseItemHeight: 10,
		ImageRowHeight: 20,
		ImagesPerRow:   5,
	}
}

func itemsWithIDs(n int) []models.LineItem {
	items := make([]models.LineItem, n)
	for i := range items {
		items[i] = models.LineItem{ID: fmt.Sprintf("it-%d", i)}
	}
	return items
}

func images(n int) []string {
	imgs := make([]string, n)
	for i := range imgs {
		imgs[i] = fmt.Sprintf("img-%d", i)
	}
	return imgs
}

func TestItemHeight(t *testing.T) {
	l := testLayout()
	cases := []struct {
		images int
		want   int
	}{
		{0, 10},
		{1, 30},
		{5, 30},
		{6, 50},
		{11, 70},
	}
	for _, c := range cases {
		it := models.LineItem{Images: images(c.images)}
		if got := ItemHeight(it, l); got != c.want {
			t.Errorf("ItemHeight(%d images) = %d, want %d", c.images, got, c.want)
		}
	}
}

func TestSplitPreservesOrder(t *testing.T) {
	l := testLayout()
	items := itemsWithIDs(23)
	for i := range items {
		items[i].Images = images(i % 7)
	}
	pages := Split(items, l)
	var flat []models.LineItem
	for _, p := range pages {
		flat = append(flat, p.Items...)
	}
	if len(flat) != len(items) {
		t.Fatalf("got %d items across pages, want %d", len(flat), len(items))
	}
	for i := range items {
		if flat[i].ID != items[i].ID {
			t.Fatalf("item %d: got %s, want %s", i, flat[i].ID, items[i].ID)
		}
	}
}

func TestSplitRespectsBudget(t *testing.T) {
	l := testLayout()
	items := itemsWithIDs(30)
	for i := range items {
		items[i].Images = images(i % 6)
	}
	pages := Split(items, l)
	for n, p := range pages {
		acc := l.HeaderHeight
		if n > 0 {
			acc = l.TopMargin
		}
		for _, it := range p.Items {
			acc += ItemHeight(it, l)
		}
		if acc > l.PageHeight && len(p.Items) > 1 {
			t.Fatalf("page %d estimated height %d exceeds budget %d with %d items",
				n, acc, l.PageHeight, len(p.Items))
		}
	}
}

func TestSplitFirstPageBreak(t *testing.T) {
	l := testLayout()
	// Header 30 + 7 plain items (70) fills the first page exactly; the
	// eighth item must open page two.
	pages := Split(itemsWithIDs(8), l)
	if len(pages) < 2 {
		t.Fatalf("got %d pages, want at least 2", len(pages))
	}
	if len(pages[0].Items) != 7 {
		t.Fatalf("first page holds %d items, want 7", len(pages[0].Items))
	}
	if pages[1].Items[0].ID != "it-7" {
		t.Fatalf("second page starts with %s, want it-7", pages[1].Items[0].ID)
	}
}

func TestSplitOversizedItemGetsOwnPage(t *testing.T) {
	l := testLayout()
	// 30 images -> 6 rows -> 10 + 120 = 130 > budget 100.
	big := models.LineItem{ID: "big", Images: images(30)}
	items := []models.LineItem{{ID: "a"}, big, {ID: "b"}}
	pages := Split(items, l)
	var bigPage *Page
	for i := range pages {
		for _, it := range pages[i].Items {
			if it.ID == "big" {
				bigPage = &pages[i]
			}
		}
	}
	if bigPage == nil {
		t.Fatalf("oversized item missing from output")
	}
	if len(bigPage.Items) != 1 {
		t.Fatalf("oversized item shares a page with %d other items", len(bigPage.Items)-1)
	}
}

func TestSplitZeroItemsYieldsOnePage(t *testing.T) {
	pages := Split(nil, testLayout())
	if len(pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(pages))
	}
	if len(pages[0].Items) != 0 {
		t.Fatalf("empty invoice page holds %d items", len(pages[0].Items))
	}
}

func TestSplitTrailingFooterPage(t *testing.T) {
	l := testLayout()
	// Header 30 + 7 items (70) = 100; footer 25 cannot fit, so a trailing
	// empty page must carry it.
	pages := Split(itemsWithIDs(7), l)
	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2 (items page + footer page)", len(pages))
	}
	if len(pages[1].Items) != 0 {
		t.Fatalf("footer page unexpectedly holds %d items", len(pages[1].Items))
	}

	// Header 30 + 4 items (40) = 70; footer fits, no trailing page.
	pages = Split(itemsWithIDs(4), l)
	if len(pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(pages))
	}
}
