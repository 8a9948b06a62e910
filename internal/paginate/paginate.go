// Package paginate splits an invoice's line items into printable pages
// using a heuristic height model. The model estimates rendered heights; it
// is not a typesetting algorithm and incorporates no feedback from actual
// rendered sizes.
package paginate

import "github.com/facturo/facturo/internal/models"

// Layout holds the height model constants, in estimated pixels. The
// defaults are tuned for one visual template; a different template needs
// recalibration, so every constant is configurable.
type Layout struct {
	PageHeight     int // budget per page
	HeaderHeight   int // consumed at the top of the first page
	TopMargin      int // consumed at the top of every later page
	FooterHeight   int // totals + bank block appended after the last item
	BaseItemHeight int // one item row without images
	ImageRowHeight int // one row of attached images
	ImagesPerRow   int
}

// DefaultLayout returns the stock A4 portrait estimates.
func DefaultLayout() Layout {
	return Layout{
		PageHeight:     1060,
		HeaderHeight:   310,
		TopMargin:      60,
		FooterHeight:   240,
		BaseItemHeight: 46,
		ImageRowHeight: 140,
		ImagesPerRow:   5,
	}
}

// Page is one printable page holding an ordered slice of items. The final
// page of a document may be empty when it exists only to carry the footer.
type Page struct {
	Items []models.LineItem
}

// ItemHeight estimates the rendered height of one line item: the base row
// plus one image row per ImagesPerRow attached images, rounded up.
func ItemHeight(it models.LineItem, l Layout) int {
	h := l.BaseItemHeight
	if len(it.Images) > 0 && l.ImagesPerRow > 0 {
		rows := (len(it.Images) + l.ImagesPerRow - 1) / l.ImagesPerRow
		h += rows * l.ImageRowHeight
	}
	return h
}

// Split partitions items into pages without ever reordering them. An item
// that would overflow the running page starts a new page instead; an item
// whose own height exceeds the budget still gets a page to itself rather
// than forcing a wider page. Zero items yield exactly one page (header and
// footer only). If the last page cannot also fit the footer block, a
// trailing empty page is appended to carry it.
func Split(items []models.LineItem, l Layout) []Page {
	var pages []Page
	cur := Page{}
	acc := l.HeaderHeight
	for _, it := range items {
		h := ItemHeight(it, l)
		if acc+h > l.PageHeight && len(cur.Items) > 0 {
			pages = append(pages, cur)
			cur = Page{}
			acc = l.TopMargin
		}
		cur.Items = append(cur.Items, it)
		acc += h
	}
	pages = append(pages, cur)
	if acc+l.FooterHeight > l.PageHeight {
		pages = append(pages, Page{})
	}
	return pages
}
