package store

import (
	"sort"
	"strconv"
	"strings"

	"github.com/facturo/facturo/internal/models"
)

// Chunked persistence: an invoice is stored as one lightweight record with
// every image stripped, plus one child record per (item, image index) pair
// keyed "{itemId}_{imageIndex}". Child records come back from storage as
// an unordered set, so reassembly restores image order from the positional
// index embedded in each key, never from fetch order.

// imagePart is one child record payload.
type imagePart struct {
	Key  string
	Data string
}

func makeImageKey(itemID string, index int) string {
	return itemID + "_" + strconv.Itoa(index)
}

// splitImageKey parses "{itemId}_{index}". Item ids may themselves contain
// underscores, so the split happens at the last one.
func splitImageKey(key string) (itemID string, index int, ok bool) {
	i := strings.LastIndex(key, "_")
	if i <= 0 || i == len(key)-1 {
		return "", 0, false
	}
	n, err := strconv.Atoi(key[i+1:])
	if err != nil || n < 0 {
		return "", 0, false
	}
	return key[:i], n, true
}

// decompose splits an invoice into its lightweight record and image parts.
// Parts are emitted in item order, but nothing downstream may rely on that.
func decompose(inv models.Invoice) (models.Invoice, []imagePart) {
	light := inv.Clone()
	var parts []imagePart
	for i := range light.Items {
		for j, img := range light.Items[i].Images {
			parts = append(parts, imagePart{Key: makeImageKey(light.Items[i].ID, j), Data: img})
		}
		light.Items[i].Images = nil
	}
	return light, parts
}

// reassemble splices image parts back into the lightweight invoice's
// items. Parts with malformed keys or keys matching no item are dropped;
// within an item, images are ordered by the index parsed from the key.
func reassemble(light models.Invoice, parts []imagePart) models.Invoice {
	if len(parts) == 0 {
		return light
	}
	type indexed struct {
		index int
		data  string
	}
	byItem := make(map[string][]indexed)
	for _, p := range parts {
		itemID, index, ok := splitImageKey(p.Key)
		if !ok {
			continue
		}
		byItem[itemID] = append(byItem[itemID], indexed{index: index, data: p.Data})
	}
	inv := light.Clone()
	for i := range inv.Items {
		group := byItem[inv.Items[i].ID]
		if len(group) == 0 {
			continue
		}
		sort.Slice(group, func(a, b int) bool { return group[a].index < group[b].index })
		images := make([]string, len(group))
		for j, g := range group {
			images[j] = g.data
		}
		inv.Items[i].Images = images
	}
	return inv
}
