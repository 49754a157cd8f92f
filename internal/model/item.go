package model

import (
	"strings"
	"time"
)

// RawItem is a document discovered by an ingestion source. Items arrive
// already deduplicated on (Source, ItemID).
type RawItem struct {
	Source       string    `json:"source"`         // cninfo, szse, jiangxi, ...
	ItemID       string    `json:"id"`             // Stable id within the source
	Title        string    `json:"title"`          // Headline or announcement title
	Body         string    `json:"body,omitempty"` // Optional body text or HTML
	URL          string    `json:"url,omitempty"`  // Document URL
	DiscoveredAt time.Time `json:"discovered_at"`  // When the source saw it
}

// Key returns the item's identity
func (i RawItem) Key() string {
	return i.Source + ":" + i.ItemID
}

// Validate checks the identity fields
func (i RawItem) Validate() error {
	if strings.TrimSpace(i.Source) == "" {
		return invalid("item", "source", "must not be empty")
	}
	if strings.TrimSpace(i.ItemID) == "" {
		return invalid("item", "id", "must not be empty")
	}
	return nil
}
