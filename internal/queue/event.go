// Package queue defines message payloads exchanged over the message
// broker and the background consumer that processes them.
package queue

// MediaWatchedEvent is published when an item transitions to the
// watched state. It carries enough information for downstream
// consumers to log or trigger notifications without querying the
// primary database.
type MediaWatchedEvent struct {
	ItemID    string `json:"item_id"`
	UserID    string `json:"user_id"`
	Title     string `json:"title"`
	MediaType string `json:"media_type"`
	Rating    int    `json:"rating"`
	WatchedAt string `json:"watched_at"`
}
