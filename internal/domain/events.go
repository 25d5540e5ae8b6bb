package domain

// ActivityEvent is a marketplace event pushed to connected websocket
// clients: a new card, an unlock, a like, or a share.
type ActivityEvent struct {
	Type   string `json:"type"`
	CardID string `json:"card_id,omitempty"`
	Wallet string `json:"wallet,omitempty"`
	Time   string `json:"time"`
}

const (
	EventCardCreated = "card_created"
	EventUnlock      = "unlock"
	EventLike        = "like"
	EventUnlike      = "unlike"
	EventShare       = "share"
	EventUnshare     = "unshare"
)

// ActivityPublisher fans an event out to whoever is listening. Implementations
// must never block the caller.
type ActivityPublisher interface {
	Publish(event ActivityEvent)
}
