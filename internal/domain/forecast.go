// Package domain defines the core types and interfaces of the Polymira
// backend: forecast cards, purchases, profiles, leaderboards, and the store
// and cache contracts implemented elsewhere.
package domain

import "encoding/json"

// InteractionKind selects which interaction list on a card an operation
// targets. The values double as the JSON keys inside the forecasts document.
type InteractionKind string

const (
	KindLike  InteractionKind = "likes"
	KindShare InteractionKind = "shares"
)

// ParseInteractionKind maps the API-facing names ("like", "share") onto an
// InteractionKind.
func ParseInteractionKind(s string) (InteractionKind, error) {
	switch s {
	case "like", "likes":
		return KindLike, nil
	case "share", "shares":
		return KindShare, nil
	default:
		return "", ErrInvalidKind
	}
}

// Interaction is a single like or share entry on a card. Time is the raw
// ISO-8601 string as stored in the document; it is parsed lazily so a
// malformed entry never poisons the whole collection.
type Interaction struct {
	Wallet string `json:"wallet"`
	Time   string `json:"time"`
}

// ForecastCard is a prediction card. Besides the fields the backend manages,
// authors submit arbitrary prediction fields (odds, category, image slug,
// ...) which are preserved verbatim in Extra and round-trip through the
// store untouched.
type ForecastCard struct {
	ID        string
	Title     string
	CreatedAt string
	Likes     []Interaction
	Shares    []Interaction
	Extra     map[string]any
}

// managed keys are lifted out of the raw document object; everything else
// stays in Extra.
var managedCardKeys = map[string]bool{
	"id":        true,
	"title":     true,
	"createdAt": true,
	"likes":     true,
	"shares":    true,
}

// MarshalJSON flattens the card back into a single JSON object, merging the
// managed fields over the author-supplied extras.
func (c ForecastCard) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(c.Extra)+5)
	for k, v := range c.Extra {
		if !managedCardKeys[k] {
			obj[k] = v
		}
	}
	obj["id"] = c.ID
	obj["title"] = c.Title
	obj["createdAt"] = c.CreatedAt
	obj["likes"] = emptyIfNil(c.Likes)
	obj["shares"] = emptyIfNil(c.Shares)
	return json.Marshal(obj)
}

// UnmarshalJSON splits a raw document object into managed fields and extras.
func (c *ForecastCard) UnmarshalJSON(data []byte) error {
	var managed struct {
		ID        string        `json:"id"`
		Title     string        `json:"title"`
		CreatedAt string        `json:"createdAt"`
		Likes     []Interaction `json:"likes"`
		Shares    []Interaction `json:"shares"`
	}
	if err := json.Unmarshal(data, &managed); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	extra := make(map[string]any)
	for k, v := range raw {
		if managedCardKeys[k] {
			continue
		}
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return err
		}
		extra[k] = val
	}
	if len(extra) == 0 {
		extra = nil
	}

	c.ID = managed.ID
	c.Title = managed.Title
	c.CreatedAt = managed.CreatedAt
	c.Likes = managed.Likes
	c.Shares = managed.Shares
	c.Extra = extra
	return nil
}

// Interactions returns the list for the given kind.
func (c *ForecastCard) Interactions(kind InteractionKind) []Interaction {
	if kind == KindShare {
		return c.Shares
	}
	return c.Likes
}

// SetInteractions replaces the list for the given kind.
func (c *ForecastCard) SetInteractions(kind InteractionKind, list []Interaction) {
	if kind == KindShare {
		c.Shares = list
		return
	}
	c.Likes = list
}

func emptyIfNil(list []Interaction) []Interaction {
	if list == nil {
		return []Interaction{}
	}
	return list
}
