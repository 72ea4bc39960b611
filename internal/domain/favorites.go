package domain

import "time"

// FavoriteAction is the kind of change applied to the favorites list.
type FavoriteAction string

const (
	FavoriteAdded   FavoriteAction = "added"
	FavoriteRemoved FavoriteAction = "removed"
)

// FavoritesChanged announces a mutation of the favorites list. Favorites is
// the full list after the change, so consumers never need to replay history.
type FavoritesChanged struct {
	ID        string         `json:"id"`
	City      string         `json:"city"`
	Action    FavoriteAction `json:"action"`
	Favorites []string       `json:"favorites"`
	ChangedAt time.Time      `json:"changed_at"`
}
