package store

// RowStatus is the status for a row.
type RowStatus string

const (
	// Normal is the status for a normal row.
	Normal RowStatus = "NORMAL"
	// Archived is the status for an archived row.
	Archived RowStatus = "ARCHIVED"
)

func (r RowStatus) String() string {
	return string(r)
}

// Visibility is the visibility of a deck.
type Visibility string

const (
	// Private decks are only visible to their creator.
	Private Visibility = "PRIVATE"
	// Public decks are visible to everyone, including the Atom feed.
	Public Visibility = "PUBLIC"
)

func (v Visibility) String() string {
	return string(v)
}
