package models

// ItemResist is one row of the item or enchant resistance database.
type ItemResist struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	FrostResist int    `json:"frostResist"`
}
