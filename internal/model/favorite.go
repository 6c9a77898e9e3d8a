package model

import "time"

// Favorite is a catalog item a user saved. Title, poster, overview and
// release date are copied from the catalog at the time of saving so the
// list can be rendered without calling the catalog API again.
type Favorite struct {
	ID          string    `json:"id"           db:"id"`
	UserID      string    `json:"user_id"      db:"user_id"`
	MovieID     int64     `json:"movie_id"     db:"movie_id"`
	Title       string    `json:"title"        db:"title"`
	Poster      string    `json:"poster"       db:"poster"`
	Overview    string    `json:"overview"     db:"overview"`
	ReleaseDate string    `json:"release_date" db:"release_date"`
	AddedAt     time.Time `json:"added_at"     db:"added_at"`
}
