package models

import "time"

// User represents a household member stored in the users table. The member
// set is provisioned externally; this service only reads it.
type User struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Color     string    `db:"color" json:"color"`
	Initial   string    `db:"initial" json:"initial"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
