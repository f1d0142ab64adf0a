package domain

import "time"

// User is the persisted record of a Discord account that has logged in
// through the dashboard. One document per Discord id; every successful
// login overwrites the mutable fields.
type User struct {
	ID        string    `json:"id,omitempty"`
	DiscordID string    `json:"discord_id"`
	Username  string    `json:"username"`
	Avatar    string    `json:"avatar"`
	LastLogin time.Time `json:"last_login"`
}

// Profile is the subset of the Discord /users/@me response the dashboard
// cares about. Never persisted as-is; folded into User on upsert.
type Profile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// Guild is a partial guild object from /users/@me/guilds.
type Guild struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Owner       bool   `json:"owner"`
	Permissions string `json:"permissions"`
}
