package models

import "time"

// Folder groups a user's credentials. A credential may also live outside
// any folder.
type Folder struct {
	ID        string
	UserID    string
	Name      string
	CreatedAt time.Time
}
