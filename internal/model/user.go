// internal/model/user.go
package model

type User struct {
	ID       int    `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
}
