package model

import "time"

// Repository is a GitHub repository whose open pull requests make up the
// feed when reviewrot builds it directly from GitHub.
type Repository struct {
	ID       int64
	FullName string
	Owner    string
	Name     string
	AddedAt  time.Time
}
