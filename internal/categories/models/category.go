// Package models defines the category records owned by the categories
// service. Projects reference categories by ID only and resolve names over
// HTTP at read time.
package models

// Category labels projects for browsing.
type Category struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}
