package models

import "time"

type Status string

const (
	StatusPendingApproval Status = "PendingApproval"
	StatusApproved        Status = "Approved"
	StatusRejected        Status = "Rejected"
	StatusClosed          Status = "Closed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPendingApproval, StatusApproved, StatusRejected, StatusClosed:
		return true
	}
	return false
}

type Project struct {
	ID              string    `json:"_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	OwnerID         string    `json:"ownerId"`
	CategoryID      string    `json:"categoryId"`
	GoalAmount      float64   `json:"goalAmount"`
	DeadLine        time.Time `json:"deadLine"`
	Status          Status    `json:"status"`
	CreationDate    time.Time `json:"creationDate"`
	LastUpdatedDate time.Time `json:"lastUpdatedDate"`
}

// View is a Project enriched with data owned by sibling services: the donation
// total and the resolved category name.
type View struct {
	Project
	CurrentAmount float64 `json:"currentAmount"`
	CategoryName  string  `json:"categoryName"`
}

// Post is an owner-authored update attached to a project.
type Post struct {
	ID           string    `json:"_id"`
	ProjectID    string    `json:"projectId"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	CreationDate time.Time `json:"creationDate"`
}
