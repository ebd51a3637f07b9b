// Package models defines the donation records owned exclusively by the
// donations service.
package models

import "time"

// PaymentStatus is the settlement state of a donation.
type PaymentStatus string

const (
	StatusPaid      PaymentStatus = "Paid"
	StatusUnsettled PaymentStatus = "Unsettled"
	StatusFailed    PaymentStatus = "Failed"
)

// Valid reports whether s is a recognized payment status.
func (s PaymentStatus) Valid() bool {
	switch s {
	case StatusPaid, StatusUnsettled, StatusFailed:
		return true
	}
	return false
}

// Donation is one pledge against a project. The project reference is by ID
// only; project data is never joined at the storage layer.
type Donation struct {
	ID            string        `json:"_id"`
	UserID        string        `json:"userId"`
	ProjectID     string        `json:"projectId"`
	Amount        float64       `json:"amount"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	CreationDate  time.Time     `json:"creationDate"`
}

// ProjectSum is one row of the bulk aggregation: total donated per project.
// The aggregation sums all payment statuses; records are not filtered on
// Paid versus Unsettled.
type ProjectSum struct {
	ProjectID    string  `json:"_id"`
	CurrentValue float64 `json:"currentValue"`
}
