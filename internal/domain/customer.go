package domain

import "time"

// Customer is an end-user of the delivery platform, keyed by canonical phone.
//
// Phone, when present, is always stored in the canonical +91-XXXXXXXXXX form;
// any other stored format is a defect.
type Customer struct {
	ID           int64
	Name         string
	Email        string
	Phone        *string
	Address      *string
	RegisteredAt time.Time
}
