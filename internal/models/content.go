package models

import "time"

// Service is one garage offering shown on the services page.
type Service struct {
	ID          int64
	Name        string
	Description string
	PriceCents  int64
	ImageURL    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type BlogPost struct {
	ID        int64
	Title     string
	Body      string
	ImageURL  *string
	Published bool
	AuthorID  int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Feedback entries are submitted by visitors and only shown publicly once
// an admin approves them.
type Feedback struct {
	ID        int64
	Name      string
	Email     string
	Message   string
	Rating    int
	Approved  bool
	CreatedAt time.Time
}
