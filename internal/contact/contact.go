// Package contact validates and persists contact-form submissions.
package contact

import (
	"context"
	"time"
)

// Message is a stored contact-form submission.
type Message struct {
	ID        int64     `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Email     string    `json:"email" yaml:"email"`
	Subject   string    `json:"subject" yaml:"subject"`
	Message   string    `json:"message" yaml:"message"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Submission is the inbound request body. Fields are validated before a
// Message is built from it.
type Submission struct {
	Name    string `json:"name" validate:"required,min=2"`
	Email   string `json:"email" validate:"required,email,email_tld"`
	Subject string `json:"subject" validate:"required,min=2"`
	Message string `json:"message" validate:"required,min=10"`
}

// Store is the storage collaborator. CreateContact is a single atomic insert
// that returns the stored record including its generated ID.
type Store interface {
	CreateContact(ctx context.Context, msg Message) (Message, error)
}

// Notifier is told about messages after they are stored.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}
