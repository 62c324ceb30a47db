package contact

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	MsgCreated = "Contact message sent successfully"
	MsgFailed  = "Failed to send message"

	notifyTimeout = 30 * time.Second
)

// Result is the outcome of one submission. Status is the HTTP status the
// result should be written with.
type Result struct {
	Status  int      `json:"-"`
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    *Message `json:"data,omitempty"`
}

// Service accepts contact submissions. It is safe for concurrent use as long
// as the Store is.
type Service struct {
	store    Store
	notifier Notifier
	log      zerolog.Logger
	now      func() time.Time
}

type Option func(*Service)

// WithNotifier sends a notification for every stored message.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithClock replaces time.Now as the source of created_at.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		store: store,
		log:   log,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates, stores and reports on one submission.
func (s *Service) Submit(ctx context.Context, in Submission) Result {
	msg, err := s.Create(ctx, in)
	return ResultFor(msg, err)
}

// Create validates the submission and makes exactly one write attempt.
// Errors are *ValidationError or *StorageError.
func (s *Service) Create(ctx context.Context, in Submission) (Message, error) {
	createdAt := s.now().UTC()

	if err := Validate(in); err != nil {
		s.log.Debug().Err(err).Msg("rejected contact submission")
		return Message{}, err
	}

	stored, err := s.store.CreateContact(ctx, Message{
		Name:      in.Name,
		Email:     in.Email,
		Subject:   in.Subject,
		Message:   in.Message,
		CreatedAt: createdAt,
	})
	if err != nil {
		s.log.Error().Err(err).Str("email", in.Email).Msg("failed to store contact message")
		return Message{}, &StorageError{Err: err}
	}

	s.log.Info().Int64("id", stored.ID).Str("subject", stored.Subject).Msg("contact message stored")

	if s.notifier != nil {
		go s.notify(context.WithoutCancel(ctx), stored)
	}
	return stored, nil
}

func (s *Service) notify(ctx context.Context, msg Message) {
	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	if err := s.notifier.Notify(ctx, msg); err != nil {
		s.log.Warn().Err(err).Int64("id", msg.ID).Msg("failed to send contact notification")
	}
}

// ResultFor maps the outcome of Create onto the response contract. Storage
// and unexpected errors collapse into a generic message.
func ResultFor(msg Message, err error) Result {
	if err == nil {
		return Result{Status: http.StatusCreated, Success: true, Message: MsgCreated, Data: &msg}
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		return Result{Status: http.StatusBadRequest, Message: verr.Error()}
	}
	return Result{Status: http.StatusInternalServerError, Message: MsgFailed}
}
