package submit

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/atlas/pkg/atlas"
	"github.com/matzehuels/atlas/pkg/errors"
	"github.com/matzehuels/atlas/pkg/observability"
)

// Result is the outcome of a submission as shown to the submitter.
type Result struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`

	// Code classifies a failure for transports that map it to a status.
	Code errors.Code `json:"-"`
}

// Service validates drafts and appends them to a queue.
type Service struct {
	Queue Queue
	// Categories returns the categories a draft may use without becoming
	// custom. Nil means the base categories.
	Categories func() []atlas.Category
	Logger     *log.Logger

	now func() time.Time
}

// NewService creates a service writing to q. A nil logger uses log.Default().
func NewService(q Queue, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{Queue: q, Logger: logger, now: time.Now}
}

// Submit validates d and queues it.
func (s *Service) Submit(ctx context.Context, d Draft) Result {
	start := s.clock()
	res, custom, err := s.submit(ctx, d, start)
	observability.Submit().OnSubmit(ctx, s.queueName(), custom, s.clock().Sub(start), err)

	logger := s.logger()
	switch {
	case res.Success:
		logger.Info("submission queued", "id", res.ID, "category", d.Category, "custom", custom)
	case errors.GetCode(err) == errors.ErrCodeInvalidInput || errors.GetCode(err) == errors.ErrCodeInvalidCategory:
		logger.Warn("submission rejected", "reason", res.Error)
	default:
		logger.Error("submission failed", "queue", s.queueName(), "error", err)
	}
	return res
}

func (s *Service) submit(ctx context.Context, d Draft, at time.Time) (Result, bool, error) {
	if s.Queue == nil {
		err := errors.New(errors.ErrCodeInternal, MsgNotConfigured)
		return Result{Error: MsgNotConfigured, Code: errors.ErrCodeInternal}, false, err
	}
	known := atlas.BaseCategories()
	if s.Categories != nil {
		known = s.Categories()
	}
	valid, err := Validate(d, known)
	if err != nil {
		return Result{Error: errors.UserMessage(err), Code: errors.GetCode(err)}, false, err
	}
	entry := NewEntry(valid, at)
	if err := s.Queue.Append(ctx, entry); err != nil {
		return Result{Error: MsgSubmitFailed, Code: errors.ErrCodeInternal}, valid.Custom(), err
	}
	return Result{Success: true, ID: entry.ID}, valid.Custom(), nil
}

func (s *Service) queueName() string {
	if n, ok := s.Queue.(fmt.Stringer); ok {
		return n.String()
	}
	return "queue"
}

func (s *Service) logger() *log.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return log.Default()
}

func (s *Service) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}
