package assistant

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/iwvelando/loan-desk/pkg/constants"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// ApologyText replaces the reply whenever the gateway fails.
const ApologyText = "Sorry, the assistant could not answer right now. Please try again in a moment."

// Inquiry outcomes reported to an Observer.
const (
	OutcomeAnswered = "answered"
	OutcomeApology  = "apology"
	OutcomeBusy     = "busy"
	OutcomeRejected = "rejected"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a conversation.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Apology   bool      `json:"apology,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Observer receives inquiry instrumentation. *metrics.Metrics satisfies it.
type Observer interface {
	IncrementInquiry(outcome string)
	ObserveGatewayLatency(d time.Duration)
}

type nopObserver struct{}

func (nopObserver) IncrementInquiry(string)             {}
func (nopObserver) ObserveGatewayLatency(time.Duration) {}

// Option configures a Session.
type Option func(*Session)

// WithTimeout bounds each gateway call.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithObserver sets the instrumentation sink.
func WithObserver(o Observer) Option {
	return func(s *Session) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithClock overrides time.Now for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// Session is one conversation with the assistant. Send is serialized: while
// an inquiry is outstanding further sends fail with ErrBusy and append
// nothing. Messages may be read concurrently with a send.
type Session struct {
	id       string
	gateway  Gateway
	logger   *zap.Logger
	observer Observer
	timeout  time.Duration
	now      func() time.Time

	sem      *semaphore.Weighted
	inFlight atomic.Bool

	mu         sync.RWMutex
	messages   []Message
	lastActive time.Time
}

// NewSession creates an empty conversation backed by gateway.
func NewSession(gateway Gateway, logger *zap.Logger, opts ...Option) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if gateway == nil {
		gateway = DisabledGateway{}
	}
	s := &Session{
		id:       uuid.NewString(),
		gateway:  gateway,
		logger:   logger,
		observer: nopObserver{},
		timeout:  constants.DefaultAssistantTimeoutSeconds * time.Second,
		now:      time.Now,
		sem:      semaphore.NewWeighted(1),
		messages: []Message{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lastActive = s.now()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// InFlight reports whether an inquiry is outstanding.
func (s *Session) InFlight() bool {
	return s.inFlight.Load()
}

// LastActive returns the time of the last accepted inquiry or reply.
func (s *Session) LastActive() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActive
}

// Messages returns a copy of the conversation in order.
func (s *Session) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Message(nil), s.messages...)
}

// Send appends the inquiry, calls the gateway and appends the reply. A
// gateway failure is not returned as an error: the appended reply is an
// apology instead. Errors are returned only for rejected inquiries
// (ErrEmptyInquiry, ErrInquiryTooLong, ErrBusy), in which case nothing is
// appended.
func (s *Session) Send(ctx context.Context, text string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		s.observer.IncrementInquiry(OutcomeRejected)
		return Message{}, ErrEmptyInquiry
	}
	if utf8.RuneCountInString(text) > constants.MaxInquiryRunes {
		s.observer.IncrementInquiry(OutcomeRejected)
		return Message{}, ErrInquiryTooLong
	}

	if !s.sem.TryAcquire(1) {
		s.observer.IncrementInquiry(OutcomeBusy)
		return Message{}, ErrBusy
	}
	s.inFlight.Store(true)
	defer func() {
		s.inFlight.Store(false)
		s.sem.Release(1)
	}()

	s.append(Message{ID: uuid.NewString(), Role: RoleUser, Text: text, CreatedAt: s.now()})

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	reply, err := s.gateway.SendInquiry(callCtx, text)
	s.observer.ObserveGatewayLatency(time.Since(start))

	if err == nil && strings.TrimSpace(reply) == "" {
		err = &GatewayError{Code: "empty_response", Message: "gateway returned no text"}
	}

	if err != nil {
		s.logger.Warn("assistant inquiry failed; replying with apology",
			zap.String("op", "assistant.session.send"),
			zap.String("session", s.id),
			zap.String("code", ErrorCode(err)),
			zap.Error(err))
		s.observer.IncrementInquiry(OutcomeApology)
		return s.append(Message{ID: uuid.NewString(), Role: RoleAssistant, Text: ApologyText, Apology: true, CreatedAt: s.now()}), nil
	}

	s.logger.Debug("assistant inquiry answered",
		zap.String("op", "assistant.session.send"),
		zap.String("session", s.id),
		zap.Int("replyRunes", utf8.RuneCountInString(reply)))
	s.observer.IncrementInquiry(OutcomeAnswered)
	return s.append(Message{ID: uuid.NewString(), Role: RoleAssistant, Text: reply, CreatedAt: s.now()}), nil
}

func (s *Session) append(m Message) Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, m)
	s.lastActive = m.CreatedAt
	return m
}
