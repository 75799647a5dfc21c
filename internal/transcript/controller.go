// Package transcript owns the conversation shown to the user. It folds the
// deltas of one streaming reply at a time into the turn list and writes the
// whole list to durable storage after every change.
package transcript

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ayurwell-backend/internal/model"
	"ayurwell-backend/internal/prompt"
	"ayurwell-backend/internal/storage"
	"ayurwell-backend/internal/stream"
	"ayurwell-backend/pkg/logger"
)

var (
	ErrEmptyInput = errors.New("transcript: empty message")
	ErrBusy       = errors.New("transcript: a reply is still streaming")
)

type State int

const (
	StateIdle State = iota
	StateStreaming
)

func (s State) String() string {
	if s == StateStreaming {
		return "streaming"
	}
	return "idle"
}

// Streamer runs one send against the chat proxy.
type Streamer interface {
	Send(ctx context.Context, history []model.ChatMessage, token string, h stream.Handler) error
}

// TokenSource supplies the bearer token for the signed-in user.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Observer is told about changes as they happen. Calls are made without the
// controller lock held, from the goroutine running Submit.
type Observer interface {
	// OnTurn reports a newly appended turn.
	OnTurn(turn model.ChatTurn)
	// OnDelta reports text appended to the streaming assistant turn.
	OnDelta(turnID, delta string)
	// OnError reports a failed reply; message is meant for a short notice.
	OnError(message string)
}

type Config struct {
	StorageKey string
}

type Option func(*Controller)

func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observer = o }
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(c *Controller) { c.newID = newID }
}

type Controller struct {
	store    storage.Store
	key      string
	streamer Streamer
	tokens   TokenSource
	observer Observer
	now      func() time.Time
	newID    func() string

	mu    sync.Mutex
	turns []model.ChatTurn
	state State
	// replyID is the assistant turn of the running session, empty until its
	// first delta.
	replyID string
}

// New restores the transcript stored under cfg.StorageKey. A missing,
// unreadable or outdated record yields the welcome transcript.
func New(cfg Config, store storage.Store, streamer Streamer, tokens TokenSource, opts ...Option) *Controller {
	c := &Controller{
		store:    store,
		key:      cfg.StorageKey,
		streamer: streamer,
		tokens:   tokens,
		observer: nopObserver{},
		now:      time.Now,
		newID:    newTurnID,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.turns = c.restore()
	return c
}

func newTurnID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

func (c *Controller) restore() []model.ChatTurn {
	data, err := c.store.Load(c.key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Warnf("Failed to load transcript: %v", err)
		}
		return c.welcome()
	}

	turns, err := Decode(data)
	if err != nil {
		logger.Warnf("Discarding stored transcript: %v", err)
		return c.welcome()
	}
	return turns
}

func (c *Controller) welcome() []model.ChatTurn {
	return []model.ChatTurn{{
		ID:        prompt.WelcomeID,
		Role:      model.RoleAssistant,
		Content:   prompt.Welcome,
		CreatedAt: c.now(),
	}}
}

// Turns returns a copy of the transcript.
func (c *Controller) Turns() []model.ChatTurn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.ChatTurn(nil), c.turns...)
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submit appends text as a user turn and streams the reply into the
// transcript, returning once the session ends. Blank input returns
// ErrEmptyInput and a call made while another reply is streaming returns
// ErrBusy; neither touches the transcript.
//
// A failed reply is not returned as an error: it ends with an apology turn
// and an Observer.OnError notice. If ctx is cancelled mid-stream Submit
// returns ctx.Err() and leaves the transcript as it was at that moment.
func (c *Controller) Submit(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyInput
	}

	c.mu.Lock()
	if c.state == StateStreaming {
		c.mu.Unlock()
		return ErrBusy
	}
	userTurn := model.ChatTurn{ID: c.newID(), Role: model.RoleUser, Content: text, CreatedAt: c.now()}
	c.turns = append(c.turns, userTurn)
	c.state = StateStreaming
	c.replyID = ""
	c.persistLocked()
	history := c.historyLocked()
	c.mu.Unlock()

	c.observer.OnTurn(userTurn)

	token, err := c.tokens.Token(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return c.abandon(ctx)
		}
		logger.Warnf("No usable session: %v", err)
		c.fail(&stream.Error{Kind: stream.KindAuth, Message: "Please sign in to continue.", Err: err})
		return nil
	}

	s := &session{c: c, ctx: ctx}
	err = c.streamer.Send(ctx, history, token, s)
	if s.ended {
		return nil
	}
	if ctx.Err() != nil {
		return c.abandon(ctx)
	}
	// Send gave up before emitting a terminal event.
	c.fail(&stream.Error{Kind: stream.KindTransport, Message: "Failed to get response", Err: err})
	return nil
}

// Clear deletes the stored transcript and starts over from the welcome turn.
func (c *Controller) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateStreaming {
		return ErrBusy
	}
	if err := c.store.Delete(c.key); err != nil {
		return err
	}
	c.turns = c.welcome()
	return nil
}

// historyLocked is every turn but the welcome turn, as sent upstream.
func (c *Controller) historyLocked() []model.ChatMessage {
	history := make([]model.ChatMessage, 0, len(c.turns))
	for _, turn := range c.turns {
		if turn.ID == prompt.WelcomeID {
			continue
		}
		history = append(history, turn.Message())
	}
	return history
}

func (c *Controller) persistLocked() {
	data, err := Encode(c.turns)
	if err == nil {
		err = c.store.Save(c.key, data)
	}
	if err != nil {
		logger.Errorf("Failed to persist transcript: %v", err)
	}
}

func (c *Controller) appendDelta(delta string) {
	c.mu.Lock()
	var created *model.ChatTurn
	last := len(c.turns) - 1
	if c.replyID != "" && c.turns[last].ID == c.replyID {
		c.turns[last].Content += delta
	} else {
		turn := model.ChatTurn{ID: c.newID(), Role: model.RoleAssistant, Content: delta, CreatedAt: c.now()}
		c.turns = append(c.turns, turn)
		c.replyID = turn.ID
		created = &turn
	}
	id := c.replyID
	c.persistLocked()
	c.mu.Unlock()

	if created != nil {
		c.observer.OnTurn(*created)
		return
	}
	c.observer.OnDelta(id, delta)
}

func (c *Controller) finish() {
	c.mu.Lock()
	c.state = StateIdle
	c.replyID = ""
	c.mu.Unlock()
}

func (c *Controller) fail(err *stream.Error) {
	c.mu.Lock()
	apology := model.ChatTurn{ID: c.newID(), Role: model.RoleAssistant, Content: prompt.Apology, CreatedAt: c.now()}
	c.turns = append(c.turns, apology)
	c.state = StateIdle
	c.replyID = ""
	c.persistLocked()
	c.mu.Unlock()

	logger.Warnf("Chat reply failed: %v", err)
	c.observer.OnError(err.Message)
	c.observer.OnTurn(apology)
}

func (c *Controller) abandon(ctx context.Context) error {
	c.finish()
	return ctx.Err()
}

// session adapts one Submit to stream.Handler. Events arriving after ctx is
// done are dropped.
type session struct {
	c     *Controller
	ctx   context.Context
	ended bool
}

func (s *session) OnDelta(delta string) {
	if s.ended || s.ctx.Err() != nil {
		return
	}
	s.c.appendDelta(delta)
}

func (s *session) OnDone() {
	if s.ended || s.ctx.Err() != nil {
		return
	}
	s.ended = true
	s.c.finish()
}

func (s *session) OnError(err *stream.Error) {
	if s.ended || s.ctx.Err() != nil {
		return
	}
	s.ended = true
	s.c.fail(err)
}

type nopObserver struct{}

func (nopObserver) OnTurn(model.ChatTurn)  {}
func (nopObserver) OnDelta(string, string) {}
func (nopObserver) OnError(string)         {}
