package conversation

import (
	"strings"
	"sync"
	"time"

	"fastpai/models"
	"fastpai/pkg/logger"
	"fastpai/pkg/transport"
)

// Sender is the outbound half of the transport adapter.
type Sender interface {
	SendText(text string) error
	SendJSON(v any) error
}

// Config tunes one controller. Zero values fall back to the defaults noted
// per field.
type Config struct {
	// CityGate requires SelectCity before the first message and switches
	// outbound frames to {message, city} objects.
	CityGate bool
	// BannerTTL is how long the confirmation banner stays visible.
	// Defaults to 3 seconds.
	BannerTTL time.Duration
	// TypingTimeout bounds how long the typing indicator may stay on with
	// no reply. Zero disables the bound and the indicator stays on until
	// a reply arrives, as the original widget behaved.
	TypingTimeout time.Duration
	// OnChange, when set, receives a state snapshot after every mutation.
	OnChange func(Session)
}

// Controller owns one conversation session. All mutation happens behind its
// lock, reacting to user actions, transport events and timer expiry; the
// view layer only reads snapshots.
type Controller struct {
	mu   sync.Mutex
	sess Session
	tr   Sender
	cfg  Config

	connOpen bool
	// generation counters invalidate stale timer callbacks
	bannerGen int
	typingGen int
}

func New(cfg Config) *Controller {
	if cfg.BannerTTL <= 0 {
		cfg.BannerTTL = 3 * time.Second
	}
	phase := PhaseReady
	if cfg.CityGate {
		phase = PhaseAwaitingCity
	}
	return &Controller{
		cfg: cfg,
		sess: Session{
			ConfirmedSlots: make(map[string]bool),
			Phase:          phase,
		},
	}
}

// Bind attaches the outbound transport. Must happen before the first
// SubmitUserMessage; construction is split from binding because the
// transport in turn needs the controller's Handler.
func (c *Controller) Bind(tr Sender) {
	c.mu.Lock()
	c.tr = tr
	c.mu.Unlock()
}

// Handler wires the controller to a transport adapter's events.
func (c *Controller) Handler() transport.Handler {
	return transport.Handler{
		OnOpen:    c.onOpen,
		OnMessage: c.OnInbound,
		OnError:   c.onError,
		OnClose:   c.onClose,
	}
}

// Snapshot returns a copy of the session state for rendering.
func (c *Controller) Snapshot() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess.clone()
}

// SubmitUserMessage appends the user's turn and forwards it over the wire.
// Empty input, a missing connection and an unsatisfied city gate are
// rejected without touching state.
func (c *Controller) SubmitUserMessage(text string) error {
	trimmed := strings.TrimSpace(text)

	c.mu.Lock()
	switch {
	case trimmed == "":
		c.mu.Unlock()
		return ErrEmptyMessage
	case c.sess.Phase == PhaseClosed:
		c.mu.Unlock()
		return ErrSessionClosed
	case c.tr == nil || !c.connOpen:
		c.mu.Unlock()
		return ErrNotConnected
	case c.sess.Phase == PhaseAwaitingCity:
		c.mu.Unlock()
		return ErrCityRequired
	}

	c.sess.Messages = append(c.sess.Messages, models.Message{
		ID:        len(c.sess.Messages),
		Text:      text,
		Sender:    models.SenderUser,
		Timestamp: time.Now(),
	})
	c.sess.Typing = true
	c.sess.Phase = PhaseUserPending
	c.typingGen++
	gen := c.typingGen
	city := c.sess.SelectedCity
	tr := c.tr
	snap := c.sess.clone()
	c.mu.Unlock()

	if c.cfg.TypingTimeout > 0 {
		time.AfterFunc(c.cfg.TypingTimeout, func() { c.typingExpired(gen) })
	}

	// fire-and-forget: a failed send is a diagnostic, the turn stays
	var err error
	if c.cfg.CityGate {
		err = tr.SendJSON(models.OutboundFrame{Message: text, City: city})
	} else {
		err = tr.SendText(text)
	}
	if err != nil {
		logger.S().Warnw("send failed", "err", err)
	}

	c.notify(snap)
	return nil
}

// OnInbound appends the bot turn a validated frame carries and clears the
// typing indicator. Malformed frames never reach this point; the transport
// drops them.
func (c *Controller) OnInbound(frame models.InboundFrame) {
	text, options := frame.BotMessage()

	c.mu.Lock()
	c.sess.Messages = append(c.sess.Messages, models.Message{
		ID:              len(c.sess.Messages),
		Text:            text,
		Sender:          models.SenderBot,
		ScheduleOptions: options,
		Timestamp:       time.Now(),
	})
	c.sess.Typing = false
	c.typingGen++
	if c.sess.Phase != PhaseClosed && c.sess.Phase != PhaseAwaitingCity {
		c.sess.Phase = PhaseBotDisplayed
	}
	snap := c.sess.clone()
	c.mu.Unlock()

	c.notify(snap)
}

// SelectCity resolves the city gate. Allowed exactly once per session and
// only while the gate is active.
func (c *Controller) SelectCity(city string) error {
	city = strings.TrimSpace(city)
	if city == "" {
		return ErrEmptyMessage
	}

	c.mu.Lock()
	if c.sess.SelectedCity != "" {
		c.mu.Unlock()
		return ErrCityAlreadySet
	}
	if c.sess.Phase != PhaseAwaitingCity {
		c.mu.Unlock()
		return ErrCityGateInactive
	}
	c.sess.SelectedCity = city
	c.sess.Phase = PhaseReady
	snap := c.sess.clone()
	c.mu.Unlock()

	c.notify(snap)
	return nil
}

// RequestSlotConfirmation opens the confirmation modal for a proposed slot.
// Slots already confirmed this session are rejected.
func (c *Controller) RequestSlotConfirmation(slot string) error {
	c.mu.Lock()
	if c.sess.ConfirmedSlots[slot] {
		c.mu.Unlock()
		return ErrSlotAlreadyConfirmed
	}
	c.sess.SelectedSlot = slot
	c.sess.ModalOpen = true
	snap := c.sess.clone()
	c.mu.Unlock()

	c.notify(snap)
	return nil
}

// ConfirmSelectedSlot books the pending slot, closes the modal and shows the
// transient banner. Confirming with no pending slot is a no-op; confirming a
// slot twice leaves the set unchanged.
func (c *Controller) ConfirmSelectedSlot() {
	c.mu.Lock()
	if c.sess.SelectedSlot == "" {
		c.mu.Unlock()
		return
	}
	c.sess.ConfirmedSlots[c.sess.SelectedSlot] = true
	c.sess.SelectedSlot = ""
	c.sess.ModalOpen = false
	c.sess.BannerVisible = true
	c.bannerGen++
	gen := c.bannerGen
	snap := c.sess.clone()
	c.mu.Unlock()

	time.AfterFunc(c.cfg.BannerTTL, func() { c.bannerExpired(gen) })
	c.notify(snap)
}

// CancelSlotConfirmation closes the modal without booking anything.
func (c *Controller) CancelSlotConfirmation() {
	c.mu.Lock()
	c.sess.SelectedSlot = ""
	c.sess.ModalOpen = false
	snap := c.sess.clone()
	c.mu.Unlock()

	c.notify(snap)
}

func (c *Controller) onOpen() {
	c.mu.Lock()
	c.connOpen = true
	c.mu.Unlock()
	logger.S().Debugw("conversation connected")
}

func (c *Controller) onError(err error) {
	logger.S().Warnw("conversation transport error", "err", err)
}

// onClose ends the session: the connection is gone and no reconnection is
// attempted. A still-lit typing indicator is left as is.
func (c *Controller) onClose() {
	c.mu.Lock()
	c.connOpen = false
	c.sess.Phase = PhaseClosed
	snap := c.sess.clone()
	c.mu.Unlock()

	c.notify(snap)
}

func (c *Controller) bannerExpired(gen int) {
	c.mu.Lock()
	if gen != c.bannerGen || !c.sess.BannerVisible {
		c.mu.Unlock()
		return
	}
	c.sess.BannerVisible = false
	snap := c.sess.clone()
	c.mu.Unlock()

	c.notify(snap)
}

func (c *Controller) typingExpired(gen int) {
	c.mu.Lock()
	if gen != c.typingGen || !c.sess.Typing {
		c.mu.Unlock()
		return
	}
	c.sess.Typing = false
	snap := c.sess.clone()
	c.mu.Unlock()

	logger.S().Debugw("typing indicator timed out")
	c.notify(snap)
}

func (c *Controller) notify(snap Session) {
	if c.cfg.OnChange != nil {
		c.cfg.OnChange(snap)
	}
}
