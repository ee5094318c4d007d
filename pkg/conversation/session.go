package conversation

import "fastpai/models"

// Phase is the per-session conversation state. The city gate phase only
// exists when the controller is configured with one; otherwise a session
// starts ready to chat. PhaseClosed is terminal.
type Phase string

const (
	PhaseAwaitingCity Phase = "awaiting_city"
	PhaseReady        Phase = "ready"
	PhaseUserPending  Phase = "user_pending"
	PhaseBotDisplayed Phase = "bot_displayed"
	PhaseClosed       Phase = "closed"
)

// Session is the conversation state a view renders from. It is owned by the
// Controller; callers get copies via Snapshot.
type Session struct {
	Messages     []models.Message
	SelectedCity string
	// Typing is true while the most recent user message has no bot reply.
	Typing bool
	// ConfirmedSlots only grows: a confirmed "date time" slot stays
	// disabled for the rest of the session.
	ConfirmedSlots map[string]bool
	// SelectedSlot is the slot pending confirmation while the modal is open.
	SelectedSlot  string
	ModalOpen     bool
	BannerVisible bool
	Phase         Phase
}

// SlotConfirmed reports whether the slot was already booked this session.
func (s Session) SlotConfirmed(slot string) bool {
	return s.ConfirmedSlots[slot]
}

func (s Session) clone() Session {
	out := s
	out.Messages = append([]models.Message(nil), s.Messages...)
	out.ConfirmedSlots = make(map[string]bool, len(s.ConfirmedSlots))
	for k, v := range s.ConfirmedSlots {
		out.ConfirmedSlots[k] = v
	}
	return out
}
