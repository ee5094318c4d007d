package scheduler

import (
	"fmt"
	"strings"
	"time"

	"fastpai/models"
)

// Scheduler is the rule-based bot of the development backend. It mimics the
// real conversational service closely enough to exercise the widget core:
// booking requests get date/time proposals, anything else gets an
// informational reply. Replies are deterministic given the clock.
type Scheduler struct {
	now func() time.Time
}

func New() *Scheduler {
	return &Scheduler{now: time.Now}
}

// NewWithClock pins the clock, for tests.
func NewWithClock(now func() time.Time) *Scheduler {
	return &Scheduler{now: now}
}

// office desk hours offered for every free day
var deskHours = []string{"09:00", "09:30", "10:00", "10:30", "11:00", "11:30", "12:00"}

var bookingKeywords = []string{
	"prenota", "appuntament", "disponibil", "orari", "slot", "book",
}

// WantsBooking reports whether the text reads like a booking request.
func WantsBooking(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range bookingKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Reply produces the inbound frame the backend would answer with.
func (s *Scheduler) Reply(text, city string) models.InboundFrame {
	msg := &models.InboundMessage{LLMResponse: &models.LLMResponse{}}
	if WantsBooking(text) {
		msg.Response = s.ProposeSlots()
		msg.LLMResponse.Info = bookingInfo(city)
	} else {
		msg.LLMResponse.Info = serviceInfo(city)
	}
	return models.InboundFrame{Message: msg}
}

// ProposeSlots returns the next three business days, each with the full desk
// hours. Date labels are YYYY-MM-DD, matching what the widget renders.
func (s *Scheduler) ProposeSlots() map[string][]string {
	out := make(map[string][]string, 3)
	day := s.now()
	for len(out) < 3 {
		day = day.AddDate(0, 0, 1)
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		times := make([]string, len(deskHours))
		copy(times, deskHours)
		out[day.Format("2006-01-02")] = times
	}
	return out
}

func bookingInfo(city string) string {
	if city != "" {
		return fmt.Sprintf("Ecco le prossime date disponibili presso lo sportello di %s. Seleziona un orario per confermare l'appuntamento.", city)
	}
	return "Ecco le prossime date disponibili presso lo sportello. Seleziona un orario per confermare l'appuntamento."
}

func serviceInfo(city string) string {
	b := &strings.Builder{}
	b.WriteString("Posso aiutarti con i servizi dello sportello")
	if city != "" {
		fmt.Fprintf(b, " di %s", city)
	}
	b.WriteString(": informazioni sui documenti necessari e prenotazione di un appuntamento.\n")
	b.WriteString("Scrivi ad esempio \"vorrei prenotare un appuntamento\" per vedere le date disponibili.")
	return b.String()
}
