package scheduler

import (
	"testing"
	"time"

	"fastpai/models"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestWantsBooking(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"Vorrei prenotare un appuntamento", true},
		{"quali orari avete?", true},
		{"ci sono date disponibili?", true},
		{"che documenti servono per la cittadinanza?", false},
		{"ciao", false},
	}
	for _, c := range cases {
		if got := WantsBooking(c.text); got != c.want {
			t.Fatalf("WantsBooking(%q) = %v, want %v", c.text, got, c.want)
		}
	}
}

func TestProposeSlotsSkipsWeekends(t *testing.T) {
	// Friday: the next three business days are Mon, Tue, Wed
	friday := time.Date(2024, 5, 3, 12, 0, 0, 0, time.UTC)
	s := NewWithClock(fixedClock(friday))

	slots := s.ProposeSlots()
	if len(slots) != 3 {
		t.Fatalf("expected 3 dates, got %d: %v", len(slots), slots)
	}
	for _, date := range []string{"2024-05-06", "2024-05-07", "2024-05-08"} {
		times, ok := slots[date]
		if !ok {
			t.Fatalf("expected date %s in %v", date, slots)
		}
		if len(times) == 0 || times[0] != "09:00" {
			t.Fatalf("unexpected times for %s: %v", date, times)
		}
	}
}

func TestBookingReplyCarriesSlots(t *testing.T) {
	s := NewWithClock(fixedClock(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)))

	frame := s.Reply("vorrei prenotare un appuntamento", "Roma")
	info, options := frame.BotMessage()
	if info == "" {
		t.Fatalf("expected reply text")
	}
	if len(options) != 3 {
		t.Fatalf("expected 3 proposed dates, got %v", options)
	}

	var m models.Message
	m.ScheduleOptions = options
	if !m.HasScheduleOptions() {
		t.Fatalf("expected usable schedule options")
	}
}

func TestInfoReplyHasNoSlots(t *testing.T) {
	s := New()

	frame := s.Reply("che documenti servono?", "")
	info, options := frame.BotMessage()
	if info == "" {
		t.Fatalf("expected reply text")
	}
	if options != nil {
		t.Fatalf("expected no schedule options, got %v", options)
	}
}
