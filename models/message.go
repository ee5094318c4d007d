package models

import (
	"sort"
	"time"
)

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one chat turn. ID is the append position within the session;
// it is not unique across sessions. Messages are immutable once appended.
type Message struct {
	ID              int                 `json:"id"`
	Text            string              `json:"text"`
	Sender          Sender              `json:"sender"`
	ScheduleOptions map[string][]string `json:"schedule_options,omitempty"`
	Timestamp       time.Time           `json:"timestamp"`
}

// HasScheduleOptions reports whether the turn offers at least one slot.
func (m Message) HasScheduleOptions() bool {
	for _, times := range m.ScheduleOptions {
		if len(times) > 0 {
			return true
		}
	}
	return false
}

// ScheduleDates returns the offered date labels in sorted order so callers
// can render options deterministically.
func (m Message) ScheduleDates() []string {
	if len(m.ScheduleOptions) == 0 {
		return nil
	}
	dates := make([]string, 0, len(m.ScheduleOptions))
	for d := range m.ScheduleOptions {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}
