package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"fastpai/models"
	"fastpai/pkg/config"
	"fastpai/pkg/conversation"
	"fastpai/pkg/logger"
	"fastpai/pkg/transport"
)

// chatcli is a line-oriented stand-in for the browser widget: it renders the
// conversation controller's state as text and maps commands to the widget's
// click targets.
//
//	/city <name>            pick a city (city-gated sessions)
//	/book <date> <time>     open the confirmation dialog for a slot
//	/confirm                confirm the pending slot
//	/cancel                 dismiss the dialog
//	/quit                   close the session
//
// Anything else is sent as a chat message.
func main() {
	var (
		mu      sync.Mutex
		printed int
	)

	ctrl := conversation.New(conversation.Config{
		CityGate:      config.CityGate,
		BannerTTL:     time.Duration(config.BannerSeconds) * time.Second,
		TypingTimeout: time.Duration(config.TypingTimeoutSeconds) * time.Second,
		OnChange: func(s conversation.Session) {
			mu.Lock()
			defer mu.Unlock()
			for ; printed < len(s.Messages); printed++ {
				render(s.Messages[printed])
			}
			if s.BannerVisible {
				fmt.Println("*** Appuntamento confermato! ***")
			}
			if s.Phase == conversation.PhaseClosed {
				fmt.Println("-- sessione terminata --")
			}
		},
	})

	conn := transport.New(ctrl.Handler())
	ctrl.Bind(conn)

	fmt.Printf("FastPAI — connessione a %s\n", config.BackendWSURL)
	conn.Connect(config.BackendWSURL)
	defer conn.Close()

	if config.CityGate {
		fmt.Println("Seleziona una città con /city <nome> prima di scrivere.")
	}

	in := bufio.NewScanner(os.Stdin)
	for in.Scan() {
		line := strings.TrimSpace(in.Text())
		switch {
		case line == "/quit":
			conn.Close()
			return
		case strings.HasPrefix(line, "/city "):
			city := strings.TrimSpace(strings.TrimPrefix(line, "/city"))
			if err := ctrl.SelectCity(city); err != nil {
				fmt.Println("!", err)
			} else {
				fmt.Printf("Città selezionata: %s\n", city)
			}
		case strings.HasPrefix(line, "/book "):
			slot := strings.TrimSpace(strings.TrimPrefix(line, "/book"))
			if err := ctrl.RequestSlotConfirmation(slot); err != nil {
				fmt.Println("!", err)
			} else {
				fmt.Printf("Confermi l'appuntamento %s? (/confirm o /cancel)\n", slot)
			}
		case line == "/confirm":
			ctrl.ConfirmSelectedSlot()
		case line == "/cancel":
			ctrl.CancelSlotConfirmation()
		case line != "":
			if err := ctrl.SubmitUserMessage(line); err != nil {
				fmt.Println("!", err)
			} else {
				fmt.Println("... sto scrivendo ...")
			}
		}
	}
	if err := in.Err(); err != nil {
		logger.S().Errorw("stdin read failed", "err", err)
	}
}

func render(m models.Message) {
	switch m.Sender {
	case models.SenderUser:
		fmt.Printf("Tu: %s\n", m.Text)
	default:
		fmt.Printf("Bot: %s\n", m.Text)
		for _, date := range m.ScheduleDates() {
			fmt.Printf("  %s: %s\n", date, strings.Join(m.ScheduleOptions[date], " "))
		}
		if m.HasScheduleOptions() {
			fmt.Println("  (prenota con /book <data> <orario>)")
		}
	}
}
