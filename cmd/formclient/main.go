package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/mattn/go-isatty"
	"github.com/michaelgov-ctrl/form-lab/internal/live"
)

// formclient drives a live form from the terminal.
//
//	name=Alice      field_change
//	blur name       field_blur
//	submit          submit
func main() {
	addr := flag.String("addr", "localhost:4000", "form-lab server address")
	form := flag.String("form", "register", "form to open")
	secure := flag.Bool("secure", false, "use wss")
	flag.Parse()

	scheme := "ws"
	if *secure {
		scheme = "wss"
	}
	serverURL := url.URL{Scheme: scheme, Host: *addr, Path: "/forms/" + *form + "/ws"}

	log.Printf("connecting to %s...", serverURL.String())
	conn, _, err := websocket.DefaultDialer.Dial(serverURL.String(), nil)
	if err != nil {
		log.Fatalf("failed to connect to ws server: %v", err)
	}
	defer conn.Close()

	go func() {
		for {
			var event live.Event
			if err := conn.ReadJSON(&event); err != nil {
				log.Fatalf("failed to read message: %v", err)
			}
			log.Printf("received %s: %s", event.Type, event.Payload)
		}
	}()

	interactive := isatty.IsTerminal(os.Stdin.Fd())
	prompt := func() {
		if interactive {
			fmt.Print("> ")
		}
	}

	scanner := bufio.NewScanner(os.Stdin)
	for prompt(); scanner.Scan(); prompt() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		event, err := parseLine(line)
		if err != nil {
			fmt.Println(err)
			continue
		}

		if err := conn.WriteJSON(event); err != nil {
			log.Fatalf("failed to send message: %v", err)
		}
		log.Printf("sent %s: %s", event.Type, event.Payload)
	}

	if err := scanner.Err(); err != nil {
		log.Fatal(err)
	}
}

func parseLine(line string) (live.Event, error) {
	if line == "submit" {
		return live.NewOutgoingEvent(live.EventSubmit, struct{}{})
	}

	if field, ok := strings.CutPrefix(line, "blur "); ok {
		return live.NewOutgoingEvent(live.EventFieldBlur, live.FieldBlurEvent{Field: strings.TrimSpace(field)})
	}

	field, value, ok := strings.Cut(line, "=")
	if !ok {
		return live.Event{}, fmt.Errorf("expected field=value, blur <field> or submit; got %q", line)
	}

	return live.NewOutgoingEvent(live.EventFieldChange, live.FieldChangeEvent{
		Field: strings.TrimSpace(field),
		Value: value,
	})
}
