package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"

	"vitatrack/domain/event"
	"vitatrack/infrastructure/ws"
)

// Exit codes for the client application.
const (
	exitOK       = 0
	exitRuntime  = 1
	exitConfig   = 2
	exitRoomFull = 3
)

// Config defines the client-side environment variables.
type Config struct {
	ServerAddress string `env:"SIGNAL_SERVER_ADDR,default=localhost:3000"`
	Scheme        string `env:"SIGNAL_SCHEME,default=ws"`
	RoomID        string `env:"SIGNAL_ROOM_ID,default=lobby"`
	DisplayName   string `env:"SIGNAL_DISPLAY_NAME,default=probe"`
	LogLevel      string `env:"LOG_LEVEL,default=INFO"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

// run joins a room as a probe peer: it offers a dummy handshake to every member
// already present, answers every offer it receives and prints room activity until
// interrupted.
func run() (int, error) {
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	u := url.URL{Scheme: config.Scheme, Host: config.ServerAddress, Path: "/ws"}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return exitRuntime, fmt.Errorf("could not connect to %s: %w", u.String(), err)
	}
	defer func() {
		log.Info("Closing connection...")
		_ = conn.Close()
	}()

	// Unblock ReadJSON on Ctrl+C.
	go func() {
		<-ctx.Done()
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
		_ = conn.Close()
	}()

	metadata, _ := json.Marshal(map[string]string{"name": config.DisplayName})
	join, _ := json.Marshal(map[string]any{"roomID": config.RoomID, "metadata": json.RawMessage(metadata)})
	if err := conn.WriteJSON(ws.Envelope{Event: ws.EventJoinRoom, Data: join}); err != nil {
		return exitRuntime, fmt.Errorf("join failed: %w", err)
	}
	log.Info("Joining room", "room_id", config.RoomID, "server", u.String())

	for {
		var frame ws.Envelope
		if err := conn.ReadJSON(&frame); err != nil {
			if ctx.Err() != nil {
				return exitOK, nil
			}
			return exitRuntime, fmt.Errorf("connection lost: %w", err)
		}
		if done, code := handle(log, conn, frame); done {
			return code, nil
		}
	}
}

func handle(log *slog.Logger, conn *websocket.Conn, frame ws.Envelope) (bool, int) {
	switch frame.Event {
	case event.NameRoomFull:
		color.Red.Println("Room is full")
		return true, exitRoomFull

	case event.NameAllUsers:
		var users []string
		if err := json.Unmarshal(frame.Data, &users); err != nil {
			log.Warn("Bad all-users frame", "error", err)
			return false, 0
		}
		printMembers(users)
		for _, id := range users {
			offer, _ := json.Marshal(map[string]any{
				"userToSignal": id,
				"signal":       map[string]string{"type": "probe-offer"},
			})
			if err := conn.WriteJSON(ws.Envelope{Event: ws.EventSendingSignal, Data: offer}); err != nil {
				log.Warn("Offer failed", "target", id, "error", err)
			}
		}

	case event.NameUserJoined:
		var data struct {
			CallerID string          `json:"callerID"`
			Metadata json.RawMessage `json:"metadata"`
		}
		if err := json.Unmarshal(frame.Data, &data); err != nil {
			log.Warn("Bad user-joined frame", "error", err)
			return false, 0
		}
		color.Green.Printf("Offer from %s %s\n", data.CallerID, string(data.Metadata))
		answer, _ := json.Marshal(map[string]any{
			"callerID": data.CallerID,
			"signal":   map[string]string{"type": "probe-answer"},
		})
		if err := conn.WriteJSON(ws.Envelope{Event: ws.EventReturningSignal, Data: answer}); err != nil {
			log.Warn("Answer failed", "target", data.CallerID, "error", err)
		}

	case event.NameReceivingReturnedSignal:
		var data struct {
			ID string `json:"id"`
		}
		_ = json.Unmarshal(frame.Data, &data)
		color.Cyan.Printf("Handshake answered by %s\n", data.ID)

	case event.NameUserLeft:
		var id string
		_ = json.Unmarshal(frame.Data, &id)
		color.Yellow.Printf("%s left the room\n", id)

	default:
		log.Debug("Unhandled event", "event", frame.Event)
	}
	return false, 0
}

func printMembers(users []string) {
	if len(users) == 0 {
		color.Gray.Println("Room is empty, waiting for peers")
		return
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"#", "Connection"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	for i, id := range users {
		table.Append([]string{fmt.Sprint(i + 1), id})
	}
	table.Render()
}
