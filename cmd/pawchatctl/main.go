package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/matheus3301/pawchat/internal/api"
	"github.com/matheus3301/pawchat/internal/bus"
	"github.com/matheus3301/pawchat/internal/config"
	"github.com/matheus3301/pawchat/internal/conn"
	"github.com/matheus3301/pawchat/internal/geo"
	"github.com/matheus3301/pawchat/internal/protocol"
	"github.com/matheus3301/pawchat/internal/session"
	"github.com/matheus3301/pawchat/internal/store"
	"github.com/matheus3301/pawchat/internal/upload"
	"github.com/matheus3301/pawchat/internal/voice"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

func main() {
	dialogFlag := flag.String("dialog", "", "dialog id (overrides config default)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	flag.Parse()

	cfg, err := config.Load(session.ConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: cannot read %s: %v\n", session.ConfigPath(), err)
		os.Exit(1)
	}

	dialogID := session.ResolveDialog(*dialogFlag, cfg)
	if err := session.ValidateDialogID(dialogID); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch args[0] {
	case "send":
		cmdSend(ctx, cfg, dialogID, strings.Join(args[1:], " "))
	case "send-location":
		cmdSendLocation(ctx, cfg, dialogID, args[1:])
	case "send-voice":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: pawchatctl send-voice <audio-file>")
			os.Exit(1)
		}
		cmdSendVoice(ctx, cfg, dialogID, args[1])
	case "send-file":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: pawchatctl send-file <path>...")
			os.Exit(1)
		}
		cmdSendFile(ctx, cfg, dialogID, args[1:])
	case "history":
		cmdHistory(dialogID, *jsonFlag)
	case "watch":
		cmdWatch(cfg, dialogID, *jsonFlag)
	case "invite":
		cmdInvite(cfg, dialogID)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: pawchatctl [--dialog <id>] [--json] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  send <text>               Send a text message")
	fmt.Fprintln(os.Stderr, "  send-location [lat lon]   Share a coordinate (runs the locator if omitted)")
	fmt.Fprintln(os.Stderr, "  send-voice <audio-file>   Send an encoded audio file as a voice note")
	fmt.Fprintln(os.Stderr, "  send-file <path>...       Upload attachments")
	fmt.Fprintln(os.Stderr, "  history                   Print the local message cache")
	fmt.Fprintln(os.Stderr, "  watch                     Follow dialog events and print them")
	fmt.Fprintln(os.Stderr, "  invite                    Print the dialog URL as a QR code")
}

func newClient(ctx context.Context, cfg *config.Config, dialogID string) *api.Client {
	client, err := api.New(cfg.ServerURL, cfg.SessionCookie)
	if err != nil {
		fatal(err)
	}
	if err := client.FetchCSRFToken(ctx, dialogID); err != nil {
		fatal(err)
	}
	return client
}

func cmdSend(ctx context.Context, cfg *config.Config, dialogID, text string) {
	if strings.TrimSpace(text) == "" {
		fmt.Fprintln(os.Stderr, "usage: pawchatctl send <text>")
		os.Exit(1)
	}
	client := newClient(ctx, cfg, dialogID)
	if err := client.SendText(ctx, dialogID, text); err != nil {
		fatal(err)
	}
	fmt.Println("sent")
}

func cmdSendLocation(ctx context.Context, cfg *config.Config, dialogID string, args []string) {
	var lat, lon float64
	var err error

	switch len(args) {
	case 2:
		if lat, err = strconv.ParseFloat(args[0], 64); err != nil {
			fatal(fmt.Errorf("latitude %q: %w", args[0], err))
		}
		if lon, err = strconv.ParseFloat(args[1], 64); err != nil {
			fatal(fmt.Errorf("longitude %q: %w", args[1], err))
		}
	case 0:
		src := &geo.CommandSource{Command: strings.Fields(cfg.LocatorCommand)}
		pos, err := src.CurrentPosition(ctx)
		if err != nil {
			fatal(err)
		}
		lat, lon = pos.Latitude, pos.Longitude
	default:
		fmt.Fprintln(os.Stderr, "usage: pawchatctl send-location [lat lon]")
		os.Exit(1)
	}

	client := newClient(ctx, cfg, dialogID)
	if err := client.SendLocation(ctx, dialogID, lat, lon); err != nil {
		fatal(err)
	}
	fmt.Printf("sent %v,%v\n", lat, lon)
}

func cmdSendVoice(ctx context.Context, cfg *config.Config, dialogID, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fatal(err)
	}
	clip := voice.Clip{
		Data:     data,
		MIMEType: "audio/mpeg",
		Duration: voice.EstimateDuration(len(data)),
	}

	client := newClient(ctx, cfg, dialogID)
	if err := client.SendVoice(ctx, dialogID, clip); err != nil {
		fatal(err)
	}
	fmt.Printf("sent %d bytes, ~%ds\n", len(data), clip.Duration)
}

func cmdSendFile(ctx context.Context, cfg *config.Config, dialogID string, paths []string) {
	client := newClient(ctx, cfg, dialogID)
	for _, p := range paths {
		info, err := upload.Stat(p)
		if err != nil {
			fatal(err)
		}
		if err := upload.Validate(info); err != nil {
			fatal(err)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			fatal(err)
		}
		if err := client.SendFile(ctx, dialogID, info, data); err != nil {
			fatal(err)
		}
		fmt.Printf("sent %s (%d bytes)\n", info.Name, info.Size)
	}
}

func cmdHistory(dialogID string, jsonOut bool) {
	db, err := store.Open(session.HistoryDBPath(dialogID))
	if err != nil {
		fatal(err)
	}
	defer func() { _ = db.Close() }()
	if _, err := db.Migrate(); err != nil {
		fatal(err)
	}

	msgs, err := db.ListMessages(dialogID, 0)
	if err != nil {
		fatal(err)
	}
	if jsonOut {
		outputJSON(msgs)
		return
	}
	for _, m := range msgs {
		dir := "<-"
		if m.Outgoing {
			dir = "->"
		}
		fmt.Printf("%s %s [%d] %s\n", m.CreatedAt, dir, m.SenderID, m.Content)
	}
}

func cmdWatch(cfg *config.Config, dialogID string, jsonOut bool) {
	ctx := context.Background()
	client := newClient(ctx, cfg, dialogID)

	c, err := conn.Dial(ctx, client.WebSocketURL(dialogID), client.SessionCookies(), bus.New(), zap.NewNop())
	if err != nil {
		fatal(err)
	}
	defer func() { _ = c.Close() }()

	c.ReadLoop(func(data []byte) {
		if jsonOut {
			fmt.Println(string(data))
			return
		}
		evt, err := protocol.DecodeInbound(data)
		if err != nil {
			return
		}
		switch e := evt.(type) {
		case protocol.NewMessage:
			fmt.Printf("message [%d] %s\n", e.Message.SenderID, e.Message.Content)
		case protocol.Typing:
			fmt.Printf("typing %s=%v\n", e.User.Username, e.User.Typing)
		case protocol.UserStatus:
			fmt.Printf("online=%v\n", e.User.IsOnline)
		case protocol.MessageRead:
			fmt.Printf("read %d\n", e.MessageID)
		}
	})
}

func cmdInvite(cfg *config.Config, dialogID string) {
	dialogURL := strings.TrimSuffix(cfg.ServerURL, "/") + "/chat/" + dialogID + "/"
	qr, err := qrcode.New(dialogURL, qrcode.Medium)
	if err != nil {
		fatal(err)
	}
	fmt.Println(dialogURL)
	fmt.Print(qr.ToSmallString(false))
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
