package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/matheus3301/pawchat/internal/app"
	"github.com/matheus3301/pawchat/internal/config"
	"github.com/matheus3301/pawchat/internal/session"
	"go.uber.org/fx"
)

func main() {
	dialogFlag := flag.String("dialog", "", "dialog id (overrides config default)")
	flag.Parse()

	cfg, err := config.Load(session.ConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: cannot read %s: %v\n", session.ConfigPath(), err)
		fmt.Fprintln(os.Stderr, "create it with server_url, viewer_id and session_cookie set")
		os.Exit(1)
	}

	dialogID := session.ResolveDialog(*dialogFlag, cfg)
	if err := session.ValidateDialogID(dialogID); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fxApp := fx.New(
		app.Module(app.Params{DialogID: dialogID, Config: cfg}),
	)

	fxApp.Run()
}
