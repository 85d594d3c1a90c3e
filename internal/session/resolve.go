package session

import "github.com/matheus3301/pawchat/internal/config"

// ResolveDialog determines the dialog to open using precedence:
// 1. flagOverride (-dialog flag)
// 2. config.toml default_dialog
func ResolveDialog(flagOverride string, cfg *config.Config) string {
	if flagOverride != "" {
		return flagOverride
	}
	if cfg != nil {
		return cfg.DefaultDialog
	}
	return ""
}
