package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ocontest/ocontest-cli/internal/client"
	"github.com/ocontest/ocontest-cli/internal/guard"
	"github.com/ocontest/ocontest-cli/internal/session"
)

type Globals struct {
	Debug    bool
	Version  string
	Server   string
	StateDir string
}

// newSession wires up the session manager and the authenticated API
// client. The manager gets its own bare client for the auth endpoints,
// so a rejected refresh can never trigger another refresh.
func (g *Globals) newSession() (*session.Manager, *client.Client, error) {
	store, err := session.NewStore(g.StateDir)
	if err != nil {
		return nil, nil, err
	}

	cfg := client.Config{BaseURL: g.Server, Debug: g.Debug}

	bare, err := client.New(cfg)
	if err != nil {
		return nil, nil, err
	}

	manager := session.NewManager(store, bare)
	manager.Hydrate()

	api, err := client.New(cfg,
		client.WithTokenSource(manager),
		client.WithRefresher(manager),
		client.WithCache(filepath.Join(store.BaseDir(), "httpcache")),
	)
	if err != nil {
		return nil, nil, err
	}

	return manager, api, nil
}

// requireRole translates the guard's verdict for a protected command
// into CLI terms.
func requireRole(manager *session.Manager, command string, roles ...string) error {
	decision := guard.Evaluate(manager.Snapshot(), command, roles...)

	switch decision.Action {
	case guard.ActionRender:
		return nil
	case guard.ActionRedirectLogin:
		return fmt.Errorf("not logged in: run 'ocontest-cli login' first")
	case guard.ActionRedirect:
		return fmt.Errorf("this command is for %s accounts; your dashboard is %s",
			strings.Join(roles, " or "), decision.Target)
	default:
		return fmt.Errorf("session not ready")
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
