package cli

import (
	"context"
	"fmt"
)

func (a *App) getStatus() string {
	if name := a.currentUserName(); name != "" {
		return fmt.Sprintf("(%s)", name)
	}
	return ""
}

// Root serves the REPL on the app's reader. It blocks until exit or EOF.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to camkeeper (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}
