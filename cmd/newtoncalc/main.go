// Command newtoncalc iterates Newton's method on rational complex functions
// from the command line, an interactive REPL or an HTTP server.
package main

import (
	"context"
	"os"

	"github.com/agbru/newtoncalc/internal/app"
	apperrors "github.com/agbru/newtoncalc/internal/errors"
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	if app.HasVersionFlag(args[1:]) {
		app.PrintVersion(os.Stdout)
		return apperrors.ExitSuccess
	}

	application, err := app.New(args, os.Stderr)
	if err != nil {
		if app.IsHelpError(err) {
			return apperrors.ExitSuccess
		}
		return apperrors.ExitErrorConfig
	}
	return application.Run(context.Background(), os.Stdout)
}
