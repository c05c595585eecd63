package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// ProfileCompleter returns a ShellCompleteFunc that suggests saved
// preference profiles. When the last typed argument starts with "-" it
// falls back to the default flag completion behavior.
func ProfileCompleter(app *App) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if args := cmd.Args(); args.Present() {
			last := args.Slice()[args.Len()-1]
			if len(last) > 0 && last[0] == '-' {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
		}

		if app == nil || app.Prefs == nil {
			return
		}
		profiles, err := app.Prefs.Profiles(ctx)
		if err != nil {
			return
		}

		w := cmd.Root().Writer
		for _, name := range profiles {
			_, _ = fmt.Fprintln(w, name)
		}
	}
}
