package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yanqian/aqi-search/internal/interface/view"
)

const promptLabel = "city> "

var quitWords = map[string]struct{}{"quit": {}, "exit": {}, ":q": {}}

// runPrompt reads one city per line until EOF or a quit word. Every line,
// blank ones included, is a submission.
func runPrompt(cmd *cobra.Command, sess *session) error {
	out := cmd.OutOrStdout()
	unsubscribe := sess.controller.Subscribe(sess.render(out))
	defer unsubscribe()

	if err := view.RenderText(out, view.Present(sess.controller.State(), sess.viewOpts), sess.textOpts); err != nil {
		return err
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, promptLabel)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := scanner.Text()
		if _, quit := quitWords[strings.ToLower(strings.TrimSpace(line))]; quit {
			return nil
		}
		if err := cmd.Context().Err(); err != nil {
			return err
		}
		sess.controller.Submit(cmd.Context(), line)
		fmt.Fprintln(out)
	}
}
