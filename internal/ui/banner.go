package ui

import (
	"io"

	"github.com/pterm/pterm"
)

func PrintBanner(w io.Writer, version string) {
	logo := `
  __       _                  __   _ __
 / /______(_)___ _____ ____  / /__(_) /_
/ __/ ___/ / __ '/ __ '/ _ \/ //_/ / __/
/ /_/ /  / / /_/ / /_/ /  __/ ,< / / /_
\__/_/  /_/\__,_/\__, /\___/_/|_/_/\__/
                /____/
`
	pterm.Fprintln(w, pterm.FgCyan.Sprint(logo))
	pterm.Fprintln(w, pterm.DefaultCenter.Sprint(pterm.FgGray.Sprint(version+" - Offline Endpoint Triage")))

	box := pterm.DefaultBox.
		WithTitle(pterm.FgYellow.Sprint("READ-ONLY EVIDENCE COLLECTION")).
		WithTitleBottomCenter().
		WithRightPadding(2).
		WithLeftPadding(2).
		Sprint("This tool only observes and records host state.\nRun it only on machines you are authorized to examine.")
	pterm.Fprintln(w, box)
	pterm.Fprintln(w)
}
