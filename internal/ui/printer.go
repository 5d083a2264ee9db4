package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/K0NGR3SS/triagekit/internal/hashing"
	"github.com/K0NGR3SS/triagekit/internal/ioc"
	"github.com/pterm/pterm"
)

// IOCReport is what the ioc command shows for one checked file.
type IOCReport struct {
	CheckedAt time.Time
	File      string
	MD5       string
	SHA256    string
	Verdict   ioc.Verdict
}

var matchLabels = map[string]string{
	hashing.MD5:    "MD5",
	hashing.SHA1:   "SHA1",
	hashing.SHA256: "SHA256",
}

func PrintIOCReport(w io.Writer, r IOCReport) {
	fmt.Fprintf(w, "[%s] IOC Check\n", r.CheckedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "File: %s\n", r.File)
	fmt.Fprintf(w, "MD5: %s\n", r.MD5)
	fmt.Fprintf(w, "SHA256: %s\n", r.SHA256)
	fmt.Fprintln(w, strings.Repeat("-", 60))

	for _, algo := range r.Verdict.Matches {
		fmt.Fprintf(w, "%s %s hash is in IOC list\n", pterm.FgRed.Sprint("[MATCH]"), matchLabels[algo])
	}
	if !r.Verdict.Hit() {
		fmt.Fprintf(w, "%s No hash match found in IOC list (offline).\n", pterm.FgGreen.Sprint("[OK]"))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Note: For production, combine with approved AV/EDR tooling and vendor threat intel.")
}

func StartSpinner(text string) *pterm.SpinnerPrinter {
	spinner, _ := pterm.DefaultSpinner.
		WithWriter(os.Stderr).
		WithRemoveWhenDone(true).
		Start(text)
	return spinner
}

// UpdateSpinner changes the spinner text; a nil spinner is ignored so callers
// can run without a terminal.
func UpdateSpinner(spinner *pterm.SpinnerPrinter, text string) {
	if spinner == nil {
		return
	}
	spinner.UpdateText(text)
}

func StopSpinner(spinner *pterm.SpinnerPrinter) {
	if spinner == nil {
		return
	}
	_ = spinner.Stop()
}
