// Package report renders a triage report and writes it to disk.
package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/K0NGR3SS/triagekit/internal/models"
)

// Paths are the files a report was written to.
type Paths struct {
	JSON string
	Text string
	// Compressed is set only when a zstd copy of the JSON was requested.
	Compressed string
}

func RenderJSON(r *models.Report) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return append(data, '\n'), nil
}

// RenderText produces the operator summary. It reads only from r and paths so
// it always agrees with the JSON written alongside it.
func RenderText(r *models.Report, paths Paths) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line("IT Security Triage Report - %s - %s", sanitizeTerminal(r.Host.Hostname), r.Timestamp.Format(time.RFC3339))
	line("%s", strings.Repeat("=", 72))
	line("OS: %s", sanitizeTerminal(r.Host.Platform))
	line("Boot time: %s", r.Host.BootTime)
	line("")

	line("IP Addresses:")
	for _, ip := range r.Network.Interfaces {
		line("  - %s: %s (%s)", sanitizeTerminal(ip.InterfaceName), ip.IPAddress, ip.Netmask)
	}
	line("")

	line("Top Processes (by memory):")
	for _, p := range r.Processes {
		line("  - %s (PID %d) user=%s rss=%d", sanitizeTerminal(p.Name), p.PID, sanitizeTerminal(p.Username), p.ResidentMemoryBytes)
	}
	line("")

	if h := r.Hashes; h != nil {
		line("File Hashes:")
		if h.File != "" {
			line("  file: %s", sanitizeTerminal(h.File))
		}
		if h.MD5 != "" {
			line("  md5: %s", h.MD5)
		}
		if h.SHA256 != "" {
			line("  sha256: %s", h.SHA256)
		}
		if h.Error != "" {
			line("  error: %s", sanitizeTerminal(h.Error))
		}
		line("")
	}

	line("Security Notes:")
	for _, n := range r.SecurityNotes {
		line("  - %s", sanitizeTerminal(n))
	}
	line("")
	line("Saved JSON: %s", paths.JSON)
	b.WriteString("Saved TXT : " + paths.Text)
	return b.String()
}
