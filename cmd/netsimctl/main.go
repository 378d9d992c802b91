// Command netsimctl is the interactive front-end for the simulator: a
// terminal UI wiring the vendor and host shells to a small fixed demo
// topology, with the simulator's netlog.Bus events rendered alongside
// shell output in one scrollable transcript.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	logPath := flag.String("log-file", "netsimctl.log", "file to write structured logs to (kept off stderr so it doesn't corrupt the TUI)")
	flag.Parse()

	logFile, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "netsimctl: failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	handler := slog.NewTextHandler(logFile, nil)

	topo := buildDemoTopology(handler)
	m := newModel(topo)

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "netsimctl: TUI error: %v\n", err)
		os.Exit(1)
	}
}
