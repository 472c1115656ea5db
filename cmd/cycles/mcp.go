// ABOUTME: CLI command for starting the MCP server.
// ABOUTME: Runs a stdio-based MCP server for AI assistant integration.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/cycles/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

MCP lets an assistant read and update your cycle and pregnancy data through
a standardized protocol. The server communicates via stdin/stdout. The
assistant can also read cycles://insight-context and provide the pattern
analysis itself.

CLAUDE DESKTOP CONFIGURATION:

  {
    "mcpServers": {
      "cycles": {
        "command": "cycles",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  log_day                Log flow, symptoms, mood, temperature, notes
  add_cycle              Add a cycle by start (and end) date
  list_cycles            List cycles with lengths
  get_predictions        Next period, ovulation, fertile window, phase
  get_day_status         Logged and predicted status of a day
  update_settings        Change lengths, unit, reminder toggles
  get_reminders          Reminders due today
  start_pregnancy        Start pregnancy tracking from the LMP
  end_pregnancy          Record the birth
  add_pregnancy_symptom  Log a pregnancy or postpartum symptom
  add_measurement        Log weight and blood pressure
  add_appointment        Schedule an appointment
  complete_appointment   Mark an appointment done
  add_postpartum_note    Add a recovery journal note
  pregnancy_status       Week, trimester, due date
  convert_temperature    Convert between F and C

AVAILABLE RESOURCES:

  cycles://summary          Mode, phase, predictions, recent cycles
  cycles://calendar         Day statuses for the current month
  cycles://insight-context  Analysis prompt and data`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(store)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
