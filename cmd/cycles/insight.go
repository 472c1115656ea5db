// ABOUTME: CLI command for pattern analysis through an external insight provider.
// ABOUTME: Without a provider it prints the request so any assistant can answer it.
package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/harperreed/cycles/internal/insight"
	"github.com/harperreed/cycles/internal/logger"
	"github.com/spf13/cobra"
)

var (
	insightCommand string
	insightPrompt  bool
)

var insightCmd = &cobra.Command{
	Use:   "insight [cycle|phase|pregnancy]",
	Short: "Analyze patterns with an external provider",
	Long: `Build an analysis request from your data and send it to a provider.

KINDS:

  cycle       Cycle health, symptom, and mood patterns (default in cycle mode)
  phase       What to expect in the current cycle phase
  pregnancy   Week-by-week guidance (default in pregnancy and postpartum mode)

PROVIDER:

  The provider is any command that reads the prompt on stdin and prints a JSON
  result. Set it with --command, "insight_command" in config, or
  CYCLES_INSIGHT_COMMAND. Without one, or with --prompt, the request is
  printed so you can paste it into an assistant.

EXAMPLES:

  cycles insight --command "llm -m gpt-4o-mini"
  cycles insight phase
  cycles insight --prompt > request.txt`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"cycle", "phase", "pregnancy"},
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := loadSnapshot(cmd.Context())
		if err != nil {
			return err
		}

		kind := ""
		if len(args) == 1 {
			kind = args[0]
		}

		var req insight.Request
		switch kind {
		case "cycle":
			req = insight.BuildCycleRequest(*snap, today())
		case "phase":
			req = insight.BuildPhaseRequest(*snap, today())
		case "pregnancy":
			r, ok := insight.BuildPregnancyRequest(*snap, today())
			if !ok {
				return fmt.Errorf("pregnancy insight needs pregnancy or postpartum tracking")
			}
			req = r
		case "":
			r, ok := insight.BuildPregnancyRequest(*snap, today())
			if !ok {
				r = insight.BuildCycleRequest(*snap, today())
			}
			req = r
		default:
			return fmt.Errorf("unknown insight kind: %s (use cycle, phase, or pregnancy)", kind)
		}

		command := cfg.InsightCommand
		if insightCommand != "" {
			command = insightCommand
		}
		provider := insight.NewCommandProvider(command)
		if insightPrompt || provider == nil {
			text, err := req.Text()
			if err != nil {
				return err
			}
			fmt.Println(text)
			return nil
		}

		res, err := insight.Analyze(cmd.Context(), provider, req)
		if err != nil {
			if errors.Is(err, insight.ErrProviderUnavailable) {
				return err
			}
			logger.Log.WithError(err).Warn("insight provider failed, showing fallback")
			res = insight.Fallback(req.Kind)
		}
		printResult(res)
		return nil
	},
}

func printResult(res *insight.Result) {
	color.New(color.Bold).Println(res.Summary)
	printGroups("", res.Insights, color.New(color.FgCyan))

	if len(res.Recommendations) > 0 {
		fmt.Println()
		color.New(color.FgGreen).Println("Recommendations")
		for _, r := range res.Recommendations {
			fmt.Printf("  • %s\n", r)
		}
	}
	if res.HasAlerts() {
		printGroups("Alert: ", res.Alerts, color.New(color.FgYellow))
	}
}

func printGroups(prefix string, groups map[string][]string, c *color.Color) {
	topics := make([]string, 0, len(groups))
	for t := range groups {
		topics = append(topics, t)
	}
	sort.Strings(topics)
	for _, t := range topics {
		if len(groups[t]) == 0 {
			continue
		}
		fmt.Println()
		c.Println(prefix + t)
		for _, item := range groups[t] {
			fmt.Printf("  • %s\n", item)
		}
	}
}

func init() {
	insightCmd.Flags().StringVar(&insightCommand, "command", "", "provider command line (reads prompt on stdin)")
	insightCmd.Flags().BoolVar(&insightPrompt, "prompt", false, "print the request instead of calling the provider")
	rootCmd.AddCommand(insightCmd)
}
