// ABOUTME: Command-backed insight provider that pipes the prompt to an external program.
// ABOUTME: Any CLI that reads a prompt on stdin and prints JSON (an LLM client, a script) can serve.
package insight

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/harperreed/cycles/internal/logger"
	"github.com/harperreed/cycles/internal/models"
)

// CommandProvider runs Name with Args, writes the prompt to stdin, and
// parses stdout with ParseResult.
type CommandProvider struct {
	Name string
	Args []string
}

// NewCommandProvider splits a command line on whitespace. It returns nil
// for an empty command line.
func NewCommandProvider(commandLine string) *CommandProvider {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return nil
	}
	return &CommandProvider{Name: fields[0], Args: fields[1:]}
}

// Analyze implements Provider.
func (c *CommandProvider) Analyze(ctx context.Context, req Request) (*Result, error) {
	prompt, err := req.Text()
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Stdin = strings.NewReader(prompt)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Log.WithField("command", c.Name).Debug("running insight provider")
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("run %s: %w: %s", c.Name, err, strings.TrimSpace(stderr.String()))
	}
	return ParseResult(stdout.String())
}

func formatTemperature(t models.Temperature) string {
	return fmt.Sprintf("%.1f°%s", models.RoundForDisplay(t.Value), t.Unit)
}

func formatBP(bp models.BloodPressure) string {
	return fmt.Sprintf("%d/%d", bp.Systolic, bp.Diastolic)
}
