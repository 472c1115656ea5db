// ABOUTME: Shared CLI helpers for loading and saving the snapshot and formatting output.
// ABOUTME: Every mutating command goes through updateSnapshot so each run is one load-modify-save.
package main

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/harperreed/cycles/internal/models"
	"github.com/harperreed/cycles/internal/storage"
)

// now is the CLI clock; tests pin it.
var now = time.Now

func today() models.Date {
	return models.DateOf(now())
}

// dateArg parses args[i] when present, defaulting to today.
func dateArg(args []string, i int) (models.Date, error) {
	if len(args) <= i || args[i] == "" {
		return today(), nil
	}
	return models.ParseDate(args[i])
}

func loadSnapshot(ctx context.Context) (*models.Snapshot, error) {
	snap, err := storage.LoadOrNew(ctx, store)
	if err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}
	return snap, nil
}

// updateSnapshot loads the snapshot, applies fn, and saves the result.
// Nothing is saved when fn fails.
func updateSnapshot(ctx context.Context, fn func(models.Snapshot) (models.Snapshot, error)) (models.Snapshot, error) {
	snap, err := loadSnapshot(ctx)
	if err != nil {
		return models.Snapshot{}, err
	}
	next, err := fn(*snap)
	if err != nil {
		return models.Snapshot{}, err
	}
	next.UpdatedAt = now().UTC()
	if err := store.Save(ctx, &next); err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to save data: %w", err)
	}
	return next, nil
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}

func faint(s string) string {
	return color.New(color.Faint).Sprint(s)
}

// truncate cuts on runes so multibyte notes never split mid-character.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

func padRight(s string, length int) string {
	n := utf8.RuneCountInString(s)
	if n >= length {
		return s
	}
	return s + strings.Repeat(" ", length-n)
}

// splitList splits a comma-separated flag value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func notesText(n *string) string {
	if n == nil || *n == "" {
		return ""
	}
	return faint(fmt.Sprintf(" (%s)", truncate(*n, 40)))
}
