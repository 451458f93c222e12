// ABOUTME: Field prompts used by the interactive forms
// ABOUTME: Blank answers keep the default; optional numbers come back nil

package shell

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

func (s *Shell) ask(ctx context.Context, question, defaultVal string) (string, error) {
	prompt := fmt.Sprintf("  %s: ", question)
	if defaultVal != "" {
		prompt = fmt.Sprintf("  %s [%s]: ", question, defaultVal)
	}
	line, err := s.readLine(ctx, prompt)
	if err != nil {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return defaultVal, nil
	}
	return line, nil
}

func (s *Shell) askInt(ctx context.Context, question string) (*int, error) {
	answer, err := s.ask(ctx, question, "")
	if err != nil || answer == "" {
		return nil, err
	}
	n, err := strconv.Atoi(answer)
	if err != nil {
		color.New(color.FgRed).Fprintf(s.env.Out, "  %q is not a whole number\n", answer)
		return nil, fmt.Errorf("parsing %q: %w", answer, err)
	}
	return &n, nil
}

func (s *Shell) askFloat(ctx context.Context, question string) (*float64, error) {
	answer, err := s.ask(ctx, question, "")
	if err != nil || answer == "" {
		return nil, err
	}
	f, err := strconv.ParseFloat(strings.TrimPrefix(answer, "₹"), 64)
	if err != nil {
		color.New(color.FgRed).Fprintf(s.env.Out, "  %q is not a number\n", answer)
		return nil, fmt.Errorf("parsing %q: %w", answer, err)
	}
	return &f, nil
}
