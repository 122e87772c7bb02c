// Package llm generates the decoy answers players try to spot. Generation
// may take seconds, so callers always invoke it out-of-band and degrade to
// a placeholder rather than abort a round.
package llm

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// Generator produces the decoy's answer for a prompt
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ExecGenerator shells out to a llama.cpp style binary
type ExecGenerator struct {
	ExecPath  string
	ModelPath string
	MaxTokens int
	Stop      []string
}

// NewExecGenerator creates a generator invoking the given binary and model
func NewExecGenerator(execPath, modelPath string, maxTokens int) *ExecGenerator {
	return &ExecGenerator{
		ExecPath:  execPath,
		ModelPath: modelPath,
		MaxTokens: maxTokens,
		Stop:      []string{"\n"},
	}
}

// Generate runs one completion and returns the trimmed output
func (g *ExecGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := []string{
		"-m", g.ModelPath,
		"-n", strconv.Itoa(g.MaxTokens),
		"-p", prompt,
	}
	for _, stop := range g.Stop {
		args = append(args, "-r", stop)
	}

	out, err := exec.CommandContext(ctx, g.ExecPath, args...).Output()
	if err != nil {
		return "", fmt.Errorf("llm exec: %w", err)
	}

	response := strings.TrimSpace(string(out))
	// The binary echoes the prompt before the completion
	response = strings.TrimSpace(strings.TrimPrefix(response, strings.TrimSpace(prompt)))
	if response == "" {
		return "", fmt.Errorf("llm exec: empty completion")
	}
	return response, nil
}

// StaticGenerator cycles through canned responses. Used when no model is
// configured, and in tests.
type StaticGenerator struct {
	responses []string
	next      int
	mu        sync.Mutex
}

// NewStaticGenerator creates a generator over the given responses, or a
// built-in set when none are supplied
func NewStaticGenerator(responses ...string) *StaticGenerator {
	if len(responses) == 0 {
		responses = defaultResponses
	}
	return &StaticGenerator{responses: responses}
}

// Generate returns the next canned response
func (g *StaticGenerator) Generate(_ context.Context, _ string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	response := g.responses[g.next%len(g.responses)]
	g.next++
	return response, nil
}

// Answers vague enough to pass for any prompt
var defaultResponses = []string{
	"honestly, it depends on the day",
	"probably pizza, if I'm being honest",
	"I'd rather not say in public",
	"whatever my friends are doing",
	"something I saw on the internet once",
	"a long nap, no contest",
	"my neighbor's dog, long story",
	"the same thing as last time",
	"anything but mondays",
	"I asked my mom and she agreed",
}
