// Package console provides a simple CLI command source that reads lines
// from an io.Reader (defaulting to os.Stdin) and dispatches them through
// the cmd registry.
package console

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	prompt "github.com/c-bata/go-prompt"

	"github.com/briarrock/terrain/server/cmd"
)

const (
	defaultPromptPrefix = "> "
	maxHistoryEntries   = 128
)

// Console reads commands from an io.Reader and executes them against the
// global cmd registry, logging whatever each command produces.
type Console struct {
	log     *slog.Logger
	reader  io.Reader
	history []string
}

// New returns a Console that reads from os.Stdin and writes command
// output through log.
func New(log *slog.Logger) *Console {
	if log == nil {
		log = slog.Default()
	}
	return &Console{log: log, reader: os.Stdin}
}

// WithReader overrides the input source. It enables testing the console
// without relying on os.Stdin.
func (c *Console) WithReader(r io.Reader) *Console {
	if r != nil {
		c.reader = r
	}
	return c
}

// Run starts consuming commands. It blocks until ctx is cancelled or the
// underlying reader reaches EOF.
func (c *Console) Run(ctx context.Context) {
	if c.reader != os.Stdin {
		c.runScanner(ctx)
		return
	}
	c.runInteractive(ctx)
}

func (c *Console) runScanner(ctx context.Context) {
	scanner := bufio.NewScanner(c.reader)
	src := consoleSource{}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				c.log.Error("console input error", "err", err)
			}
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		c.execute(line, src)
	}
}

func (c *Console) runInteractive(ctx context.Context) {
	src := consoleSource{}
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		line := prompt.Input(defaultPromptPrefix, c.complete,
			prompt.OptionTitle("terrain console"),
			prompt.OptionHistory(c.history),
			prompt.OptionPrefix(defaultPromptPrefix),
			prompt.OptionCompletionOnDown(),
			prompt.OptionMaxSuggestion(12),
		)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		c.execute(line, src)
	}
}

func (c *Console) execute(line string, src consoleSource) {
	input := strings.TrimSpace(line)
	if input == "" {
		return
	}
	if !strings.HasPrefix(input, "/") {
		input = "/" + input
	}

	c.history = append(c.history, input)
	if len(c.history) > maxHistoryEntries {
		c.history = c.history[len(c.history)-maxHistoryEntries:]
	}

	out := cmd.ExecuteLine(src, input)
	for _, msg := range out.Messages() {
		c.log.Info(msg)
	}
	for _, err := range out.Errors() {
		c.log.Error(err.Error())
	}
}

// complete only suggests command names: this console's command set takes
// plain numeric arguments, so there's nothing useful to complete past the
// first word.
func (c *Console) complete(doc prompt.Document) []prompt.Suggest {
	textBefore := doc.TextBeforeCursor()
	word := strings.TrimPrefix(doc.GetWordBeforeCursor(), "/")
	if strings.Contains(strings.TrimSpace(textBefore), " ") {
		return nil
	}

	commands := cmd.Commands()
	suggestions := make([]prompt.Suggest, 0, len(commands))
	for _, command := range commands {
		usage := command.Usage()
		if usage == "" {
			usage = "/" + command.Name()
		}
		suggestions = append(suggestions, prompt.Suggest{Text: command.Name(), Description: usage})
	}
	sort.Slice(suggestions, func(i, j int) bool { return suggestions[i].Text < suggestions[j].Text })
	return prompt.FilterHasPrefix(suggestions, word, true)
}

type consoleSource struct{}

func (consoleSource) Name() string { return "console" }
