// Package terminal is the text front end of the client: modal dialogs on a console,
// screen rendering and the interactive shell.
package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/duynhne/registro-facial/internal/core/domain"
)

// Console reads answers from in and writes dialogs to out. A single goroutine owns
// in, so a read abandoned through its context does not lose the next line.
type Console struct {
	out io.Writer

	in    *bufio.Scanner
	once  sync.Once
	lines chan string
	err   error
}

// NewConsole creates a console.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewScanner(in), out: out, lines: make(chan string)}
}

func (c *Console) start() {
	c.once.Do(func() {
		go func() {
			for c.in.Scan() {
				c.lines <- c.in.Text()
			}
			c.err = c.in.Err()
			if c.err == nil {
				c.err = io.EOF
			}
			close(c.lines)
		}()
	})
}

// ReadLine prints prompt and returns the next input line without its newline.
func (c *Console) ReadLine(ctx context.Context, prompt string) (string, error) {
	if prompt != "" {
		fmt.Fprint(c.out, prompt)
	}
	c.start()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-c.lines:
		if !ok {
			return "", c.err
		}
		return line, nil
	}
}

// Alert implements screens.Alerter.
func (c *Console) Alert(title, message string) {
	fmt.Fprintf(c.out, "\n== %s ==\n%s\n\n", title, message)
}

// Confirm implements screens.Confirmer. Only the confirm option, by number or label,
// confirms; anything else cancels.
func (c *Console) Confirm(ctx context.Context, title, message, cancelLabel, confirmLabel string) (bool, error) {
	choice, err := c.Choose(ctx, title, message, []string{cancelLabel, confirmLabel})
	if err != nil {
		return false, err
	}
	return choice == 1, nil
}

// Choose implements media.Prompter. An empty answer or one that matches no option
// cancels the dialog with domain.ErrCancelled.
func (c *Console) Choose(ctx context.Context, title, message string, options []string) (int, error) {
	fmt.Fprintf(c.out, "\n== %s ==\n%s\n", title, message)
	for i, opt := range options {
		fmt.Fprintf(c.out, "  %d) %s\n", i+1, opt)
	}

	line, err := c.ReadLine(ctx, "> ")
	if err != nil {
		return -1, err
	}
	return matchOption(line, options)
}

func matchOption(answer string, options []string) (int, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return -1, domain.ErrCancelled
	}
	if n, err := strconv.Atoi(answer); err == nil {
		if n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		return -1, domain.ErrCancelled
	}
	for i, opt := range options {
		if strings.EqualFold(opt, answer) {
			return i, nil
		}
	}
	return -1, domain.ErrCancelled
}

// AutoConfirm answers every confirmation with yes. Used by non-interactive commands
// that were given --yes.
type AutoConfirm struct{}

// Confirm implements screens.Confirmer.
func (AutoConfirm) Confirm(context.Context, string, string, string, string) (bool, error) {
	return true, nil
}
