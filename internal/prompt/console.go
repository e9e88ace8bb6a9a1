// Package prompt asks the user for categories on a terminal.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"fjacquet/budgetwiz/internal/apperror"
	"fjacquet/budgetwiz/internal/models"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Console reads answers line by line from in and writes questions to out.
type Console struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool

	date    *color.Color
	desc    *color.Color
	debit   *color.Color
	credit  *color.Color
	message *color.Color
}

// NewConsole returns a Console. When in is a file that is not a terminal
// every question fails with apperror.ErrNonInteractive, unless force is
// set. Other readers are always accepted.
func NewConsole(in io.Reader, out io.Writer, force bool) *Console {
	return &Console{
		in:          bufio.NewReader(in),
		out:         out,
		interactive: force || IsTerminal(in),
		date:        color.New(color.FgYellow),
		desc:        color.New(color.Bold),
		debit:       color.New(color.FgRed),
		credit:      color.New(color.FgGreen),
		message:     color.New(color.FgCyan),
	}
}

// IsTerminal reports whether r is usable for interactive questions.
func IsTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return true
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Interactive reports whether questions can be asked.
func (c *Console) Interactive() bool {
	return c.interactive
}

// ResolveCategory shows the transaction and reads a category label.
func (c *Console) ResolveCategory(ctx context.Context, tx models.Transaction) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !c.interactive {
		return "", apperror.ErrNonInteractive
	}

	amount := c.debit
	if tx.Amount.IsPositive() {
		amount = c.credit
	}
	fmt.Fprintln(c.out)
	c.date.Fprintf(c.out, "%s ", tx.FormattedDate())
	c.desc.Fprintf(c.out, "%s ", tx.Description)
	amount.Fprintf(c.out, "%s\n", tx.Amount.StringFixed(2))

	return c.ask(fmt.Sprintf("Enter category for [%s]: ", tx.Description))
}

// Ask writes question and returns the trimmed answer line.
func (c *Console) Ask(question string) (string, error) {
	if !c.interactive {
		return "", apperror.ErrNonInteractive
	}
	return c.ask(question)
}

// Println writes an informational line.
func (c *Console) Println(msg string) {
	c.message.Fprintln(c.out, msg)
}

func (c *Console) ask(question string) (string, error) {
	fmt.Fprint(c.out, question)

	line, err := c.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", apperror.ErrNonInteractive
		}
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}
