// Package display renders popup cards in a terminal for the headless agent.
package display

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/trustflow/trustflow-backend/internal/popup"
)

const (
	separator      = " • "
	defaultWidth   = 72
	maxContentRune = 160
)

// TerminalFormatter formats popup cards as plain text blocks.
type TerminalFormatter struct {
	Width int
}

func NewTerminalFormatter() *TerminalFormatter {
	return &TerminalFormatter{Width: defaultWidth}
}

// FormatCard renders one card:
//
//	[NEW] Ada Lovelace ★★★★★
//	  "Loved it"
//	  Verified Customer • bottom-left
func (f *TerminalFormatter) FormatCard(card popup.Card) string {
	var lines []string

	header := card.Name + " " + strings.Repeat("★", card.Stars)
	if card.Priority {
		header = "[NEW] " + header
	}
	lines = append(lines, header)

	if content := strings.TrimSpace(card.Content); content != "" {
		lines = append(lines, "  \""+f.TruncateText(content, maxContentRune)+"\"")
	}

	meta := []string{card.Message}
	if card.Position != "" {
		meta = append(meta, card.Position)
	}
	lines = append(lines, "  "+strings.Join(meta, separator))

	return f.frame(lines)
}

// FormatHide renders the dismissal line for a card.
func (f *TerminalFormatter) FormatHide(card popup.Card) string {
	return fmt.Sprintf("  (hidden %s)\n", card.Name)
}

func (f *TerminalFormatter) frame(lines []string) string {
	width := f.Width
	if width <= 0 {
		width = defaultWidth
	}
	rule := strings.Repeat("─", width)
	return rule + "\n" + strings.Join(lines, "\n") + "\n" + rule + "\n"
}

// TruncateText shortens text to maxLen runes, adding "..." when cut.
func (f *TerminalFormatter) TruncateText(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return "..."
	}
	return string(runes[:maxLen-3]) + "..."
}

// TerminalSink is a popup.Sink printing cards to a writer. It is alive until
// Close is called.
type TerminalSink struct {
	mu     sync.Mutex
	out    io.Writer
	format *TerminalFormatter
	closed bool
}

func NewTerminalSink(out io.Writer) *TerminalSink {
	return &TerminalSink{out: out, format: NewTerminalFormatter()}
}

func (s *TerminalSink) Alive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

func (s *TerminalSink) Show(card popup.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("terminal sink closed")
	}
	_, err := io.WriteString(s.out, s.format.FormatCard(card))
	return err
}

func (s *TerminalSink) Hide(card popup.Card) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	_, _ = io.WriteString(s.out, s.format.FormatHide(card))
}

// Notice prints an out-of-band status line, e.g. pause toggles.
func (s *TerminalSink) Notice(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	_, _ = fmt.Fprintf(s.out, "» %s\n", msg)
}

func (s *TerminalSink) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}
