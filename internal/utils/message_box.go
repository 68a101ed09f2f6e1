package utils

import (
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// MessageType defines the type of message box to render.
type MessageType int

const (
	InfoMessage MessageType = iota
	SuccessMessage
	WarningMessage
	ErrorMessage
)

var messageStyles = map[MessageType]struct {
	color  lipgloss.Color
	prefix string
}{
	InfoMessage:    {lipgloss.Color("86"), "ℹ"},
	SuccessMessage: {lipgloss.Color("42"), "✓"},
	WarningMessage: {lipgloss.Color("178"), "⚠"},
	ErrorMessage:   {lipgloss.Color("196"), "✗"},
}

// Box is a builder for creating formatted message boxes.
type Box struct {
	messageType MessageType
	title       string
	content     []string
	width       int
}

// NewBox creates a message box sized to the terminal.
func NewBox(messageType MessageType, title string) *Box {
	return &Box{
		messageType: messageType,
		title:       title,
		width:       getTerminalWidth() - 8,
	}
}

// Width overrides the maximum outer width of the box.
func (b *Box) Width(width int) *Box {
	b.width = width
	return b
}

// AddLine adds a line of text to the message box content.
func (b *Box) AddLine(text string) *Box {
	b.content = append(b.content, text)
	return b
}

// AddBullet adds a bulleted line to the message box content.
func (b *Box) AddBullet(text string) *Box {
	b.content = append(b.content, "• "+text)
	return b
}

// AddKeyValue adds a "key: value" line.
func (b *Box) AddKeyValue(key, value string) *Box {
	b.content = append(b.content, key+": "+value)
	return b
}

// Render builds and returns the formatted message box as a string.
func (b *Box) Render() string {
	ms, ok := messageStyles[b.messageType]
	if !ok {
		ms = messageStyles[InfoMessage]
	}

	// border (2) and horizontal padding (2)
	contentWidth := b.width - 4
	if contentWidth < 20 {
		contentWidth = 20
	}

	header := lipgloss.NewStyle().Foreground(ms.color).Bold(true).Render(ms.prefix + " " + b.title)
	lines := []string{header}
	for _, line := range b.content {
		lines = append(lines, wrapText(line, contentWidth)...)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ms.color).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

func render(t MessageType, title string, lines []string) string {
	box := NewBox(t, title)
	for _, line := range lines {
		box.AddLine(line)
	}
	return box.Render()
}

func Info(title string, lines ...string) string {
	return render(InfoMessage, title, lines)
}

func Success(title string, lines ...string) string {
	return render(SuccessMessage, title, lines)
}

func Warning(title string, lines ...string) string {
	return render(WarningMessage, title, lines)
}

func Error(title string, lines ...string) string {
	return render(ErrorMessage, title, lines)
}

// getTerminalWidth returns the terminal width or defaults to 80 if unable to detect.
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// wrapText wraps text on word boundaries to fit within maxWidth runes.
// Words longer than maxWidth are kept whole.
func wrapText(text string, maxWidth int) []string {
	if utf8.RuneCountInString(text) <= maxWidth {
		return []string{text}
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := words[0]
	currentWidth := utf8.RuneCountInString(current)

	for _, word := range words[1:] {
		wordWidth := utf8.RuneCountInString(word)
		if currentWidth+wordWidth+1 <= maxWidth {
			current += " " + word
			currentWidth += wordWidth + 1
			continue
		}
		lines = append(lines, current)
		current = word
		currentWidth = wordWidth
	}
	return append(lines, current)
}
