package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// cell is one rendered rune of the reference text.
type cell struct {
	s       string
	width   int
	isSpace bool
}

// styleCells colours the reference text against the typed input. Typed
// positions are green or red, the word under the cursor is highlighted and
// a mistyped space shows as a red dot.
func styleCells(target, input []rune, cursor int) []cell {
	word, hasWord := wordAt(wordSpans(target), cursor)

	out := make([]cell, 0, len(target))
	for i, want := range target {
		shown := want
		style := cellStyle(i, want, input, word, hasWord)
		if i < len(input) && want == ' ' && input[i] != ' ' {
			shown = '•'
		}
		if i == cursor && i >= len(input) {
			style = style.Underline(true)
		}
		out = append(out, cell{
			s:       style.Render(string(shown)),
			width:   runewidth.RuneWidth(shown),
			isSpace: want == ' ',
		})
	}
	return out
}

func cellStyle(i int, want rune, input []rune, word span, hasWord bool) lipgloss.Style {
	if i < len(input) {
		if input[i] == want {
			return correctStyle
		}
		return incorrectStyle
	}
	if want != ' ' && hasWord && word.contains(i) {
		return currentWordStyle
	}
	return pendingStyle
}

type span struct {
	start int
	end   int
}

func (s span) contains(i int) bool {
	return i >= s.start && i < s.end
}

func wordSpans(text []rune) []span {
	var spans []span
	start := -1
	for i, r := range text {
		switch {
		case r == ' ' && start != -1:
			spans = append(spans, span{start: start, end: i})
			start = -1
		case r != ' ' && start == -1:
			start = i
		}
	}
	if start != -1 {
		spans = append(spans, span{start: start, end: len(text)})
	}
	return spans
}

// wordAt returns the word containing cursor, or the next word after it.
// A negative cursor selects the first word.
func wordAt(spans []span, cursor int) (span, bool) {
	if len(spans) == 0 {
		return span{}, false
	}
	if cursor < 0 {
		return spans[0], true
	}
	for _, s := range spans {
		if cursor < s.end {
			return s, true
		}
	}
	return spans[len(spans)-1], true
}

func renderCells(cells []cell) string {
	var b strings.Builder
	for _, c := range cells {
		b.WriteString(c.s)
	}
	return b.String()
}

// wrapCells breaks cells into lines no wider than width, preferring to
// break at spaces. Wide glyphs count by their terminal width.
func wrapCells(cells []cell, width int) string {
	if width <= 0 {
		return renderCells(cells)
	}
	var lines []string
	line := make([]cell, 0, len(cells))
	lineWidth := 0
	breakAt := -1

	for i := 0; i < len(cells); {
		c := cells[i]
		if lineWidth+c.width > width && len(line) > 0 {
			if breakAt >= 0 {
				lines = append(lines, renderCells(line[:breakAt]))
				line = append([]cell{}, line[breakAt+1:]...)
			} else {
				lines = append(lines, renderCells(line))
				line = line[:0]
			}
			lineWidth = cellsWidth(line)
			breakAt = lastSpace(line)
			continue
		}
		line = append(line, c)
		lineWidth += c.width
		if c.isSpace {
			breakAt = len(line) - 1
		}
		i++
	}
	lines = append(lines, renderCells(line))
	return strings.Join(lines, "\n")
}

func cellsWidth(line []cell) int {
	total := 0
	for _, c := range line {
		total += c.width
	}
	return total
}

func lastSpace(line []cell) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
