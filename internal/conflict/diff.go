package conflict

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	diffHeaderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	diffHunkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan")).Bold(true)
	diffAddedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("22"))
	diffRemovedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("52"))
)

// Differ computes line diffs, reusing internal allocations so comparing
// many markers in one run stays cheap.
type Differ struct {
	v     map[int]int
	trace []map[int]int

	// ContextLines is the number of unchanged lines shown around each
	// change. Zero means 3.
	ContextLines int
}

// NewDiffer creates a differ with default options.
func NewDiffer() *Differ {
	return &Differ{
		v:     make(map[int]int, 64),
		trace: make([]map[int]int, 0, 64),
	}
}

type editOp int

const (
	editKeep editOp = iota
	editAdd
	editDrop
)

type editLine struct {
	oldNum  int // 1-based line in old, 0 if added
	newNum  int // 1-based line in new, 0 if removed
	content string
	op      editOp
}

type diffHunk struct {
	oldStart, oldCount int
	newStart, newCount int
	lines              []editLine
}

// Unified renders a unified diff between old and newer, styled for the
// terminal. Returns "" when the inputs are identical.
func (d *Differ) Unified(oldLabel, newLabel string, old, newer []byte) string {
	if bytes.Equal(old, newer) {
		return ""
	}
	if isBinary(old) || isBinary(newer) {
		return "Binary contents differ\n"
	}

	oldLines := splitDiffLines(string(old))
	newLines := splitDiffLines(string(newer))

	context := d.ContextLines
	if context == 0 {
		context = 3
	}

	script := d.editScript(oldLines, newLines)
	hunks := groupHunks(script, context)
	if len(hunks) == 0 {
		return ""
	}

	width := terminalWidth()
	var buf strings.Builder
	buf.WriteString(diffHeaderStyle.Render("--- "+oldLabel) + "\n")
	buf.WriteString(diffHeaderStyle.Render("+++ "+newLabel) + "\n")
	for _, h := range hunks {
		buf.WriteString(formatHunk(h, width))
	}
	return buf.String()
}

// editScript implements the Myers shortest-edit-script algorithm.
// Based on "An O(ND) Difference Algorithm and Its Variations" (1986).
func (d *Differ) editScript(old, newer []string) []editLine {
	n, m := len(old), len(newer)
	maxD := n + m

	for k := range d.v {
		delete(d.v, k)
	}
	d.v[1] = 0
	d.trace = d.trace[:0]

	for dist := 0; dist <= maxD; dist++ {
		snapshot := make(map[int]int, len(d.v))
		for k, val := range d.v {
			snapshot[k] = val
		}
		d.trace = append(d.trace, snapshot)

		for k := -dist; k <= dist; k += 2 {
			var x int
			if k == -dist || (k != dist && d.v[k-1] < d.v[k+1]) {
				x = d.v[k+1]
			} else {
				x = d.v[k-1] + 1
			}
			y := x - k
			for x < n && y < m && old[x] == newer[y] {
				x++
				y++
			}
			d.v[k] = x
			if x >= n && y >= m {
				return d.backtrack(old, newer)
			}
		}
	}
	return d.backtrack(old, newer)
}

func (d *Differ) backtrack(old, newer []string) []editLine {
	var result []editLine
	x, y := len(old), len(newer)

	prependKeep := func() {
		x--
		y--
		result = append([]editLine{{oldNum: x + 1, newNum: y + 1, content: old[x], op: editKeep}}, result...)
	}

	for dist := len(d.trace) - 1; dist >= 0; dist-- {
		v := d.trace[dist]
		k := x - y

		var prevK int
		if k == -dist || (k != dist && v[k-1] < v[k+1]) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}
		prevX := v[prevK]
		prevY := prevX - prevK

		for x > prevX && y > prevY {
			prependKeep()
		}
		if dist > 0 {
			if x == prevX {
				y--
				result = append([]editLine{{newNum: y + 1, content: newer[y], op: editAdd}}, result...)
			} else {
				x--
				result = append([]editLine{{oldNum: x + 1, content: old[x], op: editDrop}}, result...)
			}
		}
	}
	return result
}

// groupHunks slices the edit script into change blocks with surrounding
// context.
func groupHunks(lines []editLine, context int) []diffHunk {
	var hunks []diffHunk
	var current *diffHunk

	for i, line := range lines {
		if line.op != editKeep {
			if current == nil {
				start := i - context
				if start < 0 {
					start = 0
				}
				current = &diffHunk{}
				current.lines = append(current.lines, lines[start:i]...)
			}
			current.lines = append(current.lines, line)
			continue
		}
		if current == nil {
			continue
		}
		current.lines = append(current.lines, line)

		trailing := 1
		for j := i + 1; j < len(lines) && lines[j].op == editKeep; j++ {
			trailing++
		}
		if trailing > context*2 && i < len(lines)-1 {
			trim := trailing - context
			if trim > 0 && trim <= len(current.lines) {
				current.lines = current.lines[:len(current.lines)-trim]
			}
			finishHunk(current)
			hunks = append(hunks, *current)
			current = nil
		}
	}
	if current != nil {
		finishHunk(current)
		hunks = append(hunks, *current)
	}
	return hunks
}

func finishHunk(h *diffHunk) {
	for _, line := range h.lines {
		if line.oldNum > 0 && (h.oldStart == 0 || line.oldNum < h.oldStart) {
			h.oldStart = line.oldNum
		}
		if line.newNum > 0 && (h.newStart == 0 || line.newNum < h.newStart) {
			h.newStart = line.newNum
		}
		if line.op != editAdd {
			h.oldCount++
		}
		if line.op != editDrop {
			h.newCount++
		}
	}
}

func formatHunk(h diffHunk, width int) string {
	var buf strings.Builder
	header := fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.oldStart, h.oldCount, h.newStart, h.newCount)
	buf.WriteString(diffHunkStyle.Render(header) + "\n")

	for _, line := range h.lines {
		content := truncate(line.content, width-4)
		switch line.op {
		case editAdd:
			buf.WriteString(diffAddedStyle.Render("+"+content) + "\n")
		case editDrop:
			buf.WriteString(diffRemovedStyle.Render("-"+content) + "\n")
		default:
			buf.WriteString(" " + content + "\n")
		}
	}
	return buf.String()
}

func isBinary(data []byte) bool {
	probe := len(data)
	if probe > 8192 {
		probe = 8192
	}
	return bytes.IndexByte(data[:probe], 0) != -1
}

func splitDiffLines(s string) []string {
	if s == "" {
		return []string{}
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func truncate(s string, max int) string {
	if max <= 3 {
		max = 80
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}
