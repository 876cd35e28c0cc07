package lipgloss

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/mdstream"
	"github.com/mattn/go-runewidth"
)

var blockTags = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"pre": true, "ul": true, "ol": true, "blockquote": true, "hr": true,
	"table": true, "div": true,
}

type nodeRenderer struct {
	text      lipgloss.Style
	bold      lipgloss.Style
	italic    lipgloss.Style
	strike    lipgloss.Style
	accent    lipgloss.Style
	code      lipgloss.Style
	muted     lipgloss.Style
	loading   lipgloss.Style
	underline lipgloss.Style
	colorText bool
}

func newRenderer(theme mdstream.Theme) *nodeRenderer {
	return &nodeRenderer{
		text:      lipgloss.NewStyle().Foreground(ansiColor(theme.Text)),
		bold:      lipgloss.NewStyle().Bold(true),
		italic:    lipgloss.NewStyle().Italic(true),
		strike:    lipgloss.NewStyle().Strikethrough(true),
		accent:    lipgloss.NewStyle().Foreground(ansiColor(theme.Accent)).Bold(true),
		code:      lipgloss.NewStyle().Foreground(ansiColor(theme.Code)),
		muted:     lipgloss.NewStyle().Foreground(ansiColor(theme.Muted)).Faint(true),
		loading:   lipgloss.NewStyle().Foreground(ansiColor(theme.Loading)),
		underline: lipgloss.NewStyle().Foreground(ansiColor(theme.Link)).Underline(true),
		colorText: theme.Text >= 0,
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}

func isBlock(n mdstream.Node) bool {
	switch n := n.(type) {
	case *mdstream.ElementNode:
		return blockTags[n.Tag]
	case *mdstream.ComponentNode:
		return true
	}
	return false
}

// blocks renders nodes as a list of blocks. Runs of inline nodes between
// blocks, as left by raw HTML, become paragraphs.
func (r *nodeRenderer) blocks(nodes []mdstream.Node, width int) []string {
	var out []string
	var run []mdstream.Node
	flush := func() {
		if s := strings.TrimSpace(r.inline(run)); s != "" {
			out = append(out, wrap(s, width))
		}
		run = nil
	}
	for _, n := range nodes {
		if !isBlock(n) {
			run = append(run, n)
			continue
		}
		flush()
		if s := r.block(n, width); s != "" {
			out = append(out, s)
		}
	}
	flush()
	return out
}

func (r *nodeRenderer) block(n mdstream.Node, width int) string {
	if c, ok := n.(*mdstream.ComponentNode); ok {
		return r.component(c, width)
	}
	el := n.(*mdstream.ElementNode)
	switch el.Tag {
	case "p":
		return wrap(strings.TrimSpace(r.inline(el.Children)), width)
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return wrap(r.accent.Render(strings.TrimSpace(r.inline(el.Children))), width)
	case "pre":
		return r.codeBlock(el, width)
	case "ul", "ol":
		return r.list(el, width, 0)
	case "blockquote":
		bar := r.muted.Render("▌") + " "
		inner := strings.Join(r.blocks(el.Children, max(width-2, 10)), "\n\n")
		return prefixLines(inner, bar, bar)
	case "hr":
		return "---"
	case "table":
		return r.table(el)
	default:
		return strings.Join(r.blocks(el.Children, width), "\n\n")
	}
}

// component renders a registered element under a label naming it. Elements
// still streaming get a spinner in the loading color.
func (r *nodeRenderer) component(c *mdstream.ComponentNode, width int) string {
	label := r.muted.Render(c.Name)
	if c.StreamStatus == mdstream.StatusLoading {
		label = r.loading.Render(Spinner + " " + c.Name)
	}
	body := strings.Join(r.blocks(c.Children, width), "\n\n")
	if body == "" {
		return label
	}
	return label + "\n" + body
}

func (r *nodeRenderer) codeBlock(pre *mdstream.ElementNode, width int) string {
	var lang string
	var loading bool
	for _, c := range pre.Children {
		code, ok := c.(*mdstream.ElementNode)
		if !ok || code.Tag != "code" {
			continue
		}
		if cls, ok := code.Attr("class"); ok {
			for _, f := range strings.Fields(cls) {
				if l, ok := strings.CutPrefix(f, "language-"); ok {
					lang = l
				}
			}
		}
		state, _ := code.Attr("data-state")
		loading = state == string(mdstream.StatusLoading)
	}

	style := r.muted
	label := lang
	if loading {
		style = r.loading
		label = strings.TrimSpace(Spinner + " " + lang)
	}
	var lines []string
	if label != "" {
		lines = append(lines, style.Render(label))
	}
	gutter := style.Render("│") + " "
	content := strings.TrimRight(textContent(pre.Children), "\n")
	for _, line := range strings.Split(content, "\n") {
		lines = append(lines, gutter+runewidth.Truncate(line, max(width-2, 1), "…"))
	}
	return strings.Join(lines, "\n")
}

func (r *nodeRenderer) list(el *mdstream.ElementNode, width, depth int) string {
	num := 1
	if v, ok := el.Attr("start"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			num = n
		}
	}

	var lines []string
	indent := strings.Repeat("  ", depth)
	for _, c := range el.Children {
		li, ok := c.(*mdstream.ElementNode)
		if !ok || li.Tag != "li" {
			continue
		}
		marker := "- "
		if el.Tag == "ol" {
			marker = fmt.Sprintf("%d. ", num)
			num++
		}

		var run []mdstream.Node
		flush := func() {
			content := strings.TrimSpace(r.inline(run))
			run = nil
			if content == "" {
				return
			}
			lines = append(lines, listItem(indent, marker, content, width))
			marker = strings.Repeat(" ", runewidth.StringWidth(marker))
		}
		for _, ic := range li.Children {
			child, ok := ic.(*mdstream.ElementNode)
			switch {
			case ok && (child.Tag == "ul" || child.Tag == "ol"):
				flush()
				lines = append(lines, r.list(child, width, depth+1))
				marker = strings.Repeat(" ", runewidth.StringWidth(marker))
			case ok && child.Tag == "p":
				// Loose list items wrap their text in paragraphs.
				run = append(run, child.Children...)
			case isBlock(ic):
				flush()
				pad := indent + strings.Repeat(" ", runewidth.StringWidth(marker))
				lines = append(lines, prefixLines(r.block(ic, max(width-len(pad), 10)), pad, pad))
			default:
				run = append(run, ic)
			}
		}
		flush()
	}
	return strings.Join(lines, "\n")
}

// listItem wraps content after the marker with continuation lines indented
// to the marker width.
func listItem(indent, marker, content string, width int) string {
	prefix := indent + marker
	itemWidth := width - runewidth.StringWidth(prefix)
	if itemWidth < 10 {
		itemWidth = 10
	}
	continuation := strings.Repeat(" ", runewidth.StringWidth(prefix))
	return prefixLines(wrap(content, itemWidth), prefix, continuation)
}

func (r *nodeRenderer) table(el *mdstream.ElementNode) string {
	var rows [][]string
	header := false
	var collect func(nodes []mdstream.Node)
	collect = func(nodes []mdstream.Node) {
		for _, n := range nodes {
			e, ok := n.(*mdstream.ElementNode)
			if !ok {
				continue
			}
			if e.Tag != "tr" {
				collect(e.Children)
				continue
			}
			var row []string
			for _, c := range e.Children {
				cell, ok := c.(*mdstream.ElementNode)
				if !ok || (cell.Tag != "th" && cell.Tag != "td") {
					continue
				}
				if cell.Tag == "th" && len(rows) == 0 {
					header = true
				}
				row = append(row, strings.TrimSpace(textContent(cell.Children)))
			}
			rows = append(rows, row)
		}
	}
	collect(el.Children)

	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	sep := r.muted.Render("│")
	var lines []string
	for i, row := range rows {
		cells := make([]string, len(widths))
		for j := range widths {
			var cell string
			if j < len(row) {
				cell = row[j]
			}
			cell = runewidth.FillRight(cell, widths[j])
			if header && i == 0 {
				cell = r.bold.Render(cell)
			}
			cells[j] = cell
		}
		lines = append(lines, strings.TrimRight(strings.Join(cells, " "+sep+" "), " "))
		if header && i == 0 {
			rules := make([]string, len(widths))
			for j, w := range widths {
				rules[j] = strings.Repeat("─", w)
			}
			lines = append(lines, r.muted.Render(strings.Join(rules, "─┼─")))
		}
	}
	return strings.Join(lines, "\n")
}

// inline renders nodes as one run of styled text.
func (r *nodeRenderer) inline(nodes []mdstream.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		r.renderInline(n, &b)
	}
	return b.String()
}

func (r *nodeRenderer) renderInline(n mdstream.Node, b *strings.Builder) {
	switch n := n.(type) {
	case *mdstream.TextNode:
		b.WriteString(r.plain(n.Text))
	case *mdstream.AnimatedTextNode:
		b.WriteString(r.plain(n.Text))
	case *mdstream.ComponentNode:
		if len(n.Children) == 0 {
			b.WriteString(r.muted.Render("…"))
			return
		}
		if n.StreamStatus == mdstream.StatusLoading {
			b.WriteString(r.loading.Render(Spinner) + " ")
		}
		b.WriteString(r.inline(n.Children))
	case *mdstream.ElementNode:
		inner := func() string { return r.inline(n.Children) }
		switch n.Tag {
		case "strong", "b":
			b.WriteString(r.bold.Render(inner()))
		case "em", "i":
			b.WriteString(r.italic.Render(inner()))
		case "del", "s":
			b.WriteString(r.strike.Render(inner()))
		case "code":
			b.WriteString(r.code.Render(textContent(n.Children)))
		case "a":
			b.WriteString(r.underline.Render(inner()))
			if href, ok := n.Attr("href"); ok && href != "" {
				b.WriteString(" " + r.muted.Render("("+href+")"))
			}
		case "img":
			alt, _ := n.Attr("alt")
			src, _ := n.Attr("src")
			b.WriteString(r.underline.Render(alt) + " " + r.muted.Render("("+src+")"))
		case "br":
			b.WriteString("\n")
		case "input":
			if typ, _ := n.Attr("type"); typ == "checkbox" {
				if _, checked := n.Attr("checked"); checked {
					b.WriteString("[x]")
				} else {
					b.WriteString("[ ]")
				}
			}
		default:
			b.WriteString(inner())
		}
	}
}

// plain renders body text. Soft line breaks become spaces.
func (r *nodeRenderer) plain(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if r.colorText && strings.TrimSpace(s) != "" {
		return r.text.Render(s)
	}
	return s
}

// textContent concatenates the unstyled text below nodes.
func textContent(nodes []mdstream.Node) string {
	var b strings.Builder
	mdstream.Walk(nodes, func(n mdstream.Node) bool {
		switch n := n.(type) {
		case *mdstream.TextNode:
			b.WriteString(n.Text)
		case *mdstream.AnimatedTextNode:
			b.WriteString(n.Text)
		}
		return true
	})
	return b.String()
}

// wrap word-wraps s to width, dropping the padding lipgloss adds to short
// lines.
func wrap(s string, width int) string {
	wrapped := lipgloss.NewStyle().Width(width).Render(s)
	lines := strings.Split(wrapped, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.Join(lines, "\n")
}

func prefixLines(s, first, rest string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if i == 0 {
			lines[i] = first + line
		} else {
			lines[i] = rest + line
		}
	}
	return strings.Join(lines, "\n")
}
