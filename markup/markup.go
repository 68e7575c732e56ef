// Package markup converts the constrained authoring syntax used by the
// admin editor into the HTML fragments stored on blog posts. The same
// converter runs for preview and for save, so the stored content and the
// editor preview can never drift apart.
package markup

import (
	"regexp"
	"strings"
)

// paragraphStyle is the fixed inline style carried by every plain text
// block. Published posts depend on the stored HTML rendering identically,
// so the style lives in the output rather than a stylesheet.
const paragraphStyle = `font-size: 1.1rem; font-weight: normal; font-family: &quot;Helvetica Neue&quot;, Helvetica, Arial, sans-serif; line-height: 1.7; margin-bottom: 1rem;`

const imageStyle = `max-width: 100%; border-radius: 8px; margin: 1rem 0;`

var (
	reH1     = regexp.MustCompile(`(?m)^# (.+)$`)
	reH2     = regexp.MustCompile(`(?m)^## (.+)$`)
	reBold   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reItalic = regexp.MustCompile(`\*(.+?)\*`)
	reImage  = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)
	reLink   = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	reItem   = regexp.MustCompile(`(?m)^- (.+)$`)
)

// Convert renders the authoring syntax as HTML. Blocks are separated by
// blank lines and processed independently. The input is trusted authoring
// content: nothing is escaped, and emitted HTML contains no markers, so
// converting the output again leaves it unchanged.
func Convert(text string) string {
	var blocks []string
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		blocks = append(blocks, convertBlock(block))
	}
	return strings.Join(blocks, "\n\n")
}

func convertBlock(block string) string {
	// A block is a list when any of its lines is a bullet. Prose lines in
	// the same block end up inside the <ul> rather than splitting it.
	isList := strings.HasPrefix(block, "- ") || strings.Contains(block, "\n- ")

	block = reH1.ReplaceAllString(block, "<h1>$1</h1>")
	block = reH2.ReplaceAllString(block, "<h2>$1</h2>")
	block = reBold.ReplaceAllString(block, "<strong>$1</strong>")
	block = reItalic.ReplaceAllString(block, "<em>$1</em>")
	block = reImage.ReplaceAllString(block, `<img src="$2" alt="$1" style="`+imageStyle+`" />`)
	block = reLink.ReplaceAllString(block, `<a href="$2" target="_blank" rel="noopener noreferrer">$1</a>`)

	if isList {
		block = reItem.ReplaceAllString(block, "<li>$1</li>")
		return "<ul>" + block + "</ul>"
	}

	if strings.HasPrefix(block, "<h1>") || strings.HasPrefix(block, "<h2>") ||
		strings.HasPrefix(block, "<ul>") || strings.HasPrefix(block, "<img") {
		return block
	}
	return `<p style="` + paragraphStyle + `">` + block + `</p>`
}
