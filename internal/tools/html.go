package tools

import (
	"regexp"
	"strings"
)

const (
	FormatBasic    = "basic"
	FormatMarkdown = "markdown"
)

var (
	reH3         = regexp.MustCompile(`(?m)^### (.+)$`)
	reH2         = regexp.MustCompile(`(?m)^## (.+)$`)
	reH1         = regexp.MustCompile(`(?m)^# (.+)$`)
	reBoldItalic = regexp.MustCompile(`\*\*\*(.+?)\*\*\*`)
	reBold       = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reItalic     = regexp.MustCompile(`\*(.+?)\*`)
	reCodeBlock  = regexp.MustCompile("(?s)```(.+?)```")
	reCode       = regexp.MustCompile("`(.+?)`")
	reLink       = regexp.MustCompile(`\[(.+?)\]\((.+?)\)`)

	basicEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
)

// TextToHTML converts text using the markdown subset when format is
// FormatMarkdown and the escaping paragraph converter otherwise.
func TextToHTML(text, format string) string {
	if format == FormatMarkdown {
		return markdownToHTML(text)
	}
	return basicToHTML(text)
}

func basicToHTML(text string) string {
	html := basicEscaper.Replace(text)
	html = strings.ReplaceAll(html, "\n\n", "</p><p>")
	html = strings.ReplaceAll(html, "\n", "<br>")
	return "<p>" + html + "</p>"
}

// markdownToHTML does not escape its input.
func markdownToHTML(text string) string {
	html := reH3.ReplaceAllString(text, "<h3>${1}</h3>")
	html = reH2.ReplaceAllString(html, "<h2>${1}</h2>")
	html = reH1.ReplaceAllString(html, "<h1>${1}</h1>")

	html = reBoldItalic.ReplaceAllString(html, "<strong><em>${1}</em></strong>")
	html = reBold.ReplaceAllString(html, "<strong>${1}</strong>")
	html = reItalic.ReplaceAllString(html, "<em>${1}</em>")

	html = reCodeBlock.ReplaceAllString(html, "<pre><code>${1}</code></pre>")
	html = reCode.ReplaceAllString(html, "<code>${1}</code>")

	html = reLink.ReplaceAllString(html, `<a href="${2}">${1}</a>`)

	html = wrapLists(html)

	var b strings.Builder
	for _, p := range strings.Split(html, "\n\n") {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if strings.HasPrefix(p, "<") {
			b.WriteString(p)
			continue
		}
		b.WriteString("<p>")
		b.WriteString(p)
		b.WriteString("</p>")
	}
	return b.String()
}

// wrapLists turns runs of "- " lines into a <ul>.
func wrapLists(html string) string {
	lines := strings.Split(html, "\n")
	out := make([]string, 0, len(lines))
	inList := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "- ") {
			if !inList {
				out = append(out, "<ul>")
				inList = true
			}
			out = append(out, "<li>"+trimmed[2:]+"</li>")
			continue
		}

		if inList {
			out = append(out, "</ul>")
			inList = false
		}
		out = append(out, line)
	}
	if inList {
		out = append(out, "</ul>")
	}

	return strings.Join(out, "\n")
}
