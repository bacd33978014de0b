package main

import (
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/oakwood-commons/ye/internal/config"
)

// generate_index renders README.md into <dist-dir>/index.html. The
// "Key bindings" section is replaced by a reference built from the
// embedded default config, and archives found in dist-dir are listed
// under "Installation".
func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <dist-dir>\n", os.Args[0])
		os.Exit(1)
	}
	distDir := os.Args[1]

	readme, err := os.ReadFile("README.md")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading README.md: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Default()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading default config: %v\n", err)
		os.Exit(1)
	}

	var archives []string
	if entries, err := os.ReadDir(distDir); err == nil {
		for _, e := range entries {
			if !e.IsDir() {
				archives = append(archives, e.Name())
			}
		}
	}

	indexPath := filepath.Join(distDir, "index.html")
	f, err := os.Create(indexPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating index.html: %v\n", err)
		os.Exit(1)
	}
	if err := writePage(f, readme, cfg, archives); err != nil {
		f.Close()
		fmt.Fprintf(os.Stderr, "Error writing index.html: %v\n", err)
		os.Exit(1)
	}
	f.Close()
	fmt.Fprintf(os.Stderr, "Generated %s\n", indexPath)
}

func writePage(w io.Writer, readme []byte, cfg config.Config, archives []string) error {
	body := string(renderMarkdown(readme))
	body = replaceSection(body, "key-bindings", "Key bindings", keyReferenceHTML(cfg))
	if downloads := downloadsHTML(archives); downloads != "" {
		body = replaceSection(body, "installation", "Installation", downloads)
	}
	_, err := io.WriteString(w, pageHeader+body+pageFooter)
	return err
}

func renderMarkdown(src []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock)
	r := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags | mdhtml.HrefTargetBlank})
	return markdown.Render(p.Parse(src), r)
}

// replaceSection swaps the body of the h2 with the given id, up to the
// next h2. A missing section leaves the page unchanged.
func replaceSection(page, id, title, content string) string {
	open := `<h2 id="` + id + `">`
	start := strings.Index(page, open)
	if start == -1 {
		return page
	}
	rest := page[start+len(open):]
	end := len(page)
	if next := strings.Index(rest, `<h2 id="`); next != -1 {
		end = start + len(open) + next
	}
	return page[:start] + open + html.EscapeString(title) + "</h2>\n\n" + content + "\n" + page[end:]
}

func keyReferenceHTML(cfg config.Config) string {
	byCommand := map[string][]string{}
	for key, name := range cfg.Keys {
		byCommand[name] = append(byCommand[name], key)
	}

	var sb strings.Builder
	sb.WriteString("<table class=\"key-table\">\n  <tr><th>Command</th><th>Aliases</th><th>Keys</th><th>Description</th></tr>\n")
	for _, c := range cfg.Commands {
		keys := byCommand[c.Name]
		sort.Strings(keys)
		fmt.Fprintf(&sb, "  <tr><td><code>%s</code></td><td>%s</td><td>%s</td><td>%s</td></tr>\n",
			html.EscapeString(c.Name),
			html.EscapeString(strings.Join(c.Aliases, ", ")),
			html.EscapeString(strings.Join(keys, " ")),
			html.EscapeString(c.Description))
	}
	sb.WriteString("</table>\n")
	return sb.String()
}

// archivePattern matches ye_VERSION_OS_ARCH archives.
var archivePattern = regexp.MustCompile(`^ye_(.+)_(Darwin|Linux|Windows)_(arm64|x86_64)\.(tar\.gz|zip)$`)

var platformNames = map[string]string{
	"Darwin_arm64":   "macOS (Apple Silicon)",
	"Darwin_x86_64":  "macOS (Intel)",
	"Linux_arm64":    "Linux (ARM64)",
	"Linux_x86_64":   "Linux (x86_64)",
	"Windows_arm64":  "Windows (ARM64)",
	"Windows_x86_64": "Windows (x86_64)",
}

func downloadsHTML(files []string) string {
	var version string
	links := map[string]string{}
	for _, name := range files {
		m := archivePattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		version = m[1]
		plat := platformNames[m[2]+"_"+m[3]]
		if _, seen := links[plat]; !seen {
			links[plat] = name
		}
	}
	if len(links) == 0 {
		return ""
	}
	plats := make([]string, 0, len(links))
	for p := range links {
		plats = append(plats, p)
	}
	sort.Strings(plats)

	var sb strings.Builder
	fmt.Fprintf(&sb, "<div class=\"downloads\">\n  <h3>%s</h3>\n  <table class=\"download-table\">\n", html.EscapeString(version))
	for _, p := range plats {
		fmt.Fprintf(&sb, "    <tr><td class=\"platform-name\">%s</td><td><a href=\"%s\">download</a></td></tr>\n", p, links[p])
	}
	sb.WriteString("  </table>\n</div>\n")
	return sb.String()
}

const pageHeader = `<!doctype html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>ye - modal tree editor</title>
  <style>
    body { font-family: system-ui, -apple-system, sans-serif; max-width: 900px; margin: 40px auto; padding: 0 20px; line-height: 1.6; color: #333; }
    h1 { color: #2563eb; border-bottom: 2px solid #2563eb; padding-bottom: 10px; }
    h2 { color: #1e40af; margin-top: 30px; }
    code { background: #f1f5f9; padding: 2px 6px; border-radius: 3px; font-family: Monaco, Menlo, monospace; font-size: 0.9em; }
    pre { background: #1e293b; color: #e2e8f0; padding: 16px; border-radius: 6px; overflow-x: auto; }
    pre code { background: none; color: inherit; padding: 0; }
    table { border-collapse: collapse; }
    td, th { padding: 4px 8px; text-align: left; }
    .downloads { background: #eff6ff; padding: 20px; border-radius: 8px; border-left: 4px solid #2563eb; }
  </style>
</head>
<body>
`

const pageFooter = `</body>
</html>
`
