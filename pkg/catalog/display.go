package catalog

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#5B47E0")).
			Padding(0, 2)

	methodStyles = map[string]lipgloss.Style{
		"GET": lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#61AFEF")).
			Padding(0, 1),
		"HEAD": lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#56B6C2")).
			Padding(0, 1),
		"OPTIONS": lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#ABB2BF")).
			Padding(0, 1),
		"POST": lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#98C379")).
			Padding(0, 1),
		"PUT": lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#E5C07B")).
			Padding(0, 1),
		"DELETE": lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#E06C75")).
			Padding(0, 1),
		"PATCH": lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#C678DD")).
			Padding(0, 1),
	}

	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E5C07B")).
			Bold(true)

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ABB2BF"))
)

func getMethodStyle(method string) lipgloss.Style {
	if style, ok := methodStyles[method]; ok {
		return style
	}
	return methodStyles["GET"]
}

// RenderEndpoints renders an endpoint inventory grouped by path, with the
// declared response codes next to each method.
func RenderEndpoints(c *Catalog, endpoints []Endpoint) string {
	if len(endpoints) == 0 {
		return detailStyle.Render("No endpoints found")
	}

	var output strings.Builder

	title := c.Title()
	if title != "" {
		header := fmt.Sprintf(" %s ", title)
		if c.Version() != "" {
			header += fmt.Sprintf("v%s ", c.Version())
		}
		output.WriteString(titleStyle.Render(header))
		output.WriteString("\n\n")
	}

	currentPath := ""
	for _, e := range endpoints {
		if e.Path != currentPath {
			if currentPath != "" {
				output.WriteString("\n")
			}
			output.WriteString(pathStyle.Render(e.Path))
			output.WriteString("\n")
			currentPath = e.Path
		}

		output.WriteString("  ")
		output.WriteString(getMethodStyle(e.Method).Render(e.Method))

		if len(e.Statuses) > 0 {
			codes := make([]string, len(e.Statuses))
			for i, s := range e.Statuses {
				codes[i] = fmt.Sprintf("%d", s)
			}
			output.WriteString("  ")
			output.WriteString(detailStyle.Render(strings.Join(codes, " ")))
		}
		output.WriteString("\n")
	}

	return output.String()
}
