package template

import (
	"strings"
	"text/template"
	"time"

	"github.com/fatih/color"

	"github.com/frherrer/pagecheck/internal/domain"
)

// CustomFuncMap returns the custom template functions available in templates.
// Colour functions emit ANSI codes only when colorize is true.
func CustomFuncMap(colorize bool) template.FuncMap {
	paint := func(attrs ...color.Attribute) func(a ...interface{}) string {
		c := color.New(attrs...)
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c.SprintFunc()
	}
	green := paint(color.FgGreen)
	red := paint(color.FgRed, color.Bold)
	yellow := paint(color.FgYellow)
	magenta := paint(color.FgMagenta)
	faint := paint(color.Faint)

	return template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"join":  strings.Join,
		"upper": strings.ToUpper,
		"indent": func(spaces int, s string) string {
			pad := strings.Repeat(" ", spaces)
			lines := strings.Split(s, "\n")
			for i, line := range lines {
				if line != "" {
					lines[i] = pad + line
				}
			}
			return strings.Join(lines, "\n")
		},
		"green":  green,
		"red":    red,
		"yellow": yellow,
		"faint":  faint,
		"status": func(s domain.Status) string {
			switch s {
			case domain.StatusPassed:
				return green("PASS")
			case domain.StatusFailed:
				return red("FAIL")
			case domain.StatusSkipped:
				return yellow("SKIP")
			case domain.StatusCancelled:
				return yellow("CANC")
			case domain.StatusAborted:
				return magenta("ABRT")
			default:
				return strings.ToUpper(string(s))
			}
		},
		"icon": func(s domain.Status) string {
			switch s {
			case domain.StatusPassed:
				return "✅"
			case domain.StatusFailed:
				return "❌"
			case domain.StatusAborted:
				return "💥"
			default:
				return "⏭️"
			}
		},
		"duration": func(d time.Duration) string {
			return d.Round(time.Millisecond).String()
		},
	}
}
