package htmlutil

import (
	"fmt"
	"os"
	"strings"
)

// ProcessCSS concatenates the default stylesheet, every custom stylesheet
// (each behind a banner naming its path) and the ANSI span styles.
func ProcessCSS(defaultCSS string, extraPaths []string, ansiStyles []string) (string, error) {
	var sb strings.Builder
	sb.WriteString(defaultCSS)

	for _, path := range extraPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading custom css: %w", err)
		}
		sb.WriteString("\n/******************************")
		sb.WriteString("\n * CUSTOM CSS")
		sb.WriteString("\n * " + path)
		sb.WriteString("\n ******************************/\n\n")
		sb.Write(data)
	}

	if len(ansiStyles) > 0 {
		lines := []string{
			"\n/******************************",
			" * ANSI2HTML STYLES",
			" ******************************/\n",
		}
		lines = append(lines, ansiStyles...)
		sb.WriteString(strings.Join(lines, "\n"))
	}
	return sb.String(), nil
}
