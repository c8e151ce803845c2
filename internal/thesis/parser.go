package thesis

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/gausfin/gausthesis/pkg/models"
)

var citationRe = regexp.MustCompile(`\[(\d+)\]`)

// ParseCatalyst extracts bullet lines from a completion and resolves
// their [n] citations against the numbered news list that was embedded
// in the prompt. Citations pointing outside the list are dropped;
// lines that are not bullets are ignored. An unusable completion
// yields an empty slice, never an error.
func ParseCatalyst(text string, numbered []models.NewsItem) []models.CatalystBullet {
	var bullets []models.CatalystBullet
	for _, line := range strings.Split(text, "\n") {
		clean, ok := stripBullet(line)
		if !ok {
			continue
		}

		var sources []models.SourceRef
		for _, match := range citationRe.FindAllStringSubmatch(clean, -1) {
			n, err := strconv.Atoi(match[1])
			if err != nil || n < 1 || n > len(numbered) {
				continue
			}
			sources = append(sources, numbered[n-1].Ref())
		}

		bodyText := strings.TrimSpace(citationRe.ReplaceAllString(clean, ""))
		if bodyText == "" {
			continue
		}
		bullets = append(bullets, models.CatalystBullet{Text: bodyText, Sources: sources})
	}
	return bullets
}

// ParseRisk extracts plain bullet lines from a risk completion.
func ParseRisk(text string) []string {
	var bullets []string
	for _, line := range strings.Split(text, "\n") {
		if clean, ok := stripBullet(line); ok {
			bullets = append(bullets, clean)
		}
	}
	return bullets
}

// stripBullet reports whether the line is a bullet (dash, dot, or
// numbered) and returns it with the list marker removed.
func stripBullet(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if line == "" || !isBulletStart(line) {
		return "", false
	}
	s := strings.TrimLeft(line, "-•")
	s = strings.TrimLeft(s, "0123456789.")
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}

func isBulletStart(line string) bool {
	r := []rune(line)[0]
	return r == '-' || r == '•' || unicode.IsDigit(r)
}
