package classify

import (
	"fmt"
	"regexp"

	"github.com/sells-group/evidence-cli/internal/model"
)

var interviewTitleRe = regexp.MustCompile(`(?i)interview|q&a|conversation`)

var kindLabels = map[model.Kind]string{
	model.KindWebsite: "Official site",
	model.KindPress:   "Press release",
	model.KindProject: "Project page",
	model.KindImages:  "Image resource",
}

// SelectLabel returns the display label for an evidence row. Articles whose
// title reads like an interview are labelled as such.
func SelectLabel(kind model.Kind, title, _ string) string {
	if l, ok := kindLabels[kind]; ok {
		return l
	}
	if kind == model.KindArticle && interviewTitleRe.MatchString(title) {
		return "Interview article"
	}
	return "Article"
}

var kindNotes = map[model.Kind]string{
	model.KindWebsite: "Authoritative profile",
	model.KindPress:   "Institutional press source",
	model.KindProject: "Official project/exhibition page",
	model.KindImages:  "Institutional media/images",
	model.KindArticle: "Credible media coverage",
}

// ShortNotes describes the evidence source, capped at model.MaxNotesLen characters.
func ShortNotes(kind model.Kind, domain string) string {
	base, ok := kindNotes[kind]
	if !ok {
		base = kindNotes[model.KindArticle]
	}
	return truncate(fmt.Sprintf("%s (%s)", base, domain), model.MaxNotesLen)
}

// truncate shortens s to at most limit characters, ending in "..." when cut.
func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-3]) + "..."
}
