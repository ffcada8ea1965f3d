package enhance

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

type verbRule struct {
	re   *regexp.Regexp
	with string
}

func wordRule(phrase, with string) verbRule {
	return verbRule{re: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(phrase) + `\b`), with: with}
}

// Applied in order. The passive form runs after "led" so its output stays
// "Led", and before "responsible for" so it still matches.
var rewriteRules = []verbRule{
	wordRule("worked on", "Orchestrated"),
	wordRule("helped", "Facilitated"),
	wordRule("made", "Engineered"),
	wordRule("fixed", "Resolved"),
	wordRule("managed", "Directed"),
	wordRule("led", "Spearheaded"),
	wordRule("created", "Architected"),
	wordRule("used", "Leveraged"),
	wordRule("talked to", "Negotiated with"),
	wordRule("was responsible for", "Led"),
	wordRule("responsible for", "Accountable for"),
	wordRule("saw", "Identified"),
	wordRule("did", "Executed"),
	wordRule("got", "Achieved"),
}

// RewriteWithRules strengthens a bullet without a model: capitalize, swap weak
// verbs for strong ones and close long sentences with a period.
func RewriteWithRules(text string) string {
	out := capitalizeFirst(strings.TrimSpace(text))
	for _, rule := range rewriteRules {
		out = rule.re.ReplaceAllLiteralString(out, rule.with)
	}
	if utf8.RuneCountInString(out) > 20 && !strings.HasSuffix(out, ".") && !strings.HasSuffix(out, "!") {
		out += "."
	}
	return out
}

func capitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
