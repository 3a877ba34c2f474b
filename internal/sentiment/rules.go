package sentiment

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

const (
	emojiWeight   = 0.2
	ironyPenalty  = -1.5
	praiseBonus   = 0.1
	insultPenalty = -2.0
)

// Text is one input as the rules see it: the original string for emoji and
// marker checks and two case-folded forms for phrase checks.
type Text struct {
	Original string
	// Folded uses Turkish casing: "I" folds to "ı" and "İ" to "i".
	Folded string
	// RootFolded uses language-neutral casing, so "I" typed on a non-Turkish
	// keyboard folds to "i".
	RootFolded string
}

// NewText derives both folded forms, NFC-normalized.
func NewText(text string) Text {
	return Text{
		Original:   text,
		Folded:     norm.NFC.String(cases.Lower(language.Turkish).String(text)),
		RootFolded: norm.NFC.String(cases.Lower(language.Und).String(text)),
	}
}

// Rule is one row of the heuristic table. Match returns how many times the
// rule applies (0 means it did not fire); the rule contributes Delta per hit.
// A rule with a nil Explain fires silently.
type Rule struct {
	Name    string
	Match   func(t Text) int
	Delta   float64
	Explain func(hits int) string
}

// Firing records one rule that matched.
type Firing struct {
	Rule        string
	Hits        int
	Delta       float64
	Explanation string
}

// Evaluation is the outcome of running the rule table over one text.
type Evaluation struct {
	Modifier float64
	Details  []string
	Firings  []Firing
}

// Scorer evaluates an immutable rule table in a fixed order.
type Scorer struct {
	rules []Rule
}

// NewScorer validates the lexicon and compiles it into the rule table.
func NewScorer(lex Lexicon) (*Scorer, error) {
	if err := lex.Validate(); err != nil {
		return nil, fmt.Errorf("invalid lexicon: %w", err)
	}
	return &Scorer{rules: buildRules(lex)}, nil
}

// RuleNames lists the rules in evaluation order.
func (s *Scorer) RuleNames() []string {
	names := make([]string, len(s.rules))
	for i, r := range s.rules {
		names[i] = r.Name
	}
	return names
}

// Score returns the heuristic modifier and the explanation trace for text.
func (s *Scorer) Score(text string) (float64, []string) {
	ev := s.Evaluate(text)
	return ev.Modifier, ev.Details
}

// Evaluate folds every rule over text. Deltas are additive and explanations
// keep rule order.
func (s *Scorer) Evaluate(text string) Evaluation {
	t := NewText(text)
	ev := Evaluation{Details: []string{}}

	for _, r := range s.rules {
		hits := r.Match(t)
		if hits <= 0 {
			continue
		}

		f := Firing{Rule: r.Name, Hits: hits, Delta: r.Delta * float64(hits)}
		ev.Modifier += f.Delta
		if r.Explain != nil {
			f.Explanation = r.Explain(hits)
			ev.Details = append(ev.Details, f.Explanation)
		}
		ev.Firings = append(ev.Firings, f)
	}
	return ev
}

func buildRules(lex Lexicon) []Rule {
	positive := runeSet(lex.PositiveEmoji)
	negative := runeSet(lex.NegativeEmoji)

	rules := []Rule{
		{
			Name:    "emoji_positive",
			Match:   countRunes(positive),
			Delta:   emojiWeight,
			Explain: func(n int) string { return fmt.Sprintf("Found %d positive emojis.", n) },
		},
		{
			Name:    "emoji_negative",
			Match:   countRunes(negative),
			Delta:   -emojiWeight,
			Explain: func(n int) string { return fmt.Sprintf("Found %d negative emojis.", n) },
		},
		{
			Name:    "irony_marker",
			Match:   containsAny(lex.IronyMarkers, original),
			Delta:   ironyPenalty,
			Explain: constant("Irony marker '(!)' detected."),
		},
		{
			Name:  "praise_idiom",
			Match: containsAny(foldAll(lex.PraiseIdioms), folded, rootFolded),
			Delta: praiseBonus,
		},
	}

	for _, g := range lex.IdiomGroups {
		rules = append(rules, groupRule(g))
	}
	rules = append(rules, groupRule(lex.WarningPhrases))

	for _, phrase := range lex.Insults {
		rules = append(rules, Rule{
			Name:    "insult",
			Match:   containsAny(foldAll([]string{phrase}), folded, rootFolded),
			Delta:   insultPenalty,
			Explain: constant(fmt.Sprintf("Detected strong negative phrase: '%s'", phrase)),
		})
	}
	return rules
}

func groupRule(g PhraseGroup) Rule {
	return Rule{
		Name:    g.Name,
		Match:   containsAny(foldAll(g.Phrases), folded, rootFolded),
		Delta:   g.Delta,
		Explain: constant(g.Explanation),
	}
}

func original(t Text) string   { return t.Original }
func folded(t Text) string     { return t.Folded }
func rootFolded(t Text) string { return t.RootFolded }

// containsAny fires once if any needle is a substring of any selected view.
func containsAny(needles []string, views ...func(Text) string) func(Text) int {
	return func(t Text) int {
		for _, view := range views {
			haystack := view(t)
			for _, n := range needles {
				if strings.Contains(haystack, n) {
					return 1
				}
			}
		}
		return 0
	}
}

func countRunes(set map[rune]struct{}) func(Text) int {
	return func(t Text) int {
		n := 0
		for _, r := range t.Original {
			if _, ok := set[r]; ok {
				n++
			}
		}
		return n
	}
}

func runeSet(glyphs []string) map[rune]struct{} {
	set := make(map[rune]struct{}, len(glyphs))
	for _, g := range glyphs {
		// Validate has already rejected entries that are not single glyphs.
		r, _ := emojiRune(g)
		set[r] = struct{}{}
	}
	return set
}

// foldAll returns every distinct folded form of the phrases.
func foldAll(phrases []string) []string {
	out := make([]string, 0, len(phrases))
	for _, p := range phrases {
		t := NewText(p)
		out = append(out, t.Folded)
		if t.RootFolded != t.Folded {
			out = append(out, t.RootFolded)
		}
	}
	return out
}

func constant(s string) func(int) string {
	return func(int) string { return s }
}
