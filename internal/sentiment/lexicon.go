package sentiment

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

const variationSelector16 = "\uFE0F"

// PhraseGroup is a set of phrases that share one score delta and one
// explanation. The group fires once no matter how many of its phrases match.
type PhraseGroup struct {
	Name        string   `yaml:"name"`
	Phrases     []string `yaml:"phrases"`
	Delta       float64  `yaml:"delta"`
	Explanation string   `yaml:"explanation"`
}

// Lexicon holds the static tables the scorer matches against. Build one with
// DefaultLexicon or LoadLexicon; never modify it after handing it to NewScorer.
type Lexicon struct {
	PositiveEmoji  []string      `yaml:"positive_emoji"`
	NegativeEmoji  []string      `yaml:"negative_emoji"`
	IronyMarkers   []string      `yaml:"irony_markers"`
	PraiseIdioms   []string      `yaml:"praise_idioms"`
	IdiomGroups    []PhraseGroup `yaml:"idiom_groups"`
	WarningPhrases PhraseGroup   `yaml:"warning_phrases"`
	Insults        []string      `yaml:"insults"`
}

// DefaultLexicon returns the built-in Turkish social-media tables.
func DefaultLexicon() Lexicon {
	return Lexicon{
		PositiveEmoji: []string{"😂", "❤", "😍", "🔥", "👏", "👍", "💪", "💖", "🥰", "🤣"},
		NegativeEmoji: []string{"😭", "😡", "🤬", "👎", "🤮", "😒", "🙄", "😤", "🤢", "💩"},
		IronyMarkers:  []string{"(!)", "(!.)"},
		PraiseIdioms:  []string{"mükemmel ötesi", "efsane"},
		IdiomGroups: []PhraseGroup{
			{
				Name:        "not_bad",
				Phrases:     []string{"fena değil", "kötü değil"},
				Delta:       1.5,
				Explanation: "Detected 'not bad' pattern (corrected to Positive).",
			},
			{
				Name:        "no_problem",
				Phrases:     []string{"sıkıntı yok", "sorun yok", "dert değil"},
				Delta:       0.5,
				Explanation: "Detected 'no problem' pattern (Positive).",
			},
		},
		WarningPhrases: PhraseGroup{
			Name:        "warning",
			Phrases:     []string{"tavsiye etmem", "sakın almayın", "uzak durun"},
			Delta:       -0.5,
			Explanation: "Detected warning phrase (Negative).",
		},
		Insults: []string{
			"bok gibi", "beş para etmez", "rezalet", "iğrenç", "lanet olsun",
			"allah belanı", "aptal", "gerizekalı", "çöp", "kusturucu", "yüz karası",
			"berbat ötesi", "defol", "zıkkımın kökü", "hayal kırıklığı",
		},
	}
}

// LoadLexicon reads a YAML lexicon file. Sections missing from the file keep
// their built-in defaults.
func LoadLexicon(path string) (Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Lexicon{}, fmt.Errorf("failed to read lexicon file: %w", err)
	}

	lex := DefaultLexicon()
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return Lexicon{}, fmt.Errorf("failed to parse lexicon file %s: %w", path, err)
	}

	if err := lex.Validate(); err != nil {
		return Lexicon{}, fmt.Errorf("invalid lexicon file %s: %w", path, err)
	}
	return lex, nil
}

// Validate checks that emoji entries are single glyphs, the two emoji sets are
// disjoint, and every phrase and group is usable.
func (l Lexicon) Validate() error {
	positive := make(map[rune]struct{}, len(l.PositiveEmoji))
	for _, e := range l.PositiveEmoji {
		r, err := emojiRune(e)
		if err != nil {
			return fmt.Errorf("positive emoji: %w", err)
		}
		positive[r] = struct{}{}
	}
	for _, e := range l.NegativeEmoji {
		r, err := emojiRune(e)
		if err != nil {
			return fmt.Errorf("negative emoji: %w", err)
		}
		if _, dup := positive[r]; dup {
			return fmt.Errorf("emoji %q is both positive and negative", e)
		}
	}

	if err := nonEmpty("irony marker", l.IronyMarkers); err != nil {
		return err
	}
	if err := nonEmpty("praise idiom", l.PraiseIdioms); err != nil {
		return err
	}
	if err := nonEmpty("insult", l.Insults); err != nil {
		return err
	}

	groups := append([]PhraseGroup{l.WarningPhrases}, l.IdiomGroups...)
	for _, g := range groups {
		if g.Name == "" {
			return errors.New("phrase group without a name")
		}
		if g.Explanation == "" {
			return fmt.Errorf("phrase group %q has no explanation", g.Name)
		}
		if math.IsNaN(g.Delta) || math.IsInf(g.Delta, 0) {
			return fmt.Errorf("phrase group %q has a non-finite delta", g.Name)
		}
		if len(g.Phrases) == 0 {
			return fmt.Errorf("phrase group %q has no phrases", g.Name)
		}
		if err := nonEmpty("phrase in group "+g.Name, g.Phrases); err != nil {
			return err
		}
	}
	return nil
}

// emojiRune reduces an emoji entry to its single code point. A trailing
// variation selector (as in "❤️") is dropped.
func emojiRune(s string) (rune, error) {
	s = strings.TrimSuffix(s, variationSelector16)
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("%q is not a single glyph", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

func nonEmpty(kind string, phrases []string) error {
	for _, p := range phrases {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("empty %s", kind)
		}
	}
	return nil
}
