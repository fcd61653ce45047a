// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"strings"
	"unicode"

	"github.com/pdiddy/saga-engine/internal/alias"
)

// Span is a labeled region of a sentence found by named-entity
// recognition. Labels follow the usual NER tag set: PERSON and ORG are
// actor cues, GPE/LOC/FAC are place cues.
type Span struct {
	Text  string
	Label string
	Start int
	End   int
}

// Recognizer abstracts named-entity recognition and the part-of-speech
// check the validity filter needs. The extraction pipeline treats this
// as an external capability behind a fixed interface; tests supply
// fakes.
type Recognizer interface {
	// Entities returns labeled spans found in the sentence.
	Entities(sentence string) []Span

	// VerbInitial reports whether the span's first token is a verb or
	// auxiliary.
	VerbInitial(text string) bool
}

// commonWords are tokens never treated as entity evidence on their own.
var commonWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "from": true, "for": true,
	"of": true, "with": true, "by": true, "as": true, "is": true, "was": true,
	"are": true, "were": true, "been": true, "be": true, "have": true,
	"has": true, "had": true, "do": true, "does": true, "did": true,
	"will": true, "would": true, "could": true, "should": true, "may": true,
	"might": true, "can": true, "must": true, "shall": true,
}

// verbLexicon backs the verb-initial check. Covers the narrative verbs
// the corpus actually uses plus auxiliaries.
var verbLexicon = map[string]bool{
	"kill": true, "killed": true, "slay": true, "slew": true, "slain": true,
	"fight": true, "fought": true, "attack": true, "attacked": true,
	"defend": true, "defended": true, "command": true, "commanded": true,
	"order": true, "ordered": true, "grant": true, "granted": true,
	"curse": true, "cursed": true, "vow": true, "vowed": true,
	"swore": true, "swear": true, "die": true, "died": true,
	"perish": true, "perished": true, "retreat": true, "retreated": true,
	"pursue": true, "pursued": true, "rescue": true, "rescued": true,
	"support": true, "supported": true, "protect": true, "protected": true,
	"surround": true, "surrounded": true, "abandon": true, "abandoned": true,
	"defeat": true, "defeated": true, "having": true, "being": true,
	"is": true, "was": true, "are": true, "were": true, "be": true,
	"been": true, "has": true, "have": true, "had": true, "did": true,
	"went": true, "came": true, "said": true, "spoke": true, "told": true,
}

// LexiconRecognizer is the built-in Recognizer: curated name, group,
// and place lexicons plus a capitalization heuristic. It keeps the
// pipeline hermetic and deterministic when no external NER service is
// wired in.
type LexiconRecognizer struct {
	persons map[string]bool
	groups  map[string]bool
	places  map[string]bool
}

// defaultGroups are the collective actors of the corpus.
var defaultGroups = []string{
	"pandavas", "pandava", "kauravas", "kaurava", "kurus", "kuru",
	"panchalas", "panchala", "rakshasas", "srinjayas", "somakas",
}

// defaultPlaces are the geographic names of the corpus.
var defaultPlaces = []string{
	"kurukshetra", "hastinapura", "hastinapur", "indraprastha", "dwarka",
	"panchala", "matsya", "khandavaprastha", "magadha", "videha", "kashi",
	"kalinga", "sindhu", "avanti", "chedi", "trigarta", "anga", "bharata",
}

// NewLexiconRecognizer builds the default recognizer. The person
// lexicon is seeded from the alias seed groups so every known epithet
// is recognized as an actor.
func NewLexiconRecognizer(seeds map[string][]string) *LexiconRecognizer {
	r := &LexiconRecognizer{
		persons: make(map[string]bool),
		groups:  make(map[string]bool),
		places:  make(map[string]bool),
	}
	for canonical, aliases := range seeds {
		r.persons[alias.Normalize(canonical)] = true
		for _, a := range aliases {
			r.persons[alias.Normalize(a)] = true
		}
	}
	for _, g := range defaultGroups {
		r.groups[g] = true
	}
	for _, p := range defaultPlaces {
		r.places[p] = true
	}
	return r
}

// token is a word with its byte offsets.
type token struct {
	text  string
	start int
	end   int
}

func tokenize(sentence string) []token {
	var tokens []token
	start := -1
	for i, r := range sentence {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = append(tokens, token{text: sentence[start:i], start: start, end: i})
			start = -1
		}
	}
	if start >= 0 {
		tokens = append(tokens, token{text: sentence[start:], start: start, end: len(sentence)})
	}
	return tokens
}

// Entities labels lexicon hits and, as a fallback, capitalized tokens
// that are not sentence-initial and not common words.
func (r *LexiconRecognizer) Entities(sentence string) []Span {
	var spans []Span
	for i, tok := range tokenize(sentence) {
		norm := strings.ToLower(tok.text)
		switch {
		case r.persons[norm]:
			spans = append(spans, Span{Text: tok.text, Label: "PERSON", Start: tok.start, End: tok.end})
		case r.groups[norm]:
			spans = append(spans, Span{Text: tok.text, Label: "ORG", Start: tok.start, End: tok.end})
		case r.places[norm]:
			spans = append(spans, Span{Text: tok.text, Label: "GPE", Start: tok.start, End: tok.end})
		case i > 0 && isCapitalized(tok.text) && !commonWords[norm] && !verbLexicon[norm]:
			spans = append(spans, Span{Text: tok.text, Label: "PERSON", Start: tok.start, End: tok.end})
		}
	}
	return spans
}

// VerbInitial reports whether the first token is in the verb lexicon.
func (r *LexiconRecognizer) VerbInitial(text string) bool {
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		return false
	}
	return verbLexicon[tokens[0]]
}

func isCapitalized(word string) bool {
	for _, r := range word {
		return unicode.IsUpper(r)
	}
	return false
}
