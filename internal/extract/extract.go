// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract recovers role-tagged participant arguments from
// detected event sentences. MACRO events use role templates anchored on
// the event verb; MESO events lean on named-entity recognition and must
// pass a multi-actor confidence gate before any argument survives.
package extract

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/pdiddy/saga-engine/internal/rules"
	"github.com/pdiddy/saga-engine/pkg/types"
)

// nerSupplementLimit: recognizer output supplements template extraction
// only when the templates found fewer arguments than this.
const nerSupplementLimit = 3

// pronounBlocklist rejects anaphora as entity candidates. The corpus is
// archaic English, so thou/thee/thy are in scope.
var pronounBlocklist = map[string]bool{
	"thou": true, "thee": true, "thy": true, "him": true, "her": true,
	"they": true, "them": true, "his": true, "hers": true, "their": true,
	"who": true, "whom": true, "whose": true, "he": true, "she": true,
	"it": true, "we": true, "you": true, "i": true, "me": true, "my": true,
}

// stopPhrases reject gerund lead-ins and connective fragments.
var stopPhrases = []string{
	"having", "being", "the presence", "the act of",
	"in order to", "which is", "that is", "as well as",
}

// prepositions backs the glue-word-only rejection rule.
var prepositions = map[string]bool{
	"the": true, "of": true, "in": true, "on": true, "at": true,
	"to": true, "from": true, "for": true, "by": true, "with": true,
}

var (
	edgePunct    = regexp.MustCompile(`^\W+|\W+$`)
	leadInWords  = regexp.MustCompile(`(?i)^(?:the|a|an|and|or|but|with|of|from|to|for|in|by|at)\s+`)
	trailerWords = regexp.MustCompile(`(?i)\s+(?:the|a|an|and|or|but|with|of|from|to|for|in|by|at)$`)
)

// compiledTemplate is a role template with its pattern assembled. The
// entity span is always capture group 2.
type compiledTemplate struct {
	role    string
	pattern *regexp.Regexp
}

// Extractor turns detected events into extracted events with validated
// arguments.
type Extractor struct {
	templates     map[string][]compiledTemplate
	tacticalVerbs []*regexp.Regexp
	mesoTypes     map[string]bool
	recognizer    Recognizer
	meso          types.MesoConfig
}

// NewExtractor compiles the rule set's role templates. The recognizer
// supplements template extraction and feeds the MESO actor/place
// signals; pass nil to run template-only.
func NewExtractor(r rules.Rules, rec Recognizer, meso types.MesoConfig) (*Extractor, error) {
	e := &Extractor{
		templates:  make(map[string][]compiledTemplate),
		mesoTypes:  r.MesoTypes(),
		recognizer: rec,
		meso:       meso,
	}

	for eventType, templates := range r.RoleTemplates {
		for _, t := range templates {
			full := fmt.Sprintf(`(?i)(%s)(%s)(%s)`, t.Pre, t.Entity, t.Post)
			re, err := regexp.Compile(full)
			if err != nil {
				return nil, fmt.Errorf("compiling %s role template %s: %w", eventType, t.Role, err)
			}
			e.templates[eventType] = append(e.templates[eventType], compiledTemplate{role: t.Role, pattern: re})
		}
	}

	for _, v := range r.TacticalVerbs {
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(v) + `\b`)
		if err != nil {
			return nil, fmt.Errorf("compiling tactical verb %q: %w", v, err)
		}
		e.tacticalVerbs = append(e.tacticalVerbs, re)
	}

	return e, nil
}

// Extract recovers the arguments of one detected event. The returned
// event always carries the detection metadata; a MESO event that fails
// the confidence gate keeps an empty argument list rather than being
// dropped.
func (e *Extractor) Extract(detected types.DetectedEvent) types.ExtractedEvent {
	var arguments []types.Argument

	for _, t := range e.templates[detected.Type] {
		for _, loc := range t.pattern.FindAllStringSubmatchIndex(detected.Sentence, -1) {
			start, end := loc[4], loc[5]
			if start < 0 {
				continue
			}
			cleaned := CleanEntityText(detected.Sentence[start:end])
			if cleaned == "" || !e.ValidCandidate(cleaned) {
				continue
			}
			arguments = append(arguments, types.Argument{
				Role:  t.role,
				Text:  cleaned,
				Start: start,
				End:   end,
			})
		}
	}

	if e.recognizer != nil && len(arguments) < nerSupplementLimit {
		arguments = append(arguments, e.recognizerArguments(detected.Sentence)...)
	}

	arguments = dedupeArguments(arguments)

	if e.mesoTypes[detected.Type] {
		if ok, _ := e.assessMesoEvent(detected, arguments); !ok {
			arguments = nil
		}
	}

	return types.ExtractedEvent{DetectedEvent: detected, Arguments: arguments}
}

// Batch extracts arguments from every detected event. No event is ever
// dropped here; extraction failure means an empty argument list, and
// the event node still carries its sentence as narrative evidence.
func (e *Extractor) Batch(events []types.DetectedEvent) []types.ExtractedEvent {
	extracted := make([]types.ExtractedEvent, 0, len(events))
	for _, ev := range events {
		extracted = append(extracted, e.Extract(ev))
	}
	return extracted
}

// recognizerArguments converts recognizer spans into arguments. Only
// PERSON, ORG, and GPE spans supplement; LOC/FAC spans are place
// context, not participants. PERSON spans become agents; the rest
// become groups.
func (e *Extractor) recognizerArguments(sentence string) []types.Argument {
	var args []types.Argument
	for _, span := range e.recognizer.Entities(sentence) {
		switch span.Label {
		case "PERSON", "ORG", "GPE":
		default:
			continue
		}
		if !e.ValidCandidate(span.Text) {
			continue
		}
		role := "group"
		if span.Label == "PERSON" {
			role = "agent"
		}
		args = append(args, types.Argument{
			Role:  role,
			Text:  span.Text,
			Start: span.Start,
			End:   span.End,
		})
	}
	return args
}

// assessMesoEvent applies the multi-actor requirement and confidence
// scoring to a MESO event. Actors come from recognizer PERSON/ORG
// spans, falling back to the extracted arguments when recognition finds
// none; places come from GPE/LOC/FAC spans. The event keeps its
// arguments only when the multi-actor requirement holds AND the score
// reaches the gate.
func (e *Extractor) assessMesoEvent(detected types.DetectedEvent, arguments []types.Argument) (bool, string) {
	sentence := detected.Sentence
	sentenceLower := strings.ToLower(sentence)
	tokenLen := len(strings.Fields(sentence))

	actors := make(map[string]bool)
	places := make(map[string]bool)
	if e.recognizer != nil {
		for _, span := range e.recognizer.Entities(sentence) {
			switch span.Label {
			case "PERSON", "ORG":
				actors[strings.ToLower(span.Text)] = true
			case "GPE", "LOC", "FAC":
				places[strings.ToLower(span.Text)] = true
			}
		}
	}
	if len(actors) == 0 {
		for _, arg := range arguments {
			actors[strings.ToLower(arg.Text)] = true
		}
	}

	multiActor := len(actors) >= 2 || (len(actors) >= 1 && len(places) >= 1)

	confidence := 0
	if multiActor {
		confidence += e.meso.MultiActorScore
	}
	if e.hasTacticalVerb(sentenceLower) {
		confidence += e.meso.TacticalVerbScore
	}
	if len(places) >= 1 {
		confidence += e.meso.PlaceScore
	}
	if tokenLen < e.meso.ShortSentenceTokens {
		confidence -= e.meso.ShortSentencePenalty
	}

	if !multiActor {
		return false, "no_actors"
	}
	if confidence < e.meso.ConfidenceGate {
		return false, "low_confidence"
	}
	return true, "accepted"
}

func (e *Extractor) hasTacticalVerb(sentenceLower string) bool {
	for _, re := range e.tacticalVerbs {
		if re.MatchString(sentenceLower) {
			return true
		}
	}
	return false
}

// ValidCandidate applies the hard admission filters to a candidate
// span. Every rule is mandatory; a span failing any one never becomes
// an argument.
func (e *Extractor) ValidCandidate(text string) bool {
	if len(text) < 2 {
		return false
	}

	textLower := strings.ToLower(strings.TrimSpace(text))
	tokens := strings.Fields(textLower)

	if pronounBlocklist[textLower] {
		return false
	}
	if len(tokens) > 4 {
		return false
	}
	if e.recognizer != nil && e.recognizer.VerbInitial(text) {
		return false
	}
	for _, phrase := range stopPhrases {
		if strings.Contains(textLower, phrase) {
			return false
		}
	}
	// All-lowercase multi-token spans of common words are connective
	// tissue, not names.
	if text == textLower && len(tokens) > 1 {
		allCommon := true
		for _, t := range tokens {
			if !commonWords[t] {
				allCommon = false
				break
			}
		}
		if allCommon {
			return false
		}
	}
	if isDigits(strings.ReplaceAll(textLower, " ", "")) {
		return false
	}
	if !hasAlnum(text) {
		return false
	}
	for _, pattern := range []string{".htm", "http", "www", ".com"} {
		if strings.Contains(textLower, pattern) {
			return false
		}
	}
	if len(tokens) > 0 {
		allPreps := true
		for _, t := range tokens {
			if !prepositions[t] {
				allPreps = false
				break
			}
		}
		if allPreps {
			return false
		}
	}

	return true
}

// CleanEntityText strips edge punctuation and leading or trailing glue
// words, and collapses whitespace.
func CleanEntityText(text string) string {
	text = edgePunct.ReplaceAllString(text, "")
	text = leadInWords.ReplaceAllString(text, "")
	text = trailerWords.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}

// dedupeArguments drops repeat (text, role) pairs, keeping first-seen
// order.
func dedupeArguments(args []types.Argument) []types.Argument {
	type key struct {
		text string
		role string
	}
	seen := make(map[key]bool)
	deduped := args[:0:0]
	for _, arg := range args {
		k := key{text: strings.ToLower(arg.Text), role: arg.Role}
		if seen[k] {
			continue
		}
		seen[k] = true
		deduped = append(deduped, arg)
	}
	return deduped
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func hasAlnum(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
