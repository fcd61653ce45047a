// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package detect classifies corpus sentences into typed narrative
// events using ordered rule patterns. Detection is pure: it never
// errors and has no side effects beyond returning classifications.
package detect

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/saga-engine/internal/rules"
	"github.com/pdiddy/saga-engine/pkg/types"
)

// minSentenceLen discards fragments too short to describe an event.
const minSentenceLen = 5

var (
	urlPattern       = regexp.MustCompile(`https?://\S+`)
	filePattern      = regexp.MustCompile(`file://\S+`)
	htmlFilePattern  = regexp.MustCompile(`\b[mM]\d+\w*\.htm`)
	wwwPattern       = regexp.MustCompile(`\bwww\.\S+`)
	narrationPattern = regexp.MustCompile(`(?i)\b(?:said|spoke|replied|answered|continued),?--`)
	spacePattern     = regexp.MustCompile(`\s+`)
)

// group is one compiled detection pattern group.
type group struct {
	eventType string
	tier      types.EventTier
	patterns  []*regexp.Regexp
}

// Detector is a rule-based event detector over the ordered pattern
// groups of a rule set.
type Detector struct {
	groups     []group
	microVerbs *regexp.Regexp
}

// New compiles the rule set into a Detector. Compilation failures in an
// externally supplied rules file surface as errors here rather than at
// detection time.
func New(r rules.Rules) (*Detector, error) {
	d := &Detector{}

	for _, g := range r.Events {
		cg := group{eventType: g.Type, tier: g.Tier}
		for _, p := range g.Patterns {
			re, err := regexp.Compile(`(?i)` + p)
			if err != nil {
				return nil, fmt.Errorf("compiling pattern for %s: %w", g.Type, err)
			}
			cg.patterns = append(cg.patterns, re)
		}
		d.groups = append(d.groups, cg)
	}

	quoted := make([]string, 0, len(r.MicroVerbs))
	for _, v := range r.MicroVerbs {
		quoted = append(quoted, regexp.QuoteMeta(v))
	}
	micro, err := regexp.Compile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
	if err != nil {
		return nil, fmt.Errorf("compiling micro-verb blocklist: %w", err)
	}
	d.microVerbs = micro

	return d, nil
}

// Detect splits the chunk text into sentences, cleans each one, and
// classifies it against every pattern group. A sentence may match
// several event types; only the first matching pattern per type is
// recorded. Empty input yields an empty result.
func (d *Detector) Detect(chunk types.Chunk) []types.DetectedEvent {
	var events []types.DetectedEvent

	for idx, sentence := range SplitSentences(chunk.Text) {
		cleaned := CleanSentence(sentence)
		if len(cleaned) < minSentenceLen {
			continue
		}
		// Sentences dominated by conversational or perceptual verbs are
		// narration, not narrative events.
		if d.microVerbs.MatchString(cleaned) {
			continue
		}

		for _, g := range d.groups {
			for _, p := range g.patterns {
				if p.MatchString(cleaned) {
					events = append(events, types.DetectedEvent{
						Type:          g.eventType,
						Tier:          g.tier,
						Sentence:      cleaned,
						SentenceIndex: idx,
						ChunkID:       chunk.ChunkID,
						Parva:         chunk.Parva,
						Section:       chunk.Section,
					})
					break
				}
			}
		}
	}

	return events
}

// CleanSentence strips URLs, file markers, and narration lead-ins
// ("said,--") and collapses whitespace.
func CleanSentence(sentence string) string {
	sentence = urlPattern.ReplaceAllString(sentence, "")
	sentence = filePattern.ReplaceAllString(sentence, "")
	sentence = htmlFilePattern.ReplaceAllString(sentence, "")
	sentence = wwwPattern.ReplaceAllString(sentence, "")
	sentence = narrationPattern.ReplaceAllString(sentence, "")
	sentence = spacePattern.ReplaceAllString(sentence, " ")
	return strings.TrimSpace(sentence)
}

// SplitSentences breaks text on sentence-final punctuation followed by
// whitespace.
func SplitSentences(text string) []string {
	var sentences []string
	start := 0

	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '.' && c != '!' && c != '?' {
			continue
		}
		if i+1 < len(text) && !isSpace(text[i+1]) {
			continue
		}
		if s := strings.TrimSpace(text[start : i+1]); s != "" {
			sentences = append(sentences, s)
		}
		start = i + 1
	}

	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
