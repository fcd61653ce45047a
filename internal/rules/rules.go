// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rules holds the data-driven extraction rule tables: event
// detection patterns, argument role templates, tactical verb cues, and
// the alias seed lexicon. A YAML rules file can override any table
// without recompiling the pipeline.
package rules

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/saga-engine/pkg/types"
)

// EventPattern is one ordered detection group: a sentence matching any
// of the patterns is classified as an event of Type at Tier.
type EventPattern struct {
	Type     string          `yaml:"type"`
	Tier     types.EventTier `yaml:"tier"`
	Patterns []string        `yaml:"patterns"`
}

// RoleTemplate extracts one role-tagged span: Pre and Post anchor the
// cue context, Entity matches the span itself.
type RoleTemplate struct {
	Role   string `yaml:"role"`
	Pre    string `yaml:"pre"`
	Entity string `yaml:"entity"`
	Post   string `yaml:"post"`
}

// Rules bundles every rule table the pipeline consumes.
type Rules struct {
	// Events is the ordered list of detection pattern groups.
	Events []EventPattern `yaml:"events"`

	// MicroVerbs lists conversational/perceptual verbs whose presence
	// excludes a sentence from event detection.
	MicroVerbs []string `yaml:"micro_verbs"`

	// RoleTemplates maps an event type to its ordered role templates.
	RoleTemplates map[string][]RoleTemplate `yaml:"role_templates"`

	// TacticalVerbs are the cues that raise MESO confidence.
	TacticalVerbs []string `yaml:"tactical_verbs"`

	// AliasSeeds maps a canonical name to its known epithets.
	AliasSeeds map[string][]string `yaml:"alias_seeds"`
}

// MesoTypes returns the set of MESO-tier event types.
func (r Rules) MesoTypes() map[string]bool {
	meso := make(map[string]bool)
	for _, g := range r.Events {
		if g.Tier == types.TierMeso {
			meso[g.Type] = true
		}
	}
	return meso
}

// Load reads a YAML rules file and overlays it on the defaults: any
// table left empty in the file keeps its built-in value.
func Load(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("reading rules file %s: %w", path, err)
	}

	var loaded Rules
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return Rules{}, fmt.Errorf("parsing rules file %s: %w", path, err)
	}

	merged := Default()
	if len(loaded.Events) > 0 {
		merged.Events = loaded.Events
	}
	if len(loaded.MicroVerbs) > 0 {
		merged.MicroVerbs = loaded.MicroVerbs
	}
	if len(loaded.RoleTemplates) > 0 {
		merged.RoleTemplates = loaded.RoleTemplates
	}
	if len(loaded.TacticalVerbs) > 0 {
		merged.TacticalVerbs = loaded.TacticalVerbs
	}
	if len(loaded.AliasSeeds) > 0 {
		merged.AliasSeeds = loaded.AliasSeeds
	}
	return merged, nil
}

// Default returns the built-in rule tables.
func Default() Rules {
	return Rules{
		Events:        defaultEvents(),
		MicroVerbs:    defaultMicroVerbs(),
		RoleTemplates: defaultRoleTemplates(),
		TacticalVerbs: defaultTacticalVerbs(),
		AliasSeeds:    defaultAliasSeeds(),
	}
}

// defaultEvents lists the detection groups in matching order: MACRO
// narrative pivots first, then MESO tactical/relational actions.
func defaultEvents() []EventPattern {
	return []EventPattern{
		{Type: "KILL", Tier: types.TierMacro, Patterns: []string{
			`\b(?:kill|killed|slay|slew|slain|struck?\s+down|struck?\s+dead|smote|smitten|slaughter|beheaded|beheading|decapitated|murder|murdered)\b`,
		}},
		{Type: "COMMAND", Tier: types.TierMacro, Patterns: []string{
			`\b(?:command|commanded|led|ordered|instructed|directed|sent|dispatch|deputed)\b`,
		}},
		{Type: "BATTLE", Tier: types.TierMacro, Patterns: []string{
			`\b(?:battle|fought|fought\s+(?:with|against)|clash|combat|war|duel|skirmish|battle\s+(?:between|of)|fought\s+(?:in|at))\b`,
		}},
		{Type: "VOW", Tier: types.TierMacro, Patterns: []string{
			`\b(?:vow|vowed|vow(?:ing|ed)|swore|sworn|swear|oath|promise|promised)\b`,
		}},
		{Type: "CURSE", Tier: types.TierMacro, Patterns: []string{
			`\b(?:curse|cursed|curse\s+(?:upon|on)|cursing|accursed|doomed|condemned|imprecation)\b`,
		}},
		{Type: "BOON", Tier: types.TierMacro, Patterns: []string{
			`\b(?:boon|granted\s+a\s+boon|boon\s+(?:from|of)|granted|granted\s+(?:to|him)|favour|favor|gift|bestowed)\b`,
		}},
		{Type: "DEATH", Tier: types.TierMacro, Patterns: []string{
			`\b(?:died|death|perish|perished|fallen|fell|expire|expired|breathed\s+(?:his|her)\s+last|passed\s+away|succumb|succumbed)\b`,
		}},
		{Type: "CORONATION", Tier: types.TierMacro, Patterns: []string{
			`\b(?:crowned|coronation|anointed|installed\s+as\s+king|made\s+king|enthroned|ascended\s+(?:the\s+)?throne)\b`,
		}},
		{Type: "ENGAGED_IN_BATTLE", Tier: types.TierMeso, Patterns: []string{
			`\b(?:engaged\s+(?:in\s+)?(?:battle|combat|fight)|encountered\s+(?:in\s+)?battle|met\s+(?:in\s+)?battle|joined\s+battle\s+with|stood\s+against|opposed|confronted)\b`,
			`\b(?:advanced\s+against|assailed|attacked|surged\s+against)\b`,
		}},
		{Type: "DEFEATED", Tier: types.TierMeso, Patterns: []string{
			`\b(?:defeated|overcame|vanquished|routed|conquered|subdued|overpowered|worsted|broke\s+the\s+ranks\s+of)\b`,
		}},
		{Type: "PROTECTED", Tier: types.TierMeso, Patterns: []string{
			`\b(?:protected|defended|shielded|guarded|covered\s+the\s+retreat\s+of|supported|reinforced|held\s+firm\s+for)\b`,
		}},
		{Type: "PURSUED", Tier: types.TierMeso, Patterns: []string{
			`\b(?:pursued|chased|followed|hunted|tracked)\b`,
		}},
		{Type: "RESCUED", Tier: types.TierMeso, Patterns: []string{
			`\b(?:rescued|saved|delivered\s+from|liberated|freed)\b`,
		}},
		{Type: "APPOINTED_AS", Tier: types.TierMeso, Patterns: []string{
			`\b(?:appointed\s+(?:as)?|installed\s+as|made\s+(?:commander|general|minister|king)|designated\s+as)\b`,
		}},
		{Type: "ABANDONED", Tier: types.TierMeso, Patterns: []string{
			`\b(?:abandoned|left|forsook|deserted|renounced|retreated\s+before|fled\s+from|fell\s+back\s+before)\b`,
		}},
		{Type: "ATTACKED", Tier: types.TierMeso, Patterns: []string{
			`\b(?:attacked|assailed|assaulted|struck\s+at|charged\s+at|fell\s+upon|made\s+war\s+upon)\b`,
		}},
		{Type: "DEFENDED", Tier: types.TierMeso, Patterns: []string{
			`\b(?:defended|shielded|protected|held\s+the\s+line\s+against|stood\s+fast\s+against)\b`,
		}},
		{Type: "RETREATED", Tier: types.TierMeso, Patterns: []string{
			`\b(?:retreated|fell\s+back|withdrew|fled\s+from|turned\s+back\s+before)\b`,
		}},
		{Type: "SURROUNDED", Tier: types.TierMeso, Patterns: []string{
			`\b(?:surrounded|encompassed|hemmed\s+in|closed\s+in\s+upon)\b`,
		}},
		{Type: "SUPPORTED", Tier: types.TierMeso, Patterns: []string{
			`\b(?:supported|reinforced|succoured|came\s+to\s+the\s+aid\s+of|covered\s+the\s+retreat\s+of)\b`,
		}},
		{Type: "FORMED_ARRAY_AGAINST", Tier: types.TierMeso, Patterns: []string{
			`\b(?:formed\s+(?:an\s+)?array\s+against|arrayed\s+against|drew\s+up\s+against|entered\s+the\s+ranks\s+of)\b`,
		}},
	}
}

func defaultMicroVerbs() []string {
	return []string{
		"said", "spoke", "replied", "answered", "told", "asked", "questioned",
		"went", "came", "arrived", "departed", "returned", "reached",
		"saw", "looked", "beheld", "witnessed", "observed",
		"thought", "knew", "understood", "remembered", "forgot",
		"stood", "sat", "lay", "arose", "rose",
	}
}

// defaultRoleTemplates maps MACRO event types to ordered extraction
// templates. MESO types have no templates; their participants come from
// named-entity recognition subject to the multi-actor gate.
func defaultRoleTemplates() map[string][]RoleTemplate {
	return map[string][]RoleTemplate{
		"KILL": {
			{Role: "agent", Pre: `\b(?:who|X)\b`, Entity: `[a-z]+(?:\s+of\s+\w+)*`, Post: `(?:\s+kill|\s+slew)`},
			{Role: "patient", Pre: `(?:killed|slew|slain)\s+`, Entity: `[a-z]+(?:\s+(?:of|the)\s+\w+)*`, Post: `(?:\s|,|\.|$)`},
		},
		"COMMAND": {
			{Role: "agent", Pre: `(?:, )?`, Entity: `[a-z]+(?:\s+\w+)*`, Post: `(?:\s+commanded|\s+ordered)`},
			{Role: "patient", Pre: `(?:commanded|ordered)\s+`, Entity: `[a-z]+(?:\s+\w+)*`, Post: `(?:\s+(?:to|not)\s|\s|,|\.|$)`},
		},
		"BATTLE": {
			{Role: "agent1", Pre: `(?:between|with)\s+`, Entity: `[a-z]+(?:\s+and\s+|,\s+)*`, Post: `(?:\s+and|\s+,)`},
			{Role: "agent2", Pre: `(?:\s+and|\s+,)\s+`, Entity: `[a-z]+(?:\s+\w+)*`, Post: `(?:\s|,|\.|$)`},
		},
		"VOW": {
			{Role: "agent", Pre: `(?:, )?`, Entity: `[a-z]+(?:\s+\w+)*`, Post: `(?:\s+vowed|\s+swore)`},
		},
		"BIRTH": {
			{Role: "agent", Pre: `(?:, )?`, Entity: `[a-z]+(?:\s+\w+)*`, Post: `(?:\s+was\s+born|was\s+begotten)`},
		},
		"CURSE": {
			{Role: "agent", Pre: `(?:, )?`, Entity: `[a-z]+(?:\s+\w+)*`, Post: `(?:\s+cursed)`},
			{Role: "patient", Pre: `(?:cursed)\s+`, Entity: `[a-z]+(?:\s+\w+)*`, Post: `(?:\s|,|\.|$)`},
		},
		"BOON": {
			{Role: "agent", Pre: `(?:, )?`, Entity: `[a-z]+(?:\s+\w+)*`, Post: `(?:\s+granted)`},
			{Role: "recipient", Pre: `(?:granted)\s+(?:to\s+)?`, Entity: `[a-z]+(?:\s+\w+)*`, Post: `(?:\s|,|\.|$)`},
		},
		"EXILE": {
			{Role: "agent", Pre: `(?:, )?`, Entity: `[a-z]+(?:\s+\w+)*`, Post: `(?:\s+was\s+exiled|\s+was\s+banished)`},
		},
		"DEATH": {
			{Role: "agent", Pre: `(?:, )?`, Entity: `[a-z]+(?:\s+\w+)*`, Post: `(?:\s+died|\s+perished)`},
		},
	}
}

func defaultTacticalVerbs() []string {
	return []string{
		"attack", "assail", "assault", "strike", "charged", "fell upon", "made war",
		"defend", "shield", "protect", "hold the line", "stood fast",
		"pursue", "chase", "hunt", "follow",
		"retreat", "withdrew", "fled", "fell back", "turned back",
		"surround", "hemmed in", "closed in", "arrayed", "formed array", "entered the ranks",
		"support", "reinforce", "succour", "cover the retreat",
	}
}

// defaultAliasSeeds maps major characters to their epithets. The seeds
// give deterministic, zero-cost resolution for the names that dominate
// the corpus; everything else goes through the clustering resolver.
func defaultAliasSeeds() map[string][]string {
	return map[string][]string{
		"arjuna":       {"arjuna", "partha", "dhananjaya", "vibhatsu", "kiritin", "phalguna"},
		"bhima":        {"bhima", "bhimasena", "vrikodara"},
		"yudhishthira": {"yudhishthira", "dharma"},
		"nakula":       {"nakula"},
		"sahadeva":     {"sahadeva"},
		"duryodhana":   {"duryodhana", "suyodhana"},
		"duhsasana":    {"duhsasana"},
		"krishna":      {"krishna", "keshava", "vasudeva", "janardana", "madhava", "achyuta"},
		"bhishma":      {"bhishma"},
		"drona":        {"drona"},
		"karna":        {"karna", "radheya", "vasusena"},
		"draupadi":     {"draupadi", "panchali"},
		"kunti":        {"kunti", "pritha"},
		"gandhari":     {"gandhari"},
	}
}
