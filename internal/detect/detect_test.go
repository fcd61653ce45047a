package detect

import (
	"testing"

	"github.com/pdiddy/saga-engine/internal/rules"
	"github.com/pdiddy/saga-engine/pkg/types"
)

func newDetector(t *testing.T) *Detector {
	t.Helper()
	d, err := New(rules.Default())
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "two sentences",
			text: "Arjuna killed Karna. Bhima rejoiced.",
			want: []string{"Arjuna killed Karna.", "Bhima rejoiced."},
		},
		{
			name: "abbreviation stays attached",
			text: "The battle raged on.And the host broke.",
			want: []string{"The battle raged on.And the host broke."},
		},
		{
			name: "trailing fragment without terminator",
			text: "The vow was sworn! And then",
			want: []string{"The vow was sworn!", "And then"},
		},
		{
			name: "empty input",
			text: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSentences(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d sentences %v, want %d", len(got), got, len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("sentence %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestCleanSentence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"url stripped", "See https://example.org/x for the text", "See for the text"},
		{"html file marker stripped", "As told in m03044.htm the king fell", "As told in the king fell"},
		{"narration lead-in stripped", "said,--Let the battle begin", "Let the battle begin"},
		{"whitespace collapsed", "the  host \n broke", "the host broke"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanSentence(tt.in); got != tt.want {
				t.Errorf("CleanSentence(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDetectMacroEvent(t *testing.T) {
	d := newDetector(t)
	chunk := types.Chunk{
		ChunkID: "chunk_0001",
		Parva:   "Karna Parva",
		Section: "Section 91",
		Text:    "Then Arjuna slew Karna with a fierce arrow. The troops wept.",
	}

	events := d.Detect(chunk)
	if len(events) == 0 {
		t.Fatal("expected at least one detected event")
	}

	var kill *types.DetectedEvent
	for i := range events {
		if events[i].Type == "KILL" {
			kill = &events[i]
		}
	}
	if kill == nil {
		t.Fatalf("no KILL event in %v", events)
	}
	if kill.Tier != types.TierMacro {
		t.Errorf("KILL tier = %s, want MACRO", kill.Tier)
	}
	if kill.ChunkID != "chunk_0001" || kill.Parva != "Karna Parva" || kill.Section != "Section 91" {
		t.Errorf("source evidence not carried: %+v", kill)
	}
	if kill.SentenceIndex != 0 {
		t.Errorf("sentence index = %d, want 0", kill.SentenceIndex)
	}
}

func TestDetectMicroVerbExcluded(t *testing.T) {
	d := newDetector(t)
	chunk := types.Chunk{
		ChunkID: "chunk_0002",
		Parva:   "Adi Parva",
		Section: "Section 1",
		Text:    "Then Vaisampayana said the king had been slain long ago.",
	}

	if events := d.Detect(chunk); len(events) != 0 {
		t.Errorf("conversational sentence produced %d events, want 0", len(events))
	}
}

func TestDetectShortFragmentSkipped(t *testing.T) {
	d := newDetector(t)
	chunk := types.Chunk{ChunkID: "c", Parva: "p", Section: "s", Text: "So. "}
	if events := d.Detect(chunk); len(events) != 0 {
		t.Errorf("fragment produced %d events, want 0", len(events))
	}
}

func TestDetectMultipleTypesSameSentence(t *testing.T) {
	d := newDetector(t)
	chunk := types.Chunk{
		ChunkID: "chunk_0003",
		Parva:   "Drona Parva",
		Section: "Section 7",
		Text:    "In that battle Bhima attacked the Kaurava host with his mace raised high.",
	}

	events := d.Detect(chunk)
	found := make(map[string]bool)
	for _, ev := range events {
		found[ev.Type] = true
	}
	if !found["BATTLE"] {
		t.Errorf("BATTLE not detected in %v", found)
	}
	if !found["ATTACKED"] {
		t.Errorf("ATTACKED not detected in %v", found)
	}
}
