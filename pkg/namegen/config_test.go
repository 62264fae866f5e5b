package namegen

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

const testDefinition = `
id: elves
parts:
  - name: first
    kind: markov
    tokens: [th, ae]
    restrict_token_frequency: true
    rules:
      - op: capitalize_first
  - name: house
    kind: grammar
    restrict_adjacent_subtokens: true
    rules:
      - op: capitalize_first
  - name: title
    kind: wordlist
formats:
  - name: full
    template: "{first} of {house}"
  - name: formal
    template: "{title} {:full}"
learn:
  - part: first
    samples: [thaelia, aerin, elrond, galadriel, thranduil]
  - part: house
    labels: [root, suffix]
    samples:
      - [gond, or]
      - [lor, ien]
      - tokens: [imlad, ris]
  - part: title
    samples:
      - word: lord
        weight: 3
      - lady
`

func TestNameConfigYAML(t *testing.T) {
	var cfg NameConfig
	if err := yaml.Unmarshal([]byte(testDefinition), &cfg); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}

	if cfg.ID != "elves" || len(cfg.Parts) != 3 || len(cfg.Learn) != 3 {
		t.Fatalf("decoded config = %+v", cfg)
	}
	house := cfg.Learn[1].Samples
	if house[0].Kind() != KindTokens || house[2].Kind() != KindTokens || len(house[2].Tokens) != 2 {
		t.Errorf("house samples = %+v, want token samples", house)
	}
	title := cfg.Learn[2].Samples
	if !reflect.DeepEqual(title[0], WeightedWord("lord", 3)) || !reflect.DeepEqual(title[1], Word("lady")) {
		t.Errorf("title samples = %+v", title)
	}

	n, err := cfg.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if err := n.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	names, err := n.Generator(1, "formal").Take(20)
	if err != nil {
		t.Fatalf("Take() error = %v", err)
	}
	for _, name := range names {
		if !strings.HasPrefix(name, "lord ") && !strings.HasPrefix(name, "lady ") {
			t.Errorf("generated %q, want a title prefix", name)
		}
		if !strings.Contains(name, " of ") {
			t.Errorf("generated %q, want the full format", name)
		}
	}
}

func TestSampleJSONShorthand(t *testing.T) {
	var samples []Sample
	data := `["aria", ["t", "a"], {"word": "bella", "weight": 2}, {"tokens": ["k"]}]`
	if err := json.Unmarshal([]byte(data), &samples); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}

	if len(samples) != 4 {
		t.Fatalf("decoded %d samples, want 4", len(samples))
	}
	if !reflect.DeepEqual(samples[0], Word("aria")) {
		t.Errorf("samples[0] = %+v, want word aria", samples[0])
	}
	if samples[1].Kind() != KindTokens || strings.Join(samples[1].Tokens, "") != "ta" {
		t.Errorf("samples[1] = %+v, want tokens t a", samples[1])
	}
	if !reflect.DeepEqual(samples[2], WeightedWord("bella", 2)) {
		t.Errorf("samples[2] = %+v, want weighted bella", samples[2])
	}
	if samples[3].Kind() != KindTokens {
		t.Errorf("samples[3] = %+v, want tokens", samples[3])
	}
}

func TestSampleJSONKeepsKind(t *testing.T) {
	samples := []Sample{Word("aria"), WeightedWord("bella", 3), Tokens("t", "a"), Tokens()}
	for _, s := range samples {
		data, err := json.Marshal(s)
		if err != nil {
			t.Fatalf("json.Marshal(%+v) error = %v", s, err)
		}
		var got Sample
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("json.Unmarshal(%s) error = %v", data, err)
		}
		if !reflect.DeepEqual(got, s) {
			t.Errorf("round trip of %+v gave %+v (%s)", s, got, data)
		}
	}

	lerr := newLearnError(LabelLengthMismatch, &Sample{Tokens: []string{}}, "at least one column required")
	data, err := json.Marshal(lerr)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	var decoded LearnError
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if decoded.Sample == nil || decoded.Sample.Kind() != KindTokens {
		t.Errorf("decoded learn error sample = %+v, want a tokens sample", decoded.Sample)
	}
}

func TestNameConfigBuildErrors(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     NameConfig
		wantErr error
	}{
		{name: "No parts", cfg: NameConfig{}},
		{name: "Unknown kind", cfg: NameConfig{Parts: []PartConfig{{Name: "a", Kind: "neural"}}}},
		{name: "Bad rule", cfg: NameConfig{Parts: []PartConfig{{Name: "a", Kind: KindWordList, Rules: []FormattingRule{{Op: Remove}}}}}},
		{name: "Duplicate part", cfg: NameConfig{Parts: []PartConfig{{Name: "a", Kind: KindWordList}, {Name: "a", Kind: KindMarkov}}}, wantErr: ErrDuplicatePart},
		{
			name: "Learn unknown part",
			cfg: NameConfig{
				Parts: []PartConfig{{Name: "a", Kind: KindWordList}},
				Learn: []SampleSetConfig{{Part: "b", Samples: []Sample{Word("x")}}},
			},
			wantErr: ErrPartNotFound,
		},
		{
			name: "Learn bad sample",
			cfg: NameConfig{
				Parts: []PartConfig{{Name: "a", Kind: KindMarkov}},
				Learn: []SampleSetConfig{{Part: "a", Samples: []Sample{Word("x")}}},
			},
			wantErr: ErrInsufficientTokens,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.cfg.Build()
			if err == nil {
				t.Fatal("Build() succeeded, want error")
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Errorf("Build() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}
