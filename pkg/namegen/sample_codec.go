package namegen

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// sampleFields has Sample's fields without its methods, so decoding into it
// does not recurse.
type sampleFields Sample

// MarshalJSON always writes the token list of a tokens sample, even when it
// is empty, so the sample decodes as a tokens sample again.
func (s Sample) MarshalJSON() ([]byte, error) {
	if s.Kind() == KindTokens {
		return json.Marshal(struct {
			Tokens []string `json:"tokens"`
		}{Tokens: s.Tokens})
	}
	return json.Marshal(sampleFields(s))
}

// UnmarshalJSON accepts a plain string as a word sample and an array of
// strings as a tokens sample, besides the object form.
func (s *Sample) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) > 0 && data[0] == '"':
		var word string
		if err := json.Unmarshal(data, &word); err != nil {
			return err
		}
		*s = Word(word)
		return nil
	case len(data) > 0 && data[0] == '[':
		var tokens []string
		if err := json.Unmarshal(data, &tokens); err != nil {
			return err
		}
		*s = Tokens(tokens...)
		return nil
	}

	var f sampleFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*s = Sample(f)
	return nil
}

// UnmarshalYAML accepts the same shorthand forms as UnmarshalJSON.
func (s *Sample) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*s = Word(node.Value)
		return nil
	case yaml.SequenceNode:
		var tokens []string
		if err := node.Decode(&tokens); err != nil {
			return err
		}
		*s = Tokens(tokens...)
		return nil
	}

	var f sampleFields
	if err := node.Decode(&f); err != nil {
		return err
	}
	*s = Sample(f)
	return nil
}
