package namegen

// Stats summarizes the size of a learned engine. Fields that do not apply to
// an engine's kind are zero.
type Stats struct {
	Kind        string `json:"kind"`
	Tokens      int    `json:"tokens"`              // Markov tokens or Grammar tokens.
	Subtokens   int    `json:"subtokens,omitempty"` // Grammar only.
	Starts      int    `json:"starts,omitempty"`    // Unique Markov starts.
	Nodes       int    `json:"nodes,omitempty"`     // Markov transition nodes.
	Rules       int    `json:"rules,omitempty"`     // Grammar slots.
	Results     int    `json:"results,omitempty"`   // Grammar row shapes.
	Words       int    `json:"words,omitempty"`     // WordList entries.
	TotalWeight int    `json:"total_weight"`        // Samples learned, or summed word weight.
}

// Stats returns the current size of the engine.
func (m *Markov) Stats() Stats {
	return Stats{
		Kind:        markovKind,
		Tokens:      len(m.tokens),
		Starts:      len(m.starts),
		Nodes:       len(m.nodes),
		TotalWeight: m.totalStarts,
	}
}

// Stats returns the current size of the engine.
func (g *Grammar) Stats() Stats {
	return Stats{
		Kind:        grammarKind,
		Tokens:      len(g.tokens),
		Subtokens:   len(g.subtokens),
		Rules:       len(g.rules),
		Results:     len(g.results),
		TotalWeight: g.totalWeight,
	}
}

// Stats returns the current size of the list.
func (l *WordList) Stats() Stats {
	return Stats{
		Kind:        wordListKind,
		Words:       len(l.words),
		TotalWeight: l.totalWeight,
	}
}

// StatsOf returns the stats of gen if it reports them.
func StatsOf(gen Generator) (Stats, bool) {
	s, ok := gen.(interface{ Stats() Stats })
	if !ok {
		return Stats{}, false
	}
	return s.Stats(), true
}
