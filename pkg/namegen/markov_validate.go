package namegen

// Validate checks that the engine's arenas, indexes, and weights agree with
// each other.
func (m *Markov) Validate() error {
	if len(m.maxTokens) != len(m.tokens) {
		return newValidationError(markovKind, "token frequency table has %d entries for %d tokens", len(m.maxTokens), len(m.tokens))
	}
	seen := make(map[string]struct{}, len(m.tokens))
	for i, t := range m.tokens {
		if t == "" {
			return newValidationError(markovKind, "token %d is empty", i)
		}
		if _, ok := seen[t]; ok {
			return newValidationError(markovKind, "token %q is defined more than once", t)
		}
		seen[t] = struct{}{}
	}

	validToken := func(t int) bool { return t >= 0 && t < len(m.tokens) }
	validNode := func(n int) bool { return n >= 0 && n < len(m.nodes) }

	startSum := 0
	for i, s := range m.starts {
		if !validToken(s.tokens[0]) || !validToken(s.tokens[1]) {
			return newValidationError(markovKind, "start %d refers to a missing token", i)
		}
		if s.weight <= 0 {
			return newValidationError(markovKind, "start %d has non-positive weight %d", i, s.weight)
		}
		if m.restrictStartLength && s.length < 3 {
			return newValidationError(markovKind, "start %d has length %d below 3", i, s.length)
		}
		for _, c := range s.children {
			if !validNode(c) {
				return newValidationError(markovKind, "start %d links to missing node %d", i, c)
			}
		}
		if len(s.children) == 0 || m.childWeight(s.children) <= 0 {
			return newValidationError(markovKind, "start %d has no reachable continuation", i)
		}
		startSum += s.weight
	}
	if startSum != m.totalStarts {
		return newValidationError(markovKind, "start weights sum to %d, total is %d", startSum, m.totalStarts)
	}

	lengthSum := 0
	for i, w := range m.lengths {
		if w < 0 {
			return newValidationError(markovKind, "length %d has negative weight %d", i+3, w)
		}
		lengthSum += w
	}
	if lengthSum != m.totalLengths {
		return newValidationError(markovKind, "length weights sum to %d, total is %d", lengthSum, m.totalLengths)
	}
	if m.totalLengths != m.totalStarts {
		return newValidationError(markovKind, "%d lengths recorded for %d starts", m.totalLengths, m.totalStarts)
	}

	for i, n := range m.nodes {
		if !validToken(n.token) || !validToken(n.prev[0]) || !validToken(n.prev[1]) {
			return newValidationError(markovKind, "node %d refers to a missing token", i)
		}
		if n.weight <= 0 {
			return newValidationError(markovKind, "node %d has non-positive weight %d", i, n.weight)
		}
		if m.restrictMiddleLength && !n.ending && n.length < 3 {
			return newValidationError(markovKind, "middle node %d has length %d below 3", i, n.length)
		}
		if m.restrictEndLength && n.ending && n.length < 3 {
			return newValidationError(markovKind, "ending node %d has length %d below 3", i, n.length)
		}
		if n.ending && len(n.children) > 0 {
			return newValidationError(markovKind, "ending node %d has %d children", i, len(n.children))
		}
		for _, c := range n.children {
			if !validNode(c) {
				return newValidationError(markovKind, "node %d links to missing node %d", i, c)
			}
		}
	}

	expected := nodeWeights(m.nodes)
	for i, n := range m.nodes {
		if n.weight != expected[i] {
			return newValidationError(markovKind, "node %d has weight %d, expected %d", i, n.weight, expected[i])
		}
	}

	return nil
}
