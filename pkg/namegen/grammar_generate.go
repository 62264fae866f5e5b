package namegen

// Generate produces one name. A learned row shape is chosen by weight, then
// each slot is filled with a uniformly chosen value from its pool. When a
// slot runs out of values the previous slot is reconsidered; when the
// finished result breaks a subtoken ceiling only the last slot is redrawn.
func (g *Grammar) Generate(state *GenerationState, rng Rand) string {
	state.reset()
	if len(g.results) == 0 || g.totalWeight <= 0 {
		return ""
	}

	var rule *resultRule
	for {
		if len(state.stackPos) == 0 {
			rule = &g.results[g.pickResult(rng)]
			state.result = state.result[:0]
			state.stack = state.stack[:0]
			state.pushFrame(g.rules[rule.rules[0]].tokens, 0)
			continue
		}

		top := len(state.stackPos) - 1
		pos := state.stackPos[top]
		if pos == len(state.stack) {
			state.popFrame()
			state.popResult()
			continue
		}

		c := state.takeCandidate(pos + rng.IntN(len(state.stack)-pos))
		if g.restrictAdjacent && len(state.result) > 0 {
			last := lastSubtoken(g.tokens[state.result[len(state.result)-1]])
			if first := firstSubtoken(g.tokens[c]); first >= 0 && first == last {
				continue
			}
		}

		state.result = append(state.result, c)
		if len(state.result) < len(rule.rules) {
			state.pushFrame(g.rules[rule.rules[len(state.result)]].tokens, 0)
			continue
		}

		state.subtokens = state.subtokens[:0]
		for _, t := range state.result {
			state.subtokens = append(state.subtokens, g.tokens[t]...)
		}
		if g.restrictSubtokenFreq && g.exceedsCeiling(state.subtokens) {
			state.popResult()
			continue
		}
		break
	}

	for _, s := range state.subtokens {
		state.out = append(state.out, g.subtokens[s]...)
	}
	return state.Result()
}

func (g *Grammar) pickResult(rng Rand) int {
	r := rng.IntN(g.totalWeight)
	for i := range g.results {
		if r < g.results[i].weight {
			return i
		}
		r -= g.results[i].weight
	}
	return len(g.results) - 1
}

func (g *Grammar) exceedsCeiling(composed []int) bool {
	for i, s := range composed {
		if indexOf(composed[:i], s) >= 0 {
			continue
		}
		if countToken(composed[i:], s) > g.maxSubtokens[s] {
			return true
		}
	}
	return false
}

func firstSubtoken(seq []int) int {
	if len(seq) == 0 {
		return -1
	}
	return seq[0]
}

func lastSubtoken(seq []int) int {
	if len(seq) == 0 {
		return -1
	}
	return seq[len(seq)-1]
}

// Validate checks that the engine's arenas, pools, and weights agree with
// each other.
func (g *Grammar) Validate() error {
	if len(g.maxSubtokens) != len(g.subtokens) {
		return newValidationError(grammarKind, "subtoken ceiling table has %d entries for %d subtokens", len(g.maxSubtokens), len(g.subtokens))
	}
	seen := make(map[string]struct{}, len(g.subtokens))
	for i, s := range g.subtokens {
		if s == "" {
			return newValidationError(grammarKind, "subtoken %d is empty", i)
		}
		if _, ok := seen[s]; ok {
			return newValidationError(grammarKind, "subtoken %q is defined more than once", s)
		}
		seen[s] = struct{}{}
	}

	var key []byte
	tokens := make(map[string]struct{}, len(g.tokens))
	for i, seq := range g.tokens {
		for _, s := range seq {
			if s < 0 || s >= len(g.subtokens) {
				return newValidationError(grammarKind, "token %d refers to missing subtoken %d", i, s)
			}
		}
		key = appendIndexKey(key[:0], seq)
		if _, ok := tokens[string(key)]; ok {
			return newValidationError(grammarKind, "token %d duplicates an earlier token", i)
		}
		tokens[string(key)] = struct{}{}
	}

	labels := make(map[string]struct{}, len(g.rules))
	for i, r := range g.rules {
		if _, ok := labels[r.label]; ok {
			return newValidationError(grammarKind, "rule label %q is defined more than once", r.label)
		}
		labels[r.label] = struct{}{}
		for _, t := range r.tokens {
			if t < 0 || t >= len(g.tokens) {
				return newValidationError(grammarKind, "rule %q refers to missing token %d", g.rules[i].label, t)
			}
		}
	}

	sum := 0
	results := make(map[string]struct{}, len(g.results))
	for i, r := range g.results {
		if len(r.rules) == 0 {
			return newValidationError(grammarKind, "result %d has no slots", i)
		}
		if r.weight <= 0 {
			return newValidationError(grammarKind, "result %d has non-positive weight %d", i, r.weight)
		}
		for _, ri := range r.rules {
			if ri < 0 || ri >= len(g.rules) {
				return newValidationError(grammarKind, "result %d refers to missing rule %d", i, ri)
			}
			if len(g.rules[ri].tokens) == 0 {
				return newValidationError(grammarKind, "result %d uses empty rule %q", i, g.rules[ri].label)
			}
		}
		key = appendIndexKey(key[:0], r.rules)
		if _, ok := results[string(key)]; ok {
			return newValidationError(grammarKind, "result %d duplicates an earlier result", i)
		}
		results[string(key)] = struct{}{}
		sum += r.weight
	}
	if sum != g.totalWeight {
		return newValidationError(grammarKind, "result weights sum to %d, total is %d", sum, g.totalWeight)
	}

	return nil
}
