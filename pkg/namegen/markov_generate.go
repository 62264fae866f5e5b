package namegen

// Generate produces one name. The walk picks a start and a target length,
// then does a weighted depth-first search over the transition graph,
// backtracking a token whenever a frame runs out of candidates. An engine
// with no learned starts yields the empty string.
func (m *Markov) Generate(state *GenerationState, rng Rand) string {
	state.reset()
	if len(m.starts) == 0 || m.totalStarts <= 0 {
		return ""
	}

	length := 1
	for len(state.result) < length {
		if len(state.stackPos) == 0 {
			start := &m.starts[m.pickStart(rng)]
			state.result = append(state.result[:0], start.tokens[0], start.tokens[1])
			state.stack = state.stack[:0]
			state.pushFrame(start.children, m.childWeight(start.children))

			if m.restrictStartLength {
				length = start.length
			} else {
				length = m.pickLength(rng)
			}
			continue
		}

		top := len(state.stackPos) - 1
		pos := state.stackPos[top]
		weight := state.stackWeight[top]
		if pos == len(state.stack) || weight <= 0 {
			state.popFrame()
			state.popResult()
			continue
		}

		r := rng.IntN(weight)
		i := pos
		for ; i < len(state.stack)-1; i++ {
			w := m.nodes[state.stack[i]].weight
			if r < w {
				break
			}
			r -= w
		}
		c := state.takeCandidate(i)
		node := &m.nodes[c]
		state.stackWeight[top] = weight - node.weight

		if node.ending != (len(state.result) == length-1) {
			continue
		}
		if m.restrictEndLength && node.ending && node.length != length {
			continue
		}
		if m.restrictTokenFreq && countToken(state.result, node.token) >= m.maxTokens[node.token] {
			continue
		}

		state.result = append(state.result, node.token)
		state.pushFrame(node.children, m.childWeight(node.children))
	}

	for _, t := range state.result {
		state.out = append(state.out, m.tokens[t]...)
	}
	return state.Result()
}

func (m *Markov) pickStart(rng Rand) int {
	r := rng.IntN(m.totalStarts)
	for i := range m.starts {
		if r < m.starts[i].weight {
			return i
		}
		r -= m.starts[i].weight
	}
	return len(m.starts) - 1
}

// pickLength draws a result length from the learned length histogram.
func (m *Markov) pickLength(rng Rand) int {
	if m.totalLengths <= 0 {
		return 3
	}
	r := rng.IntN(m.totalLengths)
	for i, w := range m.lengths {
		if r < w {
			return i + 3
		}
		r -= w
	}
	return len(m.lengths) + 2
}

func (m *Markov) childWeight(children []int) int {
	w := 0
	for _, c := range children {
		w += m.nodes[c].weight
	}
	return w
}

func countToken(result []int, token int) int {
	n := 0
	for _, t := range result {
		if t == token {
			n++
		}
	}
	return n
}
