package namegen

import (
	"container/heap"
	"math"
)

// maxNodeWeight caps node weights so frame totals cannot overflow.
const maxNodeWeight = math.MaxInt >> 16

func (m *Markov) recalculateWeights() {
	weights := nodeWeights(m.nodes)
	for i := range m.nodes {
		m.nodes[i].weight = weights[i]
	}
}

// nodeWeights computes the weight of every node: 1 for an ending node and the
// sum of its children's weights otherwise. Nodes are settled outward from the
// ending nodes, a node becoming ready once all of its children are settled.
// When transitions form a cycle and nothing is ready, the lowest-index
// waiting node with at least one settled child is settled next, counting
// only the children settled so far. Nodes that cannot reach an ending keep
// weight 0.
func nodeWeights(nodes []markovNode) []int {
	n := len(nodes)
	weights := make([]int, n)
	settled := make([]bool, n)
	pending := make([]int, n)
	parents := make([][]int, n)
	for i := range nodes {
		for _, c := range nodes[i].children {
			if c < 0 || c >= n {
				continue
			}
			pending[i]++
			parents[c] = append(parents[c], i)
		}
	}

	round := make([]int, 0, n)
	next := make([]int, 0, n)
	for i := range nodes {
		if pending[i] == 0 {
			round = append(round, i)
		}
	}

	var waiting intHeap
	for {
		for len(round) > 0 {
			next = next[:0]
			for _, i := range round {
				if settled[i] {
					continue
				}
				settled[i] = true
				weights[i] = settledWeight(nodes, weights, settled, i)

				for _, p := range parents[i] {
					if settled[p] {
						continue
					}
					pending[p]--
					if pending[p] == 0 {
						next = append(next, p)
					} else {
						heap.Push(&waiting, p)
					}
				}
			}
			round, next = next, round
		}

		for waiting.Len() > 0 {
			if i := heap.Pop(&waiting).(int); !settled[i] {
				round = append(round, i)
				break
			}
		}
		if len(round) == 0 {
			return weights
		}
	}
}

func settledWeight(nodes []markovNode, weights []int, settled []bool, i int) int {
	if nodes[i].ending {
		return 1
	}
	w := 0
	for _, c := range nodes[i].children {
		if c < 0 || c >= len(nodes) || !settled[c] {
			continue
		}
		w += weights[c]
		if w > maxNodeWeight {
			return maxNodeWeight
		}
	}
	return w
}

type intHeap []int

func (h intHeap) Len() int           { return len(h) }
func (h intHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h intHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *intHeap) Push(x any) { *h = append(*h, x.(int)) }

func (h *intHeap) Pop() any {
	old := *h
	v := old[len(old)-1]
	*h = old[:len(old)-1]
	return v
}
