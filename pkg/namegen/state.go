package namegen

import (
	"math/rand/v2"
	"unsafe"
)

// Rand is the random source used by generation. *rand.Rand from math/rand/v2
// satisfies it.
type Rand interface {
	// IntN returns a value in [0, n). n is always positive.
	IntN(n int) int
}

// NewRand returns a PCG-backed source. The same seed yields the same sequence
// on every platform and run.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Generator is implemented by every engine.
type Generator interface {
	// Learn adds a sample set to the model. On error the model is unchanged.
	Learn(set *SampleSet) error
	// Generate writes one result into state and returns a view of it that
	// is only valid until state is used again.
	Generate(state *GenerationState, rng Rand) string
	// Validate checks the model's internal invariants.
	Validate() error
}

// GenerationState holds every scratch buffer needed to generate a name. Once
// the buffers have grown, repeated generation does not allocate. A state must
// not be shared between goroutines.
type GenerationState struct {
	result      []int
	out         []byte
	chars       []rune
	total       []byte
	stack       []int
	stackPos    []int
	stackWeight []int
	subtokens   []int
}

// NewGenerationState returns a state with small preallocated buffers.
func NewGenerationState() *GenerationState {
	return &GenerationState{
		result:      make([]int, 0, 16),
		out:         make([]byte, 0, 16),
		chars:       make([]rune, 0, 64),
		total:       make([]byte, 0, 32),
		stack:       make([]int, 0, 128),
		stackPos:    make([]int, 0, 16),
		stackWeight: make([]int, 0, 16),
		subtokens:   make([]int, 0, 32),
	}
}

// Result returns the output of the last engine or part generation. The
// string shares memory with the state and changes on the next call; use
// strings.Clone to keep it.
func (s *GenerationState) Result() string {
	return bytesView(s.out)
}

// Total returns the composed output of the last Name generation, with the
// same lifetime rules as Result.
func (s *GenerationState) Total() string {
	return bytesView(s.total)
}

// reset clears the per-engine buffers. The composition buffer is owned by
// Name and is left alone.
func (s *GenerationState) reset() {
	s.result = s.result[:0]
	s.out = s.out[:0]
	s.stack = s.stack[:0]
	s.stackPos = s.stackPos[:0]
	s.stackWeight = s.stackWeight[:0]
	s.subtokens = s.subtokens[:0]
}

// pushFrame opens a search frame holding candidates.
func (s *GenerationState) pushFrame(candidates []int, weight int) {
	s.stackPos = append(s.stackPos, len(s.stack))
	s.stackWeight = append(s.stackWeight, weight)
	s.stack = append(s.stack, candidates...)
}

// popFrame discards the top frame and any candidates left in it.
func (s *GenerationState) popFrame() {
	top := len(s.stackPos) - 1
	s.stack = s.stack[:s.stackPos[top]]
	s.stackPos = s.stackPos[:top]
	s.stackWeight = s.stackWeight[:top]
}

// takeCandidate removes the candidate at index i of the stack by moving the
// last element into its place. The top frame is always at the end of the
// stack, so this stays inside it.
func (s *GenerationState) takeCandidate(i int) int {
	last := len(s.stack) - 1
	c := s.stack[i]
	s.stack[i] = s.stack[last]
	s.stack = s.stack[:last]
	return c
}

func (s *GenerationState) popResult() {
	if len(s.result) > 0 {
		s.result = s.result[:len(s.result)-1]
	}
}

func bytesView(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(b), len(b))
}
