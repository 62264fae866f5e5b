/*
Package namegen provides trainable, allocation-free generators for short
strings such as character and place names.

Two learning engines are included. Markov learns whole words and walks a
token-transition graph with weighted backtracking, while Grammar learns
labeled, multi-column samples and fills each column ("slot") from the pool of
values observed in that column. A trivial weighted WordList rounds out the set.
All three implement the Generator interface.

Generation writes into a caller-owned GenerationState and takes the caller's
random source, so a seeded source reproduces the same sequence of names. An
engine is safe for concurrent Generate calls as long as every goroutine owns
its own GenerationState and random source. Learn must not run concurrently
with anything else on the same engine.

Parts, Names and FormattingRules compose engine output into full names using
small templates such as "{first} {last}|{first} {=the} {:title}".
*/
package namegen
