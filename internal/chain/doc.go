// Package chain implements the capture-time FallbackChainGenerator,
// StrategyScorer, and StrategyChainBuilder (spec.md §4.4): turning raw
// per-evaluator candidate Strategy records into the ordered, deduplicated,
// category-diverse FallbackChain an Action carries into replay.
package chain
