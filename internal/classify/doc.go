// Package classify turns report text into an event type, a location and a
// 1–5 severity. An LLM reached through a [Completer] does the work when one
// is configured; every failure path ends in the deterministic keyword
// [Fallback], so [Classifier.Classify] always returns a usable [Result].
package classify
