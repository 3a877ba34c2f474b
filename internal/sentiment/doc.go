// Package sentiment implements the heuristic adjustment engine.
//
// Normalize strips mentions and URLs before classification. Scorer evaluates a
// fixed-order rule table (emoji, irony, idioms, warnings, insults) over the
// original text. Analyzer fuses the classifier's signed confidence with the
// heuristic modifier, clamps to [-1, 1] and derives the final label.
// All tables are immutable after construction; nothing here holds mutable state.
package sentiment
