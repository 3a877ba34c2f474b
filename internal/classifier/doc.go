// Package classifier provides the binary sentiment classifier backends and the
// process-wide, lazily initialized provider the analyzer pulls them from.
//
// Two backends exist: an HTTP client for a hosted transformer inference
// endpoint and an in-process VADER model. Either can be wrapped in a
// CachedClassifier that memoizes results by model and text.
package classifier
