// Package file provides file-based implementations of driven port interfaces.
// These adapters read and persist data on the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - ProfileStore: business profile text with a built-in fallback
//   - PromptStore: per-stage prompt template overrides, optionally watched
//   - LoadPipeline: YAML pipeline definitions
package file
