package driven

// PromptStore provides access to user-editable stage prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the template override for the given stage.
	// The boolean is false when no override exists and the built-in
	// template should be used.
	Load(name string) (string, bool)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}
