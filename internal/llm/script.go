package llm

// Meta describes how a script was produced, for the caller to surface
// alongside the script text (e.g. whether batching kicked in).
type Meta struct {
	Strategy       string
	BatchProcessed bool
}
