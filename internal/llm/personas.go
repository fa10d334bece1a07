package llm

// agentPersona is one of the three specialized voices used by the swarm
// strategy. The shape mirrors a conversational-host persona (background,
// voice, focus) but the identities are production roles, not characters.
type agentPersona struct {
	Name        string
	Focus       string
	Instruction string
}

var contentAnalystPersona = agentPersona{
	Name:  "content analyst",
	Focus: "factual throughline: what was said, when, and in what context",
	Instruction: `Identify the 3-5 most substantive claims or themes across these speeches. For each,
note the speech it came from, the approximate date, and why it matters in sequence with the others.
Do not invent facts or dates not present in the material. Be terse and concrete.`,
}

var narrativeDesignerPersona = agentPersona{
	Name:  "narrative designer",
	Focus: "arc: how the material should be ordered and paced for a listener",
	Instruction: `Propose a narrative arc for these speeches: an opening hook, a build, and a close.
Note where the tone shifts and where a listener's attention is likely to dip. Do not summarize every
speech individually — describe the shape of the whole.`,
}

var audioProducerPersona = agentPersona{
	Name:  "audio producer",
	Focus: "pacing and delivery: what makes this work as spoken audio rather than text",
	Instruction: `Flag passages that read well but will not land when spoken aloud (long sentences,
stacked clauses, unclear pronoun references). Suggest where pauses, repetition for emphasis, or a
change of pace would help. Keep this to concrete, actionable notes.`,
}

var swarmAgents = [3]agentPersona{contentAnalystPersona, narrativeDesignerPersona, audioProducerPersona}
