package pipeline

// Stage is one of the four workflow states. The happy path is linear:
// Input → Segmenting → PromptEditing → Generated.
type Stage int

const (
	StageInput Stage = iota
	StageSegmenting
	StagePromptEditing
	StageGenerated
)

func (s Stage) String() string {
	switch s {
	case StageInput:
		return "input"
	case StageSegmenting:
		return "segmenting"
	case StagePromptEditing:
		return "prompt_editing"
	case StageGenerated:
		return "generated"
	default:
		return "unknown"
	}
}

// prev returns the stage one step back. Input has no previous stage.
func (s Stage) prev() (Stage, bool) {
	if s == StageInput {
		return StageInput, false
	}
	return s - 1, true
}

// editable reports whether segment editing operations are legal in this stage.
func (s Stage) editable() bool {
	return s == StageSegmenting || s == StagePromptEditing
}
