package domain

// Status tracks pipeline progress so an interactive caller can reflect it.
type Status string

const (
	StatusIdle               Status = "IDLE"
	StatusGeneratingCopy     Status = "GENERATING_COPY"
	StatusGeneratingStrategy Status = "GENERATING_STRATEGY"
	StatusGeneratingImage    Status = "GENERATING_IMAGE"
	StatusGeneratingLayout   Status = "GENERATING_LAYOUT"
	StatusCompleted          Status = "COMPLETED"
	StatusFailed             Status = "FAILED"
)

// GenerateResult aggregates the three pipeline outputs.
type GenerateResult struct {
	Copy   CopyResult     `json:"copy"`
	Visual VisualStrategy `json:"visual"`
	Layout LayoutConfig   `json:"layout"`
}
