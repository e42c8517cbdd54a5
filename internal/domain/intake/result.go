package intake

// Outcome is the terminal state of one dispatched file.
type Outcome string

const (
	OutcomeLoaded  Outcome = "loaded"
	OutcomeInvalid Outcome = "invalid"
	OutcomeFailed  Outcome = "failed"
)

// Result records one dispatch. Archive is the name of the zip the file was
// extracted from, empty for files handed in directly.
type Result struct {
	File    File
	Kind    Kind
	Archive string
	Outcome Outcome
	Err     error
}

// Summary counts the outcomes of a finished batch.
type Summary struct {
	BatchID string `json:"batch_id"`
	Loaded  int    `json:"loaded"`
	Invalid int    `json:"invalid"`
	Failed  int    `json:"failed"`
}

func (s Summary) Total() int {
	return s.Loaded + s.Invalid + s.Failed
}

func (s *Summary) add(o Outcome) {
	switch o {
	case OutcomeLoaded:
		s.Loaded++
	case OutcomeInvalid:
		s.Invalid++
	case OutcomeFailed:
		s.Failed++
	}
}
