package domain

type Label string

const (
	LabelPositive Label = "POSITIVE"
	LabelNegative Label = "NEGATIVE"
)

// SentimentResult is the outcome of one prediction. It is a value: built once
// per call and never modified afterwards.
type SentimentResult struct {
	Label                   Label    `json:"label"`
	Confidence              float64  `json:"confidence"`
	OriginalText            string   `json:"original_text"`
	ProcessedText           string   `json:"processed_text"`
	HeuristicDetails        []string `json:"heuristic_details"`
	ClassifierRawLabel      string   `json:"classifier_raw_label"`
	ClassifierRawConfidence float64  `json:"classifier_raw_confidence"`
}
