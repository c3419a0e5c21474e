package model

var (
	SuggestionTypes = []string{"skill", "experience", "education", "formatting", "content"}
	Severities      = []string{"low", "medium", "high"}
	Importances     = []string{"low", "medium", "high"}
)

type Suggestion struct {
	ID        FlexString `json:"id"`
	Type      string     `json:"type"`
	Severity  string     `json:"severity"`
	Message   string     `json:"message"`
	Original  string     `json:"original"`
	Suggested string     `json:"suggested"`
	Reason    string     `json:"reason"`
}

type ImprovementArea struct {
	Category        string   `json:"category"`
	Score           float64  `json:"score"`
	Recommendations []string `json:"recommendations"`
}

type KeywordMatch struct {
	Keyword    string `json:"keyword"`
	Found      bool   `json:"found"`
	Importance string `json:"importance"`
	Suggestion string `json:"suggestion,omitempty"`
}

type OptimizedCV struct {
	Suggestions      []Suggestion      `json:"suggestions"`
	ATSScore         float64           `json:"atsScore"`
	OptimizedText    string            `json:"optimizedText"`
	ImprovementAreas []ImprovementArea `json:"improvementAreas"`
	KeywordMatches   []KeywordMatch    `json:"keywordMatches"`
}
