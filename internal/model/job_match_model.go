package model

type JobMatchResult struct {
	JobID           string   `json:"jobId"`
	MatchScore      float64  `json:"matchScore"`
	MatchedSkills   []string `json:"matchedSkills"`
	MissingSkills   []string `json:"missingSkills"`
	TailoredCV      string   `json:"tailoredCV"`
	Recommendations []string `json:"recommendations"`
}
