package model

var (
	DemandLevels = []string{"low", "medium", "high"}
	Trends       = []string{"rising", "stable", "declining"}
)

type SkillDemand struct {
	Skill        string   `json:"skill"`
	Demand       string   `json:"demand"`
	Trend        string   `json:"trend"`
	RelevantJobs []string `json:"relevantJobs"`
}

type SalaryRange struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Median   float64 `json:"median"`
	Currency string  `json:"currency"`
}

type CareerStep struct {
	Role            string      `json:"role"`
	YearsExperience FlexString  `json:"yearsExperience"`
	RequiredSkills  []string    `json:"requiredSkills"`
	SalaryRange     SalaryRange `json:"salaryRange"`
}

type CareerInsight struct {
	SkillDemand     []SkillDemand `json:"skillDemand"`
	SalaryRange     SalaryRange   `json:"salaryRange"`
	CareerPath      []CareerStep  `json:"careerPath"`
	Recommendations []string      `json:"recommendations"`
}
