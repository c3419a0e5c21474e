package model

type SkillCategory string

const (
	SkillCategoryTechnical SkillCategory = "technical"
	SkillCategorySoft      SkillCategory = "soft"
	SkillCategoryLanguage  SkillCategory = "language"
	SkillCategoryOther     SkillCategory = "other"
)

var SkillCategories = []string{"technical", "soft", "language", "other"}

type Proficiency string

const (
	ProficiencyBeginner     Proficiency = "beginner"
	ProficiencyIntermediate Proficiency = "intermediate"
	ProficiencyAdvanced     Proficiency = "advanced"
	ProficiencyExpert       Proficiency = "expert"
)

var Proficiencies = []string{"beginner", "intermediate", "advanced", "expert"}

type PersonalInfo struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Location  string `json:"location,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	Portfolio string `json:"portfolio,omitempty"`
}

type Skill struct {
	Name              string        `json:"name"`
	Category          SkillCategory `json:"category"`
	Proficiency       Proficiency   `json:"proficiency,omitempty"`
	YearsOfExperience *float64      `json:"yearsOfExperience,omitempty"`
}

type Experience struct {
	ID           FlexString `json:"id"`
	Company      string     `json:"company"`
	Position     string     `json:"position"`
	StartDate    FlexString `json:"startDate"`
	EndDate      FlexString `json:"endDate,omitempty"`
	Current      bool       `json:"current"`
	Description  string     `json:"description"`
	Achievements []string   `json:"achievements"`
	Technologies []string   `json:"technologies,omitempty"`
}

type Education struct {
	ID           FlexString `json:"id"`
	Institution  string     `json:"institution"`
	Degree       string     `json:"degree"`
	Field        string     `json:"field"`
	StartDate    FlexString `json:"startDate"`
	EndDate      FlexString `json:"endDate,omitempty"`
	GPA          FlexString `json:"gpa,omitempty"`
	Achievements []string   `json:"achievements,omitempty"`
}

type ParsedCV struct {
	PersonalInfo PersonalInfo `json:"personalInfo"`
	Skills       []Skill      `json:"skills"`
	Experience   []Experience `json:"experience"`
	Education    []Education  `json:"education"`
	Summary      string       `json:"summary,omitempty"`
}
