package service

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/fadilmartias/cv-optimizer/internal/model"
	"github.com/tidwall/gjson"
)

// shape collects violations while walking a gjson document.
type shape struct {
	problems []string
}

func (s *shape) failf(path, format string, args ...any) {
	s.problems = append(s.problems, path+": "+fmt.Sprintf(format, args...))
}

func (s *shape) err() error {
	if len(s.problems) == 0 {
		return nil
	}
	return errors.New(strings.Join(s.problems, "; "))
}

func absent(r gjson.Result) bool {
	return !r.Exists() || r.Type == gjson.Null
}

func join(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}

func (s *shape) object(r gjson.Result, path string, required bool) bool {
	if absent(r) {
		if required {
			s.failf(path, "required object missing")
		}
		return false
	}
	if !r.IsObject() {
		s.failf(path, "expected object")
		return false
	}
	return true
}

func (s *shape) array(r gjson.Result, path string, required bool) []gjson.Result {
	if absent(r) {
		if required {
			s.failf(path, "required array missing")
		}
		return nil
	}
	if !r.IsArray() {
		s.failf(path, "expected array")
		return nil
	}
	return r.Array()
}

func (s *shape) str(r gjson.Result, path string, required bool) {
	if absent(r) {
		if required {
			s.failf(path, "required string missing")
		}
		return
	}
	if r.Type != gjson.String {
		s.failf(path, "expected string")
	}
}

// scalar accepts a string or a number.
func (s *shape) scalar(r gjson.Result, path string) {
	if absent(r) {
		return
	}
	if r.Type != gjson.String && r.Type != gjson.Number {
		s.failf(path, "expected string or number")
	}
}

func (s *shape) number(r gjson.Result, path string, required bool) {
	if absent(r) {
		if required {
			s.failf(path, "required number missing")
		}
		return
	}
	if r.Type != gjson.Number {
		s.failf(path, "expected number")
	}
}

func (s *shape) score(r gjson.Result, path string) {
	if absent(r) || r.Type != gjson.Number {
		s.failf(path, "required score missing")
		return
	}
	if v := r.Float(); v < 0 || v > 100 {
		s.failf(path, "score %v outside 0-100", v)
	}
}

func (s *shape) boolean(r gjson.Result, path string, required bool) {
	if absent(r) {
		if required {
			s.failf(path, "required boolean missing")
		}
		return
	}
	if r.Type != gjson.True && r.Type != gjson.False {
		s.failf(path, "expected boolean")
	}
}

// enum matches case-insensitively. An empty optional value counts as absent.
func (s *shape) enum(r gjson.Result, path string, allowed []string, required bool) {
	if absent(r) || (!required && r.Type == gjson.String && enumValue(r.String()) == "") {
		if required {
			s.failf(path, "required value missing")
		}
		return
	}
	if r.Type != gjson.String || !slices.Contains(allowed, enumValue(r.String())) {
		s.failf(path, "%q is not one of %s", r.String(), strings.Join(allowed, ", "))
	}
}

func enumValue(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func (s *shape) stringList(r gjson.Result, path string, required bool) {
	for i, item := range s.array(r, path, required) {
		if item.Type != gjson.String {
			s.failf(fmt.Sprintf("%s.%d", path, i), "expected string")
		}
	}
}

func (s *shape) each(r gjson.Result, path string, required bool, fn func(item gjson.Result, path string)) {
	for i, item := range s.array(r, path, required) {
		p := fmt.Sprintf("%s.%d", path, i)
		if s.object(item, p, true) {
			fn(item, p)
		}
	}
}

func checkParsedCV(doc gjson.Result) error {
	s := &shape{}
	if info := doc.Get("personalInfo"); s.object(info, "personalInfo", true) {
		for _, f := range []string{"name", "email", "phone", "location", "linkedin", "portfolio"} {
			s.str(info.Get(f), join("personalInfo", f), false)
		}
	}
	s.each(doc.Get("skills"), "skills", true, func(it gjson.Result, p string) {
		s.str(it.Get("name"), join(p, "name"), true)
		s.enum(it.Get("category"), join(p, "category"), model.SkillCategories, true)
		s.enum(it.Get("proficiency"), join(p, "proficiency"), model.Proficiencies, false)
		s.number(it.Get("yearsOfExperience"), join(p, "yearsOfExperience"), false)
	})
	s.each(doc.Get("experience"), "experience", true, func(it gjson.Result, p string) {
		s.str(it.Get("company"), join(p, "company"), true)
		s.str(it.Get("position"), join(p, "position"), true)
		s.scalar(it.Get("startDate"), join(p, "startDate"))
		s.scalar(it.Get("endDate"), join(p, "endDate"))
		s.boolean(it.Get("current"), join(p, "current"), false)
		s.str(it.Get("description"), join(p, "description"), false)
		s.stringList(it.Get("achievements"), join(p, "achievements"), false)
		s.stringList(it.Get("technologies"), join(p, "technologies"), false)
	})
	s.each(doc.Get("education"), "education", true, func(it gjson.Result, p string) {
		s.str(it.Get("institution"), join(p, "institution"), true)
		s.str(it.Get("degree"), join(p, "degree"), false)
		s.str(it.Get("field"), join(p, "field"), false)
		s.scalar(it.Get("startDate"), join(p, "startDate"))
		s.scalar(it.Get("endDate"), join(p, "endDate"))
		s.scalar(it.Get("gpa"), join(p, "gpa"))
		s.stringList(it.Get("achievements"), join(p, "achievements"), false)
	})
	s.str(doc.Get("summary"), "summary", false)
	return s.err()
}

func checkOptimizedCV(doc gjson.Result) error {
	s := &shape{}
	s.score(doc.Get("atsScore"), "atsScore")
	s.str(doc.Get("optimizedText"), "optimizedText", true)
	s.each(doc.Get("suggestions"), "suggestions", true, func(it gjson.Result, p string) {
		s.enum(it.Get("type"), join(p, "type"), model.SuggestionTypes, true)
		s.enum(it.Get("severity"), join(p, "severity"), model.Severities, true)
		s.str(it.Get("message"), join(p, "message"), true)
		s.str(it.Get("original"), join(p, "original"), false)
		s.str(it.Get("suggested"), join(p, "suggested"), false)
		s.str(it.Get("reason"), join(p, "reason"), false)
	})
	s.each(doc.Get("improvementAreas"), "improvementAreas", true, func(it gjson.Result, p string) {
		s.str(it.Get("category"), join(p, "category"), true)
		s.score(it.Get("score"), join(p, "score"))
		s.stringList(it.Get("recommendations"), join(p, "recommendations"), false)
	})
	s.each(doc.Get("keywordMatches"), "keywordMatches", true, func(it gjson.Result, p string) {
		s.str(it.Get("keyword"), join(p, "keyword"), true)
		s.boolean(it.Get("found"), join(p, "found"), true)
		s.enum(it.Get("importance"), join(p, "importance"), model.Importances, true)
		s.str(it.Get("suggestion"), join(p, "suggestion"), false)
	})
	return s.err()
}

func checkJobMatch(doc gjson.Result) error {
	s := &shape{}
	s.score(doc.Get("matchScore"), "matchScore")
	s.stringList(doc.Get("matchedSkills"), "matchedSkills", true)
	s.stringList(doc.Get("missingSkills"), "missingSkills", true)
	s.str(doc.Get("tailoredCV"), "tailoredCV", true)
	s.stringList(doc.Get("recommendations"), "recommendations", true)
	return s.err()
}

func (s *shape) salary(r gjson.Result, path string, required bool) {
	if !s.object(r, path, required) {
		return
	}
	s.number(r.Get("min"), join(path, "min"), true)
	s.number(r.Get("max"), join(path, "max"), true)
	s.number(r.Get("median"), join(path, "median"), true)
	s.str(r.Get("currency"), join(path, "currency"), true)
}

func checkCareerInsight(doc gjson.Result) error {
	s := &shape{}
	s.each(doc.Get("skillDemand"), "skillDemand", true, func(it gjson.Result, p string) {
		s.str(it.Get("skill"), join(p, "skill"), true)
		s.enum(it.Get("demand"), join(p, "demand"), model.DemandLevels, true)
		s.enum(it.Get("trend"), join(p, "trend"), model.Trends, true)
		s.stringList(it.Get("relevantJobs"), join(p, "relevantJobs"), false)
	})
	s.salary(doc.Get("salaryRange"), "salaryRange", true)
	s.each(doc.Get("careerPath"), "careerPath", true, func(it gjson.Result, p string) {
		s.str(it.Get("role"), join(p, "role"), true)
		s.scalar(it.Get("yearsExperience"), join(p, "yearsExperience"))
		s.stringList(it.Get("requiredSkills"), join(p, "requiredSkills"), false)
		s.salary(it.Get("salaryRange"), join(p, "salaryRange"), false)
	})
	s.stringList(doc.Get("recommendations"), "recommendations", true)
	return s.err()
}

// The normalize functions bring enum fields accepted by the checks above to
// their canonical lower-case form.

func normalizeParsedCV(p *model.ParsedCV) {
	for i := range p.Skills {
		p.Skills[i].Category = model.SkillCategory(enumValue(string(p.Skills[i].Category)))
		p.Skills[i].Proficiency = model.Proficiency(enumValue(string(p.Skills[i].Proficiency)))
	}
}

func normalizeOptimizedCV(o *model.OptimizedCV) {
	for i := range o.Suggestions {
		o.Suggestions[i].Type = enumValue(o.Suggestions[i].Type)
		o.Suggestions[i].Severity = enumValue(o.Suggestions[i].Severity)
	}
	for i := range o.KeywordMatches {
		o.KeywordMatches[i].Importance = enumValue(o.KeywordMatches[i].Importance)
	}
}

func normalizeCareerInsight(c *model.CareerInsight) {
	for i := range c.SkillDemand {
		c.SkillDemand[i].Demand = enumValue(c.SkillDemand[i].Demand)
		c.SkillDemand[i].Trend = enumValue(c.SkillDemand[i].Trend)
	}
}
