package models

import (
	"fmt"
	"strings"
)

// SkillLevel is the ordered proficiency scale shared by employee skills and
// task requirements. The zero value is below BEGINNER and stands for "skill
// not held".
type SkillLevel int

const (
	Beginner     SkillLevel = 1
	Intermediate SkillLevel = 2
	Advanced     SkillLevel = 3
	Expert       SkillLevel = 4
)

var skillLevelNames = map[SkillLevel]string{
	Beginner:     "BEGINNER",
	Intermediate: "INTERMEDIATE",
	Advanced:     "ADVANCED",
	Expert:       "EXPERT",
}

// SkillLevels lists every defined level in ascending order.
func SkillLevels() []SkillLevel {
	return []SkillLevel{Beginner, Intermediate, Advanced, Expert}
}

// Valid reports whether l is one of the defined levels.
func (l SkillLevel) Valid() bool {
	_, ok := skillLevelNames[l]
	return ok
}

func (l SkillLevel) String() string {
	if name, ok := skillLevelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(l))
}

// ParseSkillLevel converts a level name (case-insensitive) into a SkillLevel.
func ParseSkillLevel(s string) (SkillLevel, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for level, n := range skillLevelNames {
		if n == name {
			return level, nil
		}
	}
	return 0, fmt.Errorf("invalid skill level %q, must be one of: BEGINNER, INTERMEDIATE, ADVANCED, EXPERT", s)
}

// MarshalText encodes the level by name for YAML and JSON.
func (l SkillLevel) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid skill level %d", int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText decodes a level name.
func (l *SkillLevel) UnmarshalText(text []byte) error {
	parsed, err := ParseSkillLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Skill is a named proficiency held by an employee.
type Skill struct {
	Name            string     `yaml:"name" json:"name"`
	Level           SkillLevel `yaml:"level" json:"level"`
	ExperienceYears float64    `yaml:"experience_years" json:"experience_years"`
}

// Validate checks the skill for values the scoring functions cannot handle.
func (s Skill) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("skill name must not be empty")
	}
	if !s.Level.Valid() {
		return fmt.Errorf("skill %q: invalid level %d", s.Name, int(s.Level))
	}
	if s.ExperienceYears < 0 {
		return fmt.Errorf("skill %q: experience_years must be non-negative, got %g", s.Name, s.ExperienceYears)
	}
	return nil
}
