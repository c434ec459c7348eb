package school

import (
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
)

// Roles
const (
	RoleAdmin   Role = "ADMIN"
	RoleTeacher Role = "TEACHER"
	RoleStudent Role = "STUDENT"
)

var AllRoles = []Role{RoleAdmin, RoleTeacher, RoleStudent}

type Role string

func (r Role) String() string {
	return string(r)
}

// ParseRole matches raw against the known roles. Matching is case-sensitive, as the server sends them.
func ParseRole(raw string) (Role, bool) {
	for _, role := range AllRoles {
		if string(role) == raw {
			return role, true
		}
	}
	return "", false
}

// Prediction trends
const (
	TrendUp   = "up"
	TrendDown = "down"
	TrendFlat = "flat"
)

// AbsentGrade is the grade value the server stores for an absence mark.
const AbsentGrade = 0

type (
	User struct {
		ID        int    `json:"id"`
		Login     string `json:"login"`
		Role      Role   `json:"role"`
		FirstName string `json:"first_name,omitempty"`
		LastName  string `json:"last_name,omitempty"`
	}

	Course struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}

	Group struct {
		ID           int    `json:"id"`
		Name         string `json:"name"`
		StudentCount int    `json:"student_count"`
	}

	Student struct {
		ID        int    `json:"id"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		DOB       string `json:"dob,omitempty"`
		GroupID   int    `json:"group_id"`
		Login     string `json:"login,omitempty"`
	}

	Teacher struct {
		ID         int      `json:"id"`
		FirstName  string   `json:"first_name"`
		LastName   string   `json:"last_name"`
		Login      string   `json:"login"`
		GroupIDs   []int    `json:"group_ids"`
		GroupNames []string `json:"group_names"`
	}

	TeacherLoad struct {
		TeacherID int `json:"teacher_id"`
		CourseID  int `json:"course_id"`
		GroupID   int `json:"group_id"`
		Hours     int `json:"hours"`
	}

	Lesson struct {
		ID       int    `json:"id"`
		CourseID int    `json:"course_id"`
		GroupID  int    `json:"group_id"`
		Date     string `json:"date"`
		Homework string `json:"homework,omitempty"`
	}

	// GradeEntry is keyed by (StudentID, LessonID). Grade 0 is the absence mark.
	GradeEntry struct {
		StudentID int `json:"student_id"`
		LessonID  int `json:"lesson_id"`
		Grade     int `json:"grade"`
	}

	// Journal is the sparse journal of one (course, group) pair, as served.
	Journal struct {
		Lessons  []Lesson     `json:"lessons"`
		Students []Student    `json:"students"`
		Grades   []GradeEntry `json:"grades"`
	}

	StudentGrade struct {
		CourseID     int    `json:"course_id"`
		CourseName   string `json:"course_name"`
		Grade        int    `json:"grade"`
		DateAssigned string `json:"date_assigned"`
	}

	GroupMember struct {
		ID           int     `json:"id"`
		FirstName    string  `json:"first_name"`
		LastName     string  `json:"last_name"`
		AverageGrade float64 `json:"average_grade"`
	}

	Prediction struct {
		CourseID       int     `json:"course_id"`
		PredictedGrade float64 `json:"predicted_grade"`
		Trend          string  `json:"trend"`
	}

	TeacherProfile struct {
		ID        int    `json:"id"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Login     string `json:"login"`
	}
)

func (u User) FullName() string {
	return joinName(u.FirstName, u.LastName)
}

func (s Student) FullName() string {
	return joinName(s.FirstName, s.LastName)
}

func (m GroupMember) FullName() string {
	return joinName(m.FirstName, m.LastName)
}

func joinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	}
	return first + " " + last
}

// UnmarshalJSON accepts both {id, name} and {course_id, course_name} shapes.
func (c *Course) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID         flexInt `json:"id"`
		CourseID   flexInt `json:"course_id"`
		Name       string  `json:"name"`
		CourseName string  `json:"course_name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "decoding course")
	}
	c.ID = raw.ID.or(raw.CourseID)
	c.Name = firstNonEmpty(raw.Name, raw.CourseName)
	return nil
}

// UnmarshalJSON accepts both {id, name} and {group_id, group_name} shapes.
func (g *Group) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID           flexInt `json:"id"`
		GroupID      flexInt `json:"group_id"`
		Name         string  `json:"name"`
		GroupName    string  `json:"group_name"`
		StudentCount int     `json:"student_count"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "decoding group")
	}
	g.ID = raw.ID.or(raw.GroupID)
	g.Name = firstNonEmpty(raw.Name, raw.GroupName)
	g.StudentCount = raw.StudentCount
	return nil
}

// flexInt decodes a JSON number or a numeric string.
type flexInt struct {
	val int
	set bool
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = unq
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return errors.Errorf("invalid id %s", string(data))
	}
	f.val, f.set = n, true
	return nil
}

func (f flexInt) or(other flexInt) int {
	if f.set {
		return f.val
	}
	return other.val
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
