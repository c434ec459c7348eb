package school

import (
	"sort"
	"strconv"
)

// UnknownCourse labels grades whose course name the server did not send.
const UnknownCourse = "Unknown course"

type CourseGrades struct {
	CourseID   int
	CourseName string
	Grades     []StudentGrade
}

// Average returns the mean of the real grades, ignoring absence marks. It is 0 when there are none.
func (cg CourseGrades) Average() float64 {
	vals := make([]int, 0, len(cg.Grades))
	for _, g := range cg.Grades {
		vals = append(vals, g.Grade)
	}
	return Average(vals)
}

// GroupByCourse groups grades by course name, in order of first appearance.
// Grades without a course name are grouped by course id under UnknownCourse.
func GroupByCourse(grades []StudentGrade) []CourseGrades {
	groups := make([]CourseGrades, 0)
	index := make(map[string]int)
	for _, g := range grades {
		name, key := g.CourseName, "name:"+g.CourseName
		if name == "" {
			name, key = UnknownCourse, "id:"+strconv.Itoa(g.CourseID)
		}
		idx, ok := index[key]
		if !ok {
			idx = len(groups)
			index[key] = idx
			groups = append(groups, CourseGrades{CourseID: g.CourseID, CourseName: name})
		}
		groups[idx].Grades = append(groups[idx].Grades, g)
	}
	return groups
}

// Average returns the mean of grades above the absence mark.
func Average(grades []int) float64 {
	var sum, count int
	for _, g := range grades {
		if g > AbsentGrade {
			sum += g
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return float64(sum) / float64(count)
}

// RankMembers sorts group members by average grade, best first. Ties keep their order.
func RankMembers(members []GroupMember) {
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].AverageGrade > members[j].AverageGrade
	})
}
