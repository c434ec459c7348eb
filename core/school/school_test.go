package school

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/eduportal/core"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		raw  string
		want Role
		ok   bool
	}{
		{"ADMIN", RoleAdmin, true},
		{"TEACHER", RoleTeacher, true},
		{"STUDENT", RoleStudent, true},
		{"admin", "", false},
		{"BOGUS", "", false},
		{"", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			role, ok := ParseRole(tc.raw)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, role)
		})
	}
}

func TestCourseAndGroupShapes(t *testing.T) {
	var courses []Course
	require.NoError(t, json.Unmarshal([]byte(`[{"id":1,"name":"Math"},{"course_id":"2","course_name":"Physics"}]`), &courses))
	assert.Equal(t, []Course{{ID: 1, Name: "Math"}, {ID: 2, Name: "Physics"}}, courses)

	var groups []Group
	require.NoError(t, json.Unmarshal([]byte(`[{"group_id":3,"group_name":"A-1","student_count":12},{"id":4,"name":"B-2"}]`), &groups))
	assert.Equal(t, []Group{{ID: 3, Name: "A-1", StudentCount: 12}, {ID: 4, Name: "B-2"}}, groups)

	var bad Course
	assert.Error(t, json.Unmarshal([]byte(`{"id":"x"}`), &bad))
}

func TestGroupByCourse(t *testing.T) {
	grades := []StudentGrade{
		{CourseID: 1, CourseName: "Math", Grade: 5},
		{CourseID: 2, CourseName: "", Grade: 3},
		{CourseID: 1, CourseName: "Math", Grade: 0},
		{CourseID: 1, CourseName: "Math", Grade: 4},
	}
	groups := GroupByCourse(grades)
	require.Len(t, groups, 2)
	assert.Equal(t, "Math", groups[0].CourseName)
	assert.Len(t, groups[0].Grades, 3)
	assert.InDelta(t, 4.5, groups[0].Average(), 0.001)
	assert.Equal(t, UnknownCourse, groups[1].CourseName)
	assert.Empty(t, GroupByCourse(nil))
}

func TestGroupByCourse_unnamedCourses(t *testing.T) {
	grades := []StudentGrade{
		{CourseID: 7, Grade: 5},
		{CourseID: 8, Grade: 2},
		{CourseID: 7, Grade: 4},
	}
	groups := GroupByCourse(grades)
	require.Len(t, groups, 2)
	assert.Equal(t, 7, groups[0].CourseID)
	assert.Len(t, groups[0].Grades, 2)
	assert.Equal(t, 8, groups[1].CourseID)
	assert.Len(t, groups[1].Grades, 1)
	for _, g := range groups {
		assert.Equal(t, UnknownCourse, g.CourseName)
	}
}

func TestRankMembers(t *testing.T) {
	members := []GroupMember{
		{ID: 1, AverageGrade: 3.5},
		{ID: 2, AverageGrade: 4.75},
		{ID: 3, AverageGrade: 3.5},
		{ID: 4, AverageGrade: 0},
	}
	RankMembers(members)
	ids := make([]int, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []int{2, 1, 3, 4}, ids)
}

func TestValidators(t *testing.T) {
	validate := NewValidator()
	grade := func(g int) *int { return &g }

	tests := []struct {
		name   string
		form   interface{}
		fields []string
	}{
		{"valid user", NewUser{Login: "jdoe", Password: "s3cret-pass", Role: RoleTeacher}, nil},
		{"user without login", NewUser{Password: "s3cret-pass", Role: RoleTeacher}, []string{"login"}},
		{"user with bad role", NewUser{Login: "jdoe", Password: "s3cret-pass", Role: "BOGUS"}, []string{"role"}},
		{"short password", NewUser{Login: "jdoe", Password: "abc", Role: RoleAdmin}, []string{"password"}},
		{"numeric password", PasswordChange{NewPassword: "1234567890"}, []string{"new_password"}},
		{"password with space", PasswordChange{NewPassword: "pass word1"}, []string{"new_password"}},
		{"password like login", NewStudent{
			FirstName: "Ann", LastName: "Lee", DOB: "2008-01-02", GroupID: 1, Login: "annlee2008", Password: "annlee2009",
		}, []string{"password"}},
		{"blank course", CourseForm{Name: "   "}, []string{"name"}},
		{"bad dob", UpdateStudent{FirstName: "Ann", LastName: "Lee", DOB: "02.01.2008"}, []string{"dob"}},
		{"bad group ids", UpdateTeacher{FirstName: "Bo", LastName: "Ng", Login: "bo", GroupIDs: []int{1, 0}}, []string{"group_ids[1]"}},
		{"clear grade", GradeUpsert{StudentID: 1, LessonID: 2, CourseID: 3}, nil},
		{"absence grade", GradeUpsert{StudentID: 1, LessonID: 2, CourseID: 3, Grade: grade(0)}, nil},
		{"bad grade", GradeUpsert{StudentID: 1, LessonID: 2, CourseID: 3, Grade: grade(7)}, []string{"grade"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validate.Struct(tc.form)
			if tc.fields == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			vErr, ok := err.(*core.ValidationError)
			require.True(t, ok, "expected *core.ValidationError, got %T", err)
			got := make([]string, 0, len(vErr.Fields))
			for _, fld := range vErr.Fields {
				got = append(got, fld.Field)
				assert.NotEmpty(t, fld.Error)
			}
			assert.ElementsMatch(t, tc.fields, got)
		})
	}
}
