package echoapi_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/eduportal/core/school"
	"github.com/trezcool/eduportal/tests"
)

type httpTest struct {
	name     string
	method   string
	path     string
	body     string
	role     school.Role
	userID   int
	wantCode int
	wantBody string // exact text, or a JSON document when it starts with { or [
}

func do(t *testing.T, baseURL string, tt httpTest) (int, []byte) {
	t.Helper()
	var body io.Reader
	if tt.body != "" {
		body = bytes.NewBufferString(tt.body)
	}
	req, err := http.NewRequest(tt.method, baseURL+tt.path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if tt.role != "" {
		req.Header.Set("role", tt.role.String())
		req.Header.Set("user_id", strconv.Itoa(tt.userID))
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, data
}

func runHTTPTests(t *testing.T, baseURL string, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, data := do(t, baseURL, tt)
			assert.Equal(t, tt.wantCode, code, string(data))
			if tt.wantBody == "" {
				return
			}
			if c := tt.wantBody[0]; c == '{' || c == '[' {
				assert.JSONEq(t, tt.wantBody, string(data))
				return
			}
			assert.Equal(t, tt.wantBody, string(data))
		})
	}
}

func TestLogin(t *testing.T) {
	mock := testutil.NewMockAPI(t)
	login := func(l, p string) string {
		return fmt.Sprintf(`{"login":%q,"password":%q}`, l, p)
	}

	runHTTPTests(t, mock.URL, []httpTest{
		{
			name:     "admin",
			method:   http.MethodPost,
			path:     "/login",
			body:     login("admin", testutil.Password),
			wantCode: http.StatusOK,
			wantBody: fmt.Sprintf(`{"status":"success","role":"ADMIN","id":%d}`, mock.Admin.ID),
		},
		{
			name:     "teacher",
			method:   http.MethodPost,
			path:     "/login",
			body:     login("abyron", testutil.Password),
			wantCode: http.StatusOK,
			wantBody: fmt.Sprintf(`{"status":"success","role":"TEACHER","id":%d}`, mock.Teacher.ID),
		},
		{
			name:     "wrong password",
			method:   http.MethodPost,
			path:     "/login",
			body:     login("admin", "wrong"),
			wantCode: http.StatusUnauthorized,
			wantBody: `{"status":"error","error":"invalid login or password"}`,
		},
		{
			name:     "missing password",
			method:   http.MethodPost,
			path:     "/login",
			body:     `{"login":"admin"}`,
			wantCode: http.StatusBadRequest,
			wantBody: `{"error":"password: password is required","fields":{"password":"password is required"}}`,
		},
	})
}

func TestRoleHeaders(t *testing.T) {
	mock := testutil.NewMockAPI(t)
	std := mock.Students[0].ID

	runHTTPTests(t, mock.URL, []httpTest{
		{"no headers", http.MethodGet, "/admin/users", "", "", 0, http.StatusForbidden, "Access denied"},
		{"wrong role", http.MethodGet, "/admin/users", "", school.RoleTeacher, mock.Teacher.ID, http.StatusForbidden, "Access denied"},
		{"claimed role", http.MethodGet, "/admin/users", "", school.RoleAdmin, mock.Teacher.ID, http.StatusForbidden, "Access denied"},
		{"unknown user", http.MethodGet, "/teacher/courses", "", school.RoleTeacher, 999, http.StatusForbidden, "Access denied"},
		{"other student", http.MethodGet, fmt.Sprintf("/students/%d/grades", std), "", school.RoleStudent, mock.Students[1].ID, http.StatusForbidden, "Access denied"},
		{"own grades", http.MethodGet, fmt.Sprintf("/students/%d/grades", std), "", school.RoleStudent, std, http.StatusOK, "[]"},
	})
}

func TestAdminAPI(t *testing.T) {
	mock := testutil.NewMockAPI(t)
	admin := mock.Admin.ID

	runHTTPTests(t, mock.URL, []httpTest{
		{"add course", http.MethodPost, "/admin/courses", `{"name":"Geometry"}`, school.RoleAdmin, admin, http.StatusCreated, "Course added"},
		{"blank course", http.MethodPost, "/admin/courses", `{"name":"  "}`, school.RoleAdmin, admin, http.StatusBadRequest, ""},
		{"rename missing course", http.MethodPut, "/admin/courses/999", `{"name":"X"}`, school.RoleAdmin, admin, http.StatusNotFound, `{"error":"not found"}`},
		{"bad id", http.MethodDelete, "/admin/courses/abc", "", school.RoleAdmin, admin, http.StatusBadRequest, `{"error":"invalid id"}`},
		{"duplicate login", http.MethodPost, "/admin/users", `{"login":"admin","password":"quartz-Fable-91","role":"ADMIN"}`,
			school.RoleAdmin, admin, http.StatusBadRequest, ""},
		{"delete self", http.MethodDelete, fmt.Sprintf("/admin/users/%d", admin), "", school.RoleAdmin, admin, http.StatusBadRequest, ""},
		{"assign load", http.MethodPost, "/admin/teachers/load",
			fmt.Sprintf(`{"teacher_id":%d,"course_id":%d,"group_id":%d,"hours":3}`, mock.Teacher.ID, mock.Course.ID, mock.Group.ID),
			school.RoleAdmin, admin, http.StatusOK, "Load assigned"},
		{"loads", http.MethodGet, "/admin/teachers/load", "", school.RoleAdmin, admin, http.StatusOK,
			fmt.Sprintf(`[{"teacher_id":%d,"course_id":%d,"group_id":%d,"hours":3}]`, mock.Teacher.ID, mock.Course.ID, mock.Group.ID)},
		{"groups", http.MethodGet, "/admin/groups", "", school.RoleAdmin, admin, http.StatusOK,
			fmt.Sprintf(`[{"id":%d,"name":"10-A","student_count":3}]`, mock.Group.ID)},
	})

	courses, err := mock.Svc.QueryCourses()
	require.NoError(t, err)
	assert.Len(t, courses, 2)
}

func TestTeacherAPI(t *testing.T) {
	mock := testutil.NewMockAPI(t)
	tch := mock.Teacher.ID
	lsn := mock.Lessons[0]
	std := mock.Students[0].ID
	grade := func(g string) string {
		return fmt.Sprintf(`{"student_id":%d,"lesson_id":%d,"course_id":%d,"grade":%s}`, std, lsn.ID, lsn.CourseID, g)
	}

	runHTTPTests(t, mock.URL, []httpTest{
		{"courses", http.MethodGet, "/teacher/courses", "", school.RoleTeacher, tch, http.StatusOK,
			fmt.Sprintf(`[{"id":%d,"name":"Algebra"}]`, mock.Course.ID)},
		{"grade", http.MethodPost, "/teacher/grade", grade("5"), school.RoleTeacher, tch, http.StatusOK, "Grade saved"},
		{"absence", http.MethodPost, "/teacher/grade", grade("0"), school.RoleTeacher, tch, http.StatusOK, "Grade saved"},
		{"out of range", http.MethodPost, "/teacher/grade", grade("6"), school.RoleTeacher, tch, http.StatusBadRequest, ""},
		{"foreign course", http.MethodGet, fmt.Sprintf("/teacher/journal?course_id=%d&group_id=%d", 999, mock.Group.ID), "",
			school.RoleTeacher, tch, http.StatusForbidden, "Access denied"},
		{"missing group", http.MethodGet, fmt.Sprintf("/teacher/journal?course_id=%d", mock.Course.ID), "",
			school.RoleTeacher, tch, http.StatusBadRequest, `{"error":"invalid group_id"}`},
	})

	jrnl, err := mock.Svc.Journal(mock.Course.ID, mock.Group.ID)
	require.NoError(t, err)
	assert.Equal(t, []school.GradeEntry{{StudentID: std, LessonID: lsn.ID, Grade: school.AbsentGrade}}, jrnl.Grades)

	code, data := do(t, mock.URL, httpTest{
		method: http.MethodGet,
		path:   fmt.Sprintf("/teacher/journal?course_id=%d&group_id=%d", mock.Course.ID, mock.Group.ID),
		role:   school.RoleTeacher,
		userID: tch,
	})
	require.Equal(t, http.StatusOK, code)
	var got school.Journal
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Len(t, got.Lessons, 2)
	assert.Len(t, got.Students, 3)
}
