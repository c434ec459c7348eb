package views

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/eduportal/core"
	"github.com/trezcool/eduportal/core/journal"
	"github.com/trezcool/eduportal/core/school"
	"github.com/trezcool/eduportal/core/session"
	"github.com/trezcool/eduportal/services/api"
	"github.com/trezcool/eduportal/storage/sessionstore"
	"github.com/trezcool/eduportal/tests"
)

// recorder records the requests going through the client and fails those matching fail.
type recorder struct {
	mu    sync.Mutex
	reqs  []string
	fail  func(*http.Request) bool
	inner http.RoundTripper
}

func (r *recorder) RoundTrip(req *http.Request) (*http.Response, error) {
	r.mu.Lock()
	r.reqs = append(r.reqs, req.Method+" "+req.URL.Path)
	r.mu.Unlock()
	if r.fail != nil && r.fail(req) {
		return nil, errors.New("connection refused")
	}
	return r.inner.RoundTrip(req)
}

func (r *recorder) count(method, path string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int
	for _, req := range r.reqs {
		if req == method+" "+path {
			n++
		}
	}
	return n
}

func (r *recorder) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reqs)
}

type fixture struct {
	testutil.MockAPI
	rec   *recorder
	store *sessionstore.MemoryStore
	out   *bytes.Buffer
	deps  Deps
}

func setup(t *testing.T, fail func(*http.Request) bool) fixture {
	mock := testutil.NewMockAPI(t)
	rec := &recorder{fail: fail, inner: http.DefaultTransport}
	store := sessionstore.NewMemoryStore()
	var out bytes.Buffer
	return fixture{
		MockAPI: mock,
		rec:     rec,
		store:   store,
		out:     &out,
		deps: Deps{
			Client:      api.NewClient(api.Options{BaseURL: mock.URL, HTTPClient: &http.Client{Transport: rec}}),
			Gate:        session.NewGate(store, nil),
			Out:         &out,
			AbsentToken: journal.DefaultAbsentToken,
		},
	}
}

func TestAdminView_loginAndMount(t *testing.T) {
	fx := setup(t, nil)
	ctx := context.Background()

	sess, err := fx.deps.Client.Login(ctx, session.Credentials{Login: "admin", Password: testutil.Password})
	require.NoError(t, err)
	require.NoError(t, fx.store.Save(ctx, sess))
	assert.Equal(t, school.RoleAdmin, sess.Role)

	v := NewAdminView(sess, fx.deps)
	require.NoError(t, v.Mount(ctx))

	users, err := v.Users(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 5)
	assert.Contains(t, fx.out.String(), "abyron")

	stored, err := fx.store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, stored.ID)
}

func TestViews_roleMismatch(t *testing.T) {
	fx := setup(t, nil)
	ctx := context.Background()
	sess := testutil.SessionFor(school.RoleStudent, fx.Students[0].ID)
	require.NoError(t, fx.store.Save(ctx, sess))

	_, err := NewAdminView(sess, fx.deps).Users(ctx)
	assert.Equal(t, session.ErrRedirectLogin, err)
	_, err = NewTeacherView(sess, fx.deps).Courses(ctx)
	assert.Equal(t, session.ErrRedirectLogin, err)
	assert.Equal(t, 0, fx.rec.total())

	stored, err := fx.store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, stored.IsAnonymous())

	_, err = NewStudentView(session.Session{}, fx.deps).Profile(ctx)
	assert.Equal(t, session.ErrRedirectLogin, err)
}

func TestAdminView_mutations(t *testing.T) {
	fx := setup(t, nil)
	ctx := context.Background()
	v := NewAdminView(testutil.SessionFor(school.RoleAdmin, fx.Admin.ID), fx.deps)

	require.NoError(t, v.CreateCourse(ctx, school.CourseForm{Name: "Chemistry"}))
	assert.Contains(t, fx.out.String(), "Course added")

	err := v.CreateCourse(ctx, school.CourseForm{Name: " "})
	require.Error(t, err)
	assert.True(t, core.IsValidationError(err))
	assert.Equal(t, 1, fx.rec.count(http.MethodPost, "/admin/courses"))

	err = v.DeleteGroup(ctx, 999)
	require.Error(t, err)
	assert.Equal(t, "not found", err.Error())
}

func TestAdminView_Loads(t *testing.T) {
	fx := setup(t, nil)
	ctx := context.Background()
	v := NewAdminView(testutil.SessionFor(school.RoleAdmin, fx.Admin.ID), fx.deps)

	scr, err := v.Loads(ctx)
	require.NoError(t, err)
	assert.Len(t, scr.Courses, 1)
	assert.Len(t, scr.Groups, 1)
	assert.Len(t, scr.Teachers, 1)
	require.Len(t, scr.Loads, 1)

	out := fx.out.String()
	for _, want := range []string{"Ada Byron", "Algebra", "10-A", "4"} {
		assert.Contains(t, out, want)
	}
	for _, path := range []string{"/admin/courses", "/admin/groups", "/admin/teachers", "/admin/teachers/load"} {
		assert.Equal(t, 1, fx.rec.count(http.MethodGet, path), path)
	}
}

func TestAdminView_Loads_failure(t *testing.T) {
	fx := setup(t, func(req *http.Request) bool { return req.URL.Path == "/admin/groups" })
	ctx := context.Background()
	v := NewAdminView(testutil.SessionFor(school.RoleAdmin, fx.Admin.ID), fx.deps)

	scr, err := v.Loads(ctx)
	require.Error(t, err)
	assert.Equal(t, "network failure", err.Error())
	assert.Empty(t, scr.Loads)
	assert.Empty(t, fx.out.String())
}

func TestTeacherView_journal(t *testing.T) {
	fx := setup(t, nil)
	ctx := context.Background()
	v := NewTeacherView(testutil.SessionFor(school.RoleTeacher, fx.Teacher.ID), fx.deps)
	std, lsn := fx.Students[1].ID, fx.Lessons[0].ID

	grid, err := v.OpenJournal(ctx, fx.Course.ID, fx.Group.ID)
	require.NoError(t, err)
	assert.Len(t, grid.Rows, 3)
	assert.Len(t, grid.Lessons, 2)

	res, err := v.Grade(ctx, fx.Course.ID, fx.Group.ID, std, lsn, "5")
	require.NoError(t, err)
	assert.Equal(t, journal.OutcomeSaved, res.Outcome)
	assert.Equal(t, journal.ColorExcellent, res.Cell.Color)

	for _, raw := range []string{"6", "abc", "1"} {
		res, err = v.Grade(ctx, fx.Course.ID, fx.Group.ID, std, lsn, raw)
		require.Error(t, err, raw)
		assert.True(t, core.IsValidationError(err), raw)
		assert.Equal(t, journal.OutcomeRejected, res.Outcome)
		assert.Equal(t, "5", res.Cell.Display)
	}
	assert.Equal(t, 1, fx.rec.count(http.MethodPost, "/teacher/grade"))

	res, err = v.Grade(ctx, fx.Course.ID, fx.Group.ID, std, lsn, "н")
	require.NoError(t, err)
	assert.Equal(t, journal.DefaultAbsentToken, res.Cell.Display)

	grid, err = v.AddLesson(ctx, fx.Course.ID, fx.Group.ID, "2024-09-16", "ex. 12")
	require.NoError(t, err)
	assert.Len(t, grid.Lessons, 3)
	cell, ok := grid.Cell(std, lsn)
	require.True(t, ok)
	require.NotNil(t, cell.Value)
	assert.Equal(t, school.AbsentGrade, *cell.Value)
	assert.Contains(t, fx.out.String(), "ex. 12")
}

func TestTeacherView_OpenJournal_refetches(t *testing.T) {
	fx := setup(t, nil)
	ctx := context.Background()
	v := NewTeacherView(testutil.SessionFor(school.RoleTeacher, fx.Teacher.ID), fx.deps)
	std, lsn := fx.Students[0].ID, fx.Lessons[1].ID

	_, err := v.OpenJournal(ctx, fx.Course.ID, fx.Group.ID)
	require.NoError(t, err)
	testutil.SetGrade(t, fx.Svc, fx.Lessons[1], std, testutil.IntPtr(2))

	grid, err := v.OpenJournal(ctx, fx.Course.ID, fx.Group.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, fx.rec.count(http.MethodGet, "/teacher/journal"))
	assert.Len(t, grid.Rows, 3)
	cell, ok := grid.Cell(std, lsn)
	require.True(t, ok)
	assert.Equal(t, "2", cell.Display)
	assert.Equal(t, journal.ColorPoor, cell.Color)

	_, err = v.Grade(ctx, fx.Course.ID, fx.Group.ID, std, lsn, "3")
	require.NoError(t, err)
	assert.Equal(t, 2, fx.rec.count(http.MethodGet, "/teacher/journal"))
}

func TestStudentView_Grades(t *testing.T) {
	fx := setup(t, nil)
	ctx := context.Background()
	std := fx.Students[0].ID
	testutil.SetGrade(t, fx.Svc, fx.Lessons[0], std, testutil.IntPtr(4))
	testutil.SetGrade(t, fx.Svc, fx.Lessons[1], std, testutil.IntPtr(5))
	v := NewStudentView(testutil.SessionFor(school.RoleStudent, std), fx.deps)

	courses, preds, err := v.Grades(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "Algebra", courses[0].CourseName)
	assert.Contains(t, fx.out.String(), "4.50")

	require.NoError(t, preds.Wait(ctx))
	pred, ok := preds.Get(fx.Course.ID)
	require.True(t, ok)
	assert.InDelta(t, 4.5, pred.PredictedGrade, 0.001)
	assert.Equal(t, school.TrendFlat, pred.Trend)

	fx.out.Reset()
	v.RenderPredictions(preds)
	assert.Contains(t, fx.out.String(), "4.5")
}

func TestStudentView_predictionFailure(t *testing.T) {
	fx := setup(t, func(req *http.Request) bool { return strings.HasSuffix(req.URL.Path, "/predict") })
	ctx := context.Background()
	std := fx.Students[0].ID
	testutil.SetGrade(t, fx.Svc, fx.Lessons[0], std, testutil.IntPtr(3))
	v := NewStudentView(testutil.SessionFor(school.RoleStudent, std), fx.deps)

	_, preds, err := v.Grades(ctx)
	require.NoError(t, err)
	require.NoError(t, preds.Wait(ctx))
	_, ok := preds.Get(fx.Course.ID)
	assert.False(t, ok)
	assert.Equal(t, computing, preds.Display(fx.Course.ID))
	assert.Equal(t, 1, fx.rec.count(http.MethodGet, "/students/"+v.Session().UserID+"/predict"))
}

func TestStartPredictions_unnamedCourses(t *testing.T) {
	fx := setup(t, nil)
	ctx := context.Background()
	sess := testutil.SessionFor(school.RoleStudent, fx.Students[0].ID)
	courses := school.GroupByCourse([]school.StudentGrade{
		{CourseID: fx.Course.ID, Grade: 4},
		{CourseID: 99, Grade: 3},
	})
	require.Len(t, courses, 2)

	preds := StartPredictions(ctx, fx.deps.Client.Student(sess), courses, nil)
	require.NoError(t, preds.Wait(ctx))
	assert.Equal(t, []int{fx.Course.ID, 99}, preds.Courses())
	for _, id := range preds.Courses() {
		_, ok := preds.Get(id)
		assert.True(t, ok, id)
		assert.Equal(t, school.UnknownCourse, preds.Name(id))
	}
	assert.Equal(t, 2, fx.rec.count(http.MethodGet, "/students/"+sess.UserID+"/predict"))
}

func TestStudentView_Group(t *testing.T) {
	fx := setup(t, nil)
	ctx := context.Background()
	testutil.SetGrade(t, fx.Svc, fx.Lessons[0], fx.Students[2].ID, testutil.IntPtr(5))
	testutil.SetGrade(t, fx.Svc, fx.Lessons[0], fx.Students[0].ID, testutil.IntPtr(3))
	v := NewStudentView(testutil.SessionFor(school.RoleStudent, fx.Students[0].ID), fx.deps)

	members, err := v.Group(ctx)
	require.NoError(t, err)
	require.Len(t, members, 3)
	assert.Equal(t, fx.Students[2].ID, members[0].ID)
	assert.Equal(t, fx.Students[0].ID, members[1].ID)
	assert.Contains(t, fx.out.String(), "Pavel Orlov")
}
