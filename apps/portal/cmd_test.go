package main

import (
	"bytes"
	"context"
	"flag"
	"net/http"
	"strconv"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/eduportal/apps/portal/views"
	"github.com/trezcool/eduportal/core"
	"github.com/trezcool/eduportal/core/journal"
	"github.com/trezcool/eduportal/core/school"
	"github.com/trezcool/eduportal/core/session"
	"github.com/trezcool/eduportal/services/api"
	"github.com/trezcool/eduportal/storage/sessionstore"
	"github.com/trezcool/eduportal/tests"
)

type cliFixture struct {
	testutil.MockAPI
	cli   *commandLine
	store *sessionstore.MemoryStore
	out   *bytes.Buffer
}

func setup(t *testing.T) cliFixture {
	mock := testutil.NewMockAPI(t)
	store := sessionstore.NewMemoryStore()
	client := api.NewClient(api.Options{BaseURL: mock.URL, HTTPClient: http.DefaultClient})
	var out, errOut bytes.Buffer

	cli := newCommandLine(store, client, views.Deps{
		Client:      client,
		Gate:        session.NewGate(store, nil),
		Out:         &out,
		AbsentToken: journal.DefaultAbsentToken,
	})
	cli.errOut = &errOut

	orig := readPasswordFunc
	readPasswordFunc = func(int) ([]byte, error) { return []byte(testutil.Password), nil }
	t.Cleanup(func() { readPasswordFunc = orig })

	return cliFixture{MockAPI: mock, cli: cli, store: store, out: &out}
}

func (fx cliFixture) loginAs(t *testing.T, role school.Role, id int) {
	t.Helper()
	require.NoError(t, fx.store.Save(context.Background(), testutil.SessionFor(role, id)))
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	wantOut    string
}

func runCLITests(t *testing.T, fx cliFixture, tests []cliTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx.out.Reset()
			err := fx.cli.run(context.Background(), append([]string{"portal"}, tt.args...))
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.wantErrStr != "":
				require.Error(t, err)
				assert.Equal(t, tt.wantErrStr, err.Error())
			default:
				require.NoError(t, err)
			}
			if tt.wantOut != "" {
				assert.Contains(t, fx.out.String(), tt.wantOut)
			}
		})
	}
}

func Test_commandLine_session(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	runCLITests(t, fx, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "whoami when logged out", args: []string{"whoami"}, wantOut: "anonymous"},
		{name: "login without flag", args: []string{"login"}, wantErr: errHelp},
		{name: "login", args: []string{"login", "-login", "abyron"}, wantOut: "Logged in as TEACHER #" + strconv.Itoa(fx.Teacher.ID)},
		{name: "whoami", args: []string{"whoami"}, wantOut: "(abyron)"},
	})

	sess, err := fx.store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, sess.Is(school.RoleTeacher))

	runCLITests(t, fx, []cliTest{
		{name: "logout", args: []string{"logout"}, wantOut: "Logged out"},
	})
	sess, err = fx.store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, sess.IsAnonymous())

	readPasswordFunc = func(int) ([]byte, error) { return []byte("nope"), nil }
	runCLITests(t, fx, []cliTest{
		{name: "wrong password", args: []string{"login", "-login", "abyron"}, wantErrStr: "invalid login or password"},
	})
}

func Test_commandLine_admin(t *testing.T) {
	fx := setup(t)
	fx.loginAs(t, school.RoleAdmin, fx.Admin.ID)
	group := strconv.Itoa(fx.Group.ID)

	runCLITests(t, fx, []cliTest{
		{name: "no entity", args: []string{"admin"}, wantErr: errHelp},
		{name: "unknown entity", args: []string{"admin", "lol"}, wantErr: errHelp},
		{name: "unknown action", args: []string{"admin", "courses", "lol"}, wantErrStr: `unknown courses action "lol"`},
		{name: "list users", args: []string{"admin", "users"}, wantOut: "osidorova"},
		{name: "add course", args: []string{"admin", "courses", "add", "-name", "Geometry"}, wantOut: "Course added"},
		{name: "list courses", args: []string{"admin", "courses", "list"}, wantOut: "Geometry"},
		{name: "update course without id", args: []string{"admin", "courses", "update", "-name", "X"}, wantErrStr: "-id is required"},
		{name: "blank course name", args: []string{"admin", "courses", "add", "-name", " "}, wantErrStr: "name: name must not be blank"},
		{
			name:    "add student",
			args:    []string{"admin", "students", "add", "-first", "Nina", "-last", "Kova", "-dob", "2008-01-02", "-group", group, "-login", "nkova"},
			wantOut: "Student added",
		},
		{name: "show student", args: []string{"admin", "students", "show", "-id", strconv.Itoa(fx.Students[0].ID)}, wantOut: "Petrov"},
		{name: "delete unknown group", args: []string{"admin", "groups", "delete", "-id", "999"}, wantErrStr: "not found"},
		{name: "bad group ids", args: []string{"admin", "teachers", "add", "-groups", "1,x"}, wantErrStr: `invalid id "x"`},
		{name: "loads", args: []string{"admin", "load"}, wantOut: "Ada Byron"},
	})

	students, err := fx.Svc.QueryStudents()
	require.NoError(t, err)
	assert.Len(t, students, 4)
}

func Test_commandLine_roleMismatch(t *testing.T) {
	fx := setup(t)
	fx.loginAs(t, school.RoleStudent, fx.Students[0].ID)

	runCLITests(t, fx, []cliTest{
		{name: "admin view", args: []string{"admin", "users"}, wantErr: session.ErrRedirectLogin},
	})

	sess, err := fx.store.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, sess.IsAnonymous())
}

func Test_commandLine_teacher(t *testing.T) {
	fx := setup(t)
	fx.loginAs(t, school.RoleTeacher, fx.Teacher.ID)
	course, group := strconv.Itoa(fx.Course.ID), strconv.Itoa(fx.Group.ID)
	std, lsn := strconv.Itoa(fx.Students[0].ID), strconv.Itoa(fx.Lessons[0].ID)

	runCLITests(t, fx, []cliTest{
		{name: "courses", args: []string{"teacher", "courses"}, wantOut: "Algebra"},
		{name: "groups without course", args: []string{"teacher", "groups"}, wantErrStr: "-course is required"},
		{name: "groups", args: []string{"teacher", "groups", "-course", course}, wantOut: "10-A"},
		{name: "journal", args: []string{"teacher", "journal", "-course", course, "-group", group}, wantOut: "Ivan Petrov"},
		{name: "grade", args: []string{"teacher", "grade", "-course", course, "-group", group, "-student", std, "-lesson", lsn, "-value", "4"}},
	})

	err := fx.cli.run(context.Background(), []string{"portal", "teacher", "grade",
		"-course", course, "-group", group, "-student", std, "-lesson", lsn, "-value", "7"})
	require.Error(t, err)
	assert.True(t, core.IsValidationError(err))

	grades, err := fx.Svc.StudentGrades(fx.Students[0].ID)
	require.NoError(t, err)
	require.Len(t, grades, 1)
	assert.Equal(t, 4, grades[0].Grade)
}

func Test_commandLine_student(t *testing.T) {
	fx := setup(t)
	fx.loginAs(t, school.RoleStudent, fx.Students[0].ID)
	testutil.SetGrade(t, fx.Svc, fx.Lessons[0], fx.Students[0].ID, testutil.IntPtr(5))

	runCLITests(t, fx, []cliTest{
		{name: "no command", args: []string{"student"}, wantErr: errHelp},
		{name: "profile", args: []string{"student", "profile"}, wantOut: "Ivan"},
		{name: "grades", args: []string{"student", "grades"}, wantOut: "5.0"},
		{name: "group", args: []string{"student", "group"}, wantOut: "Pavel Orlov"},
		{name: "password", args: []string{"student", "password"}, wantOut: "Password changed"},
	})
}

func Test_requireIDs(t *testing.T) {
	fx := setup(t)
	fs := fx.cli.flags("test")
	fs.Int("course", 0, "")
	fs.Int("group", 0, "")
	require.NoError(t, fs.Parse([]string{"-course", "3", "-group", "-1"}))

	assert.NoError(t, requireIDs(fs, "course"))
	assert.EqualError(t, requireIDs(fs, "course", "group"), "-group is required")
	assert.EqualError(t, requireIDs(fs, "lesson"), "-lesson is required")
}

func Test_commandLine_errorsCarryStack(t *testing.T) {
	type stackTracer interface {
		StackTrace() errors.StackTrace
	}
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Int("id", 0, "")
	_, idsErr := parseIDs("1,x")

	for name, err := range map[string]error{
		"requireIDs":    requireIDs(fs, "id"),
		"parseIDs":      idsErr,
		"unknownAction": unknownAction("users", "lol"),
	} {
		t.Run(name, func(t *testing.T) {
			require.Error(t, err)
			_, ok := err.(stackTracer)
			assert.True(t, ok)
		})
	}
}
