package testutil

import (
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"

	echoapi "github.com/trezcool/eduportal/apps/mockapi/echo"
	"github.com/trezcool/eduportal/core/school"
	"github.com/trezcool/eduportal/core/session"
	inmemdb "github.com/trezcool/eduportal/storage/database/inmem"
)

// Password is shared by every seeded account.
const Password = "cinnamon-Gravel-42"

// Fixture holds the records created by Seed.
type Fixture struct {
	Admin    school.User
	Teacher  school.Teacher
	Students []school.Student
	Course   school.Course
	Group    school.Group
	Lessons  []school.Lesson
}

// Seed creates an admin, a teacher loaded on one course and group, three students in that group and two lessons.
func Seed(t *testing.T, svc *school.Service) Fixture {
	t.Helper()
	var (
		fx  Fixture
		err error
	)
	fail := func(what string, err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("Seed() %s failed: %v", what, err)
		}
	}

	fx.Admin, err = svc.CreateUser(school.NewUser{Login: "admin", Password: Password, Role: school.RoleAdmin})
	fail("admin", err)
	fx.Course, err = svc.CreateCourse(school.CourseForm{Name: "Algebra"})
	fail("course", err)
	fx.Group, err = svc.CreateGroup(school.GroupForm{Name: "10-A"})
	fail("group", err)

	fx.Teacher, err = svc.CreateTeacher(school.NewTeacher{
		FirstName: "Ada",
		LastName:  "Byron",
		Login:     "abyron",
		Password:  Password,
		GroupIDs:  []int{fx.Group.ID},
	})
	fail("teacher", err)
	err = svc.AssignLoad(school.LoadForm{TeacherID: fx.Teacher.ID, CourseID: fx.Course.ID, GroupID: fx.Group.ID, Hours: 4})
	fail("load", err)

	for _, names := range [][3]string{
		{"Ivan", "Petrov", "ipetrov"},
		{"Olga", "Sidorova", "osidorova"},
		{"Pavel", "Orlov", "porlov"},
	} {
		std, err := svc.CreateStudent(school.NewStudent{
			FirstName: names[0],
			LastName:  names[1],
			DOB:       "2008-03-14",
			GroupID:   fx.Group.ID,
			Login:     names[2],
			Password:  Password,
		})
		fail("student", err)
		fx.Students = append(fx.Students, std)
	}

	for _, date := range []string{"2024-09-02", "2024-09-09"} {
		lsn, err := svc.CreateLesson(school.NewLesson{CourseID: fx.Course.ID, GroupID: fx.Group.ID, Date: date})
		fail("lesson", err)
		fx.Lessons = append(fx.Lessons, lsn)
	}
	return fx
}

// SetGrade stores grade for the student in the lesson. A nil grade clears it.
func SetGrade(t *testing.T, svc *school.Service, lsn school.Lesson, studentID int, grade *int) {
	t.Helper()
	err := svc.UpsertGrade(school.GradeUpsert{StudentID: studentID, LessonID: lsn.ID, CourseID: lsn.CourseID, Grade: grade})
	if err != nil {
		t.Fatalf("SetGrade() failed: %v", err)
	}
}

func IntPtr(v int) *int {
	return &v
}

// MockAPI is a seeded development backend served over HTTP.
type MockAPI struct {
	URL string
	Svc *school.Service
	Fixture
}

// NewMockAPI starts a seeded development backend, stopped when the test ends.
func NewMockAPI(t *testing.T) MockAPI {
	t.Helper()
	svc := school.NewService(inmemdb.Open())
	fx := Seed(t, svc)
	srv := httptest.NewServer(echoapi.NewServer(&echoapi.Options{
		DisableReqLogs: true,
		Svc:            svc,
	}))
	t.Cleanup(srv.Close)
	return MockAPI{URL: srv.URL, Svc: svc, Fixture: fx}
}

// SessionFor returns an established session of the given user.
func SessionFor(role school.Role, id int) session.Session {
	return session.Session{
		ID:        uuid.New(),
		Role:      role,
		UserID:    strconv.Itoa(id),
		CreatedAt: time.Now().UTC(),
	}
}
