package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkg/errors"

	"github.com/trezcool/eduportal/core/journal"
	"github.com/trezcool/eduportal/core/school"
	"github.com/trezcool/eduportal/core/session"
)

var (
	_ session.Authenticator = (*Client)(nil)

	errUnexpectedLogin = errors.New("unexpected login response")
)

// fetch GETs path and decodes the success value into v.
func (c *Client) fetch(ctx context.Context, sess session.Session, path string, v interface{}) error {
	res := c.Call(ctx, sess, http.MethodGet, path, nil)
	if err := res.Err(); err != nil {
		return err
	}
	return res.Decode(v)
}

// fetchAs GETs path and decodes the success value into a T.
func fetchAs[T any](ctx context.Context, c *Client, sess session.Session, path string) (T, error) {
	var v T
	if err := c.fetch(ctx, sess, path, &v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// send validates form locally, then sends it. It returns the server message, if any.
func (c *Client) send(ctx context.Context, sess session.Session, method, path string, form interface{}) (string, error) {
	if form != nil {
		if err := c.validate.Struct(form); err != nil {
			return "", err
		}
	}
	res := c.Call(ctx, sess, method, path, form)
	if err := res.Err(); err != nil {
		return "", err
	}
	return res.Message(), nil
}

func idPath(prefix string, id int, suffix ...string) string {
	p := prefix + "/" + strconv.Itoa(id)
	for _, s := range suffix {
		p += "/" + s
	}
	return p
}

// Authenticate posts credentials to /login.
func (c *Client) Authenticate(ctx context.Context, creds session.Credentials) (map[string]interface{}, error) {
	res := c.Call(ctx, session.Session{}, http.MethodPost, "/login", creds)
	if err := res.Err(); err != nil {
		return nil, err
	}
	body, ok := res.Value().(map[string]interface{})
	if !ok {
		return nil, errUnexpectedLogin
	}
	return body, nil
}

// Login validates and authenticates creds, then establishes a session.
func (c *Client) Login(ctx context.Context, creds session.Credentials) (session.Session, error) {
	return session.Login(ctx, c, c.validate, creds)
}

// =========================================================================
// Admin

type AdminAPI struct {
	c    *Client
	sess session.Session
}

func (c *Client) Admin(sess session.Session) *AdminAPI {
	return &AdminAPI{c: c, sess: sess}
}

func (a *AdminAPI) Users(ctx context.Context) ([]school.User, error) {
	return fetchAs[[]school.User](ctx, a.c, a.sess, "/admin/users")
}

func (a *AdminAPI) CreateUser(ctx context.Context, nu school.NewUser) (string, error) {
	return a.c.send(ctx, a.sess, http.MethodPost, "/admin/users", nu)
}

func (a *AdminAPI) UpdateUser(ctx context.Context, id int, uu school.UpdateUser) (string, error) {
	return a.c.send(ctx, a.sess, http.MethodPut, idPath("/admin/users", id), uu)
}

func (a *AdminAPI) DeleteUser(ctx context.Context, id int) (string, error) {
	return a.c.send(ctx, a.sess, http.MethodDelete, idPath("/admin/users", id), nil)
}

func (a *AdminAPI) Courses(ctx context.Context) ([]school.Course, error) {
	return fetchAs[[]school.Course](ctx, a.c, a.sess, "/admin/courses")
}

func (a *AdminAPI) CreateCourse(ctx context.Context, form school.CourseForm) (string, error) {
	return a.c.send(ctx, a.sess, http.MethodPost, "/admin/courses", form)
}

func (a *AdminAPI) UpdateCourse(ctx context.Context, id int, form school.CourseForm) (string, error) {
	return a.c.send(ctx, a.sess, http.MethodPut, idPath("/admin/courses", id), form)
}

func (a *AdminAPI) DeleteCourse(ctx context.Context, id int) (string, error) {
	return a.c.send(ctx, a.sess, http.MethodDelete, idPath("/admin/courses", id), nil)
}

func (a *AdminAPI) Students(ctx context.Context) ([]school.Student, error) {
	return fetchAs[[]school.Student](ctx, a.c, a.sess, "/admin/students")
}

func (a *AdminAPI) Student(ctx context.Context, id int) (school.Student, error) {
	var std school.Student
	if err := a.c.fetch(ctx, a.sess, idPath("/admin/students", id, "profile"), &std); err != nil {
		return school.Student{}, err
	}
	if std.ID == 0 {
		std.ID = id
	}
	return std, nil
}

func (a *AdminAPI) CreateStudent(ctx context.Context, ns school.NewStudent) (string, error) {
	return a.c.send(ctx, a.sess, http.MethodPost, "/admin/students", ns)
}

func (a *AdminAPI) UpdateStudent(ctx context.Context, id int, us school.UpdateStudent) (string, error) {
	return a.c.send(ctx, a.sess, http.MethodPut, idPath("/admin/students", id, "profile"), us)
}

func (a *AdminAPI) DeleteStudent(ctx context.Context, id int) (string, error) {
	return a.c.send(ctx, a.sess, http.MethodDelete, idPath("/admin/students", id), nil)
}

func (a *AdminAPI) Teachers(ctx context.Context) ([]school.Teacher, error) {
	return fetchAs[[]school.Teacher](ctx, a.c, a.sess, "/admin/teachers")
}

func (a *AdminAPI) CreateTeacher(ctx context.Context, nt school.NewTeacher) (string, error) {
	return a.c.send(ctx, a.sess, http.MethodPost, "/admin/teachers", nt)
}

func (a *AdminAPI) UpdateTeacher(ctx context.Context, id int, ut school.UpdateTeacher) (string, error) {
	return a.c.send(ctx, a.sess, http.MethodPut, idPath("/admin/teachers", id), ut)
}

func (a *AdminAPI) DeleteTeacher(ctx context.Context, id int) (string, error) {
	return a.c.send(ctx, a.sess, http.MethodDelete, idPath("/admin/teachers", id), nil)
}

func (a *AdminAPI) Loads(ctx context.Context) ([]school.TeacherLoad, error) {
	return fetchAs[[]school.TeacherLoad](ctx, a.c, a.sess, "/admin/teachers/load")
}

func (a *AdminAPI) AssignLoad(ctx context.Context, form school.LoadForm) (string, error) {
	return a.c.send(ctx, a.sess, http.MethodPost, "/admin/teachers/load", form)
}

func (a *AdminAPI) Groups(ctx context.Context) ([]school.Group, error) {
	return fetchAs[[]school.Group](ctx, a.c, a.sess, "/admin/groups")
}

func (a *AdminAPI) CreateGroup(ctx context.Context, form school.GroupForm) (string, error) {
	return a.c.send(ctx, a.sess, http.MethodPost, "/admin/groups", form)
}

func (a *AdminAPI) UpdateGroup(ctx context.Context, id int, form school.GroupForm) (string, error) {
	return a.c.send(ctx, a.sess, http.MethodPut, idPath("/admin/groups", id), form)
}

func (a *AdminAPI) DeleteGroup(ctx context.Context, id int) (string, error) {
	return a.c.send(ctx, a.sess, http.MethodDelete, idPath("/admin/groups", id), nil)
}

// =========================================================================
// Student

type StudentAPI struct {
	c    *Client
	sess session.Session
	base string
}

func (c *Client) Student(sess session.Session) *StudentAPI {
	return &StudentAPI{c: c, sess: sess, base: "/students/" + url.PathEscape(sess.UserID)}
}

func (s *StudentAPI) Profile(ctx context.Context) (school.Student, error) {
	return fetchAs[school.Student](ctx, s.c, s.sess, s.base+"/profile")
}

func (s *StudentAPI) Grades(ctx context.Context) ([]school.StudentGrade, error) {
	return fetchAs[[]school.StudentGrade](ctx, s.c, s.sess, s.base+"/grades")
}

// Group returns the members of the student's group, best average first.
func (s *StudentAPI) Group(ctx context.Context) ([]school.GroupMember, error) {
	return fetchAs[[]school.GroupMember](ctx, s.c, s.sess, s.base+"/group")
}

func (s *StudentAPI) ChangePassword(ctx context.Context, newPassword string) (string, error) {
	return s.c.send(ctx, s.sess, http.MethodPut, s.base+"/password", school.PasswordChange{NewPassword: newPassword})
}

func (s *StudentAPI) Predict(ctx context.Context, courseID int) (school.Prediction, error) {
	var pred school.Prediction
	path := s.base + "/predict?" + url.Values{"course_id": {strconv.Itoa(courseID)}}.Encode()
	if err := s.c.fetch(ctx, s.sess, path, &pred); err != nil {
		return school.Prediction{}, err
	}
	if pred.CourseID == 0 {
		pred.CourseID = courseID
	}
	return pred, nil
}

// =========================================================================
// Teacher

// TeacherAPI is the journal backend of a teacher session.
type TeacherAPI struct {
	c    *Client
	sess session.Session
}

var _ journal.Backend = (*TeacherAPI)(nil)

func (c *Client) Teacher(sess session.Session) *TeacherAPI {
	return &TeacherAPI{c: c, sess: sess}
}

func (t *TeacherAPI) Profile(ctx context.Context) (school.TeacherProfile, error) {
	return fetchAs[school.TeacherProfile](ctx, t.c, t.sess, "/teacher/profile")
}

func (t *TeacherAPI) Courses(ctx context.Context) ([]school.Course, error) {
	return fetchAs[[]school.Course](ctx, t.c, t.sess, "/teacher/courses")
}

func (t *TeacherAPI) CourseGroups(ctx context.Context, courseID int) ([]school.Group, error) {
	return fetchAs[[]school.Group](ctx, t.c, t.sess, idPath("/teacher/courses", courseID, "groups"))
}

func (t *TeacherAPI) Journal(ctx context.Context, courseID, groupID int) (school.Journal, error) {
	query := url.Values{
		"course_id": {strconv.Itoa(courseID)},
		"group_id":  {strconv.Itoa(groupID)},
	}
	return fetchAs[school.Journal](ctx, t.c, t.sess, "/teacher/journal?"+query.Encode())
}

func (t *TeacherAPI) CreateLesson(ctx context.Context, lesson school.NewLesson) error {
	_, err := t.c.send(ctx, t.sess, http.MethodPost, "/teacher/lessons", lesson)
	return err
}

func (t *TeacherAPI) UpsertGrade(ctx context.Context, upsert school.GradeUpsert) error {
	_, err := t.c.send(ctx, t.sess, http.MethodPost, "/teacher/grade", upsert)
	return err
}
