package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/eduportal/core/school"
	"github.com/trezcool/eduportal/core/session"
)

// bind decodes the request body into v and validates it.
func (h *handlers) bind(ctx echo.Context, v interface{}, what string) error {
	if err := ctx.Bind(v); err != nil {
		return errors.Wrap(err, "binding to "+what)
	}
	return h.validate.Struct(v)
}

func (h *handlers) login(ctx echo.Context) error {
	var creds session.Credentials
	if err := h.bind(ctx, &creds, "Credentials"); err != nil {
		return err
	}
	usr, err := h.svc.Authenticate(creds.Login, creds.Password)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"role":   usr.Role,
		"id":     usr.ID,
	})
}

// =========================================================================
// Admin

func registerAdminAPI(g *echo.Group, h *handlers) {
	g.GET("/users", h.queryUsers)
	g.POST("/users", h.createUser)
	g.PUT("/users/:id", h.updateUser)
	g.DELETE("/users/:id", h.deleteUser)

	g.GET("/courses", h.queryCourses)
	g.POST("/courses", h.createCourse)
	g.PUT("/courses/:id", h.updateCourse)
	g.DELETE("/courses/:id", h.deleteCourse)

	g.GET("/groups", h.queryGroups)
	g.POST("/groups", h.createGroup)
	g.PUT("/groups/:id", h.updateGroup)
	g.DELETE("/groups/:id", h.deleteGroup)

	g.GET("/students", h.queryStudents)
	g.POST("/students", h.createStudent)
	g.GET("/students/:id/profile", h.retrieveStudent)
	g.PUT("/students/:id/profile", h.updateStudent)
	g.DELETE("/students/:id", h.deleteStudent)

	g.GET("/teachers", h.queryTeachers)
	g.POST("/teachers", h.createTeacher)
	g.GET("/teachers/load", h.queryLoads)
	g.POST("/teachers/load", h.assignLoad)
	g.PUT("/teachers/:id", h.updateTeacher)
	g.DELETE("/teachers/:id", h.deleteTeacher)
}

func (h *handlers) queryUsers(ctx echo.Context) error {
	users, err := h.svc.QueryUsers()
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	return ctx.JSON(http.StatusOK, users)
}

func (h *handlers) createUser(ctx echo.Context) error {
	var data school.NewUser
	if err := h.bind(ctx, &data, "NewUser"); err != nil {
		return err
	}
	if _, err := h.svc.CreateUser(data); err != nil {
		return errors.Wrap(err, "creating user")
	}
	return ctx.String(http.StatusCreated, "User created")
}

func (h *handlers) updateUser(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data school.UpdateUser
	if err := h.bind(ctx, &data, "UpdateUser"); err != nil {
		return err
	}
	if _, err := h.svc.UpdateUser(id, data); err != nil {
		return errors.Wrap(err, "updating user")
	}
	return ctx.String(http.StatusOK, "User updated")
}

func (h *handlers) deleteUser(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if id == contextUser(ctx).ID {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot delete yourself")
	}
	if err := h.svc.DeleteUser(id); err != nil {
		return errors.Wrap(err, "deleting user")
	}
	return ctx.String(http.StatusOK, "User deleted")
}

func (h *handlers) queryCourses(ctx echo.Context) error {
	courses, err := h.svc.QueryCourses()
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (h *handlers) createCourse(ctx echo.Context) error {
	var data school.CourseForm
	if err := h.bind(ctx, &data, "CourseForm"); err != nil {
		return err
	}
	if _, err := h.svc.CreateCourse(data); err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.String(http.StatusCreated, "Course added")
}

func (h *handlers) updateCourse(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data school.CourseForm
	if err := h.bind(ctx, &data, "CourseForm"); err != nil {
		return err
	}
	if _, err := h.svc.UpdateCourse(id, data); err != nil {
		return errors.Wrap(err, "updating course")
	}
	return ctx.String(http.StatusOK, "Course updated")
}

func (h *handlers) deleteCourse(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteCourse(id); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.String(http.StatusOK, "Course deleted")
}

func (h *handlers) queryGroups(ctx echo.Context) error {
	groups, err := h.svc.QueryGroups()
	if err != nil {
		return errors.Wrap(err, "querying groups")
	}
	return ctx.JSON(http.StatusOK, groups)
}

func (h *handlers) createGroup(ctx echo.Context) error {
	var data school.GroupForm
	if err := h.bind(ctx, &data, "GroupForm"); err != nil {
		return err
	}
	if _, err := h.svc.CreateGroup(data); err != nil {
		return errors.Wrap(err, "creating group")
	}
	return ctx.String(http.StatusCreated, "Group added")
}

func (h *handlers) updateGroup(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data school.GroupForm
	if err := h.bind(ctx, &data, "GroupForm"); err != nil {
		return err
	}
	if _, err := h.svc.UpdateGroup(id, data); err != nil {
		return errors.Wrap(err, "updating group")
	}
	return ctx.String(http.StatusOK, "Group updated")
}

func (h *handlers) deleteGroup(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteGroup(id); err != nil {
		return errors.Wrap(err, "deleting group")
	}
	return ctx.String(http.StatusOK, "Group deleted")
}

func (h *handlers) queryStudents(ctx echo.Context) error {
	students, err := h.svc.QueryStudents()
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (h *handlers) createStudent(ctx echo.Context) error {
	var data school.NewStudent
	if err := h.bind(ctx, &data, "NewStudent"); err != nil {
		return err
	}
	if _, err := h.svc.CreateStudent(data); err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.String(http.StatusCreated, "Student added")
}

func (h *handlers) retrieveStudent(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	std, err := h.svc.GetStudent(id)
	if err != nil {
		return errors.Wrap(err, "getting student")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (h *handlers) updateStudent(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data school.UpdateStudent
	if err := h.bind(ctx, &data, "UpdateStudent"); err != nil {
		return err
	}
	if _, err := h.svc.UpdateStudent(id, data); err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.String(http.StatusOK, "Student updated")
}

func (h *handlers) deleteStudent(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteStudent(id); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.String(http.StatusOK, "Student deleted")
}

func (h *handlers) queryTeachers(ctx echo.Context) error {
	teachers, err := h.svc.QueryTeachers()
	if err != nil {
		return errors.Wrap(err, "querying teachers")
	}
	return ctx.JSON(http.StatusOK, teachers)
}

func (h *handlers) createTeacher(ctx echo.Context) error {
	var data school.NewTeacher
	if err := h.bind(ctx, &data, "NewTeacher"); err != nil {
		return err
	}
	if _, err := h.svc.CreateTeacher(data); err != nil {
		return errors.Wrap(err, "creating teacher")
	}
	return ctx.String(http.StatusCreated, "Teacher added")
}

func (h *handlers) updateTeacher(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data school.UpdateTeacher
	if err := h.bind(ctx, &data, "UpdateTeacher"); err != nil {
		return err
	}
	if _, err := h.svc.UpdateTeacher(id, data); err != nil {
		return errors.Wrap(err, "updating teacher")
	}
	return ctx.String(http.StatusOK, "Teacher updated")
}

func (h *handlers) deleteTeacher(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteTeacher(id); err != nil {
		return errors.Wrap(err, "deleting teacher")
	}
	return ctx.String(http.StatusOK, "Teacher deleted")
}

func (h *handlers) queryLoads(ctx echo.Context) error {
	loads, err := h.svc.QueryLoads()
	if err != nil {
		return errors.Wrap(err, "querying loads")
	}
	return ctx.JSON(http.StatusOK, loads)
}

func (h *handlers) assignLoad(ctx echo.Context) error {
	var data school.LoadForm
	if err := h.bind(ctx, &data, "LoadForm"); err != nil {
		return err
	}
	if err := h.svc.AssignLoad(data); err != nil {
		return errors.Wrap(err, "assigning load")
	}
	return ctx.String(http.StatusOK, "Load assigned")
}

// =========================================================================
// Student

func registerStudentAPI(g *echo.Group, h *handlers) {
	g.GET("/profile", h.studentProfile)
	g.GET("/grades", h.studentGrades)
	g.GET("/group", h.studentGroup)
	g.PUT("/password", h.changePassword)
	g.GET("/predict", h.predict)
}

func (h *handlers) studentProfile(ctx echo.Context) error {
	std, err := h.svc.GetStudent(contextUser(ctx).ID)
	if err != nil {
		return errors.Wrap(err, "getting student")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (h *handlers) studentGrades(ctx echo.Context) error {
	grades, err := h.svc.StudentGrades(contextUser(ctx).ID)
	if err != nil {
		return errors.Wrap(err, "querying grades")
	}
	return ctx.JSON(http.StatusOK, grades)
}

func (h *handlers) studentGroup(ctx echo.Context) error {
	members, err := h.svc.GroupMembers(contextUser(ctx).ID)
	if err != nil {
		return errors.Wrap(err, "querying group members")
	}
	return ctx.JSON(http.StatusOK, members)
}

func (h *handlers) changePassword(ctx echo.Context) error {
	var data school.PasswordChange
	if err := h.bind(ctx, &data, "PasswordChange"); err != nil {
		return err
	}
	if err := h.svc.ChangePassword(contextUser(ctx).ID, data.NewPassword); err != nil {
		return errors.Wrap(err, "changing password")
	}
	return ctx.String(http.StatusOK, "Password changed")
}

func (h *handlers) predict(ctx echo.Context) error {
	courseID, err := queryID(ctx, "course_id")
	if err != nil {
		return err
	}
	pred, err := h.svc.Predict(contextUser(ctx).ID, courseID)
	if err != nil {
		return errors.Wrap(err, "predicting grade")
	}
	return ctx.JSON(http.StatusOK, pred)
}

// =========================================================================
// Teacher

func registerTeacherAPI(g *echo.Group, h *handlers) {
	g.GET("/profile", h.teacherProfile)
	g.GET("/courses", h.teacherCourses)
	g.GET("/courses/:id/groups", h.teacherCourseGroups)
	g.GET("/journal", h.journal)
	g.POST("/lessons", h.createLesson)
	g.POST("/grade", h.upsertGrade)
}

// teaches reports whether the teacher holds a load on the course and group. A zero groupID matches any group.
func (h *handlers) teaches(teacherID, courseID, groupID int) (bool, error) {
	groups, err := h.svc.TeacherCourseGroups(teacherID, courseID)
	if err != nil {
		return false, err
	}
	for _, g := range groups {
		if groupID == 0 || g.ID == groupID {
			return true, nil
		}
	}
	return false, nil
}

func (h *handlers) teacherProfile(ctx echo.Context) error {
	profile, err := h.svc.TeacherProfile(contextUser(ctx).ID)
	if err != nil {
		return errors.Wrap(err, "getting teacher profile")
	}
	return ctx.JSON(http.StatusOK, profile)
}

func (h *handlers) teacherCourses(ctx echo.Context) error {
	courses, err := h.svc.TeacherCourses(contextUser(ctx).ID)
	if err != nil {
		return errors.Wrap(err, "querying teacher courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (h *handlers) teacherCourseGroups(ctx echo.Context) error {
	courseID, err := pathID(ctx)
	if err != nil {
		return err
	}
	groups, err := h.svc.TeacherCourseGroups(contextUser(ctx).ID, courseID)
	if err != nil {
		return errors.Wrap(err, "querying teacher groups")
	}
	return ctx.JSON(http.StatusOK, groups)
}

func (h *handlers) journal(ctx echo.Context) error {
	courseID, err := queryID(ctx, "course_id")
	if err != nil {
		return err
	}
	groupID, err := queryID(ctx, "group_id")
	if err != nil {
		return err
	}
	if ok, err := h.teaches(contextUser(ctx).ID, courseID, groupID); err != nil || !ok {
		if err != nil {
			return errors.Wrap(err, "checking teacher load")
		}
		return ctx.String(http.StatusForbidden, accessDenied)
	}
	jrnl, err := h.svc.Journal(courseID, groupID)
	if err != nil {
		return errors.Wrap(err, "loading journal")
	}
	return ctx.JSON(http.StatusOK, jrnl)
}

func (h *handlers) createLesson(ctx echo.Context) error {
	var data school.NewLesson
	if err := h.bind(ctx, &data, "NewLesson"); err != nil {
		return err
	}
	if ok, err := h.teaches(contextUser(ctx).ID, data.CourseID, data.GroupID); err != nil || !ok {
		if err != nil {
			return errors.Wrap(err, "checking teacher load")
		}
		return ctx.String(http.StatusForbidden, accessDenied)
	}
	lsn, err := h.svc.CreateLesson(data)
	if err != nil {
		return errors.Wrap(err, "creating lesson")
	}
	return ctx.JSON(http.StatusCreated, lsn)
}

func (h *handlers) upsertGrade(ctx echo.Context) error {
	var data school.GradeUpsert
	if err := h.bind(ctx, &data, "GradeUpsert"); err != nil {
		return err
	}
	if ok, err := h.teaches(contextUser(ctx).ID, data.CourseID, 0); err != nil || !ok {
		if err != nil {
			return errors.Wrap(err, "checking teacher load")
		}
		return ctx.String(http.StatusForbidden, accessDenied)
	}
	if err := h.svc.UpsertGrade(data); err != nil {
		return errors.Wrap(err, "saving grade")
	}
	return ctx.String(http.StatusOK, "Grade saved")
}
