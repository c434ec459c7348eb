package school

import "errors"

var (
	// errors
	ErrNotFound      = errors.New("not found")
	ErrLoginExists   = errors.New("a user with this login already exists")
	ErrInvalidLogin  = errors.New("invalid login or password")
	ErrNotInGroup    = errors.New("student is not in a group")
	ErrUnknownLesson = errors.New("lesson does not belong to this course")
)

// Repository stores the school records served by the development backend.
// Students and teachers share the id of their account.
type Repository interface {
	CheckLoginUniqueness(login string, excludedID int) error
	CreateAccount(acc Account) (User, error)
	QueryUsers() ([]User, error)
	GetUserByID(id int) (User, error)
	GetAccountByLogin(login string) (Account, error)
	// UpdateAccount saves acc. A nil PasswordHash keeps the current one.
	UpdateAccount(acc Account) (User, error)
	// DeleteUser also deletes the student or teacher profile of the user.
	DeleteUser(id int) error

	CreateCourse(c Course) (Course, error)
	QueryCourses() ([]Course, error)
	UpdateCourse(c Course) (Course, error)
	DeleteCourse(id int) error

	CreateGroup(g Group) (Group, error)
	QueryGroups() ([]Group, error)
	UpdateGroup(g Group) (Group, error)
	DeleteGroup(id int) error

	SaveStudent(std Student) (Student, error)
	QueryStudents() ([]Student, error)
	GetStudent(id int) (Student, error)

	SaveTeacher(tch Teacher) (Teacher, error)
	QueryTeachers() ([]Teacher, error)

	QueryLoads() ([]TeacherLoad, error)
	// SaveLoad creates or replaces the load of a (teacher, course, group) triple.
	SaveLoad(load TeacherLoad) error
	TeacherCourses(teacherID int) ([]Course, error)
	TeacherCourseGroups(teacherID, courseID int) ([]Group, error)

	CreateLesson(lsn Lesson) (Lesson, error)
	GetLesson(id int) (Lesson, error)
	// Journal returns the lessons of a course and group ordered by date, the group students and their grades.
	Journal(courseID, groupID int) (Journal, error)
	// UpsertGrade sets the grade of a (student, lesson) pair. A nil grade deletes it.
	UpsertGrade(studentID, lessonID int, grade *int) error
	StudentGrades(studentID int) ([]StudentGrade, error)
}
