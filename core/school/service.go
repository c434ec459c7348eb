package school

import (
	"math"

	"github.com/pkg/errors"

	"github.com/trezcool/eduportal/core"
)

const (
	predictWindow   = 3
	trendThreshold  = .25
	predictDecimals = 10
)

// Service implements the school records operations on top of a Repository.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkLogin(login string, excludedID int) error {
	if err := svc.repo.CheckLoginUniqueness(login, excludedID); err != nil {
		if err == ErrLoginExists {
			return core.NewValidationError(err, core.FieldError{Field: "login", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) newAccount(login, pwd string, role Role, firstName, lastName string) (Account, error) {
	login = core.CleanString(login)
	if err := svc.checkLogin(login, 0); err != nil {
		return Account{}, err
	}
	acc := Account{User: User{
		Login:     login,
		Role:      role,
		FirstName: core.CleanString(firstName),
		LastName:  core.CleanString(lastName),
	}}
	if err := acc.SetPassword(pwd); err != nil {
		return Account{}, errors.Wrap(err, "hashing password")
	}
	return acc, nil
}

// Authenticate returns the user owning login when pwd matches.
func (svc *Service) Authenticate(login, pwd string) (User, error) {
	acc, err := svc.repo.GetAccountByLogin(core.CleanString(login))
	if err != nil {
		if err == ErrNotFound {
			return User{}, ErrInvalidLogin
		}
		return User{}, err
	}
	if err := acc.CheckPassword(pwd); err != nil {
		return User{}, ErrInvalidLogin
	}
	return acc.User, nil
}

// =========================================================================
// Users

func (svc *Service) CreateUser(nu NewUser) (User, error) {
	acc, err := svc.newAccount(nu.Login, nu.Password, nu.Role, nu.FirstName, nu.LastName)
	if err != nil {
		return User{}, err
	}
	return svc.repo.CreateAccount(acc)
}

func (svc *Service) QueryUsers() ([]User, error) {
	return svc.repo.QueryUsers()
}

func (svc *Service) GetUser(id int) (User, error) {
	return svc.repo.GetUserByID(id)
}

func (svc *Service) UpdateUser(id int, uu UpdateUser) (User, error) {
	login := core.CleanString(uu.Login)
	if err := svc.checkLogin(login, id); err != nil {
		return User{}, err
	}
	acc := Account{User: User{
		ID:        id,
		Login:     login,
		Role:      uu.Role,
		FirstName: core.CleanString(uu.FirstName),
		LastName:  core.CleanString(uu.LastName),
	}}
	if uu.Password != "" {
		if err := acc.SetPassword(uu.Password); err != nil {
			return User{}, errors.Wrap(err, "hashing password")
		}
	}
	return svc.repo.UpdateAccount(acc)
}

func (svc *Service) DeleteUser(id int) error {
	return svc.repo.DeleteUser(id)
}

func (svc *Service) ChangePassword(id int, pwd string) error {
	usr, err := svc.repo.GetUserByID(id)
	if err != nil {
		return err
	}
	acc := Account{User: usr}
	if err := acc.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	_, err = svc.repo.UpdateAccount(acc)
	return err
}

// =========================================================================
// Courses & Groups

func (svc *Service) CreateCourse(form CourseForm) (Course, error) {
	return svc.repo.CreateCourse(Course{Name: core.CleanString(form.Name)})
}

func (svc *Service) QueryCourses() ([]Course, error) {
	return svc.repo.QueryCourses()
}

func (svc *Service) UpdateCourse(id int, form CourseForm) (Course, error) {
	return svc.repo.UpdateCourse(Course{ID: id, Name: core.CleanString(form.Name)})
}

func (svc *Service) DeleteCourse(id int) error {
	return svc.repo.DeleteCourse(id)
}

func (svc *Service) CreateGroup(form GroupForm) (Group, error) {
	return svc.repo.CreateGroup(Group{Name: core.CleanString(form.Name)})
}

func (svc *Service) QueryGroups() ([]Group, error) {
	return svc.repo.QueryGroups()
}

func (svc *Service) UpdateGroup(id int, form GroupForm) (Group, error) {
	return svc.repo.UpdateGroup(Group{ID: id, Name: core.CleanString(form.Name)})
}

func (svc *Service) DeleteGroup(id int) error {
	return svc.repo.DeleteGroup(id)
}

// =========================================================================
// Students

func (svc *Service) CreateStudent(ns NewStudent) (Student, error) {
	acc, err := svc.newAccount(ns.Login, ns.Password, RoleStudent, ns.FirstName, ns.LastName)
	if err != nil {
		return Student{}, err
	}
	usr, err := svc.repo.CreateAccount(acc)
	if err != nil {
		return Student{}, err
	}
	return svc.repo.SaveStudent(Student{
		ID:        usr.ID,
		FirstName: usr.FirstName,
		LastName:  usr.LastName,
		DOB:       ns.DOB,
		GroupID:   ns.GroupID,
		Login:     usr.Login,
	})
}

func (svc *Service) QueryStudents() ([]Student, error) {
	return svc.repo.QueryStudents()
}

func (svc *Service) GetStudent(id int) (Student, error) {
	return svc.repo.GetStudent(id)
}

func (svc *Service) UpdateStudent(id int, us UpdateStudent) (Student, error) {
	std, err := svc.repo.GetStudent(id)
	if err != nil {
		return Student{}, err
	}
	std.FirstName = core.CleanString(us.FirstName)
	std.LastName = core.CleanString(us.LastName)
	std.DOB = us.DOB
	if us.GroupID != 0 {
		std.GroupID = us.GroupID
	}
	if err := svc.syncNames(id, std.FirstName, std.LastName, ""); err != nil {
		return Student{}, err
	}
	return svc.repo.SaveStudent(std)
}

func (svc *Service) DeleteStudent(id int) error {
	if _, err := svc.repo.GetStudent(id); err != nil {
		return err
	}
	return svc.repo.DeleteUser(id)
}

// syncNames copies profile changes to the account. An empty login keeps the current one.
func (svc *Service) syncNames(id int, firstName, lastName, login string) error {
	usr, err := svc.repo.GetUserByID(id)
	if err != nil {
		return err
	}
	usr.FirstName, usr.LastName = firstName, lastName
	if login != "" {
		usr.Login = login
	}
	_, err = svc.repo.UpdateAccount(Account{User: usr})
	return err
}

// =========================================================================
// Teachers

func (svc *Service) CreateTeacher(nt NewTeacher) (Teacher, error) {
	acc, err := svc.newAccount(nt.Login, nt.Password, RoleTeacher, nt.FirstName, nt.LastName)
	if err != nil {
		return Teacher{}, err
	}
	usr, err := svc.repo.CreateAccount(acc)
	if err != nil {
		return Teacher{}, err
	}
	return svc.repo.SaveTeacher(Teacher{
		ID:        usr.ID,
		FirstName: usr.FirstName,
		LastName:  usr.LastName,
		Login:     usr.Login,
		GroupIDs:  nt.GroupIDs,
	})
}

func (svc *Service) QueryTeachers() ([]Teacher, error) {
	return svc.repo.QueryTeachers()
}

func (svc *Service) UpdateTeacher(id int, ut UpdateTeacher) (Teacher, error) {
	login := core.CleanString(ut.Login)
	if err := svc.checkLogin(login, id); err != nil {
		return Teacher{}, err
	}
	tch := Teacher{
		ID:        id,
		FirstName: core.CleanString(ut.FirstName),
		LastName:  core.CleanString(ut.LastName),
		Login:     login,
		GroupIDs:  ut.GroupIDs,
	}
	if err := svc.syncNames(id, tch.FirstName, tch.LastName, login); err != nil {
		return Teacher{}, err
	}
	return svc.repo.SaveTeacher(tch)
}

func (svc *Service) DeleteTeacher(id int) error {
	return svc.repo.DeleteUser(id)
}

func (svc *Service) TeacherProfile(id int) (TeacherProfile, error) {
	usr, err := svc.repo.GetUserByID(id)
	if err != nil {
		return TeacherProfile{}, err
	}
	return TeacherProfile{ID: usr.ID, FirstName: usr.FirstName, LastName: usr.LastName, Login: usr.Login}, nil
}

func (svc *Service) QueryLoads() ([]TeacherLoad, error) {
	return svc.repo.QueryLoads()
}

func (svc *Service) AssignLoad(form LoadForm) error {
	return svc.repo.SaveLoad(TeacherLoad(form))
}

func (svc *Service) TeacherCourses(teacherID int) ([]Course, error) {
	return svc.repo.TeacherCourses(teacherID)
}

func (svc *Service) TeacherCourseGroups(teacherID, courseID int) ([]Group, error) {
	return svc.repo.TeacherCourseGroups(teacherID, courseID)
}

// =========================================================================
// Journal

func (svc *Service) CreateLesson(nl NewLesson) (Lesson, error) {
	return svc.repo.CreateLesson(Lesson{
		CourseID: nl.CourseID,
		GroupID:  nl.GroupID,
		Date:     nl.Date,
		Homework: core.CleanString(nl.Homework),
	})
}

func (svc *Service) Journal(courseID, groupID int) (Journal, error) {
	return svc.repo.Journal(courseID, groupID)
}

func (svc *Service) UpsertGrade(gu GradeUpsert) error {
	lsn, err := svc.repo.GetLesson(gu.LessonID)
	if err != nil {
		return err
	}
	if lsn.CourseID != gu.CourseID {
		return ErrUnknownLesson
	}
	if _, err := svc.repo.GetStudent(gu.StudentID); err != nil {
		return err
	}
	return svc.repo.UpsertGrade(gu.StudentID, gu.LessonID, gu.Grade)
}

// =========================================================================
// Student views

func (svc *Service) StudentGrades(studentID int) ([]StudentGrade, error) {
	if _, err := svc.repo.GetStudent(studentID); err != nil {
		return nil, err
	}
	return svc.repo.StudentGrades(studentID)
}

// GroupMembers returns the students of the group of studentID, ranked by average grade.
func (svc *Service) GroupMembers(studentID int) ([]GroupMember, error) {
	std, err := svc.repo.GetStudent(studentID)
	if err != nil {
		return nil, err
	}
	if std.GroupID == 0 {
		return nil, ErrNotInGroup
	}
	students, err := svc.repo.QueryStudents()
	if err != nil {
		return nil, err
	}

	members := make([]GroupMember, 0)
	for _, s := range students {
		if s.GroupID != std.GroupID {
			continue
		}
		grades, err := svc.repo.StudentGrades(s.ID)
		if err != nil {
			return nil, err
		}
		vals := make([]int, 0, len(grades))
		for _, g := range grades {
			vals = append(vals, g.Grade)
		}
		members = append(members, GroupMember{
			ID:           s.ID,
			FirstName:    s.FirstName,
			LastName:     s.LastName,
			AverageGrade: Average(vals),
		})
	}
	RankMembers(members)
	return members, nil
}

// Predict forecasts the next grade of studentID in courseID.
func (svc *Service) Predict(studentID, courseID int) (Prediction, error) {
	grades, err := svc.StudentGrades(studentID)
	if err != nil {
		return Prediction{}, err
	}
	vals := make([]int, 0, len(grades))
	for _, g := range grades {
		if g.CourseID == courseID {
			vals = append(vals, g.Grade)
		}
	}
	return PredictGrade(courseID, vals), nil
}

// PredictGrade forecasts the next grade from past grades in chronological order.
// The forecast is the mean of the last few grades; the trend compares it with the mean of the earlier ones.
// Absence marks are ignored.
func PredictGrade(courseID int, grades []int) Prediction {
	vals := make([]int, 0, len(grades))
	for _, g := range grades {
		if g > AbsentGrade {
			vals = append(vals, g)
		}
	}
	pred := Prediction{CourseID: courseID, Trend: TrendFlat}
	if len(vals) == 0 {
		return pred
	}

	split := len(vals) - predictWindow
	if split < 0 {
		split = 0
	}
	recent := Average(vals[split:])
	pred.PredictedGrade = math.Round(recent*predictDecimals) / predictDecimals
	if split > 0 {
		switch diff := recent - Average(vals[:split]); {
		case diff > trendThreshold:
			pred.Trend = TrendUp
		case diff < -trendThreshold:
			pred.Trend = TrendDown
		}
	}
	return pred
}
