package views

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/trezcool/eduportal/core/school"
	"github.com/trezcool/eduportal/core/session"
	"github.com/trezcool/eduportal/services/api"
)

type AdminView struct {
	view
	api *api.AdminAPI
}

func NewAdminView(sess session.Session, deps Deps) *AdminView {
	return &AdminView{
		view: newView(sess, school.RoleAdmin, deps),
		api:  deps.Client.Admin(sess),
	}
}

// =========================================================================
// Users

func (v *AdminView) Users(ctx context.Context) ([]school.User, error) {
	return list(ctx, &v.view, v.api.Users,
		[]string{"ID", "LOGIN", "ROLE", "NAME"},
		func(u school.User) []string {
			return []string{strconv.Itoa(u.ID), u.Login, u.Role.String(), u.FullName()}
		})
}

func (v *AdminView) CreateUser(ctx context.Context, nu school.NewUser) error {
	return v.mutate(ctx, func(ctx context.Context) (string, error) { return v.api.CreateUser(ctx, nu) })
}

func (v *AdminView) UpdateUser(ctx context.Context, id int, uu school.UpdateUser) error {
	return v.mutate(ctx, func(ctx context.Context) (string, error) { return v.api.UpdateUser(ctx, id, uu) })
}

func (v *AdminView) DeleteUser(ctx context.Context, id int) error {
	return v.mutate(ctx, func(ctx context.Context) (string, error) { return v.api.DeleteUser(ctx, id) })
}

// =========================================================================
// Courses

func (v *AdminView) Courses(ctx context.Context) ([]school.Course, error) {
	return list(ctx, &v.view, v.api.Courses,
		[]string{"ID", "NAME"},
		func(c school.Course) []string { return []string{strconv.Itoa(c.ID), c.Name} })
}

func (v *AdminView) CreateCourse(ctx context.Context, form school.CourseForm) error {
	return v.mutate(ctx, func(ctx context.Context) (string, error) { return v.api.CreateCourse(ctx, form) })
}

func (v *AdminView) UpdateCourse(ctx context.Context, id int, form school.CourseForm) error {
	return v.mutate(ctx, func(ctx context.Context) (string, error) { return v.api.UpdateCourse(ctx, id, form) })
}

func (v *AdminView) DeleteCourse(ctx context.Context, id int) error {
	return v.mutate(ctx, func(ctx context.Context) (string, error) { return v.api.DeleteCourse(ctx, id) })
}

// =========================================================================
// Groups

func (v *AdminView) Groups(ctx context.Context) ([]school.Group, error) {
	return list(ctx, &v.view, v.api.Groups,
		[]string{"ID", "NAME", "STUDENTS"},
		func(g school.Group) []string {
			return []string{strconv.Itoa(g.ID), g.Name, strconv.Itoa(g.StudentCount)}
		})
}

func (v *AdminView) CreateGroup(ctx context.Context, form school.GroupForm) error {
	return v.mutate(ctx, func(ctx context.Context) (string, error) { return v.api.CreateGroup(ctx, form) })
}

func (v *AdminView) UpdateGroup(ctx context.Context, id int, form school.GroupForm) error {
	return v.mutate(ctx, func(ctx context.Context) (string, error) { return v.api.UpdateGroup(ctx, id, form) })
}

func (v *AdminView) DeleteGroup(ctx context.Context, id int) error {
	return v.mutate(ctx, func(ctx context.Context) (string, error) { return v.api.DeleteGroup(ctx, id) })
}

// =========================================================================
// Students

func (v *AdminView) Students(ctx context.Context) ([]school.Student, error) {
	return list(ctx, &v.view, v.api.Students,
		[]string{"ID", "NAME", "DOB", "GROUP", "LOGIN"},
		func(s school.Student) []string {
			return []string{strconv.Itoa(s.ID), s.FullName(), s.DOB, itoa(s.GroupID), s.Login}
		})
}

func (v *AdminView) Student(ctx context.Context, id int) (school.Student, error) {
	if err := v.Mount(ctx); err != nil {
		return school.Student{}, err
	}
	std, err := v.api.Student(ctx, id)
	if err != nil {
		return school.Student{}, err
	}
	renderStudent(v.deps.Out, std)
	return std, nil
}

func (v *AdminView) CreateStudent(ctx context.Context, ns school.NewStudent) error {
	return v.mutate(ctx, func(ctx context.Context) (string, error) { return v.api.CreateStudent(ctx, ns) })
}

func (v *AdminView) UpdateStudent(ctx context.Context, id int, us school.UpdateStudent) error {
	return v.mutate(ctx, func(ctx context.Context) (string, error) { return v.api.UpdateStudent(ctx, id, us) })
}

func (v *AdminView) DeleteStudent(ctx context.Context, id int) error {
	return v.mutate(ctx, func(ctx context.Context) (string, error) { return v.api.DeleteStudent(ctx, id) })
}

// =========================================================================
// Teachers

func (v *AdminView) Teachers(ctx context.Context) ([]school.Teacher, error) {
	return list(ctx, &v.view, v.api.Teachers,
		[]string{"ID", "NAME", "LOGIN", "GROUPS"},
		func(t school.Teacher) []string {
			groups := strings.Join(t.GroupNames, ", ")
			if groups == "" {
				groups = joinInts(t.GroupIDs)
			}
			return []string{strconv.Itoa(t.ID), t.FirstName + " " + t.LastName, t.Login, groups}
		})
}

func (v *AdminView) CreateTeacher(ctx context.Context, nt school.NewTeacher) error {
	return v.mutate(ctx, func(ctx context.Context) (string, error) { return v.api.CreateTeacher(ctx, nt) })
}

func (v *AdminView) UpdateTeacher(ctx context.Context, id int, ut school.UpdateTeacher) error {
	return v.mutate(ctx, func(ctx context.Context) (string, error) { return v.api.UpdateTeacher(ctx, id, ut) })
}

func (v *AdminView) DeleteTeacher(ctx context.Context, id int) error {
	return v.mutate(ctx, func(ctx context.Context) (string, error) { return v.api.DeleteTeacher(ctx, id) })
}

func (v *AdminView) AssignLoad(ctx context.Context, form school.LoadForm) error {
	return v.mutate(ctx, func(ctx context.Context) (string, error) { return v.api.AssignLoad(ctx, form) })
}

// =========================================================================
// Teacher load screen

// LoadScreen is the data of the teacher load screen.
type LoadScreen struct {
	Courses  []school.Course
	Groups   []school.Group
	Teachers []school.Teacher
	Loads    []school.TeacherLoad
}

// Loads fetches courses, groups, teachers and loads concurrently and renders the screen once all four arrived.
// Any failure fails the whole screen.
func (v *AdminView) Loads(ctx context.Context) (LoadScreen, error) {
	if err := v.Mount(ctx); err != nil {
		return LoadScreen{}, err
	}

	var scr LoadScreen
	err := api.Join(ctx,
		func(ctx context.Context) (err error) {
			scr.Courses, err = v.api.Courses(ctx)
			return err
		},
		func(ctx context.Context) (err error) {
			scr.Groups, err = v.api.Groups(ctx)
			return err
		},
		func(ctx context.Context) (err error) {
			scr.Teachers, err = v.api.Teachers(ctx)
			return err
		},
		func(ctx context.Context) (err error) {
			scr.Loads, err = v.api.Loads(ctx)
			return err
		},
	)
	if err != nil {
		return LoadScreen{}, err
	}
	v.renderLoads(scr)
	return scr, nil
}

func (v *AdminView) renderLoads(scr LoadScreen) {
	courses := make(map[int]string, len(scr.Courses))
	for _, c := range scr.Courses {
		courses[c.ID] = c.Name
	}
	groups := make(map[int]string, len(scr.Groups))
	for _, g := range scr.Groups {
		groups[g.ID] = g.Name
	}
	teachers := make(map[int]string, len(scr.Teachers))
	for _, t := range scr.Teachers {
		teachers[t.ID] = t.FirstName + " " + t.LastName
	}
	name := func(names map[int]string, id int) string {
		if n, ok := names[id]; ok {
			return n
		}
		return "#" + strconv.Itoa(id)
	}

	loads := append([]school.TeacherLoad(nil), scr.Loads...)
	sort.SliceStable(loads, func(i, j int) bool { return loads[i].TeacherID < loads[j].TeacherID })

	rows := make([][]string, 0, len(loads))
	for _, l := range loads {
		rows = append(rows, []string{
			name(teachers, l.TeacherID),
			name(courses, l.CourseID),
			name(groups, l.GroupID),
			strconv.Itoa(l.Hours),
		})
	}
	renderTable(v.deps.Out, []string{"TEACHER", "COURSE", "GROUP", "HOURS"}, rows)
	v.printf("%d courses, %d groups, %d teachers\n", len(scr.Courses), len(scr.Groups), len(scr.Teachers))
}
