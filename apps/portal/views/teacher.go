package views

import (
	"context"
	"strconv"

	"github.com/trezcool/eduportal/core/journal"
	"github.com/trezcool/eduportal/core/school"
	"github.com/trezcool/eduportal/core/session"
	"github.com/trezcool/eduportal/services/api"
)

type TeacherView struct {
	view
	api    *api.TeacherAPI
	editor *journal.Editor
}

func NewTeacherView(sess session.Session, deps Deps) *TeacherView {
	tapi := deps.Client.Teacher(sess)
	return &TeacherView{
		view:   newView(sess, school.RoleTeacher, deps),
		api:    tapi,
		editor: journal.NewEditor(tapi, deps.Logger, deps.AbsentToken),
	}
}

func (v *TeacherView) Editor() *journal.Editor {
	return v.editor
}

func (v *TeacherView) Profile(ctx context.Context) (school.TeacherProfile, error) {
	if err := v.Mount(ctx); err != nil {
		return school.TeacherProfile{}, err
	}
	profile, err := v.api.Profile(ctx)
	if err != nil {
		return school.TeacherProfile{}, err
	}
	renderTable(v.deps.Out, []string{"ID", "NAME", "LOGIN"}, [][]string{
		{strconv.Itoa(profile.ID), profile.FirstName + " " + profile.LastName, profile.Login},
	})
	return profile, nil
}

func (v *TeacherView) Courses(ctx context.Context) ([]school.Course, error) {
	return list(ctx, &v.view, v.api.Courses,
		[]string{"ID", "NAME"},
		func(c school.Course) []string { return []string{strconv.Itoa(c.ID), c.Name} })
}

// Groups selects the course in the editor and lists its groups.
func (v *TeacherView) Groups(ctx context.Context, courseID int) ([]school.Group, error) {
	return list(ctx, &v.view,
		func(ctx context.Context) ([]school.Group, error) { return v.editor.SelectCourse(ctx, courseID) },
		[]string{"ID", "NAME", "STUDENTS"},
		func(g school.Group) []string {
			return []string{strconv.Itoa(g.ID), g.Name, strconv.Itoa(g.StudentCount)}
		})
}

// OpenJournal selects the course and group in the editor and renders the grid.
// Opening the current selection again re-fetches the journal.
func (v *TeacherView) OpenJournal(ctx context.Context, courseID, groupID int) (*journal.Grid, error) {
	if err := v.Mount(ctx); err != nil {
		return nil, err
	}
	var err error
	if v.selected(courseID, groupID) {
		_, err = v.editor.Reload(ctx)
	} else {
		err = v.open(ctx, courseID, groupID)
	}
	if err != nil {
		return nil, err
	}
	grid := v.editor.Grid()
	renderGrid(v.deps.Out, v.color, grid)
	return grid, nil
}

func (v *TeacherView) selected(courseID, groupID int) bool {
	state, curCourse, curGroup := v.editor.State()
	return state == journal.StateGroupSelected && curCourse == courseID && curGroup == groupID
}

// open makes courseID and groupID the editor selection, keeping a matching one as loaded.
func (v *TeacherView) open(ctx context.Context, courseID, groupID int) error {
	if err := v.Mount(ctx); err != nil {
		return err
	}
	if v.selected(courseID, groupID) {
		return nil
	}
	if _, err := v.editor.SelectCourse(ctx, courseID); err != nil {
		return err
	}
	_, err := v.editor.SelectGroup(ctx, groupID)
	return err
}

// Grade edits one journal cell and prints the cell as it stands afterwards.
func (v *TeacherView) Grade(ctx context.Context, courseID, groupID, studentID, lessonID int, raw string) (journal.EditResult, error) {
	if err := v.open(ctx, courseID, groupID); err != nil {
		return journal.EditResult{}, err
	}
	res, err := v.editor.EditCell(ctx, studentID, lessonID, raw)
	if res.Outcome == journal.OutcomeSaved {
		display := res.Cell.Display
		if display == "" {
			display = "(cleared)"
		}
		v.printf("student %d, lesson %d: %s\n", studentID, lessonID, paint(v.color, res.Cell.Color, display))
	}
	return res, err
}

// AddLesson creates a lesson for the course and group, then renders the reloaded grid.
func (v *TeacherView) AddLesson(ctx context.Context, courseID, groupID int, date, homework string) (*journal.Grid, error) {
	if err := v.open(ctx, courseID, groupID); err != nil {
		return nil, err
	}
	grid, err := v.editor.AddLesson(ctx, date, homework)
	if err != nil {
		return nil, err
	}
	renderGrid(v.deps.Out, v.color, grid)
	return grid, nil
}
