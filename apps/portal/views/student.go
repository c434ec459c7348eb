package views

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/trezcool/eduportal/core"
	"github.com/trezcool/eduportal/core/journal"
	"github.com/trezcool/eduportal/core/school"
	"github.com/trezcool/eduportal/core/session"
	"github.com/trezcool/eduportal/services/api"
)

type StudentView struct {
	view
	api *api.StudentAPI
}

func NewStudentView(sess session.Session, deps Deps) *StudentView {
	return &StudentView{
		view: newView(sess, school.RoleStudent, deps),
		api:  deps.Client.Student(sess),
	}
}

func (v *StudentView) Profile(ctx context.Context) (school.Student, error) {
	if err := v.Mount(ctx); err != nil {
		return school.Student{}, err
	}
	std, err := v.api.Profile(ctx)
	if err != nil {
		return school.Student{}, err
	}
	renderStudent(v.deps.Out, std)
	return std, nil
}

func renderStudent(w io.Writer, std school.Student) {
	renderTable(w, []string{"ID", "NAME", "DOB", "GROUP", "LOGIN"}, [][]string{
		{strconv.Itoa(std.ID), std.FullName(), std.DOB, itoa(std.GroupID), std.Login},
	})
}

// Grades renders the grades grouped by course right away and starts one prediction per course.
// The returned Predictions fill in as the calls return.
func (v *StudentView) Grades(ctx context.Context) ([]school.CourseGrades, *Predictions, error) {
	if err := v.Mount(ctx); err != nil {
		return nil, nil, err
	}
	grades, err := v.api.Grades(ctx)
	if err != nil {
		return nil, nil, err
	}
	courses := school.GroupByCourse(grades)
	preds := StartPredictions(ctx, v.api, courses, v.deps.Logger)

	rows := make([][]string, 0, len(courses))
	for _, cg := range courses {
		marks := make([]string, 0, len(cg.Grades))
		for _, g := range cg.Grades {
			grade := g.Grade
			marks = append(marks, paint(v.color, journal.ColorFor(&grade), journal.FormatGrade(&grade, v.deps.AbsentToken)))
		}
		rows = append(rows, []string{cg.CourseName, strings.Join(marks, " "), formatAverage(cg.Average()), preds.Display(cg.CourseID)})
	}
	renderTable(v.deps.Out, []string{"COURSE", "GRADES", "AVERAGE", "PREDICTION"}, rows)
	return courses, preds, nil
}

// RenderPredictions prints the current state of every prediction.
func (v *StudentView) RenderPredictions(preds *Predictions) {
	rows := make([][]string, 0)
	for _, id := range preds.Courses() {
		rows = append(rows, []string{preds.Name(id), preds.Display(id)})
	}
	renderTable(v.deps.Out, []string{"COURSE", "PREDICTION"}, rows)
}

// Group renders the members of the student's group, best average first.
func (v *StudentView) Group(ctx context.Context) ([]school.GroupMember, error) {
	if err := v.Mount(ctx); err != nil {
		return nil, err
	}
	members, err := v.api.Group(ctx)
	if err != nil {
		return nil, err
	}
	school.RankMembers(members)

	self, _ := v.sess.UserIDInt()
	rows := make([][]string, 0, len(members))
	for i, m := range members {
		name := m.FullName()
		if m.ID == self {
			name = v.color.Bold(name)
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), name, formatAverage(m.AverageGrade)})
	}
	renderTable(v.deps.Out, []string{"#", "NAME", "AVERAGE"}, rows)
	return members, nil
}

func (v *StudentView) ChangePassword(ctx context.Context, newPassword string) error {
	return v.mutate(ctx, func(ctx context.Context) (string, error) { return v.api.ChangePassword(ctx, newPassword) })
}

// =========================================================================
// Predictions

// Predictions holds the grade predictions of a student, one per course id.
// A prediction whose call failed stays computing.
type Predictions struct {
	mu      sync.Mutex
	order   []int
	names   map[int]string
	courses map[int]*coursePrediction
	done    chan struct{}
}

type coursePrediction struct {
	pred  school.Prediction
	ready bool
}

// StartPredictions calls the prediction endpoint concurrently for every course. It does not wait.
func StartPredictions(ctx context.Context, sapi *api.StudentAPI, courses []school.CourseGrades, logger core.Logger) *Predictions {
	if logger == nil {
		logger = core.NopLogger
	}
	preds := &Predictions{
		names:   make(map[int]string, len(courses)),
		courses: make(map[int]*coursePrediction, len(courses)),
		done:    make(chan struct{}),
	}

	var wg sync.WaitGroup
	for _, cg := range courses {
		if _, ok := preds.courses[cg.CourseID]; ok {
			continue
		}
		preds.order = append(preds.order, cg.CourseID)
		preds.names[cg.CourseID] = cg.CourseName
		preds.courses[cg.CourseID] = &coursePrediction{}

		wg.Add(1)
		go func(name string, courseID int) {
			defer wg.Done()
			pred, err := sapi.Predict(ctx, courseID)
			if err != nil {
				logger.Warn(fmt.Sprintf("prediction for %q (course %d) failed", name, courseID), err)
				return
			}
			preds.mu.Lock()
			preds.courses[courseID] = &coursePrediction{pred: pred, ready: true}
			preds.mu.Unlock()
		}(cg.CourseName, cg.CourseID)
	}
	go func() {
		wg.Wait()
		close(preds.done)
	}()
	return preds
}

// Wait blocks until every prediction call returned, successfully or not, or ctx is done.
func (p *Predictions) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Get returns the prediction for a course, and whether it arrived.
func (p *Predictions) Get(courseID int) (school.Prediction, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cp, ok := p.courses[courseID]
	if !ok || !cp.ready {
		return school.Prediction{}, false
	}
	return cp.pred, true
}

// Display returns the prediction text of a course.
func (p *Predictions) Display(courseID int) string {
	if pred, ok := p.Get(courseID); ok {
		return formatPrediction(pred)
	}
	return computing
}

// Courses returns the predicted course ids in grade order.
func (p *Predictions) Courses() []int {
	return append([]int(nil), p.order...)
}

// Name returns the course name a prediction is shown under.
func (p *Predictions) Name(courseID int) string {
	return p.names[courseID]
}
