package journal

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/eduportal/core"
	"github.com/trezcool/eduportal/core/school"
)

var (
	// errors
	ErrNoCourse    = errors.New("select a course first")
	ErrNoGroup     = errors.New("select a group first")
	ErrNoGrid      = errors.New("no journal is loaded")
	ErrUnknownCell = errors.New("no such cell in the journal")
	ErrSuperseded  = errors.New("selection changed while loading")
)

// Backend is the server side of the journal.
type Backend interface {
	CourseGroups(ctx context.Context, courseID int) ([]school.Group, error)
	Journal(ctx context.Context, courseID, groupID int) (school.Journal, error)
	UpsertGrade(ctx context.Context, upsert school.GradeUpsert) error
	CreateLesson(ctx context.Context, lesson school.NewLesson) error
}

type State int

const (
	StateNoCourse State = iota
	StateCourseSelected
	StateGroupSelected
)

func (s State) String() string {
	switch s {
	case StateCourseSelected:
		return "course selected"
	case StateGroupSelected:
		return "group selected"
	}
	return "no course"
}

type Outcome int

const (
	OutcomeRejected Outcome = iota // invalid input, nothing sent
	OutcomeSaved
	OutcomeFailed
	OutcomeStale // a newer edit or selection superseded this one
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSaved:
		return "saved"
	case OutcomeFailed:
		return "failed"
	case OutcomeStale:
		return "stale"
	}
	return "rejected"
}

// EditResult reports how a cell edit ended and the cell as it stands afterwards.
type EditResult struct {
	Outcome Outcome
	Cell    Cell
}

// Editor drives the course -> group -> grid selection and persists single cell edits.
// It is safe for concurrent use. Responses that arrive for a superseded selection are dropped.
type Editor struct {
	backend     Backend
	logger      core.Logger
	absentToken string

	mu       sync.Mutex
	state    State
	courseID int
	groupID  int
	groups   []school.Group
	grid     *Grid
	gen      uint64
}

func NewEditor(backend Backend, logger core.Logger, absentToken string) *Editor {
	if logger == nil {
		logger = core.NopLogger
	}
	if absentToken == "" {
		absentToken = DefaultAbsentToken
	}
	return &Editor{backend: backend, logger: logger, absentToken: absentToken}
}

func (e *Editor) AbsentToken() string {
	return e.absentToken
}

// State returns the selection state with the selected course and group ids.
func (e *Editor) State() (State, int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state, e.courseID, e.groupID
}

func (e *Editor) Groups() []school.Group {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]school.Group(nil), e.groups...)
}

// Grid returns a copy of the visible grid, or nil when no grid is shown.
func (e *Editor) Grid() *Grid {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.grid.Clone()
}

// SelectCourse resets the group selection, hides the grid and fetches the groups of the course.
func (e *Editor) SelectCourse(ctx context.Context, courseID int) ([]school.Group, error) {
	e.mu.Lock()
	e.gen++
	gen := e.gen
	e.state = StateCourseSelected
	e.courseID = courseID
	e.groupID = 0
	e.groups = nil
	e.grid = nil
	e.mu.Unlock()

	groups, err := e.backend.CourseGroups(ctx, courseID)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen != gen {
		return nil, ErrSuperseded
	}
	if err != nil {
		return nil, errors.Wrapf(err, "loading groups of course %d", courseID)
	}
	e.groups = groups
	return append([]school.Group(nil), groups...), nil
}

// SelectGroup loads the journal of the selected course and group and rebuilds the grid from scratch.
// Selecting the same group again reloads it.
func (e *Editor) SelectGroup(ctx context.Context, groupID int) (*Grid, error) {
	e.mu.Lock()
	if e.state == StateNoCourse {
		e.mu.Unlock()
		return nil, ErrNoCourse
	}
	e.gen++
	gen := e.gen
	courseID := e.courseID
	e.state = StateGroupSelected
	e.groupID = groupID
	e.grid = nil
	e.mu.Unlock()

	jrnl, err := e.LoadJournal(ctx, courseID, groupID)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen != gen {
		return nil, ErrSuperseded
	}
	if err != nil {
		return nil, err
	}
	e.grid = BuildGrid(courseID, groupID, jrnl, e.absentToken)
	return e.grid.Clone(), nil
}

// Reload reloads the journal of the current selection.
func (e *Editor) Reload(ctx context.Context) (*Grid, error) {
	e.mu.Lock()
	state, groupID := e.state, e.groupID
	e.mu.Unlock()
	if state != StateGroupSelected {
		return nil, ErrNoGroup
	}
	return e.SelectGroup(ctx, groupID)
}

// LoadJournal fetches the sparse journal of a course and group.
func (e *Editor) LoadJournal(ctx context.Context, courseID, groupID int) (school.Journal, error) {
	jrnl, err := e.backend.Journal(ctx, courseID, groupID)
	if err != nil {
		return school.Journal{}, errors.Wrapf(err, "loading journal of course %d, group %d", courseID, groupID)
	}
	return jrnl, nil
}

// EditCell validates raw and, when accepted, persists it with exactly one upsert.
// A rejected input reverts the cell display and sends nothing.
// A failed upsert marks the cell with the error color and keeps the committed value.
func (e *Editor) EditCell(ctx context.Context, studentID, lessonID int, raw string) (EditResult, error) {
	e.mu.Lock()
	if e.grid == nil {
		e.mu.Unlock()
		return EditResult{Outcome: OutcomeRejected}, ErrNoGrid
	}
	cell, ok := e.grid.Cell(studentID, lessonID)
	if !ok {
		e.mu.Unlock()
		return EditResult{Outcome: OutcomeRejected}, ErrUnknownCell
	}

	tok, err := ParseToken(raw, e.absentToken)
	if err != nil {
		cell.Display = FormatGrade(cell.Value, e.absentToken)
		res := EditResult{Outcome: OutcomeRejected, Cell: *cell}
		e.mu.Unlock()
		return res, err
	}

	cell.seq++
	seq, gen := cell.seq, e.gen
	cell.Display = FormatGrade(tok.Value(), e.absentToken)
	upsert := school.GradeUpsert{
		StudentID: studentID,
		LessonID:  lessonID,
		CourseID:  e.courseID,
		Grade:     tok.Value(),
	}
	e.mu.Unlock()

	err = e.backend.UpsertGrade(ctx, upsert)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen != gen {
		return EditResult{Outcome: OutcomeStale}, nil
	}
	cell, _ = e.grid.Cell(studentID, lessonID)
	if cell.seq != seq {
		e.logger.Debug(fmt.Sprintf("journal: dropping stale response for cell (%d, %d)", studentID, lessonID))
		return EditResult{Outcome: OutcomeStale, Cell: *cell}, nil
	}
	if err != nil {
		cell.Color = ColorError
		return EditResult{Outcome: OutcomeFailed, Cell: *cell}, errors.Wrap(err, "saving grade")
	}
	cell.Value = upsert.Grade
	cell.Color = ColorFor(cell.Value)
	return EditResult{Outcome: OutcomeSaved, Cell: *cell}, nil
}

// AddLesson creates a lesson for the current selection, then reloads the grid.
func (e *Editor) AddLesson(ctx context.Context, date, homework string) (*Grid, error) {
	e.mu.Lock()
	state, courseID, groupID := e.state, e.courseID, e.groupID
	e.mu.Unlock()
	if state != StateGroupSelected {
		return nil, ErrNoGroup
	}

	lesson := school.NewLesson{CourseID: courseID, GroupID: groupID, Date: date, Homework: homework}
	if err := e.backend.CreateLesson(ctx, lesson); err != nil {
		return nil, errors.Wrap(err, "creating lesson")
	}
	return e.SelectGroup(ctx, groupID)
}
