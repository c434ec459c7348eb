package journal

import "github.com/trezcool/eduportal/core/school"

type Color int

const (
	ColorNeutral Color = iota
	ColorExcellent
	ColorPoor
	ColorError
)

func (c Color) String() string {
	switch c {
	case ColorExcellent:
		return "excellent"
	case ColorPoor:
		return "poor"
	case ColorError:
		return "error"
	}
	return "neutral"
}

// ColorFor maps a committed grade to its cell color.
func ColorFor(grade *int) Color {
	if grade == nil {
		return ColorNeutral
	}
	switch *grade {
	case 5:
		return ColorExcellent
	case 2:
		return ColorPoor
	}
	return ColorNeutral
}

type (
	// Cell is one (student, lesson) slot of the grid.
	// Value is the last committed grade, Display what the cell currently shows.
	Cell struct {
		StudentID int
		LessonID  int
		Value     *int
		Display   string
		Color     Color

		seq uint64
	}

	Row struct {
		Student school.Student
		Cells   []Cell // one per lesson, in lesson order
	}

	// Grid is the dense rendering of a sparse journal.
	Grid struct {
		CourseID int
		GroupID  int
		Lessons  []school.Lesson
		Rows     []Row

		index map[cellKey]cellPos
	}

	cellKey struct{ studentID, lessonID int }
	cellPos struct{ row, col int }
)

// BuildGrid materializes a journal into rows of students by columns of lessons.
// Lessons keep the server order. Duplicate students, lessons or grades for the same pair are collapsed,
// the last grade for a pair wins and grades for unknown students or lessons are ignored.
func BuildGrid(courseID, groupID int, jrnl school.Journal, absentToken string) *Grid {
	grid := &Grid{
		CourseID: courseID,
		GroupID:  groupID,
		Lessons:  make([]school.Lesson, 0, len(jrnl.Lessons)),
		Rows:     make([]Row, 0, len(jrnl.Students)),
		index:    make(map[cellKey]cellPos),
	}

	seenLessons := make(map[int]bool, len(jrnl.Lessons))
	for _, lsn := range jrnl.Lessons {
		if seenLessons[lsn.ID] {
			continue
		}
		seenLessons[lsn.ID] = true
		grid.Lessons = append(grid.Lessons, lsn)
	}

	grades := make(map[cellKey]int, len(jrnl.Grades))
	for _, g := range jrnl.Grades {
		grades[cellKey{g.StudentID, g.LessonID}] = g.Grade
	}

	seenStudents := make(map[int]bool, len(jrnl.Students))
	for _, std := range jrnl.Students {
		if seenStudents[std.ID] {
			continue
		}
		seenStudents[std.ID] = true

		rowIdx := len(grid.Rows)
		row := Row{Student: std, Cells: make([]Cell, 0, len(grid.Lessons))}
		for colIdx, lsn := range grid.Lessons {
			key := cellKey{std.ID, lsn.ID}
			cell := Cell{StudentID: std.ID, LessonID: lsn.ID}
			if g, ok := grades[key]; ok {
				cell.Value = &g
			}
			cell.Display = FormatGrade(cell.Value, absentToken)
			cell.Color = ColorFor(cell.Value)
			row.Cells = append(row.Cells, cell)
			grid.index[key] = cellPos{rowIdx, colIdx}
		}
		grid.Rows = append(grid.Rows, row)
	}
	return grid
}

// Cell returns the cell for the (studentID, lessonID) pair.
func (g *Grid) Cell(studentID, lessonID int) (*Cell, bool) {
	pos, ok := g.index[cellKey{studentID, lessonID}]
	if !ok {
		return nil, false
	}
	return &g.Rows[pos.row].Cells[pos.col], true
}

// Filled returns the number of cells holding a committed grade.
func (g *Grid) Filled() int {
	var n int
	for _, row := range g.Rows {
		for _, cell := range row.Cells {
			if cell.Value != nil {
				n++
			}
		}
	}
	return n
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	if g == nil {
		return nil
	}
	clone := &Grid{
		CourseID: g.CourseID,
		GroupID:  g.GroupID,
		Lessons:  append([]school.Lesson(nil), g.Lessons...),
		Rows:     make([]Row, len(g.Rows)),
		index:    make(map[cellKey]cellPos, len(g.index)),
	}
	for k, v := range g.index {
		clone.index[k] = v
	}
	for i, row := range g.Rows {
		cells := make([]Cell, len(row.Cells))
		for j, cell := range row.Cells {
			if cell.Value != nil {
				v := *cell.Value
				cell.Value = &v
			}
			cells[j] = cell
		}
		clone.Rows[i] = Row{Student: row.Student, Cells: cells}
	}
	return clone
}
