package inmemdb

import (
	"sort"

	"github.com/trezcool/eduportal/core/school"
)

func (db *DB) CreateLesson(lsn school.Lesson) (school.Lesson, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, ok := db.courses[lsn.CourseID]; !ok {
		return school.Lesson{}, school.ErrNotFound
	}
	if _, ok := db.groups[lsn.GroupID]; !ok {
		return school.Lesson{}, school.ErrNotFound
	}
	lsn.ID = db.nextID()
	db.lessons[lsn.ID] = &lsn
	return lsn, nil
}

func (db *DB) GetLesson(id int) (school.Lesson, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	if lsn, ok := db.lessons[id]; ok {
		return *lsn, nil
	}
	return school.Lesson{}, school.ErrNotFound
}

// sortLessons orders lessons by date, then creation.
func sortLessons(lessons []school.Lesson) {
	sort.SliceStable(lessons, func(i, j int) bool {
		if lessons[i].Date != lessons[j].Date {
			return lessons[i].Date < lessons[j].Date
		}
		return lessons[i].ID < lessons[j].ID
	})
}

func (db *DB) Journal(courseID, groupID int) (school.Journal, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	if _, ok := db.courses[courseID]; !ok {
		return school.Journal{}, school.ErrNotFound
	}
	if _, ok := db.groups[groupID]; !ok {
		return school.Journal{}, school.ErrNotFound
	}

	jrnl := school.Journal{
		Lessons:  make([]school.Lesson, 0),
		Students: make([]school.Student, 0),
		Grades:   make([]school.GradeEntry, 0),
	}
	for _, id := range sortedIDs(db.lessons) {
		if lsn := db.lessons[id]; lsn.CourseID == courseID && lsn.GroupID == groupID {
			jrnl.Lessons = append(jrnl.Lessons, *lsn)
		}
	}
	sortLessons(jrnl.Lessons)

	for _, id := range sortedIDs(db.students) {
		if std := db.students[id]; std.GroupID == groupID {
			jrnl.Students = append(jrnl.Students, *std)
		}
	}
	for _, std := range jrnl.Students {
		for _, lsn := range jrnl.Lessons {
			if g, ok := db.grades[gradeKey{std.ID, lsn.ID}]; ok {
				jrnl.Grades = append(jrnl.Grades, school.GradeEntry{StudentID: std.ID, LessonID: lsn.ID, Grade: g})
			}
		}
	}
	return jrnl, nil
}

func (db *DB) UpsertGrade(studentID, lessonID int, grade *int) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, ok := db.students[studentID]; !ok {
		return school.ErrNotFound
	}
	if _, ok := db.lessons[lessonID]; !ok {
		return school.ErrNotFound
	}
	key := gradeKey{studentID, lessonID}
	if grade == nil {
		delete(db.grades, key)
		return nil
	}
	db.grades[key] = *grade
	return nil
}

// StudentGrades returns the grades of a student in lesson order, absence marks included.
func (db *DB) StudentGrades(studentID int) ([]school.StudentGrade, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	lessons := make([]school.Lesson, 0)
	for key := range db.grades {
		if key.studentID == studentID {
			if lsn, ok := db.lessons[key.lessonID]; ok {
				lessons = append(lessons, *lsn)
			}
		}
	}
	sortLessons(lessons)

	grades := make([]school.StudentGrade, 0, len(lessons))
	for _, lsn := range lessons {
		sg := school.StudentGrade{
			CourseID:     lsn.CourseID,
			Grade:        db.grades[gradeKey{studentID, lsn.ID}],
			DateAssigned: lsn.Date,
		}
		if c, ok := db.courses[lsn.CourseID]; ok {
			sg.CourseName = c.Name
		}
		grades = append(grades, sg)
	}
	return grades, nil
}

// dropLessons removes the lessons matching drop and their grades. Callers hold the write lock.
func (db *DB) dropLessons(drop func(*school.Lesson) bool) {
	for id, lsn := range db.lessons {
		if drop(lsn) {
			delete(db.lessons, id)
		}
	}
	for key := range db.grades {
		if _, ok := db.lessons[key.lessonID]; !ok {
			delete(db.grades, key)
		}
	}
}
