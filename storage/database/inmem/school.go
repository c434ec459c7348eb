package inmemdb

import (
	"sort"

	"github.com/trezcool/eduportal/core/school"
)

// =========================================================================
// Courses

func (db *DB) CreateCourse(c school.Course) (school.Course, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	c.ID = db.nextID()
	db.courses[c.ID] = &c
	return c, nil
}

func (db *DB) QueryCourses() ([]school.Course, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	courses := make([]school.Course, 0, len(db.courses))
	for _, id := range sortedIDs(db.courses) {
		courses = append(courses, *db.courses[id])
	}
	return courses, nil
}

func (db *DB) UpdateCourse(c school.Course) (school.Course, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	orig, ok := db.courses[c.ID]
	if !ok {
		return school.Course{}, school.ErrNotFound
	}
	orig.Name = c.Name
	return *orig, nil
}

func (db *DB) DeleteCourse(id int) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, ok := db.courses[id]; !ok {
		return school.ErrNotFound
	}
	delete(db.courses, id)
	db.dropLoads(func(load school.TeacherLoad) bool { return load.CourseID == id })
	db.dropLessons(func(lsn *school.Lesson) bool { return lsn.CourseID == id })
	return nil
}

// =========================================================================
// Groups

func (db *DB) groupWithCount(g school.Group) school.Group {
	g.StudentCount = 0
	for _, std := range db.students {
		if std.GroupID == g.ID {
			g.StudentCount++
		}
	}
	return g
}

func (db *DB) CreateGroup(g school.Group) (school.Group, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	g.ID = db.nextID()
	g.StudentCount = 0
	db.groups[g.ID] = &g
	return g, nil
}

func (db *DB) QueryGroups() ([]school.Group, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	groups := make([]school.Group, 0, len(db.groups))
	for _, id := range sortedIDs(db.groups) {
		groups = append(groups, db.groupWithCount(*db.groups[id]))
	}
	return groups, nil
}

func (db *DB) UpdateGroup(g school.Group) (school.Group, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	orig, ok := db.groups[g.ID]
	if !ok {
		return school.Group{}, school.ErrNotFound
	}
	orig.Name = g.Name
	return db.groupWithCount(*orig), nil
}

// DeleteGroup removes the group, its loads and lessons. Its students are left without a group.
func (db *DB) DeleteGroup(id int) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, ok := db.groups[id]; !ok {
		return school.ErrNotFound
	}
	delete(db.groups, id)
	for _, std := range db.students {
		if std.GroupID == id {
			std.GroupID = 0
		}
	}
	for _, tch := range db.teachers {
		ids := tch.GroupIDs[:0]
		for _, gid := range tch.GroupIDs {
			if gid != id {
				ids = append(ids, gid)
			}
		}
		tch.GroupIDs = ids
	}
	db.dropLoads(func(load school.TeacherLoad) bool { return load.GroupID == id })
	db.dropLessons(func(lsn *school.Lesson) bool { return lsn.GroupID == id })
	return nil
}

// =========================================================================
// Students

func (db *DB) SaveStudent(std school.Student) (school.Student, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	acc, ok := db.accounts[std.ID]
	if !ok {
		return school.Student{}, school.ErrNotFound
	}
	std.Login = acc.Login
	db.students[std.ID] = &std
	return std, nil
}

func (db *DB) QueryStudents() ([]school.Student, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	students := make([]school.Student, 0, len(db.students))
	for _, id := range sortedIDs(db.students) {
		students = append(students, *db.students[id])
	}
	return students, nil
}

func (db *DB) GetStudent(id int) (school.Student, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	if std, ok := db.students[id]; ok {
		return *std, nil
	}
	return school.Student{}, school.ErrNotFound
}

// =========================================================================
// Teachers

func (db *DB) SaveTeacher(tch school.Teacher) (school.Teacher, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	acc, ok := db.accounts[tch.ID]
	if !ok {
		return school.Teacher{}, school.ErrNotFound
	}
	tch.Login = acc.Login
	tch.GroupIDs = append([]int{}, tch.GroupIDs...)
	tch.GroupNames = nil
	db.teachers[tch.ID] = &tch
	return db.teacherWithNames(tch), nil
}

func (db *DB) teacherWithNames(tch school.Teacher) school.Teacher {
	tch.GroupIDs = append([]int{}, tch.GroupIDs...)
	tch.GroupNames = make([]string, 0, len(tch.GroupIDs))
	for _, gid := range tch.GroupIDs {
		if g, ok := db.groups[gid]; ok {
			tch.GroupNames = append(tch.GroupNames, g.Name)
		}
	}
	return tch
}

func (db *DB) QueryTeachers() ([]school.Teacher, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	teachers := make([]school.Teacher, 0, len(db.teachers))
	for _, id := range sortedIDs(db.teachers) {
		teachers = append(teachers, db.teacherWithNames(*db.teachers[id]))
	}
	return teachers, nil
}

// =========================================================================
// Teacher loads

func (db *DB) QueryLoads() ([]school.TeacherLoad, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()
	return append([]school.TeacherLoad{}, db.loads...), nil
}

func (db *DB) SaveLoad(load school.TeacherLoad) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, ok := db.teachers[load.TeacherID]; !ok {
		return school.ErrNotFound
	}
	if _, ok := db.courses[load.CourseID]; !ok {
		return school.ErrNotFound
	}
	if _, ok := db.groups[load.GroupID]; !ok {
		return school.ErrNotFound
	}
	for i, l := range db.loads {
		if l.TeacherID == load.TeacherID && l.CourseID == load.CourseID && l.GroupID == load.GroupID {
			db.loads[i] = load
			return nil
		}
	}
	db.loads = append(db.loads, load)
	return nil
}

func (db *DB) TeacherCourses(teacherID int) ([]school.Course, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	seen := make(map[int]bool)
	courses := make([]school.Course, 0)
	for _, load := range db.loads {
		if load.TeacherID != teacherID || seen[load.CourseID] {
			continue
		}
		if c, ok := db.courses[load.CourseID]; ok {
			seen[c.ID] = true
			courses = append(courses, *c)
		}
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	return courses, nil
}

func (db *DB) TeacherCourseGroups(teacherID, courseID int) ([]school.Group, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	seen := make(map[int]bool)
	groups := make([]school.Group, 0)
	for _, load := range db.loads {
		if load.TeacherID != teacherID || load.CourseID != courseID || seen[load.GroupID] {
			continue
		}
		if g, ok := db.groups[load.GroupID]; ok {
			seen[g.ID] = true
			groups = append(groups, db.groupWithCount(*g))
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return groups, nil
}

// dropLoads removes the loads matching drop. Callers hold the write lock.
func (db *DB) dropLoads(drop func(school.TeacherLoad) bool) {
	loads := db.loads[:0]
	for _, load := range db.loads {
		if !drop(load) {
			loads = append(loads, load)
		}
	}
	db.loads = loads
}
