package inmemdb

import (
	"sort"
	"sync"

	"github.com/trezcool/eduportal/core/school"
)

type (
	gradeKey struct{ studentID, lessonID int }

	// DB is an in-memory school database. The zero value is not usable, use Open.
	DB struct {
		mutex sync.RWMutex
		pk    int

		accounts map[int]*school.Account
		courses  map[int]*school.Course
		groups   map[int]*school.Group
		students map[int]*school.Student
		teachers map[int]*school.Teacher
		loads    []school.TeacherLoad
		lessons  map[int]*school.Lesson
		grades   map[gradeKey]int
	}
)

var _ school.Repository = (*DB)(nil) // interface compliance check

func Open() *DB {
	return &DB{
		accounts: make(map[int]*school.Account),
		courses:  make(map[int]*school.Course),
		groups:   make(map[int]*school.Group),
		students: make(map[int]*school.Student),
		teachers: make(map[int]*school.Teacher),
		lessons:  make(map[int]*school.Lesson),
		grades:   make(map[gradeKey]int),
	}
}

// nextID returns a fresh primary key. Keys are shared by all tables. Callers hold the write lock.
func (db *DB) nextID() int {
	db.pk++
	return db.pk
}

// sortedIDs returns the keys of a table in ascending order.
func sortedIDs[T any](table map[int]*T) []int {
	ids := make([]int, 0, len(table))
	for id := range table {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
