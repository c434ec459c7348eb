package inmemdb

import (
	"github.com/trezcool/eduportal/core/school"
)

func (db *DB) CheckLoginUniqueness(login string, excludedID int) error {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	for _, acc := range db.accounts {
		if acc.Login == login && acc.ID != excludedID {
			return school.ErrLoginExists
		}
	}
	return nil
}

func (db *DB) CreateAccount(acc school.Account) (school.User, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	acc.ID = db.nextID()
	db.accounts[acc.ID] = &acc
	return acc.User, nil
}

func (db *DB) QueryUsers() ([]school.User, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	users := make([]school.User, 0, len(db.accounts))
	for _, id := range sortedIDs(db.accounts) {
		users = append(users, db.accounts[id].User)
	}
	return users, nil
}

func (db *DB) GetUserByID(id int) (school.User, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	if acc, ok := db.accounts[id]; ok {
		return acc.User, nil
	}
	return school.User{}, school.ErrNotFound
}

func (db *DB) GetAccountByLogin(login string) (school.Account, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	for _, acc := range db.accounts {
		if acc.Login == login {
			return *acc, nil
		}
	}
	return school.Account{}, school.ErrNotFound
}

func (db *DB) UpdateAccount(acc school.Account) (school.User, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	orig, ok := db.accounts[acc.ID]
	if !ok {
		return school.User{}, school.ErrNotFound
	}
	// only save set fields
	if acc.PasswordHash != nil {
		orig.PasswordHash = acc.PasswordHash
	}
	if acc.Role != "" {
		orig.Role = acc.Role
	}
	orig.Login = acc.Login
	orig.FirstName = acc.FirstName
	orig.LastName = acc.LastName

	if std, ok := db.students[acc.ID]; ok {
		std.Login = orig.Login
	}
	if tch, ok := db.teachers[acc.ID]; ok {
		tch.Login = orig.Login
	}
	return orig.User, nil
}

func (db *DB) DeleteUser(id int) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, ok := db.accounts[id]; !ok {
		return school.ErrNotFound
	}
	delete(db.accounts, id)
	delete(db.students, id)
	delete(db.teachers, id)

	db.dropLoads(func(load school.TeacherLoad) bool { return load.TeacherID == id })
	for key := range db.grades {
		if key.studentID == id {
			delete(db.grades, key)
		}
	}
	return nil
}
