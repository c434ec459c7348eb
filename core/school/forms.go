package school

type (
	NewUser struct {
		Login     string `json:"login" validate:"required,notblank"`
		Password  string `json:"password" validate:"required"`
		Role      Role   `json:"role" validate:"required,oneof=ADMIN TEACHER STUDENT"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}

	UpdateUser struct {
		Login     string `json:"login" validate:"required,notblank"`
		Role      Role   `json:"role" validate:"required,oneof=ADMIN TEACHER STUDENT"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Password  string `json:"password,omitempty"`
	}

	CourseForm struct {
		Name string `json:"name" validate:"required,notblank"`
	}

	GroupForm struct {
		Name string `json:"name" validate:"required,notblank"`
	}

	NewStudent struct {
		FirstName string `json:"first_name" validate:"required,notblank"`
		LastName  string `json:"last_name" validate:"required,notblank"`
		DOB       string `json:"dob" validate:"required,datetime=2006-01-02"`
		GroupID   int    `json:"group_id" validate:"required,gt=0"`
		Login     string `json:"login" validate:"required,notblank"`
		Password  string `json:"password" validate:"required"`
	}

	UpdateStudent struct {
		FirstName string `json:"first_name" validate:"required,notblank"`
		LastName  string `json:"last_name" validate:"required,notblank"`
		DOB       string `json:"dob" validate:"required,datetime=2006-01-02"`
		GroupID   int    `json:"group_id" validate:"omitempty,gt=0"`
	}

	NewTeacher struct {
		FirstName string `json:"first_name" validate:"required,notblank"`
		LastName  string `json:"last_name" validate:"required,notblank"`
		Login     string `json:"login" validate:"required,notblank"`
		Password  string `json:"password" validate:"required"`
		GroupIDs  []int  `json:"group_ids" validate:"dive,gt=0"`
	}

	UpdateTeacher struct {
		FirstName string `json:"first_name" validate:"required,notblank"`
		LastName  string `json:"last_name" validate:"required,notblank"`
		Login     string `json:"login" validate:"required,notblank"`
		GroupIDs  []int  `json:"group_ids" validate:"dive,gt=0"`
	}

	LoadForm struct {
		TeacherID int `json:"teacher_id" validate:"required,gt=0"`
		CourseID  int `json:"course_id" validate:"required,gt=0"`
		GroupID   int `json:"group_id" validate:"required,gt=0"`
		Hours     int `json:"hours" validate:"gte=0"`
	}

	NewLesson struct {
		CourseID int    `json:"course_id" validate:"required,gt=0"`
		GroupID  int    `json:"group_id" validate:"required,gt=0"`
		Date     string `json:"date" validate:"required,datetime=2006-01-02"`
		Homework string `json:"homework,omitempty"`
	}

	// GradeUpsert is the single-cell grade mutation. A nil Grade clears the cell.
	GradeUpsert struct {
		StudentID int  `json:"student_id" validate:"required,gt=0"`
		LessonID  int  `json:"lesson_id" validate:"required,gt=0"`
		CourseID  int  `json:"course_id" validate:"required,gt=0"`
		Grade     *int `json:"grade" validate:"omitempty,grade"`
	}

	PasswordChange struct {
		NewPassword string `json:"new_password" validate:"required"`
	}
)
