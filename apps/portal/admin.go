package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/eduportal/apps/portal/views"
	"github.com/trezcool/eduportal/core/school"
)

func (cli *commandLine) admin(ctx context.Context, args []string) error {
	if len(args) == 0 {
		cli.printUsage()
		return errHelp
	}
	sess, err := cli.currentSession(ctx)
	if err != nil {
		return err
	}
	v := views.NewAdminView(sess, cli.deps)
	if err := v.Mount(ctx); err != nil {
		return err
	}

	entity := args[0]
	action, rest := subcommand(args[1:], "list")
	switch entity {
	case "users":
		return cli.adminUsers(ctx, v, action, rest)
	case "courses":
		return cli.adminCourses(ctx, v, action, rest)
	case "groups":
		return cli.adminGroups(ctx, v, action, rest)
	case "students":
		return cli.adminStudents(ctx, v, action, rest)
	case "teachers":
		return cli.adminTeachers(ctx, v, action, rest)
	case "load":
		return cli.adminLoad(ctx, v, action, rest)
	}
	cli.printUsage()
	return errHelp
}

func unknownAction(entity, action string) error {
	return errors.Errorf("unknown %s action %q", entity, action)
}

func (cli *commandLine) adminUsers(ctx context.Context, v *views.AdminView, action string, args []string) error {
	fs := cli.flags("users " + action)
	id := fs.Int("id", 0, "The user id.")
	login := fs.String("login", "", "The user's login.")
	role := fs.String("role", "", "ADMIN, TEACHER or STUDENT.")
	first := fs.String("first", "", "First name.")
	last := fs.String("last", "", "Last name.")
	setPwd := fs.Bool("password", false, "Prompt for a new password (update only).")
	if err := cli.parse(fs, args); err != nil {
		return err
	}

	switch action {
	case "list":
		_, err := v.Users(ctx)
		return err
	case "add":
		pwd, err := cli.promptPassword("Enter password:")
		if err != nil {
			return err
		}
		return v.CreateUser(ctx, school.NewUser{
			Login: *login, Password: pwd, Role: school.Role(*role), FirstName: *first, LastName: *last,
		})
	case "update":
		if err := requireIDs(fs, "id"); err != nil {
			return err
		}
		uu := school.UpdateUser{Login: *login, Role: school.Role(*role), FirstName: *first, LastName: *last}
		if *setPwd {
			pwd, err := cli.promptPassword("Enter new password:")
			if err != nil {
				return err
			}
			uu.Password = pwd
		}
		return v.UpdateUser(ctx, *id, uu)
	case "delete":
		if err := requireIDs(fs, "id"); err != nil {
			return err
		}
		return v.DeleteUser(ctx, *id)
	}
	return unknownAction("users", action)
}

func (cli *commandLine) adminCourses(ctx context.Context, v *views.AdminView, action string, args []string) error {
	fs := cli.flags("courses " + action)
	id := fs.Int("id", 0, "The course id.")
	name := fs.String("name", "", "The course name.")
	if err := cli.parse(fs, args); err != nil {
		return err
	}

	switch action {
	case "list":
		_, err := v.Courses(ctx)
		return err
	case "add":
		return v.CreateCourse(ctx, school.CourseForm{Name: *name})
	case "update":
		if err := requireIDs(fs, "id"); err != nil {
			return err
		}
		return v.UpdateCourse(ctx, *id, school.CourseForm{Name: *name})
	case "delete":
		if err := requireIDs(fs, "id"); err != nil {
			return err
		}
		return v.DeleteCourse(ctx, *id)
	}
	return unknownAction("courses", action)
}

func (cli *commandLine) adminGroups(ctx context.Context, v *views.AdminView, action string, args []string) error {
	fs := cli.flags("groups " + action)
	id := fs.Int("id", 0, "The group id.")
	name := fs.String("name", "", "The group name.")
	if err := cli.parse(fs, args); err != nil {
		return err
	}

	switch action {
	case "list":
		_, err := v.Groups(ctx)
		return err
	case "add":
		return v.CreateGroup(ctx, school.GroupForm{Name: *name})
	case "update":
		if err := requireIDs(fs, "id"); err != nil {
			return err
		}
		return v.UpdateGroup(ctx, *id, school.GroupForm{Name: *name})
	case "delete":
		if err := requireIDs(fs, "id"); err != nil {
			return err
		}
		return v.DeleteGroup(ctx, *id)
	}
	return unknownAction("groups", action)
}

func (cli *commandLine) adminStudents(ctx context.Context, v *views.AdminView, action string, args []string) error {
	fs := cli.flags("students " + action)
	id := fs.Int("id", 0, "The student id.")
	first := fs.String("first", "", "First name.")
	last := fs.String("last", "", "Last name.")
	dob := fs.String("dob", "", "Date of birth, YYYY-MM-DD.")
	group := fs.Int("group", 0, "The group id.")
	login := fs.String("login", "", "The student's login (add only). The password will be prompted next.")
	if err := cli.parse(fs, args); err != nil {
		return err
	}

	switch action {
	case "list":
		_, err := v.Students(ctx)
		return err
	case "show":
		if err := requireIDs(fs, "id"); err != nil {
			return err
		}
		_, err := v.Student(ctx, *id)
		return err
	case "add":
		pwd, err := cli.promptPassword("Enter password:")
		if err != nil {
			return err
		}
		return v.CreateStudent(ctx, school.NewStudent{
			FirstName: *first, LastName: *last, DOB: *dob, GroupID: *group, Login: *login, Password: pwd,
		})
	case "update":
		if err := requireIDs(fs, "id"); err != nil {
			return err
		}
		return v.UpdateStudent(ctx, *id, school.UpdateStudent{FirstName: *first, LastName: *last, DOB: *dob, GroupID: *group})
	case "delete":
		if err := requireIDs(fs, "id"); err != nil {
			return err
		}
		return v.DeleteStudent(ctx, *id)
	}
	return unknownAction("students", action)
}

func (cli *commandLine) adminTeachers(ctx context.Context, v *views.AdminView, action string, args []string) error {
	fs := cli.flags("teachers " + action)
	id := fs.Int("id", 0, "The teacher id.")
	first := fs.String("first", "", "First name.")
	last := fs.String("last", "", "Last name.")
	login := fs.String("login", "", "The teacher's login.")
	groups := fs.String("groups", "", "Comma separated group ids.")
	if err := cli.parse(fs, args); err != nil {
		return err
	}
	groupIDs, err := parseIDs(*groups)
	if err != nil {
		return err
	}

	switch action {
	case "list":
		_, err := v.Teachers(ctx)
		return err
	case "add":
		pwd, err := cli.promptPassword("Enter password:")
		if err != nil {
			return err
		}
		return v.CreateTeacher(ctx, school.NewTeacher{
			FirstName: *first, LastName: *last, Login: *login, Password: pwd, GroupIDs: groupIDs,
		})
	case "update":
		if err := requireIDs(fs, "id"); err != nil {
			return err
		}
		return v.UpdateTeacher(ctx, *id, school.UpdateTeacher{FirstName: *first, LastName: *last, Login: *login, GroupIDs: groupIDs})
	case "delete":
		if err := requireIDs(fs, "id"); err != nil {
			return err
		}
		return v.DeleteTeacher(ctx, *id)
	}
	return unknownAction("teachers", action)
}

func (cli *commandLine) adminLoad(ctx context.Context, v *views.AdminView, action string, args []string) error {
	fs := cli.flags("load " + action)
	teacher := fs.Int("teacher", 0, "The teacher id.")
	course := fs.Int("course", 0, "The course id.")
	group := fs.Int("group", 0, "The group id.")
	hours := fs.Int("hours", 0, "Hours per week.")
	if err := cli.parse(fs, args); err != nil {
		return err
	}

	switch action {
	case "list":
		_, err := v.Loads(ctx)
		return err
	case "assign":
		return v.AssignLoad(ctx, school.LoadForm{TeacherID: *teacher, CourseID: *course, GroupID: *group, Hours: *hours})
	}
	return unknownAction("load", action)
}
