package main

import (
	"context"

	"github.com/trezcool/eduportal/apps/portal/views"
)

func (cli *commandLine) teacher(ctx context.Context, args []string) error {
	if len(args) == 0 {
		cli.printUsage()
		return errHelp
	}
	sess, err := cli.currentSession(ctx)
	if err != nil {
		return err
	}
	v := views.NewTeacherView(sess, cli.deps)
	if err := v.Mount(ctx); err != nil {
		return err
	}

	fs := cli.flags("teacher " + args[0])
	course := fs.Int("course", 0, "The course id.")
	group := fs.Int("group", 0, "The group id.")
	student := fs.Int("student", 0, "The student id.")
	lesson := fs.Int("lesson", 0, "The lesson id.")
	value := fs.String("value", "", "2 to 5, the absence token, or empty to clear.")
	date := fs.String("date", "", "Lesson date, YYYY-MM-DD.")
	homework := fs.String("homework", "", "Lesson homework.")
	if err := cli.parse(fs, args[1:]); err != nil {
		return err
	}

	switch args[0] {
	case "profile":
		_, err = v.Profile(ctx)
	case "courses":
		_, err = v.Courses(ctx)
	case "groups":
		if err = requireIDs(fs, "course"); err == nil {
			_, err = v.Groups(ctx, *course)
		}
	case "journal":
		if err = requireIDs(fs, "course", "group"); err == nil {
			_, err = v.OpenJournal(ctx, *course, *group)
		}
	case "grade":
		if err = requireIDs(fs, "course", "group", "student", "lesson"); err == nil {
			_, err = v.Grade(ctx, *course, *group, *student, *lesson, *value)
		}
	case "lesson":
		if err = requireIDs(fs, "course", "group"); err == nil {
			_, err = v.AddLesson(ctx, *course, *group, *date, *homework)
		}
	default:
		cli.printUsage()
		return errHelp
	}
	return err
}
