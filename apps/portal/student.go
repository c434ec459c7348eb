package main

import (
	"context"
	"fmt"

	"github.com/trezcool/eduportal/apps/portal/views"
)

func (cli *commandLine) student(ctx context.Context, args []string) error {
	if len(args) == 0 {
		cli.printUsage()
		return errHelp
	}
	sess, err := cli.currentSession(ctx)
	if err != nil {
		return err
	}
	v := views.NewStudentView(sess, cli.deps)
	if err := v.Mount(ctx); err != nil {
		return err
	}

	switch args[0] {
	case "profile":
		_, err = v.Profile(ctx)
		return err
	case "grades":
		_, preds, err := v.Grades(ctx)
		if err != nil {
			return err
		}
		if err := preds.Wait(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cli.out)
		v.RenderPredictions(preds)
		return nil
	case "group":
		_, err = v.Group(ctx)
		return err
	case "password":
		pwd, err := cli.promptPassword("Enter new password:")
		if err != nil {
			return err
		}
		return v.ChangePassword(ctx, pwd)
	}
	cli.printUsage()
	return errHelp
}
