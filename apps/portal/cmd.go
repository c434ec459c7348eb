package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/trezcool/eduportal/apps/portal/views"
	"github.com/trezcool/eduportal/core/session"
	"github.com/trezcool/eduportal/services/api"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	store  session.Store
	client *api.Client
	deps   views.Deps
	out    io.Writer
	errOut io.Writer
	stdin  int
}

func newCommandLine(store session.Store, client *api.Client, deps views.Deps) *commandLine {
	return &commandLine{
		store:  store,
		client: client,
		deps:   deps,
		out:    deps.Out,
		errOut: os.Stderr,
		stdin:  int(os.Stdin.Fd()),
	}
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.errOut, "Usage:")
	fmt.Fprintln(cli.errOut, "  login -login LOGIN                       - log in, the password is prompted next")
	fmt.Fprintln(cli.errOut, "  logout                                   - forget the current session")
	fmt.Fprintln(cli.errOut, "  whoami                                   - print the current session")
	fmt.Fprintln(cli.errOut, "  admin users|courses|groups [list|add|update|delete] ...")
	fmt.Fprintln(cli.errOut, "  admin students [list|show|add|update|delete] ...")
	fmt.Fprintln(cli.errOut, "  admin teachers [list|add|update|delete] ...")
	fmt.Fprintln(cli.errOut, "  admin load [list|assign] ...")
	fmt.Fprintln(cli.errOut, "  teacher profile|courses|groups|journal|grade|lesson ...")
	fmt.Fprintln(cli.errOut, "  student profile|grades|group|password")
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "login":
		return cli.login(ctx, args[2:])
	case "logout":
		if err := session.Logout(ctx, cli.store); err != nil {
			return err
		}
		fmt.Fprintln(cli.out, "Logged out")
		return nil
	case "whoami":
		sess, err := cli.store.Load(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(cli.out, sess)
		return nil
	case "admin":
		return cli.admin(ctx, args[2:])
	case "teacher":
		return cli.teacher(ctx, args[2:])
	case "student":
		return cli.student(ctx, args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) login(ctx context.Context, args []string) error {
	fs := cli.flags("login")
	login := fs.String("login", "", "The user's login. The password will be prompted next.")
	if err := cli.parse(fs, args); err != nil {
		return err
	}
	if *login == "" {
		fs.Usage()
		return errHelp
	}
	pwd, err := cli.promptPassword("Enter password:")
	if err != nil {
		return err
	}

	sess, err := cli.client.Login(ctx, session.Credentials{Login: *login, Password: pwd})
	if err != nil {
		return err
	}
	if err := cli.store.Save(ctx, sess); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Logged in as %s\n", sess)
	return nil
}

// currentSession returns the stored session. Views gate it against their role.
func (cli *commandLine) currentSession(ctx context.Context) (session.Session, error) {
	return cli.store.Load(ctx)
}

func (cli *commandLine) promptPassword(label string) (string, error) {
	fmt.Fprint(cli.out, label)
	pwd, err := readPasswordFunc(cli.stdin)
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

func (cli *commandLine) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.errOut)
	return fs
}

func (cli *commandLine) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return errHelp
		}
		return err
	}
	return nil
}

// requireIDs reports the first of the named id flags that is not set.
func requireIDs(fs *flag.FlagSet, names ...string) error {
	for _, name := range names {
		if f := fs.Lookup(name); f == nil || f.Value.String() == "0" || strings.HasPrefix(f.Value.String(), "-") {
			return errors.Errorf("-%s is required", name)
		}
	}
	return nil
}

// subcommand splits args into the action, defaulting to def, and the remaining flags.
func subcommand(args []string, def string) (string, []string) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return def, args
	}
	return args[0], args[1:]
}

func parseIDs(raw string) ([]int, error) {
	ids := make([]int, 0)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, errors.Errorf("invalid id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
