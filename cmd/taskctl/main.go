// Command taskctl is a terminal client for the task tracker API. The session
// survives between invocations in a local bbolt file.
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/internal/config"
	"github.com/fastygo/tasktracker/pkg/client"
)

const usage = `usage: taskctl <command> [flags]

commands:
  register -email E [-password P]
  login    -email E [-password P]
  logout
  whoami
  list     [-page N] [-limit N] [-status S] [-search Q] [-json]
  add      -title T [-description D] [-status S]
  show     <id>
  edit     <id> [-title T] [-description D] [-status S]
  toggle   <id>
  rm       <id>
`

func main() {
	os.Exit(execute(os.Args[1:]))
}

// execute runs one command and returns the process exit code. Resources are
// released by its defers before main exits.
func execute(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}

	cfg := config.LoadClient()
	store, err := client.OpenBoltStore(cfg.SessionPath)
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	session, err := client.NewSession(store)
	if err != nil {
		return fail(err)
	}
	api := client.New(cfg.APIURL, session,
		client.WithTimeout(cfg.Timeout),
		client.WithAuthFailureHook(func() {
			fmt.Fprintln(os.Stderr, "session expired, run `taskctl login` again")
		}),
	)

	if err := run(api, args[0], args[1:], os.Stdin, os.Stdout); err != nil {
		return fail(err)
	}
	return 0
}

func run(api *client.Client, command string, args []string, in io.Reader, out io.Writer) error {
	switch command {
	case "register", "login":
		fs := flag.NewFlagSet(command, flag.ContinueOnError)
		email := fs.String("email", "", "account email")
		password := fs.String("password", "", "account password; read from stdin when empty")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *password == "" {
			pw, err := readLine(in, out, "password: ")
			if err != nil {
				return err
			}
			*password = pw
		}
		signIn := api.Login
		if command == "register" {
			signIn = api.Register
		}
		res, err := signIn(*email, *password)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s as %s\n", res.Message, res.User.Email)
		return nil

	case "logout":
		if err := api.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(out, "Logged out")
		return nil

	case "whoami":
		user, err := api.Me()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\t%s\n", user.ID, user.Email)
		return nil

	case "list":
		fs := flag.NewFlagSet(command, flag.ContinueOnError)
		var opts client.ListOptions
		fs.IntVar(&opts.Page, "page", 0, "page number, starting at 1")
		fs.IntVar(&opts.Limit, "limit", 0, "tasks per page")
		fs.StringVar(&opts.Status, "status", "", "PENDING, IN_PROGRESS or COMPLETED")
		fs.StringVar(&opts.Search, "search", "", "title substring")
		asJSON := fs.Bool("json", false, "print the raw page")
		if err := fs.Parse(args); err != nil {
			return err
		}
		page, err := api.ListTasks(opts)
		if err != nil {
			return err
		}
		if *asJSON {
			return printJSON(out, page)
		}
		printTasks(out, page)
		return nil

	case "add":
		fs := flag.NewFlagSet(command, flag.ContinueOnError)
		var input client.TaskInput
		fs.StringVar(&input.Title, "title", "", "task title")
		description := optionalString(fs, "description", "task description")
		fs.StringVar(&input.Status, "status", "", "initial status")
		if err := fs.Parse(args); err != nil {
			return err
		}
		input.Description = description.value()
		task, err := api.CreateTask(input)
		if err != nil {
			return err
		}
		return printJSON(out, task)

	case "edit":
		id, rest, err := taskArg(command, args)
		if err != nil {
			return err
		}
		fs := flag.NewFlagSet(command, flag.ContinueOnError)
		title := optionalString(fs, "title", "new title")
		description := optionalString(fs, "description", "new description")
		status := optionalString(fs, "status", "new status")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		task, err := api.UpdateTask(id, client.TaskPatch{
			Title:       title.value(),
			Description: description.value(),
			Status:      status.value(),
		})
		if err != nil {
			return err
		}
		return printJSON(out, task)

	case "show", "toggle", "rm":
		id, _, err := taskArg(command, args)
		if err != nil {
			return err
		}
		switch command {
		case "show":
			task, err := api.GetTask(id)
			if err != nil {
				return err
			}
			return printJSON(out, task)
		case "toggle":
			task, err := api.ToggleTask(id)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s\t%s\n", task.ID, task.Status)
			return nil
		default:
			if err := api.DeleteTask(id); err != nil {
				return err
			}
			fmt.Fprintln(out, "Task deleted successfully")
			return nil
		}
	}

	return fmt.Errorf("unknown command %q\n\n%s", command, usage)
}

// optional is a string flag that remembers whether it was given at all.
type optional struct {
	s   string
	set bool
}

func (o *optional) String() string     { return o.s }
func (o *optional) Set(v string) error { o.s, o.set = v, true; return nil }

func (o *optional) value() *string {
	if !o.set {
		return nil
	}
	return &o.s
}

func optionalString(fs *flag.FlagSet, name, help string) *optional {
	o := &optional{}
	fs.Var(o, name, help)
	return o
}

func taskArg(command string, args []string) (string, []string, error) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return "", nil, fmt.Errorf("%s: task id required", command)
	}
	return args[0], args[1:], nil
}

func readLine(in io.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func printTasks(out io.Writer, page *domain.TaskPage) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tTITLE")
	for _, task := range page.Tasks {
		fmt.Fprintf(w, "%s\t%s\t%s\n", task.ID, task.Status, task.Title)
	}
	w.Flush()
	p := page.Pagination
	fmt.Fprintf(out, "page %d/%d, %d total\n", p.Page, p.TotalPages, p.Total)
}

func printJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func fail(err error) int {
	fmt.Fprintln(os.Stderr, "taskctl:", err)
	return 1
}
