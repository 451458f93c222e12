// ABOUTME: Command table and handlers for the anonymous, worker and employer menus
// ABOUTME: Commands missing from the current role's menu are reported as unknown

package shell

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/2389/gigboard/internal/model"
	"github.com/2389/gigboard/internal/session"
	"github.com/2389/gigboard/internal/views"
)

type command struct {
	name  string
	args  string
	help  string
	run   func(s *Shell, ctx context.Context, args []string) error
	roles func(c session.Capabilities) bool
}

func anonymous(c session.Capabilities) bool { return !c.Authenticated }
func signedIn(c session.Capabilities) bool  { return c.Authenticated }
func worker(c session.Capabilities) bool    { return c.Worker }
func employer(c session.Capabilities) bool  { return c.Employer }
func anyone(session.Capabilities) bool      { return true }

// commands is filled in init because handlers read it back for help.
var commands []command

func init() {
	commands = []command{
		{name: "login", help: "Sign in", run: (*Shell).cmdLogin, roles: anonymous},
		{name: "register", help: "Create an account", run: (*Shell).cmdRegister, roles: anonymous},

		{name: "jobs", help: "List open jobs", run: (*Shell).cmdJobs, roles: worker},
		{name: "job", args: "<id>", help: "Show job details", run: (*Shell).cmdJob, roles: worker},
		{name: "apply", args: "[id]", help: "Apply to a job, by default the one last shown", run: (*Shell).cmdApply, roles: worker},
		{name: "mine", help: "List my applications", run: (*Shell).cmdMine, roles: worker},

		{name: "post", help: "Post a job", run: (*Shell).cmdPost, roles: employer},
		{name: "applicants", args: "<job-id>", help: "List applicants for a job", run: (*Shell).cmdApplicants, roles: employer},
		{name: "accept", args: "<app-id>", help: "Accept a pending application", run: (*Shell).cmdAccept, roles: employer},
		{name: "reject", args: "<app-id>", help: "Reject a pending application", run: (*Shell).cmdReject, roles: employer},

		{name: "profile", help: "Show my profile", run: (*Shell).cmdProfile, roles: signedIn},
		{name: "edit-profile", help: "Edit my profile", run: (*Shell).cmdEditProfile, roles: signedIn},
		{name: "logout", help: "Sign out", run: (*Shell).cmdLogout, roles: signedIn},

		{name: "help", help: "Show this list", run: (*Shell).cmdHelp, roles: anyone},
		{name: "quit", help: "Exit", run: (*Shell).cmdQuit, roles: anyone},
	}
}

var aliases = map[string]string{
	"exit": "quit",
	"q":    "quit",
	"?":    "help",
}

func (s *Shell) dispatch(ctx context.Context, name string, args []string) error {
	name = strings.ToLower(name)
	if alias, ok := aliases[name]; ok {
		name = alias
	}

	caps := s.session.Capabilities()
	for _, c := range commands {
		if c.name == name && c.roles(caps) {
			return c.run(s, ctx, args)
		}
	}
	color.New(color.FgRed).Fprintf(s.env.Out, "  Unknown command %q. Type help for commands.\n", name)
	return fmt.Errorf("unknown command %q", name)
}

func (s *Shell) printMenu() {
	caps := s.session.Capabilities()
	t := color.New(color.FgCyan)
	switch {
	case caps.Employer:
		t.Fprintln(s.env.Out, "  Employer commands")
	case caps.Worker:
		t.Fprintln(s.env.Out, "  Worker commands")
	default:
		t.Fprintln(s.env.Out, "  Commands")
	}
	for _, c := range commands {
		if !c.roles(caps) {
			continue
		}
		usage := c.name
		if c.args != "" {
			usage += " " + c.args
		}
		fmt.Fprintf(s.env.Out, "    %-22s %s\n", usage, c.help)
	}
}

func (s *Shell) cmdHelp(_ context.Context, _ []string) error {
	s.printMenu()
	return nil
}

func (s *Shell) cmdQuit(_ context.Context, _ []string) error {
	fmt.Fprintln(s.env.Out, "  Goodbye!")
	return errQuit
}

func (s *Shell) cmdLogin(ctx context.Context, _ []string) error {
	email, err := s.ask(ctx, "Email", "")
	if err != nil {
		return err
	}
	password, err := s.readPassword("  Password: ")
	if err != nil {
		return err
	}

	v := views.NewLogin(s.env)
	s.show(v)
	if err := v.Submit(ctx, email, password); err != nil {
		return err
	}
	s.printMenu()
	return nil
}

func (s *Shell) cmdRegister(ctx context.Context, _ []string) error {
	var u model.NewUser
	var err error
	if u.FullName, err = s.ask(ctx, "Full name", ""); err != nil {
		return err
	}
	if u.Email, err = s.ask(ctx, "Email", ""); err != nil {
		return err
	}
	if u.Password, err = s.readPassword("  Password (min 6 characters): "); err != nil {
		return err
	}
	kind, err := s.ask(ctx, "Account type (worker/employer)", string(model.UserTypeWorker))
	if err != nil {
		return err
	}
	u.UserType = model.UserType(strings.ToLower(kind))
	if u.Phone, err = s.ask(ctx, "Phone (optional)", ""); err != nil {
		return err
	}
	if u.Location, err = s.ask(ctx, "Location (optional)", ""); err != nil {
		return err
	}

	v := views.NewRegister(s.env)
	s.show(v)
	return v.Submit(ctx, u)
}

func (s *Shell) cmdLogout(ctx context.Context, _ []string) error {
	s.closeView()
	s.session.Logout(ctx)
	fmt.Fprintln(s.env.Out, "  Logged out.")
	return nil
}

func (s *Shell) jobBoard() *views.JobBoard {
	if v, ok := s.view.(*views.JobBoard); ok {
		return v
	}
	v := views.NewJobBoard(s.env)
	s.show(v)
	return v
}

func (s *Shell) cmdJobs(ctx context.Context, _ []string) error {
	return s.jobBoard().Load(ctx)
}

func (s *Shell) cmdJob(ctx context.Context, args []string) error {
	id, err := s.idArg(args, "job")
	if err != nil {
		return err
	}
	return s.jobBoard().Show(ctx, id)
}

func (s *Shell) cmdApply(ctx context.Context, args []string) error {
	id, err := s.applyTarget(args)
	if err != nil {
		return err
	}
	letter, err := s.ask(ctx, "Cover letter (optional)", "")
	if err != nil {
		return err
	}
	board := s.jobBoard()
	board.SetCoverLetter(letter)
	return board.Apply(ctx, id)
}

// applyTarget picks the job to apply to. Without an argument it falls back
// to the job shown by the last "job <id>".
func (s *Shell) applyTarget(args []string) (int64, error) {
	if len(args) == 0 {
		if v, ok := s.view.(*views.JobBoard); ok {
			if job := v.Selected(); job != nil {
				return job.ID, nil
			}
		}
	}
	return s.idArg(args, "apply")
}

func (s *Shell) cmdMine(ctx context.Context, _ []string) error {
	v := views.NewMyApplications(s.env)
	s.show(v)
	return v.Load(ctx)
}

func (s *Shell) cmdProfile(ctx context.Context, _ []string) error {
	v := views.NewProfile(s.env)
	s.show(v)
	return v.Load(ctx)
}

func (s *Shell) cmdEditProfile(ctx context.Context, _ []string) error {
	v, ok := s.view.(*views.Profile)
	if !ok || v.Current() == nil {
		v = views.NewProfile(s.env)
		s.show(v)
		if err := v.Load(ctx); err != nil {
			return err
		}
	}

	form := v.Form()
	var err error
	if form.FullName, err = s.ask(ctx, "Full name", form.FullName); err != nil {
		return err
	}
	if form.Phone, err = s.ask(ctx, "Phone", form.Phone); err != nil {
		return err
	}
	if form.Location, err = s.ask(ctx, "Location", form.Location); err != nil {
		return err
	}
	if form.Bio, err = s.ask(ctx, "Bio (markdown)", form.Bio); err != nil {
		return err
	}
	v.SetForm(form)
	return v.Save(ctx)
}

func (s *Shell) cmdPost(ctx context.Context, _ []string) error {
	v := views.NewPostJob(s.env)
	s.show(v)
	if err := v.Allowed(); err != nil {
		return err
	}

	form := v.Form()
	var err error
	if form.Title, err = s.ask(ctx, "Title", ""); err != nil {
		return err
	}
	if form.Description, err = s.ask(ctx, "Description (markdown)", ""); err != nil {
		return err
	}
	if form.Location, err = s.ask(ctx, "Location", ""); err != nil {
		return err
	}

	for _, c := range model.Categories {
		fmt.Fprintf(s.env.Out, "    %2d  %s\n", c.ID, c.Name)
	}
	if form.CategoryID, err = s.askInt(ctx, "Category number (optional)"); err != nil {
		return err
	}
	if form.SalaryMin, err = s.askFloat(ctx, "Minimum pay per hour (optional)"); err != nil {
		return err
	}
	if form.SalaryMax, err = s.askFloat(ctx, "Maximum pay per hour (optional)"); err != nil {
		return err
	}
	if form.Duration, err = s.ask(ctx, "Duration (optional)", ""); err != nil {
		return err
	}
	if form.Requirements, err = s.ask(ctx, "Requirements (optional)", ""); err != nil {
		return err
	}
	if form.ContactPhone, err = s.ask(ctx, "Contact phone (optional)", ""); err != nil {
		return err
	}
	if form.ContactEmail, err = s.ask(ctx, "Contact email (optional)", ""); err != nil {
		return err
	}
	days, err := s.askInt(ctx, fmt.Sprintf("Expires in days (%d-%d) [%d]", model.MinExpiryDays, model.MaxExpiryDays, model.DefaultExpiryDays))
	if err != nil {
		return err
	}
	if days != nil {
		form.ExpiryDays = *days
	}

	v.SetForm(form)
	return v.Submit(ctx)
}

func (s *Shell) jobApplications() *views.JobApplications {
	if v, ok := s.view.(*views.JobApplications); ok {
		return v
	}
	v := views.NewJobApplications(s.env)
	s.show(v)
	return v
}

func (s *Shell) cmdApplicants(ctx context.Context, args []string) error {
	id, err := s.idArg(args, "applicants")
	if err != nil {
		return err
	}
	return s.jobApplications().Load(ctx, id)
}

func (s *Shell) cmdAccept(ctx context.Context, args []string) error {
	return s.review(ctx, args, "accept", model.StatusAccepted)
}

func (s *Shell) cmdReject(ctx context.Context, args []string) error {
	return s.review(ctx, args, "reject", model.StatusRejected)
}

func (s *Shell) review(ctx context.Context, args []string, name string, status model.ApplicationStatus) error {
	id, err := s.idArg(args, name)
	if err != nil {
		return err
	}
	v, ok := s.view.(*views.JobApplications)
	if !ok {
		msg := "Run applicants <job-id> first."
		color.New(color.FgRed).Fprintf(s.env.Out, "  %s\n", msg)
		return fmt.Errorf("%s: no applicant list open", name)
	}
	return v.UpdateStatus(ctx, id, status)
}

func (s *Shell) idArg(args []string, name string) (int64, error) {
	if len(args) != 1 {
		color.New(color.FgRed).Fprintf(s.env.Out, "  Usage: %s <id>\n", name)
		return 0, fmt.Errorf("%s: expected one id argument", name)
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(args[0], "#"), 10, 64)
	if err != nil || id <= 0 {
		color.New(color.FgRed).Fprintf(s.env.Out, "  %q is not a valid id\n", args[0])
		return 0, fmt.Errorf("%s: invalid id %q", name, args[0])
	}
	return id, nil
}
