package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hostelhub/hostelctl/internal/apiclient"
	"github.com/hostelhub/hostelctl/internal/discovery"
	"github.com/hostelhub/hostelctl/internal/enrollment"
	"github.com/hostelhub/hostelctl/internal/logging"
	"github.com/hostelhub/hostelctl/internal/pager"
	"github.com/hostelhub/hostelctl/internal/payments"
	"github.com/hostelhub/hostelctl/internal/ui"
	"github.com/hostelhub/hostelctl/internal/wizard/tui"
)

// Command flags
var (
	loginEmail string

	discoverTimeout int
	discoverSave    bool

	businessCategory   string
	includeDescendants bool
	businessAll        bool
	businessPages      int

	wizardDiscover bool

	studentFloor string
	studentRoom  string
	studentBed   string
	studentForm  enrollment.StudentForm
	assumeYes    bool
)

func init() {
	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(businessesCmd)
	rootCmd.AddCommand(floorsCmd)
	rootCmd.AddCommand(roomsCmd)
	rootCmd.AddCommand(bedsCmd)
	rootCmd.AddCommand(paymentMethodsCmd)
	rootCmd.AddCommand(studentCmd)
	rootCmd.AddCommand(wizardCmd)
}

// pingCmd checks that the API answers
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the API is reachable",
	RunE:  runPing,
}

func runPing(cmd *cobra.Command, args []string) error {
	p := env.printer
	p.PrintHeader("API Health Check", "hostelctl ping", ui.F("API", env.profile.BaseURL))

	start := time.Now()
	if err := newClient().Ping(cmd.Context()); err != nil {
		return fail("API unreachable", err)
	}
	latency := time.Since(start).Round(time.Millisecond)

	if p.JSON() {
		return p.PrintJSON(map[string]any{"url": env.profile.BaseURL, "ok": true, "latencyMs": latency.Milliseconds()})
	}
	p.PrintSuccess("API reachable",
		ui.F("URL", env.profile.BaseURL),
		ui.F("Latency", latency.String()),
	)
	return nil
}

// loginCmd exchanges credentials for a session token
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and print a session token",
	Long: `Log in with email and password and print the session token.

The token is never written to the configuration file. Export it as
HOSTELCTL_TOKEN or pass it with --token.`,
	Example: `  # Log in and export the token in one go
  eval "$(hostelctl login --email admin@hostel.example)"`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	_ = loginCmd.MarkFlagRequired("email")
}

func runLogin(cmd *cobra.Command, args []string) error {
	password, err := ui.ReadPassword("Password: ")
	if err != nil {
		return err
	}

	session, err := newClient().Login(cmd.Context(), apiclient.Credentials{Email: loginEmail, Password: password})
	if err != nil {
		return fail("Login failed", err)
	}
	logging.Info("Logged in", zap.String("user", session.User.Email))

	if env.printer.JSON() {
		return env.printer.PrintJSON(session)
	}
	// stdout carries only the export line so it can be eval'd
	fmt.Fprintln(cmd.ErrOrStderr(), ui.NewSuccessResult("Logged in",
		ui.F("User", session.User.Name),
		ui.F("Email", session.User.Email),
		ui.F("Role", session.User.Role),
	).Render())
	env.printer.Println(fmt.Sprintf("export HOSTELCTL_TOKEN=%s", session.Token))
	return nil
}

// discoverCmd browses mDNS for API servers
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find hostel API servers on the local network",
	Long: `Find hostel API servers advertising ` + discovery.ServiceType + ` over mDNS.

With --save the chosen server becomes the base URL of the current profile.
When several servers answer, an interactive picker is shown.`,
	Example: `  # List servers
  hostelctl discover

  # Pick a server and store it in the profile
  hostelctl discover --save`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().IntVar(&discoverTimeout, "timeout", 0, "Scan timeout in seconds (default from preferences)")
	discoverCmd.Flags().BoolVar(&discoverSave, "save", false, "Save the chosen server as the profile base URL")
}

func scanTimeout() time.Duration {
	secs := discoverTimeout
	if secs <= 0 && env.registry.Preferences != nil {
		secs = env.registry.Preferences.DiscoverTimeout
	}
	if secs <= 0 {
		return discovery.DefaultScanTimeout
	}
	return time.Duration(secs) * time.Second
}

func runDiscover(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	p := env.printer
	timeout := scanTimeout()

	p.PrintHeader("Server Discovery", "hostelctl discover",
		ui.F("Service", discovery.ServiceType),
		ui.F("Timeout", timeout.String()),
	)

	servers, err := discovery.ScanForServers(ctx, timeout)
	if err != nil {
		return fail("Discovery failed", err)
	}

	if err := p.PrintList(servers, ui.ServersTable(servers)); err != nil {
		return err
	}
	if !discoverSave {
		return nil
	}

	var chosen *discovery.Server
	switch {
	case len(servers) == 0:
		return errors.New("no servers found, nothing to save")
	case len(servers) == 1:
		chosen = servers[0]
	case !ui.IsInteractive():
		return errors.New("several servers found; run interactively or use 'hostelctl config set-url'")
	default:
		m := tui.NewDiscoveryModel(ctx, func(context.Context, time.Duration) ([]*discovery.Server, error) {
			return servers, nil
		}, timeout)
		m.QuitOnSelect = true
		final, err := tea.NewProgram(m).Run()
		if err != nil {
			return fmt.Errorf("picker error: %w", err)
		}
		chosen = final.(tui.DiscoveryModel).GetSelectedServer()
		if chosen == nil {
			return nil
		}
	}

	name, err := saveBaseURL(chosen.BaseURL())
	if err != nil {
		return err
	}
	if !p.JSON() {
		p.PrintSuccess("Server saved", ui.F("Profile", name), ui.F("Base URL", chosen.BaseURL()))
	}
	return nil
}

// businessesCmd pages through the business directory
var businessesCmd = &cobra.Command{
	Use:   "businesses",
	Short: "List businesses of a category",
	Long: `List businesses of a category, one page at a time.

The first page uses the initial page size from preferences; every further
page uses the load-more size. By default only the first page is printed.`,
	Example: `  # First page
  hostelctl businesses --category cat-42

  # First three pages
  hostelctl businesses --category cat-42 --pages 3

  # Everything, as JSON
  hostelctl businesses --category cat-42 --all --format json`,
	RunE: runBusinesses,
}

var businessesBrowseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse businesses interactively",
	RunE:  runBusinessesBrowse,
}

func init() {
	for _, c := range []*cobra.Command{businessesCmd, businessesBrowseCmd} {
		c.Flags().StringVar(&businessCategory, "category", "", "Category ID (default from preferences)")
		c.Flags().BoolVar(&includeDescendants, "include-descendants", true, "Include businesses of sub-categories")
	}
	businessesCmd.Flags().BoolVar(&businessAll, "all", false, "Fetch every page")
	businessesCmd.Flags().IntVar(&businessPages, "pages", 1, "Number of pages to fetch")
	businessesCmd.AddCommand(businessesBrowseCmd)
}

func newBusinessLoader(cmd *cobra.Command) (*pager.Loader[apiclient.Business], string, error) {
	prefs := env.registry.Preferences
	category := businessCategory
	if category == "" {
		category = prefs.DefaultCategoryID
	}
	include := prefs.IncludeDescendants
	if cmd.Flags().Changed("include-descendants") {
		include = includeDescendants
	}

	loader, err := pager.New(apiclient.BusinessFetcher(newClient(), category, include), pager.Config{
		Name:             "businesses",
		InitialPageSize:  prefs.InitialPageSize,
		LoadMorePageSize: prefs.LoadMorePageSize,
	})
	return loader, category, err
}

func runBusinesses(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	p := env.printer
	if !businessAll && businessPages < 1 {
		return fmt.Errorf("--pages must be at least 1, got %d", businessPages)
	}

	loader, category, err := newBusinessLoader(cmd)
	if err != nil {
		return err
	}
	p.PrintHeader("Businesses", "hostelctl businesses",
		ui.F("Category", category),
		ui.F("API", env.profile.BaseURL),
	)

	if err := loader.LoadInitial(ctx); err != nil {
		return fail("Failed to load businesses", err)
	}

	printed := 0
	for pages := 1; ; pages++ {
		last := !loader.HasMore() || (!businessAll && pages >= businessPages)
		if !p.JSON() {
			printed = printPage(loader, printed, last)
		}
		if last {
			break
		}
		if err := loader.LoadMore(ctx); err != nil {
			return fail("Failed to load more businesses", err)
		}
	}

	if p.JSON() {
		return p.PrintJSON(loader.Items())
	}
	return nil
}

// printPage prints the items after the first printed ones and returns the
// new count. The last page carries the total.
func printPage(loader *pager.Loader[apiclient.Business], printed int, last bool) int {
	items := loader.Items()
	page := items[printed:]

	if !last {
		if len(page) > 0 {
			t := ui.BusinessesTable(page, false)
			t.Note = ""
			env.printer.Print(t.Render())
		}
		return len(items)
	}

	if len(items) == 0 {
		env.printer.Println(ui.TableNoteStyle.Render("No results."))
		return 0
	}
	t := ui.BusinessesTable(page, loader.HasMore())
	t.Note = ui.BusinessesTable(items, loader.HasMore()).Note
	env.printer.Print(t.Render())
	return len(items)
}

func runBusinessesBrowse(cmd *cobra.Command, args []string) error {
	if !ui.IsInteractive() {
		return fmt.Errorf("browse needs a terminal: %w", ui.ErrNotInteractive)
	}
	loader, category, err := newBusinessLoader(cmd)
	if err != nil {
		return err
	}

	title := "Businesses"
	if category != "" {
		title += " · " + category
	}
	m := tui.NewBrowserModel(cmd.Context(), loader, title, env.profile.BaseURL)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		return fmt.Errorf("browser error: %w", err)
	}
	return nil
}

var floorsCmd = &cobra.Command{
	Use:   "floors",
	Short: "List floors with free capacity",
	RunE: func(cmd *cobra.Command, args []string) error {
		env.printer.PrintHeader("Floors", "hostelctl floors", ui.F("API", env.profile.BaseURL))
		floors, err := newClient().ListFloors(cmd.Context())
		if err != nil {
			return fail("Failed to load floors", err)
		}
		return env.printer.PrintList(floors, ui.FloorsTable(floors))
	},
}

var roomsCmd = &cobra.Command{
	Use:   "rooms <floorId>",
	Short: "List the rooms of a floor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env.printer.PrintHeader("Rooms", "hostelctl rooms", ui.F("Floor", args[0]))
		rooms, err := newClient().ListRooms(cmd.Context(), args[0])
		if err != nil {
			return fail("Failed to load rooms", err)
		}
		return env.printer.PrintList(rooms, ui.RoomsTable(rooms))
	},
}

var bedsCmd = &cobra.Command{
	Use:   "beds <roomId>",
	Short: "List the beds of a room",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env.printer.PrintHeader("Beds", "hostelctl beds", ui.F("Room", args[0]))
		beds, err := newClient().ListBeds(cmd.Context(), args[0])
		if err != nil {
			return fail("Failed to load beds", err)
		}
		return env.printer.PrintList(beds, ui.BedsTable(beds))
	},
}

// paymentMethodsCmd never fails on an API error; it prints the built-in list
var paymentMethodsCmd = &cobra.Command{
	Use:   "payment-methods",
	Short: "List payment methods",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := env.printer
		p.PrintHeader("Payment Methods", "hostelctl payment-methods", ui.F("API", env.profile.BaseURL))

		res := payments.Lookup(cmd.Context(), newClient())
		if p.JSON() {
			out := map[string]any{"methods": res.Methods, "origin": res.Origin.String()}
			if res.Err != nil {
				out["error"] = res.Err.Error()
			}
			return p.PrintJSON(out)
		}
		warnFallback(p, res)
		return p.PrintList(res.Methods, ui.PaymentMethodsTable(res.Methods, res.Degraded()))
	},
}

// studentCmd groups student operations
var studentCmd = &cobra.Command{
	Use:   "student",
	Short: "Student operations",
}

var studentCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Enroll a student into a bed",
	Long: `Enroll a student into a bed without the interactive wizard.

The floor, room and bed are checked against the API in the same order the
wizard uses, so an occupied bed or a room of another floor is rejected
before anything is created.`,
	Example: `  hostelctl student create --floor f1 --room r101 --bed b1 \
    --name "Asha Rao" --phone 5550100200 --payment-method cash`,
	RunE: runStudentCreate,
}

func init() {
	f := studentCreateCmd.Flags()
	f.StringVar(&studentFloor, "floor", "", "Floor ID")
	f.StringVar(&studentRoom, "room", "", "Room ID")
	f.StringVar(&studentBed, "bed", "", "Bed ID")
	f.StringVar(&studentForm.Name, "name", "", "Student name")
	f.StringVar(&studentForm.Phone, "phone", "", "Student phone")
	f.StringVar(&studentForm.Email, "email", "", "Student email")
	f.StringVar(&studentForm.Address, "address", "", "Postal address")
	f.StringVar(&studentForm.GuardianName, "guardian-name", "", "Guardian name")
	f.StringVar(&studentForm.GuardianPhone, "guardian-phone", "", "Guardian phone")
	f.StringVar(&studentForm.Course, "course", "", "Course of study")
	f.StringVar(&studentForm.Institution, "institution", "", "Institution")
	f.StringVar(&studentForm.EnrollmentDate, "enrollment-date", "", "Enrollment date (YYYY-MM-DD)")
	f.Float64Var(&studentForm.BaseMonthlyFee, "fee", 0, "Base monthly fee")
	f.StringVar(&studentForm.PaymentMethod, "payment-method", "", "Payment method ID")
	f.BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
	for _, name := range []string{"floor", "room", "bed", "name", "phone"} {
		_ = studentCreateCmd.MarkFlagRequired(name)
	}
	studentCmd.AddCommand(studentCreateCmd)
}

var enrollSteps = []string{"Load floors", "Select floor", "Select room", "Select bed", "Create student"}

// enroll drives a workflow through every step. onStep may be nil.
func enroll(ctx context.Context, wf *enrollment.Workflow, form enrollment.StudentForm, onStep ui.StepCallback) (*apiclient.Student, error) {
	if onStep == nil {
		onStep = func(int, string, ui.StepStatus, string) {}
	}
	run := func(n int, fn func() error) error {
		onStep(n, "", ui.StepRunning, "")
		if err := fn(); err != nil {
			onStep(n, "", ui.StepFailed, apiclient.ShortMessage(err))
			return err
		}
		onStep(n, "", ui.StepComplete, "")
		return nil
	}

	steps := []func() error{
		func() error { return wf.LoadFloors(ctx) },
		func() error { return wf.SelectFloor(ctx, studentFloor) },
		func() error { return wf.SelectRoom(ctx, studentRoom) },
		func() error { return wf.SelectBed(studentBed) },
	}
	for i, step := range steps {
		if err := run(i+1, step); err != nil {
			return nil, err
		}
	}

	var student *apiclient.Student
	err := run(len(steps)+1, func() error {
		var err error
		student, err = wf.CreateStudent(ctx, form)
		return err
	})
	return student, err
}

func runStudentCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	p := env.printer

	if err := studentForm.Validate(); err != nil {
		return fail("Invalid student details", err)
	}

	client := newClient()
	if id := studentForm.PaymentMethod; id != "" {
		res := payments.Lookup(ctx, client)
		if !p.JSON() {
			warnFallback(p, res)
		}
		if !hasMethod(res.Methods, id) {
			return fmt.Errorf("unknown payment method %q (known: %s)", id, methodIDs(res.Methods))
		}
	}

	if !assumeYes {
		if !ui.IsInteractive() {
			return errors.New("refusing to create a student without confirmation; pass --yes")
		}
		confirmed := ui.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout()).Confirm("Enroll this student?", []ui.Field{
			ui.F("Name", studentForm.Name),
			ui.F("Phone", studentForm.Phone),
			ui.F("Floor", studentFloor),
			ui.F("Room", studentRoom),
			ui.F("Bed", studentBed),
			ui.F("Payment", studentForm.PaymentMethod),
		})
		if !confirmed {
			return nil
		}
	}

	wf := enrollment.New(client)
	if p.JSON() {
		student, err := enroll(ctx, wf, studentForm, nil)
		if err != nil {
			return err
		}
		return p.PrintJSON(student)
	}

	runner := ui.NewStepRunner(ui.RunnerConfig{
		Title:   "Enroll student",
		Command: "hostelctl student create",
		Params: []ui.Field{
			ui.F("API", env.profile.BaseURL),
			ui.F("Bed", studentBed),
		},
		StepNames:    enrollSteps,
		Output:       p.Writer(),
		Troubleshoot: apiclient.TroubleshootingHint,
	})
	return runner.Run(ctx, func(ctx context.Context, onStep ui.StepCallback) ([]ui.Field, error) {
		student, err := enroll(ctx, wf, studentForm, onStep)
		if err != nil {
			return nil, err
		}
		s := wf.State()
		return []ui.Field{
			ui.F("Student ID", student.ID),
			ui.F("Name", student.Name),
			ui.F("Placement", fmt.Sprintf("%s › %s › %s", s.SelectedFloor.Label(), s.SelectedRoom.Label(), s.SelectedBed.Label())),
		}, nil
	})
}

// warnFallback reports that the built-in payment methods replaced the API's
func warnFallback(p *ui.Printer, res payments.Result) {
	if !res.Degraded() {
		return
	}
	p.PrintWarning("Using built-in payment methods",
		ui.F("Reason", apiclient.ShortMessage(res.Err)),
		ui.F("Methods", methodIDs(res.Methods)),
	)
}

func hasMethod(methods []apiclient.PaymentMethod, id string) bool {
	for _, m := range methods {
		if strings.EqualFold(m.ID, id) {
			return true
		}
	}
	return false
}

func methodIDs(methods []apiclient.PaymentMethod) string {
	ids := make([]string, len(methods))
	for i, m := range methods {
		ids[i] = m.ID
	}
	return strings.Join(ids, ", ")
}

// wizardCmd launches the interactive enrollment wizard
var wizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Launch the interactive enrollment wizard",
	Long: `Launch the interactive enrollment wizard.

The wizard walks through floor, room and bed selection and then asks for
the student's details. With --discover it first looks for API servers on
the local network.`,
	Example: `  # Launch wizard against the configured API
  hostelctl wizard
  # Or simply (wizard is default):
  hostelctl

  # Pick the server from the local network first
  hostelctl wizard --discover`,
	RunE: runWizard,
}

func init() {
	wizardCmd.Flags().BoolVar(&wizardDiscover, "discover", false, "Pick the API server via mDNS first")
}

func runWizard(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if !ui.IsInteractive() {
		return fmt.Errorf("the wizard needs a terminal (%w); see 'hostelctl --help' for scriptable commands", ui.ErrNotInteractive)
	}

	model, err := tui.NewAppModel(ctx, tui.AppOptions{
		Discover:    wizardDiscover,
		ScanTimeout: scanTimeout(),
		BaseURL:     env.profile.BaseURL,
		Connect: func(baseURL string) (tui.Backend, error) {
			// verify we can connect before showing any screen
			client := newClientFor(baseURL)
			if err := client.Ping(ctx); err != nil {
				return nil, err
			}
			return client, nil
		},
	})
	if err != nil {
		return fail("Cannot reach the API", err)
	}

	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return fmt.Errorf("wizard error: %w", err)
	}

	if app, ok := final.(tui.AppModel); ok {
		if s := app.EnrollmentModel.Created(); s != nil {
			env.printer.PrintSuccess("Student enrolled", ui.F("Student ID", s.ID), ui.F("Name", s.Name))
		}
	}
	return nil
}
