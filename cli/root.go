package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"little_library/api"
	"little_library/auth"
	"little_library/lang"
	"little_library/library"
	"little_library/logger"
	"little_library/storage"
	"little_library/ui"
	"little_library/utils"
)

// app holds what every command shares. setup fills it in before a command
// runs and teardown releases it.
type app struct {
	configPath string
	server     string

	cfg     utils.Config
	logFile io.Closer
	store   *storage.Store
	client  *api.Client
	holder  *auth.Holder
	ctrl    *library.Controller
	bridge  *ui.Bridge
	in      *bufio.Reader
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root, _ := newRoot()
	return root
}

func newRoot() (*cobra.Command, *app) {
	a := &app{}

	root := &cobra.Command{
		Use:           "little-library",
		Short:         "A terminal client for your book library",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return ui.RunApp(ui.Deps{
				Controller: a.ctrl,
				Auth:       a.holder,
				ConfigPath: a.configPath,
				Bridge:     a.bridge,
			})
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", utils.DefaultConfigPath(), "config file")
	root.PersistentFlags().StringVar(&a.server, "server", "", "backend base URL (overrides config)")

	root.AddCommand(
		newLoginCmd(a),
		newRegisterCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newListCmd(a),
		newFacetsCmd(a),
		newSearchCmd(a),
		newAddCmd(a),
		newRemoveCmd(a),
		newRecommendCmd(a),
		newImportCmd(a),
	)
	return root, a
}

// Execute runs the command tree against os.Args.
func Execute() error {
	root, a := newRoot()
	err := root.Execute()
	return errors.Join(err, a.teardown())
}

func (a *app) setup(cmd *cobra.Command) error {
	// Startup warnings go to stderr until the log file is open.
	logger.Init("warn", cmd.ErrOrStderr())
	cfg, err := utils.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if s := strings.TrimSpace(a.server); s != "" {
		cfg.Server.BaseURL = strings.TrimRight(s, "/")
	}
	a.cfg = cfg

	if !lang.SetLocale(lang.Locale(cfg.UI.Language)) {
		lang.SetLocale(lang.LocaleEnglish)
	}

	if cfg.Log.File != "" {
		f, err := logger.OpenFile(cfg.Log.File)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		a.logFile = f
		logger.Init(cfg.Log.Level, f)
	} else {
		logger.Init(cfg.Log.Level, io.Discard)
	}

	a.store, err = storage.Open(cfg.Storage.Path)
	if err != nil {
		return err
	}

	session := api.NewSession("")
	a.client = api.NewClient(cfg.Server.BaseURL, &http.Client{Timeout: cfg.Timeout()}, session)
	a.holder = auth.NewHolder(a.client, session, a.store)
	a.holder.Restore()

	a.bridge = &ui.Bridge{}
	a.ctrl = library.NewController(a.client, library.WithNotifier(a.bridge.Notify))
	a.in = bufio.NewReader(cmd.InOrStdin())

	logger.Debug("client ready", "server", cfg.Server.BaseURL, "command", cmd.Name())
	return nil
}

// teardown waits for background reloads and releases resources. It is safe
// to call more than once.
func (a *app) teardown() error {
	if a.ctrl != nil {
		a.ctrl.Wait()
	}
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
		a.store = nil
	}
	if a.logFile != nil {
		logger.Init(a.cfg.Log.Level, io.Discard)
		errs = append(errs, a.logFile.Close())
		a.logFile = nil
	}
	return errors.Join(errs...)
}

// prompt reads one line, printing label first.
func (a *app) prompt(cmd *cobra.Command, label string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), label)
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.TrimSpace(label), ":"), err)
	}
	return strings.TrimSpace(line), nil
}

// readPassword masks input on a terminal and falls back to a plain line.
func (a *app) readPassword(cmd *cobra.Command) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	return a.prompt(cmd, "Password: ")
}
