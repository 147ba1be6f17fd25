// Command forge-upload attaches a local file to a repository on a hosting
// service and prints the public URL of the uploaded file.
//
//	forge-upload <file> [<repository>] [options]
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"strings"

	"github.com/input-output-hk/forge-upload/config"
	"github.com/input-output-hk/forge-upload/contenttype"
	"github.com/input-output-hk/forge-upload/downloads"
	"github.com/input-output-hk/forge-upload/errors"
	"github.com/input-output-hk/forge-upload/fs"
	"github.com/input-output-hk/forge-upload/git"
)

// app carries the process environment of one run.
type app struct {
	stdout    io.Writer
	stderr    io.Writer
	workDir   string
	lookupEnv config.LookupFunc
	fsys      fs.ReadFS
	git       git.ConfigReader
	resolver  contenttype.Resolver

	// httpClient and apiBaseURL override the defaults when set.
	httpClient *http.Client
	apiBaseURL string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := newApp().run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

func newApp() *app {
	wd, err := fs.GetAbs(".")
	if err != nil {
		wd = "."
	}

	return &app{
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		workDir:   wd,
		lookupEnv: os.LookupEnv,
		fsys:      fs.NewBaseOSFS(),
		git:       gitReader(wd),
		resolver:  detector(),
	}
}

// gitReader reads the repository config at dir with go-git and falls back to
// the git binary, which also sees system config and includes.
func gitReader(dir string) git.ConfigReader {
	var local git.ConfigReader
	if repo, err := git.Open(dir); err == nil {
		local = repo
	} else {
		local = git.NewRepoConfig(nil)
	}
	return git.Chain{local, git.NewCommandConfig(nil, dir)}
}

// detector prefers file(1) when installed and sniffs the content otherwise.
func detector() contenttype.Resolver {
	if _, err := exec.LookPath("file"); err == nil {
		return contenttype.NewCommand(nil)
	}
	return contenttype.Sniffer{}
}

func (a *app) run(ctx context.Context, args []string) int {
	cfg, err := config.Parse(args)
	if errors.Is(err, config.ErrHelp) {
		fmt.Fprint(a.stdout, config.Usage())
		return 0
	}
	if err != nil {
		return a.fail(err)
	}

	url, err := a.upload(ctx, cfg, newLogger(a.stderr, cfg.Verbose))
	if err != nil {
		return a.fail(err)
	}

	fmt.Fprintln(a.stdout, url)
	return 0
}

func (a *app) upload(ctx context.Context, cfg config.Config, logger *slog.Logger) (string, error) {
	if strings.TrimSpace(cfg.File) == "" {
		return "", config.ErrMissingFile
	}

	dotenv, err := config.LoadEnvFiles(a.fsys, config.EnvFiles(a.workDir)...)
	if err != nil {
		return "", err
	}

	cfg, err = config.Resolve(ctx, cfg, config.Sources{
		Git:    a.git,
		Lookup: config.EnvLookup(dotenv, a.lookupEnv),
		Logger: logger,
	})
	if err != nil {
		return "", err
	}
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	file, err := config.LoadFile(ctx, a.fsys, cfg, a.resolver)
	if err != nil {
		return "", err
	}

	baseURL := a.apiBaseURL
	if baseURL == "" {
		baseURL = cfg.APIBaseURL()
	}

	client, err := downloads.NewClient(
		downloads.WithBaseURL(baseURL),
		downloads.WithToken(cfg.Token),
		downloads.WithHTTPClient(a.httpClient),
		downloads.WithLogger(logger),
		downloads.WithInsecureSkipVerify(cfg.SkipSSLVerification),
	)
	if err != nil {
		return "", err
	}

	logger.DebugContext(ctx, "uploading", "file", cfg.File, "repo", cfg.Repo, "name", cfg.Name,
		"content_type", file.MimeType(), "authenticated", cfg.Token != "")

	return client.Upload(ctx, downloads.Request{
		Repo:        cfg.Repo,
		Name:        cfg.Name,
		Description: cfg.Description,
		Force:       cfg.Force,
	}, file)
}

// fail prints err as a single line and returns the failure exit status.
func (a *app) fail(err error) int {
	msg := strings.Join(strings.Fields(err.Error()), " ")
	if errors.Is(err, downloads.ErrAlreadyExists) {
		msg += " (use --force to replace it)"
	}
	fmt.Fprintln(a.stdout, msg)
	return 1
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
