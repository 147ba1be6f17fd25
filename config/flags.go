package config

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/input-output-hk/forge-upload/errors"
)

// Parse reads the command line (without the program name). Flags may appear
// anywhere between the positional <file> and <repository> arguments.
func Parse(args []string) (Config, error) {
	var cfg Config
	flags := newFlagSet(&cfg)

	if err := flags.Parse(args); err != nil {
		return Config{}, errors.WrapWithContext(ErrUsage, errors.CodeInvalidInput, err.Error(), nil)
	}
	if help, _ := flags.GetBool("help"); help {
		return Config{}, ErrHelp
	}

	positional := flags.Args()
	switch {
	case len(positional) > 2:
		return Config{}, errors.WrapWithContext(ErrUsage, errors.CodeInvalidInput,
			fmt.Sprintf("unexpected argument %q", positional[2]), map[string]any{"args": positional})
	case len(positional) == 2:
		cfg.Repo = positional[1]
		fallthrough
	case len(positional) == 1:
		cfg.File = positional[0]
	}

	return cfg, nil
}

// Usage returns the help text printed for --help.
func Usage() string {
	var cfg Config
	return fmt.Sprintf("Usage: %s <file> [<repository>] [options]\n\n%s", AppName, newFlagSet(&cfg).FlagUsages())
}

func newFlagSet(cfg *Config) *pflag.FlagSet {
	flags := pflag.NewFlagSet(AppName, pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.SortFlags = false

	flags.StringVarP(&cfg.Description, "description", "d", "", "Add a description to the uploaded file.")
	flags.StringVarP(&cfg.Name, "name", "n", "", "New name of the uploaded file.")
	flags.BoolVarP(&cfg.Force, "force", "f", false,
		"If a file with that name already exists on the server, replace it with this one.")
	flags.StringVarP(&cfg.Token, "token", "t", "",
		"API token to use instead of $"+EnvToken+" or the github.upload-script-token git config.")
	flags.BoolVar(&cfg.SkipSSLVerification, "skip-ssl-verification", false,
		"Skip TLS certificate verification.")
	flags.StringVarP(&cfg.MimeType, "mime-type", "m", "", "Content type to send instead of autodetection.")
	flags.StringVar(&cfg.Host, "host", DefaultHost, "Hosting service to upload to.")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Log each request to stderr.")
	flags.BoolP("help", "h", false, "Show this message.")

	return flags
}
