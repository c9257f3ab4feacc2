// Command gateway is the dual-pane SFTP/SCP/FTP/FTPS terminal client
// spec.md describes. Flag parsing is kept deliberately thin, per §1's
// "out of scope" note on argument parsing: pflag decodes the flags,
// main wires the result straight into the activity manager.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/rescale-labs/gateway/internal/activity"
	"github.com/rescale-labs/gateway/internal/localhost"
	"github.com/rescale-labs/gateway/internal/logging"
	"github.com/rescale-labs/gateway/internal/model"
	"github.com/rescale-labs/gateway/internal/pathutil"
	"github.com/rescale-labs/gateway/internal/remoteaddr"
	"github.com/rescale-labs/gateway/internal/ui"
	"github.com/rescale-labs/gateway/internal/version"
)

// exitBadUsage is spec.md §6's exit code for -h, -v and any argument
// or remote-grammar error.
const exitBadUsage = 255

const usage = `usage: gateway [-P PASSWORD] [-T TICKS_MS] [-v] [-h] [remote]

remote follows [protocol://][user@]host[:port], protocol one of
sftp, scp, ftp, ftps.

  -P, --password string   password for the remote (otherwise prompted)
  -T, --ticks int         activity poll interval, in milliseconds (default 10)
  -v, --version           print version and exit
  -h, --help              print this message and exit
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("gateway", pflag.ContinueOnError)
	flags.Usage = func() {}
	flags.SetOutput(discard{})

	password := flags.StringP("password", "P", "", "")
	tickMs := flags.IntP("ticks", "T", 10, "")
	showVersion := flags.BoolP("version", "v", false, "")
	showHelp := flags.BoolP("help", "h", false, "")

	if err := flags.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, usage)
		return exitBadUsage
	}

	if *showHelp {
		fmt.Fprint(os.Stderr, usage)
		return exitBadUsage
	}
	if *showVersion {
		fmt.Println("gateway " + version.Version)
		return exitBadUsage
	}

	if flags.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "gateway: at most one remote argument is accepted")
		fmt.Fprint(os.Stderr, usage)
		return exitBadUsage
	}

	var remote string
	if flags.NArg() == 1 {
		remote = flags.Arg(0)
	}

	if err := launch(remote, *password, *tickMs); err != nil {
		fmt.Fprintln(os.Stderr, "gateway:", err)
		return exitBadUsage
	}
	return 0
}

// discard silences pflag's own error/usage printing so gateway's own
// usage text (matching spec.md §6 exactly) is the only thing shown.
type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func launch(remote, password string, tickMs int) error {
	logger := logging.New()

	var params model.Params
	if remote != "" {
		parsed, err := remoteaddr.Parse(remote)
		if err != nil {
			return fmt.Errorf("bad remote %q: %w", remote, err)
		}
		params = model.Params{Address: parsed.Address, Port: parsed.Port, Protocol: parsed.Protocol, Username: parsed.Username}
		if password != "" {
			params.Password = &password
		}
	}

	// pathutil resolves symlinks/junctions in the existing portion of
	// the working directory so the local pane's wrkdir matches what the
	// shell the user launched gateway from actually sees.
	cwd, err := pathutil.ResolveAbsolutePath("")
	if err != nil {
		return fmt.Errorf("could not determine working directory: %w", err)
	}
	local, err := localhost.New(cwd)
	if err != nil {
		return fmt.Errorf("could not scope local directory: %w", err)
	}

	term, err := ui.New()
	if err != nil {
		return fmt.Errorf("could not initialize terminal: %w", err)
	}
	if err := term.EnableRawMode(); err != nil {
		logger.Warn().Err(err).Msg("could not enable raw mode")
	}
	if err := term.EnterAltScreen(); err != nil {
		logger.Warn().Err(err).Msg("could not enter alternate screen")
	}
	defer func() {
		_ = term.LeaveAltScreen()
		_ = term.DisableRawMode()
	}()

	ctx := &activity.Context{Local: local, Term: term, Editor: ui.ProcessEditor{}}
	manager := activity.NewManager(ctx, time.Duration(tickMs)*time.Millisecond)
	manager.SetPasswordPrompter(ui.PasswordPrompt{})

	if params.Address != "" {
		manager.SeedParams(params)
	}

	manager.Run()
	return nil
}
