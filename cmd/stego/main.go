package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/bodgit/stego"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

const (
	exitOK = iota
	exitFailure
	exitUsage
	exitUnsupported
	exitOpen
	exitCapacity
	exitUnterminated
	exitMalformed
)

const wrongArguments = "Wrong arguments. Please try again or check \"-h\" flag"

const manual = `Works with BMP or PPM files, every other format is not supported.

The hidden message starts with "` + stego.Begin + `" and ends with "` + stego.End + `" so the message
itself must not contain "` + stego.End + `". The first 200 bytes of a file are never
modified; each following byte stores one bit of the message in its parity.

Exactly one of the action flags may be given:

   -e, --encrypt FILE MESSAGE   hide MESSAGE in FILE
   -c, --check FILE MESSAGE     check whether FILE contains exactly MESSAGE
   -d, --decrypt FILE           print the message hidden in FILE, if any
   -i, --info FILE              print the format, size and last modification
                                time of FILE
   -g, --generate SRC DST       convert the PNG, JPEG, GIF, BMP or PPM image
                                SRC into an uncompressed carrier DST, the
                                format is chosen by the extension of DST
   -s, --scan DIRECTORY         print the message hidden in every carrier
                                beneath DIRECTORY

Exit status is 0 on success, 2 for wrong arguments, 3 for an unsupported
format, 4 if a file cannot be opened, 5 if the message does not fit, 6 for
an unterminated message, 7 if the message contains "` + stego.End + `" and 1 otherwise.`

// Number of positional arguments each action takes
var actions = []struct {
	name  string
	nargs int
}{
	{"encrypt", 2},
	{"check", 2},
	{"decrypt", 1},
	{"info", 1},
	{"generate", 2},
	{"scan", 1},
}

var (
	success = color.New(color.FgHiGreen, color.Bold)
	failure = color.New(color.FgHiRed, color.Bold)
	warning = color.New(color.FgHiYellow)
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func exitCode(err error) int {
	var oe *stego.OpenError
	switch {
	case errors.Is(err, stego.ErrUnsupportedFormat):
		return exitUnsupported
	case errors.As(err, &oe):
		return exitOpen
	case errors.Is(err, stego.ErrInsufficientCapacity):
		return exitCapacity
	case errors.Is(err, stego.ErrUnterminatedMessage):
		return exitUnterminated
	case errors.Is(err, stego.ErrMalformedMessage):
		return exitMalformed
	default:
		return exitFailure
	}
}

// fail prints err as a diagnostic and maps it to an exit code
func fail(w io.Writer, err error) error {
	failure.Fprintln(w, err)
	return cli.Exit("", exitCode(err))
}

func encrypt(c *cli.Context, e *stego.Engine) error {
	if err := e.EmbedFile(c.Args().Get(0), []byte(c.Args().Get(1))); err != nil {
		return fail(c.App.Writer, err)
	}
	success.Fprintln(c.App.Writer, "Your message was successfully hidden")
	return nil
}

func check(c *cli.Context, e *stego.Engine) error {
	w := c.App.Writer
	report, err := e.CheckFile(c.Args().Get(0), []byte(c.Args().Get(1)))
	if err != nil {
		return fail(w, err)
	}

	if report.Found {
		success.Fprintln(w, "This message is hidden in this file")
	} else {
		failure.Fprintln(w, "This message isn't hidden in this file")
		fmt.Fprintln(w, "Try using \"-d\" option to check hidden message.")
	}

	if report.Fits {
		fmt.Fprintln(w, "This message can be written in this file.")
	} else {
		warning.Fprintln(w, "This message can't be written in this file.")
		fmt.Fprintf(w, "Message must be at most %s characters long.\n", humanize.Comma(report.ExactMaxChars))
	}

	if r := report.Record; r != nil {
		fmt.Fprintf(w, "Message of %d characters was hidden in \"%s\" %s.\n", r.Length, r.Path, humanize.Time(r.Created))
	}

	return nil
}

func decrypt(c *cli.Context, e *stego.Engine) error {
	w := c.App.Writer
	message, found, err := e.ExtractFile(c.Args().Get(0))
	if err != nil {
		return fail(w, err)
	}

	if !found {
		failure.Fprintln(w, "This file does not contain a secret message.")
		fmt.Fprintln(w, "Try using \"-e\" option to hide the message.")
		return nil
	}

	fmt.Fprintf(w, "Secret message in this file is: %s\n", message)
	return nil
}

func info(c *cli.Context, e *stego.Engine) error {
	w := c.App.Writer
	fi, err := e.Info(c.Args().Get(0))
	if err != nil {
		return fail(w, err)
	}

	fmt.Fprintf(w, "File format is: %s.\n", fi.Format)
	fmt.Fprintf(w, "File size is: %d bytes long (%s).\n", fi.Size, humanize.Bytes(uint64(fi.Size)))
	if fi.Width > 0 {
		fmt.Fprintf(w, "Image dimensions are: %dx%d.\n", fi.Width, fi.Height)
	}
	fmt.Fprintf(w, "Message capacity is: %s characters.\n", humanize.Comma(fi.Capacity))
	if r := fi.Record; r != nil {
		fmt.Fprintf(w, "Message of %d characters was hidden %s.\n", r.Length, humanize.Time(r.Created))
	}
	fmt.Fprintf(w, "Last modified time: %s\n", fi.ModTime.Local().Format(time.ANSIC))

	return nil
}

func generate(c *cli.Context, e *stego.Engine) error {
	dst := c.Args().Get(1)
	if err := e.Generate(c.Args().Get(0), dst); err != nil {
		return fail(c.App.Writer, err)
	}
	success.Fprintf(c.App.Writer, "Carrier written to \"%s\"\n", dst)
	return nil
}

func scan(c *cli.Context, e *stego.Engine) error {
	w := c.App.Writer
	results, err := e.Scan(c.Args().Get(0), c.Int("workers"))
	if err != nil {
		return fail(w, err)
	}

	for _, r := range results {
		switch {
		case r.Err != nil:
			failure.Fprintf(w, "%s: %v\n", r.Path, r.Err)
		case r.Found:
			fmt.Fprintf(w, "%s: %s\n", r.Path, r.Message)
		default:
			fmt.Fprintf(w, "%s: no secret message\n", r.Path)
		}
	}
	return nil
}

var handlers = map[string]func(*cli.Context, *stego.Engine) error{
	"encrypt":  encrypt,
	"check":    check,
	"decrypt":  decrypt,
	"info":     info,
	"generate": generate,
	"scan":     scan,
}

func run(c *cli.Context) error {
	var action string
	var nargs, set int
	for _, a := range actions {
		if c.Bool(a.name) {
			action, nargs = a.name, a.nargs
			set++
		}
	}

	if set == 0 && c.NArg() == 0 {
		return cli.ShowAppHelp(c)
	}

	if set != 1 || c.NArg() != nargs {
		fmt.Fprintln(c.App.Writer, wrongArguments)
		return cli.Exit("", exitUsage)
	}

	logger := log.New(io.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(c.App.ErrWriter)
	}

	var db *stego.HistoryDB
	if file := c.String("db"); file != "" {
		var err error
		if db, err = stego.NewHistoryDB(file); err != nil {
			return fail(c.App.Writer, errors.Wrap(err, "history database"))
		}
		defer db.Close()
	}

	return handlers[action](c, stego.New(db, logger, c.Bool("strict")))
}

func newApp() *cli.App {
	app := cli.NewApp()

	app.Name = "stego"
	app.Usage = "Hide text messages in BMP and PPM files"
	app.UsageText = "stego [global options] -e|-c FILE MESSAGE\n   stego [global options] -d|-i FILE\n   stego [global options] -g SRC DST\n   stego [global options] -s DIRECTORY"
	app.Description = manual
	app.Version = "1.0.0"
	app.HideHelpCommand = true
	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:    "encrypt",
			Aliases: []string{"e"},
			Usage:   "hide a message in a file",
		},
		&cli.BoolFlag{
			Name:    "check",
			Aliases: []string{"c"},
			Usage:   "check whether a message is hidden in a file",
		},
		&cli.BoolFlag{
			Name:    "decrypt",
			Aliases: []string{"d"},
			Usage:   "print the message hidden in a file",
		},
		&cli.BoolFlag{
			Name:    "info",
			Aliases: []string{"i"},
			Usage:   "print information about a file",
		},
		&cli.BoolFlag{
			Name:    "generate",
			Aliases: []string{"g"},
			Usage:   "convert an image into a carrier",
		},
		&cli.BoolFlag{
			Name:    "scan",
			Aliases: []string{"s"},
			Usage:   "print the messages hidden beneath a directory",
		},
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"STEGO_DB"},
			Usage:   "path to embedding history database",
		},
		&cli.BoolFlag{
			Name:    "strict",
			EnvVars: []string{"STEGO_STRICT"},
			Usage:   "accept both \"P3\" and \"P6\" PPM files",
		},
		&cli.IntFlag{
			Name:    "workers",
			EnvVars: []string{"STEGO_WORKERS"},
			Value:   4,
			Usage:   "number of files to scan concurrently",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Action = run

	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
