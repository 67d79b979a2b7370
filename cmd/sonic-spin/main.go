package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	resyn "github.com/swfsql/sonic-spin"
)

const (
	appName     = "sonic-spin"
	historyFile = ".sonic_spin_history"
	promptMain  = "==> "
	promptCont  = "... "
)

var banner = fmt.Sprintf("sonic-spin %s REPL\nCtrl+C cancels input, Ctrl+D exits. Type :quit to exit.", resyn.Version)

var (
	red   = color.New(color.FgRed).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
	blue  = color.New(color.FgHiBlue).SprintFunc()
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	switch cmd {
	case "expand":
		os.Exit(cmdExpand(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	case "version":
		fmt.Println(resyn.Version)
		return
	case "-h", "--help", "help":
		usage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Printf(`sonic-spin %s (built %s)

Usage:
  %s expand [--check] [file ...]   Rewrite postfix splices to prefix form (stdin when no files).
  %s repl                          Start the REPL.
  %s version                      Print the compiled version

`, resyn.Version, resyn.BuildDate, appName, appName, appName)
}

// -----------------------------------------------------------------------------
// expand
// -----------------------------------------------------------------------------

func cmdExpand(args []string) int {
	fs := flag.NewFlagSet("expand", flag.ContinueOnError)
	check := fs.Bool("check", false, "check only; exit 1 if any input fails to parse")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	files := fs.Args()

	if len(files) == 0 {
		src, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: cannot read stdin: %v\n", appName, err)
			return 1
		}
		return expandOne("<stdin>", string(src), *check)
	}

	ret := 0
	for _, f := range files {
		src, err := os.ReadFile(f)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, f, err)
			return 1
		}
		if rc := expandOne(f, string(src), *check); rc != 0 {
			ret = rc
		}
	}
	return ret
}

func expandOne(name, src string, check bool) int {
	out, err := resyn.Expand(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, red(resyn.WrapErrorWithName(err, name, src).Error()))
		return 1
	}
	if check {
		fmt.Printf("%s %s\n", green("ok"), name)
		return 0
	}
	fmt.Println(out)
	return 0
}

// -----------------------------------------------------------------------------
// repl
// -----------------------------------------------------------------------------

func cmdRepl(_ []string) int {
	fmt.Println(banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	for {
		code, ok := readByParseProbe(ln, promptMain, promptCont)
		if !ok {
			fmt.Println()
			break
		}

		if strings.HasPrefix(strings.TrimSpace(code), ":") {
			switch strings.TrimSpace(strings.ToLower(code)) {
			case ":quit":
				return 0
			default:
				fmt.Printf("unknown command. Type :quit to exit.\n")
			}
			continue
		}

		if strings.TrimSpace(code) == "" {
			continue
		}

		stmts, err := resyn.ParseStmts(code)
		if err != nil {
			fmt.Fprintln(os.Stderr, red(resyn.WrapErrorWithSource(err, code).Error()))
			continue
		}
		fmt.Println(blue(resyn.PrintStmts(stmts)))
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}

	return 0
}

// readByParseProbe accumulates lines until the input parses or fails with
// a non-EOF error. An error at end of input means the construct is still
// open, so prompt for a continuation line.
func readByParseProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		_, perr := resyn.ParseStmtsInteractive(src)
		if perr == nil {
			return src, true
		}
		if resyn.IsIncomplete(perr) {
			continue
		}
		return src, true
	}
}
