package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"tinybasic/pkg/ast"
	"tinybasic/pkg/config"
	"tinybasic/pkg/eval"
	"tinybasic/pkg/program"
	"tinybasic/pkg/repl"
	"tinybasic/pkg/server"
	"tinybasic/pkg/version"
)

var (
	bannerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fatal(err)
	}

	if len(os.Args) < 2 {
		startREPL(cfg)
		return
	}

	command := os.Args[1]

	switch command {
	case "--version", "-v", "version":
		printVersion()
		return
	case "--help", "-h", "help":
		printHelp()
		return
	}

	if strings.HasSuffix(command, ".bas") {
		runFile(cfg, command)
		return
	}

	switch command {
	case "repl":
		startREPL(cfg)
	case "run":
		runFile(cfg, fileArg("run"))
	case "inspect":
		inspectFile(fileArg("inspect"))
	case "ast":
		printProgramAST(fileArg("ast"))
	case "serve":
		serve(cfg)
	case "token":
		issueToken(cfg)
	case "hash-password":
		hashPassword()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printHelp()
		os.Exit(1)
	}
}

func fileArg(command string) string {
	if len(os.Args) < 3 {
		fmt.Printf("Usage: basic %s <file>\n", command)
		os.Exit(1)
	}
	return os.Args[2]
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "basic: %s\n", repl.Describe(err))
	os.Exit(1)
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

func programOptions(cfg config.Config) []program.Option {
	return []program.Option{
		program.WithMaxSteps(cfg.MaxSteps),
		program.WithInputPrompt(cfg.InputPrompt),
	}
}

// linerInput reads from the terminal with line editing. Only lines typed at
// the REPL prompt go into the history; INPUT answers do not.
type linerInput struct {
	ln     *liner.State
	prompt string
}

func (li *linerInput) ReadLine(prompt string) (string, error) {
	line, err := li.ln.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", io.EOF
	}
	if err != nil {
		return "", err
	}
	if prompt == li.prompt && strings.TrimSpace(line) != "" {
		li.ln.AppendHistory(line)
	}
	return line, nil
}

func startREPL(cfg config.Config) {
	opts := []repl.Option{
		repl.WithPrompt(cfg.Prompt),
		repl.WithProgramOptions(programOptions(cfg)...),
	}

	if !isTerminal(os.Stdin) {
		session := repl.New(repl.NewReaderInput(os.Stdin, os.Stdout), os.Stdout, opts...)
		if err := session.Run(); err != nil {
			fatal(err)
		}
		return
	}

	if !cfg.NoColor {
		fmt.Println(bannerStyle.Render("Tiny BASIC " + version.Version))
		fmt.Println("Type HELP for the list of commands, QUIT to leave.")
		opts = append(opts, repl.WithErrorStyle(func(s string) string { return errStyle.Render(s) }))
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if cfg.HistoryFile != "" {
		if f, err := os.Open(cfg.HistoryFile); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if err := os.MkdirAll(filepath.Dir(cfg.HistoryFile), 0o755); err != nil {
				return
			}
			if f, err := os.Create(cfg.HistoryFile); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	session := repl.New(&linerInput{ln: ln, prompt: cfg.Prompt}, os.Stdout, opts...)
	if err := session.Run(); err != nil {
		fmt.Fprintln(os.Stderr, repl.Describe(err))
	}
}

func loadProgram(filename string, out io.Writer, in eval.Input, opts ...program.Option) (*program.Program, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	prog := program.New(out, in, opts...)
	if err := prog.Load(f); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return prog, nil
}

func runFile(cfg config.Config, filename string) {
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	prog, err := loadProgram(filename, out, repl.NewReaderInput(os.Stdin, &flushWriter{out}), programOptions(cfg)...)
	if err != nil {
		fatal(err)
	}
	if err := prog.Run(); err != nil {
		out.Flush()
		fatal(err)
	}
}

// flushWriter flushes buffered program output before an INPUT prompt so the
// prompt follows everything printed so far.
type flushWriter struct {
	w *bufio.Writer
}

func (fw *flushWriter) Write(p []byte) (int, error) {
	n, err := fw.w.Write(p)
	if err != nil {
		return n, err
	}
	return n, fw.w.Flush()
}

func inspectFile(filename string) {
	prog, err := loadProgram(filename, io.Discard, nil)
	if err != nil {
		fatal(err)
	}

	insights := analyzeProgram(prog)
	printStatementInsights(insights)
	printJumpInsights(insights.Jumps)
	printVariableInsights(insights)
}

func printStatementInsights(insights ProgramInsights) {
	fmt.Printf("Lines (%d)\n", insights.Lines)
	for _, kind := range []string{"LET", "PRINT", "INPUT", "GOTO", "IF", "REM", "END"} {
		if n := insights.Statements[kind]; n > 0 {
			fmt.Printf("  · %-5s %d\n", kind, n)
		}
	}
}

func printJumpInsights(jumps []JumpInfo) {
	fmt.Printf("Jumps (%d)\n", len(jumps))
	if len(jumps) == 0 {
		fmt.Println("  · No GOTO or IF statements found.")
		return
	}

	for _, j := range jumps {
		line := fmt.Sprintf("  · %d %s -> %d", j.From, j.Kind, j.To)
		if j.Missing {
			line = warnStyle.Render(line + " (missing line)")
		}
		fmt.Println(line)
	}
}

func printVariableInsights(insights ProgramInsights) {
	fmt.Printf("Variables (%d)\n", len(insights.Assigned))
	if len(insights.Assigned) > 0 {
		fmt.Printf("  · %s\n", strings.Join(insights.Assigned, ", "))
	}
	if len(insights.Unassigned) > 0 {
		fmt.Println(warnStyle.Render("  · read but never assigned: " + strings.Join(insights.Unassigned, ", ")))
	}
}

func printProgramAST(filename string) {
	prog, err := loadProgram(filename, io.Discard, nil)
	if err != nil {
		fatal(err)
	}
	prog.Walk(func(line int, stmt ast.Statement) bool {
		fmt.Printf("%d %s\n", line, stmt.String())
		return true
	})
}

func serve(cfg config.Config) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.New(cfg, logger).ListenAndServe(ctx); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func issueToken(cfg config.Config) {
	if cfg.JWTSecret == "" {
		fatal(fmt.Errorf("%s is not set", config.KeyJWTSecret))
	}
	subject := "basic"
	if len(os.Args) > 2 {
		subject = os.Args[2]
	}
	token, err := server.SignToken(subject, cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		fatal(err)
	}
	fmt.Println(token)
}

func hashPassword() {
	var password string
	if len(os.Args) > 2 {
		password = os.Args[2]
	} else {
		line, err := repl.NewReaderInput(os.Stdin, os.Stderr).ReadLine("Password: ")
		if err != nil {
			fatal(err)
		}
		password = line
	}
	if password == "" {
		fatal(errors.New("empty password"))
	}

	hash, err := server.HashPassword(password)
	if err != nil {
		fatal(err)
	}
	fmt.Println(hash)
}

func printVersion() {
	fmt.Printf("Tiny BASIC %s\n", version.Version)
	fmt.Printf("Build Date: %s\n", version.BuildDate)
	fmt.Printf("Git Commit: %s\n", version.GitCommit)
}

func printHelp() {
	fmt.Println("basic: a line-numbered integer BASIC interpreter")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  basic                        Start the interactive REPL")
	fmt.Println("  basic <file.bas>             Run a program (shortcut for 'basic run')")
	fmt.Println("  basic repl                   Start the interactive REPL")
	fmt.Println("  basic run <file>             Load and run a program")
	fmt.Println("  basic inspect <file>         Summarize statements, jumps and variables")
	fmt.Println("  basic ast <file>             Print the parsed statement of every line")
	fmt.Println("  basic serve                  Serve sessions over websockets")
	fmt.Println("  basic token [subject]        Issue a session token")
	fmt.Println("  basic hash-password [pw]     Print a bcrypt hash for BASIC_PASSWORD_HASH")
	fmt.Println("  basic version                Display build metadata")
	fmt.Println("  basic help                   Show this help message")
	fmt.Println()
	fmt.Println("Configuration is read from the environment and ./.env:")
	fmt.Println("  BASIC_PROMPT, BASIC_INPUT_PROMPT, BASIC_MAX_STEPS, BASIC_SERVE_MAX_STEPS,")
	fmt.Println("  BASIC_HISTORY_FILE, BASIC_LISTEN_ADDR, BASIC_JWT_SECRET, BASIC_PASSWORD_HASH,")
	fmt.Println("  BASIC_TOKEN_TTL, BASIC_NO_COLOR")
}
