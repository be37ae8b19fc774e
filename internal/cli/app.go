package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/urfave/cli/v3"

	"awsinfra/internal/log"
	"awsinfra/internal/render"
	"awsinfra/pkg/server"
)

// Runtime is the part of server.Runtime the commands use.
type Runtime interface {
	Call(ctx context.Context, tool string, args map[string]any) (map[string]any, error)
	ToolNames() []string
}

// App holds the injectable pieces behind the awsinfra command tree.
type App struct {
	Version    string
	Stdout     io.Writer
	Stderr     io.Writer
	NewRuntime func(opts server.Options) (Runtime, error)
	Serve      func(ctx context.Context, opts server.Options) error
}

func New(version string) *App {
	return &App{
		Version:    version,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		NewRuntime: buildRuntime,
		Serve:      server.Run,
	}
}

// reportedError marks a failure the command already printed.
type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }

func (e reportedError) Unwrap() error { return e.err }

// Run executes args (including the program name) and returns the exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	if err := a.Command().Run(ctx, args); err != nil {
		log.Debugf("command failed: err=%v", err)
		var reported reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintf(a.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func (a *App) Command() *cli.Command {
	app := &cli.Command{
		Name:      "awsinfra",
		Usage:     "AWS infrastructure manager",
		Writer:    a.Stdout,
		ErrWriter: a.Stderr,
		// Exit codes are decided by Run.
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			_, err := render.ParseFormat(cmd.String("output"))
			return ctx, err
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "region",
				Usage: "AWS region (default: config region, then AWS_REGION, then us-east-1)",
			},
			&cli.StringFlag{
				Name:  "output",
				Usage: "output format: json, table or yaml",
				Value: string(render.JSON),
				Validator: func(value string) error {
					_, err := render.ParseFormat(value)
					return err
				},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "enable debug logging",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "config file path (default: $AWSINFRA_CONFIG)",
			},
		},
	}

	app.Commands = append(app.Commands,
		a.testConnectionCommand(),
		a.healthCheckCommand(),
		a.listCommand(),
		a.createCommand(),
		a.toolsCommand(),
		a.serveCommand(),
	)

	for _, cmd := range app.Commands {
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
	}
	return app
}

func (a *App) options(cmd *cli.Command) server.Options {
	opts := server.Options{
		ConfigPath: cmd.String("config"),
		Region:     cmd.String("region"),
		Version:    a.Version,
		Stderr:     a.Stderr,
	}
	if cmd.Bool("verbose") {
		opts.LogLevel = "debug"
	}
	return opts
}

func (a *App) runtime(cmd *cli.Command) (Runtime, error) {
	return a.NewRuntime(a.options(cmd))
}

func buildRuntime(opts server.Options) (Runtime, error) {
	cfg, err := server.LoadConfig(opts)
	if err != nil {
		return nil, err
	}
	log.Init(opts.Stderr, cfg.LogLevel)
	runtime, err := server.BuildRuntime(cfg, nil, nil, opts.Stderr)
	if err != nil {
		return nil, err
	}
	return runtime, nil
}

func outputFormat(cmd *cli.Command) render.Format {
	format, err := render.ParseFormat(cmd.String("output"))
	if err != nil {
		return render.JSON
	}
	return format
}

func succeeded(envelope map[string]any, err error) bool {
	ok, _ := envelope["success"].(bool)
	return err == nil && ok
}

func errorMessage(envelope map[string]any, err error) string {
	if msg, _ := envelope["error_message"].(string); msg != "" {
		return msg
	}
	if err != nil {
		return err.Error()
	}
	return "Unknown error"
}

// show calls tool and prints its envelope in the selected format. A failed
// call is printed too and then reported through the exit code.
func (a *App) show(ctx context.Context, cmd *cli.Command, tool string, args map[string]any) error {
	runtime, err := a.runtime(cmd)
	if err != nil {
		return err
	}
	envelope, err := runtime.Call(ctx, tool, args)
	if envelope == nil {
		return err
	}
	if werr := render.Write(a.Stdout, outputFormat(cmd), envelope); werr != nil {
		return werr
	}
	if !succeeded(envelope, err) {
		return reportedError{fmt.Errorf("%s: %s", tool, errorMessage(envelope, err))}
	}
	return nil
}
