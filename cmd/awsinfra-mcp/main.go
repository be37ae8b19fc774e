package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"awsinfra/pkg/server"
)

const version = "0.1.0"

var runServer = server.Run
var exit = os.Exit

func main() {
	ctx := context.Background()

	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	configPath := flags.String("config", "", "config file path (default: $AWSINFRA_CONFIG)")
	region := flags.String("region", "", "default AWS region")
	profile := flags.String("profile", "", "shared config profile")
	toolsets := flags.String("toolsets", "", "comma-separated toolsets to enable")
	readOnly := flags.Bool("read-only", false, "expose only read tools")
	disableDestructive := flags.Bool("disable-destructive", false, "hide destructive tools")
	logLevel := flags.String("log-level", "", "log level")

	_ = flags.Parse(os.Args[1:])

	options := server.Options{
		ConfigPath: *configPath,
		Version:    version,
		Stderr:     os.Stderr,
	}
	set := map[string]bool{}
	flags.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["region"] {
		options.Region = *region
	}
	if set["profile"] {
		options.Profile = *profile
	}
	if set["toolsets"] {
		options.Toolsets = parseCSV(*toolsets)
	}
	if set["read-only"] {
		options.ReadOnly = *readOnly
	}
	if set["disable-destructive"] {
		options.DisableDestructive = *disableDestructive
	}
	if set["log-level"] {
		options.LogLevel = *logLevel
	}

	if err := runServer(ctx, options); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		exit(1)
	}
}

func parseCSV(input string) []string {
	var out []string
	for _, part := range strings.Split(input, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
