package main

import (
	"bufio"
	"os"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	verifiercmd "github.com/thechriswalker/evverify/cmd/verifier"
	"github.com/thechriswalker/evverify/version"
)

func preamble(cmd *cobra.Command, args []string) {
	log.Info().
		Str("version", version.Version).
		Str("license", "GPLv3+").
		Msg("Independent Tally Verifier")

	log.Debug().
		Str("commit", version.Commit).
		Str("built", version.BuildDate).
		Str("arch", runtime.GOARCH).
		Str("os", runtime.GOOS).
		Msg("Build Info")
}

const timeFormatMs = "2006-01-02T15:04:05.000Z07:00"
const timeFormatLocal = "2006-01-02 15:04:05.000"

// loadDotEnv applies KEY=VALUE lines from a .env file in the working
// directory to the process environment, if present. No third-party
// dotenv library appears anywhere in the retrieved pack, so this one
// corner stays hand-rolled, the same loose style as the teacher's own
// DEBUG environment-variable convention.
func loadDotEnv(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if _, exists := os.LookupEnv(key); !exists {
			os.Setenv(key, value)
		}
	}
}

func main() {
	loadDotEnv(".env")

	// configure the logger.
	// remember pretty logs are only good on the console
	zerolog.TimeFieldFormat = timeFormatMs
	log.Logger = log.Output(zerolog.NewConsoleWriter(func(cw *zerolog.ConsoleWriter) {
		cw.TimeFormat = timeFormatLocal
		cw.NoColor = true
	}))

	var rootCmd = &cobra.Command{
		Use:              "evverify",
		Short:            "Independent tally verifier",
		Version:          version.Version,
		PersistentPreRun: preamble,
	}

	if os.Getenv("DEBUG") != "" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	verifiercmd.Register(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Err(err).Msg("An Error Occured")
		os.Exit(1)
	}
}
