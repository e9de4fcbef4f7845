/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind          string
	botDelay      time.Duration
	firstLetter   string
	hints         int
	lives         int
	offline       bool
	placesTimeout time.Duration
	placesURL     string
	playerTimeout time.Duration
	port          int
	prefix        string
	profile       bool
	rateBurst     int
	rateLimit     float64
	tlsCert       string
	tlsKey        string
	turnTime      time.Duration
	verbose       bool
	version       bool

	logger zerolog.Logger
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.lives < 0 {
		return fmt.Errorf("invalid lives (must be 0 or greater): %d", c.lives)
	}
	if c.hints < 0 {
		return fmt.Errorf("invalid hints (must be 0 or greater): %d", c.hints)
	}
	if c.turnTime < time.Second {
		return fmt.Errorf("invalid turn time (must be at least 1s): %s", c.turnTime)
	}
	if c.botDelay < 0 || c.botDelay >= c.turnTime {
		return fmt.Errorf("invalid bot delay (must be between 0 and --turn-time): %s", c.botDelay)
	}
	if c.placesTimeout <= 0 {
		return fmt.Errorf("invalid places timeout (must be greater than 0): %s", c.placesTimeout)
	}
	if len(c.firstLetter) > 1 || (c.firstLetter != "" && !isLetter(c.firstLetter[0])) {
		return fmt.Errorf("invalid first letter (must be a single letter a-z, or empty for any): %q", c.firstLetter)
	}
	if !c.offline {
		u, err := url.Parse(c.placesURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid places url: %q", c.placesURL)
		}
	}
	return nil
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("ATLAS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "atlas",
		Short:         "A real-time place name chain game, with an optional computer opponent.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			cfg.logger = newLogger(cfg)
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: ATLAS_BIND)")
	fs.DurationVar(&cfg.botDelay, "bot-delay", 2*time.Second, "time the computer player thinks before answering (env: ATLAS_BOT_DELAY)")
	fs.StringVar(&cfg.firstLetter, "first-letter", "a", "required letter of the first answer of every game, empty for any (env: ATLAS_FIRST_LETTER)")
	fs.IntVar(&cfg.hints, "hints", 2, "hints available to each player per game (env: ATLAS_HINTS)")
	fs.IntVar(&cfg.lives, "lives", 3, "extra lives of each player per game (env: ATLAS_LIVES)")
	fs.BoolVar(&cfg.offline, "offline", false, "use the built-in place list instead of the places service (env: ATLAS_OFFLINE)")
	fs.DurationVar(&cfg.placesTimeout, "places-timeout", 5*time.Second, "time before a places service call counts as a failed answer (env: ATLAS_PLACES_TIMEOUT)")
	fs.StringVar(&cfg.placesURL, "places-url", "https://world-locations-api.vercel.app", "base url of the places service (env: ATLAS_PLACES_URL)")
	fs.DurationVar(&cfg.playerTimeout, "player-timeout", 10*time.Minute, "time before disconnected players outside a room are forgotten (env: ATLAS_PLAYER_TIMEOUT)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: ATLAS_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: ATLAS_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: ATLAS_PROFILE)")
	fs.IntVar(&cfg.rateBurst, "rate-burst", 10, "burst of messages accepted from a single client (env: ATLAS_RATE_BURST)")
	fs.Float64Var(&cfg.rateLimit, "rate-limit", 5, "messages per second accepted from a single client, 0 to disable (env: ATLAS_RATE_LIMIT)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: ATLAS_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: ATLAS_TLS_KEY)")
	fs.DurationVar(&cfg.turnTime, "turn-time", 32*time.Second, "time each player has to answer (env: ATLAS_TURN_TIME)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: ATLAS_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: ATLAS_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("atlas v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
