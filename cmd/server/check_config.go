package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"ussd-bridge/internal/config"
)

var (
	checkFormat string
	checkStrict bool
)

var checkConfigCmd = &cobra.Command{
	Use:   "check-config",
	Short: "Print the effective configuration and any problems with it",
	Long: `check-config loads .env and the environment the same way the server does,
prints the resulting settings with secrets masked, and lists configuration
issues. With --strict it exits non-zero when any issue is found.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		report := newConfigReport(config.Load())

		if err := writeReport(cmd.OutOrStdout(), report, checkFormat); err != nil {
			return err
		}

		if checkStrict && len(report.Issues) > 0 {
			return fmt.Errorf("%d configuration issue(s) found", len(report.Issues))
		}
		return nil
	},
}

func init() {
	checkConfigCmd.Flags().StringVar(&checkFormat, "format", "yaml", "Output format: yaml or json")
	checkConfigCmd.Flags().BoolVar(&checkStrict, "strict", false, "Exit non-zero when issues are found")
}

type configReport struct {
	Server  serverSection  `json:"server" yaml:"server"`
	Store   storeSection   `json:"store" yaml:"store"`
	USSD    ussdSection    `json:"ussd" yaml:"ussd"`
	Chatbot chatbotSection `json:"chatbot" yaml:"chatbot"`
	Admin   adminSection   `json:"admin" yaml:"admin"`
	Issues  []config.Issue `json:"issues" yaml:"issues"`
}

type serverSection struct {
	Port     string `json:"port" yaml:"port"`
	LogLevel string `json:"logLevel" yaml:"logLevel"`
}

type storeSection struct {
	Backend       string `json:"backend" yaml:"backend"`
	RedisAddr     string `json:"redisAddr,omitempty" yaml:"redisAddr,omitempty"`
	RedisPassword string `json:"redisPassword,omitempty" yaml:"redisPassword,omitempty"`
	RedisDB       int    `json:"redisDb" yaml:"redisDb"`
	SessionTTL    string `json:"sessionTtl" yaml:"sessionTtl"`
}

type ussdSection struct {
	MaxWait      string `json:"maxWait" yaml:"maxWait"`
	PollInterval string `json:"pollInterval" yaml:"pollInterval"`
	EndMarker    string `json:"endMarker" yaml:"endMarker"`
}

type chatbotSection struct {
	BaseURL     string `json:"baseUrl" yaml:"baseUrl"`
	APIKey      string `json:"apiKey" yaml:"apiKey"`
	Destination string `json:"destination" yaml:"destination"`
	Timeout     string `json:"timeout" yaml:"timeout"`
}

type adminSection struct {
	User        string `json:"user" yaml:"user"`
	Diagnostics bool   `json:"diagnostics" yaml:"diagnostics"`
}

func newConfigReport(cfg config.Config) configReport {
	r := configReport{
		Server: serverSection{
			Port:     cfg.AppPort,
			LogLevel: cfg.LogLevel,
		},
		Store: storeSection{
			Backend:    cfg.StoreBackend,
			SessionTTL: cfg.SessionTTL.String(),
		},
		USSD: ussdSection{
			MaxWait:      cfg.MaxWait.String(),
			PollInterval: cfg.PollInterval.String(),
			EndMarker:    cfg.EndMarker,
		},
		Chatbot: chatbotSection{
			BaseURL:     cfg.ChatbotBaseURL,
			APIKey:      config.Mask(cfg.ChatbotAPIKey),
			Destination: cfg.ChatbotDestination,
			Timeout:     cfg.ChatbotTimeout.String(),
		},
		Admin: adminSection{
			User:        cfg.AdminUser,
			Diagnostics: cfg.AdminPasswordHash != "",
		},
		Issues: cfg.Validate(),
	}

	if cfg.StoreBackend == config.BackendRedis {
		r.Store.RedisAddr = cfg.RedisAddr
		r.Store.RedisPassword = config.Mask(cfg.RedisPassword)
		r.Store.RedisDB = cfg.RedisDB
	}

	if r.Issues == nil {
		r.Issues = []config.Issue{}
	}
	return r
}

func writeReport(w io.Writer, r configReport, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q (want yaml or json)", format)
}
