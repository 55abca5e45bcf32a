package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/herdata/internal/cache"
	"github.com/ppiankov/herdata/internal/logging"
	"github.com/ppiankov/herdata/internal/model"
)

var version = "0.1.0"

var (
	cfgFile  string
	verbose  bool
	logLevel string
	dataDir  string
	noCache  bool
	cacheDir string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "herdata",
	Short: "herdata - letters to Goethe, analyzed and joined with SNDB person data",
	Long: `herdata works on two snapshots kept under the data directory:

  ra-cmif.xml   the CMIF export of the Regestausgabe "Briefe an Goethe"
  SNDB/*.xml    the person, place and occupation tables of the SNDB

"analyze" writes a statistical Markdown report about the letters.
"build" selects the women recorded in the SNDB, joins them with the
letters they sent or are mentioned in, adds places and occupations and
writes persons.json for the web visualization.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "herdata v%s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.herdata/config.yaml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	pf.StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	pf.StringVar(&dataDir, "data-dir", "", "directory holding ra-cmif.xml and SNDB/")
	pf.BoolVar(&noCache, "no-cache", false, "disable the decoded-table cache")
	pf.StringVar(&cacheDir, "cache-dir", "", "persist decoded tables in this directory")

	_ = viper.BindPFlag("verbose", pf.Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// envKeys are the config keys that can be set through HERDATA_* variables
var envKeys = []string{
	"data_dir",
	"cmif_file",
	"sndb.dir",
	"log.level",
	"log.format",
	"cache.enabled",
	"cache.dir",
	"build.output_path",
	"build.sqlite_path",
	"analyze.report_path",
	"analyze.json_path",
	"validation.enabled",
}

// initConfig reads in .env files, the config file and ENV variables
func initConfig() {
	loadEnvFiles()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(filepath.Join(home, ".herdata"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// HERDATA_LOG_LEVEL maps to log.level
	viper.SetEnvPrefix("HERDATA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, key := range envKeys {
		_ = viper.BindEnv(key)
	}

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadEnvFiles loads .env.local and .env. Variables already set are never
// overridden, so .env.local wins over .env and the real environment over both.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		if err := godotenv.Load(envFile); err == nil && verbose {
			fmt.Fprintf(os.Stderr, "Loaded %s\n", envFile)
		}
	}
}

// loadConfig merges defaults, config file, environment and global flags,
// and builds the logger for the run
func loadConfig() (*model.Config, zerolog.Logger, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("decode config: %w", err)
	}
	applyGlobalFlags(cfg)
	if verbose && logging.ParseLevel(cfg.Log.Level) > zerolog.DebugLevel {
		cfg.Log.Level = "debug"
	}

	log := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	return cfg, log, nil
}

// applyGlobalFlags lets the persistent flags win over file and environment
func applyGlobalFlags(cfg *model.Config) {
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if cacheDir != "" {
		cfg.Cache.Dir = cacheDir
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
}

// newCache builds the table cache shared by the loaders of one command
func newCache(cfg *model.Config, log zerolog.Logger) cache.Cache {
	c := cache.New(cfg.Cache)
	if c == nil {
		log.Debug().Msg("cache disabled")
	} else if cfg.Cache.Dir != "" {
		log.Debug().Str("dir", cfg.Cache.Dir).Msg("using disk cache")
	}
	return c
}
