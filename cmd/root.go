package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pbmd/forgescan/internal/config"
)

var (
	cfgFile string
	verbose bool
	quiet   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "forgescan",
	Short: "Find source-code forge links in PubMed abstracts and describe the repositories",
	Long: `forgescan harvests PubMed articles whose abstracts mention a source-code
forge (GitHub, GitLab, ...), extracts and normalizes the repository link,
and enriches it with repository metadata and Software Heritage archival
status.

A typical run chains the stages through tab-separated files:

  forgescan search --from-year 2009 --to-year 2022 -o pmids.tsv
  forgescan fetch --pmids pmids.tsv -o articles.tsv
  forgescan links --in articles.tsv -o links.tsv
  forgescan enrich --in links.tsv -o enriched.tsv`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// Interrupt and SIGTERM cancel the command's context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults(viper.GetViper())

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.forgescan.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "quiet output (warnings and errors only)")
	rootCmd.PersistentFlags().Int("workers", 4, "number of concurrent workers")
	rootCmd.PersistentFlags().String("cache", config.CacheNone, "response cache backend (none, file, redis)")

	cobra.CheckErr(viper.BindPFlag("workers", rootCmd.PersistentFlags().Lookup("workers")))
	cobra.CheckErr(viper.BindPFlag("cache.backend", rootCmd.PersistentFlags().Lookup("cache")))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".forgescan")
	}

	config.BindEnv(viper.GetViper())

	err := viper.ReadInConfig()
	if err != nil && cfgFile != "" {
		cobra.CheckErr(err)
	}

	if err == nil && verbose {
		newLogger().Debug("using config file", "path", viper.ConfigFileUsed())
	}
}
