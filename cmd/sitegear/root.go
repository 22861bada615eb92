package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// envPrefix prefixes the environment variables bound to flags.
const envPrefix = "SITEGEAR"

// newRootCmd builds the command tree. Every command shares one viper
// instance; flag values take precedence over SITEGEAR_* variables.
func newRootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:           "sitegear",
		Short:         "Serve and maintain a Sitegear site",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindFlags(v, cmd.Flags())
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("site", ".", "site directory holding config/, templates/ and public/")
	flags.String("env", "", "environment name selecting config/site.<env>.* overlays")
	flags.String("log-level", "", "log level (debug, info, warn, error); overrides logging.level")

	cmd.AddCommand(
		newServeCmd(v),
		newMigrateCmd(v),
		newConfigCmd(v),
		newNewsCmd(v),
	)
	return cmd
}

// bindFlags binds every flag of the running command and reads SITEGEAR_*
// variables, "log-level" becoming SITEGEAR_LOG_LEVEL.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v.BindPFlags(flags)
}
