package main

import (
	"log"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var configFile string
var quiet bool
var verbose bool

func init() {
	cobra.OnInitialize(func() {
		if err := initConfig(); err != nil {
			log.Fatal(err)
		}
		postInitCommands(rootCmd.Commands(), newLogger(rootCmd))
	})

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $HOME/.reasonchart.yaml)")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "quiet all log output")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "provide verbose output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

var rootCmd = &cobra.Command{
	Use:           "reasonchart",
	Short:         "Render the most frequent request reasons as a horizontal bar chart with wrapped labels.",
	SilenceErrors: true,
}

// initConfig 读取配置文件与 REASONCHART_* 环境变量。
// 默认的 $HOME/.reasonchart.yaml 可以不存在；--config 指定的文件必须能读到。
func initConfig() error {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return errors.Wrap(err, "finding home directory")
		}

		viper.AddConfigPath(home)
		viper.SetConfigName(".reasonchart")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("REASONCHART")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && configFile == "" {
			return nil
		}
		return errors.Wrapf(err, "reading config file '%s'", viper.ConfigFileUsed())
	}
	return nil
}

func postInitCommands(commands []*cobra.Command, l logrus.FieldLogger) {
	for _, cmd := range commands {
		presetRequiredFlags(cmd, l)
		if cmd.HasSubCommands() {
			postInitCommands(cmd.Commands(), l)
		}
	}
}

// presetRequiredFlags 用配置或环境变量填充命令行未给出的参数；取值无效时只告警。
func presetRequiredFlags(cmd *cobra.Command, l logrus.FieldLogger) {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		l.WithError(err).WithField("command", cmd.Name()).Warn("binding flags to config")
	}
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if cmd.Flags().Changed(f.Name) || !viper.IsSet(f.Name) {
			return
		}
		val := viper.GetString(f.Name)
		if val == "" {
			return
		}
		if err := cmd.Flags().Set(f.Name, val); err != nil {
			l.WithError(err).WithFields(logrus.Fields{
				"command": cmd.Name(),
				"flag":    f.Name,
				"value":   val,
			}).Warn("ignoring config value")
		}
	})
}

// newLogger 按 --verbose/--quiet 决定日志级别，日志写到 stderr，不混入标准输出。
func newLogger(cmd *cobra.Command) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(cmd.ErrOrStderr())
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	switch {
	case quiet:
		l.SetLevel(logrus.ErrorLevel)
	case verbose:
		l.SetLevel(logrus.DebugLevel)
	default:
		l.SetLevel(logrus.InfoLevel)
	}
	return l
}
