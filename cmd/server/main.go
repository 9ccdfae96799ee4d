package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gorc/internal/api"
	"gorc/internal/directory"
	"gorc/internal/dispatcher"
	"gorc/internal/logger"
	"gorc/internal/server"
)

var (
	cfgFile  string
	addr     string
	httpAddr string
)

var rootCmd = &cobra.Command{
	Use:   "gorc-server",
	Short: "Run the gorc chat server",
	Long: `Starts the multi-room chat server: a TCP line-protocol listener
plus an optional HTTP/websocket gateway sharing the same room directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		lg := logger.New("gorc")
		dir := directory.New(lg.WithContext("directory"))
		disp := dispatcher.New(dir, lg.WithContext("dispatcher"))

		if httpAddr != "" {
			router := api.NewRouter(dir, disp, lg.WithContext("api"))
			go func() {
				if err := api.Serve(httpAddr, router); err != nil {
					lg.Printf("http gateway: %v", err)
				}
			}()
		}

		srv := server.New(addr, dir, disp, lg.WithContext("server"))
		defer dir.Shutdown()
		return srv.ListenAndServe()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./gorc.yaml)")
	rootCmd.Flags().StringVar(&addr, "addr", ":5050", "TCP listen address")
	rootCmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP/websocket gateway address (empty disables the gateway)")
}

// initConfig loads gorc.yaml and GORC_* env vars; explicit flags win.
// A missing config file is fine: env overrides apply either way.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("gorc")
		viper.SetConfigType("yaml")
	}
	viper.SetEnvPrefix("gorc")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
	}
	if v := viper.GetString("listen_addr"); v != "" && !rootCmd.Flags().Changed("addr") {
		addr = v
	}
	if viper.IsSet("http_addr") && !rootCmd.Flags().Changed("http-addr") {
		httpAddr = viper.GetString("http_addr")
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
