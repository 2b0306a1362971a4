package main

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"salarythief/backend/internal/api/handler"
	"salarythief/backend/internal/chathub"
	"salarythief/backend/internal/config"
)

func newCmd(cfg *config.Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("SALARYTHIEF")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "salarythief",
		Short:         "Anonymous two-party chat server with reconnection grace.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return serve(cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.Bind, "bind", "b", cfg.Bind, "address to bind to (env: SALARYTHIEF_BIND)")
	fs.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on (env: SALARYTHIEF_PORT)")
	fs.DurationVar(&cfg.GraceWindow, "grace-window", cfg.GraceWindow, "reconnection window for a disconnected participant (env: SALARYTHIEF_GRACE_WINDOW)")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "secret used to sign anon-id tokens (env: SALARYTHIEF_JWT_SECRET)")
	fs.StringVar(&cfg.AllowedOrigin, "allowed-origin", cfg.AllowedOrigin, "origin allowed to open websockets (env: SALARYTHIEF_ALLOWED_ORIGIN)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	return cmd
}

func serve(cfg *config.Config) error {
	hub := chathub.NewHubService(cfg.GraceWindow, chathub.NewScheduler())
	go hub.Run()

	r := gin.Default()
	h := handler.NewHandler(hub, *cfg)

	r.GET("/anonid", h.GetAnonID)
	r.GET("/ws", h.ServeWebSocket)
	r.GET("/healthz", h.Healthz)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	log.Printf("Listening on %s (grace window %s)", cfg.Addr(), cfg.GraceWindow)
	return server.ListenAndServe()
}

func main() {
	log.Println("Starting Salary Thief Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	cfg := config.Default()
	cobra.CheckErr(newCmd(&cfg).Execute())
}
