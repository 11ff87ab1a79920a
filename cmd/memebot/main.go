/*
Meme Bot

2019 © Postgres.ai

Slash command bot for captioning imgflip.com meme templates.
*/

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"

	"gitlab.com/postgres-ai/database-lab/pkg/log"

	"gitlab.com/postgres-ai/memebot/pkg/bot"
	"gitlab.com/postgres-ai/memebot/pkg/config"
	"gitlab.com/postgres-ai/memebot/pkg/imgflip"
)

var opts struct {
	ConfigPath string `short:"c" long:"config" env:"CONFIG_PATH" default:"config/config.yml" description:"Path to the configuration file"`

	Host            string   `long:"host" description:"Listen host"`
	Port            uint     `short:"p" long:"port" description:"Listen port"`
	ImgflipUsername string   `short:"U" long:"imgflip-username" description:"imgflip.com username"`
	ImgflipPassword string   `short:"P" long:"imgflip-password" description:"imgflip.com password"`
	Tokens          []string `short:"T" long:"slash-command-token" description:"Accepted slash command token, may be repeated"`
	Debug           bool     `long:"debug" description:"Enable debug logging"`

	ListTemplates bool `long:"list-templates" description:"Print popular meme templates and exit"`
}

// Version defines the bot version.
const Version = "v0.1.0"

func main() {
	if _, err := flags.Parse(&opts); err != nil {
		if flags.WroteHelp(err) {
			return
		}

		log.Fatal("Args parse error:", err)
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		log.Fatal("Unable to load config:", err)
	}

	cfg.Override(config.Overrides{
		Host:            opts.Host,
		Port:            opts.Port,
		Debug:           opts.Debug,
		ImgflipUsername: opts.ImgflipUsername,
		ImgflipPassword: opts.ImgflipPassword,
		Tokens:          opts.Tokens,
	})

	cfg.App.Version = Version
	log.DEBUG = cfg.App.Debug

	client, err := imgflip.NewClient(cfg.Imgflip)
	if err != nil {
		log.Fatal("Unable to create an imgflip client:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if opts.ListTemplates {
		if err := listTemplates(ctx, client); err != nil {
			log.Fatal(err)
		}

		return
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid config:", err)
	}

	log.Dbg("Version:", Version)

	app := bot.NewApp(*cfg, client)
	if err := app.RunServer(ctx); err != nil {
		log.Fatal("HTTP server error:", err)
	}
}

func listTemplates(ctx context.Context, client *imgflip.Client) error {
	memes, err := client.GetMemes(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get meme templates")
	}

	if err := imgflip.WriteTemplates(os.Stdout, memes); err != nil {
		return errors.Wrap(err, "failed to print meme templates")
	}

	return nil
}
