package main

import (
	"fmt"
	"os"

	"github.com/andreyxaxa/PixelVault/config"
	"github.com/andreyxaxa/PixelVault/pkg/idcodec"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type cliConfig struct {
	Salt      string `env:"ID_CODEC_SALT"`
	MinLength int    `env:"ID_CODEC_MIN_LENGTH" envDefault:"6"`
	Alphabet  string `env:"ID_CODEC_ALPHABET"`

	Image config.Image
}

type commandContext struct {
	cfg *cliConfig

	saltFlag      string
	minLengthFlag int
}

func (c *commandContext) load(cmd *cobra.Command) error {
	if _, err := os.Stat(".env"); err == nil {
		if err = godotenv.Load(); err != nil {
			return fmt.Errorf("load .env: %w", err)
		}
	}

	cfg, err := env.ParseAs[cliConfig]()
	if err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}

	if c.saltFlag != "" {
		cfg.Salt = c.saltFlag
	}
	if cmd.Flags().Changed("min-length") {
		cfg.MinLength = c.minLengthFlag
	}

	c.cfg = &cfg

	return nil
}

func (c *commandContext) codec() (*idcodec.Codec, error) {
	opts := []idcodec.Option{idcodec.MinLength(c.cfg.MinLength)}
	if c.cfg.Alphabet != "" {
		opts = append(opts, idcodec.Alphabet(c.cfg.Alphabet))
	}

	codec, err := idcodec.New(c.cfg.Salt, opts...)
	if err != nil {
		return nil, fmt.Errorf("id codec (set ID_CODEC_SALT or --salt): %w", err)
	}

	return codec, nil
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "pvctl",
		Short:         "PixelVault operator tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return ctx.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&ctx.saltFlag, "salt", "", "Identifier salt (overrides ID_CODEC_SALT)")
	rootCmd.PersistentFlags().IntVar(&ctx.minLengthFlag, "min-length", 6, "Minimum public id length (overrides ID_CODEC_MIN_LENGTH)")

	rootCmd.AddCommand(newIDCommand(ctx))
	rootCmd.AddCommand(newDeriveCommand(ctx))

	return rootCmd
}
