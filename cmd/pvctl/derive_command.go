package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/andreyxaxa/PixelVault/internal/entity"
	"github.com/andreyxaxa/PixelVault/internal/infrastructure/mediatype"
	"github.com/andreyxaxa/PixelVault/internal/infrastructure/processor"
	"github.com/andreyxaxa/PixelVault/internal/usecase/derivative"
	"github.com/spf13/cobra"
)

type derivedFile struct {
	name string
	data []byte
}

func newDeriveCommand(ctx *commandContext) *cobra.Command {
	var (
		outDir  string
		presets []string
		format  string
	)

	cmd := &cobra.Command{
		Use:   "derive <file>",
		Short: "Run the derivative pipeline on a local image",
		Long: `Run the derivative pipeline on a local image.

Writes thumbnail.webp and full.webp to the output directory, plus one
download rendition per --preset, and prints the placeholder hash.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			dl := entity.Format(strings.ToLower(format))
			if dl == "jpg" {
				dl = entity.FormatJPEG
			}

			img := ctx.cfg.Image
			gen := derivative.New(
				processor.New(),
				derivative.ThumbnailSize(img.ThumbnailSize),
				derivative.ThumbnailQuality(img.ThumbnailQuality),
				derivative.FullQuality(img.FullQuality),
				derivative.FullMaxDim(img.FullMaxDim),
				derivative.PlaceholderGrid(img.PlaceholderGrid),
				derivative.PlaceholderComponents(img.PlaceholderComponentX, img.PlaceholderComponentY),
			)

			processed, err := gen.Ingest(cmd.Context(), data)
			if err != nil {
				return fmt.Errorf("derive %s: %w", args[0], err)
			}

			files := []derivedFile{
				{name: "thumbnail.webp", data: processed.Thumbnail},
				{name: "full.webp", data: processed.Full},
			}

			for _, name := range presets {
				preset, ok := entity.LookupPreset(name)
				if !ok {
					return fmt.Errorf("unknown preset %q", name)
				}

				out, err := gen.ResizeLossless(data, preset.Width, preset.Height, dl)
				if err != nil {
					return fmt.Errorf("render %s: %w", preset, err)
				}

				files = append(files, derivedFile{
					name: "download-" + preset.Name + mediatype.Extension(dl.MIMEType()),
					data: out,
				})
			}

			if err = os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", outDir, err)
			}

			rows := [][]string{{
				"original",
				processed.OriginalMimeType,
				strconv.FormatInt(processed.OriginalSizeBytes, 10),
				fmt.Sprintf("%dx%d", processed.Width, processed.Height),
				args[0],
			}}

			for _, f := range files {
				path := filepath.Join(outDir, f.name)
				if err = os.WriteFile(path, f.data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}

				info, err := gen.Inspect(f.data)
				if err != nil {
					return fmt.Errorf("inspect %s: %w", path, err)
				}

				rows = append(rows, []string{
					strings.TrimSuffix(f.name, filepath.Ext(f.name)),
					info.MIMEType,
					strconv.Itoa(len(f.data)),
					fmt.Sprintf("%dx%d", info.Width, info.Height),
					path,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Rendition", "Type", "Bytes", "Size", "File"}, rows, 2))
			fmt.Fprintf(out, "Placeholder: %s\n", processed.PlaceholderHash)

			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "output", "o", ".", "Output directory")
	cmd.Flags().StringSliceVarP(&presets, "preset", "p", nil, "Download presets to render (16x9, 9x16, 1x1, 4x3)")
	cmd.Flags().StringVar(&format, "format", string(entity.FormatPNG), "Download format (png or jpeg)")

	return cmd
}
