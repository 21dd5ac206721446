package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"relief-grid-go/internal/archive"
	gridiodomain "relief-grid-go/internal/domain/gridio"
	"relief-grid-go/internal/seed"
)

var (
	seedFile     string
	importFile   string
	importFormat string
	exportFormat string
	exportOut    string
	exportBucket string
	exportObject string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, _, err := openApp()
		if err != nil {
			return err
		}
		defer closeApp(application)

		if err := application.Migrate(); err != nil {
			return err
		}
		log.Info("migrate: done")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load disaster areas and announcements from a YAML file",
	RunE:  runSeed,
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Create grids from a CSV or XLSX file",
	RunE:  runImport,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every grid to a CSV or XLSX file",
	Long: `Write every grid to a CSV or XLSX file.

The file goes to --out, to a Cloud Storage bucket when --gcs-bucket or
EXPORT_GCS_BUCKET is set, or to stdout otherwise.`,
	RunE: runExport,
}

var fixBoundsCmd = &cobra.Command{
	Use:   "fix-bounds",
	Short: "Recompute bounds of grids whose box does not match their center",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, _, err := openApp()
		if err != nil {
			return err
		}
		defer closeApp(application)

		fixed, err := application.Services().Grids.FixBounds(cmd.Context(), operator())
		if err != nil {
			return err
		}
		log.Info("fix-bounds: done", "fixed", fixed)
		fmt.Fprintf(cmd.OutOrStdout(), "fixed %d grids\n", fixed)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "seed YAML file")
	_ = seedCmd.MarkFlagRequired("file")

	importCmd.Flags().StringVar(&importFile, "file", "", "CSV or XLSX file")
	importCmd.Flags().StringVar(&importFormat, "format", "", "csv or xlsx (default from the file extension)")
	_ = importCmd.MarkFlagRequired("file")

	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "csv or xlsx")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file")
	exportCmd.Flags().StringVar(&exportBucket, "gcs-bucket", "", "Cloud Storage bucket (overrides EXPORT_GCS_BUCKET)")
	exportCmd.Flags().StringVar(&exportObject, "gcs-object", "", "object name inside the bucket")
}

func runSeed(cmd *cobra.Command, args []string) error {
	f, err := os.Open(seedFile)
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := seed.Decode(f)
	if err != nil {
		return fmt.Errorf("decode %s: %w", seedFile, err)
	}

	application, _, err := openApp()
	if err != nil {
		return err
	}
	defer closeApp(application)

	result, err := application.Seeder().Apply(cmd.Context(), operator(), data)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "areas: %d created, %d skipped; announcements: %d created, %d skipped\n",
		result.AreasCreated, result.AreasSkipped, result.AnnouncementsCreated, result.AnnouncementsSkipped)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	value := importFormat
	if value == "" {
		value = strings.TrimPrefix(filepath.Ext(importFile), ".")
	}
	format, err := gridiodomain.ParseFormat(value)
	if err != nil {
		return err
	}

	f, err := os.Open(importFile)
	if err != nil {
		return err
	}
	defer f.Close()

	records, err := gridiodomain.Decode(format, f)
	if err != nil {
		return fmt.Errorf("decode %s: %w", importFile, err)
	}

	application, _, err := openApp()
	if err != nil {
		return err
	}
	defer closeApp(application)

	result, err := application.Services().GridIO.Import(cmd.Context(), operator(), records)
	if err != nil {
		return err
	}
	log.Info("import: done", "file", importFile, "created", result.Created, "failed", result.Summary.Failed)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := gridiodomain.ParseFormat(exportFormat)
	if err != nil {
		return err
	}

	application, cfg, err := openApp()
	if err != nil {
		return err
	}
	defer closeApp(application)

	rows, err := application.Services().GridIO.Export(cmd.Context(), operator())
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := gridiodomain.Encode(format, &buf, rows); err != nil {
		return err
	}

	bucket := exportBucket
	if bucket == "" && exportOut == "" {
		bucket = cfg.Export.GCSBucket
	}

	switch {
	case exportOut != "":
		if err := os.WriteFile(exportOut, buf.Bytes(), 0o644); err != nil {
			return err
		}
		log.Info("export: written", "file", exportOut, "grids", len(rows))
	case bucket != "":
		uploader, err := archive.NewGCS(cmd.Context(), bucket)
		if err != nil {
			return err
		}
		defer uploader.Close()

		object := archive.ObjectName(exportObject, string(format), time.Now())
		if err := uploader.Upload(cmd.Context(), object, gridiodomain.ContentType(format), &buf); err != nil {
			return err
		}
		log.Info("export: uploaded", "bucket", bucket, "object", object, "grids", len(rows))
		fmt.Fprintf(cmd.OutOrStdout(), "gs://%s/%s\n", bucket, object)
	default:
		_, err = buf.WriteTo(cmd.OutOrStdout())
		return err
	}
	return nil
}
