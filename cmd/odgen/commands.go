package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/od-mailer/internal/application"
	"github.com/example/od-mailer/internal/roster"
)

func newComputeCommand(opts *rootOptions) *cobra.Command {
	var (
		file   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute missed lectures for a roster and print the OD mail",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, err := readParams(file)
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(a *app) error {
				result, err := a.service.Compute(cmd.Context(), params)
				if err != nil {
					return describe(err)
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), result)
				}
				return printMail(cmd.OutOrStdout(), result)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Roster workbook (.xlsx) or request document (.json)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full result as JSON")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newReportCommand(opts *rootOptions) *cobra.Command {
	var file, out string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compute a roster and write the xlsx report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, err := readParams(file)
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(a *app) error {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				result, err := a.service.Report(cmd.Context(), params, f)
				if cerr := f.Close(); err == nil {
					err = cerr
				}
				if err != nil {
					_ = os.Remove(out)
					return describe(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "report %s written to %s\n", result.RunID, out)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Roster workbook (.xlsx) or request document (.json)")
	cmd.Flags().StringVarP(&out, "out", "o", "od-report.xlsx", "Destination of the report")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newTimetableCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timetable",
		Short: "Inspect or import timetable data",
	}

	var asJSON bool
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the merged timetable and where it came from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(a *app) error {
				view, err := a.service.Timetable(cmd.Context())
				if err != nil {
					return describe(err)
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), view)
				}
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "fingerprint: %s\n", view.Fingerprint)
				fmt.Fprintf(w, "sources:     %s\n", strings.Join(view.Loaded, ", "))
				fmt.Fprintf(w, "programs: %d  sections: %d  courses: %d  labs: %d\n",
					view.Stats.Programs, view.Stats.Sections, view.Stats.Courses, view.Stats.Labs)
				for _, failure := range view.Failures {
					fmt.Fprintf(w, "unavailable: %s (%s)\n", failure.Source, failure.Message)
				}
				return nil
			})
		},
	}
	show.Flags().BoolVar(&asJSON, "json", false, "Print the timetable document as JSON")

	var file, source, dsn string
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Store a timetable document in the SQLite source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dsn != "" {
				opts.cfg.SQLiteDSN = dsn
			}
			if opts.cfg.SQLiteDSN == "" {
				return errors.New("no timetable store configured: set OD_TIMETABLE_SQLITE_DSN or --dsn")
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			if source == "" {
				source = filepath.Base(file)
			}
			return opts.withApp(cmd, func(a *app) error {
				result, err := a.service.Import(cmd.Context(), application.ImportParams{Source: source, Data: data})
				if err != nil {
					return describe(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d rows from %s (%s shape, fingerprint %s)\n",
					result.Record.RowCount, result.Record.Source, result.Stats.Shape, result.Record.Fingerprint)
				return nil
			})
		},
	}
	importCmd.Flags().StringVarP(&file, "file", "f", "", "Timetable document (.json)")
	importCmd.Flags().StringVar(&source, "source", "", "Name recorded for the import (defaults to the file name)")
	importCmd.Flags().StringVar(&dsn, "dsn", "", "SQLite DSN (overrides OD_TIMETABLE_SQLITE_DSN)")
	_ = importCmd.MarkFlagRequired("file")

	cmd.AddCommand(show, importCmd)
	return cmd
}

func newTemplateCommand() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write a blank roster workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			err = roster.WriteTemplate(f, roster.EventMetadata{}, roster.SampleStudents())
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "template written to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "od-template.xlsx", "Destination of the template")
	return cmd
}

// readParams accepts either an uploaded workbook or a JSON request document.
func readParams(path string) (application.ComputeParams, error) {
	f, err := os.Open(path)
	if err != nil {
		return application.ComputeParams{}, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		var params application.ComputeParams
		if err := json.NewDecoder(f).Decode(&params); err != nil {
			return application.ComputeParams{}, fmt.Errorf("decode %s: %w", path, err)
		}
		return params, nil
	}

	upload, err := roster.ReadWorkbook(f)
	if err != nil {
		return application.ComputeParams{}, fmt.Errorf("read %s: %w", path, err)
	}
	return application.ComputeParams{Event: upload.Event, Students: upload.Students}, nil
}

// describe expands validation failures into one line per field.
func describe(err error) error {
	var verr *application.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	lines := []string{"invalid request:"}
	for _, field := range slices.Sorted(maps.Keys(verr.FieldErrors)) {
		lines = append(lines, fmt.Sprintf("  %s: %s", field, verr.FieldErrors[field]))
	}
	return errors.New(strings.Join(lines, "\n"))
}

func printMail(w io.Writer, result application.ComputeResult) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Subject: %s\n\n%s\n", result.Email.Subject, result.Email.Body)
	if len(result.Warnings) > 0 {
		b.WriteString("\nWarnings:\n")
		for _, warning := range result.Warnings {
			fmt.Fprintf(&b, "- %s\n", warning)
		}
	}
	if result.Email.GmailTooLong {
		b.WriteString("\nThe mail is too long for a Gmail compose link; copy the body instead.\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
