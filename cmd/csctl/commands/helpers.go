package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/central-storage/csclient/internal/constants"
	"github.com/central-storage/csclient/pkg/csapi"
)

// Common string constants used throughout the commands package.
const (
	NotAvailable = "N/A"

	// Output formats.
	OutputFormatJSON  = "json"
	OutputFormatYAML  = "yaml"
	OutputFormatTable = "table"
)

// Common static errors used throughout the commands package.
var (
	ErrEmptyIDList      = errors.New("at least one ID is required")
	ErrTargetRequired   = errors.New("target storage is required, use --to")
	ErrPurgeIncomplete  = errors.New("purge did not complete")
	ErrBatchFailures    = errors.New("some operations failed")
	ErrUnknownConfigKey = errors.New("unknown configuration key")
	ErrNoConfigPath     = errors.New("cannot determine config file location")
	ErrUsernameRequired = errors.New("username is required")
)

// Title capitalizes a resource name for table headings and summaries.
func Title(s string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(s, "_", " "))
}

// StandardJSONRenderer writes data as indented JSON.
func StandardJSONRenderer[T any](w io.Writer, data T) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to JSON: %w", err)
	}

	return nil
}

// StandardYAMLRenderer writes data as YAML.
func StandardYAMLRenderer[T any](w io.Writer, data T) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(constants.JSONIndentSize)

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to YAML: %w", err)
	}

	return encoder.Close()
}

// renderOutput picks the renderer selected by --output. table is called for the default format.
func renderOutput[T any](w io.Writer, data T, table func() error) error {
	switch output := viper.GetString("output"); output {
	case OutputFormatJSON:
		return StandardJSONRenderer(w, data)
	case OutputFormatYAML:
		return StandardYAMLRenderer(w, data)
	case OutputFormatTable, "":
		return table()
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnsupportedOutputFmt, output)
	}
}

// renderTable renders rows under header. An empty result prints "No <plural> found".
func renderTable(w io.Writer, plural string, header []string, rows [][]string) error {
	if len(rows) == 0 {
		_, _ = fmt.Fprintf(w, "No %s found\n", plural)

		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header(cells(header)...)

	for _, row := range rows {
		_ = table.Append(cells(row)...)
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func cells(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}

	return out
}

// renderProperties renders a two-column Property/Value table.
func renderProperties(w io.Writer, rows [][]string) error {
	return renderTable(w, "properties", []string{"Property", "Value"}, rows)
}

func pageHint(w io.Writer, pagination csapi.Pagination, allPages bool) {
	if !allPages && pagination.TotalPages > 1 {
		_, _ = fmt.Fprintf(w, "\nShowing page %d of %d. Use --all to fetch all pages.\n", pagination.Page, pagination.TotalPages)
	}
}

// parseID parses a positive resource ID argument.
func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", constants.ErrInvalidID, arg)
	}

	return id, nil
}

// parseIDs parses every argument as a resource ID.
func parseIDs(args []string) ([]int, error) {
	if len(args) == 0 {
		return nil, ErrEmptyIDList
	}

	ids := make([]int, 0, len(args))

	for _, arg := range args {
		id, err := parseID(arg)
		if err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	return ids, nil
}

// parseQuantityUpdates parses ITEM_ID=QUANTITY arguments.
func parseQuantityUpdates(args []string) ([]csapi.QuantityUpdate, error) {
	if len(args) == 0 {
		return nil, ErrEmptyIDList
	}

	updates := make([]csapi.QuantityUpdate, 0, len(args))

	for _, arg := range args {
		idPart, qtyPart, found := strings.Cut(arg, "=")
		if !found {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidQuantityArg, arg)
		}

		id, err := parseID(idPart)
		if err != nil {
			return nil, err
		}

		quantity, err := strconv.Atoi(strings.TrimSpace(qtyPart))
		if err != nil || quantity < 0 {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidQuantityArg, arg)
		}

		updates = append(updates, csapi.QuantityUpdate{ItemID: id, Quantity: quantity})
	}

	return updates, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return NotAvailable
	}

	return t.Format(constants.DateFormat)
}

func formatOptionalDate(d *csapi.Date) string {
	if d == nil || d.IsZero() {
		return NotAvailable
	}

	return d.String()
}

func orNotAvailable(s string) string {
	if s == "" {
		return NotAvailable
	}

	return s
}

// progressPrinter writes batch progress lines to the command's stderr.
func progressPrinter(cmd *cobra.Command) csapi.ProgressFunc {
	return func(p csapi.Progress) {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", Title(p.Operation), p)
	}
}

// renderBatchFailures prints failures and returns ErrBatchFailures when there are any.
func renderBatchFailures(w io.Writer, operation string, succeeded int, failures []csapi.BatchFailure) error {
	_, _ = fmt.Fprintf(w, "%s: %d succeeded, %d failed\n", Title(operation), succeeded, len(failures))

	if len(failures) == 0 {
		return nil
	}

	rows := make([][]string, 0, len(failures))
	for _, failure := range failures {
		id := NotAvailable
		if failure.ID != 0 {
			id = strconv.Itoa(failure.ID)
		}

		rows = append(rows, []string{strconv.Itoa(failure.Index), id, failure.Err.Error()})
	}

	err := renderTable(w, "failures", []string{"#", "ID", "Error"}, rows)
	if err != nil {
		return err
	}

	return fmt.Errorf("%w: %d of %d", ErrBatchFailures, len(failures), succeeded+len(failures))
}
