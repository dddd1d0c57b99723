package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ginjaninja78/sales-analytics/internal/pipeline"
	"github.com/ginjaninja78/sales-analytics/internal/report"
	"github.com/ginjaninja78/sales-analytics/internal/validation"
)

// promptFilters returns a chooser that shows the filter options on out and
// reads the answers from in. A closed input means no filters.
func promptFilters(in io.Reader, out io.Writer, currency string) pipeline.FilterChooser {
	return func(_ context.Context, options validation.Options) (validation.Filters, error) {
		reader := bufio.NewReader(in)

		regions := strings.Join(options.Regions, ", ")
		if regions == "" {
			regions = "<none>"
		}
		fmt.Fprintf(out, "Regions: %s\n", regions)
		fmt.Fprintf(out, "Amount Range: %s - %s\n",
			report.FormatMoney(options.MinAmount, currency),
			report.FormatMoney(options.MaxAmount, currency))

		var filters validation.Filters

		choice, err := ask(reader, out, "Do you want to filter data? (y/n): ")
		if err != nil {
			return filters, err
		}
		if strings.ToLower(choice) != "y" {
			fmt.Fprintln(out, "Proceeding without filters...")
			return filters, nil
		}

		if filters.Region, err = ask(reader, out, "Region (blank = none): "); err != nil {
			return filters, err
		}

		answer, err := ask(reader, out, "Min amount (blank = none): ")
		if err != nil {
			return filters, err
		}
		filters.MinAmount = parseAmount(answer)

		if answer, err = ask(reader, out, "Max amount (blank = none): "); err != nil {
			return filters, err
		}
		filters.MaxAmount = parseAmount(answer)

		return filters, nil
	}
}

// ask prints question and returns the trimmed answer. Reaching the end of
// the input returns whatever was typed so far.
func ask(reader *bufio.Reader, out io.Writer, question string) (string, error) {
	fmt.Fprint(out, question)
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// parseAmount returns nil for a blank or unparsable answer.
func parseAmount(answer string) *float64 {
	if answer == "" {
		return nil
	}
	f, err := strconv.ParseFloat(answer, 64)
	if err != nil {
		return nil
	}
	return &f
}
