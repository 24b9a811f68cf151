package importer

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/abhishek017/GradPilot/internal/graduate"
)

// The booking sheet uses this exact wording as the gown column header.
const gownPolicyColumn = "For uniformity and event standards, students must hire or purchase " +
	"an approved gown. Personal gowns are strictly prohibited."

// headerMap maps booking-sheet columns to record fields. Columns not
// listed here are ignored.
var headerMap = map[string]string{
	"Submission Date":          "submission_date",
	"Name":                     "name",
	"Email":                    "email",
	"Student ID":               "student_id",
	"Payment Status":           "payment_status",
	gownPolicyColumn:           "gown_option",
	"No. of additional Guests": "additional_guests",
	"Total Amount in AUD":      "total_amount",
	"Unique ID":                "unique_id",
	"Gown Size":                "gown_size",
	"Submission ID":            "submission_id",
}

// Date layouts tried in order; the sheet exports day-first.
var dateLayouts = []string{
	"2/1/2006 15:04",
	"2/1/2006",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Upserter is the slice of the record store the importer needs.
type Upserter interface {
	Upsert(ctx context.Context, g graduate.Graduate) (created bool, err error)
}

// Report summarizes an import run. Row-level problems never abort the
// run; they land in Warnings and the skip count.
type Report struct {
	Created  int
	Updated  int
	Skipped  int
	Warnings []string
}

// Run reads a header-row CSV and upserts one record per data row, keyed
// by Unique ID. The reader may start with a UTF-8 BOM.
func Run(ctx context.Context, src io.Reader, store Upserter, log *zap.Logger) (Report, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var rep Report

	reader := csv.NewReader(stripBOM(src))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return rep, fmt.Errorf("read header row: %w", err)
	}

	colIndex := make(map[string]int, len(headerMap)) // field name -> column index
	for i, col := range header {
		if field, ok := headerMap[strings.TrimSpace(col)]; ok {
			colIndex[field] = i
		}
	}
	var missing []string
	for col, field := range headerMap {
		if _, ok := colIndex[field]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		warn := fmt.Sprintf("expected columns not found in CSV: %v", missing)
		rep.Warnings = append(rep.Warnings, warn)
		log.Warn("importer header mismatch", zap.Strings("missing", missing))
	}

	for rowNum := 2; ; rowNum++ { // header is row 1
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			rep.Skipped++
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("row %d: %v - skipping", rowNum, err))
			continue
		}

		g, warns := parseRow(row, colIndex)
		for _, w := range warns {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("row %d: %s", rowNum, w))
		}
		if g.UniqueID == "" {
			rep.Skipped++
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("row %d: missing Unique ID - skipping", rowNum))
			continue
		}

		created, err := store.Upsert(ctx, g)
		if err != nil {
			return rep, fmt.Errorf("row %d: upsert %s: %w", rowNum, g.UniqueID, err)
		}
		if created {
			rep.Created++
		} else {
			rep.Updated++
		}
	}

	log.Info("import completed",
		zap.Int("created", rep.Created),
		zap.Int("updated", rep.Updated),
		zap.Int("skipped", rep.Skipped))
	return rep, nil
}

func parseRow(row []string, colIndex map[string]int) (graduate.Graduate, []string) {
	var g graduate.Graduate
	var warns []string

	cell := func(field string) (string, bool) {
		i, ok := colIndex[field]
		if !ok || i >= len(row) {
			return "", false
		}
		return strings.TrimSpace(row[i]), true
	}

	if v, ok := cell("submission_date"); ok {
		t, warn := parseDate(v)
		g.SubmissionDate = t
		if warn != "" {
			warns = append(warns, warn)
		}
	}
	if v, ok := cell("name"); ok {
		g.Name = v
	}
	if v, ok := cell("email"); ok {
		g.Email = v
	}
	if v, ok := cell("student_id"); ok {
		g.StudentID = v
	}
	if v, ok := cell("payment_status"); ok {
		g.PaymentStatus = v
	}
	if v, ok := cell("gown_option"); ok {
		g.GownOption = v
	}
	if v, ok := cell("additional_guests"); ok {
		n, warn := parseGuests(v)
		g.AdditionalGuests = n
		if warn != "" {
			warns = append(warns, warn)
		}
	}
	if v, ok := cell("total_amount"); ok {
		amt, warn := parseAmount(v)
		g.TotalAmount = amt
		if warn != "" {
			warns = append(warns, warn)
		}
	}
	if v, ok := cell("unique_id"); ok {
		g.UniqueID = v
	}
	if v, ok := cell("gown_size"); ok {
		g.GownSize = v
	}
	if v, ok := cell("submission_id"); ok {
		g.SubmissionID = v
	}
	return g, warns
}

func parseDate(s string) (*time.Time, string) {
	if s == "" {
		return nil, ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return &t, ""
		}
	}
	return nil, fmt.Sprintf("could not parse date %q, storing as empty", s)
}

func parseGuests(s string) (int, string) {
	if s == "" {
		return 0, ""
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Sprintf("could not parse guest count %q, using 0", s)
	}
	return n, ""
}

func parseAmount(s string) (decimal.Decimal, string) {
	if s == "" {
		return decimal.Zero, ""
	}
	cleaned := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(s, "$", ""), ",", ""))
	amt, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Sprintf("could not parse amount %q, using 0", s)
	}
	return amt, ""
}

// stripBOM drops a leading UTF-8 byte order mark; Excel exports carry one.
func stripBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if lead, err := br.Peek(3); err == nil && lead[0] == 0xEF && lead[1] == 0xBB && lead[2] == 0xBF {
		_, _ = br.Discard(3)
	}
	return br
}
