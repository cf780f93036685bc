// Package billimport pulls meter readings and charges out of the HTML bill
// pages the distribution company publishes.
package billimport

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var ErrNoFields = errors.New("no bill fields found in document")

const (
	FieldKWh         = "kwh"
	FieldKVAh        = "kvah"
	FieldRMD         = "rmd"
	FieldBillAmount  = "bill_amount"
	FieldBillPeriod  = "bill_period"
	FieldReadingDate = "reading_date"
)

// Candidate selectors per field, tried in order. Layouts vary between bill
// templates, so data attributes come first, then class and id conventions.
var candidates = map[string][]string{
	FieldKWh:         {`[data-field="kwh"]`, `[data-kwh]`, `.kwh`, `#kwh`, `.units-consumed`, `#unitsConsumed`},
	FieldKVAh:        {`[data-field="kvah"]`, `[data-kvah]`, `.kvah`, `#kvah`},
	FieldRMD:         {`[data-field="rmd"]`, `[data-rmd]`, `.rmd`, `#rmd`, `.recorded-max-demand`, `#recordedMaxDemand`},
	FieldBillAmount:  {`[data-field="bill_amount"]`, `[data-bill-amount]`, `.bill-amount`, `#billAmount`, `.total-amount`, `#totalAmount`, `.net-amount`},
	FieldBillPeriod:  {`[data-field="bill_period"]`, `[data-bill-period]`, `.bill-period`, `#billPeriod`, `.billing-month`},
	FieldReadingDate: {`[data-field="reading_date"]`, `[data-reading-date]`, `.reading-date`, `#readingDate`, `.bill-date`, `#billDate`},
}

var fieldOrder = []string{FieldKWh, FieldKVAh, FieldRMD, FieldBillAmount, FieldBillPeriod, FieldReadingDate}

var numberPattern = regexp.MustCompile(`-?\d[\d,]*(?:\.\d+)?`)

var dateLayouts = []string{"2006-01-02", "02-01-2006", "02/01/2006", "02.01.2006", "2 Jan 2006", "02 Jan 2006", "Jan 2, 2006"}

type Bill struct {
	KWh         *float64
	KVAh        *float64
	RMD         *float64
	BillAmount  *float64
	BillPeriod  string
	ReadingDate string
	Matched     []string
}

// Parse reads an HTML document and returns whatever bill fields it recognises.
// A document with none of them yields ErrNoFields.
func Parse(r io.Reader) (Bill, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Bill{}, fmt.Errorf("parse bill html: %w", err)
	}

	var bill Bill
	for _, field := range fieldOrder {
		raw, ok := lookup(doc, field)
		if !ok {
			continue
		}
		switch field {
		case FieldBillPeriod:
			bill.BillPeriod = raw
		case FieldReadingDate:
			day, ok := parseDate(raw)
			if !ok {
				continue
			}
			bill.ReadingDate = day
		default:
			value, ok := parseNumber(raw)
			if !ok {
				continue
			}
			switch field {
			case FieldKWh:
				bill.KWh = &value
			case FieldKVAh:
				bill.KVAh = &value
			case FieldRMD:
				bill.RMD = &value
			case FieldBillAmount:
				bill.BillAmount = &value
			}
		}
		bill.Matched = append(bill.Matched, field)
	}

	if len(bill.Matched) == 0 {
		return Bill{}, ErrNoFields
	}
	return bill, nil
}

func lookup(doc *goquery.Document, field string) (string, bool) {
	for _, selector := range candidates[field] {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		for _, attr := range []string{"data-value", "value", "content"} {
			if value, ok := sel.Attr(attr); ok && strings.TrimSpace(value) != "" {
				return strings.TrimSpace(value), true
			}
		}
		if text := strings.TrimSpace(sel.Text()); text != "" {
			return strings.Join(strings.Fields(text), " "), true
		}
	}
	return "", false
}

func parseNumber(raw string) (float64, bool) {
	match := numberPattern.FindString(raw)
	if match == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil || value < 0 {
		return 0, false
	}
	return value, true
}

func parseDate(raw string) (string, bool) {
	for _, layout := range dateLayouts {
		if day, err := time.Parse(layout, raw); err == nil {
			return day.Format("2006-01-02"), true
		}
	}
	return "", false
}
