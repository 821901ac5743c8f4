package legacy

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"dispatch-ledger/internal/models"

	"github.com/goccy/go-json"
)

var (
	ErrMalformed          = errors.New("malformed legacy data")
	ErrUnsupportedVersion = errors.New("unsupported legacy version")
)

// Payload versions. A bare JSON array is always version 1.
const (
	VersionFlat  = 1 // one transformer per record: serial/kva on the record itself
	VersionItems = 2 // the current shape with items[]
)

// FlatRecord is the version 1 shape, after its field names have been resolved.
type FlatRecord struct {
	ID           string
	Date         string
	Supplier     string
	GSTNumber    string
	DCNumber     string
	Manufacturer string
	Remarks      string
	Serial       string
	KVA          float64

	// Kept only in remarks after migration.
	InvoiceNo    string
	Contact      string
	VoltageClass string
	Warranty     string
	SalePrice    string
}

type fieldRule struct {
	sources []string
	assign  func(r *FlatRecord, v string)
}

// flatRules lists, per field, the legacy names in precedence order.
// The first one holding a non-blank value wins.
var flatRules = []fieldRule{
	{[]string{"id"}, func(r *FlatRecord, v string) { r.ID = v }},
	{[]string{"date", "saleDate"}, func(r *FlatRecord, v string) { r.Date = v }},
	{[]string{"supplier", "customer"}, func(r *FlatRecord, v string) { r.Supplier = v }},
	{[]string{"gstNumber", "gst", "gstNo"}, func(r *FlatRecord, v string) { r.GSTNumber = v }},
	{[]string{"dcNumber", "dcNo", "dc"}, func(r *FlatRecord, v string) { r.DCNumber = v }},
	{[]string{"manufacturer"}, func(r *FlatRecord, v string) { r.Manufacturer = v }},
	{[]string{"remarks", "notes"}, func(r *FlatRecord, v string) { r.Remarks = v }},
	{[]string{"serialNumber", "serial"}, func(r *FlatRecord, v string) { r.Serial = v }},
	{[]string{"invoiceNo", "invoiceNumber"}, func(r *FlatRecord, v string) { r.InvoiceNo = v }},
	{[]string{"contact"}, func(r *FlatRecord, v string) { r.Contact = v }},
	{[]string{"voltageClass"}, func(r *FlatRecord, v string) { r.VoltageClass = v }},
	{[]string{"warranty"}, func(r *FlatRecord, v string) { r.Warranty = v }},
	{[]string{"salePrice"}, func(r *FlatRecord, v string) { r.SalePrice = v }},
}

var kvaSources = []string{"kva", "kvaRating"}

type envelope struct {
	Version int             `json:"version"`
	Records json.RawMessage `json:"records"`
}

// Parse decodes a legacy payload into current-shape records. Records keep
// whatever id they had (possibly blank) and are not validated here.
func Parse(data []byte) ([]models.SaleRecord, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrMalformed)
	}

	switch data[0] {
	case '[':
		return parseFlat(data)
	case '{':
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		switch env.Version {
		case VersionFlat:
			return parseFlat(env.Records)
		case VersionItems:
			return parseItems(env.Records)
		default:
			return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
		}
	default:
		return nil, fmt.Errorf("%w: expected a JSON array or object", ErrMalformed)
	}
}

func parseFlat(data []byte) ([]models.SaleRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	out := make([]models.SaleRecord, 0, len(raw))
	for _, entry := range raw {
		out = append(out, ResolveFlat(entry).SaleRecord())
	}
	return out, nil
}

// itemsRecord is a version 2 record before its numbers are normalized.
type itemsRecord struct {
	ID           any              `json:"id"`
	Date         string           `json:"date"`
	Supplier     string           `json:"supplier"`
	GSTNumber    string           `json:"gstNumber"`
	DCNumber     string           `json:"dcNumber"`
	Manufacturer string           `json:"manufacturer"`
	Items        []map[string]any `json:"items"`
	Remarks      string           `json:"remarks"`
}

func parseItems(data []byte) ([]models.SaleRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw []itemsRecord
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	out := make([]models.SaleRecord, 0, len(raw))
	for _, r := range raw {
		items := make([]models.SaleItem, 0, len(r.Items))
		for _, it := range r.Items {
			items = append(items, models.SaleItem{
				SerialNumber: stringValue(it["serialNumber"]),
				KVA:          ParseKVA(it["kva"]),
			})
		}
		out = append(out, models.SaleRecord{
			ID:           stringValue(r.ID),
			Date:         r.Date,
			Supplier:     r.Supplier,
			GSTNumber:    r.GSTNumber,
			DCNumber:     r.DCNumber,
			Manufacturer: r.Manufacturer,
			Items:        items,
			Remarks:      r.Remarks,
		})
	}
	return out, nil
}

// ResolveFlat applies the field precedence rules to one raw version 1 entry.
func ResolveFlat(entry map[string]any) FlatRecord {
	var r FlatRecord
	for _, rule := range flatRules {
		for _, name := range rule.sources {
			if v := stringValue(entry[name]); v != "" {
				rule.assign(&r, v)
				break
			}
		}
	}
	for _, name := range kvaSources {
		if v, ok := entry[name]; ok && stringValue(v) != "" {
			r.KVA = ParseKVA(v)
			break
		}
	}
	return r
}

// SaleRecord maps the flat shape to the current one: the single serial/kva
// pair becomes items[0] (no items when the serial is blank), and fields the
// current shape has no place for are appended to remarks.
func (f FlatRecord) SaleRecord() models.SaleRecord {
	rec := models.SaleRecord{
		ID:           f.ID,
		Date:         f.Date,
		Supplier:     f.Supplier,
		GSTNumber:    f.GSTNumber,
		DCNumber:     f.DCNumber,
		Manufacturer: f.Manufacturer,
		Items:        []models.SaleItem{},
	}
	if f.Serial != "" {
		rec.Items = []models.SaleItem{{SerialNumber: f.Serial, KVA: f.KVA}}
	}

	lines := []string{}
	if f.Remarks != "" {
		lines = append(lines, f.Remarks)
	}
	for _, extra := range []struct{ label, value string }{
		{"Invoice No", f.InvoiceNo},
		{"Contact", f.Contact},
		{"Voltage Class", f.VoltageClass},
		{"Warranty", f.Warranty},
		{"Sale Price", f.SalePrice},
	} {
		if extra.value != "" {
			lines = append(lines, extra.label+": "+extra.value)
		}
	}
	rec.Remarks = strings.Join(lines, "\n")
	return rec
}

// ParseKVA turns a legacy kva value (number or numeric string) into a float.
// Anything unparseable is 0.
func ParseKVA(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		s := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(x)), "kva")
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

func stringValue(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return ""
}
