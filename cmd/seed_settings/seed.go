package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// settingsRow fila de pos_api_settings.
type settingsRow struct {
	MerchantTin  string
	PosNo        string
	DistrictCode string
	BranchNo     string
	BillIDSuffix string
}

var requiredColumns = []string{"merchant_tin", "pos_no"}

// decoderFor decodificador para exportaciones antiguas; "" o utf-8 no transforma.
func decoderFor(name string) (*encoding.Decoder, error) {
	switch strings.ToLower(strings.ReplaceAll(name, "_", "-")) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "windows-1251", "cp1251":
		return charmap.Windows1251.NewDecoder(), nil
	case "koi8-r":
		return charmap.KOI8R.NewDecoder(), nil
	case "iso-8859-5":
		return charmap.ISO8859_5.NewDecoder(), nil
	}
	return nil, fmt.Errorf("codificación no soportada: %q", name)
}

// parseSettingsCSV lee el CSV con cabecera. Columnas: merchant_tin, pos_no,
// district_code, branch_no, bill_id_suffix (las dos primeras obligatorias).
// Un TIN repetido conserva la última fila.
func parseSettingsCSV(r io.Reader, enc string) ([]settingsRow, error) {
	dec, err := decoderFor(enc)
	if err != nil {
		return nil, err
	}
	if dec != nil {
		r = transform.NewReader(r, dec)
	}

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("CSV vacío")
		}
		return nil, fmt.Errorf("leer cabecera: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("falta la columna %s", col)
		}
	}

	field := func(rec []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	byTin := make(map[string]settingsRow)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		row := settingsRow{
			MerchantTin:  field(rec, "merchant_tin"),
			PosNo:        field(rec, "pos_no"),
			DistrictCode: field(rec, "district_code"),
			BranchNo:     field(rec, "branch_no"),
			BillIDSuffix: field(rec, "bill_id_suffix"),
		}
		if row.MerchantTin == "" && row.PosNo == "" {
			continue
		}
		if row.MerchantTin == "" || row.PosNo == "" {
			return nil, fmt.Errorf("línea %d: merchant_tin y pos_no son obligatorios", line)
		}
		if row.BillIDSuffix == "" {
			row.BillIDSuffix = "01"
		}
		byTin[row.MerchantTin] = row
	}

	rows := make([]settingsRow, 0, len(byTin))
	for _, r := range byTin {
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].MerchantTin < rows[j].MerchantTin })
	return rows, nil
}

// writeSeedUp INSERT idempotente de la configuración.
func writeSeedUp(w io.Writer, rows []settingsRow) error {
	var b strings.Builder
	b.WriteString("-- Configuración POS por contribuyente\n")
	b.WriteString("-- Generado por cmd/seed_settings\n\n")
	b.WriteString("INSERT INTO pos_api_settings (merchant_tin, pos_no, district_code, branch_no, bill_id_suffix) VALUES\n")
	for i, r := range rows {
		fmt.Fprintf(&b, "  ('%s', '%s', '%s', '%s', '%s')",
			escapeSQL(r.MerchantTin), escapeSQL(r.PosNo), escapeSQL(r.DistrictCode),
			escapeSQL(r.BranchNo), escapeSQL(r.BillIDSuffix))
		if i < len(rows)-1 {
			b.WriteString(",\n")
		} else {
			b.WriteString("\n")
		}
	}
	b.WriteString("ON CONFLICT (merchant_tin) DO UPDATE SET\n")
	b.WriteString("  pos_no = EXCLUDED.pos_no,\n")
	b.WriteString("  district_code = EXCLUDED.district_code,\n")
	b.WriteString("  branch_no = EXCLUDED.branch_no,\n")
	b.WriteString("  bill_id_suffix = EXCLUDED.bill_id_suffix,\n")
	b.WriteString("  updated_at = now();\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// writeSeedDown elimina las filas sembradas.
func writeSeedDown(w io.Writer, rows []settingsRow) error {
	tins := make([]string, len(rows))
	for i, r := range rows {
		tins[i] = "'" + escapeSQL(r.MerchantTin) + "'"
	}
	_, err := fmt.Fprintf(w, "DELETE FROM pos_api_settings WHERE merchant_tin IN (%s);\n", strings.Join(tins, ", "))
	return err
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
