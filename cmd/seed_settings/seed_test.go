package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestParseSettingsCSV(t *testing.T) {
	in := "\ufeffmerchant_tin,pos_no,district_code,branch_no,bill_id_suffix\n" +
		"37900846788,10012345,3505,001,\n" +
		",,,,\n" +
		"5317878,POS-2,2601,,02\n" +
		"37900846788,10099999,3505,001,03\n"

	rows, err := parseSettingsCSV(strings.NewReader(in), "")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, settingsRow{MerchantTin: "37900846788", PosNo: "10099999", DistrictCode: "3505", BranchNo: "001", BillIDSuffix: "03"}, rows[0])
	assert.Equal(t, "5317878", rows[1].MerchantTin)
	assert.Equal(t, "02", rows[1].BillIDSuffix)
}

func TestParseSettingsCSV_SufijoPorDefecto(t *testing.T) {
	rows, err := parseSettingsCSV(strings.NewReader("pos_no,merchant_tin\nP1,123\n"), "utf-8")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "01", rows[0].BillIDSuffix)
	assert.Equal(t, "P1", rows[0].PosNo)
}

func TestParseSettingsCSV_Windows1251(t *testing.T) {
	raw, err := charmap.Windows1251.NewEncoder().String("merchant_tin,pos_no,branch_no\n123,Касс-1,001\n")
	require.NoError(t, err)

	rows, err := parseSettingsCSV(strings.NewReader(raw), "windows-1251")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Касс-1", rows[0].PosNo)
}

func TestParseSettingsCSV_Errores(t *testing.T) {
	_, err := parseSettingsCSV(strings.NewReader(""), "")
	assert.Error(t, err)

	_, err = parseSettingsCSV(strings.NewReader("merchant_tin\n123\n"), "")
	assert.EqualError(t, err, "falta la columna pos_no")

	_, err = parseSettingsCSV(strings.NewReader("merchant_tin,pos_no\n123,\n"), "")
	assert.EqualError(t, err, "línea 2: merchant_tin y pos_no son obligatorios")

	_, err = parseSettingsCSV(strings.NewReader("merchant_tin,pos_no\n"), "ebcdic")
	assert.Error(t, err)
}

func TestWriteSeed(t *testing.T) {
	rows := []settingsRow{
		{MerchantTin: "123", PosNo: "O'Hara", DistrictCode: "3505", BranchNo: "001", BillIDSuffix: "01"},
		{MerchantTin: "456", PosNo: "P2", BillIDSuffix: "02"},
	}

	var up bytes.Buffer
	require.NoError(t, writeSeedUp(&up, rows))
	sql := up.String()
	assert.Contains(t, sql, "('123', 'O''Hara', '3505', '001', '01'),\n")
	assert.Contains(t, sql, "('456', 'P2', '', '', '02')\nON CONFLICT (merchant_tin) DO UPDATE SET")

	var down bytes.Buffer
	require.NoError(t, writeSeedDown(&down, rows))
	assert.Equal(t, "DELETE FROM pos_api_settings WHERE merchant_tin IN ('123', '456');\n", down.String())
}
