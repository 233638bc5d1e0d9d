package ebarimt

import (
	"strings"
	"unicode"
)

// BarcodeType estándar del código de barras reportado al POS API.
type BarcodeType string

const (
	BarcodeGS1       BarcodeType = "GS1"
	BarcodeISBN      BarcodeType = "ISBN"
	BarcodeUndefined BarcodeType = "UNDEFINED"
)

// ClassifyBarcode devuelve el estándar del código de barras validando su dígito
// de control. Acepta espacios (cualquier unicode.IsSpace) y guiones como separadores.
//
//	13 dígitos con prefijo 978/979 -> ISBN-13 (sin caer en GS1 si el control falla)
//	10 caracteres                  -> ISBN-10 (último puede ser 'X')
//	8, 12, 13 o 14 dígitos         -> GS1 (EAN-8, UPC-A, EAN-13, GTIN-14)
//
// Cualquier otra entrada es UNDEFINED; la función nunca falla.
func ClassifyBarcode(raw string) BarcodeType {
	if raw == "" {
		return BarcodeUndefined
	}
	code := cleanBarcode(raw)
	if code == "" {
		return BarcodeUndefined
	}

	// ISBN-10 puede terminar en X, se evalúa antes del filtro de dígitos.
	if len(code) == 10 {
		if ValidateISBN10(code) {
			return BarcodeISBN
		}
		return BarcodeUndefined
	}
	if !allDigits(code) {
		return BarcodeUndefined
	}

	if len(code) == 13 && (strings.HasPrefix(code, "978") || strings.HasPrefix(code, "979")) {
		if ValidateGS1CheckDigit(code) {
			return BarcodeISBN
		}
		return BarcodeUndefined
	}

	switch len(code) {
	case 8, 12, 13, 14:
		if ValidateGS1CheckDigit(code) {
			return BarcodeGS1
		}
	}
	return BarcodeUndefined
}

// ValidateGS1CheckDigit algoritmo módulo 10 de GS1: pesos 3,1,3,... desde el
// dígito anterior al de control, hacia la izquierda.
func ValidateGS1CheckDigit(code string) bool {
	if len(code) < 2 || !allDigits(code) {
		return false
	}
	return int(code[len(code)-1]-'0') == GS1CheckDigit(code[:len(code)-1])
}

// GS1CheckDigit calcula el dígito de control para el cuerpo (sin control) de un código GS1.
func GS1CheckDigit(body string) int {
	sum := 0
	for i := 0; i < len(body); i++ {
		d := int(body[len(body)-1-i] - '0')
		if i%2 == 0 {
			sum += d * 3
		} else {
			sum += d
		}
	}
	return (10 - sum%10) % 10
}

// ValidateISBN10 pesos 10..2 sobre los 9 primeros dígitos más el carácter de
// control (0-9 o X=10, solo mayúscula); la suma ponderada debe ser múltiplo de 11.
func ValidateISBN10(code string) bool {
	if len(code) != 10 {
		return false
	}
	sum := 0
	for i := 0; i < 9; i++ {
		c := code[i]
		if c < '0' || c > '9' {
			return false
		}
		sum += int(c-'0') * (10 - i)
	}
	switch c := code[9]; {
	case c == 'X':
		sum += 10
	case c >= '0' && c <= '9':
		sum += int(c - '0')
	default:
		return false
	}
	return sum%11 == 0
}

func cleanBarcode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '-' || unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
