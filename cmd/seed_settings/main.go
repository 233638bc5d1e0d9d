// seed_settings genera una migración SQL con la configuración POS (pos_api_settings)
// a partir de un CSV exportado del sistema anterior.
//
// Uso: go run ./cmd/seed_settings [ruta/settings.csv] [codificación]
// Por defecto lee settings.csv en UTF-8; acepta windows-1251, koi8-r e iso-8859-5.
// Escribe: internal/infrastructure/postgres/migrations/0002_seed_settings.{up,down}.sql
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

func main() {
	csvPath := "settings.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	enc := ""
	if len(os.Args) > 2 {
		enc = os.Args[2]
	}

	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	rows, err := parseSettingsCSV(f, enc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}
	if len(rows) == 0 {
		fmt.Fprintln(os.Stderr, "El CSV no contiene filas")
		os.Exit(1)
	}

	dir := filepath.Join(findModuleRoot(), "internal", "infrastructure", "postgres", "migrations")
	up := filepath.Join(dir, "0002_seed_settings.up.sql")
	down := filepath.Join(dir, "0002_seed_settings.down.sql")
	if err := writeFile(up, func(w io.Writer) error { return writeSeedUp(w, rows) }); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir %s: %v\n", up, err)
		os.Exit(1)
	}
	if err := writeFile(down, func(w io.Writer) error { return writeSeedDown(w, rows) }); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir %s: %v\n", down, err)
		os.Exit(1)
	}

	fmt.Printf("Generado %s: %d contribuyentes\n", up, len(rows))
}

func writeFile(path string, fn func(io.Writer) error) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
