// Package migrations embebe las migraciones SQL del esquema.
package migrations

import "embed"

// FS contiene las migraciones *_up.sql y *_down.sql en orden.
//
//go:embed *.sql
var FS embed.FS
