// Package repository define las interfaces de repositorio de dominio.
//
// Estas interfaces representan contratos de negocio, independientes del
// almacenamiento subyacente (PostgreSQL, memoria).
//
// Las implementaciones concretas viven en internal/store/.
//
// Convenciones:
//   - Context siempre es el primer parámetro
//   - Email se persiste ya normalizado (trim + lowercase); los callers
//     normalizan antes de cualquier lookup o write
//   - Errores de dominio están en errors.go
package repository
