package entity

import "fmt"

// SequenceKind prefijo de los consecutivos legibles. Cada uno lleva un contador por año.
type SequenceKind string

const (
	SequenceMovement     SequenceKind = "SM"
	SequenceTransfer     SequenceKind = "TR"
	SequenceSalesOrder   SequenceKind = "SO"
	SequenceServiceOrder SequenceKind = "JOB"
)

// FormatSequence arma el consecutivo <PREFIJO>-<año>-<6 dígitos>, p. ej. SM-2026-000001.
func FormatSequence(kind SequenceKind, year int, n int64) string {
	return fmt.Sprintf("%s-%d-%06d", kind, year, n)
}
