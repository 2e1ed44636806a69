package cycle

import (
	"errors"

	"certcycle/internal/schedule"
)

type ReasonKind string

const (
	KindCategoryViolation    ReasonKind = "category_violation"
	KindMissingQualification ReasonKind = "missing_qualification"
	KindReservationConflict  ReasonKind = "reservation_conflict"
	KindInvalidTransition    ReasonKind = "invalid_transition"
	KindDuplicateAuditType   ReasonKind = "duplicate_audit_type"
)

// Причина отказа; Field указывает на поле формы, к которому относится
type Reason struct {
	Kind      ReasonKind          `json:"kind"`
	Field     string              `json:"field,omitempty"`
	Message   string              `json:"message"`
	Missing   []string            `json:"missing,omitempty"`
	Conflicts []schedule.Conflict `json:"conflicts,omitempty"`
}

// Результат валидации: Ok либо список причин. Сохранение отклоняется
// целиком, причины собираются все до одной.
type Result struct {
	Reasons []Reason `json:"reasons"`
}

func (r *Result) Ok() bool {
	return len(r.Reasons) == 0
}

func (r *Result) add(reason Reason) {
	r.Reasons = append(r.Reasons, reason)
}

// HasConflict — был ли среди причин конфликт занятости
func (r *Result) HasConflict() bool {
	for _, reason := range r.Reasons {
		if reason.Kind == KindReservationConflict {
			return true
		}
	}
	return false
}

// ErrRejected возвращается из транзакции сохранения, когда валидатор
// собрал причины отказа; сами причины идут отдельным значением.
var ErrRejected = errors.New("save rejected by validator")
