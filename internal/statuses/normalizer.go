package statuses

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// aliases - исторические строки статусов, которые когда-либо попадали в базу.
// Ключи уже в виде после fold(): нижний регистр, без диакритики, через "_".
var aliases = map[string]Canonical{
	// Старые общие коды
	"new":         Created,
	"nueva":       Created,
	"nuevo":       Created,
	"creada":      Created,
	"draft":       Created,
	"borrador":    Created,
	"open":        Pending,
	"pendiente":   Pending,
	"waiting":     Pending,
	"aceptada":    Accepted,
	"aprobada":    Approved,
	"confirmed":   Approved,
	"rechazada":   Rejected,
	"declined":    Rejected,
	"canceled":    Cancelled,
	"cancelada":   Cancelled,
	"anulada":     Cancelled,
	"hold":        OnHold,
	"paused":      OnHold,
	"en_espera":   OnHold,
	"closed":      Completed,
	"done":        Completed,
	"finished":    Completed,
	"finalizada":  Completed,
	"completada":  Completed,
	"facturada":   Billed,
	"invoiced":    Billed,
	"delivered":   Delivered,
	"entregada":   Delivered,
	"en_transito": InTransit,
	"shipped":     InTransit,
	"dispatched":  InTransit,
	"in_progress": SurgeryInProgress,
	"en_curso":    SurgeryInProgress,

	"en_preparacion": InPreparation,
	"preparing":      InPreparation,
	"ready":          EquipmentReady,
	"equipo_listo":   EquipmentReady,
	"returned":       EquipmentReturned,
	"devuelta":       EquipmentReturned,

	// Коды схемы действий (PENDING_ACCEPTANCE и т.д.)
	"pending_doctor_confirmation":     DoctorConfirmation,
	"pending_technician_assignment":   TechnicianAssignment,
	"pending_technician_confirmation": TechnicianAssigned,
	"preparing_equipment":             InPreparation,
	"surgery_pending":                 SurgeryScheduled,
	"pending_final_approval":          FinalApproval,
}

// fold приводит строку к виду ключа: trim, нижний регистр, без ударений,
// пробелы и дефисы превращаются в "_".
func fold(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}

	// Transformer хранит состояние, поэтому собираем цепочку на каждый вызов.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}

	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return '_'
		}
		return r
	}, s)
}

// Normalize сводит произвольную строку статуса к каноническому значению.
// Неизвестное или пустое значение дает Default и никогда не считается ошибкой.
func Normalize(raw string) Canonical {
	key := fold(raw)
	if key == "" {
		return Default
	}
	if _, ok := labels[Canonical(key)]; ok {
		return Canonical(key)
	}
	if c, ok := aliases[key]; ok {
		return c
	}
	return Default
}

// NormalizePtr - вариант для nullable-колонок.
func NormalizePtr(raw *string) Canonical {
	if raw == nil {
		return Default
	}
	return Normalize(*raw)
}

// Label возвращает подпись статуса для интерфейса.
func Label(raw string) string {
	return labels[Normalize(raw)]
}

// Class возвращает CSS-класс бейджа статуса.
func Class(raw string) string {
	return classes[Normalize(raw)]
}
