package app

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"oficinas_alerts/internal/domain/alert"
	"oficinas_alerts/internal/domain/tracked"
)

var kindLabels = map[tracked.Kind]string{
	tracked.KindDocument:     "Documento",
	tracked.KindProcess:      "Processo",
	tracked.KindCoexContract: "Contrato COEX",
	tracked.KindSubscription: "Pagamento",
}

// kindPaths are the app pages an alert links to.
var kindPaths = map[tracked.Kind]string{
	tracked.KindDocument:     "/documentos",
	tracked.KindProcess:      "/processos",
	tracked.KindCoexContract: "/coex",
	tracked.KindSubscription: "/financeiro",
}

var bucketSeverity = map[alert.Bucket]string{
	alert.BucketExpired:  "Vencido",
	alert.BucketDueToday: "Vence hoje",
	alert.BucketCritical: "Crítico",
	alert.BucketWarning:  "Atenção",
	alert.BucketInfo:     "Aviso",
}

func kindLabel(k tracked.Kind) string {
	if l, ok := kindLabels[k]; ok {
		return l
	}
	return string(k)
}

func recordTitle(r *tracked.Record) string {
	if strings.TrimSpace(r.Title) == "" {
		return r.ID
	}
	return r.Title
}

// alertTitle returns the short title of a deadline alert.
func alertTitle(r *tracked.Record, b alert.Bucket) string {
	label := kindLabel(r.Kind)
	switch b {
	case alert.BucketExpired:
		return fmt.Sprintf("%s vencido: %s", label, recordTitle(r))
	case alert.BucketDueToday:
		return fmt.Sprintf("%s vence hoje: %s", label, recordTitle(r))
	default:
		return fmt.Sprintf("%s próximo do vencimento: %s", label, recordTitle(r))
	}
}

func alertMessage(r *tracked.Record, b alert.Bucket, days int) string {
	date := r.TargetDate.Time.Format("02/01/2006")
	name := recordTitle(r)
	switch b {
	case alert.BucketExpired:
		return fmt.Sprintf("%q venceu em %s (%s em atraso).", name, date, pluralDays(-days))
	case alert.BucketDueToday:
		return fmt.Sprintf("%q vence hoje (%s).", name, date)
	default:
		return fmt.Sprintf("%q vence em %s (%s).", name, pluralDays(days), date)
	}
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 dia"
	}
	return fmt.Sprintf("%d dias", n)
}

func milestoneTitle(value float64) string {
	return fmt.Sprintf("Meta atingida: %s em faturamento", formatBRL(value))
}

func milestoneMessage(workshop string, value, current float64) string {
	return fmt.Sprintf("Parabéns! A oficina %s ultrapassou %s de faturamento acumulado (total atual: %s).",
		workshop, formatBRL(value), formatBRL(current))
}

// formatBRL renders v as "R$ 1.234.567,89".
func formatBRL(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(c)
	}
	out := "R$ " + b.String() + "," + frac
	if neg {
		out = "-" + out
	}
	return out
}

func actionURL(baseURL string, k tracked.Kind) string {
	return actionURLPath(baseURL, kindPaths[k])
}

func actionURLPath(baseURL, path string) string {
	if baseURL == "" {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + path
}

// telegramText is the plain-text body sent to the owner's chat.
func telegramText(title, message string, target time.Time) string {
	var b strings.Builder
	b.WriteString("🔔 ")
	b.WriteString(title)
	b.WriteString("\n\n")
	b.WriteString(message)
	if !target.IsZero() {
		b.WriteString("\nData: ")
		b.WriteString(target.Format("02/01/2006"))
	}
	return b.String()
}
