package ebarimt

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/itsystem/posapi-bridge/internal/domain/entity"
	pkgebarimt "github.com/itsystem/posapi-bridge/pkg/ebarimt"
)

// PaymentTolerance diferencia máxima aceptada entre total y pagado.
var PaymentTolerance = decimal.RequireFromString("0.01")

// PaymentValidation resultado de la conciliación de pagos.
type PaymentValidation struct {
	IsValid    bool
	TotalPaid  decimal.Decimal
	Difference decimal.Decimal
	Message    string
}

// ValidatePayments suma las líneas PAID y las compara contra el total del documento.
// Válido si |total - pagado| <= 0.01; en ese caso la diferencia reportada es 0.
func ValidatePayments(payments []entity.PaymentLine, total decimal.Decimal) PaymentValidation {
	if len(payments) == 0 {
		return PaymentValidation{
			TotalPaid:  decimal.Zero,
			Difference: total,
			Message:    "payments are required",
		}
	}

	paid := decimal.Zero
	for _, p := range payments {
		if p.Status == pkgebarimt.PaymentStatusPaid {
			paid = paid.Add(p.PaidAmount)
		}
	}

	diff := Round2(total.Sub(paid))
	if diff.Abs().LessThanOrEqual(PaymentTolerance) {
		return PaymentValidation{IsValid: true, TotalPaid: paid, Difference: decimal.Zero}
	}
	return PaymentValidation{
		TotalPaid:  paid,
		Difference: diff,
		Message: fmt.Sprintf("payment mismatch: total %s, paid %s, difference %s",
			total.StringFixed(2), paid.StringFixed(2), diff.StringFixed(2)),
	}
}
