package checkout

import "perrada/internal/models"

const (
	transferMessage = "Para completar tu pedido, por favor realiza la transferencia a una de las siguientes cuentas y envía el comprobante a nuestro WhatsApp."
	cashMessage     = "Prepara tu efectivo. Nuestro domiciliario te cobrará al momento de la entrega. ¡Gracias por tu compra!"
)

// Instructions tell the customer how to pay for a placed order.
type Instructions struct {
	Message  string                  `json:"message"`
	Accounts []models.PaymentAccount `json:"accounts,omitempty"`
}

// InstructionsFor lists the transfer accounts for TRANSFERENCIA and the
// cash-on-delivery note for anything else.
func InstructionsFor(method models.PaymentMethod, accounts []models.PaymentAccount) Instructions {
	if method == models.PaymentTransfer {
		return Instructions{Message: transferMessage, Accounts: accounts}
	}
	return Instructions{Message: cashMessage}
}
