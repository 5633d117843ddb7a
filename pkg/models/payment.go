package models

import (
	"time"

	"github.com/pkg/errors"
)

// WalletOperationStatus tracks a blockchain operation through submission
// and confirmation. The marketplace core never mutates these; they are
// written by the payment settlement collaborator.
type WalletOperationStatus string

const (
	WalletOperationStatusAwaiting  WalletOperationStatus = "awaiting"
	WalletOperationStatusSent      WalletOperationStatus = "sent"
	WalletOperationStatusConfirmed WalletOperationStatus = "confirmed"
	WalletOperationStatusOverdue   WalletOperationStatus = "overdue"
	WalletOperationStatusFailed    WalletOperationStatus = "failed"
)

type WalletOperationDirection string

const (
	WalletOperationIncoming WalletOperationDirection = "incoming"
	WalletOperationOutgoing WalletOperationDirection = "outgoing"
)

type WalletOperationType string

const (
	WalletOperationTransfer    WalletOperationType = "transfer"
	WalletOperationTaskPayment WalletOperationType = "task_payment"
)

// WalletOperation is a single ledger transfer, incoming or outgoing.
type WalletOperation struct {
	ID               int64
	TxHash           string
	Direction        WalletOperationDirection
	OperationType    WalletOperationType
	Status           WalletOperationStatus
	SenderAddress    string
	RecipientAddress string
	Amount           int64
	Currency         string
	GasCost          int64
	CreatedAt        time.Time
	ModifiedAt       time.Time
}

func (w WalletOperation) Validate() error {
	if w.Direction != WalletOperationIncoming && w.Direction != WalletOperationOutgoing {
		return errors.Errorf("unknown wallet operation direction: %q", w.Direction)
	}
	if w.Amount < 0 {
		return errors.Errorf("wallet operation amount %d is negative", w.Amount)
	}
	return nil
}

// TaskPayment links a wallet operation to the task and subtask it pays for,
// and to the provider node that computed it. The expected amount comes from
// the resolved offer's price; the wallet operation carries what was actually
// transferred.
type TaskPayment struct {
	ID                int64
	WalletOperationID int64
	Node              string
	Task              string
	Subtask           string
	ExpectedAmount    int64
	AcceptedAt        *time.Time
	SettledAt         *time.Time
	CreatedAt         time.Time
	ModifiedAt        time.Time
}

// MissingAmount is the shortfall between what the requestor agreed to pay
// and what has been transferred so far.
func (p TaskPayment) MissingAmount(op WalletOperation) int64 {
	return p.ExpectedAmount - op.Amount
}
