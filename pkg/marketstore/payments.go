package marketstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/gridpool-project/gridpool/pkg/models"
)

// AddWalletOperation records a ledger transfer and returns its row ID.
func (s *Store) AddWalletOperation(ctx context.Context, op models.WalletOperation) (int64, error) {
	if err := op.Validate(); err != nil {
		return 0, err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	now := s.now()
	result, err := s.db.ExecContext(ctx, `
insert into wallet_operation
	(tx_hash, direction, operation_type, status, sender_address, recipient_address, amount, currency, gas_cost, created, modified)
values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		nullableString(op.TxHash),
		string(op.Direction),
		string(op.OperationType),
		string(op.Status),
		op.SenderAddress,
		op.RecipientAddress,
		op.Amount,
		op.Currency,
		op.GasCost,
		now,
		now,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// ConfirmWalletOperation marks an outgoing transfer as confirmed and stores
// the final gas cost. Incoming operations are left untouched.
func (s *Store) ConfirmWalletOperation(ctx context.Context, id int64, gasCost int64) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	_, err := s.db.ExecContext(ctx, `
update wallet_operation set
	status = ?,
	gas_cost = ?,
	modified = ?
where id = ? and direction = ?
`,
		string(models.WalletOperationStatusConfirmed),
		gasCost,
		s.now(),
		id,
		string(models.WalletOperationOutgoing),
	)
	return err
}

// UnconfirmedPayments returns outgoing transfers that have been submitted
// to the chain but not yet confirmed or failed. The settlement collaborator
// polls this to drive confirmation checks.
func (s *Store) UnconfirmedPayments(ctx context.Context) ([]models.WalletOperation, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
select
	id, tx_hash, direction, operation_type, status,
	sender_address, recipient_address, amount, currency, gas_cost,
	created, modified
from
	wallet_operation
where
	status not in (?, ?)
	and tx_hash is not null
	and direction = ?
order by
	id asc
`,
		string(models.WalletOperationStatusConfirmed),
		string(models.WalletOperationStatusFailed),
		string(models.WalletOperationOutgoing),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWalletOperations(rows)
}

// AddTaskPayment links a wallet operation to the task, subtask and provider
// it pays for.
func (s *Store) AddTaskPayment(ctx context.Context, payment models.TaskPayment) (int64, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	now := s.now()
	result, err := s.db.ExecContext(ctx, `
insert into task_payment
	(wallet_operation_id, node, task, subtask, expected_amount, accepted_ts, settled_ts, created, modified)
values (?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		payment.WalletOperationID,
		payment.Node,
		payment.Task,
		payment.Subtask,
		payment.ExpectedAmount,
		nullableUnix(payment.AcceptedAt),
		nullableUnix(payment.SettledAt),
		now,
		now,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// TaskPayments returns the payments recorded for a task in creation order.
func (s *Store) TaskPayments(ctx context.Context, task string) ([]models.TaskPayment, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
select
	id, wallet_operation_id, node, task, subtask, expected_amount,
	accepted_ts, settled_ts, created, modified
from
	task_payment
where
	task = ?
order by
	id asc
`, task)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []models.TaskPayment
	for rows.Next() {
		var p models.TaskPayment
		var accepted, settled sql.NullInt64
		var created, modified string
		if err = rows.Scan(
			&p.ID, &p.WalletOperationID, &p.Node, &p.Task, &p.Subtask,
			&p.ExpectedAmount, &accepted, &settled, &created, &modified,
		); err != nil {
			return nil, err
		}
		p.AcceptedAt = unixOrNil(accepted)
		p.SettledAt = unixOrNil(settled)
		p.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		p.ModifiedAt, _ = time.Parse(time.RFC3339Nano, modified)
		payments = append(payments, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return payments, nil
}

func scanWalletOperations(rows *sql.Rows) ([]models.WalletOperation, error) {
	var ops []models.WalletOperation
	for rows.Next() {
		var op models.WalletOperation
		var txHash sql.NullString
		var direction, operationType, status string
		var created, modified string
		if err := rows.Scan(
			&op.ID, &txHash, &direction, &operationType, &status,
			&op.SenderAddress, &op.RecipientAddress, &op.Amount, &op.Currency,
			&op.GasCost, &created, &modified,
		); err != nil {
			return nil, err
		}
		op.TxHash = txHash.String
		op.Direction = models.WalletOperationDirection(direction)
		op.OperationType = models.WalletOperationType(operationType)
		op.Status = models.WalletOperationStatus(status)
		op.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		op.ModifiedAt, _ = time.Parse(time.RFC3339Nano, modified)
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ops, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullableUnix(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func unixOrNil(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0).UTC()
	return &t
}
