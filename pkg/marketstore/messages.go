package marketstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/gridpool-project/gridpool/pkg/models"
)

// AddNetworkMessage retains a protocol message exchanged with a peer.
func (s *Store) AddNetworkMessage(ctx context.Context, msg models.NetworkMessage) (int64, error) {
	if err := msg.Validate(); err != nil {
		return 0, err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	now := s.now()
	result, err := s.db.ExecContext(ctx, `
insert into network_message
	(local_role, remote_role, node, task, subtask, msg_date, msg_cls, msg_data, created, modified)
values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		string(msg.LocalRole),
		string(msg.RemoteRole),
		msg.Node,
		nullableString(msg.Task),
		nullableString(msg.Subtask),
		msg.MsgDate.UTC().Format(time.RFC3339Nano),
		msg.MsgClass,
		msg.MsgData,
		now,
		now,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// NetworkMessagesForTask returns the retained messages for a task in the
// order they were recorded.
func (s *Store) NetworkMessagesForTask(ctx context.Context, task string) ([]models.NetworkMessage, error) {
	return s.networkMessages(ctx, `task = ?`, task)
}

// NetworkMessagesForNode returns the retained messages exchanged with one
// peer in the order they were recorded.
func (s *Store) NetworkMessagesForNode(ctx context.Context, node string) ([]models.NetworkMessage, error) {
	return s.networkMessages(ctx, `node = ?`, node)
}

func (s *Store) networkMessages(ctx context.Context, where string, arg any) ([]models.NetworkMessage, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
select
	id, local_role, remote_role, node, task, subtask,
	msg_date, msg_cls, msg_data, created, modified
from
	network_message
where `+where+`
order by
	id asc
`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.NetworkMessage
	for rows.Next() {
		var m models.NetworkMessage
		var localRole, remoteRole string
		var task, subtask sql.NullString
		var msgDate, created, modified string
		if err = rows.Scan(
			&m.ID, &localRole, &remoteRole, &m.Node, &task, &subtask,
			&msgDate, &m.MsgClass, &m.MsgData, &created, &modified,
		); err != nil {
			return nil, err
		}
		m.LocalRole = models.Actor(localRole)
		m.RemoteRole = models.Actor(remoteRole)
		m.Task = task.String
		m.Subtask = subtask.String
		m.MsgDate, _ = time.Parse(time.RFC3339Nano, msgDate)
		m.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		m.ModifiedAt, _ = time.Parse(time.RFC3339Nano, modified)
		messages = append(messages, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}
