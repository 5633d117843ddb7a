//go:build unit || !integration

package marketstore

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/suite"

	"github.com/gridpool-project/gridpool/pkg/logger"
	"github.com/gridpool-project/gridpool/pkg/models"
)

type StoreSuite struct {
	suite.Suite
	ctx   context.Context
	clock *clock.Mock
	store *Store
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	logger.ConfigureTestLogging(s.T())
	s.ctx = context.Background()
	s.clock = clock.NewMock()

	store, err := NewStore(StoreParams{Path: ":memory:", Clock: s.clock})
	s.Require().NoError(err)
	s.store = store
}

func (s *StoreSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func (s *StoreSuite) TestUsageFactorRoundtrip() {
	factors, err := s.store.UsageFactors(s.ctx)
	s.Require().NoError(err)
	s.Empty(factors)

	s.Require().NoError(s.store.UpsertUsageFactor(s.ctx, "p1", 5.0))
	s.Require().NoError(s.store.UpsertUsageFactor(s.ctx, "p2", 0.5))

	factors, err = s.store.UsageFactors(s.ctx)
	s.Require().NoError(err)
	s.Equal(map[string]float64{"p1": 5.0, "p2": 0.5}, factors)
}

func (s *StoreSuite) TestUsageFactorUpsertReplaces() {
	s.Require().NoError(s.store.UpsertUsageFactor(s.ctx, "p1", 5.0))
	s.Require().NoError(s.store.UpsertUsageFactor(s.ctx, "p1", 2.0))

	factors, err := s.store.UsageFactors(s.ctx)
	s.Require().NoError(err)
	s.Equal(map[string]float64{"p1": 2.0}, factors)
}

func (s *StoreSuite) TestUsageFactorDelete() {
	s.Require().NoError(s.store.UpsertUsageFactor(s.ctx, "p1", 5.0))
	s.Require().NoError(s.store.DeleteUsageFactors(s.ctx))

	factors, err := s.store.UsageFactors(s.ctx)
	s.Require().NoError(err)
	s.Empty(factors)

	// deleting an empty table is fine
	s.Require().NoError(s.store.DeleteUsageFactors(s.ctx))
}

func (s *StoreSuite) TestUnconfirmedPayments() {
	sent := models.WalletOperation{
		TxHash:           "0xabc",
		Direction:        models.WalletOperationOutgoing,
		OperationType:    models.WalletOperationTaskPayment,
		Status:           models.WalletOperationStatusSent,
		SenderAddress:    "0xsender",
		RecipientAddress: "0xrecipient",
		Amount:           100,
		Currency:         "GLM",
	}
	sentID, err := s.store.AddWalletOperation(s.ctx, sent)
	s.Require().NoError(err)

	// not yet submitted to the chain: no tx hash, must not show up
	awaiting := sent
	awaiting.TxHash = ""
	awaiting.Status = models.WalletOperationStatusAwaiting
	_, err = s.store.AddWalletOperation(s.ctx, awaiting)
	s.Require().NoError(err)

	// incoming operations are the counterparty's problem
	incoming := sent
	incoming.Direction = models.WalletOperationIncoming
	_, err = s.store.AddWalletOperation(s.ctx, incoming)
	s.Require().NoError(err)

	unconfirmed, err := s.store.UnconfirmedPayments(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(unconfirmed, 1)
	s.Equal(sentID, unconfirmed[0].ID)
	s.Equal("0xabc", unconfirmed[0].TxHash)

	s.Require().NoError(s.store.ConfirmWalletOperation(s.ctx, sentID, 7))
	unconfirmed, err = s.store.UnconfirmedPayments(s.ctx)
	s.Require().NoError(err)
	s.Empty(unconfirmed)
}

func (s *StoreSuite) TestTaskPaymentRoundtrip() {
	opID, err := s.store.AddWalletOperation(s.ctx, models.WalletOperation{
		Direction:        models.WalletOperationOutgoing,
		OperationType:    models.WalletOperationTaskPayment,
		Status:           models.WalletOperationStatusAwaiting,
		SenderAddress:    "0xsender",
		RecipientAddress: "0xrecipient",
		Amount:           80,
		Currency:         "GLM",
	})
	s.Require().NoError(err)

	accepted := time.Unix(1700000000, 0).UTC()
	_, err = s.store.AddTaskPayment(s.ctx, models.TaskPayment{
		WalletOperationID: opID,
		Node:              "P1",
		Task:              "task_1",
		Subtask:           "subtask_1",
		ExpectedAmount:    100,
		AcceptedAt:        &accepted,
	})
	s.Require().NoError(err)

	payments, err := s.store.TaskPayments(s.ctx, "task_1")
	s.Require().NoError(err)
	s.Require().Len(payments, 1)
	s.Equal("P1", payments[0].Node)
	s.Equal("subtask_1", payments[0].Subtask)
	s.Equal(int64(100), payments[0].ExpectedAmount)
	s.Require().NotNil(payments[0].AcceptedAt)
	s.Equal(accepted, *payments[0].AcceptedAt)
	s.Nil(payments[0].SettledAt)

	none, err := s.store.TaskPayments(s.ctx, "task_other")
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *StoreSuite) TestNetworkMessageRoundtrip() {
	s.clock.Add(42 * time.Second)
	msgDate := s.clock.Now().UTC()

	_, err := s.store.AddNetworkMessage(s.ctx, models.NetworkMessage{
		LocalRole:  models.ActorRequestor,
		RemoteRole: models.ActorProvider,
		Node:       "P1",
		Task:       "task_1",
		Subtask:    "subtask_1",
		MsgDate:    msgDate,
		MsgClass:   "tasks.SubtaskResultsAccepted",
		MsgData:    []byte{0x01, 0x02},
	})
	s.Require().NoError(err)

	byTask, err := s.store.NetworkMessagesForTask(s.ctx, "task_1")
	s.Require().NoError(err)
	s.Require().Len(byTask, 1)
	s.Equal(models.ActorRequestor, byTask[0].LocalRole)
	s.Equal("tasks.SubtaskResultsAccepted", byTask[0].MsgClass)
	s.Equal([]byte{0x01, 0x02}, byTask[0].MsgData)
	s.True(msgDate.Equal(byTask[0].MsgDate))

	byNode, err := s.store.NetworkMessagesForNode(s.ctx, "P1")
	s.Require().NoError(err)
	s.Len(byNode, 1)

	none, err := s.store.NetworkMessagesForNode(s.ctx, "P2")
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *StoreSuite) TestValidationAtTheBoundary() {
	_, err := s.store.AddWalletOperation(s.ctx, models.WalletOperation{
		Direction: "sideways",
	})
	s.Require().Error(err)

	_, err = s.store.AddNetworkMessage(s.ctx, models.NetworkMessage{
		LocalRole:  models.ActorRequestor,
		RemoteRole: models.ActorProvider,
	})
	s.Require().Error(err)
}
