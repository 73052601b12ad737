package trade

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rajivgeraev/swapplace-api/internal/events"
	"github.com/rajivgeraev/swapplace-api/internal/metrics"
	"github.com/rajivgeraev/swapplace-api/internal/models"
	"github.com/rajivgeraev/swapplace-api/internal/repository"
	"github.com/rajivgeraev/swapplace-api/internal/repository/memory"
)

type fixture struct {
	store     *memory.Store
	publisher *events.MockPublisher
	svc       *TradeService
	ana       *models.User
	beto      *models.User
	product   *models.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	publisher := &events.MockPublisher{}
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	ana := &models.User{ID: uuid.New(), Username: "ana", Role: models.RoleUser}
	beto := &models.User{ID: uuid.New(), Username: "beto", Role: models.RoleUser}
	require.NoError(t, store.Users().Create(ctx, ana))
	require.NoError(t, store.Users().Create(ctx, beto))

	product := &models.Product{ID: uuid.New(), OwnerID: ana.ID, Name: "Bicicleta", Description: "Roja"}
	require.NoError(t, store.Products().Create(ctx, product))

	return &fixture{
		store:     store,
		publisher: publisher,
		svc:       NewTradeService(store, publisher, metrics.New(), zap.NewNop()),
		ana:       ana,
		beto:      beto,
		product:   product,
	}
}

func (f *fixture) visible(t *testing.T, user *models.User) []models.Notification {
	t.Helper()
	list, err := f.store.Notifications().ListVisible(context.Background(), user.ID, 20)
	require.NoError(t, err)
	return list
}

func TestPropose(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	trade, err := f.svc.Propose(ctx, f.beto.Actor(), f.product.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TradePending, trade.Status)
	assert.Equal(t, f.beto.ID, trade.RequesterID)
	assert.Equal(t, f.ana.ID, trade.ReceiverID)

	notes := f.visible(t, f.ana)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationNewTrade, notes[0].Kind)
	assert.Equal(t, "Nueva solicitud de trueque", notes[0].Title)
	assert.Equal(t, `beto ofreció un trueque por "Bicicleta".`, notes[0].Body)
	assert.Equal(t, "/", notes[0].Link)

	f.publisher.AssertCalled(t, "Publish", mock.Anything, events.SubjectTradeProposed, mock.Anything)
}

func TestPropose_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Propose(ctx, f.ana.Actor(), f.product.ID)
	assert.ErrorIs(t, err, models.ErrPermissionDenied)
	assert.ErrorIs(t, err, models.ErrOwnProduct)

	_, err = f.svc.Propose(ctx, f.beto.Actor(), uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.Empty(t, f.visible(t, f.ana))
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestRespond_Accept(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	trade, err := f.svc.Propose(ctx, f.beto.Actor(), f.product.ID)
	require.NoError(t, err)

	result, err := f.svc.Respond(ctx, f.ana.Actor(), trade.ID, models.DecisionAccept)
	require.NoError(t, err)
	require.NotNil(t, result.Chat)
	assert.Equal(t, models.TradeAccepted, result.Trade.Status)
	assert.Equal(t, result.Chat.ID, *result.Trade.ChatID)
	assert.True(t, result.Chat.HasParticipant(f.ana.ID))
	assert.True(t, result.Chat.HasParticipant(f.beto.ID))
	assert.Len(t, result.Chat.Participants, 2)

	link := "/chat/" + result.Chat.ID.String() + "/"
	betoNotes := f.visible(t, f.beto)
	require.Len(t, betoNotes, 1)
	assert.Equal(t, "Trueque aceptado", betoNotes[0].Title)
	assert.Equal(t, "ana aceptó tu solicitud. Pulsa Ver chat.", betoNotes[0].Body)
	assert.Equal(t, link, betoNotes[0].Link)

	anaNotes := f.visible(t, f.ana)
	require.Len(t, anaNotes, 2)
	assert.Equal(t, models.NotificationTradeAccepted, anaNotes[0].Kind)
	assert.Equal(t, "Aceptaste la solicitud de beto. Pulsa Ver chat.", anaNotes[0].Body)

	stored, err := f.store.Trades().GetByID(ctx, trade.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TradeAccepted, stored.Status)
	require.NotNil(t, stored.ChatID)

	f.publisher.AssertCalled(t, "Publish", mock.Anything, events.SubjectTradeAccepted, mock.Anything)
}

func TestRespond_Reject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	trade, err := f.svc.Propose(ctx, f.beto.Actor(), f.product.ID)
	require.NoError(t, err)

	result, err := f.svc.Respond(ctx, f.ana.Actor(), trade.ID, models.DecisionReject)
	require.NoError(t, err)
	assert.Nil(t, result.Chat)
	assert.Equal(t, models.TradeRejected, result.Trade.Status)

	notes := f.visible(t, f.beto)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationTradeRejected, notes[0].Kind)
	assert.Equal(t, `ana rechazó tu solicitud por "Bicicleta".`, notes[0].Body)

	chats, err := f.store.Chats().ListForUser(ctx, f.beto.ID)
	require.NoError(t, err)
	assert.Empty(t, chats)
}

func TestRespond_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	trade, err := f.svc.Propose(ctx, f.beto.Actor(), f.product.ID)
	require.NoError(t, err)

	_, err = f.svc.Respond(ctx, f.beto.Actor(), trade.ID, models.DecisionAccept)
	assert.ErrorIs(t, err, models.ErrPermissionDenied)

	_, err = f.svc.Respond(ctx, f.ana.Actor(), uuid.New(), models.DecisionAccept)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = f.svc.Respond(ctx, f.ana.Actor(), trade.ID, models.Decision("maybe"))
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = f.svc.Respond(ctx, f.ana.Actor(), trade.ID, models.DecisionReject)
	require.NoError(t, err)

	// Ответ на уже отклоненный обмен не создает чат и уведомления
	_, err = f.svc.Respond(ctx, f.ana.Actor(), trade.ID, models.DecisionAccept)
	assert.ErrorIs(t, err, models.ErrConflict)

	chats, err := f.store.Chats().ListForUser(ctx, f.ana.ID)
	require.NoError(t, err)
	assert.Empty(t, chats)
	assert.Len(t, f.visible(t, f.beto), 1)
}

type failingNotifications struct {
	repository.NotificationRepository
}

func (failingNotifications) Create(ctx context.Context, n *models.Notification) error {
	return errors.New("notifications unavailable")
}

type failingStore struct {
	repository.Store
}

func (s failingStore) Notifications() repository.NotificationRepository {
	return failingNotifications{s.Store.Notifications()}
}

func (s failingStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	return s.Store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		return fn(ctx, failingStore{tx})
	})
}

func TestRespond_RollsBackOnNotificationFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	trade, err := f.svc.Propose(ctx, f.beto.Actor(), f.product.ID)
	require.NoError(t, err)

	broken := NewTradeService(failingStore{f.store}, f.publisher, nil, zap.NewNop())
	_, err = broken.Respond(ctx, f.ana.Actor(), trade.ID, models.DecisionAccept)
	require.Error(t, err)

	stored, err := f.store.Trades().GetByID(ctx, trade.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TradePending, stored.Status)
	assert.Nil(t, stored.ChatID)

	chats, err := f.store.Chats().ListForUser(ctx, f.ana.ID)
	require.NoError(t, err)
	assert.Empty(t, chats)
}

func TestRespond_PublishFailureDoesNotFail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	publisher := &events.MockPublisher{}
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("nats down"))
	svc := NewTradeService(f.store, publisher, nil, zap.NewNop())

	trade, err := svc.Propose(ctx, f.beto.Actor(), f.product.ID)
	require.NoError(t, err)
	_, err = svc.Respond(ctx, f.ana.Actor(), trade.ID, models.DecisionAccept)
	require.NoError(t, err)
}

func TestList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Propose(ctx, f.beto.Actor(), f.product.ID)
	require.NoError(t, err)
	second, err := f.svc.Propose(ctx, f.beto.Actor(), f.product.ID)
	require.NoError(t, err)
	_, err = f.svc.Respond(ctx, f.ana.Actor(), first.ID, models.DecisionAccept)
	require.NoError(t, err)

	incoming, err := f.svc.List(ctx, f.ana.Actor(), models.TradeTypeIncoming, "all")
	require.NoError(t, err)
	require.Len(t, incoming, 2)
	assert.Equal(t, second.ID, incoming[0].ID)

	pending, err := f.svc.List(ctx, f.ana.Actor(), "", models.TradePending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)

	outgoing, err := f.svc.List(ctx, f.ana.Actor(), models.TradeTypeOutgoing, "")
	require.NoError(t, err)
	assert.Empty(t, outgoing)

	accepted, err := f.svc.List(ctx, f.beto.Actor(), models.TradeTypeOutgoing, models.TradeAccepted)
	require.NoError(t, err)
	require.Len(t, accepted, 1)
	assert.NotNil(t, accepted[0].ChatID)
	assert.Equal(t, "Bicicleta", accepted[0].ProductName)

	_, err = f.svc.List(ctx, f.ana.Actor(), "sideways", "")
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = f.svc.List(ctx, f.ana.Actor(), "", "done")
	assert.ErrorIs(t, err, models.ErrValidation)
}
