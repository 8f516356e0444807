package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/queue-service/internal/domain"
	"github.com/spec-kit/queue-service/internal/observability"
	"github.com/spec-kit/queue-service/internal/service"
)

func newDeliveryWorker(outbox *mockOutbox, transport *mockTransport) *DeliveryWorker {
	logger := zap.NewNop()
	worker := NewDeliveryWorker(outbox, transport, service.NewAuditService(nil, logger),
		observability.NewMetrics(), 4, 30*time.Second, 50, logger)
	fixed := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	worker.now = func() time.Time { return fixed }
	return worker
}

func dueMessage(id string, attempts int) domain.OutboxMessage {
	return domain.OutboxMessage{
		ID:           id,
		TicketID:     "t-1",
		Template:     domain.TemplateTicketCreated,
		Status:       domain.MessageStatusPending,
		AttemptCount: attempts,
		Destination:  "12345",
		Content:      "hola",
	}
}

func TestDeliveryMarksSentOnSuccess(t *testing.T) {
	outbox := &mockOutbox{}
	transport := &mockTransport{}
	worker := newDeliveryWorker(outbox, transport)

	outbox.On("ListDue", mock.Anything, worker.now(), 50).Return([]domain.OutboxMessage{
		dueMessage("m-1", 0),
	}, nil)
	transport.On("Send", mock.Anything, "12345", "hola").Return(nil)
	outbox.On("MarkSent", mock.Anything, "m-1", worker.now(), 1).Return(nil)

	require.NoError(t, worker.RunTick(context.Background()))
	outbox.AssertExpectations(t)
}

func TestDeliveryReschedulesWithDoublingBackoff(t *testing.T) {
	tests := []struct {
		name          string
		priorAttempts int
		wantAttempt   int
		wantDelay     time.Duration
	}{
		{"first failure", 0, 1, 30 * time.Second},
		{"second failure", 1, 2, 60 * time.Second},
		{"third failure", 2, 3, 120 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outbox := &mockOutbox{}
			transport := &mockTransport{}
			worker := newDeliveryWorker(outbox, transport)

			outbox.On("ListDue", mock.Anything, worker.now(), 50).Return([]domain.OutboxMessage{
				dueMessage("m-1", tt.priorAttempts),
			}, nil)
			transport.On("Send", mock.Anything, "12345", "hola").Return(errors.New("telegram unavailable"))
			outbox.On("Reschedule", mock.Anything, "m-1", tt.wantAttempt, worker.now().Add(tt.wantDelay)).Return(nil)

			require.NoError(t, worker.RunTick(context.Background()))
			outbox.AssertExpectations(t)
			outbox.AssertNotCalled(t, "MarkFailed", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestDeliveryParksMessageAfterFinalAttempt(t *testing.T) {
	outbox := &mockOutbox{}
	transport := &mockTransport{}
	worker := newDeliveryWorker(outbox, transport)

	outbox.On("ListDue", mock.Anything, worker.now(), 50).Return([]domain.OutboxMessage{
		dueMessage("m-1", 3),
	}, nil)
	transport.On("Send", mock.Anything, "12345", "hola").Return(errors.New("telegram unavailable"))
	outbox.On("MarkFailed", mock.Anything, "m-1", 4).Return(nil)

	require.NoError(t, worker.RunTick(context.Background()))
	outbox.AssertExpectations(t)
	outbox.AssertNotCalled(t, "Reschedule", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeliveryContinuesBatchAfterOneFailure(t *testing.T) {
	outbox := &mockOutbox{}
	transport := &mockTransport{}
	worker := newDeliveryWorker(outbox, transport)

	first := dueMessage("m-1", 0)
	second := dueMessage("m-2", 0)
	second.Destination = "67890"

	outbox.On("ListDue", mock.Anything, worker.now(), 50).Return([]domain.OutboxMessage{first, second}, nil)
	transport.On("Send", mock.Anything, "12345", "hola").Return(errors.New("blocked by user"))
	transport.On("Send", mock.Anything, "67890", "hola").Return(nil)
	outbox.On("Reschedule", mock.Anything, "m-1", 1, mock.Anything).Return(nil)
	outbox.On("MarkSent", mock.Anything, "m-2", worker.now(), 1).Return(nil)

	require.NoError(t, worker.RunTick(context.Background()))
	outbox.AssertExpectations(t)
}

func TestDeliveryPropagatesListError(t *testing.T) {
	outbox := &mockOutbox{}
	transport := &mockTransport{}
	worker := newDeliveryWorker(outbox, transport)

	outbox.On("ListDue", mock.Anything, worker.now(), 50).Return(nil, errors.New("connection refused"))

	require.Error(t, worker.RunTick(context.Background()))
	transport.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}
