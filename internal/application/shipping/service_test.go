package shipping

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wecre8/oto/internal/domain/fulfillment"
	"github.com/wecre8/oto/internal/domain/shared"
	"github.com/wecre8/oto/internal/domain/shared/plugin"
	"github.com/wecre8/oto/internal/infrastructure/logger"
	"github.com/wecre8/oto/internal/infrastructure/oto"
	"github.com/wecre8/oto/internal/infrastructure/scheduler"
)

type stubRepository struct {
	fulfillments map[int64]*fulfillment.Fulfillment
	err          error
}

func (r *stubRepository) FindFulfillment(_ context.Context, id int64) (*fulfillment.Fulfillment, error) {
	if r.err != nil {
		return nil, r.err
	}
	f, ok := r.fulfillments[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return f, nil
}

type recordingNotifier struct {
	created  []int64
	canceled []int64
	err      error
}

func (n *recordingNotifier) FulfillmentCreated(_ context.Context, f *fulfillment.Fulfillment) error {
	n.created = append(n.created, f.ID)
	return n.err
}

func (n *recordingNotifier) FulfillmentCanceled(_ context.Context, f *fulfillment.Fulfillment) error {
	n.canceled = append(n.canceled, f.ID)
	return n.err
}

type fakeQueue struct {
	submitted []*scheduler.Task
	handlers  map[string]scheduler.HandlerFunc
	results   map[uuid.UUID]*scheduler.Task
	err       error
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{
		handlers: make(map[string]scheduler.HandlerFunc),
		results:  make(map[uuid.UUID]*scheduler.Task),
	}
}

func (q *fakeQueue) Submit(_ context.Context, name string, payload any) (*scheduler.Task, error) {
	if q.err != nil {
		return nil, q.err
	}
	task, err := scheduler.NewTask(name, payload)
	if err != nil {
		return nil, err
	}
	q.submitted = append(q.submitted, task)
	q.results[task.ID] = task
	return task, nil
}

func (q *fakeQueue) Register(name string, handler scheduler.HandlerFunc) error {
	if _, ok := q.handlers[name]; ok {
		return scheduler.ErrHandlerAlreadyRegistered
	}
	q.handlers[name] = handler
	return nil
}

func (q *fakeQueue) Lookup(_ context.Context, id uuid.UUID) (*scheduler.Task, error) {
	task, ok := q.results[id]
	if !ok {
		return nil, scheduler.ErrTaskNotFound
	}
	return task, nil
}

type sentRequest struct {
	fulfillmentID int64
	destination   string
	config        oto.Config
}

type fakeSender struct {
	mu       sync.Mutex
	requests []sentRequest
	response any
	err      error
}

func (s *fakeSender) SendRequest(_ context.Context, f *fulfillment.Fulfillment, cfg oto.Config, destination string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, sentRequest{fulfillmentID: f.ID, destination: destination, config: cfg})
	return s.response, s.err
}

func (s *fakeSender) sent() []sentRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentRequest(nil), s.requests...)
}

func testRepository() *stubRepository {
	return &stubRepository{fulfillments: map[int64]*fulfillment.Fulfillment{
		42: {ID: 42, FulfillmentOrder: 1, Status: fulfillment.StatusFulfilled, Order: &fulfillment.Order{ID: 1001}},
	}}
}

func testConfig() oto.Config {
	return oto.Config{
		oto.KeyRetailerID:  "retailer-1",
		oto.KeyAccessToken: "token-1",
		oto.KeySandbox:     true,
	}
}

func TestService_NotifyFulfillmentCreated(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := NewService(testRepository(), notifier, nil, newFakeQueue(), &fakeSender{}, nil)

	require.NoError(t, svc.NotifyFulfillmentCreated(context.Background(), 42))
	assert.Equal(t, []int64{42}, notifier.created)
	assert.Empty(t, notifier.canceled)
}

func TestService_NotifyFulfillmentCanceled(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := NewService(testRepository(), notifier, nil, newFakeQueue(), &fakeSender{}, nil)

	require.NoError(t, svc.NotifyFulfillmentCanceled(context.Background(), 42))
	assert.Equal(t, []int64{42}, notifier.canceled)
}

func TestService_Notify_Errors(t *testing.T) {
	t.Run("unknown fulfillment", func(t *testing.T) {
		notifier := &recordingNotifier{}
		svc := NewService(testRepository(), notifier, nil, newFakeQueue(), &fakeSender{}, nil)

		err := svc.NotifyFulfillmentCreated(context.Background(), 7)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Empty(t, notifier.created)
	})

	t.Run("plugin failure is returned and logged", func(t *testing.T) {
		core, recorded := observer.New(zapcore.ErrorLevel)
		notifier := &recordingNotifier{err: errors.New("queue down")}
		svc := NewService(testRepository(), notifier, nil, newFakeQueue(), &fakeSender{}, zap.New(core))

		err := svc.NotifyFulfillmentCanceled(context.Background(), 42)
		assert.EqualError(t, err, "queue down")
		require.Equal(t, 1, recorded.FilterMessage("Plugin hook failed").Len())
	})
}

func TestService_DispatchRequest(t *testing.T) {
	queue := newFakeQueue()
	otoPlugin := oto.NewPlugin(true, testConfig(), queue, zap.NewNop())
	svc := NewService(testRepository(), plugin.NewPluginManager(), otoPlugin, queue, &fakeSender{}, nil)

	resp, err := svc.DispatchRequest(context.Background(), DispatchRequest{
		FulfillmentID: 42,
		Destination:   oto.DestinationCancelOrder,
	})
	require.NoError(t, err)
	require.Len(t, queue.submitted, 1)

	task := queue.submitted[0]
	assert.Equal(t, task.ID, resp.ID)
	assert.Equal(t, oto.TaskSendRequest, resp.Name)
	assert.Equal(t, scheduler.TaskStatusPending, resp.Status)

	var args oto.SendRequestTask
	require.NoError(t, json.Unmarshal(task.Payload, &args))
	assert.Equal(t, int64(42), args.FulfillmentID)
	assert.Equal(t, oto.DestinationCancelOrder, args.Destination)
	assert.Equal(t, "token-1", args.Config.String(oto.KeyAccessToken))
	assert.True(t, args.Config.IsSandbox())
}

func TestService_DispatchRequest_Errors(t *testing.T) {
	req := DispatchRequest{FulfillmentID: 42, Destination: oto.DestinationCreateOrder}

	t.Run("inactive plugin", func(t *testing.T) {
		queue := newFakeQueue()
		otoPlugin := oto.NewPlugin(false, testConfig(), queue, zap.NewNop())
		svc := NewService(testRepository(), plugin.NewPluginManager(), otoPlugin, queue, &fakeSender{}, nil)

		_, err := svc.DispatchRequest(context.Background(), req)
		assert.ErrorIs(t, err, ErrPluginInactive)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
		assert.Empty(t, queue.submitted)
	})

	t.Run("no plugin", func(t *testing.T) {
		svc := NewService(testRepository(), plugin.NewPluginManager(), nil, newFakeQueue(), &fakeSender{}, nil)

		_, err := svc.DispatchRequest(context.Background(), req)
		assert.ErrorIs(t, err, ErrPluginInactive)
	})

	t.Run("unknown fulfillment", func(t *testing.T) {
		queue := newFakeQueue()
		otoPlugin := oto.NewPlugin(true, testConfig(), queue, zap.NewNop())
		svc := NewService(testRepository(), plugin.NewPluginManager(), otoPlugin, queue, &fakeSender{}, nil)

		_, err := svc.DispatchRequest(context.Background(), DispatchRequest{FulfillmentID: 9, Destination: oto.DestinationCreateOrder})
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Empty(t, queue.submitted)
	})

	t.Run("queue full", func(t *testing.T) {
		queue := newFakeQueue()
		queue.err = scheduler.ErrTaskQueueFull
		otoPlugin := oto.NewPlugin(true, testConfig(), queue, zap.NewNop())
		svc := NewService(testRepository(), plugin.NewPluginManager(), otoPlugin, queue, &fakeSender{}, nil)

		_, err := svc.DispatchRequest(context.Background(), req)
		assert.ErrorIs(t, err, scheduler.ErrTaskQueueFull)
	})
}

func TestService_LookupTask(t *testing.T) {
	queue := newFakeQueue()
	svc := NewService(testRepository(), plugin.NewPluginManager(), nil, queue, &fakeSender{}, nil)

	task, err := queue.Submit(context.Background(), oto.TaskSendRequest, oto.SendRequestTask{FulfillmentID: 42})
	require.NoError(t, err)
	task.Start()
	task.Fail("oto: request failed")

	resp, err := svc.LookupTask(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, scheduler.TaskStatusFailed, resp.Status)
	assert.Equal(t, "oto: request failed", resp.Error)
	assert.NotNil(t, resp.CompletedAt)

	_, err = svc.LookupTask(context.Background(), uuid.New())
	assert.ErrorIs(t, err, scheduler.ErrTaskNotFound)
}

func TestService_HandleSendRequest(t *testing.T) {
	sender := &fakeSender{response: map[string]any{"success": true, "otoId": float64(987654)}}
	svc := NewService(testRepository(), plugin.NewPluginManager(), nil, newFakeQueue(), sender, nil)

	payload, err := json.Marshal(oto.SendRequestTask{
		FulfillmentID: 42,
		Destination:   oto.DestinationCreateOrder,
		Config:        testConfig(),
	})
	require.NoError(t, err)

	core, recorded := observer.New(zapcore.InfoLevel)
	ctx, _ := logger.WithTaskID(context.Background(), zap.New(core), "task-1")

	result, err := svc.HandleSendRequest(ctx, payload)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"success": true, "otoId": float64(987654)}, result)

	sent := sender.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, int64(42), sent[0].fulfillmentID)
	assert.Equal(t, oto.DestinationCreateOrder, sent[0].destination)
	assert.Equal(t, "retailer-1", sent[0].config.String(oto.KeyRetailerID))

	entries := recorded.FilterMessage("OTO request sent").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "task-1", entries[0].ContextMap()["task_id"])
}

func TestService_HandleSendRequest_Errors(t *testing.T) {
	t.Run("invalid payload", func(t *testing.T) {
		svc := NewService(testRepository(), plugin.NewPluginManager(), nil, newFakeQueue(), &fakeSender{}, nil)

		_, err := svc.HandleSendRequest(context.Background(), json.RawMessage(`{"fulfillment_id":"x"`))
		assert.Error(t, err)
	})

	t.Run("missing fulfillment", func(t *testing.T) {
		sender := &fakeSender{}
		svc := NewService(testRepository(), plugin.NewPluginManager(), nil, newFakeQueue(), sender, nil)

		_, err := svc.HandleSendRequest(context.Background(), json.RawMessage(`{"fulfillment_id":5,"destination":"createOrder"}`))
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Empty(t, sender.sent())
	})

	t.Run("transport failure", func(t *testing.T) {
		sender := &fakeSender{err: oto.ErrRequestFailed}
		svc := NewService(testRepository(), plugin.NewPluginManager(), nil, newFakeQueue(), sender, nil)

		_, err := svc.HandleSendRequest(context.Background(), json.RawMessage(`{"fulfillment_id":42,"destination":"cancelOrder"}`))
		assert.ErrorIs(t, err, oto.ErrRequestFailed)
	})
}

func TestService_RegisterHandlers(t *testing.T) {
	queue := newFakeQueue()
	svc := NewService(testRepository(), plugin.NewPluginManager(), nil, queue, &fakeSender{}, nil)

	require.NoError(t, svc.RegisterHandlers())
	assert.Contains(t, queue.handlers, oto.TaskSendRequest)
	assert.ErrorIs(t, svc.RegisterHandlers(), scheduler.ErrHandlerAlreadyRegistered)
}

// Hook -> plugin manager -> OTO plugin -> scheduler -> handler, with the
// real scheduler and in-memory broker.
func TestService_EndToEnd(t *testing.T) {
	results := scheduler.NewMemoryResultBackend(time.Hour)
	sched := scheduler.NewScheduler(scheduler.SchedulerConfig{
		MaxConcurrentTasks: 2,
		TaskTimeout:        5 * time.Second,
	}, scheduler.NewMemoryBroker(16), zap.NewNop(), scheduler.WithResultBackend(results))

	sender := &fakeSender{response: map[string]any{"success": true}}
	otoPlugin := oto.NewPlugin(true, testConfig(), sched, zap.NewNop())
	manager := plugin.NewPluginManager()
	require.NoError(t, manager.Register(otoPlugin))

	svc := NewService(testRepository(), manager, otoPlugin, sched, sender, zap.NewNop())
	require.NoError(t, svc.RegisterHandlers())
	require.NoError(t, sched.Start(context.Background()))
	t.Cleanup(func() { _ = sched.Stop(context.Background()) })

	require.NoError(t, svc.NotifyFulfillmentCreated(context.Background(), 42))
	require.NoError(t, svc.NotifyFulfillmentCreated(context.Background(), 42))
	require.NoError(t, svc.NotifyFulfillmentCanceled(context.Background(), 42))

	require.Eventually(t, func() bool { return len(sender.sent()) == 3 }, 2*time.Second, 10*time.Millisecond)

	destinations := map[string]int{}
	for _, r := range sender.sent() {
		assert.Equal(t, int64(42), r.fulfillmentID)
		destinations[r.destination]++
	}
	assert.Equal(t, map[string]int{oto.DestinationCreateOrder: 2, oto.DestinationCancelOrder: 1}, destinations)

	resp, err := svc.DispatchRequest(context.Background(), DispatchRequest{FulfillmentID: 42, Destination: oto.DestinationCancelOrder})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		got, err := svc.LookupTask(context.Background(), resp.ID)
		return err == nil && got.Status == scheduler.TaskStatusSuccess
	}, 2*time.Second, 10*time.Millisecond)
}
