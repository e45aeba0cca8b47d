package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"email-dispatch-go/internal/history"
	"email-dispatch-go/internal/mailer"
	"email-dispatch-go/internal/metrics"
	"email-dispatch-go/internal/models"
)

// testMetrics is shared because promauto registers into the default
// registry once per process.
var testMetrics = metrics.NewMetrics()

type fakeTransport struct {
	receipt *mailer.Receipt
	err     error
	calls   int
	lastMsg *mailer.Message
}

func (f *fakeTransport) Submit(_ context.Context, msg *mailer.Message) (*mailer.Receipt, error) {
	f.calls++
	f.lastMsg = msg
	if f.err != nil {
		return nil, f.err
	}
	return f.receipt, nil
}

func validRequest() models.EmailRequest {
	return models.EmailRequest{
		ToEmail: "user@example.com",
		ToName:  "User",
		Subject: "Welcome",
		Body:    "Hi {{name}}\nWelcome aboard",
		TemplateData: map[string]any{
			"name": "Ann",
		},
		EventType:     "user_registered",
		RelatedUserID: "u-42",
	}
}

func TestDispatchSuccess(t *testing.T) {
	transport := &fakeTransport{receipt: &mailer.Receipt{MessageID: "<abc@smtp>"}}
	store := history.NewStore(0)
	engine := NewEngine(transport, store, testMetrics)

	rec, err := engine.Dispatch(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, models.StatusSent, rec.Status)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "<abc@smtp>", rec.MessageID)
	require.NotNil(t, rec.SentAt)
	assert.False(t, rec.SentAt.Before(rec.CreatedAt))
	assert.Empty(t, rec.ErrorMessage)
	assert.Equal(t, "user_registered", rec.EventType)
	assert.Equal(t, "u-42", rec.RelatedUserID)

	// Exactly one transport attempt, rendered bodies forwarded
	assert.Equal(t, 1, transport.calls)
	assert.Equal(t, "Hi Ann\nWelcome aboard", transport.lastMsg.TextBody)
	assert.Equal(t, "Hi Ann<br>Welcome aboard", transport.lastMsg.HTMLBody)

	stats := store.Stats()
	assert.Equal(t, int64(1), stats.TotalSent)
	assert.Equal(t, int64(0), stats.TotalFailed)
	assert.Equal(t, int64(0), stats.TotalPending)
}

func TestDispatchFailure(t *testing.T) {
	transport := &fakeTransport{err: errors.New("mailbox not found")}
	store := history.NewStore(0)
	engine := NewEngine(transport, store, testMetrics)

	rec, err := engine.Dispatch(context.Background(), validRequest())
	require.Error(t, err)

	assert.Equal(t, models.StatusFailed, rec.Status)
	assert.Equal(t, "mailbox not found", rec.ErrorMessage)
	assert.Nil(t, rec.SentAt)
	assert.Empty(t, rec.MessageID)
	assert.Equal(t, 1, transport.calls)

	// The failed attempt is still recorded
	got := store.Query(10)
	require.Len(t, got, 1)
	assert.Equal(t, rec.ID, got[0].ID)

	stats := store.Stats()
	assert.Equal(t, int64(0), stats.TotalSent)
	assert.Equal(t, int64(1), stats.TotalFailed)
}

func TestDispatchFieldConsistency(t *testing.T) {
	store := history.NewStore(0)
	success := NewEngine(&fakeTransport{receipt: &mailer.Receipt{MessageID: "<id@smtp>"}}, store, testMetrics)
	failure := NewEngine(&fakeTransport{err: errors.New("boom")}, store, testMetrics)

	for i := 0; i < 10; i++ {
		engine := success
		if i%3 == 0 {
			engine = failure
		}
		rec, _ := engine.Dispatch(context.Background(), validRequest())

		if rec.Status == models.StatusSent {
			assert.NotNil(t, rec.SentAt)
			assert.NotEmpty(t, rec.MessageID)
			assert.Empty(t, rec.ErrorMessage)
		} else {
			assert.Nil(t, rec.SentAt)
			assert.Empty(t, rec.MessageID)
			assert.NotEmpty(t, rec.ErrorMessage)
		}
	}

	stats := store.Stats()
	assert.Equal(t, int64(10), stats.TotalSent+stats.TotalFailed)
}

func TestDispatchWithoutTemplateData(t *testing.T) {
	transport := &fakeTransport{receipt: &mailer.Receipt{MessageID: "<id@smtp>"}}
	engine := NewEngine(transport, history.NewStore(0), testMetrics)

	req := validRequest()
	req.TemplateData = nil

	_, err := engine.Dispatch(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Hi {{name}}\nWelcome aboard", transport.lastMsg.TextBody)
}

func TestDispatchValidation(t *testing.T) {
	transport := &fakeTransport{receipt: &mailer.Receipt{MessageID: "<id@smtp>"}}
	store := history.NewStore(0)
	engine := NewEngine(transport, store, testMetrics)

	cases := []func(*models.EmailRequest){
		func(r *models.EmailRequest) { r.ToEmail = "" },
		func(r *models.EmailRequest) { r.ToEmail = "   " },
		func(r *models.EmailRequest) { r.Subject = "" },
		func(r *models.EmailRequest) { r.Body = "" },
	}

	for _, mutate := range cases {
		req := validRequest()
		mutate(&req)

		rec, err := engine.Dispatch(context.Background(), req)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidRequest))
		assert.Empty(t, rec.ID)
	}

	// Contract violations reach neither the transport nor the history
	assert.Equal(t, 0, transport.calls)
	assert.Equal(t, 0, store.Size())
}
