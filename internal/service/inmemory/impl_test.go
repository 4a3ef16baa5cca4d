package inmemory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/mergington/activities-api/internal/registry"
	"github.com/mergington/activities-api/internal/service"
	"github.com/mergington/activities-api/internal/telemetry"
)

func newTestService(t *testing.T, opts ...Option) service.ActivityService {
	t.Helper()
	reg, err := registry.New(registry.DefaultCatalog())
	require.NoError(t, err)
	svc, err := New(context.Background(), reg, opts...)
	require.NoError(t, err)
	return svc
}

func TestNew(t *testing.T) {
	t.Parallel()

	svc, err := New(context.Background(), nil)
	require.Error(t, err)
	assert.Nil(t, svc)
	assert.Contains(t, err.Error(), "activity registry is required")

	svc = newTestService(t)
	require.NoError(t, svc.CheckReadiness(context.Background()))
}

func TestCheckReadiness_CancelledContext(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := svc.CheckReadiness(ctx)
	require.ErrorIs(t, err, service.ErrNotReady)
	require.ErrorIs(t, err, context.Canceled)
}

func TestListAndGet(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	catalog, err := svc.ListActivities(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(registry.DefaultCatalog()), catalog.Len())
	assert.Equal(t, "Chess Club", catalog.Names()[0])

	a, err := svc.GetActivity(ctx, "Chess Club")
	require.NoError(t, err)
	assert.Equal(t, 12, a.MaxParticipants)

	_, err = svc.GetActivity(ctx, "Quidditch")
	require.ErrorIs(t, err, registry.ErrActivityNotFound)
}

func TestSignupAndUnregister(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()
	const email = "newstudent@mergington.edu"

	change, err := svc.Signup(ctx, "Basketball Team", email)
	require.NoError(t, err)
	assert.Equal(t, registry.ChangeSignup, change.Kind)

	a, err := svc.GetActivity(ctx, "Basketball Team")
	require.NoError(t, err)
	assert.Contains(t, a.Participants, email)

	_, err = svc.Signup(ctx, "Basketball Team", email)
	require.ErrorIs(t, err, registry.ErrAlreadySignedUp)

	change, err = svc.Unregister(ctx, "Basketball Team", email)
	require.NoError(t, err)
	assert.Equal(t, registry.ChangeUnregister, change.Kind)

	_, err = svc.Unregister(ctx, "Basketball Team", email)
	require.ErrorIs(t, err, registry.ErrParticipantNotFound)
}

func TestMutation_CancelledContext(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Signup(ctx, "Chess Club", "late@mergington.edu")
	require.ErrorIs(t, err, context.Canceled)

	a, err := svc.GetActivity(context.Background(), "Chess Club")
	require.NoError(t, err)
	assert.NotContains(t, a.Participants, "late@mergington.edu")
}

func TestSignup_Tracing(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	svc := newTestService(t, WithTracer(tp.Tracer(ServiceTracerName)))
	ctx := context.Background()

	change, err := svc.Signup(ctx, "Art Club", "painter@mergington.edu")
	require.NoError(t, err)
	_, err = svc.Signup(ctx, "Art Club", "painter@mergington.edu")
	require.Error(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	ok := spans[0]
	assert.Equal(t, "inmemory.Signup", ok.Name)
	assert.NotEqual(t, codes.Error, ok.Status.Code)
	attrs := map[string]string{}
	for _, attr := range ok.Attributes {
		attrs[string(attr.Key)] = attr.Value.Emit()
	}
	assert.Equal(t, "Art Club", attrs["activity.name"])
	assert.Equal(t, "signup", attrs["enrollment.operation"])
	assert.Equal(t, change.ID, attrs["enrollment.change_id"])
	assert.Equal(t, "2", attrs["result.count"])
	assert.NotContains(t, attrs, "email", "emails are not recorded on spans")

	assert.Equal(t, telemetry.OutcomeSuccess, attrs["enrollment.outcome"])

	rejected := spans[1]
	assert.Equal(t, codes.Unset, rejected.Status.Code, "a duplicate signup is not a service failure")
	require.Len(t, rejected.Events, 1)
	assert.Equal(t, "enrollment.rejected", rejected.Events[0].Name)
	for _, attr := range rejected.Attributes {
		if attr.Key == "enrollment.outcome" {
			assert.Equal(t, telemetry.OutcomeAlreadySignedUp, attr.Value.AsString())
		}
	}
}

func TestMutation_Logging(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	svc := newTestService(t, WithLogger(logger))
	ctx := context.Background()

	signup, err := svc.Signup(ctx, "Art Club", "painter@mergington.edu")
	require.NoError(t, err)
	unregister, err := svc.Unregister(ctx, "Art Club", "painter@mergington.edu")
	require.NoError(t, err)
	_, err = svc.Unregister(ctx, "Art Club", "painter@mergington.edu")
	require.ErrorIs(t, err, registry.ErrParticipantNotFound)

	assert.NotContains(t, buf.String(), "painter@mergington.edu")

	var changeIDs []string
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		entry := gjson.ParseBytes(line)
		if entry.Get("msg").String() == "Enrollment changed" {
			assert.Equal(t, "Art Club", entry.Get("activity").String())
			changeIDs = append(changeIDs, entry.Get("change_id").String())
		}
	}
	assert.Equal(t, []string{signup.ID, unregister.ID}, changeIDs)
}

func TestEnrollmentMetrics(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	em, err := telemetry.NewEnrollmentMetrics(mp)
	require.NoError(t, err)

	svc := newTestService(t, WithEnrollmentMetrics(em))
	ctx := context.Background()

	_, err = svc.Signup(ctx, "Math Club", "euler@mergington.edu")
	require.NoError(t, err)
	_, err = svc.Signup(ctx, "Math Club", "euler@mergington.edu")
	require.Error(t, err)
	_, err = svc.Unregister(ctx, "Math Club", "gauss@mergington.edu")
	require.Error(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	outcomes := map[string]int64{}
	var mathParticipants int64 = -1
	var gauges int
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					op, _ := dp.Attributes.Value("operation")
					outcome, _ := dp.Attributes.Value("outcome")
					outcomes[op.AsString()+"/"+outcome.AsString()] += dp.Value
				}
			case metricdata.Gauge[int64]:
				if m.Name != "activities_participants" {
					continue
				}
				gauges = len(data.DataPoints)
				for _, dp := range data.DataPoints {
					if activity, _ := dp.Attributes.Value("activity"); activity.AsString() == "Math Club" {
						mathParticipants = dp.Value
					}
				}
			}
		}
	}

	assert.Equal(t, map[string]int64{
		"signup/success":           1,
		"signup/already_signed_up": 1,
		"unregister/not_found":     1,
	}, outcomes)
	assert.Equal(t, len(registry.DefaultCatalog()), gauges, "every activity gets a roster gauge")
	assert.Equal(t, int64(2), mathParticipants)
}

func TestConcurrentSignups(t *testing.T) {
	t.Parallel()

	reg, err := registry.New([]registry.Seed{
		{Name: "Chess Club", Activity: registry.Activity{MaxParticipants: 5}},
	})
	require.NoError(t, err)
	svc, err := New(context.Background(), reg)
	require.NoError(t, err)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		full int
	)
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Signup(context.Background(), "Chess Club", fmt.Sprintf("s%d@mergington.edu", i))
			if errors.Is(err, registry.ErrActivityFull) {
				mu.Lock()
				full++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	a, err := svc.GetActivity(context.Background(), "Chess Club")
	require.NoError(t, err)
	assert.Len(t, a.Participants, 5)
	assert.Equal(t, 15, full)
}

func TestOutcomeOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err      error
		expected string
	}{
		{nil, telemetry.OutcomeSuccess},
		{fmt.Errorf("%w: x", registry.ErrActivityNotFound), telemetry.OutcomeNotFound},
		{fmt.Errorf("%w: x", registry.ErrParticipantNotFound), telemetry.OutcomeNotFound},
		{fmt.Errorf("%w: x", registry.ErrAlreadySignedUp), telemetry.OutcomeAlreadySignedUp},
		{fmt.Errorf("%w: x", registry.ErrActivityFull), telemetry.OutcomeFull},
		{fmt.Errorf("%w: x", registry.ErrInvalidEmail), telemetry.OutcomeInvalidEmail},
		{errors.New("boom"), telemetry.OutcomeError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, outcomeOf(tt.err))
	}
}
