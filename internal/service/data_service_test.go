package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TankWatch.api/internal/models"
	"TankWatch.api/internal/observability"
	"TankWatch.api/internal/prediction"
	"TankWatch.api/internal/repository"
)

type recordingSink struct {
	sets []models.TankSet
	at   []time.Time
	err  error
}

func (s *recordingSink) WriteTankSet(_ context.Context, set models.TankSet, at time.Time) error {
	s.sets = append(s.sets, set)
	s.at = append(s.at, at)
	return s.err
}

func newService(sink repository.Sink) *DataService {
	svc := NewDataService(repository.NewMemoryRepository(), sink, observability.NewMetrics())
	svc.now = func() time.Time { return time.Date(2026, time.October, 18, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestLatest_ZeroFilledBeforeIngest(t *testing.T) {
	svc := newService(nil)
	assert.Equal(t, models.TankSet{}, svc.Latest())
}

func TestPredictions_NoData(t *testing.T) {
	svc := newService(nil)
	_, err := svc.Predictions()
	assert.True(t, errors.Is(err, prediction.ErrNoSensorData))
}

func TestIngest_ThenPredict(t *testing.T) {
	sink := &recordingSink{}
	svc := newService(sink)

	set := models.TankSet{
		Tank1: models.Reading{TDS: 300, PH: 7.5, Turbidity: 1},
		Tank2: models.Reading{TDS: 1200, PH: 9.5, Turbidity: 10},
	}
	svc.Ingest(context.Background(), set)

	assert.Equal(t, set, svc.Latest())
	require.Len(t, sink.sets, 1)
	assert.Equal(t, set, sink.sets[0])
	assert.Equal(t, svc.now(), sink.at[0])

	ps, err := svc.Predictions()
	require.NoError(t, err)
	assert.Equal(t, 30, ps.Tank1.DaysRemaining)
	assert.Equal(t, models.StatusGood, ps.Tank1.Status)
	assert.Equal(t, "2026-11-17", ps.Tank1.PredictedDate)
	assert.Equal(t, 1, ps.Tank2.DaysRemaining)
	assert.Equal(t, models.StatusPoor, ps.Tank2.Status)
	assert.Equal(t, "2026-10-19", ps.Tank2.PredictedDate)
}

func TestIngest_MirrorFailureIsNotFatal(t *testing.T) {
	sink := &recordingSink{err: errors.New("influx down")}
	svc := newService(sink)

	set := models.TankSet{Tank1: models.Reading{TDS: 500, PH: 7, Turbidity: 2}}
	svc.Ingest(context.Background(), set)

	assert.Equal(t, set, svc.Latest())
	assert.Len(t, sink.sets, 1)
}

func TestIngest_LastWriteWins(t *testing.T) {
	svc := newService(nil)
	svc.Ingest(context.Background(), models.TankSet{Tank1: models.Reading{TDS: 100}})
	svc.Ingest(context.Background(), models.TankSet{Tank2: models.Reading{TDS: 200}})

	assert.Equal(t, models.TankSet{Tank2: models.Reading{TDS: 200}}, svc.Latest())
}

func TestNewDataService_NilMetrics(t *testing.T) {
	svc := NewDataService(repository.NewMemoryRepository(), nil, nil)
	assert.NotPanics(t, func() {
		svc.Ingest(context.Background(), models.TankSet{})
		_, _ = svc.Predictions()
	})
}

func TestIngest_SlowMirrorDoesNotBlock(t *testing.T) {
	release := make(chan struct{})
	influx := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.WriteHeader(http.StatusNoContent)
	}))
	defer influx.Close()

	mirror := repository.NewInfluxDBRepository(influx.URL, "token", "plant", "water_quality", nil)
	svc := newService(mirror)

	set := models.TankSet{Tank1: models.Reading{TDS: 500, PH: 7, Turbidity: 2}}
	start := time.Now()
	svc.Ingest(context.Background(), set)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, set, svc.Latest())

	close(release)
	mirror.Close()
}
