package service

import (
	"context"
	"log"
	"time"

	"TankWatch.api/internal/models"
	"TankWatch.api/internal/observability"
	"TankWatch.api/internal/prediction"
	"TankWatch.api/internal/repository"
)

// DataService handles the business logic around the latest reading set.
type DataService struct {
	store   repository.Store
	sink    repository.Sink
	metrics *observability.Metrics
	now     func() time.Time
}

// NewDataService creates a new DataService. sink and metrics may be nil.
func NewDataService(store repository.Store, sink repository.Sink, metrics *observability.Metrics) *DataService {
	if sink == nil {
		sink = repository.NopSink{}
	}
	return &DataService{
		store:   store,
		sink:    sink,
		metrics: metrics,
		now:     time.Now,
	}
}

// Ingest replaces the stored reading set and mirrors it. A mirror failure is
// logged and counted but does not fail the ingest.
func (s *DataService) Ingest(ctx context.Context, set models.TankSet) {
	s.store.Save(set)
	s.metrics.IngestRecorded()
	for _, t := range set.Tanks() {
		s.metrics.SetTankHealth(t.ID, prediction.HealthIndex(prediction.Details(t.Reading)))
	}

	if err := s.sink.WriteTankSet(ctx, set, s.now()); err != nil {
		s.metrics.MirrorFailed()
		log.Printf("Failed to mirror reading set: %v", err)
	}
}

// Latest returns the stored reading set, or a zero-filled one if nothing
// has been received yet.
func (s *DataService) Latest() models.TankSet {
	set, _, _ := s.store.Latest()
	return set
}

// Predictions forecasts cleaning dates for both tanks from the latest
// readings. It returns prediction.ErrNoSensorData before the first ingest.
func (s *DataService) Predictions() (models.PredictionSet, error) {
	set, _, ok := s.store.Latest()
	if !ok {
		s.metrics.PredictionServed("no_data")
		return models.PredictionSet{}, prediction.ErrNoSensorData
	}
	s.metrics.PredictionServed("ok")
	return prediction.PredictSet(set, s.now()), nil
}
