package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"TankWatch.api/internal/models"
)

// Measurement is the InfluxDB measurement that mirrored readings go to.
const Measurement = "water_quality"

// Sink receives a copy of every ingested reading set.
type Sink interface {
	WriteTankSet(ctx context.Context, set models.TankSet, at time.Time) error
}

// NopSink discards everything. Used when no InfluxDB is configured.
type NopSink struct{}

func (NopSink) WriteTankSet(context.Context, models.TankSet, time.Time) error { return nil }

// mirrorQueueSize bounds the reading sets waiting to be handed to the writer.
const mirrorQueueSize = 64

var (
	// ErrMirrorBacklog is returned when the write queue is full and the set is dropped.
	ErrMirrorBacklog = errors.New("InfluxDB mirror queue is full")
	// ErrMirrorClosed is returned for writes after Close.
	ErrMirrorClosed = errors.New("InfluxDB mirror is closed")
)

// InfluxDBRepository mirrors reading sets into an InfluxDB bucket. Writes
// are queued and sent in the background, so a slow server never holds up
// the caller.
type InfluxDBRepository struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
	org      string
	bucket   string
	onError  func(error)

	mu          sync.RWMutex
	closed      bool
	queue       chan []*write.Point
	forwardDone chan struct{}
	errorsDone  chan struct{}
}

// NewInfluxDBRepository creates a new InfluxDBRepository. onWriteError, if
// not nil, is called for every background write that fails.
func NewInfluxDBRepository(url, token, org, bucket string, onWriteError func(error)) *InfluxDBRepository {
	client := influxdb2.NewClient(url, token)
	r := &InfluxDBRepository{
		client:   client,
		writeAPI: client.WriteAPI(org, bucket),
		org:      org,
		bucket:   bucket,
		onError:  onWriteError,

		queue:       make(chan []*write.Point, mirrorQueueSize),
		forwardDone: make(chan struct{}),
		errorsDone:  make(chan struct{}),
	}

	// Errors must be subscribed before the first write.
	errs := r.writeAPI.Errors()
	go r.forward()
	go r.drainErrors(errs)
	return r
}

// Ping checks that the InfluxDB server is reachable and healthy.
func (r *InfluxDBRepository) Ping(ctx context.Context) error {
	health, err := r.client.Health(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to InfluxDB: %w", err)
	}
	if health.Status != "pass" {
		msg := ""
		if health.Message != nil {
			msg = *health.Message
		}
		return fmt.Errorf("InfluxDB health check failed: %s", msg)
	}
	log.Println("Successfully connected to InfluxDB")
	return nil
}

// BucketExists checks if a bucket exists in InfluxDB.
func (r *InfluxDBRepository) BucketExists(ctx context.Context, name string) (bool, error) {
	_, err := r.client.BucketsAPI().FindBucketByName(ctx, name)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return false, nil
		}
		return false, fmt.Errorf("error checking bucket existence: %w", err)
	}
	return true, nil
}

// EnsureBucket creates the configured bucket if it does not exist yet.
func (r *InfluxDBRepository) EnsureBucket(ctx context.Context) error {
	exists, err := r.BucketExists(ctx, r.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	org, err := r.client.OrganizationsAPI().FindOrganizationByName(ctx, r.org)
	if err != nil {
		return fmt.Errorf("error finding organization '%s': %w", r.org, err)
	}
	if org == nil {
		return fmt.Errorf("organization '%s' not found", r.org)
	}

	if _, err := r.client.BucketsAPI().CreateBucketWithName(ctx, org, r.bucket); err != nil {
		return fmt.Errorf("error creating bucket '%s': %w", r.bucket, err)
	}
	log.Printf("Bucket '%s' created in org '%s'", r.bucket, r.org)
	return nil
}

// WriteTankSet queues one point per tank, tagged with the tank id. It never
// waits on the network; a full queue drops the set with ErrMirrorBacklog.
func (r *InfluxDBRepository) WriteTankSet(_ context.Context, set models.TankSet, at time.Time) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return ErrMirrorClosed
	}

	select {
	case r.queue <- tankSetPoints(set, at):
		return nil
	default:
		return ErrMirrorBacklog
	}
}

// Close flushes pending points and releases the underlying client.
func (r *InfluxDBRepository) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	// client.Close flushes the write API and closes its error channel.
	<-r.forwardDone
	r.client.Close()
	<-r.errorsDone
}

func (r *InfluxDBRepository) forward() {
	defer close(r.forwardDone)
	for points := range r.queue {
		for _, p := range points {
			r.writeAPI.WritePoint(p)
		}
	}
}

func (r *InfluxDBRepository) drainErrors(errs <-chan error) {
	defer close(r.errorsDone)
	for err := range errs {
		log.Printf("Error writing to InfluxDB: %v", err)
		if r.onError != nil {
			r.onError(fmt.Errorf("error writing to InfluxDB: %w", err))
		}
	}
}

func tankSetPoints(set models.TankSet, at time.Time) []*write.Point {
	tanks := set.Tanks()
	points := make([]*write.Point, 0, len(tanks))
	for _, t := range tanks {
		points = append(points, influxdb2.NewPoint(
			Measurement,
			map[string]string{"tank_id": t.ID},
			map[string]interface{}{
				"tds":       t.Reading.TDS,
				"ph":        t.Reading.PH,
				"turbidity": t.Reading.Turbidity,
			},
			at,
		))
	}
	return points
}
