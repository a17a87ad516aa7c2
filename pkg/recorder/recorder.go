package recorder

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/teslashibe/go-arenabot/internal/log"
	"github.com/teslashibe/go-arenabot/pkg/robot"
)

var _ robot.Observer = (*Recorder)(nil)

// Options describes the match being recorded and how writes are batched.
type Options struct {
	RunID    string
	Hardware string
	Window   int
	Reach    int
	Metric   string

	BatchSize     int           // steps per insert
	FlushInterval time.Duration // upper bound on how long a step waits in memory
}

// Recorder writes observed snapshots to a Store in the background.
// Observe never blocks: when the writer falls behind, snapshots are dropped
// and counted.
type Recorder struct {
	store *Store
	match Match

	batchSize  int
	flushEvery time.Duration

	pending chan robot.Snapshot
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once

	dropped atomic.Uint64
	written atomic.Uint64
	last    robot.Stats // writer goroutine only
}

// NewRecorder inserts a Match row and starts the writer.
func (s *Store) NewRecorder(opts Options) (*Recorder, error) {
	if opts.RunID == "" {
		return nil, fmt.Errorf("recorder: run id is required")
	}
	if opts.BatchSize < 1 {
		opts.BatchSize = 1
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = time.Second
	}

	m := Match{
		RunID:     opts.RunID,
		Hardware:  opts.Hardware,
		Window:    opts.Window,
		Reach:     opts.Reach,
		Metric:    opts.Metric,
		StartedAt: time.Now(),
	}
	if err := s.db.Create(&m).Error; err != nil {
		return nil, fmt.Errorf("recorder: create match: %w", err)
	}

	r := &Recorder{
		store:      s,
		match:      m,
		batchSize:  opts.BatchSize,
		flushEvery: opts.FlushInterval,
		pending:    make(chan robot.Snapshot, opts.BatchSize*4),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	go r.loop()

	log.Info("recording match", "runId", m.RunID, "matchId", m.ID)
	return r, nil
}

// MatchID is the database id of the match being recorded.
func (r *Recorder) MatchID() uint {
	return r.match.ID
}

// Dropped returns how many snapshots were discarded because the queue was full.
func (r *Recorder) Dropped() uint64 {
	return r.dropped.Load()
}

// Written returns how many steps reached the database.
func (r *Recorder) Written() uint64 {
	return r.written.Load()
}

// Observe queues s for writing. Snapshots arriving after Close are ignored.
func (r *Recorder) Observe(s robot.Snapshot) {
	select {
	case <-r.stop:
		return
	default:
	}
	select {
	case r.pending <- s:
	default:
		r.dropped.Add(1)
	}
}

// Close flushes queued snapshots, stamps the match as ended and stops the
// writer. It does not close the Store.
func (r *Recorder) Close() error {
	r.once.Do(func() { close(r.stop) })
	<-r.done

	now := time.Now()
	err := r.store.db.Model(&Match{}).Where("id = ?", r.match.ID).Updates(map[string]any{
		"ended_at": now,
		"dropped":  r.dropped.Load(),
	}).Error
	if err != nil {
		return fmt.Errorf("recorder: finish match: %w", err)
	}
	log.Info("match recorded", "runId", r.match.RunID, "steps", r.written.Load(), "dropped", r.dropped.Load())
	return nil
}

func (r *Recorder) loop() {
	defer close(r.done)

	ticker := time.NewTicker(r.flushEvery)
	defer ticker.Stop()

	batch := make([]Step, 0, r.batchSize)
	for {
		select {
		case s := <-r.pending:
			batch = append(batch, r.row(s))
			if len(batch) >= r.batchSize {
				batch = r.flush(batch)
			}
		case <-ticker.C:
			batch = r.flush(batch)
		case <-r.stop:
			for {
				select {
				case s := <-r.pending:
					batch = append(batch, r.row(s))
				default:
					r.flush(batch)
					return
				}
			}
		}
	}
}

func (r *Recorder) row(s robot.Snapshot) Step {
	r.last = s.Stats
	body, err := json.Marshal(s)
	if err != nil {
		log.Warn("recorder: snapshot not encodable", "error", err)
	}
	return Step{
		MatchID:  r.match.ID,
		Seq:      s.Stats.Steps,
		At:       s.Time,
		X:        int(s.Pose.Position.X),
		Y:        int(s.Pose.Position.Y),
		Heading:  s.Pose.Orientation.String(),
		Action:   s.LastAction,
		Enemies:  len(s.Enemies),
		Threat:   ThreatAt(s),
		Snapshot: string(body),
	}
}

// flush inserts batch and refreshes the match counters. The emptied batch is
// returned for reuse.
func (r *Recorder) flush(batch []Step) []Step {
	if len(batch) == 0 {
		return batch
	}
	db := r.store.db
	if err := db.CreateInBatches(&batch, len(batch)).Error; err != nil {
		log.Warn("recorder: insert failed", "steps", len(batch), "error", err)
		return batch[:0]
	}
	r.written.Add(uint64(len(batch)))

	err := db.Model(&Match{}).Where("id = ?", r.match.ID).Updates(map[string]any{
		"steps": r.last.Steps,
		"scans": r.last.Scans,
		"moves": r.last.Moves,
		"stays": r.last.Stays,
		"stabs": r.last.Stabs,
	}).Error
	if err != nil {
		log.Warn("recorder: update match failed", "error", err)
	}
	return batch[:0]
}

// ThreatAt returns the threat score under the robot in s, or zero when the
// robot has left the scanned window.
func ThreatAt(s robot.Snapshot) int {
	half := s.Window / 2
	row := half - int(s.Pose.Position.Y)
	col := int(s.Pose.Position.X) + half
	if row < 0 || row >= len(s.Threat) || col < 0 || col >= len(s.Threat[row]) {
		return 0
	}
	return int(s.Threat[row][col])
}
