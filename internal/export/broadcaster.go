package export

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ProgressUpdate is one job event delivered to subscribers.
type ProgressUpdate struct {
	JobID     string
	State     State
	Progress  int
	Err       error
	Timestamp time.Time
}

// ProgressBroadcaster fans job updates out to subscribed channels. Slow
// subscribers miss updates rather than stalling the render loop.
type ProgressBroadcaster struct {
	clients map[chan ProgressUpdate]bool
	mutex   sync.RWMutex
	log     logrus.FieldLogger
}

// NewProgressBroadcaster creates a new progress broadcaster
func NewProgressBroadcaster(log logrus.FieldLogger) *ProgressBroadcaster {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ProgressBroadcaster{
		clients: make(map[chan ProgressUpdate]bool),
		log:     log,
	}
}

// Subscribe adds a new client to receive progress updates
func (pb *ProgressBroadcaster) Subscribe() chan ProgressUpdate {
	pb.mutex.Lock()
	defer pb.mutex.Unlock()

	client := make(chan ProgressUpdate, 16)
	pb.clients[client] = true
	pb.log.Debugf("progress subscriber added, %d total", len(pb.clients))
	return client
}

// Unsubscribe removes a client and closes its channel.
func (pb *ProgressBroadcaster) Unsubscribe(client chan ProgressUpdate) {
	pb.mutex.Lock()
	defer pb.mutex.Unlock()

	if _, ok := pb.clients[client]; ok {
		delete(pb.clients, client)
		close(client)
		pb.log.Debugf("progress subscriber removed, %d total", len(pb.clients))
	}
}

// Broadcast sends an update to every subscriber without blocking.
func (pb *ProgressBroadcaster) Broadcast(update ProgressUpdate) {
	pb.mutex.RLock()
	defer pb.mutex.RUnlock()

	update.Timestamp = time.Now()
	for client := range pb.clients {
		select {
		case client <- update:
		default:
			pb.log.WithField("job_id", update.JobID).Debug("subscriber buffer full, update dropped")
		}
	}
}

// ClientCount returns the number of subscribers.
func (pb *ProgressBroadcaster) ClientCount() int {
	pb.mutex.RLock()
	defer pb.mutex.RUnlock()
	return len(pb.clients)
}
